//go:build integration

package message

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"avviso/pkg/platform/sentinel"
	"avviso/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.store = NewPostgresStore(s.pg.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.pg.TruncateAll(context.Background()))
}

func (s *PostgresStoreSuite) TestFindNotFound() {
	_, err := s.store.Find(context.Background(), "msg-missing")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestUpsertAndFind() {
	ctx := context.Background()
	meta := &Metadata{
		ID:                "msg-0001",
		FiscalCode:        "FRLFNC88A01H501A",
		SenderServiceID:   "svc-a",
		SenderUserID:      "user-1",
		CreatedAt:         1700000000,
		TimeToLiveSeconds: 3600,
		IsPending:         true,
	}
	s.Require().NoError(s.store.Upsert(ctx, meta))

	got, err := s.store.Find(ctx, meta.ID)
	s.Require().NoError(err)
	s.Equal(meta, got)
}

func (s *PostgresStoreSuite) TestUpsertFlipsVisibility() {
	ctx := context.Background()
	meta := &Metadata{
		ID:              "msg-0001",
		FiscalCode:      "FRLFNC88A01H501A",
		SenderServiceID: "svc-a",
		CreatedAt:       1700000000,
		IsPending:       true,
	}
	s.Require().NoError(s.store.Upsert(ctx, meta))

	meta.IsPending = false
	s.Require().NoError(s.store.Upsert(ctx, meta))

	got, err := s.store.Find(ctx, meta.ID)
	s.Require().NoError(err)
	s.False(got.IsPending)
}
