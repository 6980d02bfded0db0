package message

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"avviso/pkg/domain"
	"avviso/pkg/platform/sentinel"
)

// PostgresStore persists message metadata in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Upsert(ctx context.Context, meta *Metadata) error {
	query := `
		INSERT INTO messages (
			id, fiscal_code, sender_service_id, sender_user_id,
			created_at, time_to_live_seconds, is_pending
		)
		VALUES ($1, $2, $3, $4, to_timestamp($5), $6, $7)
		ON CONFLICT (id)
		DO UPDATE SET is_pending = EXCLUDED.is_pending
	`
	_, err := s.db.ExecContext(ctx, query,
		meta.ID.String(),
		meta.FiscalCode.String(),
		meta.SenderServiceID.String(),
		meta.SenderUserID,
		meta.CreatedAt,
		meta.TimeToLiveSeconds,
		meta.IsPending,
	)
	if err != nil {
		return fmt.Errorf("upsert message: %w", err)
	}
	return nil
}

func (s *PostgresStore) Find(ctx context.Context, id domain.MessageID) (*Metadata, error) {
	query := `
		SELECT id, fiscal_code, sender_service_id, sender_user_id,
		       EXTRACT(EPOCH FROM created_at)::bigint, time_to_live_seconds, is_pending
		FROM messages
		WHERE id = $1
	`
	var meta Metadata
	err := s.db.QueryRowContext(ctx, query, id.String()).Scan(
		&meta.ID,
		&meta.FiscalCode,
		&meta.SenderServiceID,
		&meta.SenderUserID,
		&meta.CreatedAt,
		&meta.TimeToLiveSeconds,
		&meta.IsPending,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("find message %s: %w", id, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find message: %w", err)
	}
	return &meta, nil
}
