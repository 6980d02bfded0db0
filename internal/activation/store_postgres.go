package activation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"avviso/pkg/domain"
	"avviso/pkg/platform/sentinel"
)

// PostgresStore persists activations in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) FindLast(ctx context.Context, fiscalCode domain.FiscalCode, serviceID domain.ServiceID) (*Activation, error) {
	query := `
		SELECT fiscal_code, service_id, status, EXTRACT(EPOCH FROM updated_at)::bigint
		FROM activations
		WHERE fiscal_code = $1 AND service_id = $2
	`
	var (
		act    Activation
		status string
	)
	err := s.db.QueryRowContext(ctx, query, fiscalCode.String(), serviceID.String()).Scan(
		&act.FiscalCode,
		&act.ServiceID,
		&status,
		&act.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("find activation %s/%s: %w", fiscalCode, serviceID, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find activation: %w", err)
	}
	act.Status = domain.ActivationStatus(status)
	return &act, nil
}

func (s *PostgresStore) Save(ctx context.Context, act *Activation) error {
	updatedAt := act.UpdatedAt
	if updatedAt == 0 {
		updatedAt = time.Now().Unix()
	}

	query := `
		INSERT INTO activations (fiscal_code, service_id, status, updated_at)
		VALUES ($1, $2, $3, to_timestamp($4))
		ON CONFLICT (fiscal_code, service_id)
		DO UPDATE SET status = EXCLUDED.status, updated_at = EXCLUDED.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		act.FiscalCode.String(),
		act.ServiceID.String(),
		act.Status.String(),
		updatedAt,
	)
	if err != nil {
		return fmt.Errorf("save activation: %w", err)
	}
	return nil
}
