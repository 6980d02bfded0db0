package preference

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"avviso/pkg/domain"
	"avviso/pkg/platform/sentinel"
)

// PostgresStore persists service preferences in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Find(ctx context.Context, fiscalCode domain.FiscalCode, serviceID domain.ServiceID, settingsVersion int) (*ServicePreference, error) {
	query := `
		SELECT fiscal_code, service_id, settings_version, is_inbox_enabled, is_email_enabled
		FROM service_preferences
		WHERE fiscal_code = $1 AND service_id = $2 AND settings_version = $3
	`
	var pref ServicePreference
	err := s.db.QueryRowContext(ctx, query, fiscalCode.String(), serviceID.String(), settingsVersion).Scan(
		&pref.FiscalCode,
		&pref.ServiceID,
		&pref.SettingsVersion,
		&pref.IsInboxEnabled,
		&pref.IsEmailEnabled,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("find preference %s/%s/%d: %w", fiscalCode, serviceID, settingsVersion, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find preference: %w", err)
	}
	return &pref, nil
}

func (s *PostgresStore) Save(ctx context.Context, pref *ServicePreference) error {
	query := `
		INSERT INTO service_preferences (fiscal_code, service_id, settings_version, is_inbox_enabled, is_email_enabled)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (fiscal_code, service_id, settings_version)
		DO UPDATE SET is_inbox_enabled = EXCLUDED.is_inbox_enabled,
		              is_email_enabled = EXCLUDED.is_email_enabled
	`
	_, err := s.db.ExecContext(ctx, query,
		pref.FiscalCode.String(),
		pref.ServiceID.String(),
		pref.SettingsVersion,
		pref.IsInboxEnabled,
		pref.IsEmailEnabled,
	)
	if err != nil {
		return fmt.Errorf("save preference: %w", err)
	}
	return nil
}
