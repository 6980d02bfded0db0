package profile

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"avviso/pkg/domain"
	"avviso/pkg/platform/sentinel"
)

// PostgresStore persists profile revisions in PostgreSQL. Revisions are
// append-only; FindLast reads the highest version for a fiscal code.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) FindLast(ctx context.Context, fiscalCode domain.FiscalCode) (*Profile, error) {
	query := `
		SELECT fiscal_code, version, is_inbox_enabled, is_email_enabled, email,
		       blocked_inbox_or_channels, preferences_mode, preferences_version,
		       EXTRACT(EPOCH FROM updated_at)::bigint
		FROM profiles
		WHERE fiscal_code = $1
		ORDER BY version DESC
		LIMIT 1
	`
	var (
		p           Profile
		blockedJSON []byte
		mode        string
	)
	err := s.db.QueryRowContext(ctx, query, fiscalCode.String()).Scan(
		&p.FiscalCode,
		&p.Version,
		&p.IsInboxEnabled,
		&p.IsEmailEnabled,
		&p.Email,
		&blockedJSON,
		&mode,
		&p.PreferencesSettings.Version,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("find profile %s: %w", fiscalCode, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find profile: %w", err)
	}
	p.PreferencesSettings.Mode = domain.PreferencesMode(mode)

	if len(blockedJSON) > 0 {
		if err := json.Unmarshal(blockedJSON, &p.BlockedInboxOrChannels); err != nil {
			return nil, fmt.Errorf("decode blocked channels: %w", err)
		}
	}
	return &p, nil
}

func (s *PostgresStore) Save(ctx context.Context, p *Profile) error {
	blockedJSON, err := json.Marshal(p.BlockedInboxOrChannels)
	if err != nil {
		return fmt.Errorf("encode blocked channels: %w", err)
	}

	updatedAt := p.UpdatedAt
	if updatedAt == 0 {
		updatedAt = time.Now().Unix()
	}

	query := `
		INSERT INTO profiles (
			fiscal_code, version, is_inbox_enabled, is_email_enabled, email,
			blocked_inbox_or_channels, preferences_mode, preferences_version, updated_at
		)
		VALUES (
			$1,
			COALESCE((SELECT MAX(version) + 1 FROM profiles WHERE fiscal_code = $1), 0),
			$2, $3, $4, $5, $6, $7, to_timestamp($8)
		)
	`
	_, err = s.db.ExecContext(ctx, query,
		p.FiscalCode.String(),
		p.IsInboxEnabled,
		p.IsEmailEnabled,
		p.Email,
		blockedJSON,
		p.PreferencesSettings.Mode.String(),
		p.PreferencesSettings.Version,
		updatedAt,
	)
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}
