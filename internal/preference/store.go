package preference

import (
	"context"

	"avviso/pkg/domain"
)

// Store provides access to per-service preferences, keyed by fiscal code,
// service, and the profile's preference-schema version. Find returns a
// wrapped sentinel.ErrNotFound when no explicit choice exists.
type Store interface {
	Find(ctx context.Context, fiscalCode domain.FiscalCode, serviceID domain.ServiceID, settingsVersion int) (*ServicePreference, error)
	Save(ctx context.Context, pref *ServicePreference) error
}
