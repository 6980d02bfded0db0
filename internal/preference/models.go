package preference

import "avviso/pkg/domain"

// ServicePreference is a citizen's explicit choice for one service at one
// preference-schema version. Absence of a record is a meaningful state: the
// mode on the profile decides the default (MANUAL denies, AUTO allows).
type ServicePreference struct {
	FiscalCode      domain.FiscalCode
	ServiceID       domain.ServiceID
	SettingsVersion int
	IsInboxEnabled  bool
	IsEmailEnabled  bool
}
