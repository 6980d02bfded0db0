package profile

import (
	"avviso/pkg/domain"
)

// Profile is the stored record of a citizen's app settings. Profiles are
// versioned: every save produces a new revision, and readers always see the
// latest one. The engine never mutates a stored profile; the email opt-out
// override operates on a copy.
type Profile struct {
	FiscalCode     domain.FiscalCode
	IsInboxEnabled bool
	IsEmailEnabled bool

	// Email is the validated address notifications go to. Empty when the
	// citizen never confirmed one; email delivery is skipped in that case.
	Email string

	// BlockedInboxOrChannels is the legacy per-service block list. It is
	// authoritative only while PreferencesSettings.Mode is LEGACY.
	BlockedInboxOrChannels map[domain.ServiceID][]domain.Channel

	PreferencesSettings domain.PreferencesSettings

	// Version is the storage revision, UpdatedAt the unix-seconds timestamp
	// of the last save. UpdatedAt drives the email opt-out cutover check.
	Version   int
	UpdatedAt int64
}

// Clone returns a deep copy so callers can adjust flags without touching the
// stored value.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	cp := *p
	if p.BlockedInboxOrChannels != nil {
		cp.BlockedInboxOrChannels = make(map[domain.ServiceID][]domain.Channel, len(p.BlockedInboxOrChannels))
		for sid, channels := range p.BlockedInboxOrChannels {
			cp.BlockedInboxOrChannels[sid] = append([]domain.Channel(nil), channels...)
		}
	}
	return &cp
}
