package permission

import (
	"time"

	"avviso/internal/profile"
	"avviso/pkg/domain"
)

// CheckEligibility applies the master gates that precede everything else.
// This is pure domain logic - no I/O, no side effects.
//
// Rule priority (fail-fast):
//  1. A profile must exist - citizens without one never receive messages
//  2. The global inbox flag must be exactly true - anything else means the
//     citizen has not (or no longer) consented to inbox storage
func CheckEligibility(p *profile.Profile) (DenyReason, bool) {
	if p == nil {
		return ReasonProfileNotFound, false
	}
	if !p.IsInboxEnabled {
		return ReasonMasterInboxDisabled, false
	}
	return "", true
}

// LegacyBlockedChannels returns the channels the profile's static block list
// holds for the sender, or nil when the sender is unlisted. This list is the
// only admission source under LEGACY mode; under MANUAL and AUTO it is
// superseded by preference records.
func LegacyBlockedChannels(p *profile.Profile, serviceID domain.ServiceID) []domain.Channel {
	if p.BlockedInboxOrChannels == nil {
		return nil
	}
	channels, ok := p.BlockedInboxOrChannels[serviceID]
	if !ok {
		return nil
	}
	return append([]domain.Channel(nil), channels...)
}

// ApplyEmailOptOut forces IsEmailEnabled off for profiles that predate the
// opt-in migration cutover and have not been saved since: such citizens
// never re-confirmed email and must be treated as opted out until their next
// profile update. The input profile is never mutated.
//
// The override only shapes the profile handed downstream; it does not add
// EMAIL to the blocked-channel set, which is computed independently.
func ApplyEmailOptOut(p *profile.Profile, cutover time.Time, optInMigrationActive bool) *profile.Profile {
	if !optInMigrationActive {
		return p
	}
	if p.UpdatedAt >= cutover.Unix() {
		return p
	}
	overridden := p.Clone()
	overridden.IsEmailEnabled = false
	return overridden
}
