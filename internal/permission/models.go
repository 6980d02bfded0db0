package permission

import (
	"avviso/internal/profile"
	"avviso/pkg/domain"
)

// DenyReason explains a negative permission decision. These are stable
// business verdicts, not errors: the caller must not retry them.
type DenyReason string

const (
	ReasonProfileNotFound     DenyReason = "PROFILE_NOT_FOUND"
	ReasonMasterInboxDisabled DenyReason = "MASTER_INBOX_DISABLED"
	ReasonSenderBlocked       DenyReason = "SENDER_BLOCKED"
)

func (r DenyReason) String() string {
	return string(r)
}

// Input identifies one delivery attempt to evaluate.
type Input struct {
	FiscalCode domain.FiscalCode
	ServiceID  domain.ServiceID

	// Special marks senders in the restricted category that require an
	// explicit user activation on top of preference checks.
	Special bool
}

// Decision is the outcome of a permission evaluation.
//
// When Admitted is true, BlockedChannels lists the channels the user has
// excluded for this sender (deterministically ordered) and Profile is the
// effective profile to hand downstream: the stored one, possibly with
// IsEmailEnabled forced off by the opt-out override.
//
// When Admitted is false, Reason is set and the other fields are empty.
type Decision struct {
	Admitted        bool
	Reason          DenyReason
	BlockedChannels []domain.Channel
	Profile         *profile.Profile
}
