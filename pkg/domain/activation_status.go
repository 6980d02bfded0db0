package domain

// ActivationStatus is the state of a user's activation of a special service.
// Only ACTIVE allows delivery; PENDING and INACTIVE both deny.
type ActivationStatus string

const (
	ActivationPending  ActivationStatus = "PENDING"
	ActivationActive   ActivationStatus = "ACTIVE"
	ActivationInactive ActivationStatus = "INACTIVE"
)

var validActivationStatuses = map[ActivationStatus]bool{
	ActivationPending:  true,
	ActivationActive:   true,
	ActivationInactive: true,
}

// IsValid checks if the status is one of the supported enum values.
func (s ActivationStatus) IsValid() bool {
	return validActivationStatuses[s]
}

func (s ActivationStatus) String() string {
	return string(s)
}

// ServiceCategory classifies a sender service. SPECIAL services require an
// explicit user activation on top of ordinary preference checks.
type ServiceCategory string

const (
	CategoryStandard ServiceCategory = "STANDARD"
	CategorySpecial  ServiceCategory = "SPECIAL"
)

func (c ServiceCategory) String() string {
	return string(c)
}
