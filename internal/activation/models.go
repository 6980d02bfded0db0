package activation

import "avviso/pkg/domain"

// Activation records whether a citizen has activated a special service.
// Special services may deliver messages only while the status is ACTIVE;
// PENDING, INACTIVE, and a missing record all deny delivery.
type Activation struct {
	FiscalCode domain.FiscalCode
	ServiceID  domain.ServiceID
	Status     domain.ActivationStatus
	UpdatedAt  int64
}
