package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and infrastructure layers
// return these (optionally wrapped) so callers can distinguish "the record is
// not there" from "the store could not answer".
//
// ErrNotFound is a legitimate business state for profile, preference, and
// activation lookups; anything else coming out of a store is an operational
// fault and must propagate so the whole evaluation is retried.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("unavailable")
)
