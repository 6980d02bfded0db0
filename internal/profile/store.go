package profile

import (
	"context"

	"avviso/pkg/domain"
)

// Store provides access to profiles. FindLast returns the newest revision
// for a fiscal code, or a wrapped sentinel.ErrNotFound when the citizen has
// no profile yet; any other error means the store could not answer and the
// caller must treat the whole operation as retryable.
type Store interface {
	FindLast(ctx context.Context, fiscalCode domain.FiscalCode) (*Profile, error)
	Save(ctx context.Context, profile *Profile) error
}
