package activation

import (
	"context"

	"avviso/pkg/domain"
)

// Store provides access to special-service activations. FindLast returns a
// wrapped sentinel.ErrNotFound when the citizen never interacted with the
// service.
type Store interface {
	FindLast(ctx context.Context, fiscalCode domain.FiscalCode, serviceID domain.ServiceID) (*Activation, error)
	Save(ctx context.Context, act *Activation) error
}
