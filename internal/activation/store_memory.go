package activation

import (
	"context"
	"fmt"
	"sync"

	"avviso/pkg/domain"
	"avviso/pkg/platform/sentinel"
)

type memoryKey struct {
	fiscalCode domain.FiscalCode
	serviceID  domain.ServiceID
}

// MemoryStore keeps activations in memory for tests and local dev.
type MemoryStore struct {
	mu          sync.RWMutex
	activations map[memoryKey]*Activation
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{activations: make(map[memoryKey]*Activation)}
}

func (s *MemoryStore) FindLast(ctx context.Context, fiscalCode domain.FiscalCode, serviceID domain.ServiceID) (*Activation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	act, ok := s.activations[memoryKey{fiscalCode, serviceID}]
	if !ok {
		return nil, fmt.Errorf("find activation %s/%s: %w", fiscalCode, serviceID, sentinel.ErrNotFound)
	}
	cp := *act
	return &cp, nil
}

func (s *MemoryStore) Save(ctx context.Context, act *Activation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *act
	s.activations[memoryKey{act.FiscalCode, act.ServiceID}] = &cp
	return nil
}
