package profile

import (
	"context"
	"fmt"
	"sync"
	"time"

	"avviso/pkg/domain"
	"avviso/pkg/platform/sentinel"
)

// MemoryStore keeps profile revisions in memory. Used by unit tests and
// local development.
type MemoryStore struct {
	mu        sync.RWMutex
	revisions map[domain.FiscalCode][]*Profile
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{revisions: make(map[domain.FiscalCode][]*Profile)}
}

func (s *MemoryStore) FindLast(ctx context.Context, fiscalCode domain.FiscalCode) (*Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	revs := s.revisions[fiscalCode]
	if len(revs) == 0 {
		return nil, fmt.Errorf("find profile %s: %w", fiscalCode, sentinel.ErrNotFound)
	}
	return revs[len(revs)-1].Clone(), nil
}

func (s *MemoryStore) Save(ctx context.Context, p *Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := p.Clone()
	cp.Version = len(s.revisions[p.FiscalCode])
	if cp.UpdatedAt == 0 {
		cp.UpdatedAt = time.Now().Unix()
	}
	s.revisions[p.FiscalCode] = append(s.revisions[p.FiscalCode], cp)
	return nil
}
