package preference

import (
	"context"
	"fmt"
	"sync"

	"avviso/pkg/domain"
	"avviso/pkg/platform/sentinel"
)

type memoryKey struct {
	fiscalCode      domain.FiscalCode
	serviceID       domain.ServiceID
	settingsVersion int
}

// MemoryStore keeps service preferences in memory for tests and local dev.
type MemoryStore struct {
	mu    sync.RWMutex
	prefs map[memoryKey]*ServicePreference
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{prefs: make(map[memoryKey]*ServicePreference)}
}

func (s *MemoryStore) Find(ctx context.Context, fiscalCode domain.FiscalCode, serviceID domain.ServiceID, settingsVersion int) (*ServicePreference, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pref, ok := s.prefs[memoryKey{fiscalCode, serviceID, settingsVersion}]
	if !ok {
		return nil, fmt.Errorf("find preference %s/%s/%d: %w", fiscalCode, serviceID, settingsVersion, sentinel.ErrNotFound)
	}
	cp := *pref
	return &cp, nil
}

func (s *MemoryStore) Save(ctx context.Context, pref *ServicePreference) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *pref
	s.prefs[memoryKey{pref.FiscalCode, pref.ServiceID, pref.SettingsVersion}] = &cp
	return nil
}
