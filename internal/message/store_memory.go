package message

import (
	"context"
	"fmt"
	"sync"

	"avviso/pkg/domain"
	"avviso/pkg/platform/sentinel"
)

// MemoryStore keeps message metadata in memory for tests and local dev.
type MemoryStore struct {
	mu       sync.RWMutex
	messages map[domain.MessageID]*Metadata
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{messages: make(map[domain.MessageID]*Metadata)}
}

func (s *MemoryStore) Upsert(ctx context.Context, meta *Metadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *meta
	s.messages[meta.ID] = &cp
	return nil
}

func (s *MemoryStore) Find(ctx context.Context, id domain.MessageID) (*Metadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	meta, ok := s.messages[id]
	if !ok {
		return nil, fmt.Errorf("find message %s: %w", id, sentinel.ErrNotFound)
	}
	cp := *meta
	return &cp, nil
}

// MemoryContentStore keeps content blobs in memory for tests.
type MemoryContentStore struct {
	mu    sync.RWMutex
	blobs map[domain.MessageID]*Content
}

func NewMemoryContentStore() *MemoryContentStore {
	return &MemoryContentStore{blobs: make(map[domain.MessageID]*Content)}
}

func (s *MemoryContentStore) Put(ctx context.Context, id domain.MessageID, content *Content) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *content
	s.blobs[id] = &cp
	return nil
}

func (s *MemoryContentStore) Get(ctx context.Context, id domain.MessageID) (*Content, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	content, ok := s.blobs[id]
	if !ok {
		return nil, fmt.Errorf("get content %s: %w", id, sentinel.ErrNotFound)
	}
	cp := *content
	return &cp, nil
}
