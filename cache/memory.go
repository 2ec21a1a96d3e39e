package cache

import (
	"context"
	"sync"
)

// MemoryStore keeps translations in memory for the lifetime of the value.
// It is never persisted.
type MemoryStore struct {
	entries map[string]string
	mu      sync.RWMutex
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]string)}
}

// Load returns a copy of the stored entries.
func (s *MemoryStore) Load(ctx context.Context) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneEntries(s.entries), nil
}

// Save replaces the stored entries with a copy of entries.
func (s *MemoryStore) Save(ctx context.Context, entries map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = cloneEntries(entries)
	return nil
}

// Len returns the number of stored entries.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Verify MemoryStore implements Store
var _ Store = (*MemoryStore)(nil)
