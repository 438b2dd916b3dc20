package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	storedAt  time.Time
	expiresAt time.Time
}

// MemoryStore is a process-local Store with the same semantics as the Redis
// store. Used in tests and when running without Redis; a cache outage
// degrades performance, not correctness, so the swap is transparent.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry)}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[key]
	if !ok {
		return nil, ErrMiss
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		return nil, ErrMiss
	}
	return entry.value, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := memoryEntry{value: value, storedAt: time.Now()}
	if ttl > 0 {
		entry.expiresAt = entry.storedAt.Add(ttl)
	}
	s.entries[key] = entry
	return nil
}

func (s *MemoryStore) ExpireBefore(_ context.Context, cutoff time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, entry := range s.entries {
		createdAt, err := CreatedAt(entry.value)
		if err != nil || createdAt.Before(cutoff) {
			delete(s.entries, key)
		}
	}
	return nil
}
