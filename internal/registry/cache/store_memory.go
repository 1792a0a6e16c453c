package cache

import (
	"context"
	"sync"
	"time"

	"companygraph/pkg/platform/sentinel"
)

type cachedBody struct {
	body      []byte
	expiresAt time.Time
}

// InMemoryStore keeps lookup responses in process memory with TTL expiration.
type InMemoryStore struct {
	mu         sync.RWMutex
	entries    map[string]cachedBody
	maxEntries int
	now        func() time.Time
}

// NewInMemoryStore creates a store holding at most maxEntries responses.
func NewInMemoryStore(maxEntries int) *InMemoryStore {
	if maxEntries <= 0 {
		maxEntries = 10000
	}
	return &InMemoryStore{
		entries:    make(map[string]cachedBody),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Get returns the cached body for key, or sentinel.ErrNotFound if it is
// missing or expired.
func (s *InMemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	cached, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if !s.now().Before(cached.expiresAt) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return nil, sentinel.ErrNotFound
	}
	return cached.body, nil
}

// Set stores body under key for ttl. When the store is full and nothing has
// expired, the entry is dropped.
func (s *InMemoryStore) Set(_ context.Context, key string, body []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if _, exists := s.entries[key]; !exists && len(s.entries) >= s.maxEntries {
		s.sweepLocked(now)
		if len(s.entries) >= s.maxEntries {
			return nil
		}
	}
	s.entries[key] = cachedBody{body: body, expiresAt: now.Add(ttl)}
	return nil
}

// Len reports the number of stored entries, expired ones included.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *InMemoryStore) sweepLocked(now time.Time) {
	for k, v := range s.entries {
		if !now.Before(v.expiresAt) {
			delete(s.entries, k)
		}
	}
}
