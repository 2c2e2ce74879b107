package cache

import (
	"encoding/json"
	"sync"
	"time"
)

// Entry is a single cached upstream response.
type Entry struct {
	Value     json.RawMessage
	StoredAt  time.Time
	ExpiresAt time.Time
}

func (e *Entry) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// Store is an in-memory TTL key-value store. Its lifetime is the process
// lifetime; nothing is ever persisted.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*Entry

	now func() time.Time // swapped in tests
}

func NewStore() *Store {
	return &Store{
		entries: make(map[string]*Entry),
		now:     time.Now,
	}
}

// Get returns the cached value for key. Absent and expired entries are both
// misses; expired entries are only reachable via GetStale.
func (s *Store) Get(key string) (json.RawMessage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ent, ok := s.entries[key]
	if !ok || ent.Expired(s.now()) {
		return nil, false
	}
	return ent.Value, true
}

// GetStale returns the entry for key even when expired, as long as it expired
// no longer than staleFor ago. The second return reports whether the entry is
// past its TTL (stale-while-revalidate: the caller serves it and refreshes in
// the background).
func (s *Store) GetStale(key string, staleFor time.Duration) (value json.RawMessage, stale, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ent, found := s.entries[key]
	if !found {
		return nil, false, false
	}
	now := s.now()
	if !ent.Expired(now) {
		return ent.Value, false, true
	}
	if now.Sub(ent.ExpiresAt) > staleFor {
		return nil, false, false
	}
	return ent.Value, true, true
}

// Set stores value under key, overwriting any existing entry unconditionally.
func (s *Store) Set(key string, value json.RawMessage, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.entries[key] = &Entry{
		Value:     value,
		StoredAt:  now,
		ExpiresAt: now.Add(ttl),
	}
}

// Invalidate removes all entries whose key matches the predicate and reports
// how many were dropped. Used on context switches ("everything for user X").
func (s *Store) Invalidate(match func(key string) bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var dropped int
	for key := range s.entries {
		if match(key) {
			delete(s.entries, key)
			dropped++
		}
	}
	return dropped
}

// ClearAll empties the store. It is synchronous: once it returns no previous
// entry can be observed.
func (s *Store) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]*Entry)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}
