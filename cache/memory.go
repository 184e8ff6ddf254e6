package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store with size-bounded FIFO eviction.
// Insertion order doubles as creation order, so evicting from the front of
// the list always removes the oldest entry.
type MemoryStore struct {
	mu         sync.Mutex
	entries    map[string]*memEntry
	order      *list.List // front = oldest
	maxEntries int
	now        func() time.Time
}

type memEntry struct {
	value     []byte
	createdAt time.Time
	ttl       time.Duration
	elem      *list.Element
}

// NewMemoryStore creates an in-memory store bounded to maxEntries.
// maxEntries <= 0 means unbounded.
func NewMemoryStore(maxEntries int) *MemoryStore {
	return &MemoryStore{
		entries:    make(map[string]*memEntry),
		order:      list.New(),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Get retrieves an entry. Returns (Entry{}, false) on miss or expiry.
// Expired entries are cleaned up lazily here; there is no background sweep.
func (s *MemoryStore) Get(_ context.Context, key string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return Entry{}, false
	}

	if s.now().Sub(e.createdAt) >= e.ttl {
		s.removeLocked(key, e)
		return Entry{}, false
	}

	return Entry{
		Key:       key,
		Value:     e.value,
		CreatedAt: e.createdAt,
		TTL:       e.ttl,
	}, true
}

// SetWithExpiry stores a value with the given TTL. TTL<=0 means no caching.
// An existing entry for the key is replaced, which also moves it to the
// back of the eviction order.
func (s *MemoryStore) SetWithExpiry(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.entries[key]; ok {
		s.removeLocked(key, old)
	}

	e := &memEntry{
		value:     value,
		createdAt: s.now(),
		ttl:       ttl,
	}
	e.elem = s.order.PushBack(key)
	s.entries[key] = e

	for s.maxEntries > 0 && len(s.entries) > s.maxEntries {
		front := s.order.Front()
		if front == nil {
			break
		}
		oldest := front.Value.(string)
		s.removeLocked(oldest, s.entries[oldest])
	}

	return nil
}

// Delete removes an entry. Idempotent - no error on miss.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[key]; ok {
		s.removeLocked(key, e)
	}
	return nil
}

// Keys returns the keys of all live entries.
func (s *MemoryStore) Keys(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	keys := make([]string, 0, len(s.entries))
	for k, e := range s.entries {
		if now.Sub(e.createdAt) >= e.ttl {
			continue
		}
		keys = append(keys, k)
	}
	return keys, nil
}

// Stats reports entry count and age statistics for live entries.
func (s *MemoryStore) Stats(_ context.Context) (StoreStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var stats StoreStats
	var totalAge time.Duration
	for _, e := range s.entries {
		age := now.Sub(e.createdAt)
		if age >= e.ttl {
			continue
		}
		stats.Entries++
		totalAge += age
		if age > stats.OldestAge {
			stats.OldestAge = age
		}
	}
	if stats.Entries > 0 {
		stats.AvgAge = totalAge / time.Duration(stats.Entries)
	}
	return stats, nil
}

func (s *MemoryStore) removeLocked(key string, e *memEntry) {
	if e == nil {
		return
	}
	delete(s.entries, key)
	if e.elem != nil {
		s.order.Remove(e.elem)
	}
}

// Ensure MemoryStore implements Store and its optional extensions
var (
	_ Store     = (*MemoryStore)(nil)
	_ Scanner   = (*MemoryStore)(nil)
	_ Inspector = (*MemoryStore)(nil)
)
