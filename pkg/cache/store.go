package cache

import (
	"sync"
	"time"
)

type entry[T any] struct {
	v   T
	exp time.Time
}

func (e entry[T]) expired(now time.Time) bool {
	return !e.exp.IsZero() && now.After(e.exp)
}

// Store is an in-memory TTL-stamped map bounded by capacity. When an insert
// would push the map past capacity the whole store is cleared rather than
// evicting selectively; the next requests repopulate it lazily.
type Store[T any] struct {
	mu       sync.RWMutex
	m        map[string]entry[T]
	capacity int
}

// New creates a Store holding at most capacity entries. capacity <= 0 means
// unbounded.
func New[T any](capacity int) *Store[T] {
	return &Store[T]{m: make(map[string]entry[T]), capacity: capacity}
}

// Get returns the live value for key. Expired entries are dropped on read.
func (s *Store[T]) Get(key string) (T, bool) {
	s.mu.RLock()
	e, ok := s.m[key]
	s.mu.RUnlock()
	if !ok {
		var zero T
		return zero, false
	}
	if e.expired(time.Now()) {
		s.mu.Lock()
		delete(s.m, key)
		s.mu.Unlock()
		var zero T
		return zero, false
	}
	return e.v, true
}

// Set stores v under key for ttl. ttl <= 0 stores without expiry.
func (s *Store[T]) Set(key string, v T, ttl time.Duration) {
	var exp time.Time
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	s.mu.Lock()
	if s.capacity > 0 && len(s.m) >= s.capacity {
		if _, exists := s.m[key]; !exists {
			s.m = make(map[string]entry[T])
		}
	}
	s.m[key] = entry[T]{v: v, exp: exp}
	s.mu.Unlock()
}

// Delete removes key if present.
func (s *Store[T]) Delete(key string) {
	s.mu.Lock()
	delete(s.m, key)
	s.mu.Unlock()
}

// Len returns the number of stored entries, expired ones included.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}

// Clear drops every entry.
func (s *Store[T]) Clear() {
	s.mu.Lock()
	s.m = make(map[string]entry[T])
	s.mu.Unlock()
}
