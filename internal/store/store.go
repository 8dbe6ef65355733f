// Package store implements the expiring result store backing the cache.
//
// It is a deliberately simple map guarded by a single mutex. Expiry is
// lazy: an entry past its deadline is removed and reported as a miss at
// read time, so no background activity is required for correctness. The
// owner may additionally call DeleteExpired periodically to reclaim
// memory held by keys that are never read again.
//
// A single coarse lock is sufficient here because it is held only for
// map operations, never across an execution. Sharding the map by key
// hash is the scaling path if lock contention ever shows up at high key
// cardinality.
package store

import (
	"sync"
	"time"
)

// Entry is one completed outcome together with its expiration deadline.
// Exactly one of Value and Err is meaningful, mirroring the (V, error)
// pair the operation produced.
type Entry[V any] struct {
	ExpiresAt time.Time
	Value     V
	Err       error
}

// expired reports whether the entry is past its deadline at now.
func (e Entry[V]) expired(now time.Time) bool {
	return !e.ExpiresAt.After(now)
}

// Store maps keys to their most recent completed outcome.
type Store[V any] struct {
	entries map[string]Entry[V]
	mu      sync.Mutex
}

// New creates an empty store.
func New[V any]() *Store[V] {
	return &Store[V]{
		entries: make(map[string]Entry[V]),
	}
}

// Get returns the entry for key if one exists and is still fresh at now.
// An entry found past its deadline is deleted in place and reported as
// a miss, indistinguishable from absence.
func (s *Store[V]) Get(key string, now time.Time) (Entry[V], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return Entry[V]{}, false
	}

	if e.expired(now) {
		delete(s.entries, key)
		return Entry[V]{}, false
	}

	return e, true
}

// Set unconditionally overwrites the entry for key.
func (s *Store[V]) Set(key string, e Entry[V]) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = e
}

// Delete removes the entry for key if present.
func (s *Store[V]) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
}

// Len returns the number of stored entries, including entries that have
// expired but have not been read or swept yet.
func (s *Store[V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.entries)
}

// DeleteExpired removes every entry past its deadline at now and returns
// how many were removed.
func (s *Store[V]) DeleteExpired(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, e := range s.entries {
		if e.expired(now) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}
