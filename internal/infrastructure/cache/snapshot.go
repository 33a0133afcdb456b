// Package cache provides a single-entry, time-bounded memoization of an
// expensive upstream list call. The upstream platform stays authoritative;
// the snapshot only spares redundant reads within a short window.
package cache

import (
	"context"
	"sync"
	"time"
)

const defaultTTL = 5 * time.Minute

// FetchFunc loads a fresh snapshot from upstream.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Snapshot memoizes one value for a TTL. A fresh fetch replaces the cache
// unconditionally; there is no negative caching and no stampede protection,
// so concurrent misses may each hit upstream. That is acceptable because the
// wrapped call is idempotent and read-only. The mutex exists for memory
// safety, not to serialize fetches.
type Snapshot[T any] struct {
	mu        sync.Mutex
	ttl       time.Duration
	now       func() time.Time
	fetch     FetchFunc[T]
	data      T
	fetchedAt time.Time
	valid     bool
}

// New creates a Snapshot with the given TTL; ttl <= 0 means the 5 minute
// default.
func New[T any](ttl time.Duration, fetch FetchFunc[T]) *Snapshot[T] {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Snapshot[T]{ttl: ttl, now: time.Now, fetch: fetch}
}

// Get returns the cached snapshot when it is younger than the TTL, otherwise
// fetches fresh data and replaces the cache. Fetch errors are returned
// without poisoning a still-valid cache entry.
func (s *Snapshot[T]) Get(ctx context.Context) (T, error) {
	s.mu.Lock()
	if s.valid && s.now().Sub(s.fetchedAt) < s.ttl {
		data := s.data
		s.mu.Unlock()
		return data, nil
	}
	s.mu.Unlock()

	data, err := s.fetch(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	s.mu.Lock()
	s.data = data
	s.fetchedAt = s.now()
	s.valid = true
	s.mu.Unlock()
	return data, nil
}

// Invalidate drops the cached entry. Call it after any mutation of the
// underlying resource class so the next read sees live state.
func (s *Snapshot[T]) Invalidate() {
	s.mu.Lock()
	s.valid = false
	var zero T
	s.data = zero
	s.mu.Unlock()
}

// Age reports how old the cached entry is, and false when nothing is cached.
func (s *Snapshot[T]) Age() (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.valid {
		return 0, false
	}
	return s.now().Sub(s.fetchedAt), true
}
