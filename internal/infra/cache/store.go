package cache

import (
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	DefaultTTL        = 3600 * time.Second
	DefaultMaxEntries = 100
)

type entry[V any] struct {
	value    V
	expireAt time.Time
}

// Store is a bounded in-process key-value cache with a TTL per key.
// When full, the least recently used key is evicted. Expired keys are
// treated as absent and removed lazily on access.
type Store[V any] struct {
	items *lru.Cache[string, entry[V]]
	now   func() time.Time
}

// NewStore creates a store holding at most maxEntries keys.
func NewStore[V any](maxEntries int) (*Store[V], error) {
	if maxEntries <= 0 {
		return nil, fmt.Errorf("cache max entries must be positive, got %d", maxEntries)
	}
	items, err := lru.New[string, entry[V]](maxEntries)
	if err != nil {
		return nil, fmt.Errorf("failed to create lru cache: %w", err)
	}
	return &Store[V]{items: items, now: time.Now}, nil
}

// Get returns the value for key if present and unexpired.
func (s *Store[V]) Get(key string) (V, bool) {
	e, ok := s.items.Get(key)
	if !ok {
		var zero V
		return zero, false
	}
	if !s.now().Before(e.expireAt) {
		s.items.Remove(key)
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value under key, overwriting any previous value. A non-positive ttl
// stores nothing and drops an existing key.
func (s *Store[V]) Set(key string, value V, ttl time.Duration) {
	if ttl <= 0 {
		s.items.Remove(key)
		return
	}
	s.items.Add(key, entry[V]{value: value, expireAt: s.now().Add(ttl)})
}

// Delete removes key.
func (s *Store[V]) Delete(key string) {
	s.items.Remove(key)
}

// Len reports the number of keys held, including expired ones not yet collected.
func (s *Store[V]) Len() int {
	return s.items.Len()
}

// Purge drops every key.
func (s *Store[V]) Purge() {
	s.items.Purge()
}
