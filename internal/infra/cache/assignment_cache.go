package cache

import (
	"context"
	"time"

	"question_cycle_service/internal/domain/question"
)

// KeyPrefix namespaces assignment entries per region.
const KeyPrefix = "assigned_question_"

// AssignmentCache maps a region to the question currently assigned to it.
// Values are stored and returned as copies.
type AssignmentCache struct {
	store *Store[question.Question]
}

func NewAssignmentCache(maxEntries int) (*AssignmentCache, error) {
	store, err := NewStore[question.Question](maxEntries)
	if err != nil {
		return nil, err
	}
	return &AssignmentCache{store: store}, nil
}

// Key returns the cache key for region.
func Key(region string) string {
	return KeyPrefix + region
}

func (c *AssignmentCache) Get(_ context.Context, region string) (*question.Question, bool) {
	q, ok := c.store.Get(Key(region))
	if !ok {
		return nil, false
	}
	return &q, true
}

func (c *AssignmentCache) Set(_ context.Context, region string, q *question.Question, ttl time.Duration) {
	if q == nil {
		return
	}
	c.store.Set(Key(region), *q, ttl)
}

func (c *AssignmentCache) Len() int {
	return c.store.Len()
}
