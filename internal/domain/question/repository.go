package question

import (
	"context"
)

// Repository defines the operations for persisting and retrieving questions.
type Repository interface {
	Create(ctx context.Context, q *Question) error
	// FindOne returns ErrNotFound when no question is assigned to region for the cycle.
	FindOne(ctx context.Context, region string, assignedCycle int) (*Question, error)
	FindAll(ctx context.Context) ([]*Question, error)
}
