// internal/domain/question/question.go
package question

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrNotFound = errors.New("question not found")
var ErrInvalid = errors.New("invalid question")

// Question is the question assigned to a region for one cycle.
// It is never modified after creation; caches keep copies of it.
type Question struct {
	ID            string    `json:"id"`
	Region        string    `json:"region"`
	AssignedCycle int       `json:"assignedCycle"`
	Text          string    `json:"text"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Validate checks the fields a caller supplies when authoring a question.
func Validate(region, text string, assignedCycle int) error {
	if strings.TrimSpace(region) == "" {
		return fmt.Errorf("%w: region must not be empty", ErrInvalid)
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: text must not be empty", ErrInvalid)
	}
	if assignedCycle < 1 {
		return fmt.Errorf("%w: assigned cycle must be at least 1, got %d", ErrInvalid, assignedCycle)
	}
	return nil
}
