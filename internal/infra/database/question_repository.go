// internal/infra/database/question_repository.go
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"question_cycle_service/internal/domain/question"

	"github.com/google/uuid"
	"github.com/lib/pq" // For pq.Error and driver registration
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var _ question.Repository = (*QuestionRepository)(nil)

// QuestionRepository stores questions in PostgreSQL or SQLite. Queries are
// written with PostgreSQL placeholders and rewritten to SQLite's ?NNN form.
type QuestionRepository struct {
	db     *sql.DB
	driver string
}

func NewQuestionRepository(db *sql.DB, driver string) *QuestionRepository {
	return &QuestionRepository{db: db, driver: driver}
}

func (r *QuestionRepository) rebind(query string) string {
	if r.driver == DriverSQLite {
		return strings.ReplaceAll(query, "$", "?")
	}
	return query
}

func (r *QuestionRepository) Create(ctx context.Context, q *question.Question) error {
	query := `INSERT INTO questions (id, region, assigned_cycle, text, created_at, updated_at)
               VALUES ($1, $2, $3, $4, $5, $6)`

	id := uuid.NewString()
	now := time.Now().UTC().Truncate(time.Microsecond) // PostgreSQL timestamp precision
	_, err := r.db.ExecContext(ctx, r.rebind(query), id, q.Region, q.AssignedCycle, q.Text, now, now)
	if err != nil {
		if isConstraintViolation(err) {
			return fmt.Errorf("%w: %v", question.ErrInvalid, err)
		}
		return fmt.Errorf("error creating question: %w", err)
	}
	q.ID = id
	q.CreatedAt = now
	q.UpdatedAt = now
	return nil
}

// FindOne returns the most recently created question for region and cycle.
func (r *QuestionRepository) FindOne(ctx context.Context, region string, assignedCycle int) (*question.Question, error) {
	query := `SELECT id, region, assigned_cycle, text, created_at, updated_at
               FROM questions
               WHERE region = $1 AND assigned_cycle = $2
               ORDER BY created_at DESC, id DESC LIMIT 1`
	q := &question.Question{}
	err := r.db.QueryRowContext(ctx, r.rebind(query), region, assignedCycle).Scan(
		&q.ID, &q.Region, &q.AssignedCycle, &q.Text, &q.CreatedAt, &q.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, question.ErrNotFound
		}
		return nil, fmt.Errorf("error finding question by region and cycle: %w", err)
	}
	return q, nil
}

// FindAll returns every question, oldest first.
func (r *QuestionRepository) FindAll(ctx context.Context) ([]*question.Question, error) {
	query := `SELECT id, region, assigned_cycle, text, created_at, updated_at
               FROM questions ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing questions: %w", err)
	}
	defer rows.Close()

	questions := make([]*question.Question, 0)
	for rows.Next() {
		q := &question.Question{}
		if err := rows.Scan(&q.ID, &q.Region, &q.AssignedCycle, &q.Text, &q.CreatedAt, &q.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning question row: %w", err)
		}
		questions = append(questions, q)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating question rows: %w", err)
	}
	return questions, nil
}

// isConstraintViolation reports integrity constraint failures from either driver.
func isConstraintViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code.Class() == "23" // integrity_constraint_violation
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
	}
	return false
}
