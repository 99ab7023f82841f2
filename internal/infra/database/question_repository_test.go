package database

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"question_cycle_service/internal/domain/question"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := NewSQLiteConnection(filepath.Join(t.TempDir(), "questions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, Migrate(context.Background(), db, DriverSQLite))
	return db
}

func create(t *testing.T, repo *QuestionRepository, region string, cycle int, text string) *question.Question {
	t.Helper()
	q := &question.Question{Region: region, AssignedCycle: cycle, Text: text}
	require.NoError(t, repo.Create(context.Background(), q))
	time.Sleep(2 * time.Millisecond) // keep created_at strictly increasing
	return q
}

func TestMigrate_Idempotent(t *testing.T) {
	db := testDB(t)
	assert.NoError(t, Migrate(context.Background(), db, DriverSQLite))
	assert.Error(t, Migrate(context.Background(), db, "oracle"))
}

func TestQuestionRepository_Create(t *testing.T) {
	repo := NewQuestionRepository(testDB(t), DriverSQLite)

	q := create(t, repo, "APAC", 2, "What did you ship?")
	assert.Len(t, q.ID, 36)
	assert.False(t, q.CreatedAt.IsZero())
	assert.Equal(t, q.CreatedAt, q.UpdatedAt)

	other := create(t, repo, "APAC", 2, "Another")
	assert.NotEqual(t, q.ID, other.ID)
}

func TestQuestionRepository_CreateRejectsInvalidCycle(t *testing.T) {
	repo := NewQuestionRepository(testDB(t), DriverSQLite)

	err := repo.Create(context.Background(), &question.Question{Region: "EU", AssignedCycle: 0, Text: "x"})
	assert.ErrorIs(t, err, question.ErrInvalid)
}

func TestQuestionRepository_FindOne(t *testing.T) {
	ctx := context.Background()
	repo := NewQuestionRepository(testDB(t), DriverSQLite)

	create(t, repo, "APAC", 1, "cycle one")
	apac2 := create(t, repo, "APAC", 2, "cycle two")
	create(t, repo, "EU", 2, "eu cycle two")

	got, err := repo.FindOne(ctx, "APAC", 2)
	require.NoError(t, err)
	assert.Equal(t, apac2.ID, got.ID)
	assert.Equal(t, "APAC", got.Region)
	assert.Equal(t, 2, got.AssignedCycle)
	assert.Equal(t, "cycle two", got.Text)
	assert.True(t, apac2.CreatedAt.Equal(got.CreatedAt))

	_, err = repo.FindOne(ctx, "APAC", 3)
	assert.ErrorIs(t, err, question.ErrNotFound)

	_, err = repo.FindOne(ctx, "US", 2)
	assert.ErrorIs(t, err, question.ErrNotFound)
}

func TestQuestionRepository_FindOnePrefersNewest(t *testing.T) {
	repo := NewQuestionRepository(testDB(t), DriverSQLite)

	create(t, repo, "APAC", 2, "first draft")
	newest := create(t, repo, "APAC", 2, "second draft")

	got, err := repo.FindOne(context.Background(), "APAC", 2)
	require.NoError(t, err)
	assert.Equal(t, newest.ID, got.ID)
}

func TestQuestionRepository_FindAll(t *testing.T) {
	ctx := context.Background()
	repo := NewQuestionRepository(testDB(t), DriverSQLite)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	a := create(t, repo, "APAC", 1, "a")
	b := create(t, repo, "EU", 1, "b")
	c := create(t, repo, "APAC", 2, "c")

	all, err = repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{a.ID, b.ID, c.ID}, []string{all[0].ID, all[1].ID, all[2].ID})
}

func TestQuestionRepository_ClosedDatabase(t *testing.T) {
	db := testDB(t)
	repo := NewQuestionRepository(db, DriverSQLite)
	require.NoError(t, db.Close())

	_, err := repo.FindOne(context.Background(), "APAC", 1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, question.ErrNotFound)

	_, err = repo.FindAll(context.Background())
	assert.Error(t, err)
}

func TestRebind(t *testing.T) {
	lite := NewQuestionRepository(nil, DriverSQLite)
	pg := NewQuestionRepository(nil, DriverPostgres)
	query := "SELECT 1 WHERE a = $1 AND b = $2"

	assert.Equal(t, "SELECT 1 WHERE a = ?1 AND b = ?2", lite.rebind(query))
	assert.Equal(t, query, pg.rebind(query))
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open("oracle", "whatever")
	assert.Error(t, err)
}
