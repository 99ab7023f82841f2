package database

import (
	"context"
	"database/sql"
	"fmt"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS questions (
    id             UUID PRIMARY KEY,
    region         VARCHAR(255) NOT NULL,
    assigned_cycle INTEGER NOT NULL CHECK (assigned_cycle > 0),
    text           TEXT NOT NULL,
    created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_questions_region_cycle ON questions (region, assigned_cycle);
CREATE INDEX IF NOT EXISTS idx_questions_cycle ON questions (assigned_cycle);
`

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS questions (
    id             TEXT PRIMARY KEY,
    region         TEXT NOT NULL,
    assigned_cycle INTEGER NOT NULL CHECK (assigned_cycle > 0),
    text           TEXT NOT NULL,
    created_at     DATETIME NOT NULL,
    updated_at     DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_questions_region_cycle ON questions (region, assigned_cycle);
CREATE INDEX IF NOT EXISTS idx_questions_cycle ON questions (assigned_cycle);
`

// Migrate creates the questions schema if it does not exist yet.
func Migrate(ctx context.Context, db *sql.DB, driver string) error {
	var schema string
	switch driver {
	case DriverPostgres:
		schema = postgresSchema
	case DriverSQLite:
		schema = sqliteSchema
	default:
		return fmt.Errorf("unsupported database driver %q", driver)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply questions schema: %w", err)
	}
	return nil
}
