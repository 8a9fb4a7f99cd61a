package store

import (
	"context"
	"database/sql"
	"fmt"
)

// schema contains the DDL for all dayplan tables.
// Each statement uses IF NOT EXISTS for idempotency.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS plan_runs (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL DEFAULT '',
		tasks       TEXT NOT NULL,
		slots       TEXT NOT NULL,
		scheduled   TEXT NOT NULL,
		unscheduled TEXT NOT NULL,
		created_at  TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_plan_runs_created_at ON plan_runs(created_at)`,
}

// migrate applies every schema statement in order.
func migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
