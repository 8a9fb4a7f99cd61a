package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/me/dayplan/pkg/model"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and returns
// a Store. Use ":memory:" for an in-memory database (useful in tests).
func NewSQLiteStore(dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma wal: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		logger: logger.With("component", "store"),
	}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Migrate creates all required tables and indexes.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	s.logger.Debug("sql", "op", "migrate")
	return migrate(ctx, s.db)
}

func (s *SQLiteStore) CreatePlanRun(ctx context.Context, run *model.PlanRun) error {
	s.logger.Debug("sql", "op", "insert", "table", "plan_runs", "id", run.ID)

	tasksJSON, err := json.Marshal(run.Tasks)
	if err != nil {
		return fmt.Errorf("marshal tasks: %w", err)
	}
	slotsJSON, err := json.Marshal(run.Slots)
	if err != nil {
		return fmt.Errorf("marshal slots: %w", err)
	}
	scheduledJSON, err := json.Marshal(run.Scheduled)
	if err != nil {
		return fmt.Errorf("marshal scheduled: %w", err)
	}
	unscheduledJSON, err := json.Marshal(run.Unscheduled)
	if err != nil {
		return fmt.Errorf("marshal unscheduled: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO plan_runs (id, name, tasks, slots, scheduled, unscheduled, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Name,
		string(tasksJSON), string(slotsJSON), string(scheduledJSON), string(unscheduledJSON),
		run.CreatedAt.Format(time.RFC3339Nano),
	)
	return err
}

func (s *SQLiteStore) GetPlanRun(ctx context.Context, id string) (*model.PlanRun, error) {
	s.logger.Debug("sql", "op", "select", "table", "plan_runs", "id", id)

	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, tasks, slots, scheduled, unscheduled, created_at
		 FROM plan_runs WHERE id = ?`, id)

	run, err := scanPlanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return run, err
}

func (s *SQLiteStore) ListPlanRuns(ctx context.Context, opts model.ListOptions) ([]*model.PlanRun, int, error) {
	opts.Clamp()
	s.logger.Debug("sql", "op", "select", "table", "plan_runs", "limit", opts.Limit, "offset", opts.Offset)

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM plan_runs`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, tasks, slots, scheduled, unscheduled, created_at
		 FROM plan_runs ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		opts.Limit, opts.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var runs []*model.PlanRun
	for rows.Next() {
		run, err := scanPlanRun(rows)
		if err != nil {
			return nil, 0, err
		}
		runs = append(runs, run)
	}
	return runs, total, rows.Err()
}

func (s *SQLiteStore) DeletePlanRun(ctx context.Context, id string) error {
	s.logger.Debug("sql", "op", "delete", "table", "plan_runs", "id", id)
	res, err := s.db.ExecContext(ctx, `DELETE FROM plan_runs WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.NewNotFoundError("plan run", id)
	}
	return nil
}

// scanner abstracts *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanPlanRun(sc scanner) (*model.PlanRun, error) {
	var run model.PlanRun
	var tasksJSON, slotsJSON, scheduledJSON, unscheduledJSON, createdAt string

	err := sc.Scan(&run.ID, &run.Name,
		&tasksJSON, &slotsJSON, &scheduledJSON, &unscheduledJSON, &createdAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(tasksJSON), &run.Tasks); err != nil {
		return nil, fmt.Errorf("unmarshal tasks: %w", err)
	}
	if err := json.Unmarshal([]byte(slotsJSON), &run.Slots); err != nil {
		return nil, fmt.Errorf("unmarshal slots: %w", err)
	}
	if err := json.Unmarshal([]byte(scheduledJSON), &run.Scheduled); err != nil {
		return nil, fmt.Errorf("unmarshal scheduled: %w", err)
	}
	if err := json.Unmarshal([]byte(unscheduledJSON), &run.Unscheduled); err != nil {
		return nil, fmt.Errorf("unmarshal unscheduled: %w", err)
	}
	run.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)

	return &run, nil
}
