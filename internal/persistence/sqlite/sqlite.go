package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// Store is a SQLite-backed implementation of the persistence interfaces.
type Store struct {
	db *sql.DB
}

// Open connects to the SQLite database identified by dsn and verifies the
// connection. Foreign keys are enabled per connection.
func Open(dsn string) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("sqlite: dsn must not be empty")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open database: %w", err)
	}

	// modernc.org/sqlite serializes writes internally; a single connection
	// avoids SQLITE_BUSY on concurrent writers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: enable foreign keys: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// migrations lists schema versions in apply order. Each statement set runs in
// one transaction together with the version bookkeeping.
var migrations = []struct {
	version    int
	statements []string
}{
	{
		version: 1,
		statements: []string{
			`CREATE TABLE IF NOT EXISTS schedule_entries (
				id TEXT PRIMARY KEY,
				task_id TEXT NOT NULL,
				scheduled_at TEXT NOT NULL,
				assigned_worker_id TEXT,
				building_id TEXT NOT NULL,
				created_by TEXT NOT NULL,
				priority TEXT NOT NULL,
				estimated_duration_seconds INTEGER NOT NULL CHECK (estimated_duration_seconds > 0),
				status TEXT NOT NULL,
				requires_worker_confirmation INTEGER NOT NULL DEFAULT 0,
				smart_scheduling_enabled INTEGER NOT NULL DEFAULT 0,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_schedule_entries_worker ON schedule_entries (assigned_worker_id, scheduled_at)`,
			`CREATE INDEX IF NOT EXISTS idx_schedule_entries_building ON schedule_entries (building_id, scheduled_at)`,
		},
	},
	{
		version: 2,
		statements: []string{
			`CREATE TABLE IF NOT EXISTS workers (
				id TEXT PRIMARY KEY,
				display_name TEXT NOT NULL,
				preferred_start_minute INTEGER NOT NULL DEFAULT 480,
				preferred_end_minute INTEGER NOT NULL DEFAULT 1080,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS worker_availability (
				worker_id TEXT NOT NULL REFERENCES workers(id) ON DELETE CASCADE,
				weekday INTEGER NOT NULL CHECK (weekday BETWEEN 0 AND 6),
				start_minute INTEGER NOT NULL,
				end_minute INTEGER NOT NULL,
				PRIMARY KEY (worker_id, weekday, start_minute)
			)`,
			`CREATE TABLE IF NOT EXISTS worker_buildings (
				worker_id TEXT NOT NULL REFERENCES workers(id) ON DELETE CASCADE,
				building_id TEXT NOT NULL,
				PRIMARY KEY (worker_id, building_id)
			)`,
		},
	},
	{
		version: 3,
		statements: []string{
			`CREATE TABLE IF NOT EXISTS task_annotations (
				task_id TEXT PRIMARY KEY,
				schedule_id TEXT NOT NULL,
				scheduled_at TEXT NOT NULL,
				worker_id TEXT,
				updated_at TEXT NOT NULL
			)`,
		},
	},
}

// Migrate applies any pending schema versions. It is safe to call on every
// startup; applied versions are recorded in schema_migrations.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
	)`); err != nil {
		return fmt.Errorf("sqlite: create schema_migrations: %w", err)
	}

	for _, migration := range migrations {
		applied, err := s.migrationApplied(ctx, migration.version)
		if err != nil {
			return err
		}
		if applied {
			continue
		}
		if err := s.withTransaction(ctx, func(tx *sql.Tx) error {
			for _, stmt := range migration.statements {
				if _, err := tx.ExecContext(ctx, stmt); err != nil {
					return fmt.Errorf("sqlite: migration %d: %w", migration.version, err)
				}
			}
			if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES (?)`, migration.version); err != nil {
				return fmt.Errorf("sqlite: record migration %d: %w", migration.version, err)
			}
			return nil
		}); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) migrationApplied(ctx context.Context, version int) (bool, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations WHERE version = ?`, version).Scan(&count); err != nil {
		return false, fmt.Errorf("sqlite: check migration %d: %w", version, err)
	}
	return count > 0, nil
}

func (s *Store) withTransaction(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			return fmt.Errorf("sqlite: rollback after %v: %w", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit transaction: %w", err)
	}
	return nil
}
