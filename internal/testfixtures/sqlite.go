package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/fieldops-scheduler/internal/persistence"
	"github.com/example/fieldops-scheduler/internal/persistence/sqlite"
)

// SQLiteHarness provides store access backed by a temporary SQLite database
// for integration-style persistence tests. Store exposes the concrete type
// for tests that migrate or wire adapters; the role-typed views cover tests
// that only need one interface.
type SQLiteHarness struct {
	Store *sqlite.Store

	Schedules persistence.ScheduleStore
	Workers   persistence.WorkerRegistry
	Tasks     persistence.TaskAnnotator

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness constructs a SQLiteHarness using a temporary file that is
// migrated automatically. Callers may optionally invoke Close, but the helper
// also registers a cleanup callback with the provided testing.TB.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "fieldops.db")

	store, err := sqlite.Open("file:" + path)
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		_ = store.Close()
		tb.Fatalf("failed to migrate storage: %v", err)
	}

	harness := &SQLiteHarness{
		Store:     store,
		Schedules: store,
		Workers:   store,
		Tasks:     store,
		cleanup: func() {
			_ = store.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}
