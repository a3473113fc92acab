package testfixtures

import (
	"context"
	"testing"

	"github.com/example/salon-scheduler/internal/persistence"
	"github.com/example/salon-scheduler/internal/persistence/memory"
	"github.com/example/salon-scheduler/internal/persistence/sqlstore"
)

// SQLiteHarness provides repository access backed by a temporary, migrated
// and seeded SQLite database.
type SQLiteHarness struct {
	Store        *sqlstore.Store
	Appointments persistence.AppointmentRepository
	Users        persistence.UserRepository
	Employees    persistence.EmployeeRepository
	Services     persistence.ServiceRepository

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness opens a database file under tb.TempDir. Callers may
// invoke Close early; a cleanup callback is registered either way.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	ctx := context.Background()
	store, err := sqlstore.Open(ctx, sqlstore.TempFileTestConfig(tb.TempDir()), nil)
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		tb.Fatalf("failed to migrate storage: %v", err)
	}
	if err := store.Seed(ctx); err != nil {
		_ = store.Close()
		tb.Fatalf("failed to seed storage: %v", err)
	}

	harness := &SQLiteHarness{
		Store:        store,
		Appointments: store.Appointments(),
		Users:        store.Users(),
		Employees:    store.Employees(),
		Services:     store.Services(),
		cleanup: func() {
			_ = store.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}

// NewMemoryStore returns a seeded in-memory store.
func NewMemoryStore(tb testing.TB) *memory.Storage {
	tb.Helper()

	store := memory.Open()
	if err := store.Seed(context.Background()); err != nil {
		tb.Fatalf("failed to seed memory store: %v", err)
	}
	return store
}

// Stores returns every persistence.Store implementation, each freshly
// created, keyed by a name suitable for subtests.
func Stores(tb testing.TB) map[string]persistence.Store {
	tb.Helper()
	return map[string]persistence.Store{
		"memory": NewMemoryStore(tb),
		"sqlite": NewSQLiteHarness(tb).Store,
	}
}
