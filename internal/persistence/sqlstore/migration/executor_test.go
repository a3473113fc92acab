package migration

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "migration.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSQLExecutor_InitializeVersionTable(t *testing.T) {
	executor := NewExecutor(setupTestDB(t), squirrel.Question)
	ctx := context.Background()

	if err := executor.InitializeVersionTable(ctx); err != nil {
		t.Fatalf("InitializeVersionTable failed: %v", err)
	}
	if err := executor.InitializeVersionTable(ctx); err != nil {
		t.Errorf("InitializeVersionTable should be idempotent: %v", err)
	}
}

func TestSQLExecutor_ExecuteAndRecord(t *testing.T) {
	db := setupTestDB(t)
	executor := NewExecutor(db, nil)
	ctx := context.Background()

	if err := executor.InitializeVersionTable(ctx); err != nil {
		t.Fatalf("InitializeVersionTable failed: %v", err)
	}

	migration := Migration{
		Version:  "001",
		FilePath: "001_create_test_table.sql",
		Checksum: "abc123",
		SQL: `
			-- Description: test table
			CREATE TABLE test_users (
				id INTEGER PRIMARY KEY,
				name TEXT NOT NULL
			);
			INSERT INTO test_users (name) VALUES ('Test User');
		`,
	}

	if err := executor.ExecuteMigration(ctx, migration); err != nil {
		t.Fatalf("ExecuteMigration failed: %v", err)
	}
	if err := executor.RecordMigration(ctx, migration, 15*time.Millisecond); err != nil {
		t.Fatalf("RecordMigration failed: %v", err)
	}

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM test_users").Scan(&count); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 row, got %d", count)
	}

	applied, err := executor.IsVersionApplied(ctx, "001")
	if err != nil || !applied {
		t.Fatalf("expected 001 applied, got %v (%v)", applied, err)
	}
	applied, err = executor.IsVersionApplied(ctx, "002")
	if err != nil || applied {
		t.Fatalf("expected 002 not applied, got %v (%v)", applied, err)
	}

	versions, err := executor.GetAppliedVersions(ctx)
	if err != nil {
		t.Fatalf("GetAppliedVersions failed: %v", err)
	}
	if len(versions) != 1 || versions[0].Checksum != "abc123" || versions[0].ExecutionTime != 15*time.Millisecond {
		t.Errorf("unexpected applied versions %+v", versions)
	}
}

func TestSQLExecutor_ExecuteMigration_RollsBackOnFailure(t *testing.T) {
	db := setupTestDB(t)
	executor := NewExecutor(db, nil)
	ctx := context.Background()

	err := executor.ExecuteMigration(ctx, Migration{
		Version: "001",
		SQL: `
			CREATE TABLE partial (id INTEGER);
			THIS IS NOT SQL;
		`,
	})

	var dbErr *DatabaseError
	if !errors.As(err, &dbErr) {
		t.Fatalf("expected DatabaseError, got %T (%v)", err, err)
	}

	var name string
	err = db.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type='table' AND name='partial'").Scan(&name)
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected partial table to be rolled back, got %q (%v)", name, err)
	}
}

func TestMigrationManager_AgainstSQLite(t *testing.T) {
	db := setupTestDB(t)
	fsys := fstest.MapFS{
		"schema/001_initial.sql": {Data: []byte("CREATE TABLE a (id INTEGER PRIMARY KEY);")},
		"schema/002_add_b.sql":   {Data: []byte("CREATE TABLE b (id INTEGER PRIMARY KEY);")},
		"schema/003_seed_a.sql":  {Data: []byte("INSERT INTO a (id) VALUES (1);")},
	}
	manager := NewMigrationManager(NewFileScanner(), NewExecutor(db, squirrel.Question), fsys, "schema", nil)
	ctx := context.Background()

	if err := manager.RunMigrations(ctx); err != nil {
		t.Fatalf("first RunMigrations failed: %v", err)
	}
	if err := manager.RunMigrations(ctx); err != nil {
		t.Fatalf("second RunMigrations should be a no-op, got %v", err)
	}

	status, err := manager.GetMigrationStatus(ctx)
	if err != nil {
		t.Fatalf("GetMigrationStatus failed: %v", err)
	}
	if status.CurrentVersion != "003" || status.PendingCount != 0 {
		t.Fatalf("unexpected status %+v", status)
	}

	var rows int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM a").Scan(&rows); err != nil || rows != 1 {
		t.Fatalf("seed migration should have run exactly once, rows=%d err=%v", rows, err)
	}
}
