package migration

import (
	"context"
	"errors"
	"io/fs"
	"strings"
	"testing"
	"time"
)

type mockFileScanner struct {
	migrations []Migration
	scanError  error
}

func (m *mockFileScanner) ScanMigrations(fs.FS, string) ([]Migration, error) {
	if m.scanError != nil {
		return nil, m.scanError
	}
	return m.migrations, nil
}

func (m *mockFileScanner) ValidateFileName(string) error { return nil }

func (m *mockFileScanner) ParseMigrationFile(fs.FS, string) (*Migration, error) { return nil, nil }

type mockExecutor struct {
	appliedVersions []AppliedMigration
	executionError  error
	recordError     error
	initError       error
	executionOrder  []string
	recorded        []Migration
}

func (m *mockExecutor) ExecuteMigration(_ context.Context, migration Migration) error {
	m.executionOrder = append(m.executionOrder, migration.Version)
	return m.executionError
}

func (m *mockExecutor) InitializeVersionTable(context.Context) error { return m.initError }

func (m *mockExecutor) RecordMigration(_ context.Context, migration Migration, _ time.Duration) error {
	if m.recordError != nil {
		return m.recordError
	}
	m.recorded = append(m.recorded, migration)
	return nil
}

func (m *mockExecutor) IsVersionApplied(_ context.Context, version string) (bool, error) {
	for _, applied := range m.appliedVersions {
		if applied.Version == version {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockExecutor) GetAppliedVersions(context.Context) ([]AppliedMigration, error) {
	return m.appliedVersions, nil
}

func newTestManager(scanner FileScanner, executor Executor) MigrationManager {
	return NewMigrationManager(scanner, executor, nil, "migrations", nil)
}

var twoMigrations = []Migration{
	{Version: "001", Description: "Initial schema", SQL: "CREATE TABLE users (id INTEGER);", FilePath: "001_initial.sql", Checksum: "aaa"},
	{Version: "002", Description: "Add indexes", SQL: "CREATE INDEX idx_users ON users(id);", FilePath: "002_indexes.sql", Checksum: "bbb"},
}

func TestMigrationManager_RunMigrations_AppliesOnlyPending(t *testing.T) {
	executor := &mockExecutor{appliedVersions: []AppliedMigration{{Version: "001", Checksum: "aaa"}}}
	manager := newTestManager(&mockFileScanner{migrations: twoMigrations}, executor)

	if err := manager.RunMigrations(context.Background()); err != nil {
		t.Fatalf("RunMigrations failed: %v", err)
	}

	if strings.Join(executor.executionOrder, ",") != "002" {
		t.Fatalf("expected only 002 to run, got %v", executor.executionOrder)
	}
	if len(executor.recorded) != 1 || executor.recorded[0].Checksum != "bbb" {
		t.Fatalf("expected 002 to be recorded with its checksum, got %+v", executor.recorded)
	}
}

func TestMigrationManager_RunMigrations_NothingPending(t *testing.T) {
	executor := &mockExecutor{appliedVersions: []AppliedMigration{{Version: "001"}, {Version: "002"}}}
	manager := newTestManager(&mockFileScanner{migrations: twoMigrations}, executor)

	if err := manager.RunMigrations(context.Background()); err != nil {
		t.Fatalf("RunMigrations failed: %v", err)
	}
	if len(executor.executionOrder) != 0 {
		t.Fatalf("expected no executions, got %v", executor.executionOrder)
	}
}

func TestMigrationManager_RunMigrations_InitializationError(t *testing.T) {
	manager := newTestManager(&mockFileScanner{}, &mockExecutor{initError: errors.New("failed to create table")})

	err := manager.RunMigrations(context.Background())
	if err == nil || !strings.Contains(err.Error(), "failed to initialize version table") {
		t.Fatalf("expected initialization error, got %v", err)
	}
}

func TestMigrationManager_RunMigrations_ExecutionError(t *testing.T) {
	executor := &mockExecutor{executionError: errors.New("SQL syntax error")}
	manager := newTestManager(&mockFileScanner{migrations: twoMigrations}, executor)

	err := manager.RunMigrations(context.Background())

	var migrationErr *MigrationError
	if !errors.As(err, &migrationErr) {
		t.Fatalf("expected MigrationError, got %T (%v)", err, err)
	}
	if migrationErr.Version != "001" {
		t.Errorf("expected failure on 001, got %s", migrationErr.Version)
	}
	if !errors.Is(err, ErrMigrationFailed) {
		t.Errorf("expected ErrMigrationFailed in chain, got %v", err)
	}
	if len(executor.executionOrder) != 1 {
		t.Errorf("execution should stop at the first failure, ran %v", executor.executionOrder)
	}
}

func TestMigrationManager_RunMigrations_RecordError(t *testing.T) {
	executor := &mockExecutor{recordError: errors.New("disk full")}
	manager := newTestManager(&mockFileScanner{migrations: twoMigrations}, executor)

	var migrationErr *MigrationError
	if err := manager.RunMigrations(context.Background()); !errors.As(err, &migrationErr) {
		t.Fatalf("expected MigrationError, got %v", err)
	}
}

func TestMigrationManager_GetPendingMigrations_Validation(t *testing.T) {
	tests := []struct {
		name      string
		available []Migration
		applied   []AppliedMigration
		wantErr   error
	}{
		{
			name: "gap in sequence",
			available: []Migration{
				{Version: "001", FilePath: "001_a.sql"},
				{Version: "003", FilePath: "003_c.sql"},
			},
			wantErr: ErrVersionConflict,
		},
		{
			name:      "applied version without file",
			available: []Migration{{Version: "001", FilePath: "001_a.sql"}},
			applied:   []AppliedMigration{{Version: "001"}, {Version: "002"}},
			wantErr:   ErrVersionConflict,
		},
		{
			name:      "applied file was edited",
			available: []Migration{{Version: "001", FilePath: "001_a.sql", Checksum: "new"}},
			applied:   []AppliedMigration{{Version: "001", Checksum: "old"}},
			wantErr:   ErrChecksumMismatch,
		},
		{
			name:      "corrupt version table",
			available: []Migration{{Version: "001", FilePath: "001_a.sql"}},
			applied:   []AppliedMigration{{Version: "first"}},
			wantErr:   ErrVersionTableCorrupt,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			manager := newTestManager(&mockFileScanner{migrations: tt.available}, &mockExecutor{appliedVersions: tt.applied})
			_, err := manager.GetPendingMigrations(context.Background())
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestMigrationManager_GetMigrationStatus(t *testing.T) {
	executor := &mockExecutor{appliedVersions: []AppliedMigration{{Version: "001", Checksum: "aaa"}}}
	manager := newTestManager(&mockFileScanner{migrations: twoMigrations}, executor)

	status, err := manager.GetMigrationStatus(context.Background())
	if err != nil {
		t.Fatalf("GetMigrationStatus failed: %v", err)
	}
	if status.CurrentVersion != "001" {
		t.Errorf("expected current version 001, got %q", status.CurrentVersion)
	}
	if status.PendingCount != 1 || status.PendingMigrations[0].Version != "002" {
		t.Errorf("expected 002 pending, got %+v", status.PendingMigrations)
	}

	versions, err := manager.GetAppliedVersions(context.Background())
	if err != nil {
		t.Fatalf("GetAppliedVersions failed: %v", err)
	}
	if len(versions) != 1 || versions[0] != "001" {
		t.Errorf("unexpected applied versions %v", versions)
	}
}
