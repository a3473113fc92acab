package migration

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
	"testing/fstest"
)

func mapFS(files map[string]string) fstest.MapFS {
	fsys := fstest.MapFS{"migrations": &fstest.MapFile{Mode: fs.ModeDir | 0o755}}
	for name, content := range files {
		fsys["migrations/"+name] = &fstest.MapFile{Data: []byte(content)}
	}
	return fsys
}

func TestFileScanner_ScanMigrations(t *testing.T) {
	tests := []struct {
		name          string
		setupFiles    map[string]string // filename -> content
		expectedOrder []string
		expectError   error
	}{
		{
			name: "valid migration directory with multiple files",
			setupFiles: map[string]string{
				"001_initial_schema.sql": "CREATE TABLE users (id INTEGER PRIMARY KEY);",
				"002_add_services.sql":   "CREATE TABLE services (id INTEGER PRIMARY KEY);",
				"003_add_indexes.sql":    "CREATE INDEX idx_users_id ON users(id);",
			},
			expectedOrder: []string{"001", "002", "003"},
		},
		{
			name:          "empty migration directory",
			setupFiles:    map[string]string{},
			expectedOrder: nil,
		},
		{
			name: "non-SQL files are ignored",
			setupFiles: map[string]string{
				"001_initial_schema.sql": "CREATE TABLE users (id INTEGER PRIMARY KEY);",
				"README.md":              "# Migrations",
				"002_add_services.sql":   "CREATE TABLE services (id INTEGER PRIMARY KEY);",
			},
			expectedOrder: []string{"001", "002"},
		},
		{
			name: "versions sort numerically",
			setupFiles: map[string]string{
				"10_late.sql":  "CREATE TABLE late (id INTEGER);",
				"9_early.sql":  "CREATE TABLE early (id INTEGER);",
				"001_base.sql": "CREATE TABLE base (id INTEGER);",
			},
			expectedOrder: []string{"001", "9", "10"},
		},
		{
			name: "duplicate versions are rejected",
			setupFiles: map[string]string{
				"001_initial_schema.sql": "CREATE TABLE users (id INTEGER);",
				"001_other.sql":          "CREATE TABLE other (id INTEGER);",
			},
			expectError: ErrDuplicateVersion,
		},
		{
			name: "badly named SQL file is rejected",
			setupFiles: map[string]string{
				"initial.sql": "CREATE TABLE users (id INTEGER);",
			},
			expectError: ErrInvalidMigrationFile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scanner := NewFileScanner()
			migrations, err := scanner.ScanMigrations(mapFS(tt.setupFiles), "migrations")

			if tt.expectError != nil {
				if !errors.Is(err, tt.expectError) {
					t.Fatalf("expected %v, got %v", tt.expectError, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if len(migrations) != len(tt.expectedOrder) {
				t.Fatalf("expected %d migrations, got %d", len(tt.expectedOrder), len(migrations))
			}
			for i, want := range tt.expectedOrder {
				if migrations[i].Version != want {
					t.Errorf("migration %d: expected version %s, got %s", i, want, migrations[i].Version)
				}
				if migrations[i].Checksum == "" {
					t.Errorf("migration %s has no checksum", migrations[i].Version)
				}
			}
		})
	}
}

func TestFileScanner_MissingDirectory(t *testing.T) {
	_, err := NewFileScanner().ScanMigrations(fstest.MapFS{}, "nowhere")
	var fsErr *FileSystemError
	if !errors.As(err, &fsErr) {
		t.Fatalf("expected FileSystemError, got %T (%v)", err, err)
	}
}

func TestFileScanner_ValidateFileName(t *testing.T) {
	scanner := NewFileScanner()

	valid := []string{"001_initial_schema.sql", "2_add-index.sql", "0100_x.sql"}
	for _, name := range valid {
		if err := scanner.ValidateFileName(name); err != nil {
			t.Errorf("expected %s to be valid, got %v", name, err)
		}
	}

	invalid := []string{"initial.sql", "001-initial.sql", "001_.sql", "001_initial.txt", "abc_initial.sql", "001_bad name.sql"}
	for _, name := range invalid {
		if err := scanner.ValidateFileName(name); err == nil {
			t.Errorf("expected %s to be rejected", name)
		}
	}
}

func TestFileScanner_ParseMigrationFile(t *testing.T) {
	fsys := mapFS(map[string]string{
		"001_initial_schema.sql":  "-- Description: Create salon tables\nCREATE TABLE users (id INTEGER);\n",
		"002_add_index.sql":       "CREATE INDEX idx ON users(id);",
		"003_empty.sql":           "   \n",
		"004_comments_only.sql":   "-- nothing here\n-- still nothing\n",
		"005_unbalanced.sql":      "CREATE TABLE broken (id INTEGER;",
		"006_unterminated.sql":    "INSERT INTO t VALUES ('oops);",
		"007_paren_in_string.sql": "INSERT INTO t VALUES ('a (b');",
	})
	scanner := NewFileScanner()

	migration, err := scanner.ParseMigrationFile(fsys, "migrations/001_initial_schema.sql")
	if err != nil {
		t.Fatalf("ParseMigrationFile failed: %v", err)
	}
	if migration.Description != "Create salon tables" {
		t.Errorf("expected description from comment, got %q", migration.Description)
	}
	if migration.Version != "001" {
		t.Errorf("expected version 001, got %s", migration.Version)
	}

	migration, err = scanner.ParseMigrationFile(fsys, "migrations/002_add_index.sql")
	if err != nil {
		t.Fatalf("ParseMigrationFile failed: %v", err)
	}
	if migration.Description != "add index" {
		t.Errorf("expected description from filename, got %q", migration.Description)
	}

	for _, name := range []string{"003_empty.sql", "004_comments_only.sql", "005_unbalanced.sql", "006_unterminated.sql"} {
		_, err := scanner.ParseMigrationFile(fsys, "migrations/"+name)
		if !errors.Is(err, ErrInvalidMigrationFile) {
			t.Errorf("%s: expected ErrInvalidMigrationFile, got %v", name, err)
		}
	}

	if _, err := scanner.ParseMigrationFile(fsys, "migrations/007_paren_in_string.sql"); err != nil {
		t.Errorf("parenthesis inside a string literal should be accepted, got %v", err)
	}
}

func TestSplitStatements(t *testing.T) {
	statements := splitStatements(`
		-- Description: two tables
		CREATE TABLE a (id INTEGER);

		-- second
		CREATE TABLE b (id INTEGER);
	`)
	if len(statements) != 2 {
		t.Fatalf("expected 2 statements, got %d: %v", len(statements), statements)
	}
	if !strings.HasPrefix(statements[1], "CREATE TABLE b") {
		t.Errorf("unexpected second statement %q", statements[1])
	}
}
