package migration

import (
	"errors"
	"fmt"
)

// Sentinels matched with errors.Is by Store.Migrate callers and tests.
var (
	ErrMigrationFailed      = errors.New("migration: apply failed")
	ErrInvalidMigrationFile = errors.New("migration: malformed file")
	// ErrVersionConflict covers gaps and applied versions missing from disk.
	ErrVersionConflict     = errors.New("migration: version conflict")
	ErrInvalidVersion      = errors.New("migration: malformed version")
	ErrDuplicateVersion    = errors.New("migration: version declared twice")
	ErrChecksumMismatch    = errors.New("migration: applied file was edited")
	ErrVersionTableCorrupt = errors.New("migration: schema_migrations is unreadable")
)

// MigrationError ties a failure to one migration file.
type MigrationError struct {
	Version   string
	FilePath  string
	Operation string
	Err       error
}

func (e *MigrationError) Error() string {
	subject := e.FilePath
	if e.Version != "" {
		subject = e.Version + " " + e.FilePath
	}
	return fmt.Sprintf("migration %s: %s: %v", subject, e.Operation, e.Err)
}

func (e *MigrationError) Unwrap() error { return e.Err }

func NewMigrationError(version, filePath, operation string, err error) *MigrationError {
	return &MigrationError{Version: version, FilePath: filePath, Operation: operation, Err: err}
}

// FileSystemError reports a failure reading the embedded migrations tree.
type FileSystemError struct {
	Path      string
	Operation string
	Err       error
}

func (e *FileSystemError) Error() string {
	return fmt.Sprintf("migration fs: %s %s: %v", e.Operation, e.Path, e.Err)
}

func (e *FileSystemError) Unwrap() error { return e.Err }

func NewFileSystemError(path, operation string, err error) *FileSystemError {
	return &FileSystemError{Path: path, Operation: operation, Err: err}
}

// DatabaseError reports a failed statement. Query is kept for debugging and
// left out of Error so schema text does not reach logs.
type DatabaseError struct {
	Version   string
	Query     string
	Operation string
	Err       error
}

func (e *DatabaseError) Error() string {
	if e.Version == "" {
		return fmt.Sprintf("migration db: %s: %v", e.Operation, e.Err)
	}
	return fmt.Sprintf("migration db %s: %s: %v", e.Version, e.Operation, e.Err)
}

func (e *DatabaseError) Unwrap() error { return e.Err }

func NewDatabaseError(version, query, operation string, err error) *DatabaseError {
	return &DatabaseError{Version: version, Query: query, Operation: operation, Err: err}
}
