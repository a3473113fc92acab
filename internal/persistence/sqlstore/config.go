package sqlstore

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config describes how to reach the backing database.
type Config struct {
	// Driver is "sqlite" or "postgres".
	Driver string
	// DSN is a file path for sqlite or a connection URL for postgres.
	DSN string
	// BusyTimeout bounds how long sqlite waits on a locked database.
	BusyTimeout     time.Duration
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	Retry           RetryConfig
}

// DefaultConfig returns a sqlite configuration for the given database file.
func DefaultConfig(path string) Config {
	return Config{
		Driver:          string(DialectSQLite),
		DSN:             path,
		BusyTimeout:     5 * time.Second,
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
		Retry:           DefaultRetryConfig(),
	}
}

// TempFileTestConfig returns a configuration for a database file inside dir.
// A file is used instead of ":memory:" so that every pooled connection sees
// the same database.
func TempFileTestConfig(dir string) Config {
	cfg := DefaultConfig(filepath.Join(dir, "salon_test.db"))
	cfg.Retry.InitialDelay = 5 * time.Millisecond
	return cfg
}

// Validate checks the configuration for obvious mistakes.
func (c Config) Validate() error {
	var problems []string

	if _, err := ParseDialect(c.Driver); err != nil {
		problems = append(problems, err.Error())
	}
	if strings.TrimSpace(c.DSN) == "" {
		problems = append(problems, "dsn is required")
	}
	if c.BusyTimeout < 0 {
		problems = append(problems, "busy timeout must not be negative")
	}
	if c.MaxOpenConns < 0 || c.MaxIdleConns < 0 {
		problems = append(problems, "connection pool sizes must not be negative")
	}
	if c.MaxOpenConns > 0 && c.MaxIdleConns > c.MaxOpenConns {
		problems = append(problems, "max idle connections cannot exceed max open connections")
	}
	if c.Retry.MaxRetries < 0 {
		problems = append(problems, "retry count must not be negative")
	}

	if len(problems) > 0 {
		return fmt.Errorf("sqlstore: invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// dataSourceName returns the string handed to sql.Open.
func (c Config) dataSourceName(dialect Dialect) (string, error) {
	if dialect != DialectSQLite {
		return c.DSN, nil
	}
	if c.DSN == ":memory:" || strings.HasPrefix(c.DSN, "file:") || strings.Contains(c.DSN, "?") {
		return c.DSN, nil
	}
	if err := ensureDir(c.DSN); err != nil {
		return "", err
	}

	params := url.Values{}
	params.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", c.BusyTimeout.Milliseconds()))
	params.Add("_pragma", "foreign_keys(1)")
	params.Add("_pragma", "journal_mode(WAL)")
	params.Add("_pragma", "synchronous(NORMAL)")
	// BEGIN IMMEDIATE takes the write lock up front so the slot re-check
	// and the insert cannot interleave with another writer.
	params.Set("_txlock", "immediate")

	return "file:" + c.DSN + "?" + params.Encode(), nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return fmt.Errorf("sqlstore: create database directory: %w", err)
	}
	return nil
}
