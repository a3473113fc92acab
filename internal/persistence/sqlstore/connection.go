package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/example/salon-scheduler/internal/persistence"
)

// ConnectionPool owns the process-wide *sql.DB shared by every repository.
type ConnectionPool struct {
	db      *sql.DB
	dialect Dialect
	retry   *RetryHelper
}

// NewConnectionPool opens and pings the database described by cfg.
func NewConnectionPool(ctx context.Context, cfg Config, logger *slog.Logger) (*ConnectionPool, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	dialect, err := ParseDialect(cfg.Driver)
	if err != nil {
		return nil, err
	}
	dsn, err := cfg.dataSourceName(dialect)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(dialect.driverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dialect, err)
	}

	maxOpen := cfg.MaxOpenConns
	if dialect == DialectSQLite && cfg.DSN == ":memory:" {
		// each connection would otherwise get its own empty database
		maxOpen = 1
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w", dialect, err)
	}

	return &ConnectionPool{
		db:      db,
		dialect: dialect,
		retry:   NewRetryHelper(cfg.Retry, logger),
	}, nil
}

// DB returns the underlying database handle.
func (cp *ConnectionPool) DB() *sql.DB { return cp.db }

// Dialect reports the SQL flavour of the pool.
func (cp *ConnectionPool) Dialect() Dialect { return cp.dialect }

// Close closes the connection pool
func (cp *ConnectionPool) Close() error {
	if cp.db != nil {
		return cp.db.Close()
	}
	return nil
}

// Ping tests the database connection
func (cp *ConnectionPool) Ping(ctx context.Context) error {
	return cp.db.PingContext(ctx)
}

// TransactionFunc represents a function that executes within a transaction
type TransactionFunc func(tx *sql.Tx) error

// WithTransaction runs fn in a transaction that commits when fn returns nil
// and rolls back on error or panic. Lock contention retries the whole unit.
// Returned errors are mapped onto the persistence sentinels.
func (cp *ConnectionPool) WithTransaction(ctx context.Context, fn TransactionFunc) error {
	return cp.retry.WithRetry(ctx, func() error {
		return cp.runTransaction(ctx, fn)
	})
}

func (cp *ConnectionPool) runTransaction(ctx context.Context, fn TransactionFunc) (err error) {
	tx, err := cp.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return fmt.Errorf("transaction failed (rollback error: %v): %w", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// mapError translates driver errors into persistence sentinels while keeping
// the original error in the chain.
func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, persistence.ErrNotFound),
		errors.Is(err, persistence.ErrDuplicate),
		errors.Is(err, persistence.ErrConstraintViolation):
		return err
	case errors.Is(err, sql.ErrNoRows):
		return persistence.ErrNotFound
	case isUniqueViolation(err):
		return fmt.Errorf("%w: %v", persistence.ErrDuplicate, err)
	case isConstraintViolation(err):
		return fmt.Errorf("%w: %v", persistence.ErrConstraintViolation, err)
	}
	return err
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func queryOne[T any](ctx context.Context, tx *sql.Tx, q squirrel.Sqlizer, scan func(rowScanner) (T, error)) (T, error) {
	var zero T
	query, args, err := q.ToSql()
	if err != nil {
		return zero, fmt.Errorf("failed to build query: %w", err)
	}
	entity, err := scan(tx.QueryRowContext(ctx, query, args...))
	if err != nil {
		return zero, mapError(err)
	}
	return entity, nil
}

func queryMany[T any](ctx context.Context, tx *sql.Tx, q squirrel.Sqlizer, scan func(rowScanner) (T, error)) ([]T, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		entity, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, entity)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

func execAffected(ctx context.Context, tx *sql.Tx, q squirrel.Sqlizer) (int64, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build statement: %w", err)
	}
	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected, nil
}

// insertReturningID runs an INSERT ... RETURNING <id> statement. Both
// supported dialects accept RETURNING.
func insertReturningID(ctx context.Context, tx *sql.Tx, q squirrel.InsertBuilder, idColumn string) (int64, error) {
	query, args, err := q.Suffix("RETURNING " + idColumn).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build insert: %w", err)
	}
	var id int64
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, mapError(err)
	}
	return id, nil
}

func exists(ctx context.Context, tx *sql.Tx, q squirrel.SelectBuilder) (bool, error) {
	query, args, err := q.Limit(1).ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build query: %w", err)
	}
	var one int
	err = tx.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, mapError(err)
	}
	return true, nil
}

// RetryConfig configures retry behavior for database operations
type RetryConfig struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// DefaultRetryConfig returns a retry configuration with sensible defaults
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:    3,
		InitialDelay:  50 * time.Millisecond,
		MaxDelay:      2 * time.Second,
		BackoffFactor: 2.0,
	}
}

// RetryHelper retries lock contention with exponential backoff.
type RetryHelper struct {
	config RetryConfig
	logger *slog.Logger
}

// NewRetryHelper creates a new retry helper
func NewRetryHelper(config RetryConfig, logger *slog.Logger) *RetryHelper {
	if logger == nil {
		logger = slog.Default()
	}
	if config.BackoffFactor < 1 {
		config.BackoffFactor = 1
	}
	return &RetryHelper{config: config, logger: logger}
}

// RetryableFunc represents a function that can be retried
type RetryableFunc func() error

// WithRetry executes fn, retrying only busy/locked failures. The final error
// is passed through mapError.
func (rh *RetryHelper) WithRetry(ctx context.Context, fn RetryableFunc) error {
	var lastErr error
	delay := rh.config.InitialDelay

	for attempt := 0; attempt <= rh.config.MaxRetries; attempt++ {
		if attempt > 0 {
			rh.logger.DebugContext(ctx, "retrying database operation",
				"attempt", attempt, "delay", delay, "error", lastErr)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay = time.Duration(float64(delay) * rh.config.BackoffFactor)
				if rh.config.MaxDelay > 0 && delay > rh.config.MaxDelay {
					delay = rh.config.MaxDelay
				}
			}
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isRetryable(err) {
			return mapError(err)
		}
	}

	return fmt.Errorf("operation failed after %d retries: %w", rh.config.MaxRetries, mapError(lastErr))
}
