// Package sqlstore implements the persistence repositories on database/sql.
// Queries are built with squirrel so the same code serves SQLite
// (modernc.org/sqlite) and PostgreSQL (lib/pq).
package sqlstore

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/example/salon-scheduler/internal/domain"
	"github.com/example/salon-scheduler/internal/persistence"
	"github.com/example/salon-scheduler/internal/persistence/sqlstore/migration"
)

//go:embed migrations
var migrationsFS embed.FS

// base is shared by every repository of one Store.
type base struct {
	pool    *ConnectionPool
	dialect Dialect
	sb      squirrel.StatementBuilderType
	now     func() time.Time
}

func (b *base) deleteByID(ctx context.Context, table, idColumn string, id int64) (bool, error) {
	var removed bool
	err := b.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		affected, err := execAffected(ctx, tx, b.sb.Delete(table).Where(squirrel.Eq{idColumn: id}))
		removed = affected > 0
		return err
	})
	return removed, err
}

// claimUsername serializes account writes for one username and then probes
// both account tables. The two tables have separate UNIQUE indexes, so on
// PostgreSQL a transaction-scoped advisory lock keeps a concurrent customer
// and employee insert from both passing the probe. SQLite writers already
// hold the database lock through _txlock=immediate.
func (b *base) claimUsername(ctx context.Context, tx *sql.Tx, username string) (bool, error) {
	if lock, ok := usernameLock(b.dialect, username); ok {
		query, args, err := lock.ToSql()
		if err != nil {
			return false, fmt.Errorf("failed to build statement: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return false, fmt.Errorf("lock username: %w", mapError(err))
		}
	}
	return b.usernameTaken(ctx, tx, username)
}

func usernameLock(d Dialect, username string) (squirrel.Sqlizer, bool) {
	if d != DialectPostgres {
		return nil, false
	}
	return d.builder().Select().Column(squirrel.Expr("pg_advisory_xact_lock(hashtext(?))", username)), true
}

// usernameTaken probes both account tables.
func (b *base) usernameTaken(ctx context.Context, tx *sql.Tx, username string) (bool, error) {
	for _, table := range []string{"users", "employees"} {
		found, err := exists(ctx, tx, b.sb.Select("1").From(table).Where(squirrel.Eq{"username": username}))
		if err != nil || found {
			return found, err
		}
	}
	return false, nil
}

func (b *base) usernameExists(ctx context.Context, username string) (bool, error) {
	var found bool
	err := b.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		var err error
		found, err = b.usernameTaken(ctx, tx, username)
		return err
	})
	return found, err
}

// Store is the SQL-backed persistence.Store.
type Store struct {
	*base
	logger       *slog.Logger
	appointments *AppointmentRepository
	users        *UserRepository
	employees    *EmployeeRepository
	services     *ServiceRepository
}

var _ persistence.Store = (*Store)(nil)

// Open connects to the database. Call Migrate before first use.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "sqlstore")

	pool, err := NewConnectionPool(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	b := &base{
		pool:    pool,
		dialect: pool.Dialect(),
		sb:      pool.Dialect().builder(),
		now:     func() time.Time { return time.Now().UTC() },
	}
	logger.InfoContext(ctx, "database opened", "driver", string(b.dialect))

	return &Store{
		base:         b,
		logger:       logger,
		appointments: &AppointmentRepository{base: b},
		users:        &UserRepository{base: b},
		employees:    &EmployeeRepository{base: b},
		services:     &ServiceRepository{base: b},
	}, nil
}

// WithClock overrides the timestamp source used for created_at.
func (s *Store) WithClock(now func() time.Time) *Store {
	if now != nil {
		s.now = now
	}
	return s
}

// Migrate applies the embedded schema migrations for the store's dialect.
func (s *Store) Migrate(ctx context.Context) error {
	executor := migration.NewExecutor(s.pool.DB(), s.dialect.placeholder())
	manager := migration.NewMigrationManager(migration.NewFileScanner(), executor, migrationsFS, s.dialect.migrationsDir(), s.logger)
	if err := manager.RunMigrations(ctx); err != nil {
		return fmt.Errorf("sqlstore: migrate: %w", err)
	}
	return nil
}

// Seed inserts the default catalog when the services table is empty. The
// emptiness check and the inserts share one transaction.
func (s *Store) Seed(ctx context.Context) error {
	var seeded int
	err := s.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		found, err := exists(ctx, tx, s.sb.Select("1").From("services"))
		if err != nil || found {
			return err
		}
		for _, svc := range domain.DefaultCatalog() {
			if _, err := execAffected(ctx, tx, s.sb.Insert("services").
				Columns(serviceColumns[1:]...).
				Values(svc.Name, svc.Price)); err != nil {
				return err
			}
			seeded++
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("sqlstore: seed: %w", err)
	}
	if seeded > 0 {
		s.logger.InfoContext(ctx, "seeded service catalog", "services", seeded)
	}
	return nil
}

func (s *Store) Appointments() persistence.AppointmentRepository { return s.appointments }
func (s *Store) Users() persistence.UserRepository               { return s.users }
func (s *Store) Employees() persistence.EmployeeRepository       { return s.employees }
func (s *Store) Services() persistence.ServiceRepository         { return s.services }

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

// DB exposes the pool for connection statistics.
func (s *Store) DB() *sql.DB { return s.pool.DB() }

// Close releases the connection pool.
func (s *Store) Close() error { return s.pool.Close() }
