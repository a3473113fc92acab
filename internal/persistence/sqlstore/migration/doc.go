// Package migration applies versioned SQL schema files to a database.
//
// Migration files live in an fs.FS (normally an embed.FS compiled into the
// binary) and follow the naming convention {version}_{description}.sql, for
// example "001_initial_schema.sql". Each file runs in its own transaction and
// is then recorded in the schema_migrations table together with its checksum,
// so an edited file that was already applied is reported instead of silently
// skipped.
//
// The executor is dialect neutral: bookkeeping queries are written with "?"
// placeholders and rewritten through a squirrel.PlaceholderFormat, which lets
// the same code drive SQLite and PostgreSQL.
//
// Example usage:
//
//	executor := NewExecutor(db, squirrel.Dollar)
//	manager := NewMigrationManager(NewFileScanner(), executor, migrationsFS, "postgres", logger)
//	if err := manager.RunMigrations(ctx); err != nil {
//		return err
//	}
package migration
