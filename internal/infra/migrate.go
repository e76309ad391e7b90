package infra

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"github.com/pressly/goose/v3"

	"github.com/vip7612-maker/monglemongle/internal/migrations"
)

// goose keeps its dialect and filesystem in package globals.
var gooseMu sync.Mutex

// Migrate applies the embedded migrations for the given driver. It is
// idempotent and safe to run on every start.
func Migrate(ctx context.Context, db *sql.DB, driver string) error {
	var dialect, dir string
	switch driver {
	case DriverPostgres:
		dialect, dir = "postgres", migrations.PostgresDir
	case DriverSQLite:
		dialect, dir = "sqlite3", migrations.SQLiteDir
	default:
		return fmt.Errorf("migrate: unsupported driver %q", driver)
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations.FS)
	defer goose.SetBaseFS(nil)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("migrate: set dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, dir); err != nil {
		return fmt.Errorf("migrate: up: %w", err)
	}
	if driver == DriverSQLite {
		if err := normalizeSQLiteFlagColumn(ctx, db); err != nil {
			return fmt.Errorf("migrate: normalize flag column: %w", err)
		}
	}
	return nil
}

// normalizeSQLiteFlagColumn renames a legacy isDeleted column to is_deleted.
// SQLite has no conditional DDL, so the check runs here instead of in a
// migration file.
func normalizeSQLiteFlagColumn(ctx context.Context, db *sql.DB) error {
	rows, err := db.QueryContext(ctx, `SELECT name FROM pragma_table_info('submissions')`)
	if err != nil {
		return err
	}
	defer rows.Close()

	var legacy string
	hasCanonical := false
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		switch {
		case name == "is_deleted":
			hasCanonical = true
		case strings.EqualFold(name, "isDeleted"):
			legacy = name
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	_ = rows.Close()
	if legacy == "" || hasCanonical {
		return nil
	}
	_, err = db.ExecContext(ctx, fmt.Sprintf(`ALTER TABLE submissions RENAME COLUMN "%s" TO is_deleted`, legacy))
	return err
}
