package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/verifynow/internal/client/migrations"
	"github.com/dmitrijs2005/verifynow/internal/filex"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// busyTimeoutMs lets a second CLI process wait for the store lock instead of
// failing with SQLITE_BUSY.
const busyTimeoutMs = 5000

// RunMigrations applies the embedded migrations to db.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("migrate local store: %w", err)
	}
	return nil
}

// InitDatabase opens (creating if needed) the SQLite store at path and
// migrates it.
func InitDatabase(ctx context.Context, path string) (*sql.DB, error) {
	if err := filex.EnsureParentDir(path); err != nil {
		return nil, err
	}

	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(%d)", path, busyTimeoutMs)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}
