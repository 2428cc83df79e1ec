package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"time"
)

// schemaVersion is the row initdb.sql writes into docsense_meta.
const schemaVersion = 1

//go:embed scripts/initdb.sql
var bootstrapFS embed.FS

// EnsureBootstrapped runs initdb.sql unless docsense_meta already records the
// current schema version.
func EnsureBootstrapped(ctx context.Context, db *sql.DB) error {
	ctxBoot, cancel := context.WithTimeout(ctx, 3*time.Minute)
	defer cancel()

	var n int
	err := db.QueryRowContext(ctxBoot, `SELECT COUNT(*) FROM docsense_meta WHERE version = $1`, schemaVersion).Scan(&n)
	if err == nil && n > 0 {
		slog.Debug("schema already bootstrapped", "version", schemaVersion)
		return nil
	}
	// A missing meta table surfaces as a query error; either way the script
	// below creates whatever is absent.
	return runBootstrap(ctxBoot, db)
}

func runBootstrap(ctx context.Context, db *sql.DB) error {
	sqlBytes, err := bootstrapFS.ReadFile("scripts/initdb.sql")
	if err != nil {
		return fmt.Errorf("read initdb.sql: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx, string(sqlBytes)); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("exec bootstrap: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit bootstrap: %w", err)
	}
	slog.Info("database schema bootstrapped", "version", schemaVersion)
	return nil
}
