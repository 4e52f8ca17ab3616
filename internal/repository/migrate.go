package repository

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"strings"

	"entgo.io/ent/dialect"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate applies the schema for the connected dialect. Every statement is
// idempotent, so it runs on each start.
func Migrate(ctx context.Context, db *DB, logger *slog.Logger) error {
	name := "migrations/sqlite.sql"
	if db.Dialect == dialect.Postgres {
		name = "migrations/postgres.sql"
	}
	ddl, err := migrations.ReadFile(name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}

	n := 0
	for _, stmt := range strings.Split(string(ddl), ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.SQL.ExecContext(ctx, stmt); err != nil {
			logger.Error("migration failed", "file", name, "error", err)
			return fmt.Errorf("migrate: %w", err)
		}
		n++
	}
	logger.Info("database schema ready", "dialect", db.Dialect, "statements", n)
	return nil
}
