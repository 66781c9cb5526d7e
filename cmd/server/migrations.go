package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/authors-api/internal/platform/postgres"
	"github.com/phrazzld/authors-api/internal/redact"
)

// runMigrations executes one goose command against db. All log lines of the
// run share a correlation ID.
func runMigrations(ctx context.Context, db *sql.DB, command string, logger *slog.Logger) error {
	if !slices.Contains(postgres.MigrationCommands, command) {
		return fmt.Errorf("unknown migration command %q (expected one of %s)",
			command, strings.Join(postgres.MigrationCommands, ", "))
	}

	migrationLogger := logger.With(
		slog.String("correlation_id", uuid.NewString()),
		slog.String("component", "migrations"),
		slog.String("command", command),
	)

	start := time.Now()
	migrationLogger.Info("starting migration operation")

	if err := postgres.Migrate(ctx, db, command, migrationLogger); err != nil {
		migrationLogger.Error("migration operation failed",
			slog.String("error", redact.Error(err)),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()))
		return err
	}

	if version, err := postgres.CurrentVersion(ctx, db); err == nil {
		migrationLogger.Info("migration operation completed",
			slog.Int64("version", version),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()))
	}
	return nil
}
