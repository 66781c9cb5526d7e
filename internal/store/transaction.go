package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/authors-api/internal/platform/logger"
)

// TxFn is a function that executes within a database transaction.
type TxFn func(ctx context.Context, tx *sql.Tx) error

// RunInTransaction runs fn inside one transaction named after operation
// (for example "create_book"). The transaction commits when fn returns nil
// and rolls back when fn returns an error or panics; a panic is re-raised
// after the rollback.
//
// An error from fn is returned as is so callers can match sentinels with
// errors.Is. Begin and commit failures are returned as *StoreError with
// Entity "transaction" and the given operation.
func RunInTransaction(ctx context.Context, db *sql.DB, operation string, fn TxFn) error {
	log := logger.FromContext(ctx).With(
		slog.String("component", "transaction"),
		slog.String("operation", operation),
	)
	start := time.Now()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction", slog.String("error", err.Error()))
		return NewStoreError("transaction", operation, "failed to begin transaction", err)
	}

	defer func() {
		p := recover()
		if p == nil {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error("failed to roll back transaction after panic",
				slog.String("error", rbErr.Error()),
				slog.Any("panic", p))
		} else {
			log.Error("rolled back transaction after panic", slog.Any("panic", p))
		}
		// ALLOW-PANIC: Propagating caught panic from transaction
		panic(p)
	}()

	if err := fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error("failed to roll back transaction",
				slog.String("rollback_error", rbErr.Error()),
				slog.String("original_error", err.Error()))
			return fmt.Errorf("%s: error rolling back transaction: %v (original error: %w)",
				operation, rbErr, err)
		}
		log.Debug("rolled back transaction",
			slog.String("error", err.Error()),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()))
		return err
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit transaction", slog.String("error", err.Error()))
		return NewStoreError("transaction", operation, "failed to commit transaction", err)
	}

	log.Debug("transaction committed",
		slog.Int64("duration_ms", time.Since(start).Milliseconds()))
	return nil
}
