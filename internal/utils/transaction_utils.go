package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"todo-api/internal/interfaces"
	"todo-api/internal/schemas"
)

// BeginTransaction begins a new database transaction on the request context.
// If the transaction fails to begin, it logs and sends an error response and
// returns nil.
func BeginTransaction(ctx *gin.Context, pool interfaces.PgxPoolIface) pgx.Tx {
	LogMessageWithFields(ctx, "debug", "Beginning transaction...")

	tx, err := pool.Begin(ctx)
	if err != nil {
		LogMessageWithFields(ctx, "error", "Error beginning transaction")
		WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return nil
	}

	return tx
}

// RollbackTransaction rolls back the given transaction if an error occurred.
// Rollback failures are logged but never written to the response, which has
// already been sent by the time the deferred rollback runs.
func RollbackTransaction(ctx *gin.Context, tx pgx.Tx, err error) {
	if err == nil {
		return
	}

	LogMessageWithFields(ctx, "debug", "Rolling back transaction...")

	if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
		LogMessageWithFields(ctx, "error", "Error rolling back transaction: "+rollbackErr.Error())
		return
	}

	LogMessageWithFields(ctx, "debug", "Transaction rolled back")
}

// CommitTransaction attempts to commit the given transaction.
// If the commit fails, it logs the error, sends an error response, and returns the error.
func CommitTransaction(ctx *gin.Context, tx pgx.Tx) error {
	LogMessageWithFields(ctx, "debug", "Committing transaction...")

	if err := tx.Commit(ctx); err != nil {
		LogMessageWithFields(ctx, "error", "Error committing transaction")
		WriteAndLogError(ctx, schemas.DatabaseError, http.StatusInternalServerError, err)
		return err
	}

	LogMessageWithFields(ctx, "debug", "Transaction committed")
	return nil
}
