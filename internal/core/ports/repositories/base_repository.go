package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// TransactionManager runs a unit of work inside a database transaction.
type TransactionManager interface {
	// RunInTx begins a transaction, executes fn, and commits on success.
	// Serialization failures and deadlocks are retried a bounded number of
	// times with backoff; exhaustion surfaces apperrors.ErrConflict.
	RunInTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}
