package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vrcosta/bank_ledger_app/internal/apperrors"
)

// maxTxAttempts bounds internal retries of contended transactions.
const maxTxAttempts = 3

// BaseRepository provides common functionality for all repositories.
type BaseRepository struct {
	Pool *pgxpool.Pool
}

// NewBaseRepository creates a BaseRepository, the transaction manager shared
// by the concrete repositories.
func NewBaseRepository(pool *pgxpool.Pool) *BaseRepository {
	return &BaseRepository{Pool: pool}
}

// Begin starts a new database transaction.
func (r *BaseRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to begin transaction", err)
	}
	return tx, nil
}

// Commit commits a transaction.
func (r *BaseRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Commit(ctx); err != nil {
		return apperrors.NewAppError(500, "failed to commit transaction", err)
	}
	return nil
}

// Rollback rolls back a transaction.
func (r *BaseRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return apperrors.NewAppError(500, "failed to rollback transaction", err)
	}
	return nil
}

// RunInTx executes fn inside a transaction, retrying serialization failures
// and deadlocks up to maxTxAttempts before surfacing ErrConflict.
func (r *BaseRepository) RunInTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	var lastErr error

	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryBackoff(attempt)):
			}
		}

		tx, err := r.Begin(ctx)
		if err != nil {
			return err
		}

		if err := fn(tx); err != nil {
			_ = r.Rollback(ctx, tx)
			if isRetryableTxError(err) {
				lastErr = err
				continue
			}
			return err
		}

		if err := r.Commit(ctx, tx); err != nil {
			if isRetryableTxError(err) {
				lastErr = err
				continue
			}
			return err
		}
		return nil
	}

	return fmt.Errorf("%w: transaction retries exhausted: %v", apperrors.ErrConflict, lastErr)
}

// isRetryableTxError reports whether err is a Postgres serialization failure
// (40001) or deadlock (40P01), both safe to retry from the top.
func isRetryableTxError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}

func retryBackoff(attempt int) time.Duration {
	base := 25 * time.Millisecond * time.Duration(1<<(attempt-1))
	jitter := time.Duration(rand.Int64N(int64(base)))
	return base + jitter
}
