package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/vrcosta/bank_ledger_app/internal/core/domain"
)

// TransactionReader defines read operations for the transaction log.
type TransactionReader interface {
	// FindTransactionByID retrieves a single ledger entry.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// ListStatementTransactions returns the filtered page of an account's
	// history ordered by created_at descending, the total count of records
	// matching the filter, and a cursor for the next page (nil on the last).
	ListStatementTransactions(ctx context.Context, accountID string, filter domain.StatementFilter) ([]domain.Transaction, int64, *string, error)
}

// TransactionWriter defines append and reversal-stamp operations.
// Ledger entries are immutable once written; MarkTransactionsReversedInTx only
// stamps reversed_at, it never touches amounts or snapshots.
type TransactionWriter interface {
	// SaveTransactionsInTx appends ledger entries within tx.
	SaveTransactionsInTx(ctx context.Context, tx pgx.Tx, transactions []domain.Transaction) error

	// MarkTransactionsReversedInTx stamps reversed_at on the given entries,
	// guarded by reversed_at IS NULL. If any entry was already stamped it
	// returns apperrors.ErrAlreadyReversed and stamps nothing.
	MarkTransactionsReversedInTx(ctx context.Context, tx pgx.Tx, transactionIDs []string, reversedAt time.Time) error
}

// TransactionRepositoryFacade combines the transaction log interfaces.
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
}
