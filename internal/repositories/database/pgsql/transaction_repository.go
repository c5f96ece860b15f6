package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vrcosta/bank_ledger_app/internal/apperrors"
	"github.com/vrcosta/bank_ledger_app/internal/core/domain"
	portsrepo "github.com/vrcosta/bank_ledger_app/internal/core/ports/repositories"
	"github.com/vrcosta/bank_ledger_app/internal/models"
	"github.com/vrcosta/bank_ledger_app/internal/utils/mapping"
	"github.com/vrcosta/bank_ledger_app/internal/utils/pagination"
)

type PgxTransactionRepository struct {
	BaseRepository
}

// NewTransactionRepository creates a new repository for the transaction log.
func NewTransactionRepository(pool *pgxpool.Pool) *PgxTransactionRepository {
	return &PgxTransactionRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxTransactionRepository implements portsrepo.TransactionRepositoryFacade
var _ portsrepo.TransactionRepositoryFacade = (*PgxTransactionRepository)(nil)

const transactionColumns = `transaction_id, account_id, type, amount, before_balance, after_balance,
	from_account_id, to_account_id, counterpart_transaction_id, original_transaction_id, reversed_at, created_at`

func scanTransaction(row pgx.Row) (models.Transaction, error) {
	var m models.Transaction
	err := row.Scan(
		&m.TransactionID,
		&m.AccountID,
		&m.Type,
		&m.Amount,
		&m.BeforeBalance,
		&m.AfterBalance,
		&m.FromAccountID,
		&m.ToAccountID,
		&m.CounterpartTransactionID,
		&m.OriginalTransactionID,
		&m.ReversedAt,
		&m.CreatedAt,
	)
	return m, err
}

// FindTransactionByID retrieves a single ledger entry.
func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1;`

	m, err := scanTransaction(r.Pool.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find transaction by ID %s: %w", transactionID, err)
	}

	domainTxn := mapping.ToDomainTransaction(m)
	return &domainTxn, nil
}

// SaveTransactionsInTx appends ledger entries within a transaction.
func (r *PgxTransactionRepository) SaveTransactionsInTx(ctx context.Context, tx pgx.Tx, transactions []domain.Transaction) error {
	if len(transactions) == 0 {
		return nil
	}

	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`

	batch := &pgx.Batch{}
	for _, txn := range transactions {
		m := mapping.ToModelTransaction(txn)
		batch.Queue(query,
			m.TransactionID,
			m.AccountID,
			m.Type,
			m.Amount,
			m.BeforeBalance,
			m.AfterBalance,
			m.FromAccountID,
			m.ToAccountID,
			m.CounterpartTransactionID,
			m.OriginalTransactionID,
			m.ReversedAt,
			m.CreatedAt,
		)
	}

	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to execute transaction insert batch: %w", err)
	}

	return nil
}

// MarkTransactionsReversedInTx stamps reversed_at on the given entries. The
// reversed_at IS NULL guard makes double-reversal race-safe: a concurrent
// reversal that got there first leaves fewer rows to stamp, and the mismatch
// surfaces ErrAlreadyReversed which aborts the surrounding transaction.
func (r *PgxTransactionRepository) MarkTransactionsReversedInTx(ctx context.Context, tx pgx.Tx, transactionIDs []string, reversedAt time.Time) error {
	if len(transactionIDs) == 0 {
		return nil
	}

	query := `
		UPDATE transactions
		SET reversed_at = $2
		WHERE transaction_id = ANY($1) AND reversed_at IS NULL;
	`

	cmdTag, err := tx.Exec(ctx, query, transactionIDs, reversedAt)
	if err != nil {
		return fmt.Errorf("failed to mark transactions reversed: %w", err)
	}

	if cmdTag.RowsAffected() != int64(len(transactionIDs)) {
		return fmt.Errorf("%w: %d of %d records already stamped", apperrors.ErrAlreadyReversed,
			int64(len(transactionIDs))-cmdTag.RowsAffected(), len(transactionIDs))
	}

	return nil
}

// ListStatementTransactions returns the filtered page of an account's history
// ordered by created_at descending, plus the total count matching the filter
// and a cursor for the next page.
func (r *PgxTransactionRepository) ListStatementTransactions(ctx context.Context, accountID string, filter domain.StatementFilter) ([]domain.Transaction, int64, *string, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	// Fetch one extra row to determine whether a next page exists.
	fetchLimit := limit + 1

	whereClause := `WHERE account_id = $1`
	args := []interface{}{accountID}

	if filter.Type != nil {
		args = append(args, string(*filter.Type))
		whereClause += ` AND type = $` + strconv.Itoa(len(args))
	}
	if filter.StartAt != nil {
		args = append(args, *filter.StartAt)
		whereClause += ` AND created_at >= $` + strconv.Itoa(len(args))
	}
	if filter.EndAt != nil {
		args = append(args, *filter.EndAt)
		whereClause += ` AND created_at < $` + strconv.Itoa(len(args))
	}

	// Count the full filtered set before applying the cursor so filteredCount
	// stays stable across pages.
	countQuery := `SELECT COUNT(*) FROM transactions ` + whereClause + `;`
	var total int64
	if err := r.Pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, nil, fmt.Errorf("failed to count statement transactions for account %s: %w", accountID, err)
	}

	if filter.NextToken != nil && *filter.NextToken != "" {
		lastCreatedAt, decodeErr := pagination.DecodeToken(*filter.NextToken)
		if decodeErr != nil {
			return nil, 0, nil, fmt.Errorf("%w: invalid nextToken: %v", apperrors.ErrValidation, decodeErr)
		}
		args = append(args, lastCreatedAt)
		whereClause += ` AND created_at < $` + strconv.Itoa(len(args))
	}

	args = append(args, fetchLimit)
	query := `SELECT ` + transactionColumns + ` FROM transactions ` + whereClause +
		` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(len(args)) + `;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, nil, fmt.Errorf("failed to query statement transactions for account %s: %w", accountID, err)
	}
	defer rows.Close()

	results := make([]models.Transaction, 0, fetchLimit)
	for rows.Next() {
		m, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, nil, fmt.Errorf("failed to scan statement transaction row: %w", err)
		}
		results = append(results, m)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, nil, fmt.Errorf("error iterating statement transaction rows: %w", err)
	}

	var nextTokenVal *string
	if len(results) > limit {
		lastTxn := results[limit-1]
		token := pagination.EncodeToken(lastTxn.CreatedAt)
		nextTokenVal = &token
		results = results[:limit]
	}

	return mapping.ToDomainTransactionSlice(results), total, nextTokenVal, nil
}
