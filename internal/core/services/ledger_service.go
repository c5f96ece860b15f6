package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/vrcosta/bank_ledger_app/internal/apperrors"
	"github.com/vrcosta/bank_ledger_app/internal/core/domain"
	portsrepo "github.com/vrcosta/bank_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/vrcosta/bank_ledger_app/internal/core/ports/services"
	"github.com/vrcosta/bank_ledger_app/internal/middleware"
	"github.com/vrcosta/bank_ledger_app/internal/utils/accounting"
)

// LedgerService implements the balance-affecting operations. Every mutation
// runs inside a database transaction that locks the affected account rows,
// writes the immutable log entries and applies the balance deltas together,
// so concurrent operations on the same account serialize on the row locks.
type LedgerService struct {
	accountRepo portsrepo.AccountRepositoryFacade
	txnRepo     portsrepo.TransactionRepositoryFacade
	txManager   portsrepo.TransactionManager
}

var _ portssvc.LedgerSvcFacade = (*LedgerService)(nil)

// NewLedgerService creates a new LedgerService.
func NewLedgerService(
	accountRepo portsrepo.AccountRepositoryFacade,
	txnRepo portsrepo.TransactionRepositoryFacade,
	txManager portsrepo.TransactionManager,
) *LedgerService {
	return &LedgerService{
		accountRepo: accountRepo,
		txnRepo:     txnRepo,
		txManager:   txManager,
	}
}

// Deposit credits amount to the account identified by code and returns the
// resulting balance.
func (s *LedgerService) Deposit(ctx context.Context, code string, amount decimal.Decimal) (decimal.Decimal, error) {
	return s.adjustBalance(ctx, code, amount, domain.Deposit, accounting.Credit)
}

// Withdraw debits amount from the account identified by code and returns the
// resulting balance. Overdrafts are rejected with ErrInsufficientFunds.
func (s *LedgerService) Withdraw(ctx context.Context, code string, amount decimal.Decimal) (decimal.Decimal, error) {
	return s.adjustBalance(ctx, code, amount, domain.Withdraw, accounting.Debit)
}

// adjustBalance is the shared single-account mutation path for deposits and
// withdrawals. The funds check and the snapshot both read the balance of the
// locked row, not the value seen before the transaction began.
func (s *LedgerService) adjustBalance(ctx context.Context, code string, amount decimal.Decimal, txnType domain.TransactionType, direction accounting.Direction) (decimal.Decimal, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := accounting.ValidateAmount(amount); err != nil {
		return decimal.Zero, err
	}

	account, err := s.accountRepo.FindAccountByCode(ctx, code)
	if err != nil {
		return decimal.Zero, err
	}
	if !account.IsActive {
		return decimal.Zero, fmt.Errorf("%w: account %s is inactive", apperrors.ErrValidation, code)
	}

	var newBalance decimal.Decimal
	err = s.txManager.RunInTx(ctx, func(tx pgx.Tx) error {
		locked, err := s.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, []string{account.AccountID})
		if err != nil {
			return err
		}
		current := locked[account.AccountID].Balance

		if direction == accounting.Debit && current.LessThan(amount) {
			return fmt.Errorf("%w: balance %s is less than amount %s", apperrors.ErrInsufficientFunds, current.String(), amount.String())
		}

		after, err := accounting.Apply(current, amount, direction)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		entry := domain.Transaction{
			TransactionID: uuid.NewString(),
			AccountID:     account.AccountID,
			Type:          txnType,
			Amount:        amount,
			BeforeBalance: current,
			AfterBalance:  after,
			CreatedAt:     now,
		}
		if err := s.txnRepo.SaveTransactionsInTx(ctx, tx, []domain.Transaction{entry}); err != nil {
			return err
		}

		delta := amount
		if direction == accounting.Debit {
			delta = amount.Neg()
		}
		if err := s.accountRepo.ApplyBalanceDeltasInTx(ctx, tx, map[string]decimal.Decimal{account.AccountID: delta}, now); err != nil {
			return err
		}

		newBalance = after
		return nil
	})
	if err != nil {
		logger.Warn("Balance adjustment failed",
			slog.String("code", code),
			slog.String("type", string(txnType)),
			slog.String("error", err.Error()),
		)
		return decimal.Zero, err
	}

	logger.Info("Balance adjusted",
		slog.String("accountID", account.AccountID),
		slog.String("type", string(txnType)),
		slog.String("amount", amount.String()),
	)
	return newBalance, nil
}

// Transfer atomically moves amount from one account to another and returns the
// sender's new balance. Both legs are written as TRANSFER entries linked to
// each other, and both balance changes commit in the same transaction.
func (s *LedgerService) Transfer(ctx context.Context, fromCode, toCode string, amount decimal.Decimal) (decimal.Decimal, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := accounting.ValidateAmount(amount); err != nil {
		return decimal.Zero, err
	}
	if fromCode == toCode {
		return decimal.Zero, fmt.Errorf("%w: cannot transfer to the same account", apperrors.ErrValidation)
	}

	var fromAccount, toAccount *domain.Account
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		fromAccount, err = s.accountRepo.FindAccountByCode(gctx, fromCode)
		return err
	})
	g.Go(func() error {
		var err error
		toAccount, err = s.accountRepo.FindAccountByCode(gctx, toCode)
		return err
	})
	if err := g.Wait(); err != nil {
		return decimal.Zero, err
	}
	if !fromAccount.IsActive {
		return decimal.Zero, fmt.Errorf("%w: account %s is inactive", apperrors.ErrValidation, fromCode)
	}
	if !toAccount.IsActive {
		return decimal.Zero, fmt.Errorf("%w: account %s is inactive", apperrors.ErrValidation, toCode)
	}

	var senderBalance decimal.Decimal
	err := s.txManager.RunInTx(ctx, func(tx pgx.Tx) error {
		locked, err := s.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, []string{fromAccount.AccountID, toAccount.AccountID})
		if err != nil {
			return err
		}
		fromBalance := locked[fromAccount.AccountID].Balance
		toBalance := locked[toAccount.AccountID].Balance

		if fromBalance.LessThan(amount) {
			return fmt.Errorf("%w: balance %s is less than amount %s", apperrors.ErrInsufficientFunds, fromBalance.String(), amount.String())
		}

		fromAfter, err := accounting.Apply(fromBalance, amount, accounting.Debit)
		if err != nil {
			return err
		}
		toAfter, err := accounting.Apply(toBalance, amount, accounting.Credit)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		debitID := uuid.NewString()
		creditID := uuid.NewString()
		fromID := fromAccount.AccountID
		toID := toAccount.AccountID

		debitEntry := domain.Transaction{
			TransactionID:            debitID,
			AccountID:                fromID,
			Type:                     domain.Transfer,
			Amount:                   amount,
			BeforeBalance:            fromBalance,
			AfterBalance:             fromAfter,
			FromAccountID:            &fromID,
			ToAccountID:              &toID,
			CounterpartTransactionID: &creditID,
			CreatedAt:                now,
		}
		creditEntry := domain.Transaction{
			TransactionID:            creditID,
			AccountID:                toID,
			Type:                     domain.Transfer,
			Amount:                   amount,
			BeforeBalance:            toBalance,
			AfterBalance:             toAfter,
			FromAccountID:            &fromID,
			ToAccountID:              &toID,
			CounterpartTransactionID: &debitID,
			CreatedAt:                now,
		}
		if err := s.txnRepo.SaveTransactionsInTx(ctx, tx, []domain.Transaction{debitEntry, creditEntry}); err != nil {
			return err
		}

		deltas := map[string]decimal.Decimal{
			fromID: amount.Neg(),
			toID:   amount,
		}
		if err := s.accountRepo.ApplyBalanceDeltasInTx(ctx, tx, deltas, now); err != nil {
			return err
		}

		senderBalance = fromAfter
		return nil
	})
	if err != nil {
		logger.Warn("Transfer failed",
			slog.String("fromCode", fromCode),
			slog.String("toCode", toCode),
			slog.String("error", err.Error()),
		)
		return decimal.Zero, err
	}

	logger.Info("Transfer completed",
		slog.String("fromAccountID", fromAccount.AccountID),
		slog.String("toAccountID", toAccount.AccountID),
		slog.String("amount", amount.String()),
	)
	return senderBalance, nil
}

// ReverseTransaction applies the inverse adjustment of a previously recorded
// transaction. Reversing either leg of a transfer reverses both legs. The
// original entries stay untouched except for the reversed_at stamp; the
// compensation is recorded as new REVERSAL entries.
func (s *LedgerService) ReverseTransaction(ctx context.Context, transactionID string) (*domain.ReversalResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	original, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	records, err := s.resolveReversalSet(ctx, original)
	if err != nil {
		return nil, err
	}

	accountIDs := make([]string, 0, len(records))
	seen := make(map[string]bool, len(records))
	for _, rec := range records {
		if !seen[rec.AccountID] {
			seen[rec.AccountID] = true
			accountIDs = append(accountIDs, rec.AccountID)
		}
	}

	var result domain.ReversalResult
	err = s.txManager.RunInTx(ctx, func(tx pgx.Tx) error {
		locked, err := s.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, accountIDs)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		balances := make(map[string]decimal.Decimal, len(locked))
		for id, acc := range locked {
			balances[id] = acc.Balance
		}

		reversedIDs := make([]string, 0, len(records))
		reversals := make([]domain.Transaction, 0, len(records))
		deltas := make(map[string]decimal.Decimal, len(records))

		for _, rec := range records {
			origDir, err := originalDirection(rec)
			if err != nil {
				return err
			}
			dir := accounting.Inverse(origDir)

			current := balances[rec.AccountID]
			if dir == accounting.Debit && current.LessThan(rec.Amount) {
				return fmt.Errorf("%w: reversing transaction %s would overdraw account %s", apperrors.ErrInsufficientFunds, rec.TransactionID, rec.AccountID)
			}

			after, err := accounting.Apply(current, rec.Amount, dir)
			if err != nil {
				return err
			}
			balances[rec.AccountID] = after

			originalID := rec.TransactionID
			reversal := domain.Transaction{
				TransactionID:         uuid.NewString(),
				AccountID:             rec.AccountID,
				Type:                  domain.Reversal,
				Amount:                rec.Amount,
				BeforeBalance:         current,
				AfterBalance:          after,
				FromAccountID:         rec.FromAccountID,
				ToAccountID:           rec.ToAccountID,
				OriginalTransactionID: &originalID,
				CreatedAt:             now,
			}
			reversedIDs = append(reversedIDs, rec.TransactionID)
			reversals = append(reversals, reversal)

			delta := rec.Amount
			if dir == accounting.Debit {
				delta = rec.Amount.Neg()
			}
			deltas[rec.AccountID] = deltas[rec.AccountID].Add(delta)
		}

		// Cross-link the two compensating entries of a transfer reversal,
		// mirroring the links of the pair they undo.
		if len(reversals) == 2 {
			first := reversals[0].TransactionID
			second := reversals[1].TransactionID
			reversals[0].CounterpartTransactionID = &second
			reversals[1].CounterpartTransactionID = &first
		}

		// The IS NULL guard on the stamp makes concurrent reversals of the
		// same transaction lose here instead of double-compensating.
		if err := s.txnRepo.MarkTransactionsReversedInTx(ctx, tx, reversedIDs, now); err != nil {
			return err
		}
		if err := s.txnRepo.SaveTransactionsInTx(ctx, tx, reversals); err != nil {
			return err
		}
		if err := s.accountRepo.ApplyBalanceDeltasInTx(ctx, tx, deltas, now); err != nil {
			return err
		}

		result = domain.ReversalResult{
			ReversedTransactionIDs: reversedIDs,
			Reversals:              reversals,
		}
		return nil
	})
	if err != nil {
		logger.Warn("Reversal failed", slog.String("transactionID", transactionID), slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("Transaction reversed",
		slog.String("transactionID", transactionID),
		slog.Int("entriesReversed", len(result.ReversedTransactionIDs)),
	)
	return &result, nil
}

// resolveReversalSet validates that original can be reversed and expands a
// transfer leg into both legs of its pair.
func (s *LedgerService) resolveReversalSet(ctx context.Context, original *domain.Transaction) ([]domain.Transaction, error) {
	if original.Type == domain.Reversal {
		return nil, fmt.Errorf("%w: a reversal cannot be reversed", apperrors.ErrValidation)
	}
	if original.ReversedAt != nil {
		return nil, fmt.Errorf("%w: transaction %s", apperrors.ErrAlreadyReversed, original.TransactionID)
	}

	records := []domain.Transaction{*original}
	if original.Type == domain.Transfer {
		if original.CounterpartTransactionID == nil {
			return nil, fmt.Errorf("transfer entry %s has no counterpart link", original.TransactionID)
		}
		counterpart, err := s.txnRepo.FindTransactionByID(ctx, *original.CounterpartTransactionID)
		if err != nil {
			return nil, fmt.Errorf("failed to load transfer counterpart: %w", err)
		}
		if counterpart.ReversedAt != nil {
			return nil, fmt.Errorf("%w: transaction %s", apperrors.ErrAlreadyReversed, counterpart.TransactionID)
		}
		records = append(records, *counterpart)
	}
	return records, nil
}

// originalDirection reports how the original entry moved its account's balance.
func originalDirection(txn domain.Transaction) (accounting.Direction, error) {
	switch txn.Type {
	case domain.Deposit:
		return accounting.Credit, nil
	case domain.Withdraw:
		return accounting.Debit, nil
	case domain.Transfer:
		if txn.FromAccountID != nil && *txn.FromAccountID == txn.AccountID {
			return accounting.Debit, nil
		}
		return accounting.Credit, nil
	default:
		return "", fmt.Errorf("%w: transaction type %s cannot be reversed", apperrors.ErrValidation, txn.Type)
	}
}

// GetAccountStatement returns the filtered transaction history of the account
// identified by code, newest first, with the account's current balance.
func (s *LedgerService) GetAccountStatement(ctx context.Context, code string, filter domain.StatementFilter) (*domain.Statement, error) {
	account, err := s.accountRepo.FindAccountByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	transactions, filteredCount, nextToken, err := s.txnRepo.ListStatementTransactions(ctx, account.AccountID, filter)
	if err != nil {
		middleware.GetLoggerFromCtx(ctx).Error("Failed to list statement transactions", slog.String("accountID", account.AccountID), slog.String("error", err.Error()))
		return nil, err
	}

	return &domain.Statement{
		AccountID:      account.AccountID,
		CurrentBalance: account.Balance,
		FilteredCount:  filteredCount,
		Transactions:   transactions,
		NextToken:      nextToken,
	}, nil
}
