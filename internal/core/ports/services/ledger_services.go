package services

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/vrcosta/bank_ledger_app/internal/core/domain"
)

// LedgerSvcFacade exposes the balance-affecting operations and statement queries.
type LedgerSvcFacade interface {
	// Deposit credits amount to the account and returns the new balance.
	Deposit(ctx context.Context, code string, amount decimal.Decimal) (decimal.Decimal, error)

	// Withdraw debits amount from the account and returns the new balance.
	// Fails with apperrors.ErrInsufficientFunds when balance < amount.
	Withdraw(ctx context.Context, code string, amount decimal.Decimal) (decimal.Decimal, error)

	// Transfer atomically moves amount between two accounts and returns the
	// sender's new balance.
	Transfer(ctx context.Context, fromCode, toCode string, amount decimal.Decimal) (decimal.Decimal, error)

	// ReverseTransaction applies the inverse adjustment of a previously
	// recorded transaction and appends compensating REVERSAL entries.
	ReverseTransaction(ctx context.Context, transactionID string) (*domain.ReversalResult, error)

	// GetAccountStatement returns the filtered, ordered transaction history of
	// an account together with its current balance.
	GetAccountStatement(ctx context.Context, code string, filter domain.StatementFilter) (*domain.Statement, error)
}
