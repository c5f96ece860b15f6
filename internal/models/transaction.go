package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is the DB-facing representation of one ledger entry.
// Rows are append-only; reversed_at is the only column ever updated.
type Transaction struct {
	TransactionID            string          `db:"transaction_id"`
	AccountID                string          `db:"account_id"`
	Type                     string          `db:"type"`
	Amount                   decimal.Decimal `db:"amount"`
	BeforeBalance            decimal.Decimal `db:"before_balance"`
	AfterBalance             decimal.Decimal `db:"after_balance"`
	FromAccountID            *string         `db:"from_account_id"`
	ToAccountID              *string         `db:"to_account_id"`
	CounterpartTransactionID *string         `db:"counterpart_transaction_id"`
	OriginalTransactionID    *string         `db:"original_transaction_id"`
	ReversedAt               *time.Time      `db:"reversed_at"`
	CreatedAt                time.Time       `db:"created_at"`
}
