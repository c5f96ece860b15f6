package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType identifies the kind of balance-affecting operation a record documents.
type TransactionType string

const (
	Deposit  TransactionType = "DEPOSIT"
	Withdraw TransactionType = "WITHDRAW"
	Transfer TransactionType = "TRANSFER"
	Reversal TransactionType = "REVERSAL"
)

// Valid reports whether t is one of the known transaction types.
func (t TransactionType) Valid() bool {
	switch t {
	case Deposit, Withdraw, Transfer, Reversal:
		return true
	}
	return false
}

// Transaction is one immutable ledger entry capturing a single account's balance
// change and its before/after snapshot. Corrections happen by appending new
// offsetting records, never by editing history.
type Transaction struct {
	TransactionID string          `json:"transactionID"`
	AccountID     string          `json:"accountID"` // The account whose snapshot this record owns
	Type          TransactionType `json:"type"`
	Amount        decimal.Decimal `json:"amount"` // Always positive, the magnitude of the operation
	BeforeBalance decimal.Decimal `json:"beforeBalance"`
	AfterBalance  decimal.Decimal `json:"afterBalance"`

	// Populated on both records of a transfer pair, pointing to the same accounts.
	FromAccountID *string `json:"fromAccountID,omitempty"`
	ToAccountID   *string `json:"toAccountID,omitempty"`

	// CounterpartTransactionID links the two records of a transfer pair to each
	// other, so a reversal given either record can resolve both.
	CounterpartTransactionID *string `json:"counterpartTransactionID,omitempty"`

	// Set on REVERSAL records: the original record this one compensates.
	OriginalTransactionID *string `json:"originalTransactionID,omitempty"`

	// Stamped on an original record once a reversal has been applied to it.
	ReversedAt *time.Time `json:"reversedAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"` // Sole ordering key for statements
}

// ReversalResult describes the outcome of reversing a transaction.
type ReversalResult struct {
	ReversedTransactionIDs []string      `json:"reversedTransactionIDs"`
	Reversals              []Transaction `json:"reversals"`
}
