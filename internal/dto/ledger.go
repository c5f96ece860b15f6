package dto

import (
	"github.com/shopspring/decimal"

	"github.com/vrcosta/bank_ledger_app/internal/core/domain"
)

// AmountRequest carries the monetary magnitude for deposit, withdrawal and
// transfer operations. Validation of the positive-amount rule happens here
// (via the amountgtzero binding) and again in the engine before any mutation.
type AmountRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required,amountgtzero"`
}

// BalanceResponse reports the resulting balance of a balance-affecting operation.
type BalanceResponse struct {
	Code       string          `json:"code"`
	NewBalance decimal.Decimal `json:"newBalance"`
}

// ReversalResponse describes the compensating records written by a reversal.
type ReversalResponse struct {
	ReversedTransactionIDs []string         `json:"reversedTransactionIDs"`
	Reversals              []StatementEntry `json:"reversals"`
}

// ToReversalResponse converts a domain.ReversalResult to its response DTO.
// Reversal entries are rendered in UTC; the statement view applies the
// reference zone when listing them later.
func ToReversalResponse(res *domain.ReversalResult) ReversalResponse {
	entries := make([]StatementEntry, len(res.Reversals))
	for i, txn := range res.Reversals {
		entries[i] = toStatementEntry(txn, txn.CreatedAt.Location())
	}
	return ReversalResponse{
		ReversedTransactionIDs: res.ReversedTransactionIDs,
		Reversals:              entries,
	}
}
