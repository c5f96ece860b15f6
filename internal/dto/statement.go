package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vrcosta/bank_ledger_app/internal/core/domain"
)

// StatementParams defines the query parameters accepted by the statement endpoint.
// startDate/endDate are inclusive calendar days in the reference time zone.
type StatementParams struct {
	Type      *string `form:"type" binding:"omitempty,oneof=DEPOSIT WITHDRAW TRANSFER REVERSAL"`
	StartDate *string `form:"startDate" binding:"omitempty,datetime=2006-01-02"`
	EndDate   *string `form:"endDate" binding:"omitempty,datetime=2006-01-02"`
	Limit     int     `form:"limit,default=50"`
	NextToken *string `form:"nextToken"`
}

// StatementEntry is one transaction as rendered on a statement, with its
// timestamp adjusted to the reference time zone.
type StatementEntry struct {
	TransactionID string          `json:"id"`
	Type          string          `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	BeforeBalance decimal.Decimal `json:"beforeBalance"`
	AfterBalance  decimal.Decimal `json:"afterBalance"`
	Date          time.Time       `json:"date"`
	FromAccountID *string         `json:"fromAccountID,omitempty"`
	ToAccountID   *string         `json:"toAccountID,omitempty"`
	ReversedAt    *time.Time      `json:"reversedAt,omitempty"`
}

// StatementResponse is the filtered, ordered statement for one account.
type StatementResponse struct {
	AccountID      string           `json:"accountId"`
	CurrentBalance decimal.Decimal  `json:"currentBalance"`
	FilteredCount  int64            `json:"filteredCount"`
	Transactions   []StatementEntry `json:"transactions"`
	NextToken      *string          `json:"nextToken,omitempty"`
}

func toStatementEntry(txn domain.Transaction, loc *time.Location) StatementEntry {
	return StatementEntry{
		TransactionID: txn.TransactionID,
		Type:          string(txn.Type),
		Amount:        txn.Amount,
		BeforeBalance: txn.BeforeBalance,
		AfterBalance:  txn.AfterBalance,
		Date:          txn.CreatedAt.In(loc),
		FromAccountID: txn.FromAccountID,
		ToAccountID:   txn.ToAccountID,
		ReversedAt:    txn.ReversedAt,
	}
}

// ToStatementResponse converts a domain.Statement, rendering timestamps in the
// reference time zone. Stored timestamps stay UTC; only the view shifts.
func ToStatementResponse(st *domain.Statement, loc *time.Location) StatementResponse {
	entries := make([]StatementEntry, len(st.Transactions))
	for i, txn := range st.Transactions {
		entries[i] = toStatementEntry(txn, loc)
	}
	return StatementResponse{
		AccountID:      st.AccountID,
		CurrentBalance: st.CurrentBalance,
		FilteredCount:  st.FilteredCount,
		Transactions:   entries,
		NextToken:      st.NextToken,
	}
}
