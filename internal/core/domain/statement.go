package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatementFilter narrows the transaction records included in a statement.
// StartAt/EndAt are UTC instants already expanded from inclusive calendar-day
// bounds in the reference time zone.
type StatementFilter struct {
	Type      *TransactionType
	StartAt   *time.Time
	EndAt     *time.Time // Exclusive upper bound (start of the day after endDate)
	Limit     int
	NextToken *string
}

// Statement is a filtered, ordered view of one account's transaction history.
type Statement struct {
	AccountID      string          `json:"accountId"`
	CurrentBalance decimal.Decimal `json:"currentBalance"`
	FilteredCount  int64           `json:"filteredCount"`
	Transactions   []Transaction   `json:"transactions"`
	NextToken      *string         `json:"nextToken,omitempty"`
}
