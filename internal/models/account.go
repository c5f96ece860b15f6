package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is the DB-facing representation of a bank account.
type Account struct {
	AccountID     string          `db:"account_id"`
	Code          string          `db:"code"`
	OwnerUserID   string          `db:"owner_user_id"`
	Balance       decimal.Decimal `db:"balance"`
	IsActive      bool            `db:"is_active"`
	CreatedAt     time.Time       `db:"created_at"`
	LastUpdatedAt time.Time       `db:"last_updated_at"`
}
