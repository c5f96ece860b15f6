package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account represents a balance-holding bank account within the core domain.
// This is the primary representation used by services.
type Account struct {
	AccountID     string          `json:"accountID"`   // Primary Key (UUID)
	Code          string          `json:"code"`        // Short unique human-facing lookup key
	OwnerUserID   string          `json:"ownerUserID"` // Supplied by the identity layer, one account per user
	Balance       decimal.Decimal `json:"balance"`
	IsActive      bool            `json:"isActive"` // Inactive accounts are hidden from listing, never deleted
	CreatedAt     time.Time       `json:"createdAt"`
	LastUpdatedAt time.Time       `json:"lastUpdatedAt"`
}
