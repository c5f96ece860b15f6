package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vrcosta/bank_ledger_app/internal/core/domain"
)

// CreateAccountRequest defines the data needed to create a new account.
// The owner comes from the identity layer; one account per user.
type CreateAccountRequest struct {
	OwnerUserID string `json:"userId" binding:"required"`
	Active      *bool  `json:"active"` // Optional, defaults to true
}

// UpdateAccountStatusRequest defines the payload for activating or
// deactivating an account.
type UpdateAccountStatusRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID     string          `json:"accountID"`
	Code          string          `json:"code"`
	OwnerUserID   string          `json:"ownerUserID"`
	Balance       decimal.Decimal `json:"balance"`
	IsActive      bool            `json:"isActive"`
	CreatedAt     time.Time       `json:"createdAt"`
	LastUpdatedAt time.Time       `json:"lastUpdatedAt"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO.
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:     acc.AccountID,
		Code:          acc.Code,
		OwnerUserID:   acc.OwnerUserID,
		Balance:       acc.Balance,
		IsActive:      acc.IsActive,
		CreatedAt:     acc.CreatedAt,
		LastUpdatedAt: acc.LastUpdatedAt,
	}
}

// ToListAccountResponse converts a slice of domain.Account to response DTOs.
func ToListAccountResponse(accounts []domain.Account) []AccountResponse {
	res := make([]AccountResponse, len(accounts))
	for i, acc := range accounts {
		res[i] = ToAccountResponse(&acc)
	}
	return res
}
