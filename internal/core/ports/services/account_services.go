package services

import (
	"context"

	"github.com/vrcosta/bank_ledger_app/internal/core/domain"
	"github.com/vrcosta/bank_ledger_app/internal/dto"
)

// AccountSvcFacade exposes account lifecycle operations.
type AccountSvcFacade interface {
	// CreateAccount creates an account with a fresh code and a zero balance.
	// A code collision surfaces apperrors.ErrDuplicate; callers may retry.
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest) (*domain.Account, error)

	// GetAccountByCode retrieves an account by its short code.
	GetAccountByCode(ctx context.Context, code string) (*domain.Account, error)

	// ListActiveAccounts returns all active accounts.
	ListActiveAccounts(ctx context.Context) ([]domain.Account, error)

	// ChangeAccountStatus activates or deactivates an account by its ID.
	ChangeAccountStatus(ctx context.Context, accountID string, active bool) (*domain.Account, error)
}
