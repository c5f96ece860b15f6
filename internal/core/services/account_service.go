package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vrcosta/bank_ledger_app/internal/core/domain"
	portsrepo "github.com/vrcosta/bank_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/vrcosta/bank_ledger_app/internal/core/ports/services"
	"github.com/vrcosta/bank_ledger_app/internal/dto"
	"github.com/vrcosta/bank_ledger_app/internal/middleware"
)

// accountCodeLength is the number of leading UUID characters used as the
// human-facing account code.
const accountCodeLength = 6

// AccountService provides account lifecycle operations.
type AccountService struct {
	accountRepo portsrepo.AccountRepositoryFacade
}

var _ portssvc.AccountSvcFacade = (*AccountService)(nil)

// NewAccountService creates a new AccountService.
func NewAccountService(accountRepo portsrepo.AccountRepositoryFacade) *AccountService {
	return &AccountService{accountRepo: accountRepo}
}

// CreateAccount creates a new account with a zero balance. The code is the
// first six characters of the freshly generated account UUID; the unique
// constraint on codes turns the rare collision into ErrDuplicate.
func (s *AccountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	accountID := uuid.NewString()
	now := time.Now().UTC()

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	account := domain.Account{
		AccountID:     accountID,
		Code:          accountID[:accountCodeLength],
		OwnerUserID:   req.OwnerUserID,
		Balance:       decimal.Zero.Round(2),
		IsActive:      active,
		CreatedAt:     now,
		LastUpdatedAt: now,
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		logger.Error("Failed to save new account", slog.String("ownerUserID", req.OwnerUserID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	logger.Info("Account created", slog.String("accountID", account.AccountID), slog.String("code", account.Code))
	return &account, nil
}

// GetAccountByCode retrieves an account by its short code.
func (s *AccountService) GetAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByCode(ctx, code)
	if err != nil {
		middleware.GetLoggerFromCtx(ctx).Warn("Failed to find account by code", slog.String("code", code), slog.String("error", err.Error()))
		return nil, err
	}
	return account, nil
}

// ListActiveAccounts returns all active accounts ordered by code.
func (s *AccountService) ListActiveAccounts(ctx context.Context) ([]domain.Account, error) {
	accounts, err := s.accountRepo.ListActiveAccounts(ctx)
	if err != nil {
		middleware.GetLoggerFromCtx(ctx).Error("Failed to list active accounts", slog.String("error", err.Error()))
		return nil, err
	}
	return accounts, nil
}

// ChangeAccountStatus activates or deactivates an account. Accounts are never
// hard-deleted; deactivation only hides them from listings.
func (s *AccountService) ChangeAccountStatus(ctx context.Context, accountID string, active bool) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.accountRepo.SetAccountActive(ctx, accountID, active, time.Now().UTC()); err != nil {
		logger.Warn("Failed to change account status", slog.String("accountID", accountID), slog.String("error", err.Error()))
		return nil, err
	}

	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	logger.Info("Account status changed", slog.String("accountID", accountID), slog.Bool("active", active))
	return account, nil
}
