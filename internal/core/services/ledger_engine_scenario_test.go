package services_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/vrcosta/bank_ledger_app/internal/apperrors"
	"github.com/vrcosta/bank_ledger_app/internal/core/domain"
	"github.com/vrcosta/bank_ledger_app/internal/core/services"
)

// fakeLedgerStore is an in-memory implementation of the account and
// transaction repositories plus the transaction manager. RunInTx serializes
// units of work on a mutex the way row locks serialize them in Postgres,
// which lets the scenario tests exercise the engine end to end.
type fakeLedgerStore struct {
	mu       sync.Mutex
	accounts map[string]*domain.Account // by ID
	byCode   map[string]string          // code -> ID
	txns     map[string]*domain.Transaction
}

func newFakeLedgerStore() *fakeLedgerStore {
	return &fakeLedgerStore{
		accounts: make(map[string]*domain.Account),
		byCode:   make(map[string]string),
		txns:     make(map[string]*domain.Transaction),
	}
}

func (s *fakeLedgerStore) addAccount(balance string) *domain.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	acc := &domain.Account{
		AccountID:     id,
		Code:          id[:6],
		OwnerUserID:   uuid.NewString(),
		Balance:       decimal.RequireFromString(balance),
		IsActive:      true,
		CreatedAt:     time.Now().UTC(),
		LastUpdatedAt: time.Now().UTC(),
	}
	s.accounts[id] = acc
	s.byCode[acc.Code] = id
	return acc
}

func (s *fakeLedgerStore) balance(accountID string) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accounts[accountID].Balance
}

func (s *fakeLedgerStore) transactionsFor(accountID string) []domain.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Transaction
	for _, txn := range s.txns {
		if txn.AccountID == accountID {
			out = append(out, *txn)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// --- TransactionManager ---

func (s *fakeLedgerStore) RunInTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(nil)
}

// --- AccountRepositoryFacade ---

func (s *fakeLedgerStore) FindAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byCode[code]
	if !ok {
		return nil, fmt.Errorf("%w: account with code %s", apperrors.ErrNotFound, code)
	}
	acc := *s.accounts[id]
	return &acc, nil
}

func (s *fakeLedgerStore) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
	}
	cp := *acc
	return &cp, nil
}

func (s *fakeLedgerStore) ListActiveAccounts(ctx context.Context) ([]domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Account
	for _, acc := range s.accounts {
		if acc.IsActive {
			out = append(out, *acc)
		}
	}
	return out, nil
}

func (s *fakeLedgerStore) SaveAccount(ctx context.Context, account domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byCode[account.Code]; exists {
		return apperrors.ErrDuplicate
	}
	cp := account
	s.accounts[account.AccountID] = &cp
	s.byCode[account.Code] = account.AccountID
	return nil
}

func (s *fakeLedgerStore) SetAccountActive(ctx context.Context, accountID string, active bool, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[accountID]
	if !ok {
		return apperrors.ErrNotFound
	}
	acc.IsActive = active
	acc.LastUpdatedAt = now
	return nil
}

func (s *fakeLedgerStore) FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error) {
	// Caller already holds the store lock via RunInTx
	out := make(map[string]domain.Account, len(accountIDs))
	for _, id := range accountIDs {
		acc, ok := s.accounts[id]
		if !ok {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, id)
		}
		out[id] = *acc
	}
	return out, nil
}

func (s *fakeLedgerStore) ApplyBalanceDeltasInTx(ctx context.Context, tx pgx.Tx, deltas map[string]decimal.Decimal, now time.Time) error {
	for id, delta := range deltas {
		acc := s.accounts[id]
		acc.Balance = acc.Balance.Add(delta)
		acc.LastUpdatedAt = now
	}
	return nil
}

// --- TransactionRepositoryFacade ---

func (s *fakeLedgerStore) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	txn, ok := s.txns[transactionID]
	if !ok {
		return nil, fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, transactionID)
	}
	cp := *txn
	return &cp, nil
}

func (s *fakeLedgerStore) SaveTransactionsInTx(ctx context.Context, tx pgx.Tx, transactions []domain.Transaction) error {
	for _, txn := range transactions {
		cp := txn
		s.txns[txn.TransactionID] = &cp
	}
	return nil
}

func (s *fakeLedgerStore) MarkTransactionsReversedInTx(ctx context.Context, tx pgx.Tx, transactionIDs []string, reversedAt time.Time) error {
	for _, id := range transactionIDs {
		txn, ok := s.txns[id]
		if !ok || txn.ReversedAt != nil {
			return fmt.Errorf("%w: transaction %s", apperrors.ErrAlreadyReversed, id)
		}
	}
	for _, id := range transactionIDs {
		at := reversedAt
		s.txns[id].ReversedAt = &at
	}
	return nil
}

func (s *fakeLedgerStore) ListStatementTransactions(ctx context.Context, accountID string, filter domain.StatementFilter) ([]domain.Transaction, int64, *string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []domain.Transaction
	for _, txn := range s.txns {
		if txn.AccountID != accountID {
			continue
		}
		if filter.Type != nil && txn.Type != *filter.Type {
			continue
		}
		if filter.StartAt != nil && txn.CreatedAt.Before(*filter.StartAt) {
			continue
		}
		if filter.EndAt != nil && !txn.CreatedAt.Before(*filter.EndAt) {
			continue
		}
		matched = append(matched, *txn)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	count := int64(len(matched))
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, count, nil, nil
}

func newEngineWithStore() (*services.LedgerService, *fakeLedgerStore) {
	store := newFakeLedgerStore()
	return services.NewLedgerService(store, store, store), store
}

// TestLedgerLifecycle walks one account through deposit, withdrawal, transfer
// and reversal, checking balances and the recorded history at each step.
func TestLedgerLifecycle(t *testing.T) {
	ctx := context.Background()
	engine, store := newEngineWithStore()

	alice := store.addAccount("0.00")
	bob := store.addAccount("0.00")

	// Deposit 100
	balance, err := engine.Deposit(ctx, alice.Code, decimal.RequireFromString("100.00"))
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.RequireFromString("100.00")))

	// Withdraw 30
	balance, err = engine.Withdraw(ctx, alice.Code, decimal.RequireFromString("30.00"))
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.RequireFromString("70.00")))

	// Transfer 20 to bob
	balance, err = engine.Transfer(ctx, alice.Code, bob.Code, decimal.RequireFromString("20.00"))
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.RequireFromString("50.00")))
	assert.True(t, store.balance(bob.AccountID).Equal(decimal.RequireFromString("20.00")))

	// An oversized withdrawal fails and leaves the balance untouched
	_, err = engine.Withdraw(ctx, alice.Code, decimal.RequireFromString("1000.00"))
	assert.ErrorIs(t, err, apperrors.ErrInsufficientFunds)
	assert.True(t, store.balance(alice.AccountID).Equal(decimal.RequireFromString("50.00")))

	// Every record carries a consistent before/after snapshot
	aliceTxns := store.transactionsFor(alice.AccountID)
	require.Len(t, aliceTxns, 3)
	for _, txn := range aliceTxns {
		diff := txn.AfterBalance.Sub(txn.BeforeBalance).Abs()
		assert.True(t, diff.Equal(txn.Amount), "Snapshot delta must equal the amount for %s", txn.Type)
	}

	// Reverse the transfer via alice's leg
	var transferLeg domain.Transaction
	for _, txn := range aliceTxns {
		if txn.Type == domain.Transfer {
			transferLeg = txn
		}
	}
	require.NotEmpty(t, transferLeg.TransactionID)
	result, err := engine.ReverseTransaction(ctx, transferLeg.TransactionID)
	require.NoError(t, err)
	assert.Len(t, result.ReversedTransactionIDs, 2, "Both legs of the pair are reversed")
	assert.Len(t, result.Reversals, 2)

	assert.True(t, store.balance(alice.AccountID).Equal(decimal.RequireFromString("70.00")))
	assert.True(t, store.balance(bob.AccountID).Equal(decimal.RequireFromString("0.00")))

	// A second reversal of the same transaction must fail without touching balances
	_, err = engine.ReverseTransaction(ctx, transferLeg.TransactionID)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyReversed)
	assert.True(t, store.balance(alice.AccountID).Equal(decimal.RequireFromString("70.00")))

	// Reversing the reversal entry itself is rejected
	_, err = engine.ReverseTransaction(ctx, result.Reversals[0].TransactionID)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

// TestConcurrentDeposits fires N concurrent deposits at one account and
// expects no lost updates: final balance N and N log entries.
func TestConcurrentDeposits(t *testing.T) {
	ctx := context.Background()
	engine, store := newEngineWithStore()
	account := store.addAccount("0.00")

	const workers = 50
	one := decimal.RequireFromString("1.00")

	var g errgroup.Group
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			_, err := engine.Deposit(ctx, account.Code, one)
			return err
		})
	}
	require.NoError(t, g.Wait())

	assert.True(t, store.balance(account.AccountID).Equal(decimal.RequireFromString("50.00")),
		"Expected 50.00 after 50 concurrent unit deposits, got %s", store.balance(account.AccountID))

	txns := store.transactionsFor(account.AccountID)
	require.Len(t, txns, workers)

	// The snapshots must form a gapless chain when ordered by before-balance
	sort.Slice(txns, func(i, j int) bool { return txns[i].BeforeBalance.LessThan(txns[j].BeforeBalance) })
	expected := decimal.Zero
	for _, txn := range txns {
		assert.True(t, txn.BeforeBalance.Equal(expected), "Gap in snapshot chain at %s", expected)
		expected = txn.AfterBalance
	}
}

// TestConcurrentWithdrawals checks the funds rule holds under contention:
// only as many withdrawals succeed as the balance covers.
func TestConcurrentWithdrawals(t *testing.T) {
	ctx := context.Background()
	engine, store := newEngineWithStore()
	account := store.addAccount("30.00")

	const workers = 10
	ten := decimal.RequireFromString("10.00")

	var succeeded, failed int
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := engine.Withdraw(ctx, account.Code, ten)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
			} else {
				succeeded++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, succeeded, "Only three withdrawals fit in a 30.00 balance")
	assert.Equal(t, workers-3, failed)
	assert.True(t, store.balance(account.AccountID).IsZero())
}

// TestStatementFiltering exercises the type filter and limit handling against
// a populated history.
func TestStatementFiltering(t *testing.T) {
	ctx := context.Background()
	engine, store := newEngineWithStore()
	account := store.addAccount("0.00")

	amounts := []string{"10.00", "20.00", "30.00"}
	for _, a := range amounts {
		_, err := engine.Deposit(ctx, account.Code, decimal.RequireFromString(a))
		require.NoError(t, err)
	}
	_, err := engine.Withdraw(ctx, account.Code, decimal.RequireFromString("5.00"))
	require.NoError(t, err)

	statement, err := engine.GetAccountStatement(ctx, account.Code, domain.StatementFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(4), statement.FilteredCount)
	assert.True(t, statement.CurrentBalance.Equal(decimal.RequireFromString("55.00")))
	for i := 1; i < len(statement.Transactions); i++ {
		assert.False(t, statement.Transactions[i].CreatedAt.After(statement.Transactions[i-1].CreatedAt),
			"Statement must be ordered newest first")
	}

	depositType := domain.Deposit
	statement, err = engine.GetAccountStatement(ctx, account.Code, domain.StatementFilter{Type: &depositType})
	require.NoError(t, err)
	assert.Equal(t, int64(3), statement.FilteredCount)
	for _, txn := range statement.Transactions {
		assert.Equal(t, domain.Deposit, txn.Type)
	}

	statement, err = engine.GetAccountStatement(ctx, account.Code, domain.StatementFilter{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(4), statement.FilteredCount, "Count covers the whole filtered set, not the page")
	assert.Len(t, statement.Transactions, 2)
}
