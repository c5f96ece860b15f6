package accounting

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/vrcosta/bank_ledger_app/internal/apperrors"
)

// Direction indicates whether an amount is added to or subtracted from a balance.
type Direction string

const (
	Credit Direction = "CREDIT"
	Debit  Direction = "DEBIT"
)

// ValidateAmount checks that amount is a valid monetary magnitude: strictly
// positive with at most two fractional digits. Balances never touch binary
// floating point, so no epsilon handling is needed.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: amount must be greater than zero, got %s", apperrors.ErrValidation, amount.String())
	}
	if amount.Exponent() < -2 {
		return fmt.Errorf("%w: amount %s has more than two decimal places", apperrors.ErrValidation, amount.String())
	}
	return nil
}

// Apply computes the balance resulting from crediting or debiting amount.
// It is pure and enforces no balance floor; overdraft policy belongs to the caller.
func Apply(current decimal.Decimal, amount decimal.Decimal, direction Direction) (decimal.Decimal, error) {
	if err := ValidateAmount(amount); err != nil {
		return decimal.Zero, err
	}

	switch direction {
	case Credit:
		return current.Add(amount), nil
	case Debit:
		return current.Sub(amount), nil
	default:
		return decimal.Zero, fmt.Errorf("unknown balance direction %q", direction)
	}
}

// Inverse returns the opposite direction, used when reversing a transaction.
func Inverse(direction Direction) Direction {
	if direction == Credit {
		return Debit
	}
	return Credit
}
