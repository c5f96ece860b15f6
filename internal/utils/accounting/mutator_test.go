package accounting

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/vrcosta/bank_ledger_app/internal/apperrors"
)

func TestValidateAmount(t *testing.T) {
	assert.NoError(t, ValidateAmount(decimal.NewFromFloat(0.01)))
	assert.NoError(t, ValidateAmount(decimal.NewFromInt(100)))
	assert.NoError(t, ValidateAmount(decimal.RequireFromString("99.99")))

	err := ValidateAmount(decimal.Zero)
	assert.ErrorIs(t, err, apperrors.ErrValidation, "Zero amount should fail validation")

	err = ValidateAmount(decimal.NewFromInt(-5))
	assert.ErrorIs(t, err, apperrors.ErrValidation, "Negative amount should fail validation")

	err = ValidateAmount(decimal.RequireFromString("10.001"))
	assert.ErrorIs(t, err, apperrors.ErrValidation, "More than two decimal places should fail validation")
}

func TestApply(t *testing.T) {
	current := decimal.RequireFromString("100.00")

	credited, err := Apply(current, decimal.RequireFromString("0.10"), Credit)
	assert.NoError(t, err)
	assert.True(t, credited.Equal(decimal.RequireFromString("100.10")), "Credit should add exactly, got %s", credited)

	debited, err := Apply(current, decimal.RequireFromString("30.00"), Debit)
	assert.NoError(t, err)
	assert.True(t, debited.Equal(decimal.RequireFromString("70.00")), "Debit should subtract exactly, got %s", debited)

	// Apply enforces no floor; the overdraft policy lives in the engine
	overdrawn, err := Apply(decimal.RequireFromString("10.00"), decimal.RequireFromString("20.00"), Debit)
	assert.NoError(t, err)
	assert.True(t, overdrawn.Equal(decimal.RequireFromString("-10.00")))

	_, err = Apply(current, decimal.NewFromInt(-1), Credit)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = Apply(current, decimal.NewFromInt(1), Direction("SIDEWAYS"))
	assert.Error(t, err)
}

func TestApplyRepeatedCents(t *testing.T) {
	// 0.1 + 0.2 style drift must not occur
	balance := decimal.Zero
	cent := decimal.RequireFromString("0.10")
	for i := 0; i < 3; i++ {
		var err error
		balance, err = Apply(balance, cent, Credit)
		assert.NoError(t, err)
	}
	assert.True(t, balance.Equal(decimal.RequireFromString("0.30")), "Expected exactly 0.30, got %s", balance)
}

func TestInverse(t *testing.T) {
	assert.Equal(t, Debit, Inverse(Credit))
	assert.Equal(t, Credit, Inverse(Debit))
}
