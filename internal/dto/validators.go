package dto

import (
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// RegisterCustomValidators installs the binding rules used by the DTOs above.
// Call once at startup with gin's validator engine.
func RegisterCustomValidators(v *validator.Validate) error {
	return v.RegisterValidation("amountgtzero", amountGreaterThanZero)
}

// amountGreaterThanZero validates that a decimal.Decimal field is strictly
// positive. The engine performs the authoritative check; this only rejects
// obviously malformed requests at the edge.
func amountGreaterThanZero(fl validator.FieldLevel) bool {
	value, ok := fl.Field().Interface().(decimal.Decimal)
	if !ok {
		return false
	}
	return value.GreaterThan(decimal.Zero)
}
