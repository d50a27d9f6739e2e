package money

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrTooManyDecimals = errors.New("amount has too many decimal places")
)

// Parse converts a user-supplied amount string into a decimal, rejecting
// anything that is not a plain number with at most scale fractional digits.
// Exponent notation is rejected so "1e9" cannot sneak past callers.
func Parse(raw string, scale int32) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	for _, r := range raw {
		if (r < '0' || r > '9') && r != '.' && r != '-' && r != '+' {
			return decimal.Zero, ErrInvalidAmount
		}
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if amount.Exponent() < -scale {
		return decimal.Zero, ErrTooManyDecimals
	}
	return amount, nil
}

// ParsePositive is Parse plus a strictly-greater-than-zero check, the form
// every ledger operation wants.
func ParsePositive(raw string, scale int32) (decimal.Decimal, error) {
	amount, err := Parse(raw, scale)
	if err != nil {
		return decimal.Zero, err
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, ErrInvalidAmount
	}
	return amount, nil
}

// Format renders an amount with the fixed number of fractional digits the
// currency carries, e.g. "101.00" for USD or "5000" for JPY.
func Format(amount decimal.Decimal, scale int32) string {
	return amount.StringFixed(scale)
}
