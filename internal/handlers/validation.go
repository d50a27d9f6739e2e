package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"remit/internal/currency"
	"remit/internal/money"

	"github.com/shopspring/decimal"
)

// parseAmount validates the currency and parses the amount at that currency's
// scale, writing the error response itself on failure.
func parseAmount(w http.ResponseWriter, rawAmount, cur string) (decimal.Decimal, bool) {
	if !currency.Valid(cur) {
		respondError(w, http.StatusBadRequest, "unsupported currency")
		return decimal.Zero, false
	}
	amount, err := money.ParsePositive(rawAmount, currency.Decimals(cur))
	if err != nil {
		if errors.Is(err, money.ErrTooManyDecimals) {
			respondError(w, http.StatusBadRequest, "amount has too many decimal places")
			return decimal.Zero, false
		}
		respondError(w, http.StatusBadRequest, "invalid amount")
		return decimal.Zero, false
	}
	return amount, true
}

func parseInt(raw string, fallback int) int {
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
