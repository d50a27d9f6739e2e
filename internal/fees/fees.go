// Package fees computes transfer fees. Compute is a pure function of its
// inputs; identical inputs always produce identical fees.
package fees

import "github.com/shopspring/decimal"

type Corridor string

const (
	CorridorLocal         Corridor = "local"
	CorridorInternational Corridor = "international"
	CorridorExpress       Corridor = "express"
)

type Method string

const (
	MethodCard   Method = "card"
	MethodBank   Method = "bank"
	MethodMobile Method = "mobile"
	MethodPaypal Method = "paypal"
	MethodWallet Method = "wallet"
	MethodCrypto Method = "crypto"
)

// Fee is the result of a fee computation. Percentage is the applied rate as a
// fraction (0.005 = 0.5%), Fixed the flat component, Total the full charge:
// amount * Percentage + Fixed.
type Fee struct {
	Percentage decimal.Decimal `json:"percentage"`
	Fixed      decimal.Decimal `json:"fixed"`
	Total      decimal.Decimal `json:"total"`
}

var (
	localRate = decimal.RequireFromString("0.005")
	localFix  = decimal.RequireFromString("0.5")
	intlRate  = decimal.RequireFromString("0.02")
	intlFix   = decimal.RequireFromString("3")
	expRate   = decimal.RequireFromString("0.03")
	expFix    = decimal.RequireFromString("5")

	cardSurcharge   = decimal.RequireFromString("0.015")
	cryptoSurcharge = decimal.RequireFromString("0.01")
)

// Compute returns the fee for sending amount through the given corridor and
// payment method. Card and crypto methods add a percentage surcharge on top
// of the corridor rate; the other methods carry none.
func Compute(amount decimal.Decimal, corridor Corridor, method Method) Fee {
	rate, fixed := localRate, localFix
	switch corridor {
	case CorridorInternational:
		rate, fixed = intlRate, intlFix
	case CorridorExpress:
		rate, fixed = expRate, expFix
	}
	switch method {
	case MethodCard:
		rate = rate.Add(cardSurcharge)
	case MethodCrypto:
		rate = rate.Add(cryptoSurcharge)
	}
	return Fee{
		Percentage: rate,
		Fixed:      fixed,
		Total:      amount.Mul(rate).Add(fixed),
	}
}

// CorridorFor classifies a transfer by the two parties' countries.
func CorridorFor(senderCountry, recipientCountry string) Corridor {
	if senderCountry != "" && senderCountry == recipientCountry {
		return CorridorLocal
	}
	return CorridorInternational
}

// ValidMethod reports whether raw names a supported payment method. The empty
// string is accepted and means the default wallet balance.
func ValidMethod(raw string) bool {
	switch Method(raw) {
	case "", MethodCard, MethodBank, MethodMobile, MethodPaypal, MethodWallet, MethodCrypto:
		return true
	}
	return false
}
