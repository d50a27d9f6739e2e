package handlers

import (
	"net/http"
	"sort"
	"strings"

	"remit/internal/currency"
	"remit/internal/fees"
	"remit/internal/validator"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) Countries(w http.ResponseWriter, r *http.Request) {
	codes := make([]string, 0, len(currency.Countries))
	for code := range currency.Countries {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	countries := make([]map[string]any, 0, len(codes))
	for _, code := range codes {
		country := currency.Countries[code]
		countries = append(countries, map[string]any{
			"code":      code,
			"name":      country.Name,
			"currency":  country.Currency,
			"dial_code": country.DialCode,
			"continent": country.Continent,
		})
	}
	respondSuccess(w, http.StatusOK, "ok", map[string]any{
		"countries": countries,
	})
}

func (h *Handler) CountryByCode(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(chi.URLParam(r, "code"))
	country, ok := currency.Countries[code]
	if !ok {
		respondError(w, http.StatusNotFound, "unsupported country")
		return
	}
	respondSuccess(w, http.StatusOK, "ok", map[string]any{
		"country": map[string]any{
			"code":      code,
			"name":      country.Name,
			"currency":  country.Currency,
			"dial_code": country.DialCode,
			"continent": country.Continent,
		},
	})
}

func (h *Handler) Currencies(w http.ResponseWriter, r *http.Request) {
	codes := currency.List()
	sort.Strings(codes)
	currencies := make([]map[string]any, 0, len(codes))
	for _, code := range codes {
		currencies = append(currencies, map[string]any{
			"code":     code,
			"symbol":   currency.Symbols[code],
			"decimals": currency.Decimals(code),
		})
	}
	respondSuccess(w, http.StatusOK, "ok", map[string]any{
		"currencies": currencies,
	})
}

// MethodsForCountry lists the payment methods usable from a country. Mobile
// money is only offered where the original service supported it.
func (h *Handler) MethodsForCountry(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(chi.URLParam(r, "country"))
	if err := validator.ValidateCountry(code); err != nil {
		respondError(w, http.StatusNotFound, "unsupported country")
		return
	}
	methods := []fees.Method{fees.MethodWallet, fees.MethodCard, fees.MethodBank, fees.MethodPaypal, fees.MethodCrypto}
	if currency.Countries[code].Continent == "Africa" {
		methods = append(methods, fees.MethodMobile)
	}
	respondSuccess(w, http.StatusOK, "ok", map[string]any{
		"country": code,
		"methods": methods,
	})
}
