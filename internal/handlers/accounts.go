package handlers

import (
	"net/http"

	"remit/internal/auth"
	"remit/internal/currency"
	"remit/internal/money"
	"remit/internal/websocket"

	"github.com/shopspring/decimal"
)

func (h *Handler) Balances(w http.ResponseWriter, r *http.Request) {
	account, ok := h.currentAccount(w, r)
	if !ok {
		return
	}
	balances, err := h.accounts.Balances(r.Context(), account.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load balances")
		return
	}
	normalized := make([]map[string]any, 0, len(balances))
	for _, balance := range balances {
		normalized = append(normalized, map[string]any{
			"currency": balance.Currency,
			"balance":  money.Format(balance.Amount, currency.Decimals(balance.Currency)),
			"symbol":   currency.Symbols[balance.Currency],
		})
	}
	respondSuccess(w, http.StatusOK, "ok", map[string]any{
		"account_id":     account.ID,
		"balances":       normalized,
		"total_sent":     account.TotalSent,
		"total_received": account.TotalReceived,
	})
}

// SelfCheck recomputes each currency balance from the transaction log and
// reports any drift against the stored balance rows.
func (h *Handler) SelfCheck(w http.ResponseWriter, r *http.Request) {
	account, ok := h.currentAccount(w, r)
	if !ok {
		return
	}
	balances, err := h.accounts.Balances(r.Context(), account.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to self_check")
		return
	}
	sums, err := h.transactions.SumDeltas(r.Context(), account.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to self_check")
		return
	}
	ledger := make(map[string]decimal.Decimal, len(sums))
	for _, sum := range sums {
		ledger[sum.Currency] = sum.Sum
	}
	response := make([]map[string]any, 0, len(balances))
	for _, balance := range balances {
		expected := ledger[balance.Currency]
		scale := currency.Decimals(balance.Currency)
		response = append(response, map[string]any{
			"currency":       balance.Currency,
			"stored_balance": money.Format(balance.Amount, scale),
			"ledger_sum":     money.Format(expected, scale),
			"difference":     money.Format(balance.Amount.Sub(expected), scale),
		})
	}
	respondSuccess(w, http.StatusOK, "ok", map[string]any{
		"account_id": account.ID,
		"checks":     response,
	})
}

// Stats summarizes the account's activity: lifetime sent/received totals and
// completed transaction counts per type.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	account, ok := h.currentAccount(w, r)
	if !ok {
		return
	}
	counts, err := h.transactions.CountByType(r.Context(), account.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load stats")
		return
	}
	byType := make(map[string]int, len(counts))
	total := 0
	for _, count := range counts {
		byType[count.Type] = count.Count
		total += count.Count
	}
	respondSuccess(w, http.StatusOK, "ok", map[string]any{
		"account_id":        account.ID,
		"total_sent":        account.TotalSent,
		"total_received":    account.TotalReceived,
		"transaction_count": total,
		"by_type":           byType,
	})
}

// WSBalances upgrades to a websocket that streams balance updates. The token
// rides in the query string because browsers cannot set headers on websocket
// dials.
func (h *Handler) WSBalances(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	claims, err := auth.ParseToken(h.cfg.JWTSecret, token)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	websocket.ServeWS(w, r, h.hub, claims.UserID)
}
