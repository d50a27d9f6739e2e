package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"remit/internal/currency"
	"remit/internal/fees"
	"remit/internal/middleware"
	"remit/internal/models"
	"remit/internal/services"

	"github.com/go-chi/chi/v5"
)

type depositRequest struct {
	Amount          string  `json:"amount"`
	Currency        string  `json:"currency"`
	Method          string  `json:"method"`
	ClientRequestID *string `json:"client_request_id"`
}

func (h *Handler) Deposit(w http.ResponseWriter, r *http.Request) {
	account, ok := h.currentAccount(w, r)
	if !ok {
		return
	}
	var req depositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	amount, ok := parseAmount(w, req.Amount, req.Currency)
	if !ok {
		return
	}
	if !fees.ValidMethod(req.Method) {
		respondError(w, http.StatusBadRequest, "unsupported payment method")
		return
	}
	txn, err := h.engine.Deposit(r.Context(), services.DepositRequest{
		AccountID:       account.ID,
		Amount:          amount,
		Currency:        req.Currency,
		Method:          fees.Method(req.Method),
		ClientRequestID: req.ClientRequestID,
	})
	if err != nil {
		respondEngineError(w, err)
		return
	}
	respondSuccess(w, http.StatusCreated, "deposit completed", map[string]any{
		"transaction": transactionJSON(txn),
	})
}

type withdrawRequest struct {
	Amount          string  `json:"amount"`
	Currency        string  `json:"currency"`
	Method          string  `json:"method"`
	ClientRequestID *string `json:"client_request_id"`
}

func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	account, ok := h.currentAccount(w, r)
	if !ok {
		return
	}
	var req withdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	amount, ok := parseAmount(w, req.Amount, req.Currency)
	if !ok {
		return
	}
	if !fees.ValidMethod(req.Method) {
		respondError(w, http.StatusBadRequest, "unsupported payment method")
		return
	}
	txn, err := h.engine.Withdraw(r.Context(), services.WithdrawRequest{
		AccountID:       account.ID,
		Amount:          amount,
		Currency:        req.Currency,
		Method:          fees.Method(req.Method),
		ClientRequestID: req.ClientRequestID,
	})
	if err != nil {
		respondEngineError(w, err)
		return
	}
	respondSuccess(w, http.StatusCreated, "withdrawal completed", map[string]any{
		"transaction": transactionJSON(txn),
	})
}

type sendRequest struct {
	RecipientEmail  string  `json:"recipient_email"`
	Amount          string  `json:"amount"`
	Currency        string  `json:"currency"`
	Description     string  `json:"description"`
	Express         bool    `json:"express"`
	Method          string  `json:"method"`
	ClientRequestID *string `json:"client_request_id"`
}

func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	account, ok := h.currentAccount(w, r)
	if !ok {
		return
	}
	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.RecipientEmail == "" {
		respondError(w, http.StatusBadRequest, "recipient_email is required")
		return
	}
	amount, ok := parseAmount(w, req.Amount, req.Currency)
	if !ok {
		return
	}
	if !fees.ValidMethod(req.Method) {
		respondError(w, http.StatusBadRequest, "unsupported payment method")
		return
	}
	txn, err := h.engine.Send(r.Context(), services.SendRequest{
		SenderAccountID: account.ID,
		RecipientEmail:  req.RecipientEmail,
		Amount:          amount,
		Currency:        req.Currency,
		Description:     req.Description,
		Express:         req.Express,
		Method:          fees.Method(req.Method),
		ClientRequestID: req.ClientRequestID,
	})
	if err != nil {
		respondEngineError(w, err)
		return
	}
	respondSuccess(w, http.StatusCreated, "transfer completed", map[string]any{
		"transaction": transactionJSON(txn),
	})
}

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	account, ok := h.currentAccount(w, r)
	if !ok {
		return
	}
	query := r.URL.Query()
	page := parseInt(query.Get("page"), 1)
	limit := parseInt(query.Get("limit"), 20)
	if limit > 100 {
		limit = 100
	}
	offset := (page - 1) * limit
	transactions, total, err := h.transactions.ListByAccount(r.Context(), account.ID, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load transactions")
		return
	}
	normalized := make([]map[string]any, 0, len(transactions))
	for _, txn := range transactions {
		normalized = append(normalized, transactionJSON(txn))
	}
	respondSuccess(w, http.StatusOK, "ok", map[string]any{
		"transactions": normalized,
		"pagination": map[string]any{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	account, ok := h.currentAccount(w, r)
	if !ok {
		return
	}
	transactionID := chi.URLParam(r, "id")
	txn, err := h.transactions.GetByID(r.Context(), account.ID, transactionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "transaction not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load transaction")
		return
	}
	respondSuccess(w, http.StatusOK, "ok", map[string]any{
		"transaction": transactionJSON(txn),
	})
}

func (h *Handler) Rates(w http.ResponseWriter, r *http.Request) {
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if !currency.Valid(from) || !currency.Valid(to) {
		respondError(w, http.StatusBadRequest, "unsupported currency")
		return
	}
	respondSuccess(w, http.StatusOK, "ok", map[string]any{
		"from": from,
		"to":   to,
		"rate": currency.Rate(from, to),
	})
}

type feeQuoteRequest struct {
	Amount           string `json:"amount"`
	Currency         string `json:"currency"`
	RecipientCountry string `json:"recipient_country"`
	Express          bool   `json:"express"`
	Method           string `json:"method"`
}

// FeeQuote prices a transfer without executing it. The same inputs always
// produce the same quote.
func (h *Handler) FeeQuote(w http.ResponseWriter, r *http.Request) {
	account, ok := h.currentAccount(w, r)
	if !ok {
		return
	}
	var req feeQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	amount, ok := parseAmount(w, req.Amount, req.Currency)
	if !ok {
		return
	}
	if !fees.ValidMethod(req.Method) {
		respondError(w, http.StatusBadRequest, "unsupported payment method")
		return
	}
	corridor := fees.CorridorFor(account.Country, req.RecipientCountry)
	if req.Express {
		corridor = fees.CorridorExpress
	}
	fee := fees.Compute(amount, corridor, fees.Method(req.Method))
	respondSuccess(w, http.StatusOK, "ok", map[string]any{
		"corridor":   corridor,
		"percentage": fee.Percentage,
		"fixed":      fee.Fixed,
		"fee":        fee.Total,
		"total":      amount.Add(fee.Total),
	})
}

// currentAccount resolves the authenticated user's account, writing the error
// response itself when that fails.
func (h *Handler) currentAccount(w http.ResponseWriter, r *http.Request) (models.Account, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return models.Account{}, false
	}
	account, err := h.accounts.GetByUserID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "account not found")
			return models.Account{}, false
		}
		respondError(w, http.StatusInternalServerError, "unable to load account")
		return models.Account{}, false
	}
	return account, true
}

func transactionJSON(txn models.Transaction) map[string]any {
	payload := map[string]any{
		"transaction_id": txn.ID,
		"type":           txn.Type,
		"amount":         txn.Amount,
		"currency":       txn.Currency,
		"fee":            txn.Fee,
		"total":          txn.Total,
		"status":         txn.Status,
		"description":    txn.Description,
		"created_at":     txn.CreatedAt,
	}
	if txn.Reference != nil {
		payload["reference"] = *txn.Reference
	}
	if txn.CounterpartyLabel != nil {
		payload["counterparty"] = *txn.CounterpartyLabel
	}
	return payload
}
