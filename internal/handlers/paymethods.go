package handlers

import (
	"encoding/json"
	"net/http"

	"remit/internal/middleware"
	"remit/internal/models"
	"remit/internal/paymethod"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

func (h *Handler) ListPaymentMethods(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	methods, err := h.methods.ListByUser(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load payment methods")
		return
	}
	normalized := make([]map[string]any, 0, len(methods))
	for _, method := range methods {
		normalized = append(normalized, map[string]any{
			"id":         method.ID,
			"kind":       method.Kind,
			"label":      method.Label,
			"is_default": method.IsDefault,
			"created_at": method.CreatedAt,
		})
	}
	respondSuccess(w, http.StatusOK, "ok", map[string]any{
		"payment_methods": normalized,
	})
}

type addPaymentMethodRequest struct {
	Kind      string          `json:"kind"`
	Details   json.RawMessage `json:"details"`
	IsDefault bool            `json:"is_default"`
}

func (h *Handler) AddPaymentMethod(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req addPaymentMethodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	details, err := paymethod.Decode(req.Kind, req.Details)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	method := models.PaymentMethod{
		ID:        uuid.NewString(),
		UserID:    userID,
		Kind:      string(details.Kind()),
		Label:     details.Label(),
		Details:   string(req.Details),
		IsDefault: req.IsDefault,
	}
	err = h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		if req.IsDefault {
			if err := h.methods.ClearDefault(r.Context(), tx, userID); err != nil {
				return err
			}
		}
		if err := h.methods.Insert(r.Context(), tx, method); err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]string{"kind": method.Kind, "label": method.Label})
		return h.audit.Log(r.Context(), tx, userID, "add_payment_method", "payment_method", method.ID, string(data))
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to save payment method")
		return
	}
	respondSuccess(w, http.StatusCreated, "payment method added", map[string]any{
		"payment_method": map[string]any{
			"id":         method.ID,
			"kind":       method.Kind,
			"label":      method.Label,
			"is_default": method.IsDefault,
		},
	})
}
