package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"remit/internal/services"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]any{
		"success": false,
		"message": message,
	})
}

func respondSuccess(w http.ResponseWriter, status int, message string, extra map[string]any) {
	payload := map[string]any{
		"success": true,
		"message": message,
	}
	for key, value := range extra {
		payload[key] = value
	}
	respondJSON(w, status, payload)
}

// respondEngineError maps the transfer engine's sentinel errors onto HTTP
// statuses. Anything unrecognized is a 500 with a generic message.
func respondEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidAmount):
		respondError(w, http.StatusBadRequest, "invalid amount")
	case errors.Is(err, services.ErrInvalidCurrency):
		respondError(w, http.StatusBadRequest, "unsupported currency")
	case errors.Is(err, services.ErrInsufficientBalance):
		respondError(w, http.StatusConflict, "insufficient balance")
	case errors.Is(err, services.ErrRequestReused):
		respondError(w, http.StatusConflict, "client_request_id already used for a different request")
	case errors.Is(err, services.ErrSelfTransfer):
		respondError(w, http.StatusBadRequest, "cannot send money to yourself")
	case errors.Is(err, services.ErrAccountNotFound):
		respondError(w, http.StatusNotFound, "account not found")
	case errors.Is(err, services.ErrRecipientNotFound):
		respondError(w, http.StatusNotFound, "recipient not found")
	case errors.Is(err, services.ErrConflict):
		respondError(w, http.StatusConflict, "request conflicted, try again")
	default:
		respondError(w, http.StatusInternalServerError, "operation failed")
	}
}
