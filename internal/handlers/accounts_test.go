package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"remit/internal/models"
	"remit/internal/store"
)

func TestBalancesFormatsPerCurrencyScale(t *testing.T) {
	handler := newTestHandler(handlerStubs{
		accounts: stubAccountStore{
			balancesFn: func(context.Context, string) ([]models.Balance, error) {
				return []models.Balance{
					{Currency: "JPY", Amount: dec("5000")},
					{Currency: "USD", Amount: dec("101.5")},
				}, nil
			},
		},
	})
	rr := httptest.NewRecorder()
	req := authedRequest(t, http.MethodGet, "/accounts/balances", nil, "user-1")
	handler.Routes().ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var payload struct {
		Balances []struct {
			Currency string `json:"currency"`
			Balance  string `json:"balance"`
		} `json:"balances"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if len(payload.Balances) != 2 {
		t.Fatalf("balances = %d, want 2", len(payload.Balances))
	}
	if payload.Balances[0].Balance != "5000" {
		t.Fatalf("JPY balance = %s, want 5000", payload.Balances[0].Balance)
	}
	if payload.Balances[1].Balance != "101.50" {
		t.Fatalf("USD balance = %s, want 101.50", payload.Balances[1].Balance)
	}
}

func TestSelfCheckReportsDrift(t *testing.T) {
	handler := newTestHandler(handlerStubs{
		accounts: stubAccountStore{
			balancesFn: func(context.Context, string) ([]models.Balance, error) {
				return []models.Balance{{Currency: "USD", Amount: dec("100")}}, nil
			},
		},
		transactions: stubTransactionStore{
			sumDeltasFn: func(context.Context, string) ([]store.LedgerSum, error) {
				return []store.LedgerSum{{Currency: "USD", Sum: dec("90")}}, nil
			},
		},
	})
	rr := httptest.NewRecorder()
	req := authedRequest(t, http.MethodGet, "/accounts/self-check", nil, "user-1")
	handler.Routes().ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var payload struct {
		Checks []struct {
			StoredBalance string `json:"stored_balance"`
			LedgerSum     string `json:"ledger_sum"`
			Difference    string `json:"difference"`
		} `json:"checks"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if len(payload.Checks) != 1 {
		t.Fatalf("checks = %d, want 1", len(payload.Checks))
	}
	if payload.Checks[0].Difference != "10.00" {
		t.Fatalf("difference = %s, want 10.00", payload.Checks[0].Difference)
	}
}

func TestStatsSummarizesActivity(t *testing.T) {
	handler := newTestHandler(handlerStubs{
		transactions: stubTransactionStore{
			countByTypeFn: func(_ context.Context, accountID string) ([]store.TypeCount, error) {
				if accountID != "acc-1" {
					t.Fatalf("unexpected account %s", accountID)
				}
				return []store.TypeCount{
					{Type: "deposit", Count: 3},
					{Type: "send", Count: 1},
				}, nil
			},
		},
	})
	rr := httptest.NewRecorder()
	req := authedRequest(t, http.MethodGet, "/accounts/stats", nil, "user-1")
	handler.Routes().ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var payload struct {
		AccountID        string         `json:"account_id"`
		TransactionCount int            `json:"transaction_count"`
		ByType           map[string]int `json:"by_type"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if payload.AccountID != "acc-1" {
		t.Fatalf("account_id = %s, want acc-1", payload.AccountID)
	}
	if payload.TransactionCount != 4 {
		t.Fatalf("transaction_count = %d, want 4", payload.TransactionCount)
	}
	if payload.ByType["deposit"] != 3 || payload.ByType["send"] != 1 {
		t.Fatalf("unexpected by_type: %v", payload.ByType)
	}
}

func TestWSBalancesRejectsBadToken(t *testing.T) {
	handler := newTestHandler(handlerStubs{})
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ws/balances?token=garbage", nil)
	handler.Routes().ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}
