package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"remit/internal/models"
	"remit/internal/store"
)

func TestAddPaymentMethodCard(t *testing.T) {
	var inserted models.PaymentMethod
	clearedDefault := false
	handler := newTestHandler(handlerStubs{
		methods: stubMethodStore{
			insertFn: func(_ context.Context, _ store.Execer, method models.PaymentMethod) error {
				inserted = method
				return nil
			},
			clearDefaultFn: func(context.Context, store.Execer, string) error {
				clearedDefault = true
				return nil
			},
		},
	})
	body := `{"kind":"card","is_default":true,"details":{"brand":"visa","last4":"4242","expiry_month":"12","expiry_year":"2030","token":"tok_abc"}}`
	rr := httptest.NewRecorder()
	req := authedRequest(t, http.MethodPost, "/payment-methods/", strings.NewReader(body), "user-1")
	handler.Routes().ServeHTTP(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if inserted.Kind != "card" || inserted.Label != "**** **** **** 4242" {
		t.Fatalf("unexpected stored method: %+v", inserted)
	}
	if !clearedDefault {
		t.Fatal("expected previous default to be cleared")
	}
}

func TestAddPaymentMethodRejectsInvalidDetails(t *testing.T) {
	handler := newTestHandler(handlerStubs{})
	cases := []string{
		`{"kind":"spaceship","details":{}}`,
		`{"kind":"card","details":{"last4":"42"}}`,
		`{"kind":"bank","details":{"bank_name":"Equity","account_name":"Alice","iban":"NOT_AN_IBAN"}}`,
	}
	for _, body := range cases {
		rr := httptest.NewRecorder()
		req := authedRequest(t, http.MethodPost, "/payment-methods/", strings.NewReader(body), "user-1")
		handler.Routes().ServeHTTP(rr, req)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("body %s: expected 400, got %d", body, rr.Code)
		}
	}
}

func TestListPaymentMethods(t *testing.T) {
	handler := newTestHandler(handlerStubs{
		methods: stubMethodStore{
			listByUserFn: func(_ context.Context, userID string) ([]models.PaymentMethod, error) {
				return []models.PaymentMethod{
					{ID: "pm-1", UserID: userID, Kind: "mobile", Label: "M-Pesa +254****5678", IsDefault: true},
				}, nil
			},
		},
	})
	rr := httptest.NewRecorder()
	req := authedRequest(t, http.MethodGet, "/payment-methods/", nil, "user-1")
	handler.Routes().ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var payload struct {
		PaymentMethods []struct {
			Kind      string `json:"kind"`
			IsDefault bool   `json:"is_default"`
		} `json:"payment_methods"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if len(payload.PaymentMethods) != 1 || !payload.PaymentMethods[0].IsDefault {
		t.Fatalf("unexpected payload: %s", rr.Body.String())
	}
}
