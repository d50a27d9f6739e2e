package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"remit/internal/currency"
)

func TestCountriesListsEverySupportedCountry(t *testing.T) {
	handler := newTestHandler(handlerStubs{})
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/meta/countries", nil)
	handler.Routes().ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var payload struct {
		Countries []struct {
			Code     string `json:"code"`
			Currency string `json:"currency"`
		} `json:"countries"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if len(payload.Countries) != len(currency.Countries) {
		t.Fatalf("countries = %d, want %d", len(payload.Countries), len(currency.Countries))
	}
}

func TestCountryByCode(t *testing.T) {
	handler := newTestHandler(handlerStubs{})
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/meta/countries/ke", nil)
	handler.Routes().ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var payload struct {
		Country struct {
			Name     string `json:"name"`
			Currency string `json:"currency"`
		} `json:"country"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if payload.Country.Currency != "KES" {
		t.Fatalf("currency = %s, want KES", payload.Country.Currency)
	}

	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/meta/countries/ZZ", nil)
	handler.Routes().ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown country, got %d", rr.Code)
	}
}

func TestMethodsForCountry(t *testing.T) {
	handler := newTestHandler(handlerStubs{})
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/meta/methods/KE", nil)
	handler.Routes().ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var payload struct {
		Methods []string `json:"methods"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	hasMobile := false
	for _, method := range payload.Methods {
		if method == "mobile" {
			hasMobile = true
		}
	}
	if !hasMobile {
		t.Fatal("expected mobile money for KE")
	}
}
