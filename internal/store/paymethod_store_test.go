package store

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"remit/internal/models"
)

func TestPaymentMethodStoreInsert(t *testing.T) {
	ctx := context.Background()
	var gotArgs []any
	execer := stubExecer{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "INSERT INTO payment_methods") {
				t.Fatalf("unexpected query: %s", query)
			}
			gotArgs = args
			return stubResult{rows: 1}, nil
		},
	}
	store := NewPaymentMethodStore(stubDB{})
	err := store.Insert(ctx, execer, models.PaymentMethod{
		ID:        "pm-1",
		UserID:    "user-1",
		Kind:      "card",
		Label:     "**** **** **** 4242",
		Details:   `{"last4":"4242"}`,
		IsDefault: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(gotArgs) != 6 || gotArgs[3] != "**** **** **** 4242" {
		t.Fatalf("unexpected args: %#v", gotArgs)
	}
}

func TestPaymentMethodStoreClearDefault(t *testing.T) {
	ctx := context.Background()
	var gotQuery string
	execer := stubExecer{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			gotQuery = query
			return stubResult{}, nil
		},
	}
	store := NewPaymentMethodStore(stubDB{})
	if err := store.ClearDefault(ctx, execer, "user-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(gotQuery, "is_default = FALSE") {
		t.Fatalf("unexpected query: %s", gotQuery)
	}
}
