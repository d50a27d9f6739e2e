package money

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAcceptsPlainAmounts(t *testing.T) {
	cases := []struct {
		raw   string
		scale int32
		want  string
	}{
		{"100", 2, "100"},
		{"100.50", 2, "100.5"},
		{"0.01", 2, "0.01"},
		{"5000", 0, "5000"},
		{"12.345", 3, "12.345"},
		{"-3.50", 2, "-3.5"},
	}
	for _, tc := range cases {
		amount, err := Parse(tc.raw, tc.scale)
		if err != nil {
			t.Fatalf("Parse(%q, %d): unexpected error: %v", tc.raw, tc.scale, err)
		}
		if amount.String() != tc.want {
			t.Fatalf("Parse(%q, %d) = %s, want %s", tc.raw, tc.scale, amount, tc.want)
		}
	}
}

func TestParseRejectsMalformedAmounts(t *testing.T) {
	cases := []struct {
		raw   string
		scale int32
		want  error
	}{
		{"", 2, ErrInvalidAmount},
		{"abc", 2, ErrInvalidAmount},
		{"1e9", 2, ErrInvalidAmount},
		{"10,00", 2, ErrInvalidAmount},
		{"1.234", 2, ErrTooManyDecimals},
		{"100.5", 0, ErrTooManyDecimals},
		{"1.0.0", 2, ErrInvalidAmount},
	}
	for _, tc := range cases {
		if _, err := Parse(tc.raw, tc.scale); err != tc.want {
			t.Fatalf("Parse(%q, %d): expected %v, got %v", tc.raw, tc.scale, tc.want, err)
		}
	}
}

func TestParsePositiveRejectsZeroAndNegative(t *testing.T) {
	for _, raw := range []string{"0", "0.00", "-1", "-0.01"} {
		if _, err := ParsePositive(raw, 2); err != ErrInvalidAmount {
			t.Fatalf("ParsePositive(%q): expected ErrInvalidAmount, got %v", raw, err)
		}
	}
	amount, err := ParsePositive("12.50", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !amount.Equal(decimal.RequireFromString("12.5")) {
		t.Fatalf("unexpected amount: %s", amount)
	}
}

func TestFormatUsesCurrencyScale(t *testing.T) {
	cases := []struct {
		amount string
		scale  int32
		want   string
	}{
		{"101", 2, "101.00"},
		{"0.5", 2, "0.50"},
		{"5000", 0, "5000"},
		{"1.5", 3, "1.500"},
		{"-3.5", 2, "-3.50"},
	}
	for _, tc := range cases {
		got := Format(decimal.RequireFromString(tc.amount), tc.scale)
		if got != tc.want {
			t.Fatalf("Format(%s, %d) = %q, want %q", tc.amount, tc.scale, got, tc.want)
		}
	}
}
