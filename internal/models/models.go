package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID           string    `db:"id" json:"id"`
	FullName     string    `db:"full_name" json:"full_name"`
	Email        string    `db:"email" json:"email"`
	PhoneNumber  string    `db:"phone_number" json:"phone_number"`
	Country      string    `db:"country" json:"country"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Account is a user's multi-currency balance holder. Balances live in their
// own rows (one per currency, created lazily on first credit); a missing row
// means zero.
type Account struct {
	ID            string          `db:"id" json:"id"`
	UserID        string          `db:"user_id" json:"user_id"`
	Country       string          `db:"country" json:"country"`
	TotalSent     decimal.Decimal `db:"total_sent" json:"total_sent"`
	TotalReceived decimal.Decimal `db:"total_received" json:"total_received"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}

type Balance struct {
	AccountID string          `db:"account_id" json:"account_id"`
	Currency  string          `db:"currency" json:"currency"`
	Amount    decimal.Decimal `db:"balance" json:"balance"`
}

const (
	TxnDeposit  = "deposit"
	TxnWithdraw = "withdraw"
	TxnSend     = "send"
	TxnReceive  = "receive"
)

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Transaction is one append-only ledger entry. A send produces two rows, one
// per account, linked by a shared Reference. Total is the actual balance
// delta for the payer (amount + fee); for credits it equals the amount.
type Transaction struct {
	ID                string          `db:"id" json:"transaction_id"`
	AccountID         string          `db:"account_id" json:"account_id"`
	Type              string          `db:"type" json:"type"`
	Amount            decimal.Decimal `db:"amount" json:"amount"`
	Currency          string          `db:"currency" json:"currency"`
	Fee               decimal.Decimal `db:"fee" json:"fee"`
	Total             decimal.Decimal `db:"total" json:"total"`
	CounterpartyID    *string         `db:"counterparty_id" json:"counterparty_id,omitempty"`
	CounterpartyLabel *string         `db:"counterparty_label" json:"counterparty_label,omitempty"`
	Reference         *string         `db:"reference" json:"reference,omitempty"`
	Status            string          `db:"status" json:"status"`
	Description       string          `db:"description" json:"description,omitempty"`
	ClientRequestID   *string         `db:"client_request_id" json:"client_request_id,omitempty"`
	CreatedAt         time.Time       `db:"created_at" json:"created_at"`
}

type PaymentMethod struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Kind      string    `db:"kind" json:"kind"`
	Label     string    `db:"label" json:"label"`
	Details   string    `db:"details" json:"-"`
	IsDefault bool      `db:"is_default" json:"is_default"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
