package store

import (
	"context"
	"database/sql"
	"errors"

	"remit/internal/models"

	"github.com/shopspring/decimal"
)

type AccountStore struct {
	db DB
}

func NewAccountStore(db DB) *AccountStore {
	return &AccountStore{db: db}
}

func (s *AccountStore) Create(ctx context.Context, tx Execer, id, userID, country string) error {
	query := `
		INSERT INTO accounts (id, user_id, country, total_sent, total_received)
		VALUES ($1, $2, $3, 0, 0)
	`
	_, err := tx.ExecContext(ctx, query, id, userID, country)
	return err
}

func (s *AccountStore) GetByID(ctx context.Context, accountID string) (models.Account, error) {
	return getAccount(ctx, s.db, accountID)
}

// GetByIDTx reads the account through an open transaction so the engine sees
// row state consistent with its own mutation.
func (s *AccountStore) GetByIDTx(ctx context.Context, tx Getter, accountID string) (models.Account, error) {
	return getAccount(ctx, tx, accountID)
}

func getAccount(ctx context.Context, q Getter, accountID string) (models.Account, error) {
	var row models.Account
	err := q.GetContext(ctx, &row, `
		SELECT id, user_id, country, total_sent, total_received, created_at
		FROM accounts
		WHERE id = $1
	`, accountID)
	if err != nil {
		return models.Account{}, err
	}
	return row, nil
}

func (s *AccountStore) GetByUserID(ctx context.Context, userID string) (models.Account, error) {
	var row models.Account
	err := s.db.GetContext(ctx, &row, `
		SELECT id, user_id, country, total_sent, total_received, created_at
		FROM accounts
		WHERE user_id = $1
	`, userID)
	if err != nil {
		return models.Account{}, err
	}
	return row, nil
}

// GetByEmail resolves a transfer recipient from their login email.
func (s *AccountStore) GetByEmail(ctx context.Context, tx Getter, email string) (models.Account, error) {
	var row models.Account
	err := tx.GetContext(ctx, &row, `
		SELECT a.id, a.user_id, a.country, a.total_sent, a.total_received, a.created_at
		FROM accounts a
		JOIN users u ON u.id = a.user_id
		WHERE u.email = $1
	`, email)
	if err != nil {
		return models.Account{}, err
	}
	return row, nil
}

// Balances returns every balance row the account holds, ordered by currency.
func (s *AccountStore) Balances(ctx context.Context, accountID string) ([]models.Balance, error) {
	var rows []models.Balance
	err := s.db.SelectContext(ctx, &rows, `
		SELECT account_id, currency, balance
		FROM account_balances
		WHERE account_id = $1
		ORDER BY currency
	`, accountID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// GetBalance returns the balance in one currency; a missing row means zero.
func (s *AccountStore) GetBalance(ctx context.Context, accountID, currency string) (decimal.Decimal, error) {
	return readBalance(ctx, s.db, accountID, currency, "")
}

// GetBalanceForUpdate locks the balance row for the remainder of the
// transaction. Callers must lock rows in a deterministic order (see the
// transfer engine) to avoid deadlocks, and must EnsureBalanceRow first so
// there is always a row to lock.
func (s *AccountStore) GetBalanceForUpdate(ctx context.Context, tx Getter, accountID, currency string) (decimal.Decimal, error) {
	return readBalance(ctx, tx, accountID, currency, " FOR UPDATE")
}

func readBalance(ctx context.Context, q Getter, accountID, currency, suffix string) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := q.GetContext(ctx, &balance, `
		SELECT balance
		FROM account_balances
		WHERE account_id = $1 AND currency = $2`+suffix, accountID, currency)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	return balance, nil
}

// EnsureBalanceRow lazily creates the zero-balance row for a currency the
// account has not held before.
func (s *AccountStore) EnsureBalanceRow(ctx context.Context, tx Execer, accountID, currency string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO account_balances (account_id, currency, balance)
		VALUES ($1, $2, 0)
		ON CONFLICT (account_id, currency) DO NOTHING
	`, accountID, currency)
	return err
}

// AdjustBalance applies a signed delta. The table's CHECK (balance >= 0)
// constraint is the commit-time guard against overdraw.
func (s *AccountStore) AdjustBalance(ctx context.Context, tx Execer, accountID, currency string, delta decimal.Decimal) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE account_balances
		SET balance = balance + $1, updated_at = NOW()
		WHERE account_id = $2 AND currency = $3
	`, delta, accountID, currency)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// AddTotals bumps the informational accumulators. Deltas are never negative.
func (s *AccountStore) AddTotals(ctx context.Context, tx Execer, accountID string, sent, received decimal.Decimal) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE accounts
		SET total_sent = total_sent + $1, total_received = total_received + $2
		WHERE id = $3
	`, sent, received, accountID)
	return err
}
