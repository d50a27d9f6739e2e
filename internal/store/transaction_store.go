package store

import (
	"context"

	"remit/internal/models"

	"github.com/shopspring/decimal"
)

type TransactionStore struct {
	db DB
}

func NewTransactionStore(db DB) *TransactionStore {
	return &TransactionStore{db: db}
}

const transactionColumns = `
	id, account_id, type, amount, currency, fee, total,
	counterparty_id, counterparty_label, reference, status,
	description, client_request_id, created_at
`

func (s *TransactionStore) Insert(ctx context.Context, tx Execer, txn models.Transaction) error {
	query := `
		INSERT INTO transactions (id, account_id, type, amount, currency, fee, total,
			counterparty_id, counterparty_label, reference, status, description, client_request_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := tx.ExecContext(ctx, query,
		txn.ID, txn.AccountID, txn.Type, txn.Amount, txn.Currency, txn.Fee, txn.Total,
		txn.CounterpartyID, txn.CounterpartyLabel, txn.Reference, txn.Status,
		txn.Description, txn.ClientRequestID,
	)
	return err
}

func (s *TransactionStore) GetByID(ctx context.Context, accountID, transactionID string) (models.Transaction, error) {
	var row models.Transaction
	err := s.db.GetContext(ctx, &row, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE id = $1 AND account_id = $2
	`, transactionID, accountID)
	if err != nil {
		return models.Transaction{}, err
	}
	return row, nil
}

// GetByClientRequestID looks up an already-committed transaction for an
// idempotency key. Callers treat sql.ErrNoRows as "first attempt".
func (s *TransactionStore) GetByClientRequestID(ctx context.Context, tx Getter, accountID, clientRequestID string) (models.Transaction, error) {
	var row models.Transaction
	err := tx.GetContext(ctx, &row, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE account_id = $1 AND client_request_id = $2
	`, accountID, clientRequestID)
	if err != nil {
		return models.Transaction{}, err
	}
	return row, nil
}

// GetByReference returns both legs of a transfer.
func (s *TransactionStore) GetByReference(ctx context.Context, reference string) ([]models.Transaction, error) {
	var rows []models.Transaction
	err := s.db.SelectContext(ctx, &rows, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE reference = $1
		ORDER BY type
	`, reference)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListByAccount returns one page of the account's ledger, newest first, plus
// the total row count for pagination.
func (s *TransactionStore) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]models.Transaction, int, error) {
	var rows []models.Transaction
	err := s.db.SelectContext(ctx, &rows, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE account_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, accountID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	var total int
	err = s.db.GetContext(ctx, &total, `
		SELECT COUNT(*) FROM transactions WHERE account_id = $1
	`, accountID)
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

type TypeCount struct {
	Type  string `db:"type"`
	Count int    `db:"count"`
}

// CountByType returns how many completed transactions of each type the
// account has.
func (s *TransactionStore) CountByType(ctx context.Context, accountID string) ([]TypeCount, error) {
	var rows []TypeCount
	err := s.db.SelectContext(ctx, &rows, `
		SELECT type, COUNT(*) AS count
		FROM transactions
		WHERE account_id = $1 AND status = 'completed'
		GROUP BY type
		ORDER BY type
	`, accountID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

type LedgerSum struct {
	Currency string          `db:"currency"`
	Sum      decimal.Decimal `db:"sum"`
}

// SumDeltas recomputes each currency balance from the transaction log:
// deposits and receives add their total, withdrawals and sends subtract it.
// Used by the self-check endpoint to spot drift against stored balances.
func (s *TransactionStore) SumDeltas(ctx context.Context, accountID string) ([]LedgerSum, error) {
	var rows []LedgerSum
	err := s.db.SelectContext(ctx, &rows, `
		SELECT currency,
		       COALESCE(SUM(CASE WHEN type IN ('deposit', 'receive') THEN total ELSE -total END), 0) AS sum
		FROM transactions
		WHERE account_id = $1 AND status = 'completed'
		GROUP BY currency
		ORDER BY currency
	`, accountID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
