package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"remit/internal/currency"
	"remit/internal/db"
	"remit/internal/fees"
	"remit/internal/ident"
	"remit/internal/models"
	"remit/internal/store"
	"remit/internal/websocket"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidCurrency     = errors.New("invalid currency")
	ErrAccountNotFound     = errors.New("account not found")
	ErrRecipientNotFound   = errors.New("recipient not found")
	ErrSelfTransfer        = errors.New("cannot send money to yourself")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrRequestReused       = errors.New("client request id reused with different parameters")
	ErrConflict            = errors.New("ledger conflict at commit")
	ErrStoreUnavailable    = errors.New("ledger store unavailable")
)

type AccountStore interface {
	GetByIDTx(ctx context.Context, tx store.Getter, accountID string) (models.Account, error)
	GetByEmail(ctx context.Context, tx store.Getter, email string) (models.Account, error)
	GetBalanceForUpdate(ctx context.Context, tx store.Getter, accountID, currency string) (decimal.Decimal, error)
	EnsureBalanceRow(ctx context.Context, tx store.Execer, accountID, currency string) error
	AdjustBalance(ctx context.Context, tx store.Execer, accountID, currency string, delta decimal.Decimal) error
	AddTotals(ctx context.Context, tx store.Execer, accountID string, sent, received decimal.Decimal) error
}

type TransactionStore interface {
	Insert(ctx context.Context, tx store.Execer, txn models.Transaction) error
	GetByClientRequestID(ctx context.Context, tx store.Getter, accountID, clientRequestID string) (models.Transaction, error)
}

type AuditStore interface {
	Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
}

type BalanceHub interface {
	BroadcastBalance(userID string, update websocket.BalanceUpdate)
}

type Recorder interface {
	RecordOperation(operation, outcome string)
	RecordAmount(operation, currency string, amount float64)
}

// TransferService is the only component allowed to mutate balances. Every
// operation runs its reads, its re-validation and its writes inside one
// serializable transaction, so either every leg commits or none do.
type TransferService struct {
	txRunner     db.TxRunner
	accounts     AccountStore
	transactions TransactionStore
	audit        AuditStore
	hub          BalanceHub
	metrics      Recorder
	logger       *slog.Logger
}

func NewTransferService(txRunner db.TxRunner, accounts AccountStore, transactions TransactionStore, audit AuditStore, hub BalanceHub, metrics Recorder, logger *slog.Logger) *TransferService {
	return &TransferService{
		txRunner:     txRunner,
		accounts:     accounts,
		transactions: transactions,
		audit:        audit,
		hub:          hub,
		metrics:      metrics,
		logger:       logger,
	}
}

type DepositRequest struct {
	AccountID       string
	Amount          decimal.Decimal
	Currency        string
	Method          fees.Method
	ClientRequestID *string
}

type WithdrawRequest struct {
	AccountID       string
	Amount          decimal.Decimal
	Currency        string
	Method          fees.Method
	ClientRequestID *string
}

type SendRequest struct {
	SenderAccountID string
	RecipientEmail  string
	Amount          decimal.Decimal
	Currency        string
	Description     string
	Express         bool
	Method          fees.Method
	ClientRequestID *string
}

func (s *TransferService) Deposit(ctx context.Context, req DepositRequest) (models.Transaction, error) {
	if err := validate(req.Amount, req.Currency); err != nil {
		s.metrics.RecordOperation(models.TxnDeposit, "rejected")
		return models.Transaction{}, err
	}
	var txn models.Transaction
	var account models.Account
	var balanceAfter decimal.Decimal
	var replayed bool
	err := s.withConflictRetry(ctx, func() error {
		replayed = false
		return s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
			if existing, ok, err := s.replay(ctx, tx, req.AccountID, req.ClientRequestID, models.TxnDeposit, req.Amount, req.Currency); err != nil {
				return err
			} else if ok {
				txn, replayed = existing, true
				return nil
			}
			var err error
			account, err = s.accounts.GetByIDTx(ctx, tx, req.AccountID)
			if errors.Is(err, sql.ErrNoRows) {
				return ErrAccountNotFound
			}
			if err != nil {
				return err
			}
			if err := s.accounts.EnsureBalanceRow(ctx, tx, account.ID, req.Currency); err != nil {
				return err
			}
			balance, err := s.accounts.GetBalanceForUpdate(ctx, tx, account.ID, req.Currency)
			if err != nil {
				return err
			}
			if err := s.accounts.AdjustBalance(ctx, tx, account.ID, req.Currency, req.Amount); err != nil {
				return err
			}
			balanceAfter = balance.Add(req.Amount)
			txn = models.Transaction{
				ID:              ident.NewTransactionID(),
				AccountID:       account.ID,
				Type:            models.TxnDeposit,
				Amount:          req.Amount,
				Currency:        req.Currency,
				Fee:             decimal.Zero,
				Total:           req.Amount,
				Status:          models.StatusCompleted,
				Description:     "Deposit",
				ClientRequestID: req.ClientRequestID,
				CreatedAt:       time.Now().UTC(),
			}
			if err := s.transactions.Insert(ctx, tx, txn); err != nil {
				return err
			}
			return s.audit.Log(ctx, tx, account.UserID, models.TxnDeposit, "transaction", txn.ID, auditData(txn))
		})
	})
	if err != nil {
		s.metrics.RecordOperation(models.TxnDeposit, "failed")
		return models.Transaction{}, err
	}
	s.metrics.RecordOperation(models.TxnDeposit, "completed")
	if !replayed {
		s.metrics.RecordAmount(models.TxnDeposit, req.Currency, req.Amount.InexactFloat64())
		s.broadcast(account, req.Currency, balanceAfter, models.TxnDeposit)
	}
	return txn, nil
}

func (s *TransferService) Withdraw(ctx context.Context, req WithdrawRequest) (models.Transaction, error) {
	if err := validate(req.Amount, req.Currency); err != nil {
		s.metrics.RecordOperation(models.TxnWithdraw, "rejected")
		return models.Transaction{}, err
	}
	fee := fees.Compute(req.Amount, fees.CorridorLocal, req.Method)
	total := req.Amount.Add(fee.Total)
	var txn models.Transaction
	var account models.Account
	var balanceAfter decimal.Decimal
	var replayed bool
	err := s.withConflictRetry(ctx, func() error {
		replayed = false
		return s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
			if existing, ok, err := s.replay(ctx, tx, req.AccountID, req.ClientRequestID, models.TxnWithdraw, req.Amount, req.Currency); err != nil {
				return err
			} else if ok {
				txn, replayed = existing, true
				return nil
			}
			var err error
			account, err = s.accounts.GetByIDTx(ctx, tx, req.AccountID)
			if errors.Is(err, sql.ErrNoRows) {
				return ErrAccountNotFound
			}
			if err != nil {
				return err
			}
			if err := s.accounts.EnsureBalanceRow(ctx, tx, account.ID, req.Currency); err != nil {
				return err
			}
			balance, err := s.accounts.GetBalanceForUpdate(ctx, tx, account.ID, req.Currency)
			if err != nil {
				return err
			}
			if balance.LessThan(total) {
				return ErrInsufficientBalance
			}
			if err := s.accounts.AdjustBalance(ctx, tx, account.ID, req.Currency, total.Neg()); err != nil {
				return err
			}
			balanceAfter = balance.Sub(total)
			txn = models.Transaction{
				ID:              ident.NewTransactionID(),
				AccountID:       account.ID,
				Type:            models.TxnWithdraw,
				Amount:          req.Amount,
				Currency:        req.Currency,
				Fee:             fee.Total,
				Total:           total,
				Status:          models.StatusCompleted,
				Description:     "Withdrawal",
				ClientRequestID: req.ClientRequestID,
				CreatedAt:       time.Now().UTC(),
			}
			if err := s.transactions.Insert(ctx, tx, txn); err != nil {
				return err
			}
			return s.audit.Log(ctx, tx, account.UserID, models.TxnWithdraw, "transaction", txn.ID, auditData(txn))
		})
	})
	if err != nil {
		s.metrics.RecordOperation(models.TxnWithdraw, "failed")
		return models.Transaction{}, err
	}
	s.metrics.RecordOperation(models.TxnWithdraw, "completed")
	if !replayed {
		s.metrics.RecordAmount(models.TxnWithdraw, req.Currency, req.Amount.InexactFloat64())
		s.broadcast(account, req.Currency, balanceAfter, models.TxnWithdraw)
	}
	return txn, nil
}

// Send moves money between two accounts. The debit, the credit and both
// transaction records commit as a single unit; the fee is retained by the
// system and recorded on the sender's leg only.
func (s *TransferService) Send(ctx context.Context, req SendRequest) (models.Transaction, error) {
	if err := validate(req.Amount, req.Currency); err != nil {
		s.metrics.RecordOperation(models.TxnSend, "rejected")
		return models.Transaction{}, err
	}
	var senderTxn models.Transaction
	var sender, recipient models.Account
	var senderAfter, recipientAfter decimal.Decimal
	var replayed bool
	err := s.withConflictRetry(ctx, func() error {
		replayed = false
		return s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
			if existing, ok, err := s.replay(ctx, tx, req.SenderAccountID, req.ClientRequestID, models.TxnSend, req.Amount, req.Currency); err != nil {
				return err
			} else if ok {
				senderTxn, replayed = existing, true
				return nil
			}
			var err error
			sender, err = s.accounts.GetByIDTx(ctx, tx, req.SenderAccountID)
			if errors.Is(err, sql.ErrNoRows) {
				return ErrAccountNotFound
			}
			if err != nil {
				return err
			}
			recipient, err = s.accounts.GetByEmail(ctx, tx, req.RecipientEmail)
			if errors.Is(err, sql.ErrNoRows) {
				return ErrRecipientNotFound
			}
			if err != nil {
				return err
			}
			if recipient.ID == sender.ID {
				return ErrSelfTransfer
			}

			corridor := fees.CorridorFor(sender.Country, recipient.Country)
			if req.Express {
				corridor = fees.CorridorExpress
			}
			fee := fees.Compute(req.Amount, corridor, req.Method)
			total := req.Amount.Add(fee.Total)

			// Lock both balance rows in account-ID order so two opposing
			// transfers cannot deadlock.
			first, second := sender.ID, recipient.ID
			if second < first {
				first, second = second, first
			}
			for _, accountID := range []string{first, second} {
				if err := s.accounts.EnsureBalanceRow(ctx, tx, accountID, req.Currency); err != nil {
					return err
				}
			}
			balances := make(map[string]decimal.Decimal, 2)
			for _, accountID := range []string{first, second} {
				balance, err := s.accounts.GetBalanceForUpdate(ctx, tx, accountID, req.Currency)
				if err != nil {
					return err
				}
				balances[accountID] = balance
			}
			if balances[sender.ID].LessThan(total) {
				return ErrInsufficientBalance
			}
			if err := s.accounts.AdjustBalance(ctx, tx, sender.ID, req.Currency, total.Neg()); err != nil {
				return err
			}
			if err := s.accounts.AdjustBalance(ctx, tx, recipient.ID, req.Currency, req.Amount); err != nil {
				return err
			}
			if err := s.accounts.AddTotals(ctx, tx, sender.ID, req.Amount, decimal.Zero); err != nil {
				return err
			}
			if err := s.accounts.AddTotals(ctx, tx, recipient.ID, decimal.Zero, req.Amount); err != nil {
				return err
			}
			senderAfter = balances[sender.ID].Sub(total)
			recipientAfter = balances[recipient.ID].Add(req.Amount)

			reference := ident.NewReference()
			description := req.Description
			if description == "" {
				description = "Money transfer"
			}
			now := time.Now().UTC()
			senderTxn = models.Transaction{
				ID:                ident.NewTransactionID(),
				AccountID:         sender.ID,
				Type:              models.TxnSend,
				Amount:            req.Amount,
				Currency:          req.Currency,
				Fee:               fee.Total,
				Total:             total,
				CounterpartyID:    &recipient.ID,
				CounterpartyLabel: &req.RecipientEmail,
				Reference:         &reference,
				Status:            models.StatusCompleted,
				Description:       description,
				ClientRequestID:   req.ClientRequestID,
				CreatedAt:         now,
			}
			receiveTxn := models.Transaction{
				ID:                ident.NewTransactionID(),
				AccountID:         recipient.ID,
				Type:              models.TxnReceive,
				Amount:            req.Amount,
				Currency:          req.Currency,
				Fee:               decimal.Zero,
				Total:             req.Amount,
				CounterpartyID:    &sender.ID,
				CounterpartyLabel: nil,
				Reference:         &reference,
				Status:            models.StatusCompleted,
				Description:       description,
				CreatedAt:         now,
			}
			if err := s.transactions.Insert(ctx, tx, senderTxn); err != nil {
				return err
			}
			if err := s.transactions.Insert(ctx, tx, receiveTxn); err != nil {
				return err
			}
			return s.audit.Log(ctx, tx, sender.UserID, models.TxnSend, "transaction", senderTxn.ID, auditData(senderTxn))
		})
	})
	if err != nil {
		s.metrics.RecordOperation(models.TxnSend, "failed")
		return models.Transaction{}, err
	}
	s.metrics.RecordOperation(models.TxnSend, "completed")
	if !replayed {
		s.metrics.RecordAmount(models.TxnSend, req.Currency, req.Amount.InexactFloat64())
		s.broadcast(sender, req.Currency, senderAfter, models.TxnSend)
		s.broadcast(recipient, req.Currency, recipientAfter, models.TxnReceive)
	}
	return senderTxn, nil
}

// replay returns the already-committed transaction for a client request ID,
// making retried requests safe no-ops. The committed row must describe the
// same operation: a key reused for a different type, amount or currency is
// rejected rather than replayed.
func (s *TransferService) replay(ctx context.Context, tx *sqlx.Tx, accountID string, clientRequestID *string, txnType string, amount decimal.Decimal, cur string) (models.Transaction, bool, error) {
	if clientRequestID == nil || *clientRequestID == "" {
		return models.Transaction{}, false, nil
	}
	existing, err := s.transactions.GetByClientRequestID(ctx, tx, accountID, *clientRequestID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Transaction{}, false, nil
	}
	if err != nil {
		return models.Transaction{}, false, err
	}
	if existing.Type != txnType || !existing.Amount.Equal(amount) || existing.Currency != cur {
		return models.Transaction{}, false, ErrRequestReused
	}
	return existing, true, nil
}

// withConflictRetry reruns the full validate-then-commit cycle once when the
// commit lost a race (balance check constraint or duplicate idempotency
// insert). A conflict that survives the retry means the balance genuinely
// cannot cover the operation.
func (s *TransferService) withConflictRetry(ctx context.Context, run func() error) error {
	err := mapStoreError(run())
	if errors.Is(err, ErrConflict) {
		s.logger.WarnContext(ctx, "ledger commit conflict, retrying once")
		err = mapStoreError(run())
		if errors.Is(err, ErrConflict) {
			return ErrInsufficientBalance
		}
	}
	return err
}

func (s *TransferService) broadcast(account models.Account, cur string, balance decimal.Decimal, reason string) {
	s.hub.BroadcastBalance(account.UserID, websocket.BalanceUpdate{
		AccountID: account.ID,
		Currency:  cur,
		Balance:   balance.StringFixed(currency.Decimals(cur)),
		Reason:    reason,
	})
}

func validate(amount decimal.Decimal, cur string) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	if !currency.Valid(cur) {
		return ErrInvalidCurrency
	}
	return nil
}

func mapStoreError(err error) error {
	if err == nil {
		return nil
	}
	for _, sentinel := range []error{
		ErrInvalidAmount, ErrInvalidCurrency, ErrAccountNotFound, ErrRecipientNotFound,
		ErrSelfTransfer, ErrInsufficientBalance, ErrRequestReused, ErrConflict,
	} {
		if errors.Is(err, sentinel) {
			return err
		}
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23514", "23505":
			return ErrConflict
		}
	}
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}

func auditData(txn models.Transaction) string {
	data, _ := json.Marshal(map[string]string{
		"transaction_id": txn.ID,
		"type":           txn.Type,
		"amount":         txn.Amount.String(),
		"currency":       txn.Currency,
	})
	return string(data)
}
