package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"remit/internal/auth"
	"remit/internal/config"
	"remit/internal/metrics"
	"remit/internal/models"
	"remit/internal/services"
	"remit/internal/store"
	"remit/internal/websocket"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

func dec(raw string) decimal.Decimal {
	return decimal.RequireFromString(raw)
}

type fakeTxRunner struct {
	withTxFn func(ctx context.Context, fn func(*sqlx.Tx) error) error
}

func (f fakeTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	if f.withTxFn != nil {
		return f.withTxFn(ctx, fn)
	}
	return fn(nil)
}

type stubUserStore struct {
	createFn        func(ctx context.Context, tx store.Execer, user models.User) error
	updateProfileFn func(ctx context.Context, tx store.Execer, userID, fullName, phoneNumber string) error
	getByEmailFn    func(ctx context.Context, email string) (models.User, error)
	getByIDFn       func(ctx context.Context, userID string) (models.User, error)
}

func (s stubUserStore) Create(ctx context.Context, tx store.Execer, user models.User) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, user)
}

func (s stubUserStore) UpdateProfile(ctx context.Context, tx store.Execer, userID, fullName, phoneNumber string) error {
	if s.updateProfileFn == nil {
		return nil
	}
	return s.updateProfileFn(ctx, tx, userID, fullName, phoneNumber)
}

func (s stubUserStore) GetByEmail(ctx context.Context, email string) (models.User, error) {
	if s.getByEmailFn == nil {
		return models.User{}, nil
	}
	return s.getByEmailFn(ctx, email)
}

func (s stubUserStore) GetByID(ctx context.Context, userID string) (models.User, error) {
	if s.getByIDFn == nil {
		return models.User{}, nil
	}
	return s.getByIDFn(ctx, userID)
}

type stubAccountStore struct {
	createFn      func(ctx context.Context, tx store.Execer, id, userID, country string) error
	getByUserIDFn func(ctx context.Context, userID string) (models.Account, error)
	balancesFn    func(ctx context.Context, accountID string) ([]models.Balance, error)
}

func (s stubAccountStore) Create(ctx context.Context, tx store.Execer, id, userID, country string) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, id, userID, country)
}

func (s stubAccountStore) GetByUserID(ctx context.Context, userID string) (models.Account, error) {
	if s.getByUserIDFn == nil {
		return models.Account{ID: "acc-1", UserID: userID, Country: "US"}, nil
	}
	return s.getByUserIDFn(ctx, userID)
}

func (s stubAccountStore) Balances(ctx context.Context, accountID string) ([]models.Balance, error) {
	if s.balancesFn == nil {
		return nil, nil
	}
	return s.balancesFn(ctx, accountID)
}

type stubTransactionStore struct {
	getByIDFn       func(ctx context.Context, accountID, transactionID string) (models.Transaction, error)
	listByAccountFn func(ctx context.Context, accountID string, limit, offset int) ([]models.Transaction, int, error)
	countByTypeFn   func(ctx context.Context, accountID string) ([]store.TypeCount, error)
	sumDeltasFn     func(ctx context.Context, accountID string) ([]store.LedgerSum, error)
}

func (s stubTransactionStore) GetByID(ctx context.Context, accountID, transactionID string) (models.Transaction, error) {
	if s.getByIDFn == nil {
		return models.Transaction{}, nil
	}
	return s.getByIDFn(ctx, accountID, transactionID)
}

func (s stubTransactionStore) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]models.Transaction, int, error) {
	if s.listByAccountFn == nil {
		return nil, 0, nil
	}
	return s.listByAccountFn(ctx, accountID, limit, offset)
}

func (s stubTransactionStore) CountByType(ctx context.Context, accountID string) ([]store.TypeCount, error) {
	if s.countByTypeFn == nil {
		return nil, nil
	}
	return s.countByTypeFn(ctx, accountID)
}

func (s stubTransactionStore) SumDeltas(ctx context.Context, accountID string) ([]store.LedgerSum, error) {
	if s.sumDeltasFn == nil {
		return nil, nil
	}
	return s.sumDeltasFn(ctx, accountID)
}

type stubMethodStore struct {
	insertFn       func(ctx context.Context, tx store.Execer, method models.PaymentMethod) error
	listByUserFn   func(ctx context.Context, userID string) ([]models.PaymentMethod, error)
	clearDefaultFn func(ctx context.Context, tx store.Execer, userID string) error
}

func (s stubMethodStore) Insert(ctx context.Context, tx store.Execer, method models.PaymentMethod) error {
	if s.insertFn == nil {
		return nil
	}
	return s.insertFn(ctx, tx, method)
}

func (s stubMethodStore) ListByUser(ctx context.Context, userID string) ([]models.PaymentMethod, error) {
	if s.listByUserFn == nil {
		return nil, nil
	}
	return s.listByUserFn(ctx, userID)
}

func (s stubMethodStore) ClearDefault(ctx context.Context, tx store.Execer, userID string) error {
	if s.clearDefaultFn == nil {
		return nil
	}
	return s.clearDefaultFn(ctx, tx, userID)
}

type stubAuditStore struct {
	logFn func(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
}

func (s stubAuditStore) Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error {
	if s.logFn == nil {
		return nil
	}
	return s.logFn(ctx, tx, actorID, action, entityType, entityID, data)
}

type stubEngine struct {
	depositFn  func(ctx context.Context, req services.DepositRequest) (models.Transaction, error)
	withdrawFn func(ctx context.Context, req services.WithdrawRequest) (models.Transaction, error)
	sendFn     func(ctx context.Context, req services.SendRequest) (models.Transaction, error)
}

func (s stubEngine) Deposit(ctx context.Context, req services.DepositRequest) (models.Transaction, error) {
	if s.depositFn == nil {
		return models.Transaction{}, nil
	}
	return s.depositFn(ctx, req)
}

func (s stubEngine) Withdraw(ctx context.Context, req services.WithdrawRequest) (models.Transaction, error) {
	if s.withdrawFn == nil {
		return models.Transaction{}, nil
	}
	return s.withdrawFn(ctx, req)
}

func (s stubEngine) Send(ctx context.Context, req services.SendRequest) (models.Transaction, error) {
	if s.sendFn == nil {
		return models.Transaction{}, nil
	}
	return s.sendFn(ctx, req)
}

type handlerStubs struct {
	txRunner     fakeTxRunner
	users        stubUserStore
	accounts     stubAccountStore
	transactions stubTransactionStore
	methods      stubMethodStore
	audit        stubAuditStore
	engine       stubEngine
}

func newTestHandler(stubs handlerStubs) *Handler {
	cfg := config.Config{
		AppEnv:         "test",
		Port:           "0",
		JWTSecret:      "secret",
		TokenTTL:       time.Minute,
		AllowedOrigins: "*",
		WelcomeBalance: "0",
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(cfg, logger, stubs.txRunner, stubs.users, stubs.accounts, stubs.transactions,
		stubs.methods, stubs.audit, stubs.engine, websocket.NewHub(), metrics.New().Handler())
}

func authedRequest(t *testing.T, method, target string, body io.Reader, userID string) *http.Request {
	t.Helper()
	token, err := auth.GenerateToken("secret", userID, time.Minute)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}
