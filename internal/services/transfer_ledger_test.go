package services

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"

	"remit/internal/fees"
	"remit/internal/models"
	"remit/internal/store"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// memLedger is an in-memory ledger that honors the same atomicity contract as
// the real database: WithTx snapshots the state and restores it when the
// closure fails, and transactions are serialized by a mutex.
type memLedger struct {
	mu       sync.Mutex
	accounts map[string]models.Account
	emails   map[string]string
	balances map[string]decimal.Decimal
	txns     []models.Transaction
	audits   int

	failInsertAt int // 1-based insert call that fails, 0 disables
	insertCalls  int
}

func newMemLedger() *memLedger {
	return &memLedger{
		accounts: make(map[string]models.Account),
		emails:   make(map[string]string),
		balances: make(map[string]decimal.Decimal),
	}
}

func (m *memLedger) addAccount(id, userID, email, country, currency, balance string) {
	m.accounts[id] = models.Account{ID: id, UserID: userID, Country: country}
	m.emails[email] = id
	if balance != "" {
		m.balances[id+"|"+currency] = decimal.RequireFromString(balance)
	}
}

func (m *memLedger) WithTx(_ context.Context, fn func(*sqlx.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	accounts := make(map[string]models.Account, len(m.accounts))
	for k, v := range m.accounts {
		accounts[k] = v
	}
	balances := make(map[string]decimal.Decimal, len(m.balances))
	for k, v := range m.balances {
		balances[k] = v
	}
	txns := append([]models.Transaction(nil), m.txns...)
	audits := m.audits

	if err := fn(nil); err != nil {
		m.accounts, m.balances, m.txns, m.audits = accounts, balances, txns, audits
		return err
	}
	return nil
}

func (m *memLedger) GetByIDTx(_ context.Context, _ store.Getter, accountID string) (models.Account, error) {
	account, ok := m.accounts[accountID]
	if !ok {
		return models.Account{}, sql.ErrNoRows
	}
	return account, nil
}

func (m *memLedger) GetByEmail(_ context.Context, _ store.Getter, email string) (models.Account, error) {
	id, ok := m.emails[email]
	if !ok {
		return models.Account{}, sql.ErrNoRows
	}
	return m.accounts[id], nil
}

func (m *memLedger) GetBalanceForUpdate(_ context.Context, _ store.Getter, accountID, currency string) (decimal.Decimal, error) {
	return m.balances[accountID+"|"+currency], nil
}

func (m *memLedger) EnsureBalanceRow(_ context.Context, _ store.Execer, accountID, currency string) error {
	key := accountID + "|" + currency
	if _, ok := m.balances[key]; !ok {
		m.balances[key] = decimal.Zero
	}
	return nil
}

func (m *memLedger) AdjustBalance(_ context.Context, _ store.Execer, accountID, currency string, delta decimal.Decimal) error {
	key := accountID + "|" + currency
	next := m.balances[key].Add(delta)
	if next.IsNegative() {
		return errors.New("balance check violated")
	}
	m.balances[key] = next
	return nil
}

func (m *memLedger) AddTotals(_ context.Context, _ store.Execer, accountID string, sent, received decimal.Decimal) error {
	account := m.accounts[accountID]
	account.TotalSent = account.TotalSent.Add(sent)
	account.TotalReceived = account.TotalReceived.Add(received)
	m.accounts[accountID] = account
	return nil
}

func (m *memLedger) Insert(_ context.Context, _ store.Execer, txn models.Transaction) error {
	m.insertCalls++
	if m.failInsertAt > 0 && m.insertCalls == m.failInsertAt {
		return errors.New("injected insert failure")
	}
	m.txns = append(m.txns, txn)
	return nil
}

func (m *memLedger) GetByClientRequestID(_ context.Context, _ store.Getter, accountID, clientRequestID string) (models.Transaction, error) {
	for _, txn := range m.txns {
		if txn.AccountID == accountID && txn.ClientRequestID != nil && *txn.ClientRequestID == clientRequestID {
			return txn, nil
		}
	}
	return models.Transaction{}, sql.ErrNoRows
}

func (m *memLedger) Log(_ context.Context, _ store.Execer, _, _, _, _, _ string) error {
	m.audits++
	return nil
}

func (m *memLedger) balance(accountID, currency string) decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[accountID+"|"+currency]
}

func newLedgerService(ledger *memLedger) (*TransferService, *stubHub) {
	hub := &stubHub{}
	svc := NewTransferService(ledger, ledger, ledger, ledger, hub, &stubRecorder{}, testLogger())
	return svc, hub
}

func TestSendMovesMoneyAtomically(t *testing.T) {
	ledger := newMemLedger()
	ledger.addAccount("acc-a", "user-a", "alice@example.com", "US", "USD", "500")
	ledger.addAccount("acc-b", "user-b", "bob@example.com", "US", "", "")
	svc, hub := newLedgerService(ledger)

	txn, err := svc.Send(context.Background(), SendRequest{
		SenderAccountID: "acc-a", RecipientEmail: "bob@example.com",
		Amount: dec("100"), Currency: "USD", Method: fees.MethodWallet,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// local corridor fee: 100*0.005 + 0.5 = 1
	if !ledger.balance("acc-a", "USD").Equal(dec("399")) {
		t.Fatalf("sender balance = %s, want 399", ledger.balance("acc-a", "USD"))
	}
	if !ledger.balance("acc-b", "USD").Equal(dec("100")) {
		t.Fatalf("recipient balance = %s, want 100", ledger.balance("acc-b", "USD"))
	}
	if txn.Reference == nil {
		t.Fatal("sender leg must carry a reference")
	}
	if len(ledger.txns) != 2 {
		t.Fatalf("ledger entries = %d, want 2", len(ledger.txns))
	}
	recv := ledger.txns[1]
	if recv.Type != models.TxnReceive || recv.Reference == nil || *recv.Reference != *txn.Reference {
		t.Fatalf("receive leg must share the send reference, got %+v", recv)
	}
	if !recv.Fee.IsZero() {
		t.Fatal("recipient leg must not carry the fee")
	}
	if hub.count() != 2 {
		t.Fatalf("broadcasts = %d, want one per party", hub.count())
	}
	if ledger.accounts["acc-a"].TotalSent.Cmp(dec("100")) != 0 {
		t.Fatalf("sender total_sent = %s, want 100", ledger.accounts["acc-a"].TotalSent)
	}
	if ledger.accounts["acc-b"].TotalReceived.Cmp(dec("100")) != 0 {
		t.Fatalf("recipient total_received = %s, want 100", ledger.accounts["acc-b"].TotalReceived)
	}
}

func TestSendInternationalCorridorFee(t *testing.T) {
	ledger := newMemLedger()
	ledger.addAccount("acc-a", "user-a", "alice@example.com", "US", "USD", "500")
	ledger.addAccount("acc-b", "user-b", "bob@example.com", "KE", "", "")
	svc, _ := newLedgerService(ledger)

	txn, err := svc.Send(context.Background(), SendRequest{
		SenderAccountID: "acc-a", RecipientEmail: "bob@example.com",
		Amount: dec("200"), Currency: "USD",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// international corridor: 200*0.02 + 3 = 7
	if !txn.Fee.Equal(dec("7")) {
		t.Fatalf("fee = %s, want 7", txn.Fee)
	}
	if !txn.Total.Equal(dec("207")) {
		t.Fatalf("total = %s, want 207", txn.Total)
	}
}

func TestSendExpressOverridesCorridor(t *testing.T) {
	ledger := newMemLedger()
	ledger.addAccount("acc-a", "user-a", "alice@example.com", "US", "USD", "500")
	ledger.addAccount("acc-b", "user-b", "bob@example.com", "US", "", "")
	svc, _ := newLedgerService(ledger)

	txn, err := svc.Send(context.Background(), SendRequest{
		SenderAccountID: "acc-a", RecipientEmail: "bob@example.com",
		Amount: dec("100"), Currency: "USD", Express: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// express: 100*0.03 + 5 = 8
	if !txn.Fee.Equal(dec("8")) {
		t.Fatalf("fee = %s, want 8", txn.Fee)
	}
}

func TestSendRollsBackWhenSecondLegFails(t *testing.T) {
	ledger := newMemLedger()
	ledger.addAccount("acc-a", "user-a", "alice@example.com", "US", "USD", "500")
	ledger.addAccount("acc-b", "user-b", "bob@example.com", "US", "", "")
	ledger.failInsertAt = 2
	svc, hub := newLedgerService(ledger)

	_, err := svc.Send(context.Background(), SendRequest{
		SenderAccountID: "acc-a", RecipientEmail: "bob@example.com",
		Amount: dec("100"), Currency: "USD",
	})
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("got %v, want ErrStoreUnavailable", err)
	}
	if !ledger.balance("acc-a", "USD").Equal(dec("500")) {
		t.Fatalf("sender balance = %s, want untouched 500", ledger.balance("acc-a", "USD"))
	}
	if !ledger.balance("acc-b", "USD").IsZero() {
		t.Fatalf("recipient balance = %s, want untouched 0", ledger.balance("acc-b", "USD"))
	}
	if len(ledger.txns) != 0 {
		t.Fatalf("ledger entries = %d, want none after rollback", len(ledger.txns))
	}
	if hub.count() != 0 {
		t.Fatal("no balance update should escape a rolled-back transfer")
	}
}

func TestConcurrentSendsCannotOverdraw(t *testing.T) {
	ledger := newMemLedger()
	ledger.addAccount("acc-a", "user-a", "alice@example.com", "US", "USD", "100")
	ledger.addAccount("acc-b", "user-b", "bob@example.com", "US", "", "")
	svc, _ := newLedgerService(ledger)

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Send(context.Background(), SendRequest{
				SenderAccountID: "acc-a", RecipientEmail: "bob@example.com",
				Amount: dec("60"), Currency: "USD",
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var failures int
	for err := range errs {
		if err != nil {
			if !errors.Is(err, ErrInsufficientBalance) {
				t.Fatalf("unexpected error: %v", err)
			}
			failures++
		}
	}
	if failures != 1 {
		t.Fatalf("failures = %d, want exactly one of two sends to fail", failures)
	}
	// one send of 60 at local fee 0.8 leaves 39.2
	if !ledger.balance("acc-a", "USD").Equal(dec("39.2")) {
		t.Fatalf("final sender balance = %s, want 39.2", ledger.balance("acc-a", "USD"))
	}
	if !ledger.balance("acc-b", "USD").Equal(dec("60")) {
		t.Fatalf("final recipient balance = %s, want 60", ledger.balance("acc-b", "USD"))
	}
}

func TestValueConservationAcrossMixedOperations(t *testing.T) {
	ledger := newMemLedger()
	ledger.addAccount("acc-a", "user-a", "alice@example.com", "US", "USD", "1000")
	ledger.addAccount("acc-b", "user-b", "bob@example.com", "US", "USD", "200")
	svc, _ := newLedgerService(ledger)
	ctx := context.Background()

	if _, err := svc.Deposit(ctx, DepositRequest{AccountID: "acc-b", Amount: dec("50"), Currency: "USD"}); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if _, err := svc.Send(ctx, SendRequest{
		SenderAccountID: "acc-a", RecipientEmail: "bob@example.com",
		Amount: dec("300"), Currency: "USD",
	}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := svc.Withdraw(ctx, WithdrawRequest{AccountID: "acc-b", Amount: dec("100"), Currency: "USD"}); err != nil {
		t.Fatalf("withdraw: %v", err)
	}

	// deposits minus withdrawals minus retained fees must equal the held total
	var feesRetained decimal.Decimal
	for _, txn := range ledger.txns {
		feesRetained = feesRetained.Add(txn.Fee)
	}
	held := ledger.balance("acc-a", "USD").Add(ledger.balance("acc-b", "USD"))
	expected := dec("1000").Add(dec("200")).Add(dec("50")).Sub(dec("100")).Sub(feesRetained)
	if !held.Equal(expected) {
		t.Fatalf("held = %s, want %s (fees retained %s)", held, expected, feesRetained)
	}
}

func TestSendIdempotentReplayReturnsCommittedLeg(t *testing.T) {
	ledger := newMemLedger()
	ledger.addAccount("acc-a", "user-a", "alice@example.com", "US", "USD", "500")
	ledger.addAccount("acc-b", "user-b", "bob@example.com", "US", "", "")
	svc, _ := newLedgerService(ledger)
	ctx := context.Background()
	key := "send-once"

	first, err := svc.Send(ctx, SendRequest{
		SenderAccountID: "acc-a", RecipientEmail: "bob@example.com",
		Amount: dec("100"), Currency: "USD", ClientRequestID: &key,
	})
	if err != nil {
		t.Fatalf("first send: %v", err)
	}
	second, err := svc.Send(ctx, SendRequest{
		SenderAccountID: "acc-a", RecipientEmail: "bob@example.com",
		Amount: dec("100"), Currency: "USD", ClientRequestID: &key,
	})
	if err != nil {
		t.Fatalf("replayed send: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("replay returned %s, want committed %s", second.ID, first.ID)
	}
	if len(ledger.txns) != 2 {
		t.Fatalf("ledger entries = %d, want the original two only", len(ledger.txns))
	}
	if !ledger.balance("acc-a", "USD").Equal(dec("399")) {
		t.Fatalf("sender balance = %s, want money moved exactly once", ledger.balance("acc-a", "USD"))
	}
}
