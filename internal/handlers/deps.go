package handlers

import (
	"context"

	"remit/internal/models"
	"remit/internal/services"
	"remit/internal/store"
)

type UserStore interface {
	Create(ctx context.Context, tx store.Execer, user models.User) error
	UpdateProfile(ctx context.Context, tx store.Execer, userID, fullName, phoneNumber string) error
	GetByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, userID string) (models.User, error)
}

type AccountStore interface {
	Create(ctx context.Context, tx store.Execer, id, userID, country string) error
	GetByUserID(ctx context.Context, userID string) (models.Account, error)
	Balances(ctx context.Context, accountID string) ([]models.Balance, error)
}

type TransactionStore interface {
	GetByID(ctx context.Context, accountID, transactionID string) (models.Transaction, error)
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]models.Transaction, int, error)
	CountByType(ctx context.Context, accountID string) ([]store.TypeCount, error)
	SumDeltas(ctx context.Context, accountID string) ([]store.LedgerSum, error)
}

type PaymentMethodStore interface {
	Insert(ctx context.Context, tx store.Execer, method models.PaymentMethod) error
	ListByUser(ctx context.Context, userID string) ([]models.PaymentMethod, error)
	ClearDefault(ctx context.Context, tx store.Execer, userID string) error
}

type AuditStore interface {
	Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
}

type TransferEngine interface {
	Deposit(ctx context.Context, req services.DepositRequest) (models.Transaction, error)
	Withdraw(ctx context.Context, req services.WithdrawRequest) (models.Transaction, error)
	Send(ctx context.Context, req services.SendRequest) (models.Transaction, error)
}
