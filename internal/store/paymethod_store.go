package store

import (
	"context"

	"remit/internal/models"
)

type PaymentMethodStore struct {
	db DB
}

func NewPaymentMethodStore(db DB) *PaymentMethodStore {
	return &PaymentMethodStore{db: db}
}

func (s *PaymentMethodStore) Insert(ctx context.Context, tx Execer, method models.PaymentMethod) error {
	query := `
		INSERT INTO payment_methods (id, user_id, kind, label, details, is_default)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := tx.ExecContext(ctx, query,
		method.ID, method.UserID, method.Kind, method.Label, method.Details, method.IsDefault)
	return err
}

func (s *PaymentMethodStore) ListByUser(ctx context.Context, userID string) ([]models.PaymentMethod, error) {
	var rows []models.PaymentMethod
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, kind, label, details, is_default, created_at
		FROM payment_methods
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ClearDefault drops the default flag from every method the user has, so a
// newly-added default is the only one.
func (s *PaymentMethodStore) ClearDefault(ctx context.Context, tx Execer, userID string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE payment_methods SET is_default = FALSE WHERE user_id = $1
	`, userID)
	return err
}
