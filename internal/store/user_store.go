package store

import (
	"context"
	"database/sql"

	"remit/internal/models"
)

type UserStore struct {
	db DB
}

func NewUserStore(db DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) Create(ctx context.Context, tx Execer, user models.User) error {
	query := `
		INSERT INTO users (id, full_name, email, phone_number, country, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := tx.ExecContext(ctx, query,
		user.ID, user.FullName, user.Email, user.PhoneNumber, user.Country, user.PasswordHash)
	return err
}

// UpdateProfile changes the mutable profile fields. Email and country are
// fixed at registration; country drives the fee corridor.
func (s *UserStore) UpdateProfile(ctx context.Context, tx Execer, userID, fullName, phoneNumber string) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE users SET full_name = $1, phone_number = $2 WHERE id = $3
	`, fullName, phoneNumber, userID)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var row models.User
	err := s.db.GetContext(ctx, &row, `
		SELECT id, full_name, email, phone_number, country, password_hash, created_at
		FROM users
		WHERE email = $1
	`, email)
	if err != nil {
		return models.User{}, err
	}
	return row, nil
}

func (s *UserStore) GetByID(ctx context.Context, userID string) (models.User, error) {
	var row models.User
	err := s.db.GetContext(ctx, &row, `
		SELECT id, full_name, email, phone_number, country, password_hash, created_at
		FROM users
		WHERE id = $1
	`, userID)
	if err != nil {
		return models.User{}, err
	}
	return row, nil
}
