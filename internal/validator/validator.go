package validator

import (
	"errors"
	"regexp"

	"remit/internal/currency"
)

var (
	ErrInvalidEmail    = errors.New("invalid email")
	ErrInvalidFullName = errors.New("invalid full name")
	ErrInvalidPassword = errors.New("invalid password")
	ErrInvalidPhone    = errors.New("invalid phone number")
	ErrInvalidCountry  = errors.New("unsupported country")
)

var (
	emailRegex    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	fullNameRegex = regexp.MustCompile(`^[\p{L} .'-]{2,80}$`)
	phoneRegex    = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
)

func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

func ValidateFullName(name string) error {
	if !fullNameRegex.MatchString(name) {
		return ErrInvalidFullName
	}
	return nil
}

func ValidatePassword(password string) error {
	if len(password) < 8 {
		return ErrInvalidPassword
	}
	return nil
}

func ValidatePhone(phone string) error {
	if phone == "" {
		return nil
	}
	if !phoneRegex.MatchString(phone) {
		return ErrInvalidPhone
	}
	return nil
}

func ValidateCountry(code string) error {
	if _, ok := currency.Countries[code]; !ok {
		return ErrInvalidCountry
	}
	return nil
}
