// Package paymethod models saved payment methods as one tagged variant per
// kind, so each kind's required fields are checked statically instead of
// living in an untyped details blob.
package paymethod

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

type Kind string

const (
	KindCard   Kind = "card"
	KindBank   Kind = "bank"
	KindMobile Kind = "mobile"
	KindCrypto Kind = "crypto"
)

var (
	ErrUnknownKind    = errors.New("unknown payment method kind")
	ErrMissingDetails = errors.New("missing payment method details")

	ibanRegex  = regexp.MustCompile(`^[A-Z]{2}\d{2}[A-Z0-9]{1,30}$`)
	swiftRegex = regexp.MustCompile(`^[A-Z]{6}[A-Z0-9]{2}([A-Z0-9]{3})?$`)
)

// Details is implemented by each payment-method variant.
type Details interface {
	Kind() Kind
	Validate() error
	// Label is a short masked description safe to show back to the user.
	Label() string
}

type Card struct {
	Brand       string `json:"brand"`
	Last4       string `json:"last4"`
	ExpiryMonth string `json:"expiry_month"`
	ExpiryYear  string `json:"expiry_year"`
	Token       string `json:"token"`
}

func (c Card) Kind() Kind { return KindCard }

func (c Card) Validate() error {
	if len(c.Last4) != 4 {
		return fmt.Errorf("%w: card last4", ErrMissingDetails)
	}
	if c.ExpiryMonth == "" || c.ExpiryYear == "" {
		return fmt.Errorf("%w: card expiry", ErrMissingDetails)
	}
	if c.Token == "" {
		return fmt.Errorf("%w: card token", ErrMissingDetails)
	}
	return nil
}

func (c Card) Label() string {
	return "**** **** **** " + c.Last4
}

type Bank struct {
	BankName      string `json:"bank_name"`
	AccountName   string `json:"account_name"`
	AccountNumber string `json:"account_number"`
	IBAN          string `json:"iban,omitempty"`
	SwiftCode     string `json:"swift_code,omitempty"`
	RoutingNumber string `json:"routing_number,omitempty"`
}

func (b Bank) Kind() Kind { return KindBank }

func (b Bank) Validate() error {
	if b.BankName == "" || b.AccountName == "" {
		return fmt.Errorf("%w: bank name and account name", ErrMissingDetails)
	}
	if b.AccountNumber == "" && b.IBAN == "" {
		return fmt.Errorf("%w: account number or IBAN", ErrMissingDetails)
	}
	if b.IBAN != "" && !ValidIBAN(b.IBAN) {
		return errors.New("invalid IBAN")
	}
	if b.SwiftCode != "" && !ValidSWIFT(b.SwiftCode) {
		return errors.New("invalid SWIFT/BIC code")
	}
	return nil
}

func (b Bank) Label() string {
	number := b.AccountNumber
	if number == "" {
		number = b.IBAN
	}
	if len(number) > 4 {
		number = number[len(number)-4:]
	}
	return b.BankName + " ****" + number
}

type Mobile struct {
	Provider    string `json:"provider"`
	PhoneNumber string `json:"phone_number"`
	HolderName  string `json:"holder_name"`
}

func (m Mobile) Kind() Kind { return KindMobile }

func (m Mobile) Validate() error {
	if m.Provider == "" {
		return fmt.Errorf("%w: mobile provider", ErrMissingDetails)
	}
	if len(m.PhoneNumber) < 8 {
		return fmt.Errorf("%w: mobile phone number", ErrMissingDetails)
	}
	return nil
}

func (m Mobile) Label() string {
	number := m.PhoneNumber
	if len(number) > 8 {
		number = number[:4] + "****" + number[len(number)-4:]
	}
	return m.Provider + " " + number
}

type Crypto struct {
	Network string `json:"network"`
	Address string `json:"address"`
}

func (c Crypto) Kind() Kind { return KindCrypto }

func (c Crypto) Validate() error {
	if c.Network == "" {
		return fmt.Errorf("%w: crypto network", ErrMissingDetails)
	}
	if len(c.Address) < 16 {
		return fmt.Errorf("%w: crypto address", ErrMissingDetails)
	}
	return nil
}

func (c Crypto) Label() string {
	return c.Network + " " + c.Address[:6] + "…" + c.Address[len(c.Address)-4:]
}

// Decode parses the JSON details payload for the given kind and validates it.
func Decode(kind string, raw json.RawMessage) (Details, error) {
	var details Details
	switch Kind(kind) {
	case KindCard:
		var card Card
		if err := json.Unmarshal(raw, &card); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMissingDetails, err)
		}
		details = card
	case KindBank:
		var bank Bank
		if err := json.Unmarshal(raw, &bank); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMissingDetails, err)
		}
		details = bank
	case KindMobile:
		var mobile Mobile
		if err := json.Unmarshal(raw, &mobile); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMissingDetails, err)
		}
		details = mobile
	case KindCrypto:
		var crypto Crypto
		if err := json.Unmarshal(raw, &crypto); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMissingDetails, err)
		}
		details = crypto
	default:
		return nil, ErrUnknownKind
	}
	if err := details.Validate(); err != nil {
		return nil, err
	}
	return details, nil
}

// ValidIBAN checks the structural shape of an IBAN (not the checksum).
func ValidIBAN(iban string) bool {
	normalized := strings.ToUpper(strings.ReplaceAll(iban, " ", ""))
	return ibanRegex.MatchString(normalized)
}

// ValidSWIFT checks a SWIFT/BIC code.
func ValidSWIFT(swift string) bool {
	return swiftRegex.MatchString(strings.ToUpper(swift))
}
