// Package ident generates ledger identifiers. Both forms carry 96 bits of
// entropy from crypto/rand, so collisions are negligible even under
// concurrent issuance; the database primary keys are the final backstop.
package ident

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

const randomBytes = 12

// NewTransactionID returns a fresh transaction identifier, e.g.
// "TXN6F1A09C2D4E8B7A3C5D9F0E1".
func NewTransactionID() string {
	return "TXN" + randomHex()
}

// NewReference returns an identifier linking the two legs of a transfer.
// References and transaction IDs live in separate namespaces.
func NewReference() string {
	return "REF" + randomHex()
}

func randomHex() string {
	buf := make([]byte, randomBytes)
	if _, err := rand.Read(buf); err != nil {
		panic("ident: entropy source unavailable: " + err.Error())
	}
	return strings.ToUpper(hex.EncodeToString(buf))
}
