// Package auth provides password hashing and signed session tokens.
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used when none is configured.
const DefaultCost = 12

// bcrypt silently truncates input beyond this many bytes.
const maxPasswordBytes = 72

var (
	// ErrPasswordTooLong is returned by Hash for inputs bcrypt would truncate.
	ErrPasswordTooLong = errors.New("auth: password must be 72 bytes or fewer")
	// ErrMismatch is returned by Verify when the password does not match.
	ErrMismatch = errors.New("auth: invalid password")
)

// Hasher hashes and verifies passwords with bcrypt.
type Hasher struct {
	cost int
}

// NewHasher returns a Hasher with the given cost, clamped to bcrypt's range.
// A zero cost selects DefaultCost.
func NewHasher(cost int) *Hasher {
	switch {
	case cost == 0:
		cost = DefaultCost
	case cost < bcrypt.MinCost:
		cost = bcrypt.MinCost
	case cost > bcrypt.MaxCost:
		cost = bcrypt.MaxCost
	}
	return &Hasher{cost: cost}
}

// Cost reports the configured work factor.
func (h *Hasher) Cost() int { return h.cost }

// Hash returns the bcrypt hash of plaintext, salt and cost included.
func (h *Hasher) Hash(plaintext string) (string, error) {
	if len(plaintext) > maxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}
	return string(hashed), nil
}

// Verify returns nil when plaintext matches hash, ErrMismatch when it does
// not, and a wrapped error when hash is malformed.
func (h *Hasher) Verify(hash, plaintext string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err == nil {
		return nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrMismatch
	}
	return fmt.Errorf("auth: comparing password hash: %w", err)
}
