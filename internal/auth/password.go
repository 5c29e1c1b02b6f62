// Package auth provides password hashing for the marketplace.
//
// The stores treat the credential as an opaque string and persist whatever
// they are handed; producing that string is this package's job. bcrypt is
// deliberately slow (the work factor makes brute-force expensive), generates
// a random salt per hash, and embeds salt and cost in its output — the hash
// is self-contained, no extra columns needed.
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// defaultCost is the bcrypt work factor: roughly 250ms per hash on current
// server hardware. Tune so hashing stays in the 200-300ms range.
const defaultCost = 12

// PasswordService provides bcrypt hashing and verification. A struct rather
// than free functions so the cost can be lowered in tests.
type PasswordService struct {
	cost int
}

// NewPasswordService creates a PasswordService with the default cost.
func NewPasswordService() *PasswordService {
	return &PasswordService{cost: defaultCost}
}

// NewPasswordServiceWithCost creates a PasswordService with a custom cost.
// Tests use bcrypt's minimum (4) to avoid ~250ms per operation; never ship
// that to production.
func NewPasswordServiceWithCost(cost int) *PasswordService {
	return &PasswordService{cost: cost}
}

// Hash hashes the plaintext with bcrypt. The output string embeds version,
// cost and salt; store it as-is.
//
// Rejects plaintext over 72 bytes: bcrypt silently truncates beyond that,
// and silent truncation of a password is worse than an error.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) > 72 {
		return "", fmt.Errorf("auth: password must be 72 bytes or fewer")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}
	return string(hashed), nil
}

// Verify checks a plaintext password against a stored bcrypt hash. Returns
// nil on match. The comparison is constant-time inside bcrypt.
func (p *PasswordService) Verify(hash, plaintext string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return fmt.Errorf("auth: invalid password")
		}
		return fmt.Errorf("auth: comparing password hash: %w", err)
	}
	return nil
}
