package service

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	// passwordCost matches bcrypt.DefaultCost.
	passwordCost = 10
	// bcrypt ignores input beyond 72 bytes, so longer passwords are refused.
	maxPasswordBytes = 72
)

// PasswordHasher salts, hashes and verifies passwords with bcrypt.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher returns a hasher using cost, or passwordCost when cost is
// outside bcrypt's accepted range.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = passwordCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash returns a salted bcrypt hash; hashing the same input twice yields
// different outputs.
func (h *PasswordHasher) Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether plaintext matches hash. Any error, including a
// malformed hash, yields false.
func (h *PasswordHasher) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
