package utils

import (
	"golang.org/x/crypto/bcrypt" // Password hashing
)

// PasswordHasher hashes and verifies passwords with bcrypt
type PasswordHasher struct {
	cost int // Bcrypt cost factor
}

// NewPasswordHasher returns a hasher, clamping the cost into bcrypt's valid range
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost // Fall back to the library default
	}
	return &PasswordHasher{cost: cost}
}

// Hash generates a salted hash of the password
func (h *PasswordHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err // Return hashing error
	}
	return string(hash), nil
}

// Compare reports whether the password matches the hash
func (h *PasswordHasher) Compare(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
