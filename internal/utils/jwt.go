package utils

import (
	"errors" // Error values
	"fmt"    // Error wrapping
	"time"   // Time for token expiration
	"user_service/internal/domain"

	"github.com/golang-jwt/jwt/v5" // JWT library
	"github.com/google/uuid"       // Unique token ids
)

// Token verification errors
var (
	ErrMissingToken = errors.New("token missing")                     // No token presented
	ErrInvalidToken = errors.New("invalid token signature or format") // Verification failed
)

// JWT Claims
type Claims struct {
	User                 domain.User `json:"user"` // Full user record at issue time
	jwt.RegisteredClaims                           // Standard JWT claims
}

// TokenIssuer signs and verifies stateless session tokens.
// Tokens cannot be revoked before the secret is rotated.
type TokenIssuer struct {
	secret []byte        // HMAC secret
	ttl    time.Duration // Zero means tokens never expire
}

// NewTokenIssuer creates an issuer; ttl of zero disables the exp claim
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl}
}

// Issue creates a JWT token embedding the given user
func (i *TokenIssuer) Issue(user domain.User) (string, error) {
	now := time.Now()
	// Set token claims
	claims := Claims{
		User: user, // Embedded user record
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       uuid.NewString(),        // Distinguishes tokens issued in the same second
			IssuedAt: jwt.NewNumericDate(now), // Issued at current time
		},
	}
	if i.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(i.ttl)) // Only set when expiry is configured
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims) // Create token with claims
	return token.SignedString(i.secret)                        // Sign the token with the secret
}

// Verify parses and validates a JWT token string
func (i *TokenIssuer) Verify(tokenStr string) (*Claims, error) {
	if tokenStr == "" {
		return nil, ErrMissingToken // Nothing to verify
	}
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		return i.secret, nil // Return the secret key for validation
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	// Check for parsing errors
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err) // Keep the jwt cause
	}
	// Validate token and extract claims
	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil // Return claims if valid
	}
	// Return error if token is invalid
	return nil, ErrInvalidToken
}
