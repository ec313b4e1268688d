package middleware

import (
	"errors"                      // Error comparison
	"net/http"                    // HTTP status codes
	"strings"                     // String manipulation
	"user_service/internal/utils" // JWT utility functions

	"github.com/gin-gonic/gin" // Gin web framework
)

// Context keys set by JWTAuthMiddleware
const (
	ContextUserID = "userID" // Id of the user embedded in the token
	ContextClaims = "claims" // Full token claims
)

// TokenVerifier verifies a raw token string
type TokenVerifier interface {
	Verify(token string) (*utils.Claims, error)
}

// JWTAuthMiddleware validates JWT tokens and extracts user information
func JWTAuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization") // Get Authorization header
		tokenStr := ""                             // Token presented by the client
		// Accept only the Bearer scheme
		if after, ok := strings.CutPrefix(authHeader, "Bearer "); ok {
			tokenStr = strings.TrimSpace(after) // Extract the token string
		}
		claims, err := verifier.Verify(tokenStr) // Parse the JWT token
		if errors.Is(err, utils.ErrMissingToken) {
			// No token at all, abort with unauthorized status
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "A token is required to access record"})
			return
		}
		if err != nil {
			// Token present but invalid, abort with forbidden status
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Incorrect token"})
			return
		}
		c.Set(ContextUserID, claims.User.ID) // Store userID in context
		c.Set(ContextClaims, claims)         // Store claims in context
		c.Next()                             // Proceed to the next handler
	}
}
