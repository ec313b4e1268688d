package middleware

import (
	"net/http" // HTTP status codes
	"strconv"  // Id parsing

	"github.com/gin-gonic/gin" // Gin web framework
)

// OwnerOnlyMiddleware requires the token's user id to equal the :id path
// parameter. Must run after JWTAuthMiddleware. When enforce is false every
// authenticated caller passes, matching the unrestricted default.
func OwnerOnlyMiddleware(enforce bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !enforce {
			c.Next() // Ownership not enforced
			return
		}
		userID, exists := c.Get(ContextUserID) // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, abort with unauthorized status
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "A token is required to access record"})
			return
		}
		id, err := strconv.ParseUint(c.Param("id"), 10, 64) // Parse target id
		// Bad ids are left for the handler to reject
		if err != nil {
			c.Next()
			return
		}
		// Check if the token belongs to the target record
		if uid, ok := userID.(uint); !ok || uint64(uid) != id {
			// If not the owner, abort with forbidden status
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Token does not belong to this record"})
			return
		}
		// If owner, proceed to the next handler
		c.Next()
	}
}
