package middleware

import (
	"time" // Request latency

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/google/uuid"     // Request ids
	"github.com/sirupsen/logrus" // Structured logging
)

// RequestIDHeader carries the request id in both directions
const RequestIDHeader = "X-Request-ID"

// RequestLogger tags each request with an id and logs it once completed
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()                       // Start time
		requestID := c.GetHeader(RequestIDHeader) // Reuse the caller's id if given
		if requestID == "" {
			requestID = uuid.NewString() // Otherwise generate one
		}
		c.Set("requestID", requestID)        // Expose to handlers
		c.Header(RequestIDHeader, requestID) // Echo back to the client
		c.Next()                             // Process request
		entry := logrus.WithFields(logrus.Fields{
			"request_id": requestID,                  // Request id
			"method":     c.Request.Method,           // HTTP method
			"path":       c.Request.URL.Path,         // Request path
			"status":     c.Writer.Status(),          // Response status
			"latency":    time.Since(start).String(), // Handling time
			"client_ip":  c.ClientIP(),               // Client address
		})
		if c.Writer.Status() >= 500 {
			entry.Error("Request failed") // Server side failure
			return
		}
		entry.Info("Request handled") // Normal completion
	}
}
