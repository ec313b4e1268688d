package api

import (
	"errors"                        // Error comparison
	"net/http"                      // HTTP status codes
	"user_service/internal/service" // Service errors

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// writeServiceError maps service failures to status codes. Unknown errors
// are logged and answered with an empty 500.
func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrConflict):
		c.String(http.StatusConflict, "A user with specified email already exists, please login")
	case errors.Is(err, service.ErrMissingProfileImage):
		c.String(http.StatusBadRequest, "A JPEG or PNG profile image is required")
	case errors.Is(err, service.ErrNotFound):
		c.String(http.StatusBadRequest, "Cannot find user")
	case errors.Is(err, service.ErrBadRequest):
		c.String(http.StatusBadRequest, "Required fields missing")
	case errors.Is(err, service.ErrBadCredentials):
		c.String(http.StatusUnauthorized, "Entered password is incorrect")
	case errors.Is(err, service.ErrMismatch):
		c.String(http.StatusBadRequest, "Email / Contact details incorrect!")
	default:
		logrus.WithFields(logrus.Fields{
			"path":  c.FullPath(), // Route
			"error": err.Error(),  // Error message
		}).Error("Request failed") // Log internal failure
		c.Status(http.StatusInternalServerError) // No detail for the client
	}
}
