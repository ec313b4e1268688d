package api

import (
	"errors"                        // Error comparison
	"net/http"                      // HTTP status codes
	"user_service/internal/service" // Account service
	"user_service/internal/upload"  // Profile image storage

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// RegisterRequest carries the non-file fields of the registration form
type RegisterRequest struct {
	Name     string `form:"name" json:"name"`         // Login name
	Email    string `form:"email" json:"email"`       // Unique email
	Contact  string `form:"contact" json:"contact"`   // Contact number
	Password string `form:"password" json:"password"` // Plain password, hashed by the service
}

// LoginRequest represents a login request
type LoginRequest struct {
	Name     string `form:"name" json:"name"`         // Login name
	Password string `form:"password" json:"password"` // Plain password
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	AccessToken string `json:"accessToken"`          // JWT token
	ImagePath   string `json:"image_path,omitempty"` // Stored profile image path, register only
}

// formSlack allows for the text fields and multipart framing around the image
const formSlack = 64 << 10

// RegisterHandler creates a user from a multipart form with a "profile" image
func RegisterHandler(svc *service.AccountService, files *upload.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Stop reading oversized bodies instead of spooling them to disk
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, files.MaxSize()+formSlack)
		var req RegisterRequest // Bind form fields to struct
		if err := c.ShouldBind(&req); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				c.String(http.StatusBadRequest, "Profile image must be 5MB or smaller")
				return
			}
			// If binding fails, return bad request
			c.String(http.StatusBadRequest, "Invalid request")
			return
		}
		// Reject a known email before writing the upload
		if svc.EmailTaken(req.Email) {
			c.String(http.StatusConflict, "A user with specified email already exists, please login")
			return
		}
		input := service.RegisterInput{
			Name:     req.Name,     // Login name
			Email:    req.Email,    // Email
			Contact:  req.Contact,  // Contact
			Password: req.Password, // Password
		}
		// Presence checks run before anything touches the upload dir
		if err := svc.Validate(input); err != nil {
			writeServiceError(c, err)
			return
		}
		fh, _ := c.FormFile("profile") // Missing file is handled by Save
		stored, err := files.Save(fh)  // Validate the image into a temp file
		if err != nil {
			switch {
			case errors.Is(err, upload.ErrNoFile):
				c.String(http.StatusBadRequest, "A JPEG or PNG profile image is required")
			case errors.Is(err, upload.ErrTooLarge):
				c.String(http.StatusBadRequest, "Profile image must be 5MB or smaller")
			default:
				logrus.WithError(err).Error("Profile upload failed") // Log the cause, hide it from the client
				c.Status(http.StatusInternalServerError)
			}
			return
		}
		input.ProfilePath = stored.Path // Final image path
		res, err := svc.Register(c.Request.Context(), input)
		if err != nil {
			// Drop the temp file, an existing image under the same name stays
			if dErr := files.Discard(stored); dErr != nil {
				logrus.WithError(dErr).Warn("Failed to discard upload")
			}
			writeServiceError(c, err)
			return
		}
		// Move the image into place only once the user exists
		if err := files.Commit(stored); err != nil {
			logrus.WithError(err).WithField("path", stored.Path).Error("Profile image commit failed")
			c.Status(http.StatusInternalServerError)
			return
		}
		// Return the token and image path
		c.JSON(http.StatusCreated, AuthResponse{AccessToken: res.Token, ImagePath: res.ImagePath})
	}
}

// LoginHandler authenticates a user and returns a JWT token
func LoginHandler(svc *service.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind request to struct
		if err := c.ShouldBind(&req); err != nil {
			// If binding fails, return bad request
			c.String(http.StatusBadRequest, "Name and Password required for login")
			return
		}
		res, err := svc.Login(c.Request.Context(), req.Name, req.Password)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		// Return the token in the response
		c.JSON(http.StatusCreated, AuthResponse{AccessToken: res.Token})
	}
}
