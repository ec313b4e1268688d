package api

import (
	"net/http"                      // HTTP status codes
	"strconv"                       // Id parsing
	"user_service/internal/service" // Account service

	"github.com/gin-gonic/gin"         // Gin web framework
	"github.com/gin-gonic/gin/binding" // Request binding
)

// InfoRequest selects a user by name
type InfoRequest struct {
	Name string `form:"name" json:"name"` // Login name
}

// UpdateProfileRequest represents a profile update
type UpdateProfileRequest struct {
	Name    string `form:"name" json:"name"`       // New name
	Email   string `form:"email" json:"email"`     // New email
	Contact string `form:"contact" json:"contact"` // New contact
}

// UpdatePasswordRequest represents a password change
type UpdatePasswordRequest struct {
	Email    string `form:"email" json:"email"`       // Email on file
	Contact  string `form:"contact" json:"contact"`   // Contact on file
	Password string `form:"password" json:"password"` // New password
}

// ListUsersHandler returns every stored record
func ListUsersHandler(svc *service.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := svc.ListAll(c.Request.Context()) // Fetch all users
		if err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, users) // Return full records
	}
}

// UserInfoHandler returns the first record with the requested name
func UserInfoHandler(svc *service.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req InfoRequest // Name from the body
		// GET binding ignores bodies, so JSON is decoded explicitly
		if c.ContentType() == binding.MIMEJSON && c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.String(http.StatusBadRequest, "Invalid request")
				return
			}
		}
		if req.Name == "" {
			req.Name = c.Query("name") // Fall back to the query string
		}
		user, err := svc.GetByName(c.Request.Context(), req.Name)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, user) // Return the record
	}
}

// UpdateProfileHandler overwrites name, email and contact of the :id record
func UpdateProfileHandler(svc *service.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c) // Target record id
		if !ok {
			return
		}
		var req UpdateProfileRequest // Bind request to struct
		if err := c.ShouldBind(&req); err != nil {
			c.String(http.StatusBadRequest, "Invalid request")
			return
		}
		if err := svc.UpdateProfile(c.Request.Context(), id, req.Name, req.Email, req.Contact); err != nil {
			writeServiceError(c, err)
			return
		}
		c.String(http.StatusOK, "Records updated successfully")
	}
}

// UpdatePasswordHandler changes the password of the :id record
func UpdatePasswordHandler(svc *service.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c) // Target record id
		if !ok {
			return
		}
		var req UpdatePasswordRequest // Bind request to struct
		if err := c.ShouldBind(&req); err != nil {
			c.String(http.StatusBadRequest, "Invalid request")
			return
		}
		if err := svc.UpdatePassword(c.Request.Context(), id, req.Email, req.Contact, req.Password); err != nil {
			writeServiceError(c, err)
			return
		}
		c.String(http.StatusOK, "Password changed successfully")
	}
}

// parseID reads the :id parameter, writing a 400 when it is not a positive integer
func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.String(http.StatusBadRequest, "Record with given ID does not exists")
		return 0, false
	}
	return uint(id), true
}
