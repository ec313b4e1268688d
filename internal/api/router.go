package api

import (
	"net/http"                         // Static file server
	"user_service/internal/middleware" // Custom middleware
	"user_service/internal/service"    // Account service
	"user_service/internal/upload"     // Profile image storage

	"github.com/gin-gonic/gin" // Gin web framework
)

// RouterConfig holds everything the HTTP layer needs
type RouterConfig struct {
	Service          *service.AccountService   // Account flows
	Verifier         middleware.TokenVerifier  // Token verification
	Files            *upload.Storage           // Upload storage, also served at /uploads
	PublicDir        string                    // Served for unmatched paths, empty disables
	EnforceOwnership bool                      // Token owner must match :id on updates
	AuthLimiter      *middleware.IPRateLimiter // Limits register and login, nil disables
}

// NewRouter wires routes and middleware onto a fresh gin engine
func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()                                    // Gin router instance
	r.Use(gin.Recovery(), middleware.RequestLogger()) // Panic recovery and request logging
	r.MaxMultipartMemory = 8 << 20                    // Larger parts spill to temp files

	// Static files
	r.Static("/uploads", cfg.Files.Dir())
	if cfg.PublicDir != "" {
		r.NoRoute(gin.WrapH(http.FileServer(http.Dir(cfg.PublicDir))))
	}

	user := r.Group("/user")

	// Public auth routes
	limit := middleware.RateLimitMiddleware(cfg.AuthLimiter)
	user.POST("/register", limit, RegisterHandler(cfg.Service, cfg.Files)) // Registration endpoint
	user.POST("/login", limit, LoginHandler(cfg.Service))                  // Login endpoint

	// Protected routes
	protected := user.Group("")
	protected.Use(middleware.JWTAuthMiddleware(cfg.Verifier))
	protected.GET("/alluserinfo", ListUsersHandler(cfg.Service)) // List all users
	protected.GET("/info", UserInfoHandler(cfg.Service))         // Lookup by name

	// Updates addressed by id, optionally restricted to the token owner
	owner := middleware.OwnerOnlyMiddleware(cfg.EnforceOwnership)
	protected.PUT("/update/:id", owner, UpdateProfileHandler(cfg.Service))    // Profile update
	protected.PUT("/password/:id", owner, UpdatePasswordHandler(cfg.Service)) // Password change

	return r
}
