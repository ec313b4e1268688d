package main

import (
	"context"                          // context package is needed for Redis operations
	"user_service/internal/api"        // Custom package for API handlers
	"user_service/internal/config"     // Custom package for configuration
	"user_service/internal/middleware" // Custom package for middleware
	"user_service/internal/service"    // Account service
	"user_service/internal/store"      // Credential stores
	"user_service/internal/upload"     // Profile image storage
	"user_service/internal/utils"      // Token, password and cache helpers

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// Main function to set up and run the server
func main() {
	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.LoadConfig() // Load configuration
	if err != nil {
		logrus.Fatalf("invalid configuration: %v", err)
	}

	// Set Mode to Release and log JSON if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	if cfg.TokenTTL == 0 {
		logrus.Warn("TOKEN_TTL not set: issued tokens never expire")
	}

	// Setup the lookup cache, Redis when configured
	var cache service.Cache = utils.NopCache{}
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr, // Redis server address
			Password: cfg.RedisPass, // Redis password
			DB:       cfg.RedisDB,   // Redis database number
		})
		// Test Redis connection
		if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
			logrus.Fatalf("failed to connect to Redis: %v", err)
		}
		cache = utils.NewRedisCache(redisClient)
	}

	// Profile image storage
	files, err := upload.NewStorage(cfg.UploadDir, cfg.MaxUploadBytes)
	if err != nil {
		logrus.Fatalf("failed to prepare upload dir: %v", err)
	}

	// Setup the credential store, records live for the process lifetime either way
	var users service.UserStore = store.NewMemoryStore()
	if cfg.StoreDriver == "sqlite" {
		db, err := store.NewSQLiteStore(cfg.SQLiteDSN)
		if err != nil {
			logrus.Fatalf("failed to open SQLite store: %v", err)
		}
		defer db.Close()
		users = db
	}
	logrus.WithField("driver", cfg.StoreDriver).Info("Credential store ready")

	issuer := utils.NewTokenIssuer(cfg.TokenSecret, cfg.TokenTTL) // Token issuer
	svc := service.New(
		users,                                   // Credential store
		utils.NewPasswordHasher(cfg.BcryptCost), // Bcrypt hasher
		issuer,                                  // Token issuer
		cache,                                   // Lookup cache
		cfg.CacheTTL,                            // Cache lifetime
	)

	var limiter *middleware.IPRateLimiter // Nil disables auth rate limiting
	if cfg.LoginRateEvery > 0 {
		limiter = middleware.NewIPRateLimiter(cfg.LoginRateEvery, cfg.LoginRateBurst)
	}

	r := api.NewRouter(api.RouterConfig{
		Service:          svc,
		Verifier:         issuer,
		Files:            files,
		PublicDir:        cfg.PublicDir,
		EnforceOwnership: cfg.EnforceOwnership,
		AuthLimiter:      limiter,
	})

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	logrus.Info("App started running on PORT :" + cfg.AppPort) // Log server start
	if err := r.Run(":" + cfg.AppPort); err != nil {           // Start the server on port cfg.AppPort
		logrus.Fatalf("server stopped: %v", err)
	}
}
