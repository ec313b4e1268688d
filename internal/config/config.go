package config

import (
	"errors"  // For configuration errors
	"fmt"     // For error wrapping
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"time"    // For durations

	"github.com/joho/godotenv" // For loading .env files
)

// Configuration errors
var (
	ErrMissingSecret = errors.New("ACCESS_TOKEN_SECRET is required")       // No signing secret configured
	ErrUnknownStore  = errors.New("STORE_DRIVER must be memory or sqlite") // Unsupported store driver
)

// Config holds the application configuration
type Config struct {
	AppPort          string        // Application port
	TokenSecret      string        // JWT signing secret
	TokenTTL         time.Duration // Token lifetime, zero means tokens never expire
	BcryptCost       int           // Bcrypt cost factor
	StoreDriver      string        // Credential store: memory or sqlite
	SQLiteDSN        string        // SQLite data source, in-memory by default
	UploadDir        string        // Directory for uploaded profile images
	PublicDir        string        // Directory served for unmatched paths
	MaxUploadBytes   int64         // Maximum profile image size
	EnforceOwnership bool          // Require the token owner to match the :id being modified
	LoginRateEvery   time.Duration // Interval between allowed auth attempts per IP, zero disables
	LoginRateBurst   int           // Burst of auth attempts per IP
	RedisAddr        string        // Redis server address, empty disables the cache
	RedisPass        string        // Redis password
	RedisDB          int           // Redis database number
	CacheTTL         time.Duration // Lifetime of cached lookups
	IsProd           bool          // Is production environment
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	_ = godotenv.Load() // Load .env file if present
	cfg := &Config{
		AppPort:          getEnv("PORT", "3000"),                             // Application port
		TokenSecret:      os.Getenv("ACCESS_TOKEN_SECRET"),                   // JWT secret key
		TokenTTL:         getDuration("TOKEN_TTL", 0),                        // No expiry unless configured
		BcryptCost:       getInt("BCRYPT_COST", 10),                          // Bcrypt cost
		StoreDriver:      getEnv("STORE_DRIVER", "memory"),                   // Credential store
		SQLiteDSN:        getEnv("SQLITE_DSN", "file::memory:?cache=shared"), // SQLite data source
		UploadDir:        getEnv("UPLOAD_DIR", "./uploads"),                  // Upload directory
		PublicDir:        getEnv("PUBLIC_DIR", "./public"),                   // Static directory
		MaxUploadBytes:   int64(getInt("MAX_UPLOAD_BYTES", 5*1024*1024)),     // 5MB
		EnforceOwnership: os.Getenv("ENFORCE_OWNERSHIP") == "true",           // Ownership check
		LoginRateEvery:   getDuration("LOGIN_RATE_EVERY", time.Second),       // Rate limit interval
		LoginRateBurst:   getInt("LOGIN_RATE_BURST", 5),                      // Rate limit burst
		RedisAddr:        os.Getenv("REDIS_ADDR"),                            // Redis server address
		RedisPass:        os.Getenv("REDIS_PASS"),                            // Redis password
		RedisDB:          getInt("REDIS_DB", 0),                              // Redis database number
		CacheTTL:         getDuration("CACHE_TTL", 60*time.Second),           // Cache lifetime
		IsProd:           os.Getenv("IS_PROD") == "true",                     // Is production environment
	}
	if cfg.TokenSecret == "" {
		return nil, ErrMissingSecret // Refuse to sign tokens with an empty key
	}
	if cfg.StoreDriver != "memory" && cfg.StoreDriver != "sqlite" {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStore, cfg.StoreDriver) // Only two stores exist
	}
	return cfg, nil
}

// getEnv returns the variable or a fallback when unset
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getInt parses an integer variable, falling back on absence or parse errors
func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

// getDuration parses a Go duration variable, falling back on absence or parse errors
func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
