package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime settings, loaded once at startup and passed
// explicitly to whatever needs them.
type Config struct {
	Port string

	// Database. Driver is "mysql" in production and "sqlite" for local
	// development, which needs no server and defaults to a file DSN.
	DBDriver string
	DBDSN    string

	// JWT
	JWTSecret []byte
	JWTExpiry time.Duration

	// CORS
	CORSOrigins []string

	// Pagination default for catalog/user listings.
	ItemsPerPage int
}

// Load reads the configuration from environment variables, falling back to
// development defaults where a variable is not set.
func Load() *Config {
	cfg := &Config{
		Port:         getEnv("PORT", "5001"),
		DBDriver:     getEnv("DB_DRIVER", "sqlite"),
		DBDSN:        getEnv("DB_DSN", "cat_ecommerce.db"),
		JWTSecret:    []byte(getEnv("JWT_SECRET_KEY", "jwt-secret-key-change-in-production")),
		JWTExpiry:    time.Hour,
		CORSOrigins:  strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000"), ","),
		ItemsPerPage: 20,
	}

	if raw := os.Getenv("JWT_EXPIRY_HOURS"); raw != "" {
		if hours, err := strconv.Atoi(raw); err == nil && hours > 0 {
			cfg.JWTExpiry = time.Duration(hours) * time.Hour
		}
	}
	if raw := os.Getenv("ITEMS_PER_PAGE"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			cfg.ItemsPerPage = n
		}
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
