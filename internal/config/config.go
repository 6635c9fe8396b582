// Package config holds the typed runtime configuration for the accounts
// service. Values come from the environment (optionally seeded from a .env
// file by main) and are validated once at startup; nothing else in the
// process reads env vars for these settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	// HTTPAddr is the listen address for the API server.
	HTTPAddr string
	// DatabaseURL is the Postgres DSN.
	DatabaseURL string
	// DBMaxConns caps the connection pool.
	DBMaxConns int
	// DBTimeout bounds every store query; exceeding it surfaces as
	// Unavailable to the caller.
	DBTimeout time.Duration
	// JWTSecret signs session tokens (HS256).
	JWTSecret string
	// TokenTTL is the session token lifetime.
	TokenTTL time.Duration
	// BcryptCost is the password hashing cost factor.
	BcryptCost int
}

// Load populates a Config from the environment, applying defaults for
// everything except the required DATABASE_URL and JWT_SECRET.
func Load() *Config {
	cfg := &Config{
		HTTPAddr:    "0.0.0.0:8080",
		DBMaxConns:  5,
		DBTimeout:   5 * time.Second,
		TokenTTL:    24 * time.Hour,
		BcryptCost:  bcrypt.DefaultCost,
		DatabaseURL: os.Getenv("DATABASE_URL"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := os.Getenv("DATABASE_MAX_CONNS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.DBMaxConns = n
		}
	}
	if v := os.Getenv("DATABASE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.DBTimeout = d
		}
	}
	if v := os.Getenv("TOKEN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.TokenTTL = d
		}
	}
	if v := os.Getenv("BCRYPT_COST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.BcryptCost = n
		}
	}
	return cfg
}

// Validate reports the first missing or out-of-range setting. The server
// must not start when it returns an error.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	return nil
}
