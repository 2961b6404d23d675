package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// SigningConfig holds what the token command needs to mint a DaXtra token.
type SigningConfig struct {
	Account    string
	Secret     string
	TTLSeconds int
}

// NewSigningConfig creates a signing configuration from environment variables.
// It reads DAXTRA_ACCOUNT and DAXTRA_JWT_SECRET (required) and
// DAXTRA_JWT_TTL_SECONDS (default: 120).
func NewSigningConfig() (*SigningConfig, error) {
	ttlStr := os.Getenv("DAXTRA_JWT_TTL_SECONDS")
	if ttlStr == "" {
		ttlStr = "120" // default
	}

	ttl, err := strconv.Atoi(ttlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid DAXTRA_JWT_TTL_SECONDS: %v", err)
	}

	config := &SigningConfig{
		Account:    os.Getenv("DAXTRA_ACCOUNT"),
		Secret:     os.Getenv("DAXTRA_JWT_SECRET"),
		TTLSeconds: ttl,
	}

	if err := config.normalize(); err != nil {
		return nil, err
	}

	return config, nil
}

// TTL returns the token lifetime.
func (c *SigningConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// normalize validates the configuration.
func (c *SigningConfig) normalize() error {
	if c.Account == "" {
		return fmt.Errorf("DAXTRA_ACCOUNT is required but not set")
	}
	if c.Secret == "" {
		return fmt.Errorf("DAXTRA_JWT_SECRET is required but not set")
	}
	if c.TTLSeconds < 1 {
		return fmt.Errorf("DAXTRA_JWT_TTL_SECONDS must be at least 1 second, got: %d", c.TTLSeconds)
	}
	return nil
}
