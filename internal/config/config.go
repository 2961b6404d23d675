// Package config provides configuration loading and validation for the parser service.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

// Defaults applied when neither the environment nor a config file sets a value.
const (
	DefaultPort      = 3000
	DefaultTimeoutMS = 45000
	DefaultLogLevel  = "info"
	DefaultMaxUpload = 10 << 20
)

// Config represents the service configuration. Values come from the
// environment, optionally overlaid on a JSON config file.
type Config struct {
	// DaXtra
	BaseURL   string `json:"base_url,omitempty" validate:"required,url"`
	Account   string `json:"account,omitempty" validate:"required"`
	JWTSecret string `json:"jwt_secret,omitempty" validate:"required"`
	Turbo     bool   `json:"turbo,omitempty"`
	TimeoutMS int    `json:"timeout_ms,omitempty" validate:"gte=0"`
	TokenTTL  int    `json:"token_ttl_seconds,omitempty" validate:"gte=0"`

	// Server
	Port           int    `json:"port,omitempty" validate:"gte=0,lte=65535"`
	MaxUploadBytes int64  `json:"max_upload_bytes,omitempty" validate:"gte=0"`
	LogLevel       string `json:"log_level,omitempty" validate:"omitempty,oneof=debug info warn error"`
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv reads DAXTRA_BASE_URL, DAXTRA_ACCOUNT, DAXTRA_JWT_SECRET,
// DAXTRA_TURBO, DAXTRA_TIMEOUT_MS, DAXTRA_JWT_TTL_SECONDS, PORT, MAX_UPLOAD_BYTES
// and LOG_LEVEL. Unset variables leave the field zero.
func FromEnv() (*Config, error) {
	cfg := &Config{
		BaseURL:   os.Getenv("DAXTRA_BASE_URL"),
		Account:   os.Getenv("DAXTRA_ACCOUNT"),
		JWTSecret: os.Getenv("DAXTRA_JWT_SECRET"),
		Turbo:     os.Getenv("DAXTRA_TURBO") == "true",
		LogLevel:  os.Getenv("LOG_LEVEL"),
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"DAXTRA_TIMEOUT_MS", &cfg.TimeoutMS},
		{"DAXTRA_JWT_TTL_SECONDS", &cfg.TokenTTL},
		{"PORT", &cfg.Port},
	}
	for _, v := range ints {
		raw := os.Getenv(v.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %v", v.name, err)
		}
		*v.dst = n
	}

	if raw := os.Getenv("MAX_UPLOAD_BYTES"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid MAX_UPLOAD_BYTES: %v", err)
		}
		cfg.MaxUploadBytes = n
	}

	return cfg, nil
}

// Load resolves the effective configuration and validates it.
func Load(path string) (*Config, error) {
	cfg, err := Resolve(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Resolve builds the effective configuration without validating it:
// environment values win over the optional config file at path, and
// built-in defaults fill what remains.
func Resolve(path string) (*Config, error) {
	env, err := FromEnv()
	if err != nil {
		return nil, err
	}

	merged := *env
	if path != "" {
		file, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		merged = env.MergeWithDefaults(*file)
		// Bools cannot be merged by zero value; either source may enable turbo.
		merged.Turbo = env.Turbo || file.Turbo
	}

	merged = merged.MergeWithDefaults(Config{
		TimeoutMS:      DefaultTimeoutMS,
		Port:           DefaultPort,
		MaxUploadBytes: DefaultMaxUpload,
		LogLevel:       DefaultLogLevel,
	})

	return &merged, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.BaseURL == "" {
		result.BaseURL = defaults.BaseURL
	}
	if result.Account == "" {
		result.Account = defaults.Account
	}
	if result.JWTSecret == "" {
		result.JWTSecret = defaults.JWTSecret
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}

	// Int fields: use default if zero
	if result.TimeoutMS == 0 {
		result.TimeoutMS = defaults.TimeoutMS
	}
	if result.TokenTTL == 0 {
		result.TokenTTL = defaults.TokenTTL
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.MaxUploadBytes == 0 {
		result.MaxUploadBytes = defaults.MaxUploadBytes
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge

	return result
}

// Timeout returns the per-attempt timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// TokenTTLDuration returns the signed token lifetime; zero means the signer default.
func (c *Config) TokenTTLDuration() time.Duration {
	return time.Duration(c.TokenTTL) * time.Second
}
