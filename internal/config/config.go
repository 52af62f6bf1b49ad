// Package config loads process-wide configuration from the
// environment. The result is an explicit object handed to services at
// startup; nothing reads configuration after that.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	Addr         string        // HTTP listen address
	DatabasePath string        // SQLite database file path
	JWTSecret    string        // token signing key, required, >= 32 bytes
	TokenTTL     time.Duration // identity token lifetime
	BcryptCost   int           // password hashing cost
	LogLevel     string        // debug / info / warn / error
}

// Load reads configuration from environment variables, applying
// defaults for everything except the JWT secret.
func Load() (*Config, error) {
	v := viper.New()
	v.SetDefault("addr", ":8080")
	v.SetDefault("database_path", "taskboard.db")
	v.SetDefault("token_ttl", 24*time.Hour)
	v.SetDefault("bcrypt_cost", 12)
	v.SetDefault("log_level", "info")

	v.AutomaticEnv()
	_ = v.BindEnv("addr", "ADDR")
	_ = v.BindEnv("database_path", "DATABASE_PATH")
	_ = v.BindEnv("jwt_secret", "JWT_SECRET")
	_ = v.BindEnv("token_ttl", "TOKEN_TTL")
	_ = v.BindEnv("bcrypt_cost", "BCRYPT_COST")
	_ = v.BindEnv("log_level", "LOG_LEVEL")

	cfg := &Config{
		Addr:         v.GetString("addr"),
		DatabasePath: v.GetString("database_path"),
		JWTSecret:    v.GetString("jwt_secret"),
		TokenTTL:     v.GetDuration("token_ttl"),
		BcryptCost:   v.GetInt("bcrypt_cost"),
		LogLevel:     v.GetString("log_level"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET environment variable is required")
	}
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters for HMAC-SHA256 security")
	}
	if c.BcryptCost < 4 || c.BcryptCost > 14 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 14, got %d", c.BcryptCost)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive, got %s", c.TokenTTL)
	}
	return nil
}

// SlogLevel maps the configured log level string onto a slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
