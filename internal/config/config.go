// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the public-key/health endpoint listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// JWTPrivateKey is the PEM-encoded private key (RSA or ECDSA) or path to file.
	JWTPrivateKey string `mapstructure:"JWT_PRIVATE_KEY"`
	// JWTPublicKey is the PEM-encoded public key or path to file.
	JWTPublicKey string `mapstructure:"JWT_PUBLIC_KEY"`
	// JWTIssuer is the iss claim (e.g. "fittrack-auth").
	JWTIssuer string `mapstructure:"JWT_ISSUER"`
	// JWTAudience is the aud claim (e.g. "fittrack-api").
	JWTAudience string `mapstructure:"JWT_AUDIENCE"`
	// JWTAccessTTL is the access token lifetime (e.g. "15m").
	JWTAccessTTL string `mapstructure:"JWT_ACCESS_TTL"`
	// JWTRefreshTTL is the refresh token lifetime (e.g. "720h").
	JWTRefreshTTL string `mapstructure:"JWT_REFRESH_TTL"`
	// BcryptCost is the bcrypt cost factor (4-31); default 12.
	BcryptCost int `mapstructure:"BCRYPT_COST"`
	// VerifyTokenTTL is the email-verification token lifetime (e.g. "24h").
	VerifyTokenTTL string `mapstructure:"VERIFY_TOKEN_TTL"`
	// ResetTokenTTL is the password-reset token lifetime (e.g. "1h").
	ResetTokenTTL string `mapstructure:"RESET_TOKEN_TTL"`
	// TokenResendWindow is the window counted against TokenResendLimit when
	// re-issuing one-time tokens (e.g. "1h").
	TokenResendWindow string `mapstructure:"TOKEN_RESEND_WINDOW"`
	// TokenResendLimit is the max one-time tokens of a type per user within the resend window.
	TokenResendLimit int `mapstructure:"TOKEN_RESEND_LIMIT"`
	// TokenRetention is how long old one-time tokens are kept before purge (e.g. "720h").
	TokenRetention string `mapstructure:"TOKEN_RETENTION"`
	// ReturnRawTokens when true returns raw one-time tokens to API callers instead of
	// delivering them out of band. Dev/test only; Load fails when APP_ENV=production.
	ReturnRawTokens bool `mapstructure:"RETURN_RAW_TOKENS"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`
	// LogLevel is the slog level (0 info, -4 debug, 4 warn, 8 error).
	LogLevel int `mapstructure:"LOG_LEVEL"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JWT_ISSUER", "fittrack-auth")
	v.SetDefault("JWT_AUDIENCE", "fittrack-api")
	v.SetDefault("JWT_ACCESS_TTL", "15m")
	v.SetDefault("JWT_REFRESH_TTL", "720h") // 30d
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("VERIFY_TOKEN_TTL", "24h")
	v.SetDefault("RESET_TOKEN_TTL", "1h")
	v.SetDefault("TOKEN_RESEND_WINDOW", "1h")
	v.SetDefault("TOKEN_RESEND_LIMIT", 3)
	v.SetDefault("TOKEN_RETENTION", "720h")
	v.SetDefault("RETURN_RAW_TOKENS", false)
	v.SetDefault("APP_ENV", "")
	v.SetDefault("LOG_LEVEL", 0)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}

	if cfg.ReturnRawTokens && cfg.Env == "production" {
		return nil, errors.New("config: RETURN_RAW_TOKENS must not be true when APP_ENV=production")
	}

	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 12
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}

	if cfg.TokenResendLimit <= 0 {
		return nil, errors.New("config: TOKEN_RESEND_LIMIT must be positive")
	}

	return &cfg, nil
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// AccessTTL parses JWTAccessTTL as a time.Duration. Returns 15m if unset or invalid.
func (c *Config) AccessTTL() time.Duration { return parseDuration(c.JWTAccessTTL, 15*time.Minute) }

// RefreshTTL parses JWTRefreshTTL as a time.Duration. Returns 720h if unset or invalid.
func (c *Config) RefreshTTL() time.Duration { return parseDuration(c.JWTRefreshTTL, 720*time.Hour) }

// VerifyTTL parses VerifyTokenTTL as a time.Duration. Returns 24h if unset or invalid.
func (c *Config) VerifyTTL() time.Duration { return parseDuration(c.VerifyTokenTTL, 24*time.Hour) }

// ResetTTL parses ResetTokenTTL as a time.Duration. Returns 1h if unset or invalid.
func (c *Config) ResetTTL() time.Duration { return parseDuration(c.ResetTokenTTL, time.Hour) }

// ResendWindow parses TokenResendWindow as a time.Duration. Returns 1h if unset or invalid.
func (c *Config) ResendWindow() time.Duration { return parseDuration(c.TokenResendWindow, time.Hour) }

// Retention parses TokenRetention as a time.Duration. Returns 720h if unset or invalid.
func (c *Config) Retention() time.Duration { return parseDuration(c.TokenRetention, 720*time.Hour) }
