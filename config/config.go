package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	"github.com/hbapte/portfolio-api/env"
	"github.com/hbapte/portfolio-api/internal/ratelimit"
)

// Config is the full service configuration, assembled from an optional TOML
// file overlaid with environment variables. Env wins on conflict.
type Config struct {
	Environment string `toml:"environment"`
	Port        string `toml:"port"`
	LogLevel    string `toml:"log_level"`

	RedisURL      string `toml:"redis_url" validate:"required"`
	SessionSecret string `toml:"session_secret" validate:"required"`

	Auth      AuthConfig      `toml:"auth"`
	RateLimit RateLimitConfig `toml:"rate_limit"`
	Email     EmailConfig     `toml:"email"`
}

type AuthConfig struct {
	// SessionTTL is how long an issued session stays valid.
	SessionTTL time.Duration `toml:"session_ttl"`

	// PasswordMaxAge forces a password change when exceeded. Zero disables
	// expiry.
	PasswordMaxAge time.Duration `toml:"password_max_age"`

	// TwoFactorTTL is the validity window of an emailed one-time code.
	TwoFactorTTL time.Duration `toml:"two_factor_ttl"`

	CookieName string `toml:"cookie_name"`
}

func (c *AuthConfig) ApplyDefaults() {
	if c.SessionTTL == 0 {
		c.SessionTTL = 24 * time.Hour
	}
	if c.TwoFactorTTL == 0 {
		c.TwoFactorTTL = 10 * time.Minute
	}
	if c.CookieName == "" {
		c.CookieName = "portfolio.session"
	}
}

type RateLimitConfig struct {
	// Global applies to unauthenticated API routes.
	Global ratelimit.Config `toml:"global"`

	// Login applies to the login endpoint only, with a tighter budget.
	Login ratelimit.Config `toml:"login"`
}

func (c *RateLimitConfig) ApplyDefaults() {
	c.Global.ApplyDefaults()
	if c.Login.Window == 0 {
		c.Login.Window = 1 * time.Minute
	}
	if c.Login.Max == 0 {
		c.Login.Max = 5
	}
	c.Login.ApplyDefaults()
}

type EmailConfig struct {
	FromAddress string `toml:"from_address"`

	// AdminEmail receives login and newsletter notifications.
	AdminEmail string `toml:"admin_email"`

	// DevEmails suppress self-notifications: a login by an allowlisted
	// address does not email the admin about itself.
	DevEmails []string `toml:"dev_emails"`
}

func (c *EmailConfig) IsDevEmail(email string) bool {
	for _, dev := range c.DevEmails {
		if strings.EqualFold(strings.TrimSpace(dev), email) {
			return true
		}
	}
	return false
}

// Load builds the configuration. The redis URL and session secret are
// required; everything else has a default.
func Load() (*Config, error) {
	cfg := &Config{}

	if path := os.Getenv(env.EnvConfigPath); path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config file %s: %w", path, err)
		}
	}

	overlayEnv(cfg)

	cfg.Auth.ApplyDefaults()
	cfg.RateLimit.ApplyDefaults()
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func overlayEnv(cfg *Config) {
	setIfPresent(&cfg.RedisURL, env.EnvRedisURL)
	setIfPresent(&cfg.SessionSecret, env.EnvSessionSecret)
	setIfPresent(&cfg.Port, env.EnvPort)
	setIfPresent(&cfg.Environment, env.EnvGoEnvironment)
	setIfPresent(&cfg.LogLevel, env.EnvLogLevel)
	setIfPresent(&cfg.Email.FromAddress, env.EnvEmailFrom)
	setIfPresent(&cfg.Email.AdminEmail, env.EnvAdminEmail)

	if devEmails := os.Getenv(env.EnvDevEmails); devEmails != "" {
		cfg.Email.DevEmails = strings.Split(devEmails, ",")
	}
}

func setIfPresent(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
