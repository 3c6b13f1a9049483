// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected in production.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	APIBaseURL    string        `env:"NGO_API_BASE_URL,required"`
	APITimeout    time.Duration `env:"NGO_API_TIMEOUT" envDefault:"15s"`
	SessionSecret string        `env:"NGO_SESSION_SECRET,required"`
	DBPath        string        `env:"NGO_DB_PATH" envDefault:"./data/ngo.db"`
	ServerHost    string        `env:"NGO_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int           `env:"NGO_SERVER_PORT" envDefault:"8080"`
	Env           string        `env:"NGO_ENV" envDefault:"development"`
	LogLevel      string        `env:"NGO_LOG_LEVEL" envDefault:"info"`
	SiteName      string        `env:"NGO_SITE_NAME" envDefault:"Hope Foundation"`
	SiteURL       string        `env:"NGO_SITE_URL"` // Public base URL for sitemap links; derived from the request when empty

	// Third-party service keys (public identifiers only)
	PaymentKeyID    string `env:"NGO_PAYMENT_KEY_ID"`    // Payment gateway public key
	EmailServiceID  string `env:"NGO_EMAIL_SERVICE_ID"`  // Email-delivery service identifier
	EmailTemplateID string `env:"NGO_EMAIL_TEMPLATE_ID"` // Email-delivery template identifier
	EmailPublicKey  string `env:"NGO_EMAIL_PUBLIC_KEY"`  // Email-delivery public key

	PaymentScriptURL string `env:"NGO_PAYMENT_SCRIPT_URL" envDefault:"https://checkout.razorpay.com/v1/checkout.js"`
	EmailScriptURL   string `env:"NGO_EMAIL_SCRIPT_URL" envDefault:"https://cdn.jsdelivr.net/npm/@emailjs/browser@4/dist/email.min.js"`

	// Cache configuration
	RedisURL     string `env:"NGO_REDIS_URL"`                        // Optional Redis URL for a shared cache
	CachePrefix  string `env:"NGO_CACHE_PREFIX" envDefault:"ngo:"`   // Redis key prefix
	CacheTTL     int    `env:"NGO_CACHE_TTL" envDefault:"0"`         // Public response cache TTL in seconds (0 = off)
	CacheMaxSize int    `env:"NGO_CACHE_MAX_SIZE" envDefault:"1000"` // Max memory cache entries

	// Event log retention
	EventRetentionDays int `env:"NGO_EVENT_RETENTION_DAYS" envDefault:"30"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// CacheEnabled returns true if public responses should be cached.
func (c Config) CacheEnabled() bool {
	return c.CacheTTL > 0
}

// PaymentsEnabled returns true if the payment gateway key is configured.
func (c Config) PaymentsEnabled() bool {
	return c.PaymentKeyID != ""
}

// EmailWidgetEnabled returns true if all email-delivery identifiers are configured.
func (c Config) EmailWidgetEnabled() bool {
	return c.EmailServiceID != "" && c.EmailTemplateID != "" && c.EmailPublicKey != ""
}

// ThirdPartyOrigins returns the origins of the enabled widget scripts, for
// the Content-Security-Policy.
func (c Config) ThirdPartyOrigins() []string {
	var origins []string
	add := func(raw string) {
		if u, err := url.Parse(raw); err == nil && u.Scheme != "" && u.Host != "" {
			origins = append(origins, u.Scheme+"://"+u.Host)
		}
	}
	if c.PaymentsEnabled() {
		add(c.PaymentScriptURL)
	}
	if c.EmailWidgetEnabled() {
		add(c.EmailScriptURL)
	}
	return origins
}

// MinSessionSecretLength is the minimum required length for the session secret.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if len(c.SessionSecret) < MinSessionSecretLength {
		return fmt.Errorf("NGO_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(c.SessionSecret))
	}

	for _, weak := range knownWeakSecrets {
		if c.SessionSecret == weak {
			return fmt.Errorf("NGO_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	if !hasMinimumEntropy(c.SessionSecret) {
		slog.Warn("NGO_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	u, err := url.Parse(c.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("NGO_API_BASE_URL must be an absolute http(s) URL, got %q", c.APIBaseURL)
	}
	c.APIBaseURL = strings.TrimSuffix(c.APIBaseURL, "/")
	c.SiteURL = strings.TrimSuffix(c.SiteURL, "/")

	if c.APITimeout <= 0 {
		return fmt.Errorf("NGO_API_TIMEOUT must be positive, got %s", c.APITimeout)
	}
	return nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
