// Package config loads process settings from the environment and map display
// settings from an optional YAML file.
package config

import (
	"errors"
	"os"
	"strings"
)

var (
	ErrMissingDatabaseURL = errors.New("DATABASE_URL environment variable is required")
	ErrMissingAdminSecret = errors.New("ADMIN_PASSWORD or ADMIN_PASSWORD_HASH environment variable is required")
)

// DefaultAllowedOrigins are echoed back by the CORS middleware when
// ALLOWED_ORIGINS is unset.
var DefaultAllowedOrigins = []string{
	"http://localhost:5173",
	"http://localhost:8501",
}

// Config holds process-level settings.
type Config struct {
	DatabaseURL string
	Port        string

	// Exactly one of these is needed; the hash wins when both are set.
	AdminPassword     string
	AdminPasswordHash string

	// Optional. Without it the account cache lives in memory only.
	RedisURL string

	AllowedOrigins []string
	MapConfigPath  string
	LogLevel       string

	// Enables /webhooks when set.
	WebhookSecret string

	// CookieSecure marks the session cookie Secure; set it behind TLS.
	CookieSecure bool
}

// LoadFromEnv reads configuration from environment variables.
//
// Environment variables:
//   - DATABASE_URL: Postgres DSN (required)
//   - PORT: HTTP port (default: 5050)
//   - ADMIN_PASSWORD / ADMIN_PASSWORD_HASH: shared dashboard secret, plain or bcrypt
//   - REDIS_URL: redis://… URL for the account cache mirror (optional)
//   - ALLOWED_ORIGINS: comma-separated CORS allow-list
//   - MAP_CONFIG: path to the map YAML (default: map.yaml)
//   - LOG_LEVEL: logrus level (default: info)
//   - WEBHOOK_SECRET: HMAC key for pipeline webhooks (optional)
//   - COOKIE_SECURE: "true" to send the session cookie over HTTPS only
func LoadFromEnv() Config {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "5050"
	}

	origins := DefaultAllowedOrigins
	if raw := strings.TrimSpace(os.Getenv("ALLOWED_ORIGINS")); raw != "" {
		origins = nil
		for _, o := range strings.Split(raw, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}

	mapPath := strings.TrimSpace(os.Getenv("MAP_CONFIG"))
	if mapPath == "" {
		mapPath = "map.yaml"
	}

	return Config{
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		Port:              port,
		AdminPassword:     os.Getenv("ADMIN_PASSWORD"),
		AdminPasswordHash: strings.TrimSpace(os.Getenv("ADMIN_PASSWORD_HASH")),
		RedisURL:          strings.TrimSpace(os.Getenv("REDIS_URL")),
		AllowedOrigins:    origins,
		MapConfigPath:     mapPath,
		LogLevel:          os.Getenv("LOG_LEVEL"),
		WebhookSecret:     os.Getenv("WEBHOOK_SECRET"),
		CookieSecure:      strings.EqualFold(strings.TrimSpace(os.Getenv("COOKIE_SECURE")), "true"),
	}
}

// Validate checks that the required settings are present.
func (c Config) Validate() error {
	if c.DatabaseURL == "" {
		return ErrMissingDatabaseURL
	}
	if c.AdminPassword == "" && c.AdminPasswordHash == "" {
		return ErrMissingAdminSecret
	}
	return nil
}
