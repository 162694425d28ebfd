// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all configuration values for the blog server and CLI.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on.
	Port string `env:"PORT" envDefault:"8080"`

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`

	// RedisURL locates the session store, e.g. redis://localhost:6379/0. Required.
	RedisURL string `env:"REDIS_URL,required,notEmpty"`

	// LogLevel is the minimum log level: debug, info, warn or error.
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"info"`

	// CORSOrigins is the list of allowed cross-origin request origins.
	CORSOrigins []string `env:"CORS_ORIGINS" envDefault:"http://localhost:8080" envSeparator:","`

	// Debug enables the development-only endpoints.
	Debug bool `env:"DEBUG" envDefault:"false"`

	// BannedWords are rejected in post titles and comments.
	BannedWords []string `env:"BANNED_WORDS" envDefault:"spam,clickbait,scam" envSeparator:","`

	SessionTTL   time.Duration `env:"SESSION_TTL" envDefault:"336h"`
	CookieSecure bool          `env:"COOKIE_SECURE" envDefault:"false"`

	// MaxBodyBytes caps request bodies; larger requests get 413.
	MaxBodyBytes int64 `env:"MAX_BODY_BYTES" envDefault:"1048576"`

	// LoginRatePerMin is how many login or registration POSTs one IP may
	// send per minute.
	LoginRatePerMin int `env:"LOGIN_RATE_PER_MIN" envDefault:"10"`
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error naming any required variable that is missing or empty.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config.Load: %w", err)
	}
	cfg.CORSOrigins = trimAll(cfg.CORSOrigins)
	cfg.BannedWords = trimAll(cfg.BannedWords)

	if cfg.SessionTTL <= 0 {
		return Config{}, fmt.Errorf("config.Load: SESSION_TTL must be positive, got %s", cfg.SessionTTL)
	}
	if cfg.LoginRatePerMin < 1 {
		return Config{}, fmt.Errorf("config.Load: LOGIN_RATE_PER_MIN must be at least 1, got %d", cfg.LoginRatePerMin)
	}
	return cfg, nil
}

// trimAll trims every entry, ignoring empty ones.
func trimAll(in []string) []string {
	out := []string{}
	for _, part := range in {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
