// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads the service configuration from FOLIO_* environment
// variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/olegiv/folio/internal/auth"
	"github.com/olegiv/folio/internal/kv"
	"github.com/olegiv/folio/internal/scheduler"
)

// knownWeakSecrets contains default/example secrets that must be rejected.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	Env           string `env:"FOLIO_ENV" envDefault:"development"`
	LogLevel      string `env:"FOLIO_LOG_LEVEL" envDefault:"info"`
	ServerHost    string `env:"FOLIO_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"FOLIO_SERVER_PORT" envDefault:"8080"`
	SessionSecret string `env:"FOLIO_SESSION_SECRET,required"`

	// RequestTimeout bounds every request except chat and demo generation.
	RequestTimeout time.Duration `env:"FOLIO_REQUEST_TIMEOUT" envDefault:"30s"`
	// TrustedOrigins are extra host[:port] values allowed to call the API cross-site.
	TrustedOrigins []string `env:"FOLIO_TRUSTED_ORIGINS" envSeparator:","`

	// DBPath is the SQLite database holding sessions and the event log, and
	// the document itself when Store is sqlite.
	DBPath string `env:"FOLIO_DB_PATH" envDefault:"./data/folio.db"`

	// Durable store
	Store            string `env:"FOLIO_STORE" envDefault:"sqlite"`
	MySQLDSN         string `env:"FOLIO_MYSQL_DSN"`
	RedisURL         string `env:"FOLIO_REDIS_URL"`
	RedisPrefix      string `env:"FOLIO_REDIS_PREFIX" envDefault:"folio:"`
	Partition        string `env:"FOLIO_PARTITION" envDefault:"siteData"`
	MaxDocumentBytes int    `env:"FOLIO_MAX_DOCUMENT_BYTES" envDefault:"16777216"`

	// LegacyDir holds the flat legacy store; empty disables it.
	LegacyDir     string `env:"FOLIO_LEGACY_DIR" envDefault:"./data/legacy"`
	VisitBaseline int64  `env:"FOLIO_VISIT_BASELINE" envDefault:"0"`

	// AdminPasswordHash is an argon2id or bcrypt hash. When empty the
	// document's adminPassword is used.
	AdminPasswordHash string `env:"FOLIO_ADMIN_PASSWORD_HASH"`

	// Content generator
	OpenAIAPIKey     string        `env:"FOLIO_OPENAI_API_KEY"`
	OpenAIModel      string        `env:"FOLIO_OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	OpenAIBaseURL    string        `env:"FOLIO_OPENAI_BASE_URL"`
	GeneratorTimeout time.Duration `env:"FOLIO_GENERATOR_TIMEOUT" envDefault:"60s"`

	// Images
	MaxImageWidth int   `env:"FOLIO_MAX_IMAGE_WIDTH" envDefault:"1600"`
	MaxImageBytes int64 `env:"FOLIO_MAX_IMAGE_BYTES" envDefault:"10485760"`

	// GeoIPDBPath is the path to a GeoLite2-Country.mmdb file.
	GeoIPDBPath string `env:"FOLIO_GEOIP_DB_PATH"`

	// Public form rate limiting, per client IP
	RateLimitRPS   float64 `env:"FOLIO_RATE_LIMIT_RPS" envDefault:"0.5"`
	RateLimitBurst int     `env:"FOLIO_RATE_LIMIT_BURST" envDefault:"5"`

	// Scheduled jobs; "off" disables a job.
	AutoSnapshotSchedule string `env:"FOLIO_AUTO_SNAPSHOT_SCHEDULE" envDefault:"0 3 * * *"`
	PruneEventsSchedule  string `env:"FOLIO_PRUNE_EVENTS_SCHEDULE" envDefault:"@daily"`
	GeoIPReloadSchedule  string `env:"FOLIO_GEOIP_RELOAD_SCHEDULE" envDefault:"@weekly"`
	EventRetentionDays   int    `env:"FOLIO_EVENT_RETENTION_DAYS" envDefault:"30"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// GeoIPEnabled returns true if a GeoIP database is configured.
func (c Config) GeoIPEnabled() bool {
	return c.GeoIPDBPath != ""
}

// GeneratorEnabled returns true if an API key for the content generator is set.
func (c Config) GeneratorEnabled() bool {
	return strings.TrimSpace(c.OpenAIAPIKey) != ""
}

// EventRetention returns how long event log entries are kept.
func (c Config) EventRetention() time.Duration {
	return time.Duration(c.EventRetentionDays) * 24 * time.Hour
}

// SlogLevel maps LogLevel to a slog.Level.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ScheduleOff disables a scheduled job.
const ScheduleOff = "off"

// JobSchedule returns spec, or "" when the job is switched off.
func JobSchedule(spec string) string {
	if strings.EqualFold(strings.TrimSpace(spec), ScheduleOff) {
		return ""
	}
	return spec
}

// MinSessionSecretLength is the minimum required length for the session secret.
// The secret also keys CSRF protection, which needs 32 bytes.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a validated Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("FOLIO_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	return cfg, nil
}

// Validate checks values env tags cannot express.
func (c *Config) Validate() error {
	var errs []error

	if len(c.SessionSecret) < MinSessionSecretLength {
		errs = append(errs, fmt.Errorf("FOLIO_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(c.SessionSecret)))
	}
	for _, weak := range knownWeakSecrets {
		if c.SessionSecret == weak {
			errs = append(errs, errors.New("FOLIO_SESSION_SECRET is a known default value and must not be used"))
		}
	}

	switch c.Store {
	case kv.BackendSQLite, kv.BackendMemory:
	case kv.BackendMySQL:
		if c.MySQLDSN == "" {
			errs = append(errs, errors.New("FOLIO_MYSQL_DSN is required when FOLIO_STORE=mysql"))
		}
	case kv.BackendRedis:
		if c.RedisURL == "" {
			errs = append(errs, errors.New("FOLIO_REDIS_URL is required when FOLIO_STORE=redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("FOLIO_STORE must be one of sqlite, mysql, redis, memory; got %q", c.Store))
	}

	if c.MaxDocumentBytes < 0 {
		errs = append(errs, errors.New("FOLIO_MAX_DOCUMENT_BYTES must not be negative"))
	}
	if c.VisitBaseline < 0 {
		errs = append(errs, errors.New("FOLIO_VISIT_BASELINE must not be negative"))
	}
	if c.MaxImageWidth <= 0 {
		errs = append(errs, errors.New("FOLIO_MAX_IMAGE_WIDTH must be positive"))
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		errs = append(errs, errors.New("FOLIO_RATE_LIMIT_RPS and FOLIO_RATE_LIMIT_BURST must be positive"))
	}
	if c.EventRetentionDays <= 0 {
		errs = append(errs, errors.New("FOLIO_EVENT_RETENTION_DAYS must be positive"))
	}

	if c.AdminPasswordHash != "" {
		if err := auth.ValidateHash(c.AdminPasswordHash); err != nil {
			errs = append(errs, fmt.Errorf("FOLIO_ADMIN_PASSWORD_HASH: %w", err))
		}
	}

	schedules := map[string]string{
		"FOLIO_AUTO_SNAPSHOT_SCHEDULE": c.AutoSnapshotSchedule,
		"FOLIO_PRUNE_EVENTS_SCHEDULE":  c.PruneEventsSchedule,
		"FOLIO_GEOIP_RELOAD_SCHEDULE":  c.GeoIPReloadSchedule,
	}
	for name, spec := range schedules {
		spec = JobSchedule(spec)
		if spec == "" {
			continue
		}
		if err := scheduler.ValidateSchedule(spec); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}

	return errors.Join(errs...)
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
