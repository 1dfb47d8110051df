// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"log/slog"
	"os"
	"testing"
	"time"
)

const testSecret = "test-secret-key-32-bytes-long!!!"

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("failed to set %s: %v", key, err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()
	setEnv(t, "FOLIO_SESSION_SECRET", testSecret)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.DBPath != "./data/folio.db" {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, "./data/folio.db")
	}
	if cfg.Store != "sqlite" {
		t.Errorf("Store = %q, want sqlite", cfg.Store)
	}
	if cfg.Partition != "siteData" {
		t.Errorf("Partition = %q, want siteData", cfg.Partition)
	}
	if cfg.ServerAddr() != "localhost:8080" {
		t.Errorf("ServerAddr() = %q, want localhost:8080", cfg.ServerAddr())
	}
	if !cfg.IsDevelopment() {
		t.Error("IsDevelopment() = false, want true")
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("RequestTimeout = %v, want 30s", cfg.RequestTimeout)
	}
	if cfg.AutoSnapshotSchedule != "0 3 * * *" {
		t.Errorf("AutoSnapshotSchedule = %q", cfg.AutoSnapshotSchedule)
	}
	if cfg.EventRetention() != 30*24*time.Hour {
		t.Errorf("EventRetention() = %v", cfg.EventRetention())
	}
	if cfg.GeneratorEnabled() {
		t.Error("GeneratorEnabled() = true without an API key")
	}
	if cfg.GeoIPEnabled() {
		t.Error("GeoIPEnabled() = true without a database path")
	}
}

func TestLoad_CustomValues(t *testing.T) {
	os.Clearenv()
	setEnv(t, "FOLIO_SESSION_SECRET", testSecret)
	setEnv(t, "FOLIO_ENV", "production")
	setEnv(t, "FOLIO_SERVER_HOST", "0.0.0.0")
	setEnv(t, "FOLIO_SERVER_PORT", "3000")
	setEnv(t, "FOLIO_STORE", "redis")
	setEnv(t, "FOLIO_REDIS_URL", "redis://localhost:6379/0")
	setEnv(t, "FOLIO_TRUSTED_ORIGINS", "a.example,b.example:8443")
	setEnv(t, "FOLIO_OPENAI_API_KEY", "sk-test")
	setEnv(t, "FOLIO_AUTO_SNAPSHOT_SCHEDULE", "off")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.IsDevelopment() {
		t.Error("IsDevelopment() = true in production")
	}
	if cfg.ServerAddr() != "0.0.0.0:3000" {
		t.Errorf("ServerAddr() = %q", cfg.ServerAddr())
	}
	if cfg.Store != "redis" || cfg.RedisURL != "redis://localhost:6379/0" {
		t.Errorf("Store = %q, RedisURL = %q", cfg.Store, cfg.RedisURL)
	}
	if len(cfg.TrustedOrigins) != 2 || cfg.TrustedOrigins[1] != "b.example:8443" {
		t.Errorf("TrustedOrigins = %v", cfg.TrustedOrigins)
	}
	if !cfg.GeneratorEnabled() {
		t.Error("GeneratorEnabled() = false with an API key")
	}
	if JobSchedule(cfg.AutoSnapshotSchedule) != "" {
		t.Errorf("AutoSnapshotSchedule = %q, want disabled", cfg.AutoSnapshotSchedule)
	}
}

func TestLoad_RequiredSessionSecret(t *testing.T) {
	os.Clearenv()

	if _, err := Load(); err == nil {
		t.Fatal("Load() should fail when FOLIO_SESSION_SECRET is not set")
	}
}

func TestLoad_SessionSecretTooShort(t *testing.T) {
	tests := []struct {
		name   string
		secret string
	}{
		{"empty", ""},
		{"short", "short"},
		{"31_bytes", "1234567890123456789012345678901"},
		{"known_default", "change-me-to-32-byte-secret-key!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			setEnv(t, "FOLIO_SESSION_SECRET", tt.secret)

			if _, err := Load(); err == nil {
				t.Fatalf("Load() should fail with secret %q", tt.secret)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			SessionSecret:        testSecret,
			Store:                "sqlite",
			MaxImageWidth:        1600,
			RateLimitRPS:         1,
			RateLimitBurst:       5,
			EventRetentionDays:   30,
			AutoSnapshotSchedule: "0 3 * * *",
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"memory store", func(c *Config) { c.Store = "memory" }, false},
		{"unknown store", func(c *Config) { c.Store = "indexeddb" }, true},
		{"mysql without dsn", func(c *Config) { c.Store = "mysql" }, true},
		{"mysql with dsn", func(c *Config) { c.Store = "mysql"; c.MySQLDSN = "u:p@tcp(db)/folio" }, false},
		{"redis without url", func(c *Config) { c.Store = "redis" }, true},
		{"bad schedule", func(c *Config) { c.AutoSnapshotSchedule = "nightly" }, true},
		{"disabled schedule", func(c *Config) { c.AutoSnapshotSchedule = "off" }, false},
		{"negative baseline", func(c *Config) { c.VisitBaseline = -1 }, true},
		{"bad admin hash", func(c *Config) { c.AdminPasswordHash = "admin" }, true},
		{"zero rate", func(c *Config) { c.RateLimitRPS = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_SlogLevel(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cfg := Config{LogLevel: tt.level}
			if got := cfg.SlogLevel(); got != tt.want {
				t.Errorf("SlogLevel() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestJobSchedule(t *testing.T) {
	if got := JobSchedule("off"); got != "" {
		t.Errorf("JobSchedule(off) = %q", got)
	}
	if got := JobSchedule(" OFF "); got != "" {
		t.Errorf("JobSchedule(OFF) = %q", got)
	}
	if got := JobSchedule("@daily"); got != "@daily" {
		t.Errorf("JobSchedule(@daily) = %q", got)
	}
}

func TestHasMinimumEntropy(t *testing.T) {
	if hasMinimumEntropy("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa") {
		t.Error("single character class accepted")
	}
	if !hasMinimumEntropy(testSecret) {
		t.Error("mixed secret rejected")
	}
}
