package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("missing file should fall back to defaults: %v", err)
	}
	if cfg.Billing.DailyRunTime != "02:00" {
		t.Errorf("default daily run time = %q, want 02:00", cfg.Billing.DailyRunTime)
	}
	if cfg.Cleanup.RetentionDays != 365 {
		t.Errorf("default retention days = %d, want 365", cfg.Cleanup.RetentionDays)
	}
	if !cfg.RateLimit.Enabled {
		t.Error("rate limiting should be enabled by default")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portal.yaml")
	content := `
database:
  type: postgres
  postgres:
    host: db.internal
    port: 5433
billing:
  daily_run_time: "05:30"
rate_limit:
  requests_per_minute: 5
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Database.Type != "postgres" {
		t.Errorf("database type = %q, want postgres", cfg.Database.Type)
	}
	if cfg.Database.Postgres.Host != "db.internal" || cfg.Database.Postgres.Port != 5433 {
		t.Errorf("postgres settings not applied: %+v", cfg.Database.Postgres)
	}
	if cfg.Billing.DailyRunTime != "05:30" {
		t.Errorf("daily run time = %q, want 05:30", cfg.Billing.DailyRunTime)
	}
	if cfg.RateLimit.RequestsPerMinute != 5 {
		t.Errorf("requests per minute = %d, want 5", cfg.RateLimit.RequestsPerMinute)
	}
	// fields the file does not mention keep their defaults
	if cfg.Cleanup.RetentionDays != 365 {
		t.Errorf("retention days = %d, want default 365", cfg.Cleanup.RetentionDays)
	}
}

func TestLoadConfigBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portal.yaml")
	if err := os.WriteFile(path, []byte("database: [not: valid"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected parse error for malformed yaml")
	}
}
