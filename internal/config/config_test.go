package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadParsesSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
server:
  port: "9090"
  cors_origins: ["http://localhost:3000"]
log:
  level: debug
  format: json
redis:
  addr: localhost:6379
  ttl: 5m
dataset:
  id: btw2025
  dir: ./datasets
share:
  upload_url: https://api.imgbb.com/1/upload
  api_key: from-file
  jpeg_quality: 85
`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("SHARE_API_KEY", "")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" || len(cfg.Server.CORSOrigins) != 1 {
		t.Fatalf("unexpected server section %+v", cfg.Server)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Fatalf("unexpected log section %+v", cfg.Log)
	}
	if cfg.Dataset.ID != "btw2025" || cfg.Dataset.Dir != "./datasets" {
		t.Fatalf("unexpected dataset section %+v", cfg.Dataset)
	}
	if cfg.Share.APIKey != "from-file" || cfg.Share.JPEGQuality != 85 {
		t.Fatalf("unexpected share section %+v", cfg.Share)
	}
	if got := TTLDuration(cfg.Redis.TTL, time.Minute); got != 5*time.Minute {
		t.Fatalf("expected 5m ttl, got %v", got)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("SHARE_API_KEY", "from-env")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("missing config should not fail: %v", err)
	}
	if cfg.Share.APIKey != "from-env" {
		t.Fatalf("expected env api key, got %q", cfg.Share.APIKey)
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [unclosed"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected yaml error")
	}
}

func TestTTLDurationFallback(t *testing.T) {
	if got := TTLDuration("", time.Second); got != time.Second {
		t.Fatalf("empty should fall back, got %v", got)
	}
	if got := TTLDuration("soon", time.Second); got != time.Second {
		t.Fatalf("invalid should fall back, got %v", got)
	}
}

func TestSessionLifetimeDefaults(t *testing.T) {
	var cfg Config
	if cfg.SessionTTL() != 30*time.Minute || cfg.SweepInterval() != time.Minute {
		t.Fatalf("unexpected defaults ttl=%v sweep=%v", cfg.SessionTTL(), cfg.SweepInterval())
	}

	cfg.Redis.TTL = "5m"
	if cfg.SessionTTL() != 5*time.Minute {
		t.Fatalf("expected redis ttl fallback, got %v", cfg.SessionTTL())
	}

	cfg.Session.TTL = "2h"
	cfg.Session.SweepInterval = "10s"
	if cfg.SessionTTL() != 2*time.Hour || cfg.SweepInterval() != 10*time.Second {
		t.Fatalf("session section ignored ttl=%v sweep=%v", cfg.SessionTTL(), cfg.SweepInterval())
	}
}
