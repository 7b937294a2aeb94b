package config

import (
	"strings"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("SESSION_KEY", "0123456789abcdef0123456789abcdef")
	t.Setenv("DB_PASSWORD", "postgres")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.Server.Port)
	}
	if cfg.Database.Driver != DriverPostgres {
		t.Fatalf("expected postgres driver, got %q", cfg.Database.Driver)
	}
	if cfg.Session.TTL != 30*time.Minute {
		t.Fatalf("expected 30m session ttl, got %v", cfg.Session.TTL)
	}
	if cfg.Redis.Enabled() {
		t.Fatal("redis should be disabled without a host")
	}
}

func TestLoadMissingJWTSecret(t *testing.T) {
	setRequired(t)
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "jwt secret") {
		t.Fatalf("expected jwt secret error, got %v", err)
	}
}

func TestLoadRejectsShortSessionKey(t *testing.T) {
	setRequired(t)
	t.Setenv("SESSION_KEY", "short")

	if _, err := Load(); err == nil {
		t.Fatal("expected session key error")
	}
}

func TestLoadSQLiteSkipsPasswordCheck(t *testing.T) {
	setRequired(t)
	t.Setenv("DB_PASSWORD", "")
	t.Setenv("DB_DRIVER", DriverSQLite)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Database.SQLitePath == "" {
		t.Fatal("expected default sqlite path")
	}
}

func TestLoadInvalidDuration(t *testing.T) {
	setRequired(t)
	t.Setenv("SESSION_TTL", "forever")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env error, got %v", err)
	}
}
