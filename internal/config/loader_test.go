package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var allEnv = []string{
	"SALON_HTTP_PORT",
	"SALON_DB_DRIVER",
	"SALON_DB_DSN",
	"SALON_DB_BUSY_TIMEOUT",
	"SALON_DB_MIGRATE",
	"SALON_DB_SEED",
	"SALON_ADMIN_USERNAME",
	"SALON_ADMIN_PASSWORD",
	"SALON_TOKEN_SECRET",
	"SALON_TOKEN_TTL",
	"SALON_RECEIPTS_DIR",
	"SALON_LOG_LEVEL",
	"SALON_LOG_FORMAT",
	"SALON_METRICS_ENABLED",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range allEnv {
		t.Setenv(key, "")
	}
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "salon.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoader_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("SALON_TOKEN_SECRET", "super-secret")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Fatalf("expected default HTTP port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Database.Driver != "sqlite" || cfg.Database.DSN != "salon.db" {
		t.Fatalf("unexpected default database: %+v", cfg.Database)
	}
	if cfg.Auth.TokenSecret != "super-secret" {
		t.Fatalf("expected token secret from environment, got %q", cfg.Auth.TokenSecret)
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Path != "/metrics" {
		t.Fatalf("unexpected metrics defaults: %+v", cfg.Metrics)
	}
}

func TestLoader_MissingSecret(t *testing.T) {
	clearEnv(t)

	_, err := Load("")
	if err == nil {
		t.Fatalf("expected error when required values are missing")
	}
	expected := "required configuration values are not set: auth.token_secret"
	if err.Error() != expected {
		t.Fatalf("unexpected error message: %q", err.Error())
	}
}

func TestLoader_FileThenEnvironment(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, `
[server]
port = 9090
read_timeout = "5s"

[database]
driver = "postgres"
dsn = "postgres://salon@localhost/salon?sslmode=disable"
max_open_conns = 20

[admin]
username = "admin"
password = "Admin#2025"

[auth]
token_secret = "from-file"
token_ttl = "1h"

[logging]
level = "debug"
format = "text"
`)
	t.Setenv("SALON_HTTP_PORT", "9191")
	t.Setenv("SALON_DB_SEED", "false")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Port != 9191 {
		t.Fatalf("expected environment to win over file, got port %d", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Fatalf("expected read timeout 5s, got %s", cfg.Server.ReadTimeout)
	}
	if cfg.Server.WriteTimeout != 10*time.Second {
		t.Fatalf("expected default write timeout to survive, got %s", cfg.Server.WriteTimeout)
	}
	if cfg.Database.Driver != "postgres" || cfg.Database.MaxOpenConns != 20 {
		t.Fatalf("unexpected database config: %+v", cfg.Database)
	}
	if cfg.Database.Seed {
		t.Fatalf("expected SALON_DB_SEED=false to disable seeding")
	}
	if cfg.Admin.Username != "admin" || cfg.Auth.TokenTTL != time.Hour {
		t.Fatalf("unexpected admin/auth config: %+v %+v", cfg.Admin, cfg.Auth)
	}
	if cfg.Logging.Format != "text" {
		t.Fatalf("expected text logging, got %q", cfg.Logging.Format)
	}
}

func TestLoader_InvalidValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("SALON_TOKEN_SECRET", "secret")
	t.Setenv("SALON_HTTP_PORT", "not-a-number")
	t.Setenv("SALON_DB_DRIVER", "mysql")
	t.Setenv("SALON_LOG_LEVEL", "verbose")

	_, err := Load("")
	if err == nil {
		t.Fatalf("expected invalid values to be rejected")
	}
	msg := err.Error()
	if !strings.HasPrefix(msg, "invalid configuration values: ") {
		t.Fatalf("unexpected error message: %q", msg)
	}
	for _, key := range []string{"SALON_HTTP_PORT", "database.driver", "logging.level"} {
		if !strings.Contains(msg, key) {
			t.Fatalf("expected %s in %q", key, msg)
		}
	}
}

func TestLoader_AdminPasswordRequiredWithUsername(t *testing.T) {
	clearEnv(t)
	t.Setenv("SALON_TOKEN_SECRET", "secret")
	t.Setenv("SALON_ADMIN_USERNAME", "admin")

	_, err := Load("")
	if err == nil || !strings.Contains(err.Error(), "admin.password") {
		t.Fatalf("expected admin.password to be reported, got %v", err)
	}
}

func TestLoader_MemoryDriverNeedsNoDSN(t *testing.T) {
	clearEnv(t)
	t.Setenv("SALON_TOKEN_SECRET", "secret")
	path := writeFile(t, "[database]\ndriver = \"memory\"\ndsn = \"\"\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Database.Driver != "memory" {
		t.Fatalf("expected memory driver, got %q", cfg.Database.Driver)
	}
}

func TestLoader_MissingFile(t *testing.T) {
	clearEnv(t)

	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}
