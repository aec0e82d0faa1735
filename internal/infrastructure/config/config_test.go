package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	content := `
site:
  id: "test-site"
database:
  path: "/tmp/test.db"
  wal_mode: true
  busy_timeout: 5
api:
  host: "0.0.0.0"
  port: 8080
auth:
  jwt_secret: "test-secret-key-at-least-32-chars!"
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Site.ID != "test-site" {
		t.Errorf("Site.ID = %q, want %q", cfg.Site.ID, "test-site")
	}
	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/tmp/test.db")
	}

	// Defaults fill unspecified sections
	if cfg.Auth.OperationTimeout != 5 {
		t.Errorf("Auth.OperationTimeout = %d, want 5", cfg.Auth.OperationTimeout)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "info")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "invalid: [yaml: content"))
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_MissingJWTSecret(t *testing.T) {
	content := `
site:
  id: "test-site"
database:
  path: "/tmp/test.db"
`
	_, err := Load(writeConfig(t, content))
	if err == nil {
		t.Fatal("Load() expected error for missing JWT secret, got nil")
	}
	if !strings.Contains(err.Error(), "jwt_secret") {
		t.Errorf("error = %v, want mention of jwt_secret", err)
	}
}

func TestLoad_ShortJWTSecret(t *testing.T) {
	content := `
site:
  id: "test-site"
database:
  path: "/tmp/test.db"
auth:
  jwt_secret: "too-short"
`
	_, err := Load(writeConfig(t, content))
	if err == nil {
		t.Error("Load() expected error for short JWT secret, got nil")
	}
}

func TestLoad_PasswordlessLoginRequiresTestFixtures(t *testing.T) {
	content := `
site:
  id: "test-site"
database:
  path: "/tmp/test.db"
auth:
  jwt_secret: "test-secret-key-at-least-32-chars!"
  allow_passwordless_login: true
`
	_, err := Load(writeConfig(t, content))
	if err == nil {
		t.Fatal("Load() expected error for passwordless login without test fixtures, got nil")
	}
	if !strings.Contains(err.Error(), "test_fixtures") {
		t.Errorf("error = %v, want mention of test_fixtures", err)
	}
}

func TestLoad_PasswordlessLoginWithTestFixtures(t *testing.T) {
	content := `
site:
  id: "test-site"
database:
  path: "/tmp/test.db"
auth:
  jwt_secret: "test-secret-key-at-least-32-chars!"
  allow_passwordless_login: true
  test_fixtures: true
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.Auth.AllowPasswordlessLogin {
		t.Error("AllowPasswordlessLogin should be true")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	content := `
site:
  id: "test-site"
database:
  path: "/tmp/test.db"
auth:
  jwt_secret: "file-secret-key-at-least-32-chars!"
`
	t.Setenv("RALLYPOINT_JWT_SECRET", "env-secret-key-at-least-32-chars!!")
	t.Setenv("RALLYPOINT_DATABASE_PATH", "/tmp/override.db")

	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Auth.JWTSecret != "env-secret-key-at-least-32-chars!!" {
		t.Errorf("Auth.JWTSecret not overridden by environment")
	}
	if cfg.Database.Path != "/tmp/override.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/tmp/override.db")
	}
}
