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
database:
  path: "/tmp/test.db"
  wal_mode: true
  busy_timeout: 5
mqtt:
  broker:
    host: "localhost"
    port: 1883
    client_id: "test-client"
  qos: 1
api:
  host: "0.0.0.0"
  port: 8090
csg:
  base_url: "https://example.invalid/api"
  poll_interval: 30
security:
  jwt:
    secret: "test-secret-key-at-least-32-chars!"
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/tmp/test.db")
	}

	if cfg.MQTT.Broker.Host != "localhost" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "localhost")
	}

	if cfg.CSG.BaseURL != "https://example.invalid/api" {
		t.Errorf("CSG.BaseURL = %q, want %q", cfg.CSG.BaseURL, "https://example.invalid/api")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_Defaults(t *testing.T) {
	content := `
security:
  jwt:
    secret: "test-secret-key-at-least-32-chars!"
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.Path != "./data/gridstat.db" {
		t.Errorf("default Database.Path = %q", cfg.Database.Path)
	}
	if cfg.CSG.PollInterval != 60 {
		t.Errorf("default CSG.PollInterval = %d, want 60", cfg.CSG.PollInterval)
	}
	if !cfg.Recorder.Enabled {
		t.Error("recorder should be enabled by default")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	content := `
database:
  path: "/tmp/file.db"
security:
  jwt:
    secret: "test-secret-key-at-least-32-chars!"
`
	t.Setenv("GRIDSTAT_DATABASE_PATH", "/tmp/env.db")
	t.Setenv("GRIDSTAT_RECORDER_TOKEN", "env-token")

	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.Path != "/tmp/env.db" {
		t.Errorf("Database.Path = %q, want env override", cfg.Database.Path)
	}
	if cfg.Recorder.Token != "env-token" {
		t.Errorf("Recorder.Token = %q, want env override", cfg.Recorder.Token)
	}
}

func TestValidate_MissingJWTSecret(t *testing.T) {
	cfg := defaultConfig()
	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error for missing JWT secret")
	}
	if !strings.Contains(err.Error(), "security.jwt.secret") {
		t.Errorf("Validate() error = %v, want mention of jwt secret", err)
	}
}

func TestValidate_ShortJWTSecret(t *testing.T) {
	cfg := defaultConfig()
	cfg.Security.JWT.Secret = "short"
	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error for short JWT secret")
	}
}

func TestValidate_BadQoS(t *testing.T) {
	cfg := defaultConfig()
	cfg.Security.JWT.Secret = "test-secret-key-at-least-32-chars!"
	cfg.MQTT.QoS = 3
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() expected error for invalid QoS")
	}
}

func TestValidate_BadPollInterval(t *testing.T) {
	cfg := defaultConfig()
	cfg.Security.JWT.Secret = "test-secret-key-at-least-32-chars!"
	cfg.CSG.PollInterval = 0
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() expected error for zero poll interval")
	}
}
