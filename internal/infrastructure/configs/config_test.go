package configs

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}

	if cfg.HTTP.Port != 8900 {
		t.Errorf("port = %d, want 8900", cfg.HTTP.Port)
	}
	if cfg.Relay.SendQueueDepth != 64 {
		t.Errorf("send queue depth = %d, want 64", cfg.Relay.SendQueueDepth)
	}
	if cfg.Auth.Required {
		t.Error("auth should be off by default")
	}
	if len(cfg.HTTP.AllowedOrigins) == 0 {
		t.Error("default allowed origins missing")
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`
http:
  port: 9100
relay:
  send_queue_depth: 128
auth:
  required: true
  secret: sekrit
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.HTTP.Port != 9100 {
		t.Errorf("port = %d, want 9100", cfg.HTTP.Port)
	}
	if cfg.Relay.SendQueueDepth != 128 {
		t.Errorf("send queue depth = %d, want 128", cfg.Relay.SendQueueDepth)
	}
	if !cfg.Auth.Required || cfg.Auth.Secret != "sekrit" {
		t.Errorf("auth = %+v", cfg.Auth)
	}
	// Untouched keys keep their defaults.
	if cfg.Relay.PongTimeout != 60*time.Second {
		t.Errorf("pong timeout = %v, want 60s", cfg.Relay.PongTimeout)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("RELAY_HTTP_PORT", "9200")
	t.Setenv("RELAY_AUTH_REQUIRED", "true")
	t.Setenv("RELAY_AUTH_SECRET", "env-secret")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}

	if cfg.HTTP.Port != 9200 {
		t.Errorf("port = %d, want 9200", cfg.HTTP.Port)
	}
	if !cfg.Auth.Required || cfg.Auth.Secret != "env-secret" {
		t.Errorf("auth = %+v", cfg.Auth)
	}
}

func TestLoad_MissingFileErrors(t *testing.T) {
	if _, err := Load("/does/not/exist.yaml"); err == nil {
		t.Fatal("expected an error for an explicit missing file")
	}
}
