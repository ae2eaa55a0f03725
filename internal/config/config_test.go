package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\"): %v", err)
	}
	if cfg.Server.Addr != ":3000" {
		t.Errorf("Addr = %q, want :3000", cfg.Server.Addr)
	}
	if cfg.Matchmaking.Interval() != time.Second {
		t.Errorf("Interval = %s, want 1s", cfg.Matchmaking.Interval())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":8080"
storage:
  in_memory: true
log:
  level: debug
  pretty: false
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
	if cfg.Server.ReadBufferSize != 1024 {
		t.Errorf("unset field lost its default: ReadBufferSize = %d", cfg.Server.ReadBufferSize)
	}
	if !cfg.Storage.InMemory || !cfg.Storage.Enabled() {
		t.Errorf("storage = %+v, want in-memory", cfg.Storage)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Pretty {
		t.Errorf("log = %+v", cfg.Log)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"log level", "log:\n  level: loud\n"},
		{"interval", "matchmaking:\n  interval_ms: 0\n"},
		{"addr", "server:\n  addr: \"\"\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.body))
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("err = %v, want ErrInvalidConfig", err)
			}
		})
	}
	if _, err := Load(writeConfig(t, "server: [")); err == nil {
		t.Fatalf("malformed YAML accepted")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("missing file accepted")
	}
}
