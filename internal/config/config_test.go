package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Bridge.MoveHz != 20 {
		t.Errorf("MoveHz = %d, want 20", cfg.Bridge.MoveHz)
	}
	if cfg.Bridge.MoveTimeoutMs != 250 {
		t.Errorf("MoveTimeoutMs = %d, want 250", cfg.Bridge.MoveTimeoutMs)
	}
	if cfg.Bridge.CameraFPS != 10 {
		t.Errorf("CameraFPS = %d, want 10", cfg.Bridge.CameraFPS)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default() should validate: %v", err)
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bridge.yaml")
	body := []byte("bridge:\n  move_hz: 50\n  move_timeout_ms: 100\nlogging:\n  level: debug\n")
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Bridge.MoveHz != 50 {
		t.Errorf("MoveHz = %d, want 50", cfg.Bridge.MoveHz)
	}
	if cfg.Bridge.MoveTimeoutMs != 100 {
		t.Errorf("MoveTimeoutMs = %d, want 100", cfg.Bridge.MoveTimeoutMs)
	}
	// Untouched values keep defaults.
	if cfg.Bridge.CameraFPS != 10 {
		t.Errorf("CameraFPS = %d, want default 10", cfg.Bridge.CameraFPS)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("GO2_BRIDGE__MOVE_HZ", "30")
	t.Setenv("GO2_BRIDGE__MOVE_TIMEOUT_MS", "500")
	t.Setenv("GO2_BRIDGE__CMD_SUBJECT", "go2.test.cmd")
	t.Setenv("GO2_LOGGING__LEVEL", "warn")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Bridge.MoveHz != 30 {
		t.Errorf("MoveHz = %d, want 30 from env", cfg.Bridge.MoveHz)
	}
	if cfg.Bridge.MoveTimeoutMs != 500 {
		t.Errorf("MoveTimeoutMs = %d, want 500 from env", cfg.Bridge.MoveTimeoutMs)
	}
	if cfg.Bridge.CmdSubject != "go2.test.cmd" {
		t.Errorf("CmdSubject = %q, want go2.test.cmd from env", cfg.Bridge.CmdSubject)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn from env", cfg.Logging.Level)
	}
}

func TestLoad_UnsupportedFormat(t *testing.T) {
	if _, err := Load("bridge.toml"); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero move_hz", func(c *Config) { c.Bridge.MoveHz = 0 }},
		{"negative timeout", func(c *Config) { c.Bridge.MoveTimeoutMs = -1 }},
		{"zero fps", func(c *Config) { c.Bridge.CameraFPS = 0 }},
		{"empty subject", func(c *Config) { c.Bridge.CmdSubject = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
