// Package config loads bridge configuration from an optional YAML/JSON file
// with GO2_-prefixed environment overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	kjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/teslashibe/go-go2/pkg/protocol"
)

// NATSConfig selects the broker the bridge and its peers talk over.
type NATSConfig struct {
	// URL of an external broker. Ignored when Embedded is set.
	URL string `json:"url"`

	// Embedded runs an in-process NATS server instead of dialing URL.
	Embedded bool `json:"embedded"`

	// Host/Port for the embedded server's client listener.
	Host string `json:"host"`
	Port int    `json:"port"`
}

// BridgeConfig holds the relay core's tuning values.
type BridgeConfig struct {
	// MoveHz is the velocity relay rate.
	MoveHz int `json:"move_hz"`

	// MoveTimeoutMs is the watchdog silence window before the safety stop.
	MoveTimeoutMs int `json:"move_timeout_ms"`

	// CameraFPS is the camera publisher capture rate.
	CameraFPS int `json:"camera_fps"`

	CmdSubject    string `json:"cmd_subject"`
	CameraSubject string `json:"camera_subject"`
}

// WebConfig holds the web gateway listen address.
type WebConfig struct {
	Addr string `json:"addr"`
}

// MetricsConfig holds the Prometheus endpoint settings.
type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Addr    string `json:"addr"`
}

// LoggingConfig holds root logger settings.
type LoggingConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// Config is the full bridge configuration.
type Config struct {
	NATS    NATSConfig    `json:"nats"`
	Bridge  BridgeConfig  `json:"bridge"`
	Web     WebConfig     `json:"web"`
	Metrics MetricsConfig `json:"metrics"`
	Logging LoggingConfig `json:"logging"`
}

// Default returns the configuration matching the original deployment:
// 20 Hz relay, 250 ms watchdog, 10 FPS camera.
func Default() Config {
	return Config{
		NATS: NATSConfig{
			URL:  "nats://127.0.0.1:4222",
			Host: "0.0.0.0",
			Port: 4222,
		},
		Bridge: BridgeConfig{
			MoveHz:        20,
			MoveTimeoutMs: 250,
			CameraFPS:     10,
			CmdSubject:    protocol.SubjectCommand,
			CameraSubject: protocol.SubjectCamera,
		},
		Web: WebConfig{
			Addr: ":8080",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    ":9090",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads the config file at path (may be empty for defaults only) and
// applies GO2_ environment overrides. GO2_BRIDGE__MOVE_HZ maps to
// bridge.move_hz via double-underscore nesting.
func Load(path string) (Config, error) {
	k := koanf.New(".")

	if path != "" {
		var parser koanf.Parser
		switch ext := strings.ToLower(filepath.Ext(path)); ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = kjson.Parser()
		default:
			return Config{}, fmt.Errorf("unsupported config format: %s", path)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return Config{}, fmt.Errorf("load config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("GO2_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "go2_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return Config{}, err
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the relay loops cannot run with.
func (c Config) Validate() error {
	if c.Bridge.MoveHz <= 0 {
		return fmt.Errorf("bridge.move_hz must be positive, got %d", c.Bridge.MoveHz)
	}
	if c.Bridge.MoveTimeoutMs <= 0 {
		return fmt.Errorf("bridge.move_timeout_ms must be positive, got %d", c.Bridge.MoveTimeoutMs)
	}
	if c.Bridge.CameraFPS <= 0 {
		return fmt.Errorf("bridge.camera_fps must be positive, got %d", c.Bridge.CameraFPS)
	}
	if c.Bridge.CmdSubject == "" || c.Bridge.CameraSubject == "" {
		return fmt.Errorf("bridge subjects must not be empty")
	}
	return nil
}
