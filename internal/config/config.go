// Package config loads the server configuration from a YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Matchmaking MatchmakingConfig `yaml:"matchmaking"`
	Storage     StorageConfig     `yaml:"storage"`
	Log         LogConfig         `yaml:"log"`
}

type ServerConfig struct {
	Addr            string `yaml:"addr"`
	AllowOrigins    string `yaml:"allow_origins"`
	ReadBufferSize  int    `yaml:"read_buffer_size"`
	WriteBufferSize int    `yaml:"write_buffer_size"`
}

type MatchmakingConfig struct {
	IntervalMS int `yaml:"interval_ms"`
}

func (m MatchmakingConfig) Interval() time.Duration {
	return time.Duration(m.IntervalMS) * time.Millisecond
}

type StorageConfig struct {
	// Dir is the badger directory. Empty together with InMemory false disables persistence.
	Dir      string `yaml:"dir"`
	InMemory bool   `yaml:"in_memory"`
}

func (s StorageConfig) Enabled() bool {
	return s.InMemory || s.Dir != ""
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":3000",
			AllowOrigins:    "http://localhost:5173",
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		Matchmaking: MatchmakingConfig{
			IntervalMS: 1000,
		},
		Storage: StorageConfig{
			Dir: "data",
		},
		Log: LogConfig{
			Level:  "info",
			Pretty: true,
		},
	}
}

// Load reads the YAML file at path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("%w: server.addr is required", ErrInvalidConfig)
	}
	if c.Server.ReadBufferSize <= 0 || c.Server.WriteBufferSize <= 0 {
		return fmt.Errorf("%w: websocket buffer sizes must be positive", ErrInvalidConfig)
	}
	if c.Matchmaking.IntervalMS <= 0 {
		return fmt.Errorf("%w: matchmaking.interval_ms must be positive", ErrInvalidConfig)
	}
	switch c.Log.Level {
	case "trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, c.Log.Level)
	}
	return nil
}
