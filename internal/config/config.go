package config

import (
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/NissesSenap/gridplane/internal/plane"
)

type Config struct {
	Server     Server       `yaml:"server"`
	Storage    Storage      `yaml:"storage"`
	RateLimits Limits       `yaml:"rate_limits"`
	Graph      plane.Config `yaml:"graph"`
}

type Server struct {
	Addr                   string `yaml:"addr" envconfig:"ADDR"`
	MaxSessions            int    `yaml:"max_sessions" envconfig:"MAX_SESSIONS"`
	ShutdownTimeoutSeconds int    `yaml:"shutdown_timeout_seconds" envconfig:"SHUTDOWN_TIMEOUT_SECONDS"`
}

type Storage struct {
	Path string `yaml:"path" envconfig:"STORAGE_PATH"`
}

type Limits struct {
	EventsPerSecond  float64 `yaml:"events_per_second" envconfig:"EVENTS_PER_SECOND"`
	Burst            int     `yaml:"burst" envconfig:"BURST"`
	RendersPerSecond float64 `yaml:"renders_per_second" envconfig:"RENDERS_PER_SECOND"`
	MaxConcurrent    int     `yaml:"max_concurrent" envconfig:"MAX_CONCURRENT"`
}

// ConfigPath returns the configuration file path
// Default: ~/.config/gridplane/config.yaml
func ConfigPath() string {
	if path := os.Getenv("GRIDPLANE_CONFIG"); path != "" {
		return path
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "gridplane", "config.yaml")
}

func Load() (*Config, error) {
	cfg := DefaultConfig()

	// Load from YAML file if exists
	configPath := ConfigPath()
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	// Process nested structs with the same prefix to support flat env var names
	if err := envconfig.Process("GRIDPLANE", &cfg.Server); err != nil {
		return nil, err
	}
	if err := envconfig.Process("GRIDPLANE", &cfg.Storage); err != nil {
		return nil, err
	}
	if err := envconfig.Process("GRIDPLANE", &cfg.RateLimits); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Save() error {
	configPath := ConfigPath()

	// Create directory if not exists
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}
