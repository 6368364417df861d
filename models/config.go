package models

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds runtime configuration for the index service.
// Values come from an optional YAML file; CLI flags override.
type Config struct {
	ReportsDir         string `yaml:"reports_dir"`
	DatabasePath       string `yaml:"database_path"`
	Backend            string `yaml:"backend"` // "memory" or "sqlite"
	ListenAddr         string `yaml:"listen_addr"`
	RefreshIntervalSec int    `yaml:"refresh_interval_seconds"`
	Watch              bool   `yaml:"watch"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		ReportsDir:         "reports",
		DatabasePath:       "reportdex.db",
		Backend:            "memory",
		ListenAddr:         ":8080",
		RefreshIntervalSec: 5,
	}
}

// LoadConfig reads a YAML config file over the defaults. A missing path
// returns the defaults unchanged.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}
