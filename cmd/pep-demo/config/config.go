// Package config loads the pep-demo CLI's YAML configuration: the
// PDP endpoint list, request timeout, and log level a demo Authorize
// call is built from.
package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// Config represents the pep-demo CLI configuration.
type Config struct {
	Endpoints []string `yaml:"endpoints" json:"endpoints"`
	TimeoutMS int      `yaml:"timeout_ms" json:"timeout_ms"`
	LogLevel  string   `yaml:"log_level" json:"log_level"`
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}

// SaveToFile saves configuration to a YAML file.
func SaveToFile(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// IsComplete reports whether the configuration has at least one
// endpoint configured.
func (c *Config) IsComplete() bool {
	return len(c.Endpoints) > 0
}

// Default returns the configuration pep-demo falls back to when no
// config file is given.
func Default() *Config {
	return &Config{
		Endpoints: []string{"http://localhost:8154/authz"},
		TimeoutMS: 10000,
		LogLevel:  "warn",
	}
}
