// ============================================================================
// actorctl - Configuration
// ============================================================================
//
// Command: cmd/actorctl
// File: config.go
// Purpose: YAML-backed configuration, mirroring the teacher's cmd/demo and
//          internal/cli config structs -- a small struct with yaml tags,
//          defaults applied before the file is read, overridable by flags.
//
// ============================================================================

package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config controls the demo's worker kind, logging, and metrics endpoint.
type Config struct {
	Worker     string `yaml:"worker"`      // "thread" or "process"
	LogLevel   string `yaml:"log_level"`   // debug, info, warn, error
	MetricsPort int   `yaml:"metrics_port"`
}

func defaultConfig() Config {
	return Config{
		Worker:      "thread",
		LogLevel:    "info",
		MetricsPort: 9090,
	}
}

func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("actorctl: reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("actorctl: parsing config %s: %w", path, err)
	}
	return cfg, nil
}
