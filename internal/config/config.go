// Package config loads and hot-reloads the master's runtime settings.
// The shape follows the teacher's server.Config/DefaultConfig split
// (hardcoded defaults overridable by an external source), generalized
// from CLI flags alone to a YAML file plus flags plus a live fsnotify
// watch for the handful of fields safe to change without a restart.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete set of knobs the master process needs.
type Config struct {
	Name string `yaml:"name"`

	SlaveAddr string `yaml:"slave_addr"`
	ProxyAddr string `yaml:"proxy_addr"`
	AdminAddr string `yaml:"admin_addr"`

	MaxSlaves int `yaml:"max_slaves"`

	// ReplyTimeout is loaded and defaulted but not read by any component:
	// GetReplies takes its deadline from its caller, not from this field.
	ReplyTimeout time.Duration `yaml:"reply_timeout"`

	// LogVerbosity is the one field applied on hot-reload without a
	// restart. A changed AdminAddr is reported on reload but takes effect
	// only at the next restart.
	LogVerbosity int `yaml:"log_verbosity"`
}

// DefaultConfig mirrors the teacher's DefaultConfig: every field given an
// explicit, sane value so a caller can start from it and override only
// what it needs.
func DefaultConfig() *Config {
	return &Config{
		Name:         "distmaster",
		SlaveAddr:    ":1234",
		ProxyAddr:    ":1235",
		AdminAddr:    ":8080",
		MaxSlaves:    64,
		ReplyTimeout: 10 * time.Second,
		LogVerbosity: 1,
	}
}

// Load reads a YAML file at path over top of DefaultConfig, so the file
// only needs to specify the fields it wants to override.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}
