package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all portscope configuration.
type Config struct {
	RefreshInterval int      `yaml:"refresh_interval"`  // seconds between scans
	GracefulTimeout int      `yaml:"graceful_timeout"`  // ms to wait after SIGTERM before SIGKILL
	CommandTimeout  int      `yaml:"command_timeout"`   // ms deadline per external tool call
	Exclude         []string `yaml:"exclude"`           // command substrings to hide
	ColorEnabled    bool     `yaml:"color_enabled"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		RefreshInterval: 2,
		GracefulTimeout: 3000,
		CommandTimeout:  5000,
		Exclude:         []string{},
		ColorEnabled:    true,
	}
}

// RefreshDuration returns the refresh interval as a duration.
func (c *Config) RefreshDuration() time.Duration {
	return time.Duration(c.RefreshInterval) * time.Second
}

// GracefulDuration returns the graceful kill timeout as a duration.
func (c *Config) GracefulDuration() time.Duration {
	return time.Duration(c.GracefulTimeout) * time.Millisecond
}

// CommandDuration returns the per-command deadline as a duration.
func (c *Config) CommandDuration() time.Duration {
	return time.Duration(c.CommandTimeout) * time.Millisecond
}

// Load loads config from the given path. If path is empty, it uses the
// default location (~/.config/portscope/config.yaml). If the file does
// not exist, it returns defaults without creating the file.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
		if path == "" {
			return Default(), nil
		}
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}

	return LoadFrom(path)
}

// LoadFrom loads and parses config from the given path. Missing fields
// keep their default values.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Save marshals the config to YAML and writes it to the given path,
// creating parent directories as needed.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultPath returns the default config file path.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "portscope", "config.yaml")
}
