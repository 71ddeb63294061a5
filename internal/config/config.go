// Package config loads the tenure configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/tenure/internal/ledger"
)

// Environment variables that override the file.
const (
	EnvDatabase = "TENURE_DB"
	EnvFormat   = "TENURE_FORMAT"
)

// Config holds the user settings.
type Config struct {
	// Database is the path of the SQLite file holding the record list.
	Database string `yaml:"database" json:"database"`

	// Format is the default output format, "text" or "json".
	Format string `yaml:"format" json:"format"`

	Verbose bool `yaml:"verbose" json:"verbose"`

	// Key is the storage key the record list is saved under.
	Key string `yaml:"key" json:"key"`
}

// DefaultConfig returns the settings used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Database: DefaultDatabasePath(),
		Format:   "text",
		Key:      ledger.DefaultKey,
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/tenure/config.yaml, falling back to
// ~/.config/tenure/config.yaml.
func DefaultPath() string {
	return filepath.Join(xdgDir("XDG_CONFIG_HOME", ".config"), "tenure", "config.yaml")
}

// DefaultDatabasePath returns $XDG_DATA_HOME/tenure/tenure.db, falling back
// to ~/.local/share/tenure/tenure.db.
func DefaultDatabasePath() string {
	return filepath.Join(xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share")), "tenure", "tenure.db")
}

func xdgDir(env, fallback string) string {
	if dir := os.Getenv(env); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return fallback
	}
	return filepath.Join(home, fallback)
}

// Load reads the configuration at path. A missing file yields the defaults.
// Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if len(data) > 0 {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration as YAML, creating the directory if needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if path := os.Getenv(EnvDatabase); path != "" {
		c.Database = path
	}
	if format := os.Getenv(EnvFormat); format != "" {
		c.Format = format
	}
}

// Validate checks the settings.
func (c *Config) Validate() error {
	if c.Format != "text" && c.Format != "json" {
		return fmt.Errorf("invalid format %q (valid: text, json)", c.Format)
	}
	if c.Database == "" {
		return errors.New("database path must not be empty")
	}
	if c.Key == "" {
		return errors.New("storage key must not be empty")
	}
	return nil
}
