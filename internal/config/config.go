// Package config loads the application configuration from a YAML file,
// expanding ${VAR} references from the environment. Every field has a
// usable default, so running without a config file is fine.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete application configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Logging  LoggingConfig  `yaml:"logging"`
	Export   ExportConfig   `yaml:"export"`
}

// DatabaseConfig holds the SQLite database location.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// AuthConfig holds session token configuration.
type AuthConfig struct {
	// SessionSecret signs session tokens. When empty, a device-local
	// secret is generated on first login and kept in the database.
	SessionSecret string `yaml:"session_secret"`

	// SessionTTL bounds how long a login stays valid.
	SessionTTL time.Duration `yaml:"-"`

	// Raw string value for YAML unmarshaling.
	SessionTTLRaw string `yaml:"session_ttl"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// ExportConfig holds snapshot export configuration.
type ExportConfig struct {
	// Dir is where snapshot files are written by default.
	Dir string `yaml:"dir"`
}

// DefaultSessionTTL applies when the config does not set auth.session_ttl.
const DefaultSessionTTL = 12 * time.Hour

// Default returns the configuration used when no config file exists. The
// database lives under ~/.thryv and exports land in the working directory.
func Default() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return &Config{
		Database: DatabaseConfig{Path: filepath.Join(home, ".thryv", "thryv.db")},
		Auth:     AuthConfig{SessionTTL: DefaultSessionTTL},
		Logging:  LoggingConfig{Level: "info"},
		Export:   ExportConfig{Dir: "."},
	}
}

// DefaultPath is where Load looks for a config file when none is given.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".thryv", "config.yaml")
}

// Load reads the configuration file at path, or the default location when
// path is empty. A missing file at the default location is not an error;
// the defaults apply. Environment variables in the format ${VAR_NAME} are
// expanded before parsing.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expandEnvVars(string(data))), cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if err := cfg.parseDurations(); err != nil {
		return nil, err
	}
	if cfg.Database.Path == "" {
		return nil, fmt.Errorf("database.path must not be empty")
	}
	return cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding
// environment variable values. Unset variables become empty strings.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(re.FindStringSubmatch(match)[1])
	})
}

func (c *Config) parseDurations() error {
	if c.Auth.SessionTTLRaw == "" {
		return nil
	}
	ttl, err := time.ParseDuration(c.Auth.SessionTTLRaw)
	if err != nil {
		return fmt.Errorf("parsing session_ttl %q: %w", c.Auth.SessionTTLRaw, err)
	}
	c.Auth.SessionTTL = ttl
	return nil
}
