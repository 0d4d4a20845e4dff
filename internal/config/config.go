// Package config loads the ScoutMCP configuration.
//
// Precedence, lowest to highest: built-in defaults, the YAML config file
// (~/.scoutmcp.yaml, overridable per invocation), SCOUTMCP_* environment
// variables. The merged result is validated before use.
//
// Only shell concerns are configurable. Search behavior (top-K, sample
// size, flush threshold, the classification chain) is fixed by contract
// and deliberately absent here.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	scouterrors "github.com/scoutmcp/scoutmcp/internal/errors"
)

// Config is the complete ScoutMCP configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server" json:"server"`
	Walk      WalkConfig      `yaml:"walk" json:"walk"`
	Telemetry TelemetryConfig `yaml:"telemetry" json:"telemetry"`
}

// ServerConfig configures the MCP server shell.
type ServerConfig struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`
	// LogFile is the log destination. Empty means the default
	// (~/.scoutmcp/logs/scoutmcp.log).
	LogFile string `yaml:"log_file" json:"log_file"`
}

// WalkConfig configures the directory walk.
type WalkConfig struct {
	// Workers is the parallel file-load worker count.
	Workers int `yaml:"workers" json:"workers"`
}

// TelemetryConfig configures local search telemetry.
type TelemetryConfig struct {
	// Enabled toggles the history store. The in-process collector is
	// always on; it holds no persistent state.
	Enabled bool `yaml:"enabled" json:"enabled"`
	// Path is the history database location. Empty means the default
	// (~/.scoutmcp/telemetry.db).
	Path string `yaml:"path" json:"path"`
}

// NewConfig returns the built-in defaults.
func NewConfig() *Config {
	return &Config{
		Server: ServerConfig{
			LogLevel: "info",
			LogFile:  "", // Empty uses the default log path
		},
		Walk: WalkConfig{
			Workers: runtime.NumCPU(),
		},
		Telemetry: TelemetryConfig{
			Enabled: true,
			Path:    "", // Empty uses the default database path
		},
	}
}

// DefaultPath returns the default config file location (~/.scoutmcp.yaml).
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".scoutmcp.yaml")
	}
	return filepath.Join(home, ".scoutmcp.yaml")
}

// Load builds the effective configuration.
//
// With an empty explicitPath the default file is loaded when present and
// silently skipped when absent. An explicit path must exist.
func Load(explicitPath string) (*Config, error) {
	cfg := NewConfig()

	path := explicitPath
	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		// Unmarshal over the defaults: absent keys keep their default,
		// present keys override it, including explicit false/zero.
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, scouterrors.New(scouterrors.ErrCodeConfigInvalid,
				fmt.Sprintf("failed to parse config file: %s", path), err)
		}
	case os.IsNotExist(err) && explicitPath == "":
		// No config file is fine - use defaults
	case os.IsNotExist(err):
		return nil, scouterrors.New(scouterrors.ErrCodeConfigNotFound,
			fmt.Sprintf("config file not found: %s", path), err).
			WithSuggestion("Check the --config path or remove the flag to use defaults.")
	default:
		return nil, scouterrors.New(scouterrors.ErrCodeConfigInvalid,
			fmt.Sprintf("failed to read config file: %s", path), err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnvOverrides applies SCOUTMCP_* environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("SCOUTMCP_LOG_LEVEL"); v != "" {
		c.Server.LogLevel = v
	}
	if v := os.Getenv("SCOUTMCP_LOG_FILE"); v != "" {
		c.Server.LogFile = v
	}
	if v := os.Getenv("SCOUTMCP_WALK_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Walk.Workers = n
		}
	}
	if v := os.Getenv("SCOUTMCP_TELEMETRY"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Telemetry.Enabled = b
		}
	}
	if v := os.Getenv("SCOUTMCP_TELEMETRY_PATH"); v != "" {
		c.Telemetry.Path = v
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Server.LogLevel)] {
		return scouterrors.ConfigError(
			fmt.Sprintf("server.log_level must be 'debug', 'info', 'warn', or 'error', got %s", c.Server.LogLevel), nil)
	}

	if c.Walk.Workers < 1 {
		return scouterrors.ConfigError(
			fmt.Sprintf("walk.workers must be at least 1, got %d", c.Walk.Workers), nil)
	}

	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return scouterrors.ConfigError("failed to marshal config", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return scouterrors.ConfigError(fmt.Sprintf("failed to write config file: %s", path), err)
	}

	return nil
}
