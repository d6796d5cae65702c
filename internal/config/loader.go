// Package config provides configuration management for sweep.
//
// This file contains config loading functionality including:
// - XDG config path detection
// - TOML file parsing
// - Environment variable overrides
// - Validation
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	sweeperrors "github.com/chazuruo/sweep/internal/errors"
)

// DefaultPath returns ~/.config/sweep/config.toml, whether or not it exists.
func DefaultPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".config", "sweep", "config.toml")
}

// DetectConfigPath searches for a config file using XDG standard paths.
// Returns the first config file found, or empty string if none exists.
//
// Search order:
// 1. $XDG_CONFIG_HOME/sweep/config.toml
// 2. ~/.config/sweep/config.toml
//
// Returns empty string if no config file is found (caller should use defaults).
func DetectConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		configPath := filepath.Join(xdg, "sweep", "config.toml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
	}

	configPath := DefaultPath()
	if configPath == "" {
		return ""
	}
	if _, err := os.Stat(configPath); err == nil {
		return configPath
	}

	return ""
}

// Load loads a config from the specified path.
// If the file doesn't exist, returns an error.
// After loading, applies environment variable overrides and validates.
func Load(path string) (*Config, error) {
	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, &sweeperrors.ConfigError{Path: path, Err: sweeperrors.ErrNotFound}
	}

	// Read file contents
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &sweeperrors.ConfigError{Path: path, Err: fmt.Errorf("failed to read config file: %w", err)}
	}

	// Start with defaults
	cfg := DefaultConfig()

	// Parse TOML
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, &sweeperrors.ConfigError{Path: path, Err: fmt.Errorf("failed to parse config file: %w", err)}
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Expand tilde in paths
	expandPaths(cfg)

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, &sweeperrors.ConfigError{Path: path, Err: sweeperrors.Wrap(sweeperrors.ErrInvalid, err.Error())}
	}

	return cfg, nil
}

// LoadWithDefaults attempts to load a config from XDG standard paths.
// If no config file is found, returns a validated config with all default values.
// If a config file is found but fails to load/validate, returns an error.
func LoadWithDefaults() (*Config, error) {
	configPath := DetectConfigPath()
	if configPath == "" {
		// No config file found, return defaults
		cfg := DefaultConfig()
		applyEnvOverrides(cfg)
		expandPaths(cfg)
		if err := cfg.Validate(); err != nil {
			return nil, &sweeperrors.ConfigError{Err: sweeperrors.Wrap(sweeperrors.ErrInvalid, err.Error())}
		}
		return cfg, nil
	}

	return Load(configPath)
}

// applyEnvOverrides applies environment variable overrides to the config.
// Environment variables follow the pattern: SWEEP_<SECTION>_<FIELD>
//
// Examples:
// - SWEEP_STORE_BACKEND overrides [store].backend
// - SWEEP_STORE_SQLITE_PATH overrides [store.sqlite].path
// - SWEEP_REVIEW_GRACE_PERIOD_MS overrides [review].grace_period_ms
//
// Boolean fields: use "true"/"false" strings
func applyEnvOverrides(c *Config) {
	// Helper to lookup and apply string override
	applyString := func(key string, target *string) {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			*target = val
		}
	}

	// Helper to lookup and apply bool override
	applyBool := func(key string, target *bool) {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			switch strings.ToLower(val) {
			case "true", "1", "yes", "on":
				*target = true
			case "false", "0", "no", "off":
				*target = false
			}
		}
	}

	// Helper to lookup and apply int override
	applyInt := func(key string, target *int) {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			var i int
			if _, err := fmt.Sscanf(val, "%d", &i); err == nil {
				*target = i
			}
		}
	}

	// Store section
	applyString("SWEEP_STORE_BACKEND", &c.Store.Backend)
	applyString("SWEEP_STORE_OSASCRIPT_BINARY", &c.Store.Osascript.Binary)
	applyString("SWEEP_STORE_OSASCRIPT_SCRIPT_DIR", &c.Store.Osascript.ScriptDir)
	applyString("SWEEP_STORE_HTTP_BASE_URL", &c.Store.HTTP.BaseURL)
	applyInt("SWEEP_STORE_HTTP_TIMEOUT_MS", &c.Store.HTTP.TimeoutMS)
	applyString("SWEEP_STORE_FILE_PATH", &c.Store.File.Path)
	applyString("SWEEP_STORE_SQLITE_PATH", &c.Store.SQLite.Path)

	// Review section
	applyInt("SWEEP_REVIEW_GRACE_PERIOD_MS", &c.Review.GracePeriodMS)
	applyInt("SWEEP_REVIEW_NOTICE_TTL_MS", &c.Review.NoticeTTLMS)
	applyInt("SWEEP_REVIEW_PAGE_SIZE", &c.Review.PageSize)
	applyInt("SWEEP_REVIEW_PAGE_DELAY_MS", &c.Review.PageDelayMS)

	// Server section
	applyString("SWEEP_SERVER_ADDR", &c.Server.Addr)

	// Log section
	applyString("SWEEP_LOG_PATH", &c.Log.Path)
	applyString("SWEEP_LOG_LEVEL", &c.Log.Level)

	// TUI section
	applyBool("SWEEP_TUI_SHOW_HELP", &c.TUI.ShowHelp)
}

// expandPaths expands ~ to the home directory in every path setting.
func expandPaths(c *Config) {
	for _, p := range []*string{
		&c.Store.Osascript.ScriptDir,
		&c.Store.File.Path,
		&c.Store.SQLite.Path,
		&c.Log.Path,
	} {
		*p = ExpandHome(*p)
	}
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if strings.HasPrefix(path, "~/") || path == "~" {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(homeDir, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
