// Package config provides configuration management for sweep.
//
// The configuration is stored in TOML format and supports validation
// and default values for all fields.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config is the top-level configuration struct for sweep.
// It contains all configuration sections as embedded structs.
type Config struct {
	Store  StoreConfig  `toml:"store"`
	Review ReviewConfig `toml:"review"`
	Server ServerConfig `toml:"server"`
	Log    LogConfig    `toml:"log"`
	TUI    TUIConfig    `toml:"tui"`
}

// StoreConfig selects and configures the contact store backend.
type StoreConfig struct {
	// Backend is the store implementation.
	// Valid values: "osascript", "http", "file", "sqlite".
	Backend string `toml:"backend"`

	Osascript OsascriptConfig `toml:"osascript"`
	HTTP      HTTPConfig      `toml:"http"`
	File      FileConfig      `toml:"file"`
	SQLite    SQLiteConfig    `toml:"sqlite"`
}

// OsascriptConfig configures the native address book backend.
type OsascriptConfig struct {
	// Binary is the osascript executable (default: "osascript").
	Binary string `toml:"binary"`

	// ScriptDir holds get_contacts.scpt, update_contact.scpt and delete_contact.scpt.
	ScriptDir string `toml:"script_dir"`
}

// HTTPConfig configures the remote sweep server backend.
type HTTPConfig struct {
	// BaseURL is the server root, e.g. "http://localhost:8080".
	BaseURL string `toml:"base_url"`

	// TimeoutMS bounds each request.
	TimeoutMS int `toml:"timeout_ms"`
}

// FileConfig configures the YAML address book backend.
type FileConfig struct {
	Path string `toml:"path"`
}

// SQLiteConfig configures the SQLite backend.
type SQLiteConfig struct {
	Path string `toml:"path"`
}

// ReviewConfig contains review session timings.
type ReviewConfig struct {
	// GracePeriodMS is how long a requested deletion stays undoable.
	GracePeriodMS int `toml:"grace_period_ms"`

	// NoticeTTLMS is how long success and error notices stay on screen.
	NoticeTTLMS int `toml:"notice_ttl_ms"`

	// PageSize is the number of contacts requested per page.
	PageSize int `toml:"page_size"`

	// PageDelayMS is the pause between background page requests.
	PageDelayMS int `toml:"page_delay_ms"`
}

// ServerConfig contains `sweep serve` settings.
type ServerConfig struct {
	// Addr is the listen address.
	Addr string `toml:"addr"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Path is the log file. Empty disables logging.
	Path string `toml:"path"`

	// Level is the minimum level.
	// Valid values: "debug", "info", "warn", "error".
	Level string `toml:"level"`
}

// TUIConfig contains terminal UI settings.
type TUIConfig struct {
	// ShowHelp controls whether to show the full key help by default.
	ShowHelp bool `toml:"show_help"`
}

// GracePeriod returns the deletion grace period.
func (r ReviewConfig) GracePeriod() time.Duration {
	return time.Duration(r.GracePeriodMS) * time.Millisecond
}

// NoticeTTL returns how long transient notices are shown.
func (r ReviewConfig) NoticeTTL() time.Duration {
	return time.Duration(r.NoticeTTLMS) * time.Millisecond
}

// PageDelay returns the pause between background pages.
func (r ReviewConfig) PageDelay() time.Duration {
	return time.Duration(r.PageDelayMS) * time.Millisecond
}

// Timeout returns the per-request timeout.
func (h HTTPConfig) Timeout() time.Duration {
	return time.Duration(h.TimeoutMS) * time.Millisecond
}

// DefaultConfig returns a Config with all default values set.
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".local", "share", "sweep")

	return &Config{
		Store: StoreConfig{
			Backend: "osascript",
			Osascript: OsascriptConfig{
				Binary:    "osascript",
				ScriptDir: filepath.Join(dataDir, "scripts"),
			},
			HTTP: HTTPConfig{
				BaseURL:   "http://localhost:8080",
				TimeoutMS: 30000,
			},
			File: FileConfig{
				Path: filepath.Join(dataDir, "contacts.yaml"),
			},
			SQLite: SQLiteConfig{
				Path: filepath.Join(dataDir, "contacts.db"),
			},
		},
		Review: ReviewConfig{
			GracePeriodMS: 5000,
			NoticeTTLMS:   3000,
			PageSize:      100,
			PageDelayMS:   100,
		},
		Server: ServerConfig{
			Addr: "localhost:8080",
		},
		Log: LogConfig{
			Path:  filepath.Join(homeDir, ".local", "state", "sweep", "sweep.log"),
			Level: "info",
		},
		TUI: TUIConfig{
			ShowHelp: false,
		},
	}
}

// Validate checks the configuration for valid values.
// Returns a nil error if the config is valid, or an error describing the problem.
func (c *Config) Validate() error {
	// Validate Store section
	switch c.Store.Backend {
	case "osascript":
		if c.Store.Osascript.Binary == "" {
			return fmt.Errorf("store.osascript.binary cannot be empty")
		}
		if c.Store.Osascript.ScriptDir == "" {
			return fmt.Errorf("store.osascript.script_dir cannot be empty")
		}
	case "http":
		if c.Store.HTTP.BaseURL == "" {
			return fmt.Errorf("store.http.base_url cannot be empty")
		}
		if c.Store.HTTP.TimeoutMS < 0 {
			return fmt.Errorf("store.http.timeout_ms must be >= 0; got %d", c.Store.HTTP.TimeoutMS)
		}
	case "file":
		if c.Store.File.Path == "" {
			return fmt.Errorf("store.file.path cannot be empty")
		}
	case "sqlite":
		if c.Store.SQLite.Path == "" {
			return fmt.Errorf("store.sqlite.path cannot be empty")
		}
	default:
		return fmt.Errorf("store.backend must be one of: osascript, http, file, sqlite; got %q", c.Store.Backend)
	}

	// Validate Review section
	if c.Review.GracePeriodMS < 0 {
		return fmt.Errorf("review.grace_period_ms must be >= 0; got %d", c.Review.GracePeriodMS)
	}
	if c.Review.NoticeTTLMS < 0 {
		return fmt.Errorf("review.notice_ttl_ms must be >= 0; got %d", c.Review.NoticeTTLMS)
	}
	if c.Review.PageSize < 1 {
		return fmt.Errorf("review.page_size must be >= 1; got %d", c.Review.PageSize)
	}
	if c.Review.PageDelayMS < 0 {
		return fmt.Errorf("review.page_delay_ms must be >= 0; got %d", c.Review.PageDelayMS)
	}

	// Validate Server section
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr cannot be empty")
	}

	// Validate Log section
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.Log.Level] {
		return fmt.Errorf("log.level must be one of: debug, info, warn, error; got %q", c.Log.Level)
	}

	return nil
}
