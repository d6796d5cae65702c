// Package cli provides global state and utilities for CLI commands.
package cli

import (
	"fmt"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chazuruo/sweep/internal/config"
	"github.com/chazuruo/sweep/internal/logging"
	"github.com/chazuruo/sweep/internal/store"
)

var (
	// NoTUI indicates that TUI/interactive mode should be disabled.
	// This is set by the global --no-tui flag.
	NoTUI bool

	// noTUIMutex protects NoTUI for concurrent access.
	noTUIMutex sync.RWMutex
)

// GlobalOptions holds the persistent flags shared by every command.
type GlobalOptions struct {
	ConfigPath string
	LogFile    string
	LogLevel   string
	Store      string
}

// Global is bound to the root command's persistent flags.
var Global GlobalOptions

// AddGlobalFlags adds global flags to a command.
func AddGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().BoolVar(&NoTUI, "no-tui", false,
		"disable TUI/interactive mode; use plain text or JSON output")
	cmd.PersistentFlags().StringVar(&Global.ConfigPath, "config", "",
		"config file path (default: $XDG_CONFIG_HOME/sweep/config.toml)")
	cmd.PersistentFlags().StringVar(&Global.LogFile, "log-file", "",
		"write logs to this file (\"stderr\" and \"stdout\" are accepted)")
	cmd.PersistentFlags().StringVar(&Global.LogLevel, "log-level", "",
		"minimum log level: debug, info, warn, error")
	cmd.PersistentFlags().StringVar(&Global.Store, "store", "",
		"store backend override: osascript, http, file, sqlite")
}

// IsNoTUI returns true if TUI mode is disabled.
func IsNoTUI() bool {
	noTUIMutex.RLock()
	defer noTUIMutex.RUnlock()
	return NoTUI
}

// SetNoTUI sets the NoTUI flag.
func SetNoTUI(v bool) {
	noTUIMutex.Lock()
	defer noTUIMutex.Unlock()
	NoTUI = v
}

// loadConfig loads the config named by --config, or the detected one,
// then applies the flag overrides.
func loadConfig(g GlobalOptions) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if g.ConfigPath != "" {
		cfg, err = config.Load(g.ConfigPath)
	} else {
		cfg, err = config.LoadWithDefaults()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if g.Store != "" {
		cfg.Store.Backend = g.Store
	}
	if g.LogFile != "" {
		cfg.Log.Path = g.LogFile
	}
	if g.LogLevel != "" {
		cfg.Log.Level = g.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}

// openStore opens the configured backend. The caller closes it with
// store.Close.
func openStore(cfg *config.Config) (store.Store, error) {
	st, err := store.Open(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Store.Backend, err)
	}
	return st, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	logger, err := logging.New(logging.Options{Path: cfg.Log.Path, Level: cfg.Log.Level})
	if err != nil {
		return nil, fmt.Errorf("failed to open log: %w", err)
	}
	return logger, nil
}
