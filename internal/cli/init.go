// Package cli provides Cobra command definitions for sweep.
package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/chazuruo/sweep/internal/config"
	"github.com/chazuruo/sweep/internal/store"
)

// InitOptions contains the options for the init command.
type InitOptions struct {
	// Scriptable/flag options for --no-tui mode
	Backend     string
	ScriptDir   string
	BaseURL     string
	FilePath    string
	SQLitePath  string
	GracePeriod int
	PageSize    int
	Force       bool
}

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	opts := &InitOptions{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize sweep configuration",
		Long: `Initialize sweep configuration.

The init command guides you through setting up your sweep configuration:
- Choose a contact store (macOS Contacts, a sweep server, a YAML file or SQLite)
- Point the store at its scripts, URL or file
- Set how long deletions stay undoable

Use --no-tui with flags for scripted setup.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := Global.ConfigPath
			if path == "" {
				path = config.DefaultPath()
			}
			if IsNoTUI() {
				return runInitNonInteractive(cmd.OutOrStdout(), path, opts)
			}
			return runInitInteractive(cmd.OutOrStdout(), path, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Backend, "backend", "", "store backend: osascript, http, file, sqlite")
	cmd.Flags().StringVar(&opts.ScriptDir, "script-dir", "", "directory holding the osascript scripts")
	cmd.Flags().StringVar(&opts.BaseURL, "base-url", "", "sweep server URL for the http backend")
	cmd.Flags().StringVar(&opts.FilePath, "file", "", "YAML address book for the file backend")
	cmd.Flags().StringVar(&opts.SQLitePath, "sqlite", "", "database path for the sqlite backend")
	cmd.Flags().IntVar(&opts.GracePeriod, "grace-period-ms", 0, "deletion grace period in milliseconds")
	cmd.Flags().IntVar(&opts.PageSize, "page-size", 0, "contacts requested per page")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "overwrite an existing config file")

	return cmd
}

// runInitInteractive runs the init wizard with TUI.
func runInitInteractive(w io.Writer, path string, opts *InitOptions) error {
	cfg := config.DefaultConfig()

	if _, err := os.Stat(path); err == nil && !opts.Force {
		overwrite := false
		if err := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("%s already exists. Overwrite?", path)).
					Value(&overwrite),
			),
		).Run(); err != nil {
			return fmt.Errorf("form error: %w", err)
		}
		if !overwrite {
			fmt.Fprintln(w, "Aborted; existing configuration kept.")
			return nil
		}
	}

	// Step 1: Store backend
	backend := cfg.Store.Backend
	if err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Contact store").
				Options(
					huh.NewOption("macOS Contacts (osascript)", string(store.BackendOsascript)),
					huh.NewOption("Remote sweep server (http)", string(store.BackendHTTP)),
					huh.NewOption("YAML address book (file)", string(store.BackendFile)),
					huh.NewOption("SQLite database (sqlite)", string(store.BackendSQLite)),
				).
				Value(&backend),
		),
	).Run(); err != nil {
		return fmt.Errorf("form error: %w", err)
	}
	opts.Backend = backend

	// Step 2: Backend location
	var field huh.Field
	switch store.Backend(backend) {
	case store.BackendOsascript:
		field = huh.NewInput().
			Title("Script directory").
			Description("Holds get_contacts.scpt, update_contact.scpt and delete_contact.scpt").
			Value(&opts.ScriptDir).Placeholder(cfg.Store.Osascript.ScriptDir)
	case store.BackendHTTP:
		field = huh.NewInput().
			Title("Server URL").
			Description("Where 'sweep serve' is listening").
			Value(&opts.BaseURL).Placeholder(cfg.Store.HTTP.BaseURL)
	case store.BackendFile:
		field = huh.NewInput().
			Title("Address book path").
			Value(&opts.FilePath).Placeholder(cfg.Store.File.Path)
	case store.BackendSQLite:
		field = huh.NewInput().
			Title("Database path").
			Value(&opts.SQLitePath).Placeholder(cfg.Store.SQLite.Path)
	}

	// Step 3: Timings
	grace := strconv.Itoa(cfg.Review.GracePeriodMS)
	if err := huh.NewForm(
		huh.NewGroup(
			field,
			huh.NewInput().
				Title("Deletion grace period (ms)").
				Description("How long a deletion can be undone before it is sent").
				Value(&grace).
				Validate(func(s string) error {
					n, err := strconv.Atoi(s)
					if err != nil || n < 0 {
						return fmt.Errorf("enter a whole number of milliseconds")
					}
					return nil
				}),
		),
	).Run(); err != nil {
		return fmt.Errorf("form error: %w", err)
	}
	opts.GracePeriod, _ = strconv.Atoi(grace)

	finalCfg := buildConfig(cfg, opts)
	if err := finalCfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if err := config.Write(path, finalCfg); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Fprintln(w, "\n✓ Configuration written successfully!")
	fmt.Fprintf(w, "  Config:  %s\n", path)
	fmt.Fprintf(w, "  Store:   %s\n", finalCfg.Store.Backend)
	fmt.Fprintf(w, "  Grace:   %s\n", finalCfg.Review.GracePeriod())
	fmt.Fprintln(w, "\nYou're ready to go! Try 'sweep review'.")

	return nil
}

// runInitNonInteractive runs init in non-TUI mode using flags.
func runInitNonInteractive(w io.Writer, path string, opts *InitOptions) error {
	if _, err := os.Stat(path); err == nil && !opts.Force {
		return fmt.Errorf("config already exists at %s; pass --force to overwrite", path)
	}

	cfg := buildConfig(config.DefaultConfig(), opts)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if err := config.Write(path, cfg); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Fprintf(w, "Configuration written to: %s\n", path)
	return nil
}

// buildConfig builds the final config from wizard inputs or flags.
func buildConfig(base *config.Config, opts *InitOptions) *config.Config {
	cfg := *base // copy defaults

	if opts.Backend != "" {
		cfg.Store.Backend = opts.Backend
	}
	if opts.ScriptDir != "" {
		cfg.Store.Osascript.ScriptDir = opts.ScriptDir
	}
	if opts.BaseURL != "" {
		cfg.Store.HTTP.BaseURL = opts.BaseURL
	}
	if opts.FilePath != "" {
		cfg.Store.File.Path = opts.FilePath
	}
	if opts.SQLitePath != "" {
		cfg.Store.SQLite.Path = opts.SQLitePath
	}
	if opts.GracePeriod > 0 {
		cfg.Review.GracePeriodMS = opts.GracePeriod
	}
	if opts.PageSize > 0 {
		cfg.Review.PageSize = opts.PageSize
	}

	return &cfg
}
