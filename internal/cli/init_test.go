// Package cli provides tests for CLI commands.
package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazuruo/sweep/internal/config"
)

// TestInitNonInteractive_WritesConfig verifies that flags end up in a
// config file that loads and validates.
func TestInitNonInteractive_WritesConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "sweep", "config.toml")
	dbPath := filepath.Join(tmpDir, "contacts.db")

	opts := &InitOptions{
		Backend:     "sqlite",
		SQLitePath:  dbPath,
		GracePeriod: 2000,
		PageSize:    50,
	}

	var out bytes.Buffer
	if err := runInitNonInteractive(&out, configPath, opts); err != nil {
		t.Fatalf("runInitNonInteractive() error = %v", err)
	}
	if !strings.Contains(out.String(), configPath) {
		t.Errorf("expected config path in output, got %q", out.String())
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("config.Load() error = %v", err)
	}
	if cfg.Store.Backend != "sqlite" {
		t.Errorf("Store.Backend = %s, want sqlite", cfg.Store.Backend)
	}
	if cfg.Store.SQLite.Path != dbPath {
		t.Errorf("Store.SQLite.Path = %s, want %s", cfg.Store.SQLite.Path, dbPath)
	}
	if cfg.Review.GracePeriodMS != 2000 {
		t.Errorf("Review.GracePeriodMS = %d, want 2000", cfg.Review.GracePeriodMS)
	}
	if cfg.Review.PageSize != 50 {
		t.Errorf("Review.PageSize = %d, want 50", cfg.Review.PageSize)
	}
	if cfg.Review.NoticeTTLMS != config.DefaultConfig().Review.NoticeTTLMS {
		t.Errorf("Review.NoticeTTLMS = %d, want the default", cfg.Review.NoticeTTLMS)
	}
}

// TestInitNonInteractive_ExistingConfig verifies that init refuses to
// overwrite a config unless forced.
func TestInitNonInteractive_ExistingConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")
	if err := os.WriteFile(configPath, []byte("# mine\n"), 0644); err != nil {
		t.Fatalf("failed to seed config: %v", err)
	}

	opts := &InitOptions{Backend: "http", BaseURL: "http://mac.local:8080"}

	err := runInitNonInteractive(&bytes.Buffer{}, configPath, opts)
	if err == nil || !strings.Contains(err.Error(), "--force") {
		t.Fatalf("expected overwrite refusal mentioning --force, got %v", err)
	}
	data, _ := os.ReadFile(configPath)
	if string(data) != "# mine\n" {
		t.Errorf("existing config was modified: %q", data)
	}

	opts.Force = true
	if err := runInitNonInteractive(&bytes.Buffer{}, configPath, opts); err != nil {
		t.Fatalf("runInitNonInteractive() with --force error = %v", err)
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("config.Load() error = %v", err)
	}
	if cfg.Store.HTTP.BaseURL != "http://mac.local:8080" {
		t.Errorf("Store.HTTP.BaseURL = %s, want http://mac.local:8080", cfg.Store.HTTP.BaseURL)
	}
}

func TestInitNonInteractive_InvalidBackend(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")

	err := runInitNonInteractive(&bytes.Buffer{}, configPath, &InitOptions{Backend: "ldap"})
	if err == nil || !strings.Contains(err.Error(), "validation failed") {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, statErr := os.Stat(configPath); !os.IsNotExist(statErr) {
		t.Error("config file should not be written for an invalid backend")
	}
}
