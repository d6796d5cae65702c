package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestDefaultConfig verifies that default values are correctly set.
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	home, _ := os.UserHomeDir()

	tests := []struct {
		name string
		got  any
		want any
	}{
		// Store section defaults
		{"store.backend", cfg.Store.Backend, "osascript"},
		{"store.osascript.binary", cfg.Store.Osascript.Binary, "osascript"},
		{"store.osascript.script_dir", cfg.Store.Osascript.ScriptDir, filepath.Join(home, ".local", "share", "sweep", "scripts")},
		{"store.http.base_url", cfg.Store.HTTP.BaseURL, "http://localhost:8080"},
		{"store.http.timeout_ms", cfg.Store.HTTP.TimeoutMS, 30000},
		{"store.file.path", cfg.Store.File.Path, filepath.Join(home, ".local", "share", "sweep", "contacts.yaml")},
		{"store.sqlite.path", cfg.Store.SQLite.Path, filepath.Join(home, ".local", "share", "sweep", "contacts.db")},

		// Review section defaults
		{"review.grace_period_ms", cfg.Review.GracePeriodMS, 5000},
		{"review.notice_ttl_ms", cfg.Review.NoticeTTLMS, 3000},
		{"review.page_size", cfg.Review.PageSize, 100},
		{"review.page_delay_ms", cfg.Review.PageDelayMS, 100},

		// Server, log and TUI sections
		{"server.addr", cfg.Server.Addr, "localhost:8080"},
		{"log.path", cfg.Log.Path, filepath.Join(home, ".local", "state", "sweep", "sweep.log")},
		{"log.level", cfg.Log.Level, "info"},
		{"tui.show_help", cfg.TUI.ShowHelp, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestDefaultConfig_Validates(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() returned error: %v", err)
	}
}

func TestReviewDurations(t *testing.T) {
	r := DefaultConfig().Review
	if r.GracePeriod() != 5*time.Second {
		t.Errorf("GracePeriod() = %v, want 5s", r.GracePeriod())
	}
	if r.NoticeTTL() != 3*time.Second {
		t.Errorf("NoticeTTL() = %v, want 3s", r.NoticeTTL())
	}
	if r.PageDelay() != 100*time.Millisecond {
		t.Errorf("PageDelay() = %v, want 100ms", r.PageDelay())
	}
	if got := (HTTPConfig{TimeoutMS: 1500}).Timeout(); got != 1500*time.Millisecond {
		t.Errorf("Timeout() = %v, want 1.5s", got)
	}
}

// TestValidate covers each rule with a mutation of the defaults.
func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"unknown backend", func(c *Config) { c.Store.Backend = "ldap" }, "store.backend must be one of"},
		{"empty osascript binary", func(c *Config) { c.Store.Osascript.Binary = "" }, "store.osascript.binary cannot be empty"},
		{"empty script dir", func(c *Config) { c.Store.Osascript.ScriptDir = "" }, "store.osascript.script_dir cannot be empty"},
		{"empty base url", func(c *Config) {
			c.Store.Backend = "http"
			c.Store.HTTP.BaseURL = ""
		}, "store.http.base_url cannot be empty"},
		{"negative timeout", func(c *Config) {
			c.Store.Backend = "http"
			c.Store.HTTP.TimeoutMS = -1
		}, "store.http.timeout_ms must be >= 0"},
		{"empty file path", func(c *Config) {
			c.Store.Backend = "file"
			c.Store.File.Path = ""
		}, "store.file.path cannot be empty"},
		{"empty sqlite path", func(c *Config) {
			c.Store.Backend = "sqlite"
			c.Store.SQLite.Path = ""
		}, "store.sqlite.path cannot be empty"},
		{"negative grace", func(c *Config) { c.Review.GracePeriodMS = -5 }, "review.grace_period_ms must be >= 0"},
		{"negative ttl", func(c *Config) { c.Review.NoticeTTLMS = -1 }, "review.notice_ttl_ms must be >= 0"},
		{"zero page size", func(c *Config) { c.Review.PageSize = 0 }, "review.page_size must be >= 1"},
		{"negative page delay", func(c *Config) { c.Review.PageDelayMS = -1 }, "review.page_delay_ms must be >= 0"},
		{"empty addr", func(c *Config) { c.Server.Addr = "" }, "server.addr cannot be empty"},
		{"bad level", func(c *Config) { c.Log.Level = "trace" }, "log.level must be one of"},
		{"empty log path is allowed", func(c *Config) { c.Log.Path = "" }, ""},
		{"unused backend sections are not checked", func(c *Config) {
			c.Store.Backend = "file"
			c.Store.Osascript.ScriptDir = ""
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() returned unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() returned nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want it to contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}
