package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/chazuruo/sweep/internal/config"
)

func TestRootCommand_Subcommands(t *testing.T) {
	root := NewRootCommand("1.2.3", "abc123", "2026-01-01")

	for _, name := range []string{"review", "list", "serve", "init", "import", "version"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered (err = %v)", name, err)
		}
	}
	for _, flag := range []string{"config", "no-tui", "log-file", "log-level", "store"} {
		if root.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("global flag --%s not registered", flag)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		check func(t *testing.T, out string)
	}{
		{
			name: "default",
			args: []string{"version"},
			check: func(t *testing.T, out string) {
				if !strings.Contains(out, "sweep version 1.2.3") || !strings.Contains(out, "commit: abc123") {
					t.Errorf("unexpected output:\n%s", out)
				}
			},
		},
		{
			name: "short",
			args: []string{"version", "--short"},
			check: func(t *testing.T, out string) {
				if out != "1.2.3\n" {
					t.Errorf("output = %q, want %q", out, "1.2.3\n")
				}
			},
		},
		{
			name: "json",
			args: []string{"version", "--json"},
			check: func(t *testing.T, out string) {
				var info VersionInfo
				if err := json.Unmarshal([]byte(out), &info); err != nil {
					t.Fatalf("output is not JSON: %v", err)
				}
				if info.Version != "1.2.3" || info.Date != "2026-01-01" || info.Go == "" {
					t.Errorf("unexpected info %+v", info)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := NewRootCommand("1.2.3", "abc123", "2026-01-01")
			var out bytes.Buffer
			root.SetOut(&out)
			root.SetArgs(tt.args)
			if err := root.Execute(); err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			tt.check(t, out.String())
		})
	}
}

func TestBuildConfig_KeepsDefaults(t *testing.T) {
	opts := &InitOptions{Backend: "file", FilePath: "/tmp/book.yaml"}
	cfg := buildConfig(config.DefaultConfig(), opts)
	if cfg.Store.Backend != "file" || cfg.Store.File.Path != "/tmp/book.yaml" {
		t.Errorf("unexpected store config %+v", cfg.Store)
	}
	if cfg.Review.GracePeriodMS != 5000 {
		t.Errorf("GracePeriodMS = %d, want default 5000", cfg.Review.GracePeriodMS)
	}
}
