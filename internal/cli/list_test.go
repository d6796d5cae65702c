// Package cli provides tests for CLI commands.
package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazuruo/sweep/internal/config"
	"github.com/chazuruo/sweep/internal/contacts"
	"github.com/chazuruo/sweep/internal/store"
	"github.com/chazuruo/sweep/internal/testutil"
)

func listJSON(t *testing.T, opts *ListOptions) []contacts.Contact {
	t.Helper()
	return listWith(t, testutil.FileConfig(t, testutil.WriteAddressBook(t, testutil.SampleContacts()...)), opts)
}

// listWith runs list against cfg and decodes the JSON output.
func listWith(t *testing.T, cfg *config.Config, opts *ListOptions) []contacts.Contact {
	t.Helper()
	opts.Format = string(FormatJSON)

	var out bytes.Buffer
	if err := runList(context.Background(), cfg, opts, &out); err != nil {
		t.Fatalf("runList() error = %v", err)
	}
	var got []contacts.Contact
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out.String())
	}
	return got
}

func ids(cs []contacts.Contact) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.ID
	}
	return strings.Join(parts, ",")
}

func TestList_Filters(t *testing.T) {
	tests := []struct {
		name string
		opts ListOptions
		want string
	}{
		{"no filters", ListOptions{}, "a,b,c"},
		{"include text", ListOptions{Include: []string{"acme"}}, "a,c"},
		{"exclude text", ListOptions{Exclude: []string{"labs"}}, "a,b"},
		{"include and exclude", ListOptions{Include: []string{"acme"}, Exclude: []string{"young"}}, "a"},
		{"phone ignores spacing", ListOptions{Phone: []string{"5550100"}}, "a"},
		{"no phone", ListOptions{NoPhone: []string{"555"}}, "b"},
		{"missing company is empty", ListOptions{Include: []string{"missing"}}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := tt.opts
			if got := ids(listJSON(t, &opts)); got != tt.want {
				t.Errorf("ids = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestList_Table(t *testing.T) {
	cfg := testutil.FileConfig(t, testutil.WriteAddressBook(t, testutil.SampleContacts()...))

	var out bytes.Buffer
	if err := runList(context.Background(), cfg, &ListOptions{Format: "table"}, &out); err != nil {
		t.Fatalf("runList() error = %v", err)
	}
	got := out.String()
	for _, want := range []string{"NAME", "Ada Lovelace", "Mobile: 555 0100", "Work: bob@globex.test", "Total: 3 contact(s)"} {
		if !strings.Contains(got, want) {
			t.Errorf("table output missing %q:\n%s", want, got)
		}
	}

	out.Reset()
	if err := runList(context.Background(), cfg, &ListOptions{Format: "table", Include: []string{"bob"}}, &out); err != nil {
		t.Fatalf("runList() error = %v", err)
	}
	if !strings.Contains(out.String(), "Showing 1 of 3 contact(s)") {
		t.Errorf("expected filtered footer, got:\n%s", out.String())
	}
}

func TestList_EmptyStore(t *testing.T) {
	cfg := testutil.FileConfig(t, filepath.Join(testutil.TempDir(t), "missing.yaml"))

	var out bytes.Buffer
	if err := runList(context.Background(), cfg, &ListOptions{Format: "table"}, &out); err != nil {
		t.Fatalf("runList() error = %v", err)
	}
	if !strings.Contains(out.String(), "No contacts found.") {
		t.Errorf("expected empty message, got:\n%s", out.String())
	}
}

// TestList_YAMLIsAnAddressBook verifies yaml output can be opened by the
// file backend unchanged.
func TestList_YAMLIsAnAddressBook(t *testing.T) {
	cfg := testutil.FileConfig(t, testutil.WriteAddressBook(t, testutil.SampleContacts()...))

	var out bytes.Buffer
	if err := runList(context.Background(), cfg, &ListOptions{Format: "yaml", Include: []string{"acme"}}, &out); err != nil {
		t.Fatalf("runList() error = %v", err)
	}

	path := filepath.Join(testutil.TempDir(t), "export.yaml")
	if err := os.WriteFile(path, out.Bytes(), 0644); err != nil {
		t.Fatalf("failed to write export: %v", err)
	}
	f, err := store.OpenFile(path)
	if err != nil {
		t.Fatalf("store.OpenFile() error = %v", err)
	}
	got := f.Snapshot()
	if ids(got) != "a,c" {
		t.Errorf("exported ids = %q, want %q", ids(got), "a,c")
	}
	if got[0].Phones[0].Label != "_$!<Mobile>!$_" {
		t.Errorf("expected raw label preserved, got %q", got[0].Phones[0].Label)
	}
}

func TestList_Errors(t *testing.T) {
	cfg := testutil.FileConfig(t, testutil.WriteAddressBook(t, testutil.SampleContacts()...))

	err := runList(context.Background(), cfg, &ListOptions{Format: "csv"}, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "invalid format") {
		t.Errorf("expected invalid format error, got %v", err)
	}

	err = runList(context.Background(), cfg, &ListOptions{Format: "table", Include: []string{"  "}}, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "invalid filter") {
		t.Errorf("expected invalid filter error, got %v", err)
	}
}
