// Package testutil provides helper functions for testing.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/chazuruo/sweep/internal/config"
	"github.com/chazuruo/sweep/internal/contacts"
)

// TempDir creates a temporary directory and registers a cleanup function.
// The directory is automatically deleted when the test completes.
func TempDir(t *testing.T) string {
	t.Helper()

	dir, err := os.MkdirTemp("", "sweep-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}

	t.Cleanup(func() {
		if err := os.RemoveAll(dir); err != nil {
			t.Errorf("failed to cleanup temp dir %s: %v", dir, err)
		}
	})

	return dir
}

// WriteAddressBook writes cs as a YAML address book in the file backend's
// layout and returns the path.
func WriteAddressBook(t *testing.T, cs ...contacts.Contact) string {
	t.Helper()

	data, err := yaml.Marshal(struct {
		Contacts []contacts.Contact `yaml:"contacts"`
	}{Contacts: cs})
	if err != nil {
		t.Fatalf("failed to encode address book: %v", err)
	}

	path := filepath.Join(TempDir(t), "contacts.yaml")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write address book: %v", err)
	}

	return path
}

// FileConfig returns a validated default config using the file backend at
// path, with logging off and no page delay.
func FileConfig(t *testing.T, path string) *config.Config {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Store.Backend = "file"
	cfg.Store.File.Path = path
	cfg.Review.PageDelayMS = 0
	cfg.Log.Path = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("invalid test config: %v", err)
	}
	return cfg
}

// SampleContacts returns a small address book with a company, a native
// phone label and an email.
func SampleContacts() []contacts.Contact {
	return []contacts.Contact{
		{ID: "a", Name: "Ada Lovelace", Company: "Acme", Phones: []contacts.Phone{{Label: "_$!<Mobile>!$_", Number: "555 0100"}}},
		{ID: "b", Name: "Bob Stone", Company: contacts.MissingValue, Emails: []contacts.Email{{Label: "work", Address: "bob@globex.test"}}},
		{ID: "c", Name: "Cy Young", Company: "Acme Labs", Phones: []contacts.Phone{{Label: "home", Number: "(555) 0199"}}},
	}
}
