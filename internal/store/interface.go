// Package store implements the contact store contract consumed by the
// review engine, with backends for the native address book (osascript),
// a remote sweep server (http), a YAML file and a SQLite database.
package store

import (
	"context"

	"github.com/chazuruo/sweep/internal/contacts"
)

// Store defines the interface for contact persistence operations.
//
// Transport failures (process or network) are returned as errors. A store
// that was reached but refused the request returns a Result with Success
// set to false and a human-readable Message.
type Store interface {
	// ListContacts returns up to limit contacts starting at the 1-based offset.
	ListContacts(ctx context.Context, offset, limit int) (contacts.Page, error)

	// UpdateContact applies a sparse update to one contact.
	UpdateContact(ctx context.Context, id string, update contacts.Update) (contacts.Result, error)

	// DeleteContact removes a contact.
	DeleteContact(ctx context.Context, id string) (contacts.Result, error)
}

// Backend names a Store implementation selectable from config.
type Backend string

const (
	BackendOsascript Backend = "osascript"
	BackendHTTP      Backend = "http"
	BackendFile      Backend = "file"
	BackendSQLite    Backend = "sqlite"
)

// Backends lists every valid backend name.
var Backends = []Backend{BackendOsascript, BackendHTTP, BackendFile, BackendSQLite}

// Importer is implemented by the local backends that can be seeded from an
// address book export.
type Importer interface {
	// Import inserts cs, replacing contacts whose id already exists, and
	// returns how many were written.
	Import(ctx context.Context, cs []contacts.Contact) (int, error)
}

// Closer is implemented by backends holding resources.
type Closer interface {
	Close() error
}

// Close releases s if it holds resources.
func Close(s Store) error {
	if c, ok := s.(Closer); ok {
		return c.Close()
	}
	return nil
}

// pageBounds converts a 1-based offset and limit into slice bounds over n items.
func pageBounds(offset, limit, n int) (start, end int) {
	start = offset - 1
	if start > n {
		start = n
	}
	end = start + limit
	if end > n {
		end = n
	}
	return start, end
}
