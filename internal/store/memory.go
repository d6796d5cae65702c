package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/chazuruo/sweep/internal/contacts"
	sweeperrors "github.com/chazuruo/sweep/internal/errors"
)

// Memory is an in-process Store. It backs the file store and tests.
type Memory struct {
	mu       sync.RWMutex
	contacts []contacts.Contact

	// onChange, if set, runs after every successful mutation while the
	// write lock is held.
	onChange func([]contacts.Contact) error
}

// NewMemory returns a Memory store seeded with copies of cs.
func NewMemory(cs ...contacts.Contact) *Memory {
	m := &Memory{}
	for _, c := range cs {
		m.contacts = append(m.contacts, c.Clone())
	}
	return m
}

// ListContacts implements Store.
func (m *Memory) ListContacts(ctx context.Context, offset, limit int) (contacts.Page, error) {
	if err := checkPageArgs(offset, limit); err != nil {
		return contacts.Page{}, err
	}
	if err := ctx.Err(); err != nil {
		return contacts.Page{}, &sweeperrors.StoreError{Op: "list", Err: sweeperrors.ErrCanceled}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	n := len(m.contacts)
	start, end := pageBounds(offset, limit, n)
	page := contacts.Page{
		Contacts:   make([]contacts.Contact, 0, end-start),
		TotalCount: n,
		HasMore:    end < n,
	}
	for _, c := range m.contacts[start:end] {
		page.Contacts = append(page.Contacts, c.Clone())
	}
	return page, nil
}

// UpdateContact implements Store.
func (m *Memory) UpdateContact(ctx context.Context, id string, update contacts.Update) (contacts.Result, error) {
	if err := ctx.Err(); err != nil {
		return contacts.Result{}, &sweeperrors.StoreError{Op: "update", ID: id, Err: sweeperrors.ErrCanceled}
	}
	if err := update.Validate(); err != nil {
		return contacts.Result{Success: false, Message: err.Error()}, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(id)
	if i < 0 {
		return contacts.Result{Success: false, Message: "Contact not found"}, nil
	}
	updated := m.contacts[i].Clone()
	if err := updated.Apply(update); err != nil {
		return contacts.Result{Success: false, Message: err.Error()}, nil
	}
	prev := m.contacts[i]
	m.contacts[i] = updated
	if err := m.changed(); err != nil {
		m.contacts[i] = prev
		return contacts.Result{}, &sweeperrors.StoreError{Op: "update", ID: id, Err: err}
	}
	return contacts.Result{Success: true, Message: fmt.Sprintf("Success: updated %s", updated.Name)}, nil
}

// DeleteContact implements Store.
func (m *Memory) DeleteContact(ctx context.Context, id string) (contacts.Result, error) {
	if err := ctx.Err(); err != nil {
		return contacts.Result{}, &sweeperrors.StoreError{Op: "delete", ID: id, Err: sweeperrors.ErrCanceled}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(id)
	if i < 0 {
		return contacts.Result{Success: false, Message: "Contact not found"}, nil
	}
	prev := m.contacts
	removed := m.contacts[i]
	m.contacts = append(m.contacts[:i:i], m.contacts[i+1:]...)
	if err := m.changed(); err != nil {
		m.contacts = prev
		return contacts.Result{}, &sweeperrors.StoreError{Op: "delete", ID: id, Err: err}
	}
	return contacts.Result{Success: true, Message: fmt.Sprintf("Success: deleted %s", removed.Name)}, nil
}

// Import implements Importer.
func (m *Memory) Import(ctx context.Context, cs []contacts.Contact) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, &sweeperrors.StoreError{Op: "import", Err: sweeperrors.ErrCanceled}
	}
	for _, c := range cs {
		if c.ID == "" {
			return 0, &sweeperrors.StoreError{Op: "import", Err: sweeperrors.Invalidf("contact %q has no id", c.Name)}
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	prev := append([]contacts.Contact(nil), m.contacts...)
	for _, c := range cs {
		if i := m.indexOf(c.ID); i >= 0 {
			m.contacts[i] = c.Clone()
		} else {
			m.contacts = append(m.contacts, c.Clone())
		}
	}
	if err := m.changed(); err != nil {
		m.contacts = prev
		return 0, &sweeperrors.StoreError{Op: "import", Err: err}
	}
	return len(cs), nil
}

// Snapshot returns a copy of every stored contact.
func (m *Memory) Snapshot() []contacts.Contact {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]contacts.Contact, len(m.contacts))
	for i, c := range m.contacts {
		out[i] = c.Clone()
	}
	return out
}

func (m *Memory) indexOf(id string) int {
	for i, c := range m.contacts {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (m *Memory) changed() error {
	if m.onChange == nil {
		return nil
	}
	return m.onChange(m.contacts)
}

func checkPageArgs(offset, limit int) error {
	if offset < 1 {
		return sweeperrors.Invalidf("offset must be >= 1; got %d", offset)
	}
	if limit < 1 {
		return sweeperrors.Invalidf("limit must be >= 1; got %d", limit)
	}
	return nil
}
