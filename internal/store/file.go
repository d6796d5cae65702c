package store

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/chazuruo/sweep/internal/contacts"
)

// addressBook is the on-disk layout of the file backend.
type addressBook struct {
	Contacts []contacts.Contact `yaml:"contacts"`
}

// File is a Store over a YAML address book. Every successful mutation
// rewrites the file.
type File struct {
	*Memory
	path string
}

// OpenFile loads the address book at path. A missing file is treated as an
// empty address book and created on the first mutation.
func OpenFile(path string) (*File, error) {
	book, err := readAddressBook(path)
	if err != nil {
		return nil, err
	}
	f := &File{Memory: NewMemory(book.Contacts...), path: path}
	f.Memory.onChange = f.save
	return f, nil
}

// Path returns the backing file path.
func (f *File) Path() string {
	return f.path
}

func readAddressBook(path string) (addressBook, error) {
	var book addressBook
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return book, nil
	}
	if err != nil {
		return book, fmt.Errorf("failed to read address book %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &book); err != nil {
		return book, fmt.Errorf("failed to parse address book %s: %w", path, err)
	}
	for i, c := range book.Contacts {
		if c.ID == "" {
			return book, fmt.Errorf("address book %s: contact %d has no id", path, i+1)
		}
	}
	return book, nil
}

// save writes the address book through a temp file and rename so a crash
// never leaves a truncated file behind.
func (f *File) save(cs []contacts.Contact) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(addressBook{Contacts: cs}); err != nil {
		return fmt.Errorf("failed to encode address book: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to encode address book: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create address book directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".addressbook-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to write address book: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write address book: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write address book: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("failed to replace address book: %w", err)
	}
	return nil
}
