package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"

	"github.com/chazuruo/sweep/internal/contacts"
	sweeperrors "github.com/chazuruo/sweep/internal/errors"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// SQLite is a Store backed by a local SQLite database.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and applies
// all pending migrations.
func OpenSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1) // sqlite
	db.SetConnMaxLifetime(0)

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate %s: %w", path, err)
	}
	return &SQLite{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	source, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return err
	}
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return err
	}
	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// ListContacts implements Store.
func (s *SQLite) ListContacts(ctx context.Context, offset, limit int) (contacts.Page, error) {
	if err := checkPageArgs(offset, limit); err != nil {
		return contacts.Page{}, err
	}

	var page contacts.Page
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contacts`).Scan(&page.TotalCount); err != nil {
		return contacts.Page{}, s.storeErr("list", "", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, company FROM contacts ORDER BY seq LIMIT ? OFFSET ?`, limit, offset-1)
	if err != nil {
		return contacts.Page{}, s.storeErr("list", "", err)
	}
	for rows.Next() {
		var c contacts.Contact
		if err := rows.Scan(&c.ID, &c.Name, &c.Company); err != nil {
			rows.Close()
			return contacts.Page{}, s.storeErr("list", "", err)
		}
		page.Contacts = append(page.Contacts, c)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return contacts.Page{}, s.storeErr("list", "", err)
	}
	rows.Close()

	for i := range page.Contacts {
		if err := s.loadEntries(ctx, s.db, &page.Contacts[i]); err != nil {
			return contacts.Page{}, s.storeErr("list", page.Contacts[i].ID, err)
		}
	}
	page.HasMore = offset-1+len(page.Contacts) < page.TotalCount
	return page, nil
}

// UpdateContact implements Store.
func (s *SQLite) UpdateContact(ctx context.Context, id string, update contacts.Update) (contacts.Result, error) {
	if err := update.Validate(); err != nil {
		return contacts.Result{Success: false, Message: err.Error()}, nil
	}

	var result contacts.Result
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		c, found, err := s.getContact(ctx, tx, id)
		if err != nil || !found {
			result = contacts.Result{Success: false, Message: "Contact not found"}
			return err
		}
		if err := c.Apply(update); err != nil {
			result = contacts.Result{Success: false, Message: err.Error()}
			return nil
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE contacts SET name = ?, company = ? WHERE id = ?`, c.Name, c.Company, c.ID); err != nil {
			return err
		}
		if err := s.writeEntries(ctx, tx, c); err != nil {
			return err
		}
		result = contacts.Result{Success: true, Message: fmt.Sprintf("Success: updated %s", c.Name)}
		return nil
	})
	if err != nil {
		return contacts.Result{}, s.storeErr("update", id, err)
	}
	return result, nil
}

// DeleteContact implements Store.
func (s *SQLite) DeleteContact(ctx context.Context, id string) (contacts.Result, error) {
	var name string
	err := s.db.QueryRowContext(ctx, `SELECT name FROM contacts WHERE id = ?`, id).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return contacts.Result{Success: false, Message: "Contact not found"}, nil
	}
	if err != nil {
		return contacts.Result{}, s.storeErr("delete", id, err)
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM contacts WHERE id = ?`, id)
	if err != nil {
		return contacts.Result{}, s.storeErr("delete", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return contacts.Result{Success: false, Message: "Contact not found"}, nil
	}
	return contacts.Result{Success: true, Message: fmt.Sprintf("Success: deleted %s", name)}, nil
}

// Import implements Importer. Contacts whose id already exists are replaced.
func (s *SQLite) Import(ctx context.Context, cs []contacts.Contact) (int, error) {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		for _, c := range cs {
			if c.ID == "" {
				return sweeperrors.Invalidf("contact %q has no id", c.Name)
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO contacts (id, name, company) VALUES (?, ?, ?)
				ON CONFLICT(id) DO UPDATE SET name = excluded.name, company = excluded.company`,
				c.ID, c.Name, c.Company); err != nil {
				return err
			}
			if err := s.writeEntries(ctx, tx, c); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, s.storeErr("import", "", err)
	}
	return len(cs), nil
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *SQLite) getContact(ctx context.Context, q querier, id string) (contacts.Contact, bool, error) {
	c := contacts.Contact{ID: id}
	err := q.QueryRowContext(ctx, `SELECT name, company FROM contacts WHERE id = ?`, id).Scan(&c.Name, &c.Company)
	if errors.Is(err, sql.ErrNoRows) {
		return c, false, nil
	}
	if err != nil {
		return c, false, err
	}
	if err := s.loadEntries(ctx, q, &c); err != nil {
		return c, false, err
	}
	return c, true, nil
}

func (s *SQLite) loadEntries(ctx context.Context, q querier, c *contacts.Contact) error {
	rows, err := q.QueryContext(ctx,
		`SELECT label, number FROM phones WHERE contact_id = ? ORDER BY position`, c.ID)
	if err != nil {
		return err
	}
	for rows.Next() {
		var p contacts.Phone
		if err := rows.Scan(&p.Label, &p.Number); err != nil {
			rows.Close()
			return err
		}
		c.Phones = append(c.Phones, p)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	rows, err = q.QueryContext(ctx,
		`SELECT label, address FROM emails WHERE contact_id = ? ORDER BY position`, c.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var e contacts.Email
		if err := rows.Scan(&e.Label, &e.Address); err != nil {
			return err
		}
		c.Emails = append(c.Emails, e)
	}
	return rows.Err()
}

// writeEntries replaces the stored phones and emails of c.
func (s *SQLite) writeEntries(ctx context.Context, tx *sql.Tx, c contacts.Contact) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM phones WHERE contact_id = ?`, c.ID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM emails WHERE contact_id = ?`, c.ID); err != nil {
		return err
	}
	for i, p := range c.Phones {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO phones (contact_id, position, label, number) VALUES (?, ?, ?, ?)`,
			c.ID, i, p.Label, p.Number); err != nil {
			return err
		}
	}
	for i, e := range c.Emails {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO emails (contact_id, position, label, address) VALUES (?, ?, ?, ?)`,
			c.ID, i, e.Label, e.Address); err != nil {
			return err
		}
	}
	return nil
}

// withTx runs fn in a transaction.
func (s *SQLite) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (s *SQLite) storeErr(op, id string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &sweeperrors.StoreError{Op: op, ID: id, Err: sweeperrors.Wrap(sweeperrors.ErrCanceled, err.Error())}
	}
	if sweeperrors.IsInvalid(err) {
		return &sweeperrors.StoreError{Op: op, ID: id, Err: err}
	}
	return &sweeperrors.StoreError{Op: op, ID: id, Err: sweeperrors.Wrap(sweeperrors.ErrTransport, err.Error())}
}
