package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazuruo/sweep/internal/config"
	"github.com/chazuruo/sweep/internal/contacts"
	sweeperrors "github.com/chazuruo/sweep/internal/errors"
)

func openTestSQLite(t *testing.T, seed ...contacts.Contact) *SQLite {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "db", "contacts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	if len(seed) > 0 {
		n, err := s.Import(context.Background(), seed)
		require.NoError(t, err)
		require.Equal(t, len(seed), n)
	}
	return s
}

func TestSQLite_ListContactsPaging(t *testing.T) {
	s := openTestSQLite(t, makeContacts(5)...)
	ctx := context.Background()

	page, err := s.ListContacts(ctx, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, page.TotalCount)
	assert.True(t, page.HasMore)
	require.Len(t, page.Contacts, 3)
	assert.Equal(t, "id-001", page.Contacts[0].ID)
	assert.Equal(t, "555 0001", page.Contacts[0].Phones[0].Number)

	page, err = s.ListContacts(ctx, 4, 3)
	require.NoError(t, err)
	assert.False(t, page.HasMore)
	require.Len(t, page.Contacts, 2)
	assert.Equal(t, "id-005", page.Contacts[1].ID)

	_, err = s.ListContacts(ctx, 0, 3)
	assert.True(t, sweeperrors.IsInvalid(err))
}

func TestSQLite_UpdateContact(t *testing.T) {
	s := openTestSQLite(t, makeContacts(1)...)
	ctx := context.Background()

	res, err := s.UpdateContact(ctx, "id-001", contacts.NewUpdate(contacts.FieldPhone, "555 9999", contacts.AppendIndex))
	require.NoError(t, err)
	require.True(t, res.Success, res.Message)

	res, err = s.UpdateContact(ctx, "id-001", contacts.NewUpdate(contacts.FieldPhone, contacts.DeleteSentinel, 0))
	require.NoError(t, err)
	require.True(t, res.Success, res.Message)

	res, err = s.UpdateContact(ctx, "id-001", contacts.NewUpdate(contacts.FieldEmail, "a@b.c", contacts.AppendIndex))
	require.NoError(t, err)
	require.True(t, res.Success, res.Message)

	res, err = s.UpdateContact(ctx, "id-001", contacts.NewUpdate(contacts.FieldName, "Renamed", 0))
	require.NoError(t, err)
	require.True(t, res.Success, res.Message)

	page, err := s.ListContacts(ctx, 1, 1)
	require.NoError(t, err)
	c := page.Contacts[0]
	assert.Equal(t, "Renamed", c.Name)
	assert.Equal(t, []contacts.Phone{{Label: "mobile", Number: "555 9999"}}, c.Phones)
	require.Len(t, c.Emails, 1)
	assert.Equal(t, "a@b.c", c.Emails[0].Address)
}

func TestSQLite_UpdateRefusals(t *testing.T) {
	s := openTestSQLite(t, makeContacts(1)...)
	ctx := context.Background()

	res, err := s.UpdateContact(ctx, "missing", contacts.NewUpdate(contacts.FieldName, "x", 0))
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "Contact not found", res.Message)

	res, err = s.UpdateContact(ctx, "id-001", contacts.NewUpdate(contacts.FieldEmail, "x@y.z", 3))
	require.NoError(t, err)
	assert.False(t, res.Success)

	res, err = s.UpdateContact(ctx, "id-001", contacts.NewUpdate(contacts.FieldName, "", 0))
	require.NoError(t, err)
	assert.False(t, res.Success)
}

func TestSQLite_DeleteContact(t *testing.T) {
	s := openTestSQLite(t, makeContacts(2)...)
	ctx := context.Background()

	res, err := s.DeleteContact(ctx, "id-001")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "Success: deleted Contact 1", res.Message)

	res, err = s.DeleteContact(ctx, "id-001")
	require.NoError(t, err)
	assert.False(t, res.Success)

	page, err := s.ListContacts(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, page.TotalCount)
	assert.Equal(t, "id-002", page.Contacts[0].ID)
}

func TestSQLite_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contacts.db")
	s, err := OpenSQLite(path)
	require.NoError(t, err)
	_, err = s.Import(context.Background(), makeContacts(3))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened, err := OpenSQLite(path)
	require.NoError(t, err)
	defer reopened.Close()
	page, err := reopened.ListContacts(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, page.TotalCount)
}

func TestSQLite_ImportRejectsMissingID(t *testing.T) {
	s := openTestSQLite(t)
	_, err := s.Import(context.Background(), []contacts.Contact{{Name: "Nobody"}})
	require.Error(t, err)
	assert.True(t, sweeperrors.IsInvalid(err))
}

func TestOpen_Backends(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig().Store

	cfg.Backend = "file"
	cfg.File.Path = filepath.Join(dir, "contacts.yaml")
	s, err := Open(cfg)
	require.NoError(t, err)
	assert.IsType(t, &File{}, s)
	assert.NoError(t, Close(s))

	cfg.Backend = "sqlite"
	cfg.SQLite.Path = filepath.Join(dir, "contacts.db")
	s, err = Open(cfg)
	require.NoError(t, err)
	assert.IsType(t, &SQLite{}, s)
	assert.NoError(t, Close(s))

	cfg.Backend = "http"
	s, err = Open(cfg)
	require.NoError(t, err)
	assert.IsType(t, &HTTP{}, s)

	cfg.Backend = "osascript"
	s, err = Open(cfg)
	require.NoError(t, err)
	assert.IsType(t, &Osascript{}, s)

	cfg.Backend = "carrier-pigeon"
	_, err = Open(cfg)
	assert.Error(t, err)
}
