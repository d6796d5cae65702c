package store

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazuruo/sweep/internal/contacts"
	sweeperrors "github.com/chazuruo/sweep/internal/errors"
)

func TestHTTP_ListContacts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/contacts", r.URL.Path)
		assert.Equal(t, "101", r.URL.Query().Get("start"))
		assert.Equal(t, "100", r.URL.Query().Get("limit"))
		_ = json.NewEncoder(w).Encode(ListResponse{
			Contacts:   []contacts.Contact{{ID: "a", Name: "Ada"}},
			TotalCount: 101,
			Start:      101,
			Limit:      100,
			HasMore:    false,
		})
	}))
	defer srv.Close()

	page, err := NewHTTP(srv.URL+"/", time.Second).ListContacts(context.Background(), 101, 100)
	require.NoError(t, err)
	assert.Equal(t, 101, page.TotalCount)
	require.Len(t, page.Contacts, 1)
	assert.Equal(t, "Ada", page.Contacts[0].Name)
}

func TestHTTP_ListContactsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"boom"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewHTTP(srv.URL, time.Second).ListContacts(context.Background(), 1, 10)
	require.Error(t, err)
	assert.True(t, sweeperrors.IsTransport(err))
}

func TestHTTP_ListContactsRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"limit must be at most 1000"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := NewHTTP(srv.URL, time.Second).ListContacts(context.Background(), 1, 10)
	require.Error(t, err)
	assert.True(t, sweeperrors.IsStore(err))
	assert.False(t, sweeperrors.IsTransport(err))
	assert.Contains(t, err.Error(), "400")
}

func TestHTTP_UpdateSendsSparseBody(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/contacts/id%2F1", r.URL.EscapedPath())
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))
		_, _ = w.Write([]byte(`{"success":true,"message":"Success"}`))
	}))
	defer srv.Close()

	res, err := NewHTTP(srv.URL, time.Second).UpdateContact(context.Background(), "id/1",
		contacts.NewUpdate(contacts.FieldPhone, "555", 2))
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, map[string]any{"phone": "555", "phoneIndex": float64(2)}, got)
}

func TestHTTP_RefusalIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success":false,"message":"Contact not found"}`))
	}))
	defer srv.Close()

	res, err := NewHTTP(srv.URL, time.Second).DeleteContact(context.Background(), "x")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "Contact not found", res.Message)
}

func TestHTTP_GarbageBodyIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer srv.Close()

	_, err := NewHTTP(srv.URL, time.Second).DeleteContact(context.Background(), "x")
	require.Error(t, err)
	assert.True(t, sweeperrors.IsTransport(err))
}

func TestHTTP_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewHTTP(url, time.Second).DeleteContact(context.Background(), "x")
	require.Error(t, err)
	assert.True(t, sweeperrors.IsTransport(err))
}

func TestUpdateRequest_DefaultsToAppend(t *testing.T) {
	email := "new@example.com"
	u := UpdateRequest{Email: &email}.Update()
	require.NotNil(t, u.Email)
	assert.Equal(t, contacts.AppendIndex, u.Email.Index)
	assert.Nil(t, u.Phone)
}
