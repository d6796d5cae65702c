package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/chazuruo/sweep/internal/contacts"
	sweeperrors "github.com/chazuruo/sweep/internal/errors"
)

// DefaultHTTPTimeout bounds each request to a remote sweep server.
const DefaultHTTPTimeout = 30 * time.Second

// HTTP is a Store backed by a remote `sweep serve` instance.
type HTTP struct {
	baseURL string
	client  *http.Client
}

// NewHTTP creates a client for the server at baseURL.
func NewHTTP(baseURL string, timeout time.Duration) *HTTP {
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}
	return &HTTP{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// ListContacts implements Store.
func (h *HTTP) ListContacts(ctx context.Context, offset, limit int) (contacts.Page, error) {
	if err := checkPageArgs(offset, limit); err != nil {
		return contacts.Page{}, err
	}
	q := url.Values{}
	q.Set("start", strconv.Itoa(offset))
	q.Set("limit", strconv.Itoa(limit))

	resp, err := h.do(ctx, http.MethodGet, "/api/contacts?"+q.Encode(), nil)
	if err != nil {
		return contacts.Page{}, &sweeperrors.StoreError{Op: "list", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		// A 4xx is the server turning the request down, not a failure to reach it.
		kind := sweeperrors.ErrTransport
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			kind = sweeperrors.ErrStore
		}
		return contacts.Page{}, &sweeperrors.StoreError{
			Op:  "list",
			Err: sweeperrors.Wrap(kind, fmt.Sprintf("GET /api/contacts: %d %s", resp.StatusCode, strings.TrimSpace(string(body)))),
		}
	}

	var body ListResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return contacts.Page{}, &sweeperrors.StoreError{
			Op:  "list",
			Err: sweeperrors.Wrap(sweeperrors.ErrTransport, fmt.Sprintf("decode response: %v", err)),
		}
	}
	return contacts.Page{Contacts: body.Contacts, TotalCount: body.TotalCount, HasMore: body.HasMore}, nil
}

// UpdateContact implements Store.
func (h *HTTP) UpdateContact(ctx context.Context, id string, update contacts.Update) (contacts.Result, error) {
	data, err := json.Marshal(NewUpdateRequest(update))
	if err != nil {
		return contacts.Result{}, fmt.Errorf("encode body: %w", err)
	}
	return h.mutate(ctx, "update", http.MethodPatch, id, data)
}

// DeleteContact implements Store.
func (h *HTTP) DeleteContact(ctx context.Context, id string) (contacts.Result, error) {
	return h.mutate(ctx, "delete", http.MethodDelete, id, nil)
}

// mutate sends a PATCH or DELETE. The server answers refusals with a
// non-2xx status and a {success:false} body, which is not a transport error.
func (h *HTTP) mutate(ctx context.Context, op, method, id string, body []byte) (contacts.Result, error) {
	resp, err := h.do(ctx, method, "/api/contacts/"+url.PathEscape(id), body)
	if err != nil {
		return contacts.Result{}, &sweeperrors.StoreError{Op: op, ID: id, Err: err}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	var result contacts.Result
	if err := json.Unmarshal(raw, &result); err != nil || (result.Message == "" && !result.Success) {
		return contacts.Result{}, &sweeperrors.StoreError{
			Op:  op,
			ID:  id,
			Err: sweeperrors.Wrap(sweeperrors.ErrTransport, fmt.Sprintf("%s: %d %s", method, resp.StatusCode, strings.TrimSpace(string(raw)))),
		}
	}
	if resp.StatusCode >= 300 {
		result.Success = false
	}
	return result, nil
}

func (h *HTTP) do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, reader)
	if err != nil {
		return nil, sweeperrors.Wrap(sweeperrors.ErrTransport, err.Error())
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, sweeperrors.Wrap(sweeperrors.ErrCanceled, err.Error())
		}
		return nil, sweeperrors.Wrap(sweeperrors.ErrTransport, err.Error())
	}
	return resp, nil
}
