package review

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/chazuruo/sweep/internal/contacts"
	sweeperrors "github.com/chazuruo/sweep/internal/errors"
	"github.com/chazuruo/sweep/internal/store"
)

// instant never waits but still honours cancellation.
func instant(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}

// fakeStore wraps a memory store with call recording and injected failures.
type fakeStore struct {
	mem *store.Memory

	mu      sync.Mutex
	offsets []int
	deletes []string
	updates []string

	// pageCap limits how many contacts one list call returns.
	pageCap int
	// listErr fails list calls at the given offsets.
	listErr map[int]error
	// refuseDelete answers deletes of these ids with a refusal message.
	refuseDelete map[string]string
	// failDelete fails deletes of these ids with a transport error.
	failDelete map[string]bool
	// refuseUpdate, when set, refuses every update with this message.
	refuseUpdate string
	failUpdate   bool
}

func newFakeStore(cs ...contacts.Contact) *fakeStore {
	return &fakeStore{
		mem:          store.NewMemory(cs...),
		listErr:      map[int]error{},
		refuseDelete: map[string]string{},
		failDelete:   map[string]bool{},
	}
}

func (f *fakeStore) ListContacts(ctx context.Context, offset, limit int) (contacts.Page, error) {
	f.mu.Lock()
	f.offsets = append(f.offsets, offset)
	err := f.listErr[offset]
	if f.pageCap > 0 && limit > f.pageCap {
		limit = f.pageCap
	}
	f.mu.Unlock()
	if err != nil {
		return contacts.Page{}, err
	}
	return f.mem.ListContacts(ctx, offset, limit)
}

func (f *fakeStore) UpdateContact(ctx context.Context, id string, u contacts.Update) (contacts.Result, error) {
	f.mu.Lock()
	f.updates = append(f.updates, id)
	refuse, fail := f.refuseUpdate, f.failUpdate
	f.mu.Unlock()
	switch {
	case fail:
		return contacts.Result{}, &sweeperrors.StoreError{Op: "update", ID: id, Err: sweeperrors.ErrTransport}
	case refuse != "":
		return contacts.Result{Success: false, Message: refuse}, nil
	}
	return f.mem.UpdateContact(ctx, id, u)
}

func (f *fakeStore) DeleteContact(ctx context.Context, id string) (contacts.Result, error) {
	f.mu.Lock()
	f.deletes = append(f.deletes, id)
	refuse, fail := f.refuseDelete[id], f.failDelete[id]
	f.mu.Unlock()
	switch {
	case fail:
		return contacts.Result{}, &sweeperrors.StoreError{Op: "delete", ID: id, Err: sweeperrors.ErrTransport}
	case refuse != "":
		return contacts.Result{Success: false, Message: refuse}, nil
	}
	return f.mem.DeleteContact(ctx, id)
}

func (f *fakeStore) deleteCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deletes...)
}

func (f *fakeStore) updateCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.updates...)
}

func (f *fakeStore) listOffsets() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.offsets...)
}

func contact(id, name, company string, phones ...string) contacts.Contact {
	c := contacts.Contact{ID: id, Name: name, Company: company}
	for _, p := range phones {
		c.Phones = append(c.Phones, contacts.Phone{Label: "mobile", Number: p})
	}
	return c
}

// people returns n contacts named P1..Pn with ids p1..pn.
func people(n int) []contacts.Contact {
	out := make([]contacts.Contact, n)
	for i := range out {
		out[i] = contact(fmt.Sprintf("p%d", i+1), fmt.Sprintf("P%d", i+1), "")
	}
	return out
}

func newController(t *testing.T, st store.Store) *Controller {
	t.Helper()
	return New(st, Options{Sleep: instant, PageSize: 100})
}

// loaded returns a controller over st with every page fed through Update.
func loaded(t *testing.T, st store.Store) *Controller {
	t.Helper()
	c := newController(t, st)
	drive(t, c, c.Init())
	return c
}

// drive runs cmd and every follow-up command synchronously, feeding each
// message back into c. Notice expiry is dropped so notifications stay
// observable; use driveAll to let them expire.
func drive(t *testing.T, c *Controller, cmd tea.Cmd) {
	t.Helper()
	run(t, c, cmd, false)
}

func driveAll(t *testing.T, c *Controller, cmd tea.Cmd) {
	t.Helper()
	run(t, c, cmd, true)
}

func run(t *testing.T, c *Controller, cmd tea.Cmd, expire bool) {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		require.Less(t, steps, 10000, "command loop did not settle")
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		switch msg := next().(type) {
		case nil:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case NoticeExpiredMsg:
			if expire {
				queue = append(queue, c.Update(msg))
			}
		default:
			queue = append(queue, c.Update(msg))
		}
	}
}

func texts(v View) []string {
	out := make([]string, 0, len(v.Notifications))
	for _, n := range v.Notifications {
		out = append(out, n.Text)
	}
	return out
}

func countSeverity(v View, sev Severity) int {
	var n int
	for _, note := range v.Notifications {
		if note.Severity == sev {
			n++
		}
	}
	return n
}

func currentID(t *testing.T, c *Controller) string {
	t.Helper()
	v := c.View()
	require.NotNil(t, v.Current, "no current contact")
	return v.Current.ID
}
