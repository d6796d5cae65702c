package review

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/chazuruo/sweep/internal/contacts"
	"github.com/chazuruo/sweep/internal/store"
)

// PageLoadedMsg carries one page of ListContacts.
type PageLoadedMsg struct {
	gen    int
	Offset int
	Page   contacts.Page
	Err    error
}

// Loader fetches the contact list in bounded pages. The first page is
// requested immediately; each later page waits the page delay first.
type Loader struct {
	store    store.Store
	pageSize int
	delay    time.Duration
	sleep    SleepFunc
	logger   *zap.Logger

	gen      int
	loaded   int
	total    int
	started  bool
	done     bool
	requests int
}

func newLoader(st store.Store, pageSize int, delay time.Duration, sleep SleepFunc, logger *zap.Logger) *Loader {
	return &Loader{store: st, pageSize: pageSize, delay: delay, sleep: sleep, logger: logger}
}

// Start resets progress and requests the first page. Messages from any
// earlier run are ignored afterwards.
func (l *Loader) Start() tea.Cmd {
	l.gen++
	l.loaded, l.total, l.requests = 0, 0, 0
	l.started, l.done = true, false
	return l.fetch(1, false)
}

// Done reports whether paging has finished or halted.
func (l *Loader) Done() bool {
	return l.started && l.done
}

// Total is the store's total count from the first page.
func (l *Loader) Total() int {
	return l.total
}

// Requests is the number of page requests issued in the current run.
func (l *Loader) Requests() int {
	return l.requests
}

func (l *Loader) fetch(offset int, wait bool) tea.Cmd {
	l.requests++
	gen, st, limit, delay, sleep := l.gen, l.store, l.pageSize, l.delay, l.sleep
	return func() tea.Msg {
		if wait && delay > 0 {
			if err := sleep(context.Background(), delay); err != nil {
				return PageLoadedMsg{gen: gen, Offset: offset, Err: err}
			}
		}
		page, err := st.ListContacts(context.Background(), offset, limit)
		return PageLoadedMsg{gen: gen, Offset: offset, Page: page, Err: err}
	}
}

// handle consumes a page. It returns the contacts to append, the next
// request (nil when paging stops), and an error only for a failed first
// page. stale reports a message from a superseded run.
func (l *Loader) handle(msg PageLoadedMsg) (page []contacts.Contact, next tea.Cmd, stale bool, err error) {
	if msg.gen != l.gen || l.done {
		return nil, nil, true, nil
	}
	first := msg.Offset == 1

	if msg.Err != nil {
		l.done = true
		if first {
			l.logger.Error("loading contacts failed", zap.Error(msg.Err))
			return nil, nil, false, msg.Err
		}
		l.logger.Warn("background paging halted",
			zap.Int("offset", msg.Offset),
			zap.Int("loaded", l.loaded),
			zap.Error(msg.Err))
		return nil, nil, false, nil
	}

	if first {
		l.total = msg.Page.TotalCount
	}
	l.loaded += len(msg.Page.Contacts)
	l.logger.Debug("page loaded",
		zap.Int("offset", msg.Offset),
		zap.Int("count", len(msg.Page.Contacts)),
		zap.Int("loaded", l.loaded),
		zap.Int("total", l.total))

	if !hasNextPage(msg.Page, l.loaded, l.total) {
		l.done = true
		return msg.Page.Contacts, nil, false, nil
	}
	return msg.Page.Contacts, l.fetch(msg.Offset+len(msg.Page.Contacts), true), false, nil
}

// hasNextPage decides whether paging continues. An empty page always stops
// it, since the offset could not advance.
func hasNextPage(page contacts.Page, loaded, total int) bool {
	return page.HasMore && loaded < total && len(page.Contacts) > 0
}

// LoadAll pages through the whole store synchronously with the same
// stepping rules as the interactive loader. A failure after the first page
// returns what was loaded together with the error.
func LoadAll(ctx context.Context, st store.Store, pageSize int, delay time.Duration) ([]contacts.Contact, error) {
	var all []contacts.Contact
	offset, total := 1, 0
	for {
		page, err := st.ListContacts(ctx, offset, pageSize)
		if err != nil {
			return all, err
		}
		if offset == 1 {
			total = page.TotalCount
		}
		all = append(all, page.Contacts...)
		if !hasNextPage(page, len(all), total) {
			return all, nil
		}
		offset += len(page.Contacts)
		if delay > 0 {
			if err := Sleep(ctx, delay); err != nil {
				return all, err
			}
		}
	}
}
