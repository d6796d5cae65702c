// Package review is the contact-review workflow engine: a filter engine,
// a navigation cursor, a deletion scheduler with a grace period for undo,
// and an incremental loader, orchestrated by Controller.
//
// Controller follows the Bubble Tea model. Intents mutate state and may
// return a tea.Cmd; store calls and delays run inside those commands and
// report back as messages that must be fed to Controller.Update. All state
// transitions therefore happen on the program's single event loop.
package review

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/chazuruo/sweep/internal/contacts"
	sweeperrors "github.com/chazuruo/sweep/internal/errors"
	"github.com/chazuruo/sweep/internal/store"
)

// Options tunes a Controller. Zero values take the defaults, except
// PageDelay where zero disables the delay.
type Options struct {
	GracePeriod time.Duration
	NoticeTTL   time.Duration
	PageSize    int
	PageDelay   time.Duration

	// Sleep replaces the real delay primitive in tests.
	Sleep  SleepFunc
	Logger *zap.Logger
}

// DefaultOptions returns the stock timings.
func DefaultOptions() Options {
	return Options{
		GracePeriod: 5 * time.Second,
		NoticeTTL:   3 * time.Second,
		PageSize:    100,
		PageDelay:   100 * time.Millisecond,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.GracePeriod <= 0 {
		o.GracePeriod = d.GracePeriod
	}
	if o.NoticeTTL <= 0 {
		o.NoticeTTL = d.NoticeTTL
	}
	if o.PageSize <= 0 {
		o.PageSize = d.PageSize
	}
	if o.PageDelay < 0 {
		o.PageDelay = d.PageDelay
	}
	if o.Sleep == nil {
		o.Sleep = Sleep
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// EditDoneMsg carries the store's answer to RequestEdit.
type EditDoneMsg struct {
	ContactID string
	Field     contacts.Field
	Update    contacts.Update
	Result    contacts.Result
	Err       error
}

// Controller holds one review session.
type Controller struct {
	store  store.Store
	opts   Options
	logger *zap.Logger

	collection []contacts.Contact
	cursor     Cursor
	filters    []Filter
	notes      *notices
	sched      *Scheduler
	loader     *Loader
	loading    bool
}

// New creates a Controller over st. Call Load (or Init) to fetch contacts.
func New(st store.Store, opts Options) *Controller {
	opts = opts.withDefaults()
	c := &Controller{
		store:   st,
		opts:    opts,
		logger:  opts.Logger,
		notes:   &notices{ttl: opts.NoticeTTL, sleep: opts.Sleep},
		loading: true,
	}
	c.sched = newScheduler(st, opts.GracePeriod, opts.Sleep, c.notes, opts.Logger)
	c.sched.nameOf = func(id string) (string, bool) {
		if i := c.indexOf(id); i >= 0 {
			return c.collection[i].DisplayName(), true
		}
		return "", false
	}
	c.loader = newLoader(st, opts.PageSize, opts.PageDelay, opts.Sleep, opts.Logger)
	return c
}

// Init returns the command that loads the first page.
func (c *Controller) Init() tea.Cmd {
	return c.Load()
}

// Load discards the loaded collection and starts paging from the top.
// Pending deletions and the deleted set survive a reload.
func (c *Controller) Load() tea.Cmd {
	c.collection = nil
	c.cursor = Cursor{}
	c.loading = true
	return c.loader.Start()
}

// Update applies a message produced by one of the Controller's commands.
// Messages it does not recognise are ignored.
func (c *Controller) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case PageLoadedMsg:
		return c.handlePage(msg)
	case DeletionDueMsg:
		return c.sched.due(msg.ID)
	case DeletionDoneMsg:
		changed, cmd := c.sched.done(msg)
		if changed {
			c.reconcile()
		}
		return cmd
	case BatchDoneMsg:
		changed, cmd := c.sched.batchDone(msg)
		if changed {
			c.reconcile()
		}
		return cmd
	case EditDoneMsg:
		return c.handleEdit(msg)
	case NoticeExpiredMsg:
		c.notes.remove(msg.ID)
	}
	return nil
}

func (c *Controller) handlePage(msg PageLoadedMsg) tea.Cmd {
	page, next, stale, err := c.loader.handle(msg)
	if stale {
		return nil
	}
	if msg.Offset == 1 {
		c.loading = false
	}
	if err != nil {
		return c.notes.push("Error loading contacts", SeverityError)
	}
	// Later pages only append; a cursor parked on a hidden contact by a
	// jump stays there.
	settle := len(c.collection) == 0
	c.collection = append(c.collection, page...)
	if settle {
		c.reconcile()
	}
	return next
}

// Visible reports whether the contact at position i passes the filters and
// has not been deleted.
func (c *Controller) Visible(i int) bool {
	if i < 0 || i >= len(c.collection) {
		return false
	}
	ct := c.collection[i]
	return !c.sched.IsDeleted(ct.ID) && Matches(ct, c.filters)
}

// reviewable is Visible minus contacts waiting out a grace period.
func (c *Controller) reviewable(i int) bool {
	return c.Visible(i) && !c.sched.IsPending(c.collection[i].ID)
}

func (c *Controller) reconcile() {
	before := c.cursor.Index()
	c.cursor.Reconcile(len(c.collection), c.Visible)
	if after := c.cursor.Index(); after != before {
		c.logger.Debug("cursor reconciled", zap.Int("from", before), zap.Int("to", after))
	}
}

// current returns the contact under the cursor when it is visible.
func (c *Controller) current() (contacts.Contact, bool) {
	i := c.cursor.Index()
	if !c.Visible(i) {
		return contacts.Contact{}, false
	}
	return c.collection[i], true
}

// RequestDelete schedules the current contact for deletion and moves on to
// the next contact still under review. Deleted, pending or hidden contacts
// are left alone.
func (c *Controller) RequestDelete() tea.Cmd {
	ct, ok := c.current()
	if !ok {
		return nil
	}
	p, cmd := c.sched.Schedule(ct)
	if p == nil {
		return nil
	}

	n := len(c.collection)
	if i, ok := scanForward(c.cursor.Index()+1, n, c.reviewable); ok {
		c.cursor.index = i
	} else if i, ok := scanBackward(c.cursor.Index()-1, c.reviewable); ok {
		c.cursor.index = i
	}
	return cmd
}

// RequestSkip moves past the current contact without changing it.
func (c *Controller) RequestSkip() tea.Cmd {
	c.cursor.Next(len(c.collection), c.Visible)
	return nil
}

// Next moves to the next visible contact.
func (c *Controller) Next() tea.Cmd {
	c.cursor.Next(len(c.collection), c.Visible)
	return nil
}

// Previous moves to the previous visible contact.
func (c *Controller) Previous() tea.Cmd {
	c.cursor.Previous(c.Visible)
	return nil
}

// JumpTo moves to the 1-based position n without checking visibility; a
// hidden target shows as a placeholder. An out-of-range n leaves the cursor
// unchanged and surfaces an error notification. The returned command must
// be run whether or not err is nil.
func (c *Controller) JumpTo(n int) (tea.Cmd, error) {
	if err := c.cursor.JumpTo(n, len(c.collection)); err != nil {
		return c.notes.push(fmt.Sprintf("Please enter a number between 1 and %d", len(c.collection)), SeverityError), err
	}
	return c.notes.push(fmt.Sprintf("Jumped to contact #%d", n), SeveritySuccess), nil
}

// RequestEdit sends a one-field update for the current contact. index
// addresses a phone or email entry; contacts.AppendIndex adds one and the
// value contacts.DeleteSentinel removes one. Validation failures surface a
// notification and return an error without calling the store; the
// returned command must be run either way.
func (c *Controller) RequestEdit(field contacts.Field, value string, index int) (tea.Cmd, error) {
	ct, ok := c.current()
	if !ok {
		return nil, sweeperrors.Wrap(sweeperrors.ErrNotFound, "no contact selected")
	}

	value = strings.TrimSpace(value)
	if text, err := validateEdit(ct, field, value, index); err != nil {
		return c.notes.push(text, SeverityError), err
	}

	update := contacts.NewUpdate(field, value, index)
	st, id := c.store, ct.ID
	return func() tea.Msg {
		res, err := st.UpdateContact(context.Background(), id, update)
		return EditDoneMsg{ContactID: id, Field: field, Update: update, Result: res, Err: err}
	}, nil
}

// validateEdit returns the notification text and error for an edit the
// store should never see.
func validateEdit(ct contacts.Contact, field contacts.Field, value string, index int) (string, error) {
	var count int
	var what string
	switch field {
	case contacts.FieldName:
		if value == "" {
			return "Name cannot be empty", sweeperrors.Invalidf("Name cannot be empty")
		}
		return "", nil
	case contacts.FieldCompany:
		return "", nil
	case contacts.FieldPhone:
		count, what = len(ct.Phones), "Phone number"
	case contacts.FieldEmail:
		count, what = len(ct.Emails), "Email address"
	default:
		text := fmt.Sprintf("Unknown field %q", field)
		return text, sweeperrors.Invalidf("%s", text)
	}

	if value == "" {
		text := what + " cannot be empty"
		return text, sweeperrors.Invalidf("%s", text)
	}
	deleting := value == contacts.DeleteSentinel
	if (index == contacts.AppendIndex && !deleting) || (index >= 0 && index < count) {
		return "", nil
	}
	text := fmt.Sprintf("%s #%d does not exist", what, index+1)
	return text, sweeperrors.Wrap(sweeperrors.ErrOutOfRange, text)
}

func (c *Controller) handleEdit(msg EditDoneMsg) tea.Cmd {
	verb, noun := editWords(msg.Field, msg.Update)
	fields := []zap.Field{zap.String("contact_id", msg.ContactID), zap.String("field", string(msg.Field))}

	if msg.Err != nil {
		c.logger.Error("edit failed", append(fields, zap.Error(msg.Err))...)
		return c.notes.push(fmt.Sprintf("Error %s %s", verb, noun), SeverityError)
	}
	if !msg.Result.Success {
		c.logger.Warn("edit refused", append(fields, zap.String("message", msg.Result.Message))...)
		return c.notes.push(fmt.Sprintf("Error %s %s: %s", verb, noun, msg.Result.Message), SeverityError)
	}

	// The contact is re-resolved by id; the cursor may have moved since.
	if i := c.indexOf(msg.ContactID); i >= 0 {
		wasCurrent := i == c.cursor.Index() && c.Visible(i)
		if err := c.collection[i].Apply(msg.Update); err != nil {
			c.logger.Warn("confirmed edit no longer applies locally", append(fields, zap.Error(err))...)
		}
		// Only an edit that takes the current contact out of the filters
		// moves the cursor.
		if wasCurrent && !c.Visible(i) {
			c.reconcile()
		}
	}
	c.logger.Info("contact edited", fields...)
	return c.notes.push(editSuccessText(msg.Field, msg.Update), SeveritySuccess)
}

func editWords(field contacts.Field, u contacts.Update) (verb, noun string) {
	verb = "updating"
	if (u.Phone != nil && u.Phone.Value == contacts.DeleteSentinel) ||
		(u.Email != nil && u.Email.Value == contacts.DeleteSentinel) {
		verb = "deleting"
	}
	return verb, string(field)
}

func editSuccessText(field contacts.Field, u contacts.Update) string {
	switch field {
	case contacts.FieldName:
		return fmt.Sprintf("Updated name to %q", *u.Name)
	case contacts.FieldCompany:
		if *u.Company == "" {
			return "Removed company"
		}
		return fmt.Sprintf("Updated company to %q", *u.Company)
	case contacts.FieldPhone:
		return entryText("Phone number", *u.Phone)
	case contacts.FieldEmail:
		return entryText("Email address", *u.Email)
	}
	return "Contact updated"
}

func entryText(what string, e contacts.Indexed) string {
	switch {
	case e.Value == contacts.DeleteSentinel:
		return what + " deleted"
	case e.Index == contacts.AppendIndex:
		return what + " added"
	}
	return what + " updated"
}

// AddFilter appends a filter and reconciles the cursor. Empty values and
// duplicates of an active filter are rejected with a notification; the
// returned command must be run whether or not err is nil.
func (c *Controller) AddFilter(kind FilterKind, mode FilterMode, value string) (tea.Cmd, error) {
	f, err := NewFilter(kind, mode, value)
	if err != nil {
		text := "Filter value cannot be empty"
		if strings.TrimSpace(value) != "" {
			text = err.Error()
		}
		return c.notes.push(text, SeverityError), err
	}
	for _, existing := range c.filters {
		if existing.sameAs(f) {
			return c.notes.push(fmt.Sprintf("Filter already active: %s", existing), SeverityError),
				sweeperrors.Wrap(sweeperrors.ErrAlreadyExists, existing.String())
		}
	}
	c.filters = append(c.filters, f)
	c.logger.Debug("filter added", zap.String("filter_id", f.ID), zap.String("filter", f.String()))
	c.reconcile()
	return nil, nil
}

// RemoveFilter drops the filter with the given id, if present.
func (c *Controller) RemoveFilter(id string) tea.Cmd {
	for i, f := range c.filters {
		if f.ID == id {
			c.filters = append(c.filters[:i:i], c.filters[i+1:]...)
			c.reconcile()
			return nil
		}
	}
	return nil
}

// RemoveLastFilter drops the most recently added filter.
func (c *Controller) RemoveLastFilter() tea.Cmd {
	if len(c.filters) == 0 {
		return nil
	}
	return c.RemoveFilter(c.filters[len(c.filters)-1].ID)
}

// ClearFilters drops every filter.
func (c *Controller) ClearFilters() tea.Cmd {
	if len(c.filters) == 0 {
		return nil
	}
	c.filters = nil
	c.reconcile()
	return nil
}

// Undo cancels the pending deletion with the given id. An empty id cancels
// every pending deletion. The cursor does not move.
func (c *Controller) Undo(id string) tea.Cmd {
	if id == "" {
		return c.UndoAll()
	}
	_, cmd := c.sched.Cancel(id)
	return cmd
}

// UndoLatest cancels the most recently scheduled deletion.
func (c *Controller) UndoLatest() tea.Cmd {
	p, ok := c.sched.Latest()
	if !ok {
		return nil
	}
	return c.Undo(p.ID)
}

// UndoAll cancels every pending deletion.
func (c *Controller) UndoAll() tea.Cmd {
	_, cmd := c.sched.CancelAll()
	return cmd
}

// CommitPending sends every pending deletion to the store now instead of
// waiting out the grace periods.
func (c *Controller) CommitPending() tea.Cmd {
	return c.sched.CommitPending()
}

// Pending returns outstanding deletions in scheduling order.
func (c *Controller) Pending() []PendingDeletion {
	return c.sched.Pending()
}

// IsDeleted reports whether the store confirmed deleting contactID.
func (c *Controller) IsDeleted(contactID string) bool {
	return c.sched.IsDeleted(contactID)
}

// DeletedCount returns how many contacts the store confirmed deleted this
// session.
func (c *Controller) DeletedCount() int {
	return c.sched.DeletedCount()
}

// Contact returns a copy of the loaded contact with the given id.
func (c *Controller) Contact(id string) (contacts.Contact, bool) {
	if i := c.indexOf(id); i >= 0 {
		return c.collection[i].Clone(), true
	}
	return contacts.Contact{}, false
}

func (c *Controller) indexOf(id string) int {
	for i, ct := range c.collection {
		if ct.ID == id {
			return i
		}
	}
	return -1
}

// View is the read-only projection handed to the presentation layer.
type View struct {
	// Current is nil when the collection is empty or the cursor sits on a
	// hidden contact.
	Current *contacts.Contact
	// Hidden is true when the cursor sits on a filtered or deleted contact.
	Hidden bool
	// Position is the 1-based cursor position in the loaded collection.
	Position int
	// TotalCount is the store's total, or LoadedCount when unknown.
	TotalCount int
	LoadedCount int
	// VisibleCount counts contacts that pass the filters and are not deleted.
	VisibleCount int
	// RemainingCount counts loaded contacts that are not deleted.
	RemainingCount int
	// Loading is true until the first page arrives.
	Loading bool
	// Paging is true while later pages are still being fetched.
	Paging        bool
	Notifications []Notification
	Filters       []Filter
	PendingCount  int
}

// View snapshots the session.
func (c *Controller) View() View {
	v := View{
		LoadedCount:   len(c.collection),
		TotalCount:    c.loader.Total(),
		Loading:       c.loading,
		Paging:        !c.loading && c.loader.started && !c.loader.Done(),
		Notifications: c.notes.list(),
		Filters:       append([]Filter(nil), c.filters...),
		PendingCount:  len(c.sched.pending),
	}
	if v.TotalCount < v.LoadedCount {
		v.TotalCount = v.LoadedCount
	}
	for i, ct := range c.collection {
		if c.Visible(i) {
			v.VisibleCount++
		}
		if !c.sched.IsDeleted(ct.ID) {
			v.RemainingCount++
		}
	}
	if len(c.collection) == 0 {
		return v
	}
	v.Position = c.cursor.Index() + 1
	if ct, ok := c.current(); ok {
		clone := ct.Clone()
		v.Current = &clone
	} else {
		v.Hidden = true
	}
	return v
}
