package review

import (
	"context"
	"fmt"
	"math"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chazuruo/sweep/internal/contacts"
	"github.com/chazuruo/sweep/internal/store"
)

// SleepFunc waits for d or until ctx is done, returning ctx.Err() in the
// latter case.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the real SleepFunc.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// PendingDeletion is a delete waiting out its grace period.
type PendingDeletion struct {
	// ID is shared with the pending notification.
	ID          string
	ContactID   string
	ContactName string
	ScheduledAt time.Time

	cancel context.CancelFunc
	issued bool
}

// DeletionDueMsg fires when a grace period elapses without undo.
type DeletionDueMsg struct {
	ID string
}

// DeletionDoneMsg carries the store's answer to one scheduled delete.
type DeletionDoneMsg struct {
	ID        string
	ContactID string
	Result    contacts.Result
	Err       error
}

// BatchDoneMsg carries the answers to a CommitPending snapshot.
type BatchDoneMsg struct {
	Outcomes []DeletionDoneMsg
}

// Scheduler owns pending deletions and the set of contacts the store has
// confirmed deleted. It is driven from Controller.Update only.
type Scheduler struct {
	store  store.Store
	grace  time.Duration
	sleep  SleepFunc
	now    func() time.Time
	notes  *notices
	logger *zap.Logger

	// nameOf re-resolves a contact's current display name at commit time.
	nameOf func(contactID string) (string, bool)

	pending map[string]*PendingDeletion
	order   []string
	deleted map[string]struct{}
}

func newScheduler(st store.Store, grace time.Duration, sleep SleepFunc, notes *notices, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		store:   st,
		grace:   grace,
		sleep:   sleep,
		now:     time.Now,
		notes:   notes,
		logger:  logger,
		nameOf:  func(string) (string, bool) { return "", false },
		pending: make(map[string]*PendingDeletion),
		deleted: make(map[string]struct{}),
	}
}

// IsDeleted reports whether the store confirmed deleting contactID.
func (s *Scheduler) IsDeleted(contactID string) bool {
	_, ok := s.deleted[contactID]
	return ok
}

// IsPending reports whether contactID has a deletion inside its grace period
// or in flight.
func (s *Scheduler) IsPending(contactID string) bool {
	for _, p := range s.pending {
		if p.ContactID == contactID {
			return true
		}
	}
	return false
}

// DeletedCount returns the size of the deleted set.
func (s *Scheduler) DeletedCount() int {
	return len(s.deleted)
}

// Pending returns outstanding deletions in scheduling order.
func (s *Scheduler) Pending() []PendingDeletion {
	out := make([]PendingDeletion, 0, len(s.order))
	for _, id := range s.order {
		p := s.pending[id]
		out = append(out, PendingDeletion{
			ID:          p.ID,
			ContactID:   p.ContactID,
			ContactName: p.ContactName,
			ScheduledAt: p.ScheduledAt,
			issued:      p.issued,
		})
	}
	return out
}

// Schedule queues c for deletion after the grace period. It returns nil and
// a nil command when c is already pending or deleted.
func (s *Scheduler) Schedule(c contacts.Contact) (*PendingDeletion, tea.Cmd) {
	if s.IsDeleted(c.ID) || s.IsPending(c.ID) {
		return nil, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &PendingDeletion{
		ID:          "delete-" + uuid.NewString(),
		ContactID:   c.ID,
		ContactName: c.DisplayName(),
		ScheduledAt: s.now(),
		cancel:      cancel,
	}
	s.pending[p.ID] = p
	s.order = append(s.order, p.ID)

	s.notes.pushWithID(p.ID, fmt.Sprintf("Deleting %s in %s...", p.ContactName, graceText(s.grace)), SeverityPending)
	s.logger.Debug("deletion scheduled",
		zap.String("deletion_id", p.ID),
		zap.String("contact_id", p.ContactID),
		zap.Duration("grace", s.grace))

	id, grace, sleep := p.ID, s.grace, s.sleep
	return p, func() tea.Msg {
		if err := sleep(ctx, grace); err != nil {
			return nil
		}
		return DeletionDueMsg{ID: id}
	}
}

// Cancel undoes one pending deletion. Deletions whose store call has been
// issued can no longer be canceled.
func (s *Scheduler) Cancel(id string) (bool, tea.Cmd) {
	p, ok := s.pending[id]
	if !ok || p.issued {
		return false, nil
	}
	p.cancel()
	s.forget(id)
	s.notes.remove(id)
	s.logger.Info("deletion undone", zap.String("deletion_id", id), zap.String("contact_id", p.ContactID))
	return true, s.notes.push(fmt.Sprintf("Undone deletion of %s", s.currentName(p)), SeveritySuccess)
}

// CancelAll undoes every pending deletion that has not been issued and
// emits one aggregate notification.
func (s *Scheduler) CancelAll() (int, tea.Cmd) {
	var n int
	for _, id := range append([]string(nil), s.order...) {
		p := s.pending[id]
		if p.issued {
			continue
		}
		p.cancel()
		s.forget(id)
		s.notes.remove(id)
		n++
	}
	if n == 0 {
		return 0, nil
	}
	s.logger.Info("all pending deletions undone", zap.Int("count", n))
	return n, s.notes.push("Undone all pending deletions", SeveritySuccess)
}

// Latest returns the most recently scheduled deletion that can still be undone.
func (s *Scheduler) Latest() (PendingDeletion, bool) {
	for i := len(s.order) - 1; i >= 0; i-- {
		if p := s.pending[s.order[i]]; !p.issued {
			return *p, true
		}
	}
	return PendingDeletion{}, false
}

// due issues the store call for a deletion whose grace period elapsed.
func (s *Scheduler) due(id string) tea.Cmd {
	p, ok := s.pending[id]
	if !ok || p.issued {
		return nil
	}
	p.issued = true
	s.logger.Debug("deletion issued", zap.String("deletion_id", id), zap.String("contact_id", p.ContactID))

	st, contactID := s.store, p.ContactID
	return func() tea.Msg {
		res, err := st.DeleteContact(context.Background(), contactID)
		return DeletionDoneMsg{ID: id, ContactID: contactID, Result: res, Err: err}
	}
}

// done records the outcome of one issued deletion. It reports whether the
// deleted set changed.
func (s *Scheduler) done(msg DeletionDoneMsg) (bool, tea.Cmd) {
	p, ok := s.pending[msg.ID]
	if !ok {
		return false, nil
	}
	name := s.currentName(p)
	s.forget(msg.ID)
	s.notes.remove(msg.ID)

	fields := []zap.Field{zap.String("deletion_id", msg.ID), zap.String("contact_id", msg.ContactID)}
	switch {
	case msg.Err != nil:
		s.logger.Error("delete failed", append(fields, zap.Error(msg.Err))...)
		return false, s.notes.push(fmt.Sprintf("Error deleting %s", name), SeverityError)
	case !msg.Result.Success:
		s.logger.Warn("delete refused", append(fields, zap.String("message", msg.Result.Message))...)
		return false, s.notes.push(fmt.Sprintf("Failed to delete %s: %s", name, msg.Result.Message), SeverityError)
	}
	s.deleted[msg.ContactID] = struct{}{}
	s.logger.Info("contact deleted", fields...)
	return true, s.notes.push(fmt.Sprintf("Deleted %s", name), SeveritySuccess)
}

// CommitPending submits a snapshot of every not-yet-issued deletion now,
// stopping their timers. Each is sent to the store independently.
func (s *Scheduler) CommitPending() tea.Cmd {
	var batch []*PendingDeletion
	for _, id := range s.order {
		p := s.pending[id]
		if p.issued {
			continue
		}
		p.cancel()
		p.issued = true
		batch = append(batch, p)
	}
	if len(batch) == 0 {
		return nil
	}
	s.logger.Info("committing pending deletions", zap.Int("count", len(batch)))

	type job struct{ id, contactID string }
	jobs := make([]job, len(batch))
	for i, p := range batch {
		jobs[i] = job{p.ID, p.ContactID}
	}
	st := s.store
	return func() tea.Msg {
		outcomes := make([]DeletionDoneMsg, 0, len(jobs))
		for _, j := range jobs {
			res, err := st.DeleteContact(context.Background(), j.contactID)
			outcomes = append(outcomes, DeletionDoneMsg{ID: j.id, ContactID: j.contactID, Result: res, Err: err})
		}
		return BatchDoneMsg{Outcomes: outcomes}
	}
}

// batchDone records a CommitPending outcome with one aggregate notification.
// It reports whether the deleted set changed.
func (s *Scheduler) batchDone(msg BatchDoneMsg) (bool, tea.Cmd) {
	var attempts, successes int
	for _, o := range msg.Outcomes {
		if _, ok := s.pending[o.ID]; !ok {
			continue
		}
		attempts++
		s.forget(o.ID)
		s.notes.remove(o.ID)

		fields := []zap.Field{zap.String("deletion_id", o.ID), zap.String("contact_id", o.ContactID)}
		switch {
		case o.Err != nil:
			s.logger.Error("delete failed", append(fields, zap.Error(o.Err))...)
		case !o.Result.Success:
			s.logger.Warn("delete refused", append(fields, zap.String("message", o.Result.Message))...)
		default:
			s.deleted[o.ContactID] = struct{}{}
			successes++
			s.logger.Info("contact deleted", fields...)
		}
	}

	switch {
	case successes > 0:
		return true, s.notes.push(fmt.Sprintf("Deleted %d contact(s)", successes), SeveritySuccess)
	case attempts > 0:
		return false, s.notes.push("Failed to delete contacts", SeverityError)
	}
	return false, nil
}

func (s *Scheduler) forget(id string) {
	delete(s.pending, id)
	for i, o := range s.order {
		if o == id {
			s.order = append(s.order[:i:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *Scheduler) currentName(p *PendingDeletion) string {
	if name, ok := s.nameOf(p.ContactID); ok {
		return name
	}
	return p.ContactName
}

// graceText renders a grace period as "5 seconds" or "1 second".
func graceText(d time.Duration) string {
	secs := int(math.Round(d.Seconds()))
	if secs == 1 {
		return "1 second"
	}
	return fmt.Sprintf("%d seconds", secs)
}
