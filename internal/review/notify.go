package review

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
)

// Severity classifies a notification.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	// SeverityPending marks a deletion still inside its grace period. Its
	// id equals the PendingDeletion id so the presentation can offer undo.
	SeverityPending Severity = "pending"
)

// Notification is one user-facing status line.
type Notification struct {
	ID       string
	Text     string
	Severity Severity
}

// NoticeExpiredMsg removes a transient notification.
type NoticeExpiredMsg struct {
	ID string
}

// notices is the ordered notification stream. Entries are appended in
// the order their triggering events resolve.
type notices struct {
	items []Notification
	ttl   time.Duration
	sleep SleepFunc
}

// push appends a notification and, for transient severities, returns the
// command that expires it.
func (n *notices) push(text string, sev Severity) tea.Cmd {
	return n.pushWithID(sev.prefix()+uuid.NewString(), text, sev)
}

func (n *notices) pushWithID(id, text string, sev Severity) tea.Cmd {
	n.items = append(n.items, Notification{ID: id, Text: text, Severity: sev})
	if sev == SeverityPending {
		return nil
	}
	ttl, sleep := n.ttl, n.sleep
	return func() tea.Msg {
		if err := sleep(context.Background(), ttl); err != nil {
			return nil
		}
		return NoticeExpiredMsg{ID: id}
	}
}

func (n *notices) remove(id string) bool {
	for i, item := range n.items {
		if item.ID == id {
			n.items = append(n.items[:i:i], n.items[i+1:]...)
			return true
		}
	}
	return false
}

func (n *notices) list() []Notification {
	return append([]Notification(nil), n.items...)
}

func (s Severity) prefix() string {
	return string(s) + "-"
}
