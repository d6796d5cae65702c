// Package tui provides the Bubble Tea front end for sweep.
package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/chazuruo/sweep/internal/contacts"
	"github.com/chazuruo/sweep/internal/review"
)

// promptKind tracks which input, if any, currently owns the keyboard.
type promptKind int

const (
	promptNone promptKind = iota
	promptJump
	promptFilterKind
	promptFilterMode
	promptFilterValue
	promptEditIndex
	promptEditValue
)

// Options configures the review screen.
type Options struct {
	// ShowHelp starts with the full key help expanded.
	ShowHelp bool
}

// ReviewModel is the review screen. All workflow state lives in the
// controller; the model only owns prompts and rendering.
type ReviewModel struct {
	ctrl    *review.Controller
	keys    keyMap
	help    help.Model
	spinner spinner.Model
	input   textinput.Model
	styles  styles

	prompt     promptKind
	promptErr  string
	filterKind review.FilterKind
	filterMode review.FilterMode
	editField  contacts.Field
	editIndex  int

	width    int
	quitting bool
}

// NewReviewModel creates the review screen over ctrl.
func NewReviewModel(ctrl *review.Controller, opts Options) ReviewModel {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot

	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 40

	h := help.New()
	h.ShowAll = opts.ShowHelp

	st := newStyles()
	sp.Style = st.spinner

	return ReviewModel{
		ctrl:    ctrl,
		keys:    newKeyMap(),
		help:    h,
		spinner: sp,
		input:   ti,
		styles:  st,
	}
}

// Init implements tea.Model.
func (m ReviewModel) Init() tea.Cmd {
	return tea.Batch(m.ctrl.Init(), m.spinner.Tick)
}

// Update implements tea.Model.
func (m ReviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		// Stop ticking once the first page is in.
		if !m.ctrl.View().Loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.quitting = true
			return m, tea.Quit
		}
		if m.prompt != promptNone {
			cmd := m.updatePrompt(msg)
			return m, cmd
		}
		cmd := m.handleKey(msg)
		return m, cmd
	}

	return m, m.ctrl.Update(msg)
}

func (m *ReviewModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Delete):
		return m.ctrl.RequestDelete()
	case key.Matches(msg, m.keys.Skip):
		return m.ctrl.RequestSkip()
	case key.Matches(msg, m.keys.Prev):
		return m.ctrl.Previous()
	case key.Matches(msg, m.keys.Next):
		return m.ctrl.Next()
	case key.Matches(msg, m.keys.Jump):
		return m.openInput(promptJump, "Jump to #", "")
	case key.Matches(msg, m.keys.AddFilter):
		m.prompt = promptFilterKind
		m.promptErr = ""
	case key.Matches(msg, m.keys.ClearFilters):
		return m.ctrl.ClearFilters()
	case key.Matches(msg, m.keys.DropFilter):
		return m.ctrl.RemoveLastFilter()
	case key.Matches(msg, m.keys.Undo):
		return m.ctrl.UndoLatest()
	case key.Matches(msg, m.keys.UndoAll):
		return m.ctrl.UndoAll()
	case key.Matches(msg, m.keys.Commit):
		return m.ctrl.CommitPending()
	case key.Matches(msg, m.keys.EditName):
		return m.startEdit(contacts.FieldName)
	case key.Matches(msg, m.keys.EditCompany):
		return m.startEdit(contacts.FieldCompany)
	case key.Matches(msg, m.keys.EditPhone):
		return m.startEdit(contacts.FieldPhone)
	case key.Matches(msg, m.keys.EditEmail):
		return m.startEdit(contacts.FieldEmail)
	}
	return nil
}

// startEdit opens the prompt chain for field. Phones and emails ask for an
// entry number first unless the list is empty.
func (m *ReviewModel) startEdit(field contacts.Field) tea.Cmd {
	cur := m.ctrl.View().Current
	if cur == nil {
		return nil
	}
	m.editField = field
	m.editIndex = 0

	switch field {
	case contacts.FieldName:
		return m.openInput(promptEditValue, "Name", cur.Name)
	case contacts.FieldCompany:
		return m.openInput(promptEditValue, "Company", cur.CompanyName())
	}

	count, what := entryCount(*cur, field)
	if count == 0 {
		m.editIndex = contacts.AppendIndex
		return m.openInput(promptEditValue, "New "+what, "")
	}
	return m.openInput(promptEditIndex, fmt.Sprintf("%s # (1-%d, + to add)", capitalize(what), count), "")
}

func (m *ReviewModel) updatePrompt(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.Cancel) {
		m.closePrompt()
		return nil
	}

	switch m.prompt {
	case promptFilterKind:
		switch msg.String() {
		case "t":
			m.filterKind = review.KindText
			m.prompt = promptFilterMode
		case "p":
			m.filterKind = review.KindPhone
			m.prompt = promptFilterMode
		}
		return nil
	case promptFilterMode:
		switch msg.String() {
		case "i":
			m.filterMode = review.ModeInclude
		case "e":
			m.filterMode = review.ModeExclude
		default:
			return nil
		}
		label := "Name or company"
		if m.filterKind == review.KindPhone {
			label = "Phone"
		}
		return m.openInput(promptFilterValue, fmt.Sprintf("%s %ss", label, m.filterMode), "")
	}

	if key.Matches(msg, m.keys.Submit) {
		return m.submit()
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

// submit acts on the focused input. Validation failures are reported by
// the controller as notifications, so their errors are not inspected here.
func (m *ReviewModel) submit() tea.Cmd {
	value := m.input.Value()

	switch m.prompt {
	case promptJump:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			n = 0 // reported as out of range
		}
		m.closePrompt()
		cmd, _ := m.ctrl.JumpTo(n)
		return cmd

	case promptFilterValue:
		m.closePrompt()
		cmd, _ := m.ctrl.AddFilter(m.filterKind, m.filterMode, value)
		return cmd

	case promptEditIndex:
		cur := m.ctrl.View().Current
		if cur == nil {
			m.closePrompt()
			return nil
		}
		count, what := entryCount(*cur, m.editField)
		index, ok := parseEntryIndex(value, count)
		if !ok {
			m.promptErr = fmt.Sprintf("Enter a number between 1 and %d, or +", count)
			return nil
		}
		m.editIndex = index
		if index == contacts.AppendIndex {
			return m.openInput(promptEditValue, "New "+what, "")
		}
		return m.openInput(promptEditValue, fmt.Sprintf("%s #%d (%s to remove)", capitalize(what), index+1, contacts.DeleteSentinel),
			entryValue(*cur, m.editField, index))

	case promptEditValue:
		field, index := m.editField, m.editIndex
		m.closePrompt()
		cmd, _ := m.ctrl.RequestEdit(field, value, index)
		return cmd
	}
	return nil
}

func (m *ReviewModel) openInput(kind promptKind, label, value string) tea.Cmd {
	m.prompt = kind
	m.promptErr = ""
	m.input.Reset()
	m.input.Prompt = label + ": "
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *ReviewModel) closePrompt() {
	m.prompt = promptNone
	m.promptErr = ""
	m.input.Blur()
	m.input.Reset()
}

// Prompting reports whether an input currently owns the keyboard.
func (m ReviewModel) Prompting() bool {
	return m.prompt != promptNone
}

// View implements tea.Model.
func (m ReviewModel) View() string {
	if m.quitting {
		return ""
	}
	v := m.ctrl.View()

	var b strings.Builder
	b.WriteString("\n  ")
	b.WriteString(m.styles.title.Render("sweep"))
	if h := m.headerText(v); h != "" {
		b.WriteString("  ")
		b.WriteString(m.styles.header.Render(h))
	}
	b.WriteString("\n\n")

	if body := m.renderBody(v); body != "" {
		b.WriteString(indent(body))
		b.WriteString("\n")
	}
	if len(v.Filters) > 0 {
		b.WriteString("\n  ")
		b.WriteString(m.renderFilters(v))
		b.WriteString("\n")
	}
	if len(v.Notifications) > 0 {
		b.WriteString("\n")
		b.WriteString(m.renderNotifications(v.Notifications))
	}
	if v.PendingCount > 0 {
		b.WriteString("\n  ")
		b.WriteString(m.styles.muted.Render(fmt.Sprintf("%d pending deletion(s) · c commits now, U undoes all", v.PendingCount)))
		b.WriteString("\n")
	}
	if p := m.renderPrompt(); p != "" {
		b.WriteString("\n  ")
		b.WriteString(p)
		b.WriteString("\n")
	}

	b.WriteString("\n  ")
	if m.prompt != promptNone {
		b.WriteString(m.help.View(promptKeys{m.keys}))
	} else {
		b.WriteString(m.help.View(m.keys))
	}
	b.WriteString("\n")
	return b.String()
}

func (m ReviewModel) headerText(v review.View) string {
	if v.Loading {
		return m.spinner.View() + " Loading contacts..."
	}
	if v.LoadedCount == 0 {
		return ""
	}
	text := fmt.Sprintf("Contact %d of %d", v.Position, v.TotalCount)
	if len(v.Filters) > 0 {
		text += fmt.Sprintf(" (%d match filters)", v.VisibleCount)
	}
	if v.Paging {
		text += fmt.Sprintf("  Loading %d total...", v.TotalCount)
	}
	return text
}

func (m ReviewModel) renderBody(v review.View) string {
	switch {
	case v.Loading:
		return ""
	case v.LoadedCount == 0:
		return m.styles.muted.Render("No contacts to review")
	case v.Current != nil:
		return m.renderCard(*v.Current)
	case v.VisibleCount == 0 && len(v.Filters) > 0:
		return m.styles.muted.Render("No contacts match the current filters")
	case v.VisibleCount == 0:
		return m.styles.muted.Render("No contacts left to review")
	}
	return m.styles.muted.Render(fmt.Sprintf("Contact #%d is filtered out or deleted", v.Position))
}

func (m ReviewModel) renderCard(c contacts.Contact) string {
	var b strings.Builder
	b.WriteString(m.styles.name.Render(c.DisplayName()))
	for _, p := range m.ctrl.Pending() {
		if p.ContactID == c.ID {
			b.WriteString("  ")
			b.WriteString(m.styles.pending.Render("(pending deletion)"))
			break
		}
	}
	b.WriteString("\n")
	if company := c.CompanyName(); company != "" {
		b.WriteString(company)
		b.WriteString("\n")
	}

	if len(c.Phones) > 0 {
		b.WriteString("\n")
		for i, p := range c.Phones {
			fmt.Fprintf(&b, "%s %s\n", m.styles.label.Render(fmt.Sprintf("%d. %s", i+1, contacts.CleanLabel(p.Label, "Phone"))), p.Number)
		}
	}
	if len(c.Emails) > 0 {
		b.WriteString("\n")
		for i, e := range c.Emails {
			fmt.Fprintf(&b, "%s %s\n", m.styles.label.Render(fmt.Sprintf("%d. %s", i+1, contacts.CleanLabel(e.Label, "Email"))), e.Address)
		}
	}
	if len(c.Phones) == 0 && len(c.Emails) == 0 {
		b.WriteString("\n")
		b.WriteString(m.styles.muted.Render("No phone numbers or email addresses"))
		b.WriteString("\n")
	}
	return m.styles.card.Render(strings.TrimRight(b.String(), "\n"))
}

func (m ReviewModel) renderFilters(v review.View) string {
	var b strings.Builder
	for _, f := range v.Filters {
		b.WriteString(m.styles.chip.Render(f.String()))
	}
	b.WriteString(m.styles.muted.Render(fmt.Sprintf("Showing %d of %d contacts", v.VisibleCount, v.RemainingCount)))
	b.WriteString(m.styles.muted.Render(" · "))
	b.WriteString(m.styles.muted.Render("x removes last · F clears"))
	return b.String()
}

func (m ReviewModel) renderNotifications(notes []review.Notification) string {
	var b strings.Builder
	for _, n := range notes {
		b.WriteString("  ")
		switch n.Severity {
		case review.SeverityPending:
			b.WriteString(m.styles.pending.Render(n.Text))
			b.WriteString(m.styles.muted.Render(" (u to undo)"))
		case review.SeverityError:
			b.WriteString(m.styles.failure.Render(n.Text))
		default:
			b.WriteString(m.styles.success.Render(n.Text))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m ReviewModel) renderPrompt() string {
	switch m.prompt {
	case promptNone:
		return ""
	case promptFilterKind:
		return m.styles.prompt.Render("Filter on [t]ext (name/company) or [p]hone?")
	case promptFilterMode:
		return m.styles.prompt.Render("[i]nclude or [e]xclude matches?")
	}
	out := m.input.View()
	if m.promptErr != "" {
		out += "\n  " + m.styles.failure.Render(m.promptErr)
	}
	return out
}

// entryCount returns the number of phone or email entries and the noun for
// them.
func entryCount(c contacts.Contact, field contacts.Field) (int, string) {
	if field == contacts.FieldEmail {
		return len(c.Emails), "email address"
	}
	return len(c.Phones), "phone number"
}

func entryValue(c contacts.Contact, field contacts.Field, index int) string {
	if field == contacts.FieldEmail {
		return c.Emails[index].Address
	}
	return c.Phones[index].Number
}

// parseEntryIndex turns "+" into AppendIndex and a 1-based number into a
// 0-based index.
func parseEntryIndex(s string, count int) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "+" {
		return contacts.AppendIndex, true
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > count {
		return 0, false
	}
	return n - 1, true
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func indent(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = "  " + l
	}
	return strings.Join(lines, "\n")
}

// Summary is what a finished review session reports back to the CLI.
type Summary struct {
	Deleted int
	// Abandoned counts deletions still pending when the user quit. They are
	// never sent to the store.
	Abandoned int
}

// RunReview runs the review screen until the user quits.
func RunReview(ctrl *review.Controller, opts Options) (Summary, error) {
	program := tea.NewProgram(NewReviewModel(ctrl, opts), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return Summary{}, fmt.Errorf("failed to run TUI: %w", err)
	}
	return Summary{Deleted: ctrl.DeletedCount(), Abandoned: len(ctrl.Pending())}, nil
}
