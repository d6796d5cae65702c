package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the review screen's bindings. It implements help.KeyMap.
type keyMap struct {
	Delete       key.Binding
	Skip         key.Binding
	Prev         key.Binding
	Next         key.Binding
	Jump         key.Binding
	AddFilter    key.Binding
	ClearFilters key.Binding
	DropFilter   key.Binding
	Undo         key.Binding
	UndoAll      key.Binding
	Commit       key.Binding
	EditName     key.Binding
	EditCompany  key.Binding
	EditPhone    key.Binding
	EditEmail    key.Binding
	Help         key.Binding
	Quit         key.Binding

	// Prompt bindings, active only while an input has focus.
	Submit key.Binding
	Cancel key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Skip: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "skip"),
		),
		Prev: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "previous"),
		),
		Next: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next"),
		),
		Jump: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "jump to #"),
		),
		AddFilter: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "add filter"),
		),
		ClearFilters: key.NewBinding(
			key.WithKeys("F"),
			key.WithHelp("F", "clear filters"),
		),
		DropFilter: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "remove last filter"),
		),
		Undo: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "undo delete"),
		),
		UndoAll: key.NewBinding(
			key.WithKeys("U"),
			key.WithHelp("U", "undo all"),
		),
		Commit: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "commit deletes now"),
		),
		EditName: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit name"),
		),
		EditCompany: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "edit company"),
		),
		EditPhone: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "edit phone"),
		),
		EditEmail: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "edit email"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Delete, k.Skip, k.Prev, k.Next, k.Undo, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Delete, k.Skip, k.Prev, k.Next, k.Jump},
		{k.AddFilter, k.DropFilter, k.ClearFilters},
		{k.Undo, k.UndoAll, k.Commit},
		{k.EditName, k.EditCompany, k.EditPhone, k.EditEmail},
		{k.Help, k.Quit},
	}
}

// promptKeys is the help shown while an input has focus.
type promptKeys struct {
	keyMap
}

func (k promptKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Cancel}
}

func (k promptKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Submit, k.Cancel}}
}
