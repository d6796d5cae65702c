package tui

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title   lipgloss.Style
	header  lipgloss.Style
	muted   lipgloss.Style
	card    lipgloss.Style
	name    lipgloss.Style
	label   lipgloss.Style
	chip    lipgloss.Style
	success lipgloss.Style
	failure lipgloss.Style
	pending lipgloss.Style
	prompt  lipgloss.Style
	spinner lipgloss.Style
}

func newStyles() styles {
	return styles{
		title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229")),
		header: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")),
		muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
		card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 2).
			Width(60),
		name: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229")),
		label: lipgloss.NewStyle().
			Foreground(lipgloss.Color("242")),
		chip: lipgloss.NewStyle().
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1).
			MarginRight(1),
		success: lipgloss.NewStyle().
			Foreground(lipgloss.Color("green")),
		failure: lipgloss.NewStyle().
			Foreground(lipgloss.Color("red")),
		pending: lipgloss.NewStyle().
			Foreground(lipgloss.Color("yellow")),
		prompt: lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")),
		spinner: lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")),
	}
}
