// Package ui renders the loaded table in the terminal: an interactive grid
// for the view command and a static bordered table for show.
package ui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// Palette
var (
	Primary     = lipgloss.AdaptiveColor{Light: "#101F38", Dark: "#8BC34A"}
	Border      = lipgloss.AdaptiveColor{Light: "#dce0e5", Dark: "#2a3850"}
	Muted       = lipgloss.AdaptiveColor{Light: "#6a737d", Dark: "#8b949e"}
	Destructive = lipgloss.Color("#e53935")
	Warning     = lipgloss.Color("#FFC107")
)

// Column widths are clamped to this range
const (
	minColumnWidth = 10
	maxColumnWidth = 30
)

// Styles groups the lipgloss styles used by the grid
type Styles struct {
	Title    lipgloss.Style
	Status   lipgloss.Style
	Error    lipgloss.Style
	Warning  lipgloss.Style
	Muted    lipgloss.Style
	Search   lipgloss.Style
	SearchOn lipgloss.Style
	Table    table.Styles
}

// DefaultStyles returns the grid styles
func DefaultStyles() Styles {
	ts := table.DefaultStyles()
	ts.Header = ts.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(Border).
		BorderBottom(true).
		Bold(true)
	ts.Selected = ts.Selected.
		Foreground(lipgloss.Color("#101F38")).
		Background(lipgloss.Color("#8BC34A")).
		Bold(false)

	search := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 1)

	return Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(Primary),
		Status:   lipgloss.NewStyle().Foreground(Primary),
		Error:    lipgloss.NewStyle().Foreground(Destructive).Bold(true),
		Warning:  lipgloss.NewStyle().Foreground(Warning),
		Muted:    lipgloss.NewStyle().Foreground(Muted),
		Search:   search,
		SearchOn: search.BorderForeground(Primary),
		Table:    ts,
	}
}

func clampWidth(w int) int {
	return max(minColumnWidth, min(w, maxColumnWidth))
}
