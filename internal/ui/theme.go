// Package ui renders projects for the terminal: the styled tree printed by
// the list command and the live read-only viewer.
package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme is the color palette. Colors are ANSI 256 codes.
type Theme struct {
	Title     lipgloss.Color
	Faint     lipgloss.Color
	Completed lipgloss.Color
	Active    lipgloss.Color
	Pending   lipgloss.Color
	Error     lipgloss.Color
}

// DefaultTheme is used unless a caller supplies another palette.
var DefaultTheme = Theme{
	Title:     lipgloss.Color("75"),
	Faint:     lipgloss.Color("244"),
	Completed: lipgloss.Color("78"),
	Active:    lipgloss.Color("214"),
	Pending:   lipgloss.Color("252"),
	Error:     lipgloss.Color("203"),
}

// Styles holds the lipgloss styles derived from a Theme for one renderer.
type Styles struct {
	Title     lipgloss.Style
	Faint     lipgloss.Style
	Phase     lipgloss.Style
	PhaseDone lipgloss.Style
	Task      lipgloss.Style
	TaskDone  lipgloss.Style
	ID        lipgloss.Style
	Ratio     lipgloss.Style
	Error     lipgloss.Style
	Success   lipgloss.Style
}

// NewStyles builds styles bound to r. Output written through a renderer whose
// writer is not a terminal carries no escape codes.
func NewStyles(r *lipgloss.Renderer, t Theme) *Styles {
	return &Styles{
		Title:     r.NewStyle().Bold(true).Foreground(t.Title),
		Faint:     r.NewStyle().Foreground(t.Faint),
		Phase:     r.NewStyle().Bold(true).Foreground(t.Pending),
		PhaseDone: r.NewStyle().Bold(true).Foreground(t.Completed),
		Task:      r.NewStyle().Foreground(t.Pending),
		TaskDone:  r.NewStyle().Foreground(t.Completed).Strikethrough(true),
		ID:        r.NewStyle().Foreground(t.Faint),
		Ratio:     r.NewStyle().Foreground(t.Active),
		Error:     r.NewStyle().Bold(true).Foreground(t.Error),
		Success:   r.NewStyle().Foreground(t.Completed),
	}
}
