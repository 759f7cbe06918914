package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the viewer's key bindings.
type KeyMap struct {
	Up            key.Binding
	Down          key.Binding
	PageUp        key.Binding
	PageDown      key.Binding
	Refresh       key.Binding
	FilterAll     key.Binding
	FilterPending key.Binding
	FilterDone    key.Binding
	Descriptions  key.Binding
	Collapse      key.Binding
	Help          key.Binding
	Quit          key.Binding
}

// DefaultKeyMap pairs vim-style movement with the arrow keys.
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	PageUp: key.NewBinding(
		key.WithKeys("ctrl+u", "pgup"),
		key.WithHelp("C-u", "page up"),
	),
	PageDown: key.NewBinding(
		key.WithKeys("ctrl+d", "pgdown"),
		key.WithHelp("C-d", "page down"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r", "f5"),
		key.WithHelp("r", "reload"),
	),
	FilterAll: key.NewBinding(
		key.WithKeys("0"),
		key.WithHelp("0", "all"),
	),
	FilterPending: key.NewBinding(
		key.WithKeys("1"),
		key.WithHelp("1", "pending"),
	),
	FilterDone: key.NewBinding(
		key.WithKeys("2"),
		key.WithHelp("2", "completed"),
	),
	Descriptions: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "descriptions"),
	),
	Collapse: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "collapse subtasks"),
	),
	Help: key.NewBinding(
		key.WithKeys("?", "h"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Refresh, k.FilterPending, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown},
		{k.FilterAll, k.FilterPending, k.FilterDone},
		{k.Descriptions, k.Collapse, k.Refresh},
		{k.Help, k.Quit},
	}
}
