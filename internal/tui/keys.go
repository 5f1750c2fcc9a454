package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the palette key bindings.
type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Send   key.Binding
	Edit   key.Binding
	Clear  key.Binding
	Grow   key.Binding
	Shrink key.Binding
	Quit   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Send, k.Edit, k.Clear, k.Grow, k.Shrink, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Send, k.Edit},
		{k.Clear, k.Grow, k.Shrink, k.Quit},
	}
}

// editKeyMap defines key bindings while a command line is being edited
type editKeyMap struct {
	Commit key.Binding
	Cancel key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k editKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Commit, k.Cancel}
}

// FullHelp returns keybindings for the expanded help view
func (k editKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Commit, k.Cancel}}
}

func newKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "down"),
		),
		Send: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send"),
		),
		Edit: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "edit"),
		),
		Clear: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "clear filter"),
		),
		Grow: key.NewBinding(
			key.WithKeys("+"),
			key.WithHelp("+", "grow"),
		),
		Shrink: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "shrink"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func newEditKeyMap() editKeyMap {
	return editKeyMap{
		Commit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}
