package selector

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keybindings of a selector
type KeyMap struct {
	Toggle   key.Binding
	Open     key.Binding
	Clear    key.Binding
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Select   key.Binding
	Close    key.Binding
}

// DefaultKeyMap returns the default keybindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Toggle: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("ctrl+o", "open/close"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "open"),
		),
		Clear: key.NewBinding(
			key.WithKeys("ctrl+x", "delete"),
			key.WithHelp("ctrl+x", "clear"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "ctrl+p"),
			key.WithHelp("↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "ctrl+n"),
			key.WithHelp("↓", "down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "page down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Close: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close"),
		),
	}
}

// ShortHelp implements help.KeyMap
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Select, k.Clear, k.Close}
}

// FullHelp implements help.KeyMap
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toggle, k.Open, k.Clear},
		{k.Up, k.Down, k.PageUp, k.PageDown},
		{k.Select, k.Close},
	}
}

// closedHelp lists the bindings that apply to a closed selector
func (k KeyMap) closedHelp() []key.Binding {
	return []key.Binding{k.Open, k.Clear}
}

// openHelp lists the bindings that apply to an open selector
func (k KeyMap) openHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.Close}
}

// ShortHelp returns the bindings that apply in the current state
func (m Model) ShortHelp() []key.Binding {
	if m.state == StateClosed {
		return m.KeyMap.closedHelp()
	}
	return m.KeyMap.openHelp()
}
