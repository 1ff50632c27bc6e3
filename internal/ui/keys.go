package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the key bindings for every surface.
type keyMap struct {
	Up         key.Binding
	Down       key.Binding
	MoveUp     key.Binding
	MoveDown   key.Binding
	Select     key.Binding
	Back       key.Binding
	Wishlist   key.Binding
	Lists      key.Binding
	ToggleOwn  key.Binding
	ToggleWish key.Binding
	Remove     key.Binding
	ListMenu   key.Binding
	QuickAdd   key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		MoveUp: key.NewBinding(
			key.WithKeys("K", "shift+up"),
			key.WithHelp("K", "move item up"),
		),
		MoveDown: key.NewBinding(
			key.WithKeys("J", "shift+down"),
			key.WithHelp("J", "move item down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Wishlist: key.NewBinding(
			key.WithKeys("1", "w"),
			key.WithHelp("1", "wishlist"),
		),
		Lists: key.NewBinding(
			key.WithKeys("2", "l"),
			key.WithHelp("2", "lists"),
		),
		ToggleOwn: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "toggle owned"),
		),
		ToggleWish: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "toggle wishlist"),
		),
		Remove: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "remove"),
		),
		ListMenu: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "lists menu"),
		),
		QuickAdd: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add set"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.ToggleOwn, k.Remove, k.ListMenu, k.QuickAdd, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.MoveUp, k.MoveDown},
		{k.Wishlist, k.Lists, k.Select, k.Back},
		{k.ToggleOwn, k.ToggleWish, k.Remove, k.ListMenu},
		{k.QuickAdd, k.Help, k.Quit},
	}
}
