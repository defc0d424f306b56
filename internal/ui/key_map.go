package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up        key.Binding
	down      key.Binding
	toggle    key.Binding
	selectAll key.Binding
	detail    key.Binding
	capture   key.Binding
	delete    key.Binding
	export    key.Binding
	share     key.Binding
	refresh   key.Binding
	back      key.Binding
	yes       key.Binding
	no        key.Binding
	quit      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		toggle:    key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "select")),
		selectAll: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "select all")),
		detail:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
		capture:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "capture")),
		delete:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		export:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export")),
		share:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "share")),
		refresh:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear/back")),
		yes:       key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "yes")),
		no:        key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "no")),
		quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.toggle, k.capture, k.delete, k.export, k.share, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.toggle, k.selectAll, k.detail},
		{k.capture, k.delete, k.export, k.share, k.refresh},
		{k.back, k.yes, k.no, k.quit},
	}
}
