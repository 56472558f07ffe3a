package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	toggle key.Binding
	all    key.Binding
	invert key.Binding
	clear  key.Binding
	enter  key.Binding
	back   key.Binding
	yes    key.Binding
	no     key.Binding
	cancel key.Binding
	quit   key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		toggle: key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "toggle")),
		all:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "all")),
		invert: key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "invert")),
		clear:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear")),
		enter:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "download")),
		back:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		yes:    key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "yes")),
		no:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "no")),
		cancel: key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "stop after current entry")),
		quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.toggle, k.all, k.invert, k.clear},
		{k.enter, k.back, k.yes, k.no},
		{k.cancel, k.quit},
	}
}
