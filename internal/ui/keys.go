package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the global bindings.
type KeyMap struct {
	NextTab key.Binding
	PrevTab key.Binding
	Compare key.Binding
	Debug   key.Binding
	Help    key.Binding
	Quit    key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		NextTab: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		PrevTab: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev tab")),
		Compare: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "compare")),
		Debug:   key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "debug")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
	}
}

// helpKeys joins the global bindings with the active tab's bindings.
type helpKeys struct {
	global KeyMap
	local  []key.Binding
	search bool
}

func (h helpKeys) ShortHelp() []key.Binding {
	out := append([]key.Binding{}, h.local...)
	out = append(out, h.global.NextTab)
	if !h.search {
		out = append(out, h.global.Help, h.global.Quit)
	}
	return out
}

func (h helpKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		h.local,
		{h.global.NextTab, h.global.PrevTab, h.global.Compare},
		{h.global.Debug, h.global.Help, h.global.Quit},
	}
}
