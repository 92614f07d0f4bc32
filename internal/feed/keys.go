package feed

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the feed bindings.
type KeyMap struct {
	Down     key.Binding
	Up       key.Binding
	Sort     key.Binding
	Filter   key.Binding
	Clear    key.Binding
	LoadMore key.Binding
	Helpful  key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Down:     key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/k", "move")),
		Up:       key.NewBinding(key.WithKeys("k", "up")),
		Sort:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
		Filter:   key.NewBinding(key.WithKeys("1", "2", "3", "4", "5"), key.WithHelp("1-5", "filter")),
		Clear:    key.NewBinding(key.WithKeys("0"), key.WithHelp("0", "all ratings")),
		LoadMore: key.NewBinding(key.WithKeys("m", "end"), key.WithHelp("m", "more")),
		Helpful:  key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "helpful")),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Down, k.Sort, k.Filter, k.Clear, k.LoadMore, k.Helpful}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp(), {k.Up}}
}
