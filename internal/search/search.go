// Package search is the search-as-you-type controller: a text input whose
// changes are debounced into product searches, with a navigable list of
// suggestions. Responses are gated by generation so only the latest
// request is ever displayed.
package search

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/abelbrown/shelf/internal/debounce"
	"github.com/abelbrown/shelf/internal/gateway"
	"github.com/abelbrown/shelf/internal/guard"
	"github.com/abelbrown/shelf/internal/otel"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const comp = "search"

// DefaultMinChars is the shortest query that reaches the gateway.
const DefaultMinChars = 2

// State is the controller's position in its lifecycle.
type State int

const (
	Idle State = iota
	Debouncing
	Fetching
	Displaying
	Empty
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Debouncing:
		return "debouncing"
	case Fetching:
		return "fetching"
	case Displaying:
		return "displaying"
	case Empty:
		return "empty"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Options tunes a Model. Zero values pick the defaults.
type Options struct {
	Debounce   time.Duration
	MinChars   int
	MaxResults int // 0 means no cap
}

// Model is the search controller.
type Model struct {
	gw  gateway.Gateway
	log *otel.Logger

	input    textinput.Model
	keys     KeyMap
	debounce debounce.Scheduler
	guard    guard.Guard

	state    State
	results  []gateway.ResultItem
	selected int
	open     bool
	width    int

	minChars   int
	maxResults int
}

// New creates a focused search controller.
func New(gw gateway.Gateway, log *otel.Logger, opts Options) Model {
	ti := textinput.New()
	ti.Placeholder = "Search products"
	ti.Prompt = "/ "
	ti.CharLimit = 120
	ti.Focus()

	minChars := opts.MinChars
	if minChars <= 0 {
		minChars = DefaultMinChars
	}

	return Model{
		gw:         gw,
		log:        log,
		input:      ti,
		keys:       DefaultKeyMap(),
		debounce:   debounce.New(opts.Debounce),
		state:      Idle,
		selected:   -1,
		minChars:   minChars,
		maxResults: max(opts.MaxResults, 0),
	}
}

// Init starts the cursor blinking.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages and returns the updated model and any commands.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case debounce.FireMsg:
		if !m.debounce.Fired(msg) {
			return m, nil
		}
		text, _ := msg.Payload.(string)
		return m, m.startSearch(text)

	case ResultsMsg:
		return m.handleResults(msg), nil

	case HoverMsg:
		if msg.Index >= 0 && msg.Index < len(m.results) {
			m.selected = msg.Index
		}
		return m, nil

	case SetQueryMsg:
		m.input.SetValue(msg.Text)
		m.input.CursorEnd()
		return m, m.onInput()

	case ClearMsg:
		m.input.Reset()
		m.toIdle()
		m.log.Debug(otel.KindSearchClear, comp, "cleared")
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Down):
		if !m.open {
			if len(m.results) > 0 {
				m.open = true
			}
			return m, nil
		}
		m.selected = clamp(m.selected+1, len(m.results))
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.open {
			m.selected = clamp(m.selected-1, len(m.results))
		}
		return m, nil

	case key.Matches(msg, m.keys.Select):
		if !m.open || m.selected < 0 || m.selected >= len(m.results) {
			return m, nil
		}
		item := m.results[m.selected]
		m.open = false
		m.log.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindSearchSelect, Comp: comp, Subject: item.ID, Msg: item.DisplayName})
		return m, func() tea.Msg { return SelectedMsg{Item: item} }

	case key.Matches(msg, m.keys.Close):
		m.open = false
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() == before {
		return m, cmd
	}
	return m, tea.Batch(cmd, m.onInput())
}

// onInput applies the transition for a changed input value.
func (m *Model) onInput() tea.Cmd {
	text := strings.TrimSpace(m.input.Value())
	if utf8.RuneCountInString(text) < m.minChars {
		m.toIdle()
		return nil
	}

	m.guard.Invalidate()
	m.state = Debouncing
	m.log.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindSearchDebounce, Comp: comp, Query: text})
	return m.debounce.Schedule(text)
}

func (m *Model) toIdle() {
	m.debounce.Cancel()
	m.guard.Invalidate()
	m.state = Idle
	m.results = nil
	m.selected = -1
	m.open = false
}

func (m *Model) startSearch(text string) tea.Cmd {
	tok, ctx := m.guard.BeginContext(context.Background())
	m.state = Fetching
	m.log.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindSearchStart, Comp: comp, Gen: uint64(tok), Query: text})

	gw := m.gw
	return func() tea.Msg {
		start := time.Now()
		items, err := gw.Search(ctx, text)
		return ResultsMsg{Token: tok, Text: text, Items: items, Err: err, Dur: time.Since(start)}
	}
}

func (m Model) handleResults(msg ResultsMsg) Model {
	if !m.guard.IsCurrent(msg.Token) {
		m.log.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindSearchStale, Comp: comp, Gen: uint64(msg.Token), Query: msg.Text, Dur: msg.Dur})
		return m
	}

	m.selected = -1
	if msg.Err != nil {
		m.state = Failed
		m.results = nil
		m.open = false
		m.log.Emit(otel.Event{Level: otel.LevelError, Kind: otel.KindSearchError, Comp: comp, Gen: uint64(msg.Token), Query: msg.Text, Dur: msg.Dur, Err: msg.Err.Error()})
		return m
	}

	items := msg.Items
	if m.maxResults > 0 && len(items) > m.maxResults {
		items = items[:m.maxResults]
	}
	m.results = items
	m.open = len(items) > 0
	if len(items) > 0 {
		m.state = Displaying
	} else {
		m.state = Empty
	}
	m.log.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindSearchComplete, Comp: comp, Gen: uint64(msg.Token), Query: msg.Text, Count: len(items), Dur: msg.Dur})
	return m
}

// Close supersedes all outstanding work. Late responses are ignored.
func (m *Model) Close() {
	m.debounce.Cancel()
	m.guard.Close()
}

// Focus focuses the text input.
func (m *Model) Focus() tea.Cmd {
	return m.input.Focus()
}

// Blur removes focus from the text input.
func (m *Model) Blur() {
	m.input.Blur()
}

// Focused reports whether the input has focus.
func (m Model) Focused() bool {
	return m.input.Focused()
}

// SetWidth sets the render width.
func (m *Model) SetWidth(w int) {
	m.width = w
	m.input.Width = max(w-4, 10)
}

// State returns the current lifecycle state.
func (m Model) State() State { return m.state }

// Results returns the displayed suggestions.
func (m Model) Results() []gateway.ResultItem { return m.results }

// Selected returns the cursor index, or -1.
func (m Model) Selected() int { return m.selected }

// Open reports whether the suggestion list is shown.
func (m Model) Open() bool { return m.open }

// Value returns the raw input text.
func (m Model) Value() string { return m.input.Value() }

// Pending reports whether a debounce timer is armed.
func (m Model) Pending() bool { return m.debounce.Pending() }

// Keys returns the key bindings, for help rendering.
func (m Model) Keys() KeyMap { return m.keys }

func clamp(i, n int) int {
	if n == 0 {
		return -1
	}
	return max(0, min(i, n-1))
}
