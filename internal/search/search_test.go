package search

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/abelbrown/shelf/internal/debounce"
	"github.com/abelbrown/shelf/internal/gateway"
	"github.com/abelbrown/shelf/internal/gateway/gatewaytest"
	tea "github.com/charmbracelet/bubbletea"
)

func products(names ...string) []gateway.ResultItem {
	out := make([]gateway.ResultItem, len(names))
	for i, n := range names {
		out[i] = gateway.ResultItem{ID: "id-" + n, DisplayName: n}
	}
	return out
}

// echoGateway answers every search with one product named after the query.
func echoGateway() *gatewaytest.Fake {
	return &gatewaytest.Fake{
		SearchFunc: func(_ context.Context, text string) ([]gateway.ResultItem, error) {
			return products(text), nil
		},
	}
}

func newModel(gw gateway.Gateway) Model {
	return New(gw, nil, Options{Debounce: time.Millisecond})
}

// collect runs cmd, expanding batches, and returns every message delivered
// within a short window. Slow commands such as cursor blinks are left out.
func collect(cmd tea.Cmd) []tea.Msg {
	out := make(chan tea.Msg, 64)
	var run func(tea.Cmd)
	run = func(c tea.Cmd) {
		if c == nil {
			return
		}
		go func() {
			msg := c()
			if batch, ok := msg.(tea.BatchMsg); ok {
				for _, sub := range batch {
					run(sub)
				}
				return
			}
			out <- msg
		}()
	}
	run(cmd)

	var msgs []tea.Msg
	deadline := time.After(100 * time.Millisecond)
	for {
		select {
		case msg := <-out:
			msgs = append(msgs, msg)
		case <-deadline:
			return msgs
		}
	}
}

// settle delivers every debounce fire produced by cmds and returns the
// non-nil fetch commands that resulted.
func settle(t *testing.T, m Model, cmds ...tea.Cmd) (Model, []tea.Cmd) {
	t.Helper()
	var fetches []tea.Cmd
	for _, c := range cmds {
		for _, msg := range collect(c) {
			fire, ok := msg.(debounce.FireMsg)
			if !ok {
				continue
			}
			var cmd tea.Cmd
			m, cmd = m.Update(fire)
			if cmd != nil {
				fetches = append(fetches, cmd)
			}
		}
	}
	return m, fetches
}

func typeQuery(m Model, text string) (Model, tea.Cmd) {
	return m.Update(SetQueryMsg{Text: text})
}

func TestShortQueryNeverReachesGateway(t *testing.T) {
	gw := echoGateway()
	m := newModel(gw)

	for _, q := range []string{"", "a", "  a  ", "é"} {
		var cmd tea.Cmd
		m, cmd = typeQuery(m, q)
		if cmd != nil {
			t.Errorf("query %q: expected no command", q)
		}
		if m.State() != Idle {
			t.Errorf("query %q: expected Idle, got %v", q, m.State())
		}
	}
	if n := len(gw.Searches()); n != 0 {
		t.Errorf("expected no gateway calls, got %d", n)
	}
}

func TestBurstFiresOnceWithLastText(t *testing.T) {
	gw := echoGateway()
	m := newModel(gw)

	var cmds []tea.Cmd
	for _, q := range []string{"te", "tel", "tele"} {
		var cmd tea.Cmd
		m, cmd = typeQuery(m, q)
		cmds = append(cmds, cmd)
		if m.State() != Debouncing {
			t.Fatalf("after %q: expected Debouncing, got %v", q, m.State())
		}
	}

	m, fetches := settle(t, m, cmds...)
	if len(fetches) != 1 {
		t.Fatalf("expected exactly one fetch, got %d", len(fetches))
	}
	if m.State() != Fetching {
		t.Errorf("expected Fetching, got %v", m.State())
	}

	m, _ = m.Update(fetches[0]())
	if got := gw.Searches(); len(got) != 1 || got[0] != "tele" {
		t.Errorf("expected one search for tele, got %v", got)
	}
	if m.State() != Displaying {
		t.Errorf("expected Displaying, got %v", m.State())
	}
	if !m.Open() || len(m.Results()) != 1 || m.Selected() != -1 {
		t.Errorf("unexpected list: open=%v results=%v selected=%d", m.Open(), m.Results(), m.Selected())
	}
}

func TestOnlyLatestResponseApplies(t *testing.T) {
	for _, order := range []string{"old-first", "new-first"} {
		t.Run(order, func(t *testing.T) {
			m := newModel(echoGateway())

			m, cmd := typeQuery(m, "tel")
			m, first := settle(t, m, cmd)
			m, cmd = typeQuery(m, "tele")
			m, second := settle(t, m, cmd)
			if len(first) != 1 || len(second) != 1 {
				t.Fatalf("expected one fetch each, got %d and %d", len(first), len(second))
			}

			oldMsg, newMsg := first[0](), second[0]()
			if order == "old-first" {
				m, _ = m.Update(oldMsg)
				if m.State() != Fetching {
					t.Errorf("stale response changed state to %v", m.State())
				}
				m, _ = m.Update(newMsg)
			} else {
				m, _ = m.Update(newMsg)
				m, _ = m.Update(oldMsg)
			}

			if r := m.Results(); len(r) != 1 || r[0].DisplayName != "tele" {
				t.Errorf("expected results for tele, got %v", r)
			}
		})
	}
}

func TestKeystrokeInvalidatesInFlight(t *testing.T) {
	m := newModel(echoGateway())

	m, cmd := typeQuery(m, "tel")
	m, fetches := settle(t, m, cmd)
	if len(fetches) != 1 {
		t.Fatalf("expected one fetch, got %d", len(fetches))
	}

	// New keystroke arrives before the response; no new fire yet.
	m, _ = typeQuery(m, "tele")
	m, _ = m.Update(fetches[0]())

	if m.State() != Debouncing {
		t.Errorf("expected Debouncing after stale response, got %v", m.State())
	}
	if len(m.Results()) != 0 {
		t.Errorf("stale results applied: %v", m.Results())
	}
}

func TestFailureShowsNoResults(t *testing.T) {
	fail := false
	gw := &gatewaytest.Fake{
		SearchFunc: func(_ context.Context, text string) ([]gateway.ResultItem, error) {
			if fail {
				return nil, errors.New("boom")
			}
			return products("a", "b"), nil
		},
	}
	m := newModel(gw)

	m, cmd := typeQuery(m, "scope")
	m, fetches := settle(t, m, cmd)
	m, _ = m.Update(fetches[0]())
	if len(m.Results()) != 2 {
		t.Fatalf("expected 2 results, got %d", len(m.Results()))
	}

	fail = true
	m, cmd = typeQuery(m, "scopes")
	m, fetches = settle(t, m, cmd)
	m, _ = m.Update(fetches[0]())

	if m.State() != Failed {
		t.Errorf("expected Failed, got %v", m.State())
	}
	if len(m.Results()) != 0 || m.Open() {
		t.Errorf("expected cleared closed list, got %v open=%v", m.Results(), m.Open())
	}
	if !strings.Contains(m.View(), "no results") {
		t.Errorf("expected 'no results' in view, got %q", m.View())
	}
}

func TestEmptyResults(t *testing.T) {
	m := newModel(&gatewaytest.Fake{})

	m, cmd := typeQuery(m, "zzz")
	m, fetches := settle(t, m, cmd)
	m, _ = m.Update(fetches[0]())

	if m.State() != Empty {
		t.Errorf("expected Empty, got %v", m.State())
	}
}

func TestNavigationAndSelection(t *testing.T) {
	gw := &gatewaytest.Fake{
		SearchFunc: func(context.Context, string) ([]gateway.ResultItem, error) {
			return products("a", "b", "c"), nil
		},
	}
	m := newModel(gw)
	m, cmd := typeQuery(m, "scope")
	m, fetches := settle(t, m, cmd)
	m, _ = m.Update(fetches[0]())

	down := tea.KeyMsg{Type: tea.KeyDown}
	up := tea.KeyMsg{Type: tea.KeyUp}

	for range 5 {
		m, _ = m.Update(down)
	}
	if m.Selected() != 2 {
		t.Errorf("expected cursor clamped to 2, got %d", m.Selected())
	}
	for range 5 {
		m, _ = m.Update(up)
	}
	if m.Selected() != 0 {
		t.Errorf("expected cursor clamped to 0, got %d", m.Selected())
	}

	m, _ = m.Update(HoverMsg{Index: 1})
	if m.Selected() != 1 {
		t.Errorf("expected hover to set cursor 1, got %d", m.Selected())
	}
	m, _ = m.Update(HoverMsg{Index: 7})
	if m.Selected() != 1 {
		t.Errorf("out-of-range hover moved cursor to %d", m.Selected())
	}

	m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected selection command")
	}
	sel, ok := cmd().(SelectedMsg)
	if !ok {
		t.Fatalf("expected SelectedMsg, got %T", cmd())
	}
	if sel.Item.DisplayName != "b" {
		t.Errorf("expected b selected, got %q", sel.Item.DisplayName)
	}
	if m.Open() {
		t.Error("expected list closed after selection")
	}

	m, _ = m.Update(down)
	if !m.Open() {
		t.Error("expected Down to reopen the list")
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.Open() {
		t.Error("expected Esc to close the list")
	}
	if m.Value() != "scope" {
		t.Errorf("expected text kept, got %q", m.Value())
	}
}

func TestEnterWithoutCursorDoesNothing(t *testing.T) {
	m := newModel(echoGateway())
	m, cmd := typeQuery(m, "scope")
	m, fetches := settle(t, m, cmd)
	m, _ = m.Update(fetches[0]())

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Error("expected no selection with cursor at -1")
	}
}

func TestClearReturnsToIdleAndDropsInFlight(t *testing.T) {
	m := newModel(echoGateway())
	m, cmd := typeQuery(m, "scope")
	m, fetches := settle(t, m, cmd)

	m, _ = m.Update(ClearMsg{})
	if m.State() != Idle || m.Value() != "" {
		t.Fatalf("expected Idle with empty text, got %v %q", m.State(), m.Value())
	}

	m, _ = m.Update(fetches[0]())
	if m.State() != Idle || len(m.Results()) != 0 {
		t.Errorf("late response applied after clear: %v %v", m.State(), m.Results())
	}
}

func TestShorteningQueryCancelsDebounce(t *testing.T) {
	gw := echoGateway()
	m := newModel(gw)

	m, cmd := typeQuery(m, "sc")
	if !m.Pending() {
		t.Fatal("expected debounce armed")
	}
	m, _ = typeQuery(m, "s")
	if m.Pending() {
		t.Error("expected debounce cancelled")
	}

	_, fetches := settle(t, m, cmd)
	if len(fetches) != 0 {
		t.Errorf("cancelled timer started %d fetches", len(fetches))
	}
}

func TestMaxResultsCap(t *testing.T) {
	gw := &gatewaytest.Fake{
		SearchFunc: func(context.Context, string) ([]gateway.ResultItem, error) {
			return products("a", "b", "c", "d"), nil
		},
	}
	m := New(gw, nil, Options{Debounce: time.Millisecond, MaxResults: 2})
	m, cmd := typeQuery(m, "scope")
	m, fetches := settle(t, m, cmd)
	m, _ = m.Update(fetches[0]())

	if n := len(m.Results()); n != 2 {
		t.Errorf("expected 2 results, got %d", n)
	}
}

func TestSupersededRequestContextCancelled(t *testing.T) {
	gw := echoGateway()
	m := newModel(gw)

	m, cmd := typeQuery(m, "tel")
	m, first := settle(t, m, cmd)
	m, cmd = typeQuery(m, "tele")
	m, _ = settle(t, m, cmd)

	first[0]()
	ctxs := gw.Contexts()
	if len(ctxs) != 1 {
		t.Fatalf("expected one call, got %d", len(ctxs))
	}
	if ctxs[0].Err() == nil {
		t.Error("expected superseded request context to be cancelled")
	}

	m.Close()
}

func TestTypingRunes(t *testing.T) {
	m := newModel(echoGateway())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'t'}})
	if m.State() != Idle {
		t.Errorf("one rune: expected Idle, got %v", m.State())
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'e'}})
	if m.State() != Debouncing {
		t.Errorf("two runes: expected Debouncing, got %v", m.State())
	}
	if m.Value() != "te" {
		t.Errorf("expected value te, got %q", m.Value())
	}
}

func TestRowAt(t *testing.T) {
	m := newModel(&gatewaytest.Fake{
		SearchFunc: func(context.Context, string) ([]gateway.ResultItem, error) {
			return products("a", "b"), nil
		},
	})
	if m.RowAt(1) != -1 {
		t.Error("closed list should map no rows")
	}
	m, cmd := typeQuery(m, "scope")
	m, fetches := settle(t, m, cmd)
	m, _ = m.Update(fetches[0]())

	if m.RowAt(0) != -1 || m.RowAt(1) != 0 || m.RowAt(2) != 1 || m.RowAt(3) != -1 {
		t.Errorf("unexpected row mapping")
	}
}

func TestSelectionWhileFetchingUsesDisplayedList(t *testing.T) {
	m := newModel(&gatewaytest.Fake{
		SearchFunc: func(_ context.Context, text string) ([]gateway.ResultItem, error) {
			return products("hit-" + text), nil
		},
	})
	m, cmd := typeQuery(m, "tel")
	m, fetches := settle(t, m, cmd)
	m, _ = m.Update(fetches[0]())
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if m.Selected() != 0 {
		t.Fatalf("expected cursor on first row, got %d", m.Selected())
	}

	m, cmd = typeQuery(m, "tele")
	m, fetches = settle(t, m, cmd)
	if m.State() != Fetching || len(fetches) != 1 {
		t.Fatalf("expected one fetch in flight, got state %v with %d fetches", m.State(), len(fetches))
	}

	view := m.View()
	if !strings.Contains(view, "hit-tel") || !strings.Contains(view, "searching") {
		t.Fatalf("expected previous list and progress while fetching:\n%s", view)
	}
	if m.RowAt(1) != 0 {
		t.Errorf("expected displayed row to stay clickable while fetching")
	}

	m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected selection command")
	}
	sel, ok := cmd().(SelectedMsg)
	if !ok {
		t.Fatalf("expected SelectedMsg, got %T", cmd())
	}
	if !strings.Contains(view, sel.Item.DisplayName) {
		t.Errorf("committed %q, which was not displayed:\n%s", sel.Item.DisplayName, view)
	}

	// The late response for "tele" still lands normally.
	m, _ = m.Update(fetches[0]())
	if got := m.Results(); len(got) != 1 || got[0].DisplayName != "hit-tele" {
		t.Errorf("expected hit-tele results, got %+v", got)
	}
	if strings.Contains(m.View(), "searching") {
		t.Error("progress line should clear once results arrive")
	}
}

func TestStateString(t *testing.T) {
	if Displaying.String() != "displaying" || State(42).String() != "state(42)" {
		t.Error("unexpected State strings")
	}
}
