// Package stats is the review statistics view: a primary snapshot for the
// current product and an optional comparison snapshot, each fetched under
// its own generation guard so neither can disturb the other.
package stats

import (
	"context"
	"time"

	"github.com/abelbrown/shelf/internal/gateway"
	"github.com/abelbrown/shelf/internal/guard"
	"github.com/abelbrown/shelf/internal/otel"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

const comp = "stats"

type slot struct {
	subject string
	title   string
	guard   guard.Guard
	snap    *gateway.StatsSnapshot
	err     error
	loading bool
}

// KeyMap defines the stats bindings.
type KeyMap struct {
	Refresh      key.Binding
	ClearCompare key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Refresh:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		ClearCompare: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "drop comparison")),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Refresh, k.ClearCompare}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// Model is the aggregation view.
type Model struct {
	gw   gateway.Gateway
	log  *otel.Logger
	keys KeyMap

	primary slot
	compare slot

	width int
}

// New creates a view for subjectID. Init's command fetches the snapshot.
func New(gw gateway.Gateway, log *otel.Logger, subjectID string) Model {
	return Model{
		gw:      gw,
		log:     log,
		keys:    DefaultKeyMap(),
		primary: slot{subject: subjectID},
	}
}

// Init fetches the primary snapshot.
func (m Model) Init() tea.Cmd {
	return func() tea.Msg { return RefreshMsg{} }
}

// Update handles messages and returns the updated model and any commands.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Refresh):
			cmds := []tea.Cmd{m.fetch(&m.primary, Primary)}
			if m.compare.subject != "" {
				cmds = append(cmds, m.fetch(&m.compare, Comparison))
			}
			return m, tea.Batch(cmds...)
		case key.Matches(msg, m.keys.ClearCompare):
			m.dropComparison()
		}
		return m, nil

	case RefreshMsg:
		return m, m.fetch(&m.primary, Primary)

	case CompareMsg:
		if msg.SubjectID == "" {
			m.dropComparison()
			return m, nil
		}
		m.compare.guard.Invalidate()
		m.compare = slot{subject: msg.SubjectID, title: msg.Title}
		return m, m.fetch(&m.compare, Comparison)

	case SnapshotMsg:
		if msg.Slot == Comparison {
			m.compare = m.settle(m.compare, msg)
		} else {
			m.primary = m.settle(m.primary, msg)
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) dropComparison() {
	m.compare.guard.Close()
	m.compare = slot{}
}

func (m *Model) fetch(s *slot, which Slot) tea.Cmd {
	tok, ctx := s.guard.BeginContext(context.Background())
	s.loading = true
	subject := s.subject

	m.log.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindStatsFetch, Comp: comp, Gen: uint64(tok), Subject: subject, Msg: which.String()})
	gw := m.gw
	return func() tea.Msg {
		start := time.Now()
		snap, err := gw.FetchStats(ctx, subject)
		return SnapshotMsg{Token: tok, Slot: which, SubjectID: subject, Snapshot: snap, Err: err, Dur: time.Since(start)}
	}
}

func (m Model) settle(s slot, msg SnapshotMsg) slot {
	ev := otel.Event{Comp: comp, Gen: uint64(msg.Token), Subject: msg.SubjectID, Msg: msg.Slot.String(), Dur: msg.Dur}
	if !s.guard.IsCurrent(msg.Token) {
		ev.Level, ev.Kind = otel.LevelDebug, otel.KindStatsStale
		m.log.Emit(ev)
		return s
	}
	s.loading = false

	if msg.Err != nil {
		s.err = msg.Err
		ev.Level, ev.Kind, ev.Err = otel.LevelError, otel.KindStatsError, msg.Err.Error()
		m.log.Emit(ev)
		return s
	}

	snap := msg.Snapshot
	s.snap, s.err = &snap, nil
	ev.Level, ev.Kind, ev.Count = otel.LevelInfo, otel.KindStatsComplete, snap.Total
	m.log.Emit(ev)
	return s
}

// Close supersedes the outstanding requests of both slots.
func (m *Model) Close() {
	m.primary.guard.Close()
	m.compare.guard.Close()
}

// SetTitle sets the heading for the primary subject.
func (m *Model) SetTitle(title string) { m.primary.title = title }

// SetWidth sets the render width.
func (m *Model) SetWidth(w int) { m.width = w }

// Subject returns the primary subject id.
func (m Model) Subject() string { return m.primary.subject }

// Snapshot returns the primary snapshot, if loaded.
func (m Model) Snapshot() (gateway.StatsSnapshot, bool) {
	if m.primary.snap == nil {
		return gateway.StatsSnapshot{}, false
	}
	return *m.primary.snap, true
}

// Comparison returns the comparison snapshot, if loaded.
func (m Model) Comparison() (gateway.StatsSnapshot, bool) {
	if m.compare.snap == nil {
		return gateway.StatsSnapshot{}, false
	}
	return *m.compare.snap, true
}

// ComparisonSubject returns the comparison subject id, or "".
func (m Model) ComparisonSubject() string { return m.compare.subject }

// Err returns the primary slot's last error.
func (m Model) Err() error { return m.primary.err }

// ComparisonErr returns the comparison slot's last error.
func (m Model) ComparisonErr() error { return m.compare.err }

// Loading reports whether either slot awaits its current request.
func (m Model) Loading() bool { return m.primary.loading || m.compare.loading }

// Keys returns the key bindings, for help rendering.
func (m Model) Keys() KeyMap { return m.keys }
