// Package feed is the paginated review feed controller. Sorting or
// filtering restarts the feed from page 1; load-more appends. Every page
// request carries a generation token and only the latest one settles the
// feed, so a slow page for an old sort can never land on a new one.
package feed

import (
	"context"
	"slices"
	"strconv"
	"time"

	"github.com/abelbrown/shelf/internal/gateway"
	"github.com/abelbrown/shelf/internal/guard"
	"github.com/abelbrown/shelf/internal/otel"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

const comp = "feed"

// Model is the feed controller for one subject.
type Model struct {
	gw  gateway.Gateway
	log *otel.Logger

	subject string
	title   string
	keys    KeyMap
	guard   guard.Guard

	items   []gateway.FeedItem
	page    int
	hasMore bool
	sort    gateway.Sort
	filter  gateway.RatingFilter
	loading bool
	err     error

	cursor int
	width  int
	height int
}

// New creates a feed for subjectID sorted newest first with no filter.
// Nothing is fetched until Init's command runs.
func New(gw gateway.Gateway, log *otel.Logger, subjectID string) Model {
	return Model{
		gw:      gw,
		log:     log,
		subject: subjectID,
		keys:    DefaultKeyMap(),
		page:    1,
		sort:    gateway.SortNewest,
		filter:  gateway.NoFilter,
	}
}

// Init loads the first page.
func (m Model) Init() tea.Cmd {
	sort, filter := m.sort, m.filter
	return func() tea.Msg { return ResetMsg{Sort: sort, Filter: filter} }
}

// Update handles messages and returns the updated model and any commands.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case ResetMsg:
		return m, m.reset(msg.Sort, msg.Filter)

	case LoadMoreMsg:
		return m, m.loadMore()

	case MarkHelpfulMsg:
		return m, m.markHelpful(msg.ItemID)

	case PageMsg:
		return m.handlePage(msg), nil

	case HelpfulMsg:
		if msg.Err != nil {
			m.log.Emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindFeedHelpfulError, Comp: comp, Subject: m.subject, Msg: msg.ItemID, Err: msg.Err.Error()})
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.items)-1 {
			m.cursor++
			return m, nil
		}
		// Scrolling past the end pulls the next page.
		return m, m.loadMore()

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Sort):
		return m, m.reset(m.sort.Next(), m.filter)

	case key.Matches(msg, m.keys.Filter):
		n, _ := strconv.Atoi(msg.String())
		f := gateway.RatingFilter(n)
		if f == m.filter {
			f = gateway.NoFilter
		}
		return m, m.reset(m.sort, f)

	case key.Matches(msg, m.keys.Clear):
		return m, m.reset(m.sort, gateway.NoFilter)

	case key.Matches(msg, m.keys.LoadMore):
		return m, m.loadMore()

	case key.Matches(msg, m.keys.Helpful):
		if m.cursor >= 0 && m.cursor < len(m.items) {
			return m, m.markHelpful(m.items[m.cursor].ID)
		}
	}
	return m, nil
}

func (m *Model) reset(sort gateway.Sort, filter gateway.RatingFilter) tea.Cmd {
	if !sort.Valid() {
		sort = gateway.SortNewest
	}
	if !filter.Valid() {
		filter = gateway.NoFilter
	}
	m.sort, m.filter = sort, filter
	m.page = 1
	m.loading = true

	m.log.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindFeedReset, Comp: comp, Subject: m.subject,
		Extra: map[string]any{"sort": string(sort), "filter": int(filter)}})
	return m.fetch(false)
}

func (m *Model) loadMore() tea.Cmd {
	if !m.hasMore || m.loading {
		return nil
	}
	m.page++
	m.loading = true

	m.log.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindFeedMore, Comp: comp, Subject: m.subject, Page: m.page})
	return m.fetch(true)
}

func (m *Model) fetch(appending bool) tea.Cmd {
	tok, ctx := m.guard.BeginContext(context.Background())
	q := gateway.Query{SubjectID: m.subject, Sort: m.sort, Filter: m.filter, Page: m.page}

	gw := m.gw
	return func() tea.Msg {
		start := time.Now()
		page, err := gw.FetchFeedPage(ctx, q)
		return PageMsg{Token: tok, Query: q, Page: page, Append: appending, Err: err, Dur: time.Since(start)}
	}
}

func (m Model) handlePage(msg PageMsg) Model {
	ev := otel.Event{Comp: comp, Gen: uint64(msg.Token), Subject: m.subject, Page: msg.Query.Page, Dur: msg.Dur}
	if !m.guard.IsCurrent(msg.Token) {
		ev.Level, ev.Kind = otel.LevelDebug, otel.KindFeedStale
		m.log.Emit(ev)
		return m
	}
	m.loading = false

	if msg.Err != nil {
		m.err = msg.Err
		if msg.Append {
			m.page--
		} else {
			m.hasMore = false
		}
		ev.Level, ev.Kind, ev.Err = otel.LevelError, otel.KindFeedError, msg.Err.Error()
		m.log.Emit(ev)
		return m
	}

	m.err = nil
	if msg.Append {
		m.items = append(slices.Clip(m.items), msg.Page.Reviews...)
	} else {
		m.items = slices.Clone(msg.Page.Reviews)
		m.cursor = 0
	}
	m.hasMore = msg.Page.HasMore

	ev.Level, ev.Kind, ev.Count = otel.LevelInfo, otel.KindFeedPage, len(msg.Page.Reviews)
	m.log.Emit(ev)
	return m
}

// markHelpful bumps the count locally and tells the gateway. The local
// bump stands whatever the gateway answers.
func (m *Model) markHelpful(id string) tea.Cmd {
	i := slices.IndexFunc(m.items, func(it gateway.FeedItem) bool { return it.ID == id })
	if i < 0 {
		return nil
	}
	m.items = slices.Clone(m.items)
	m.items[i].HelpfulCount++

	m.log.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindFeedHelpful, Comp: comp, Subject: m.subject, Msg: id})
	gw := m.gw
	return func() tea.Msg {
		return HelpfulMsg{ItemID: id, Err: gw.MarkHelpful(context.Background(), id)}
	}
}

// Close supersedes all outstanding page requests.
func (m *Model) Close() {
	m.guard.Close()
}

// SetTitle sets the heading shown above the feed.
func (m *Model) SetTitle(title string) { m.title = title }

// SetSize sets the render area.
func (m *Model) SetSize(width, height int) {
	m.width, m.height = width, height
}

// Subject returns the subject id.
func (m Model) Subject() string { return m.subject }

// Items returns the loaded reviews.
func (m Model) Items() []gateway.FeedItem { return m.items }

// Page returns the last page requested.
func (m Model) Page() int { return m.page }

// HasMore reports whether another page exists.
func (m Model) HasMore() bool { return m.hasMore }

// Loading reports whether the current generation is unsettled.
func (m Model) Loading() bool { return m.loading }

// Sort returns the active sort.
func (m Model) Sort() gateway.Sort { return m.sort }

// Filter returns the active rating filter.
func (m Model) Filter() gateway.RatingFilter { return m.filter }

// Cursor returns the highlighted index.
func (m Model) Cursor() int { return m.cursor }

// Err returns the last page error, cleared by the next success.
func (m Model) Err() error { return m.err }

// Keys returns the key bindings, for help rendering.
func (m Model) Keys() KeyMap { return m.keys }
