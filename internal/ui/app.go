package ui

import (
	"fmt"
	"strings"

	"github.com/abelbrown/shelf/internal/debounce"
	"github.com/abelbrown/shelf/internal/feed"
	"github.com/abelbrown/shelf/internal/gateway"
	"github.com/abelbrown/shelf/internal/otel"
	"github.com/abelbrown/shelf/internal/search"
	"github.com/abelbrown/shelf/internal/stats"
	"github.com/abelbrown/shelf/internal/theme"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Tab is one of the root views.
type Tab int

const (
	TabSearch Tab = iota
	TabReviews
	TabStats
)

var tabNames = []string{"Search", "Reviews", "Stats"}

func (t Tab) String() string { return tabNames[t] }

// tabBarHeight is the number of lines above the active view.
const tabBarHeight = 1

// ObsConfig wires observability into the App.
type ObsConfig struct {
	Logger *otel.Logger
	Ring   *otel.RingBuffer
}

// AppConfig configures the App.
type AppConfig struct {
	Gateway      gateway.Gateway
	Search       search.Options
	InitialQuery string
	Obs          ObsConfig
}

// App is the root Bubble Tea model.
// IMPORTANT: App never calls the gateway itself. Each controller issues its
// own commands and the App only routes messages.
type App struct {
	gw   gateway.Gateway
	log  *otel.Logger
	ring *otel.RingBuffer
	keys KeyMap

	search     search.Model
	feed       feed.Model
	stats      stats.Model
	product    gateway.ResultItem
	hasProduct bool

	tab          Tab
	comparing    bool
	initialQuery string

	spinner      spinner.Model
	help         help.Model
	debugVisible bool

	width  int
	height int
	ready  bool
}

// NewAppWithConfig creates the root model.
func NewAppWithConfig(cfg AppConfig) App {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = lipgloss.NewStyle().Foreground(theme.ColorHighlight)

	return App{
		gw:           cfg.Gateway,
		log:          cfg.Obs.Logger,
		ring:         cfg.Obs.Ring,
		keys:         DefaultKeyMap(),
		search:       search.New(cfg.Gateway, cfg.Obs.Logger, cfg.Search),
		initialQuery: cfg.InitialQuery,
		spinner:      sp,
		help:         help.New(),
	}
}

// Init starts the input cursor and spinner, and runs the initial query if
// one was given.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.search.Init(), a.spinner.Tick}
	if q := a.initialQuery; q != "" {
		cmds = append(cmds, func() tea.Msg { return search.SetQueryMsg{Text: q} })
	}
	return tea.Batch(cmds...)
}

// Update handles messages and returns the updated model and any commands.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if _, tick := msg.(spinner.TickMsg); !tick && otel.TraceEnabled() {
		a.log.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindMsgReceived, Comp: "ui", Msg: fmt.Sprintf("%T", msg)})
	}

	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height, a.ready = msg.Width, msg.Height, true
		a.resize()
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case tea.MouseMsg:
		return a.handleMouse(msg)

	case spinner.TickMsg:
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case search.SelectedMsg:
		if a.comparing {
			return a, a.compareWith(msg.Item)
		}
		return a, a.open(msg.Item)

	case OpenMsg:
		return a, a.open(msg.Item)

	case CompareMsg:
		return a, a.compareWith(msg.Item)

	case feed.ResetMsg, feed.LoadMoreMsg, feed.MarkHelpfulMsg, feed.PageMsg, feed.HelpfulMsg:
		if a.hasProduct {
			a.feed, cmd = a.feed.Update(msg)
		}
		return a, cmd

	case stats.RefreshMsg, stats.CompareMsg, stats.SnapshotMsg:
		if a.hasProduct {
			a.stats, cmd = a.stats.Update(msg)
		}
		return a, cmd

	case debounce.FireMsg, search.ResultsMsg, search.HoverMsg, search.SetQueryMsg, search.ClearMsg:
		a.search, cmd = a.search.Update(msg)
		return a, cmd
	}

	// Anything else (cursor blinks) belongs to the text input.
	a.search, cmd = a.search.Update(msg)
	return a, cmd
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	onSearch := a.tab == TabSearch

	switch {
	case msg.Type == tea.KeyCtrlC:
		return a, tea.Quit
	case key.Matches(msg, a.keys.Debug):
		a.debugVisible = !a.debugVisible
		return a, nil
	case a.debugVisible:
		return a, nil
	case key.Matches(msg, a.keys.NextTab):
		return a, a.setTab(a.nextTab(1))
	case key.Matches(msg, a.keys.PrevTab):
		return a, a.setTab(a.nextTab(-1))
	}

	var cmd tea.Cmd
	if onSearch {
		a.search, cmd = a.search.Update(msg)
		return a, cmd
	}

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit
	case key.Matches(msg, a.keys.Help):
		a.help.ShowAll = !a.help.ShowAll
		return a, nil
	case key.Matches(msg, a.keys.Compare) && a.tab == TabStats:
		cmd = a.setTab(TabSearch)
		a.comparing = true
		return a, cmd
	}

	switch a.tab {
	case TabReviews:
		a.feed, cmd = a.feed.Update(msg)
	case TabStats:
		a.stats, cmd = a.stats.Update(msg)
	}
	return a, cmd
}

func (a App) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.tab {
	case TabSearch:
		idx := a.search.RowAt(msg.Y - tabBarHeight)
		if idx < 0 {
			return a, nil
		}
		a.search, _ = a.search.Update(search.HoverMsg{Index: idx})
		if msg.Action == tea.MouseActionRelease && msg.Button == tea.MouseButtonLeft {
			a.search, cmd = a.search.Update(tea.KeyMsg{Type: tea.KeyEnter})
		}
	case TabReviews:
		switch msg.Button {
		case tea.MouseButtonWheelDown:
			a.feed, cmd = a.feed.Update(tea.KeyMsg{Type: tea.KeyDown})
		case tea.MouseButtonWheelUp:
			a.feed, cmd = a.feed.Update(tea.KeyMsg{Type: tea.KeyUp})
		}
	}
	return a, cmd
}

// open replaces the feed and statistics with ones for item. The previous
// controllers are closed so their late responses are dropped.
func (a *App) open(item gateway.ResultItem) tea.Cmd {
	if a.hasProduct {
		a.feed.Close()
		a.stats.Close()
	}
	a.product, a.hasProduct = item, true

	a.feed = feed.New(a.gw, a.log, item.ID)
	a.feed.SetTitle(item.DisplayName)
	a.stats = stats.New(a.gw, a.log, item.ID)
	a.stats.SetTitle(item.DisplayName)
	a.resize()

	return tea.Batch(a.setTab(TabReviews), a.feed.Init(), a.stats.Init())
}

func (a *App) compareWith(item gateway.ResultItem) tea.Cmd {
	a.comparing = false
	if !a.hasProduct {
		return a.open(item)
	}
	tabCmd := a.setTab(TabStats)
	var cmd tea.Cmd
	a.stats, cmd = a.stats.Update(stats.CompareMsg{SubjectID: item.ID, Title: item.DisplayName})
	return tea.Batch(tabCmd, cmd)
}

func (a *App) setTab(t Tab) tea.Cmd {
	if t != TabSearch && !a.hasProduct {
		t = TabSearch
	}
	a.tab = t
	if t == TabSearch {
		return a.search.Focus()
	}
	a.comparing = false
	a.search.Blur()
	return nil
}

func (a App) nextTab(step int) Tab {
	n := len(tabNames)
	return Tab((int(a.tab) + step + n) % n)
}

func (a *App) resize() {
	a.search.SetWidth(a.width)
	a.feed.SetSize(a.width, a.height-tabBarHeight-2)
	a.stats.SetWidth(a.width)
	a.help.Width = a.width
}

func (a App) busy() bool {
	if a.search.State() == search.Fetching {
		return true
	}
	return a.hasProduct && (a.feed.Loading() || a.stats.Loading())
}

// View renders the UI.
func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}
	if a.debugVisible {
		return debugOverlay(a.ring, a.width, a.height) + "\n" + debugStatusBar(a.width)
	}

	var content string
	switch a.tab {
	case TabReviews:
		content = a.feed.View()
	case TabStats:
		content = a.stats.View()
	default:
		content = a.search.View()
	}

	// Pad so the status bar stays at the bottom.
	bodyHeight := a.height - tabBarHeight - 2
	if n := strings.Count(content, "\n") + 1; n < bodyHeight {
		content += strings.Repeat("\n", bodyHeight-n)
	}

	return a.tabBar() + "\n" + content + "\n" + a.statusBar() + "\n" + a.help.View(a.helpKeys())
}

func (a App) tabBar() string {
	tabs := make([]string, len(tabNames))
	for i, name := range tabNames {
		style := theme.InactiveTab
		if Tab(i) == a.tab {
			style = theme.ActiveTab
		}
		tabs[i] = style.Render(name)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (a App) statusBar() string {
	left := "no product selected"
	if a.hasProduct {
		left = a.product.DisplayName
	}
	if a.comparing {
		left = "pick a product to compare"
	}
	if a.busy() {
		left = a.spinner.View() + " " + left
	}
	return theme.StatusBar.Width(a.width).Render(theme.Truncate(left, max(a.width-2, 1)))
}

func (a App) helpKeys() help.KeyMap {
	h := helpKeys{global: a.keys, search: a.tab == TabSearch}
	switch a.tab {
	case TabReviews:
		h.local = a.feed.Keys().ShortHelp()
	case TabStats:
		h.local = append(a.stats.Keys().ShortHelp(), a.keys.Compare)
	default:
		h.local = a.search.Keys().ShortHelp()
	}
	return h
}

// Tab returns the active tab (for testing).
func (a App) Tab() Tab { return a.tab }

// Product returns the open product, if any (for testing).
func (a App) Product() (gateway.ResultItem, bool) { return a.product, a.hasProduct }
