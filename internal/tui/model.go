package tui

import (
	"context"
	"fmt"
	"strings"

	"edf-viewer/internal/cache"
	"edf-viewer/internal/edf"
	"edf-viewer/internal/edfclient"
	"edf-viewer/internal/logging"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Lines used by everything except the table.
const chromeHeight = 8

// Options configures the browser model.
type Options struct {
	// Sorted starts in the recording date view.
	Sorted bool
	// Cache, if set, provides the offline copy of the catalogue.
	Cache *cache.Store
}

// Model is the Bubble Tea model of the browser. It owns one request helper
// and renders its state.
type Model struct {
	ctx    context.Context
	cancel context.CancelFunc

	helper      *edfclient.Helper
	updates     chan edfclient.Snapshot
	unsubscribe func()
	store       *cache.Store

	keys        KeyMap
	help        help.Model
	spinner     spinner.Model
	table       table.Model
	filterInput textinput.Model

	snap      edfclient.Snapshot
	records   []edf.Record
	visible   []int
	sorted    bool
	pending   *[2]int // requests in flight per view, see viewIndex
	filtering bool
	spinning  bool
	cached    *cache.Catalogue

	width  int
	height int
}

// New creates the model and subscribes it to helper.
func New(helper *edfclient.Helper, opts Options) Model {
	ctx, cancel := context.WithCancel(context.Background())

	updates := make(chan edfclient.Snapshot, 16)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = SpinnerStyle

	tbl := table.New(
		table.WithColumns(Columns(100)),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	input := textinput.New()
	input.Prompt = "/ "
	input.Placeholder = "file name or patient"
	input.CharLimit = 64

	return Model{
		ctx:         ctx,
		cancel:      cancel,
		helper:      helper,
		updates:     updates,
		unsubscribe: observe(helper, updates),
		store:       opts.Cache,
		keys:        DefaultKeyMap(),
		help:        help.New(),
		spinner:     sp,
		table:       tbl,
		filterInput: input,
		snap:        helper.Snapshot(),
		sorted:      opts.Sorted,
		pending:     new([2]int),
	}
}

func viewIndex(sorted bool) int {
	if sorted {
		return 1
	}
	return 0
}

// Init loads the offline copy and starts the first fetch.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		waitForSnapshot(m.updates),
		m.loadCache(m.sorted),
		m.fetch(),
	)
}

func (m Model) fetch() tea.Cmd {
	h, ctx, sorted := m.helper, m.ctx, m.sorted
	m.pending[viewIndex(sorted)]++
	return func() tea.Msg {
		h.FetchFiles(ctx, edfclient.Options{Sorted: sorted})
		return requestDoneMsg{sorted: sorted}
	}
}

func (m Model) rescan() tea.Cmd {
	h, ctx, sorted := m.helper, m.ctx, m.sorted
	m.pending[viewIndex(sorted)]++
	return func() tea.Msg {
		h.RescanFiles(ctx, edfclient.Options{Sorted: sorted})
		return requestDoneMsg{sorted: sorted}
	}
}

func (m Model) loadCache(sorted bool) tea.Cmd {
	if m.store == nil {
		return nil
	}
	store := m.store
	return func() tea.Msg {
		cat, ok, err := store.Load(cacheView(sorted))
		if err != nil {
			logging.Warn("Failed to read catalogue cache: %v", err)
			return nil
		}
		if !ok {
			return nil
		}
		return cacheLoadedMsg{sorted: sorted, catalogue: cat}
	}
}

func (m Model) saveCache(sorted bool, snap edfclient.Snapshot) tea.Cmd {
	if m.store == nil {
		return nil
	}
	store := m.store
	return func() tea.Msg {
		if err := store.Save(cacheView(sorted), snap.Files); err != nil {
			logging.Warn("Failed to write catalogue cache: %v", err)
		}
		return nil
	}
}

func cacheView(sorted bool) string {
	if sorted {
		return cache.ViewSorted
	}
	return cache.ViewScan
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.table.SetColumns(Columns(msg.Width - 4))
		m.table.SetHeight(max(3, msg.Height-chromeHeight))
		return m, nil

	case snapshotMsg:
		cmd := m.apply(edfclient.Snapshot(msg))
		return m, tea.Batch(cmd, waitForSnapshot(m.updates))

	case requestDoneMsg:
		if n := &m.pending[viewIndex(msg.sorted)]; *n > 0 {
			*n--
		}
		snap := m.helper.Snapshot()
		cmd := m.apply(snap)
		// While a request for the other view is in flight the helper may
		// already hold its files, so only an unambiguous result is cached.
		if snap.Fetched && snap.Error == "" && msg.sorted == m.sorted &&
			m.pending[viewIndex(!msg.sorted)] == 0 {
			return m, tea.Batch(cmd, m.saveCache(msg.sorted, snap))
		}
		return m, cmd

	case cacheLoadedMsg:
		// Live data always wins over the offline copy.
		if msg.sorted == m.sorted && len(m.records) == 0 && !(m.snap.Fetched && m.snap.Error == "") {
			cat := msg.catalogue
			m.cached = &cat
			m.setRecords(DecodeRecords(cat.Files))
		}
		return m, nil

	case spinner.TickMsg:
		if !m.snap.Loading {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.filtering {
			return m.updateFilter(msg)
		}
		return m.handleKey(msg)
	}

	return m, nil
}

// apply takes over a helper state and starts the spinner when loading.
func (m *Model) apply(s edfclient.Snapshot) tea.Cmd {
	m.snap = s

	if s.Fetched && (s.Error == "" || len(s.Files) > 0) {
		m.cached = nil
		m.setRecords(DecodeRecords(s.Files))
	}

	if s.Loading && !m.spinning {
		m.spinning = true
		return m.spinner.Tick
	}
	return nil
}

func (m *Model) setRecords(records []edf.Record) {
	m.records = records
	m.refilter()
}

func (m *Model) refilter() {
	m.visible = filterRecords(m.records, m.filterInput.Value())
	rows := make([]table.Row, len(m.visible))
	for i, idx := range m.visible {
		rows[i] = Row(m.records[idx])
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(0, len(rows)-1))
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.cancel()
		m.unsubscribe()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		m.table.MoveUp(1)

	case key.Matches(msg, m.keys.Down):
		m.table.MoveDown(1)

	case key.Matches(msg, m.keys.Refresh):
		return m, m.fetch()

	case key.Matches(msg, m.keys.ToggleSort):
		m.sorted = !m.sorted
		return m, tea.Batch(m.loadCache(m.sorted), m.fetch())

	case key.Matches(msg, m.keys.Rescan):
		return m, m.rescan()

	case key.Matches(msg, m.keys.Filter):
		m.filtering = true
		m.table.Blur()
		return m, m.filterInput.Focus()

	case key.Matches(msg, m.keys.Escape):
		if m.filterInput.Value() != "" {
			m.filterInput.SetValue("")
			m.refilter()
		}
	}
	return m, nil
}

func (m Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.filtering = false
		m.filterInput.SetValue("")
		m.filterInput.Blur()
		m.table.Focus()
		m.refilter()
		return m, nil

	case key.Matches(msg, m.keys.Accept):
		m.filtering = false
		m.filterInput.Blur()
		m.table.Focus()
		return m, nil
	}

	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	m.refilter()
	return m, cmd
}

// Selected returns the record under the cursor.
func (m Model) Selected() (edf.Record, bool) {
	c := m.table.Cursor()
	if c < 0 || c >= len(m.visible) {
		return edf.Record{}, false
	}
	return m.records[m.visible[c]], true
}

// View implements tea.Model
func (m Model) View() string {
	var b strings.Builder

	view := "scan order"
	if m.sorted {
		view = "newest first"
	}
	b.WriteString(TitleStyle.Render("EDF Browser"))
	b.WriteString(" ")
	b.WriteString(SubtitleStyle.Render(fmt.Sprintf("%s  ·  %s", m.helper.BaseURL(), view)))
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")

	if len(m.records) == 0 && m.snap.Fetched && m.snap.Error == "" {
		b.WriteString(DimStyle.Render("No EDF files found."))
	} else {
		b.WriteString(FrameStyle.Render(m.table.View()))
	}
	b.WriteString("\n")

	if m.filtering || m.filterInput.Value() != "" {
		b.WriteString(m.filterInput.View())
		b.WriteString(DimStyle.Render(fmt.Sprintf("  %d/%d", len(m.visible), len(m.records))))
		b.WriteString("\n")
	}
	if r, ok := m.Selected(); ok {
		b.WriteString(DimStyle.Render(r.Summary()))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))

	return b.String()
}

func (m Model) statusLine() string {
	switch {
	case m.snap.Loading:
		return m.spinner.View() + " Loading..."
	case m.snap.Error != "":
		return ErrorStyle.Render("Error: " + m.snap.Error)
	case m.cached != nil:
		return WarnStyle.Render(fmt.Sprintf("Offline copy from %s",
			m.cached.SavedAt.Local().Format("2006-01-02 15:04")))
	case m.snap.Idle():
		return DimStyle.Render("Idle")
	default:
		return fmt.Sprintf("%d files", len(m.records))
	}
}
