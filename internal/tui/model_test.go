package tui

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"edf-viewer/internal/cache"
	"edf-viewer/internal/edf"
	"edf-viewer/internal/edfclient"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogueJSON = `[
{"fileName":"alpha.edf","validEdf":true,"recordingDate":"2024-01-15T10:30:00","patientName":"Jane Roe","channels":[{"name":"EEG Fp1","type":"electrode"}],"numberOfChannels":1,"recordingLength":3723,"numberOfAnnotations":4},
{"fileName":"broken.edf","validEdf":false,"errorMessage":"Invalid EDF File","channels":[]},
{"fileName":"bravo.edf","validEdf":true,"recordingDate":"2023-06-01T08:00:00","patientName":"Bob Smith","channels":[],"numberOfChannels":0,"recordingLength":60,"numberOfAnnotations":0}
]`

type catalogueServer struct {
	*httptest.Server
	mu    sync.Mutex
	paths []string
	fail  bool
}

func newCatalogueServer(t *testing.T) *catalogueServer {
	t.Helper()
	cs := &catalogueServer{}
	cs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cs.mu.Lock()
		cs.paths = append(cs.paths, r.Method+" "+r.URL.Path)
		fail := cs.fail
		cs.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if fail {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"detail":"EDF directory not found in: data/edf"}`))
			return
		}
		w.Write([]byte(catalogueJSON))
	}))
	t.Cleanup(cs.Close)
	return cs
}

func (cs *catalogueServer) lastPath() string {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if len(cs.paths) == 0 {
		return ""
	}
	return cs.paths[len(cs.paths)-1]
}

func newTestModel(t *testing.T, cs *catalogueServer, opts Options) Model {
	t.Helper()
	h := edfclient.New(cs.URL+"/api/edfs", edfclient.WithDelay(0))
	m := New(h, opts)
	t.Cleanup(m.cancel)
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// step feeds msg to the model and returns the updated model.
func step(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

func fetched(t *testing.T, m Model) Model {
	t.Helper()
	m, _ = step(t, m, m.fetch()())
	return m
}

func TestInitialViewIsIdle(t *testing.T) {
	cs := newCatalogueServer(t)
	m := newTestModel(t, cs, Options{})

	assert.True(t, m.snap.Idle())
	assert.Contains(t, m.View(), "Idle")
	assert.Contains(t, m.View(), "scan order")
}

func TestFetchPopulatesTable(t *testing.T) {
	cs := newCatalogueServer(t)
	m := fetched(t, newTestModel(t, cs, Options{}))

	require.Len(t, m.records, 3)
	assert.Equal(t, "GET /api/edfs", cs.lastPath())
	assert.Len(t, m.table.Rows(), 3)
	assert.Contains(t, m.View(), "3 files")

	sel, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, "alpha.edf", sel.FileName)
}

func TestLoadingShowsSpinner(t *testing.T) {
	cs := newCatalogueServer(t)
	m := newTestModel(t, cs, Options{})

	done := make(chan tea.Msg)
	go func() { done <- m.fetch()() }()

	// The first pushed state is the loading one.
	msg := waitForSnapshot(m.updates)()
	m, cmd := step(t, m, msg)
	assert.True(t, m.snap.Loading)
	assert.NotNil(t, cmd, "spinner tick expected")
	assert.Contains(t, m.View(), "Loading...")

	m, _ = step(t, m, <-done)
	assert.False(t, m.snap.Loading)
	assert.True(t, m.snap.Fetched)
	assert.NotContains(t, m.View(), "Loading...")
}

func TestErrorKeepsRecords(t *testing.T) {
	cs := newCatalogueServer(t)
	m := fetched(t, newTestModel(t, cs, Options{}))

	cs.mu.Lock()
	cs.fail = true
	cs.mu.Unlock()

	m, cmd := step(t, m, runes("R"))
	require.NotNil(t, cmd)
	m, _ = step(t, m, cmd())

	assert.Equal(t, "POST /api/edfs/rescan", cs.lastPath())
	assert.Contains(t, m.View(), "Error: EDF directory not found in: data/edf")
	assert.Len(t, m.records, 3)
}

func TestToggleSortFetchesSortedView(t *testing.T) {
	cs := newCatalogueServer(t)
	m := newTestModel(t, cs, Options{})

	m, cmd := step(t, m, runes("s"))
	assert.True(t, m.sorted)
	assert.NotNil(t, cmd)
	assert.Contains(t, m.View(), "newest first")

	m, _ = step(t, m, m.fetch()())
	assert.Equal(t, "GET /api/edfs/sorted", cs.lastPath())
}

func TestNavigation(t *testing.T) {
	cs := newCatalogueServer(t)
	m := fetched(t, newTestModel(t, cs, Options{}))

	m, _ = step(t, m, runes("j"))
	m, _ = step(t, m, runes("j"))
	sel, _ := m.Selected()
	assert.Equal(t, "bravo.edf", sel.FileName)

	m, _ = step(t, m, runes("k"))
	sel, _ = m.Selected()
	assert.Equal(t, "broken.edf", sel.FileName)
}

func TestFilter(t *testing.T) {
	cs := newCatalogueServer(t)
	m := fetched(t, newTestModel(t, cs, Options{}))

	m, _ = step(t, m, runes("/"))
	require.True(t, m.filtering)

	for _, r := range "smith" {
		m, _ = step(t, m, runes(string(r)))
	}
	require.Len(t, m.visible, 1)
	sel, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, "bravo.edf", sel.FileName)
	assert.Contains(t, m.View(), "1/3")

	// Keys typed while filtering do not trigger actions.
	assert.Equal(t, "GET /api/edfs", cs.lastPath())

	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.filtering)
	assert.Len(t, m.visible, 1)

	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Len(t, m.visible, 3)
}

func TestQuit(t *testing.T) {
	cs := newCatalogueServer(t)
	m := newTestModel(t, cs, Options{})

	_, cmd := step(t, m, runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.Error(t, m.ctx.Err(), "quitting cancels in-flight requests")
}

func TestWindowResize(t *testing.T) {
	cs := newCatalogueServer(t)
	m := newTestModel(t, cs, Options{})

	m, _ = step(t, m, tea.WindowSizeMsg{Width: 160, Height: 40})
	assert.Equal(t, 160, m.width)
	assert.Equal(t, 160, m.help.Width)
	assert.Equal(t, 156-2*7, sumWidths(m.table.Columns()), "columns leave room for cell padding")
}

func TestOfflineCache(t *testing.T) {
	store, err := cache.Open(t.TempDir(), "http://cached.example")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	cs := newCatalogueServer(t)
	m := newTestModel(t, cs, Options{Cache: store})

	// First run: fetch and write the cache.
	m, cmd := step(t, m, m.fetch()())
	require.NotNil(t, cmd)
	runBatch(cmd)

	cat, ok, err := store.Load(cache.ViewScan)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, cat.Files, 3)

	// A new model shows the cached copy before its first fetch completes.
	fresh := newTestModel(t, cs, Options{Cache: store})
	loaded := fresh.loadCache(false)()
	require.IsType(t, cacheLoadedMsg{}, loaded)

	fresh, _ = step(t, fresh, loaded)
	assert.Len(t, fresh.records, 3)
	assert.Contains(t, fresh.View(), "Offline copy")

	fresh, _ = step(t, fresh, fresh.fetch()())
	assert.Nil(t, fresh.cached)
	assert.NotContains(t, fresh.View(), "Offline copy")
}

func TestCacheSkipsResultOfOtherView(t *testing.T) {
	store, err := cache.Open(t.TempDir(), "http://cached.example")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	cs := newCatalogueServer(t)
	m := newTestModel(t, cs, Options{Cache: store})

	// A sorted request is started, then the user switches back.
	m.sorted = true
	sortedCmd := m.fetch()
	m.sorted = false
	scanCmd := m.fetch()

	// The scan request finishes first, the sorted one overwrites the helper
	// state before the scan result is handled.
	scanDone := scanCmd()
	sortedDone := sortedCmd()
	assert.Equal(t, "GET /api/edfs/sorted", cs.lastPath())

	m, cmd := step(t, m, scanDone)
	assert.Nil(t, cmd, "nothing to save while the sorted request is pending")
	m, cmd = step(t, m, sortedDone)
	assert.Nil(t, cmd, "results of the other view are not saved")

	_, ok, err := store.Load(cache.ViewScan)
	require.NoError(t, err)
	assert.False(t, ok)

	// Once nothing else is in flight the next result is cached again.
	m, cmd = step(t, m, m.fetch()())
	require.NotNil(t, cmd)
	runBatch(cmd)

	_, ok, err = store.Load(cache.ViewScan)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, [2]int{}, *m.pending)
}

func sumWidths(cols []table.Column) int {
	total := 0
	for _, c := range cols {
		total += c.Width
	}
	return total
}

// runBatch executes the commands of a batch that do not block.
func runBatch(cmd tea.Cmd) {
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			if c == nil {
				continue
			}
			ch := make(chan struct{})
			go func(c tea.Cmd) {
				c()
				close(ch)
			}(c)
			select {
			case <-ch:
			case <-time.After(100 * time.Millisecond):
			}
		}
	}
}

// =============================================================================
// Record Formatting Tests
// =============================================================================

func TestDecodeRecords(t *testing.T) {
	files := []json.RawMessage{
		json.RawMessage(`{"fileName":"a.edf","validEdf":true}`),
		json.RawMessage(`"not a record"`),
		json.RawMessage(`{}`),
	}

	records := DecodeRecords(files)
	require.Len(t, records, 3)
	assert.Equal(t, "a.edf", records[0].FileName)
	assert.Equal(t, "<record 2>", records[1].FileName)
	assert.False(t, records[1].ValidEDF)
	assert.Equal(t, "<record 3>", records[2].FileName)
}

func TestRow(t *testing.T) {
	var files []json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(catalogueJSON), &files))
	records := DecodeRecords(files)

	row := Row(records[0])
	assert.Equal(t, []string{"alpha.edf", "yes", "2024-01-15 10:30:00", "Jane Roe", "1", "1h2m3s", "4"}, []string(row))

	invalid := Row(edf.InvalidRecord("x.edf"))
	assert.Equal(t, []string{"x.edf", "no", "-", edf.NotAvailable, "-", "-", "-"}, []string(invalid))
}

func TestFilterRecordsEmptyQuery(t *testing.T) {
	records := []edf.Record{edf.InvalidRecord("a.edf"), edf.InvalidRecord("b.edf")}
	assert.Equal(t, []int{0, 1}, filterRecords(records, "  "))
	assert.Empty(t, filterRecords(records, "zzz"))
}

func TestMatchRecords(t *testing.T) {
	var files []json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(catalogueJSON), &files))
	records := DecodeRecords(files)

	got := MatchRecords(records, "JANE")
	require.Len(t, got, 1)
	assert.Equal(t, "alpha.edf", got[0].FileName)

	assert.Len(t, MatchRecords(records, ""), 3)
	assert.Len(t, MatchRecords(records, "edf"), 3)
}

func TestRenderPlain(t *testing.T) {
	var files []json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(catalogueJSON), &files))

	var buf bytes.Buffer
	require.NoError(t, RenderPlain(&buf, DecodeRecords(files)))

	out := buf.String()
	assert.Contains(t, out, "File")
	assert.Contains(t, out, "alpha.edf")
	assert.Contains(t, out, "Bob Smith")
	assert.Contains(t, out, "3 files, 2 valid")
}

func TestObserveDropsWhenFull(t *testing.T) {
	cs := newCatalogueServer(t)
	h := edfclient.New(cs.URL+"/api/edfs", edfclient.WithDelay(0))

	ch := make(chan edfclient.Snapshot)
	unsubscribe := observe(h, ch)
	defer unsubscribe()

	finished := make(chan struct{})
	go func() {
		h.FetchFiles(context.Background(), edfclient.Options{})
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatal("request blocked on an unread subscriber channel")
	}
}
