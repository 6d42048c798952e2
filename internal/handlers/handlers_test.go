package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"edf-viewer/internal/catalog"
	"edf-viewer/internal/edf"
	"edf-viewer/internal/scanner"
)

// =============================================================================
// Test Helpers
// =============================================================================

type fakeScanner struct {
	mu      sync.Mutex
	records []edf.Record
	err     error
}

func (f *fakeScanner) Scan(_ context.Context) ([]edf.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]edf.Record(nil), f.records...), nil
}

func (f *fakeScanner) Source() string { return "data/edf" }

func (f *fakeScanner) set(records []edf.Record, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = records
	f.err = err
}

func datedRecord(name string, date *time.Time) edf.Record {
	r := edf.Record{FileName: name, ValidEDF: true, Channels: []edf.Channel{}}
	if date != nil {
		r.RecordingDate = &edf.DateTime{Time: *date}
	}
	return r
}

func testRecords() []edf.Record {
	older := time.Date(2023, 5, 1, 8, 0, 0, 0, time.UTC)
	newer := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	return []edf.Record{
		datedRecord("old.edf", &older),
		edf.InvalidRecord("broken.edf"),
		datedRecord("new.edf", &newer),
	}
}

func setupHandlers(t *testing.T, records []edf.Record, scanErr error) (*Handlers, *fakeScanner, *catalog.Catalog) {
	t.Helper()

	fs := &fakeScanner{records: records, err: scanErr}
	cat := catalog.New(fs, catalog.NewMemoryStore())
	if scanErr == nil {
		if err := cat.Load(context.Background(), catalog.TriggerStartup); err != nil {
			t.Fatalf("Load failed: %v", err)
		}
	}
	return New(cat), fs, cat
}

func decodeNames(t *testing.T, w *httptest.ResponseRecorder) []string {
	t.Helper()

	var records []edf.Record
	if err := json.NewDecoder(w.Body).Decode(&records); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	names := make([]string, len(records))
	for i, r := range records {
		names[i] = r.FileName
	}
	return names
}

func decodeProblem(t *testing.T, w *httptest.ResponseRecorder) Problem {
	t.Helper()

	if ct := w.Header().Get("Content-Type"); ct != problemContentType {
		t.Errorf("Expected Content-Type %s, got %q", problemContentType, ct)
	}
	var p Problem
	if err := json.NewDecoder(w.Body).Decode(&p); err != nil {
		t.Fatalf("Failed to decode problem: %v", err)
	}
	return p
}

func equalNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// =============================================================================
// List Tests
// =============================================================================

func TestListEDFs(t *testing.T) {
	h, _, _ := setupHandlers(t, testRecords(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/edfs", http.NoBody)
	w := httptest.NewRecorder()
	h.ListEDFs(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected Content-Type application/json, got %q", ct)
	}

	want := []string{"old.edf", "broken.edf", "new.edf"}
	if got := decodeNames(t, w); !equalNames(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestListSortedEDFs(t *testing.T) {
	h, _, _ := setupHandlers(t, testRecords(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/edfs/sorted", http.NoBody)
	w := httptest.NewRecorder()
	h.ListSortedEDFs(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	want := []string{"new.edf", "old.edf", "broken.edf"}
	if got := decodeNames(t, w); !equalNames(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestListEDFsEmptyIsArray(t *testing.T) {
	h, _, _ := setupHandlers(t, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/edfs", http.NoBody)
	w := httptest.NewRecorder()
	h.ListEDFs(w, req)

	if body := w.Body.String(); body != "[]\n" {
		t.Errorf("Expected empty JSON array, got %q", body)
	}
}

func TestListEDFsReturnsCachedData(t *testing.T) {
	h, fs, _ := setupHandlers(t, testRecords(), nil)

	// Changes on disk are not visible until a rescan.
	fs.set([]edf.Record{edf.InvalidRecord("later.edf")}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/edfs", http.NoBody)
	w := httptest.NewRecorder()
	h.ListEDFs(w, req)

	if got := decodeNames(t, w); len(got) != 3 {
		t.Errorf("Expected cached 3 records, got %v", got)
	}
}

// =============================================================================
// Rescan Tests
// =============================================================================

func TestRescanEDFs(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"default unsorted", "", []string{"old.edf", "broken.edf", "new.edf"}},
		{"sorted false", "?sorted=false", []string{"old.edf", "broken.edf", "new.edf"}},
		{"sorted true", "?sorted=true", []string{"new.edf", "old.edf", "broken.edf"}},
		{"sorted 1", "?sorted=1", []string{"new.edf", "old.edf", "broken.edf"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, fs, _ := setupHandlers(t, nil, nil)
			fs.set(testRecords(), nil)

			req := httptest.NewRequest(http.MethodPost, "/api/edfs/rescan"+tt.query, http.NoBody)
			w := httptest.NewRecorder()
			h.RescanEDFs(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", w.Code)
			}
			if got := decodeNames(t, w); !equalNames(got, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestRescanEDFsInvalidSorted(t *testing.T) {
	h, _, _ := setupHandlers(t, testRecords(), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/edfs/rescan?sorted=maybe", http.NoBody)
	w := httptest.NewRecorder()
	h.RescanEDFs(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", w.Code)
	}
	p := decodeProblem(t, w)
	if p.Status != http.StatusBadRequest || p.Title != "Bad Request" {
		t.Errorf("Unexpected problem %+v", p)
	}
}

func TestRescanEDFsSourceNotFound(t *testing.T) {
	h, fs, cat := setupHandlers(t, testRecords(), nil)
	fs.set(nil, fmt.Errorf("%w in: %s", scanner.ErrSourceNotFound, "data/edf"))

	req := httptest.NewRequest(http.MethodPost, "/api/edfs/rescan", http.NoBody)
	w := httptest.NewRecorder()
	h.RescanEDFs(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected status 404, got %d", w.Code)
	}

	p := decodeProblem(t, w)
	if p.Detail != "EDF directory not found in: data/edf" {
		t.Errorf("Unexpected detail %q", p.Detail)
	}
	if p.Instance != "/api/edfs/rescan" {
		t.Errorf("Expected instance /api/edfs/rescan, got %q", p.Instance)
	}
	if p.Type != "about:blank" {
		t.Errorf("Expected type about:blank, got %q", p.Type)
	}

	// The failed rescan cleared the cached records.
	records, err := cat.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Expected empty catalogue after failed rescan, got %d records", len(records))
	}
}

func TestRescanEDFsInternalError(t *testing.T) {
	h, fs, _ := setupHandlers(t, nil, nil)
	fs.set(nil, fmt.Errorf("disk on fire"))

	req := httptest.NewRequest(http.MethodPost, "/api/edfs/rescan?sorted=true", http.NoBody)
	w := httptest.NewRecorder()
	h.RescanEDFs(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Expected status 500, got %d", w.Code)
	}
	if p := decodeProblem(t, w); p.Detail != "disk on fire" {
		t.Errorf("Expected detail 'disk on fire', got %q", p.Detail)
	}
}

// =============================================================================
// Problem Tests
// =============================================================================

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", fmt.Errorf("%w in: x", scanner.ErrSourceNotFound), http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("load: %w", fmt.Errorf("%w in: x", scanner.ErrSourceNotFound)), http.StatusNotFound},
		{"cancelled", fmt.Errorf("scan cancelled: %w", context.Canceled), http.StatusServiceUnavailable},
		{"other", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusForError(tt.err); got != tt.want {
				t.Errorf("Expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestWriteJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		expected string
	}{
		{"Simple map", map[string]string{"status": "ok"}, `{"status":"ok"}`},
		{"Null", nil, `null`},
		{"Empty slice", []string{}, `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			writeJSON(w, tt.input)

			// Trim newline that json.Encoder adds
			body := w.Body.String()
			body = body[:len(body)-1]

			if body != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, body)
			}
		})
	}
}
