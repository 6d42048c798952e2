package edfclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"edf-viewer/internal/logging"

	"github.com/google/uuid"
)

const (
	// DefaultDelay is waited before every request so loading indicators are
	// visible while testing by hand.
	// TODO: remove the delay before production use.
	DefaultDelay = 1200 * time.Millisecond

	// DefaultTimeout bounds a single request including the response body.
	DefaultTimeout = 60 * time.Second

	// maxBodySize caps how much of a response is read.
	maxBodySize = 64 << 20
)

// Snapshot is a copy of the helper state at one point in time.
type Snapshot struct {
	// Files holds the records of the last successful call, undecoded.
	Files   []json.RawMessage
	Loading bool
	Fetched bool
	// Error is empty unless the last completed call failed.
	Error string
}

// Idle reports whether no call has started yet.
func (s Snapshot) Idle() bool {
	return !s.Loading && !s.Fetched
}

// Options selects the variant of a call.
type Options struct {
	Sorted bool
}

// Option configures a Helper.
type Option func(*Helper)

// WithDelay replaces DefaultDelay. Zero disables the delay.
func WithDelay(d time.Duration) Option {
	return func(h *Helper) {
		if d >= 0 {
			h.delay = d
		}
	}
}

// WithHTTPClient sets the client used for requests.
func WithHTTPClient(c *http.Client) Option {
	return func(h *Helper) {
		if c != nil {
			h.httpClient = c
		}
	}
}

type subscriber struct {
	id int
	fn func(Snapshot)
}

// Helper fetches the EDF catalogue and tracks request state.
type Helper struct {
	baseURL    string
	httpClient *http.Client
	delay      time.Duration

	mu      sync.Mutex
	files   []json.RawMessage
	loading bool
	fetched bool
	errMsg  string

	subsMu sync.Mutex
	subs   []subscriber
	nextID int
}

// New creates a helper for the catalogue endpoint at baseURL, for example
// http://localhost:8080/api/edfs. A trailing slash is ignored.
func New(baseURL string, opts ...Option) *Helper {
	h := &Helper{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		delay:      DefaultDelay,
		files:      []json.RawMessage{},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// BaseURL returns the catalogue endpoint.
func (h *Helper) BaseURL() string {
	return h.baseURL
}

// Snapshot returns the current state.
func (h *Helper) Snapshot() Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.snapshotLocked()
}

func (h *Helper) snapshotLocked() Snapshot {
	files := make([]json.RawMessage, len(h.files))
	copy(files, h.files)
	return Snapshot{
		Files:   files,
		Loading: h.loading,
		Fetched: h.fetched,
		Error:   h.errMsg,
	}
}

// Subscribe registers fn to be called with the new state after every state
// change. Calls happen on the goroutine running the request. The returned
// function removes the subscription.
func (h *Helper) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	h.subsMu.Lock()
	defer h.subsMu.Unlock()

	id := h.nextID
	h.nextID++
	h.subs = append(h.subs, subscriber{id: id, fn: fn})

	return func() {
		h.subsMu.Lock()
		defer h.subsMu.Unlock()
		for i, s := range h.subs {
			if s.id == id {
				h.subs = append(h.subs[:i:i], h.subs[i+1:]...)
				return
			}
		}
	}
}

// update applies fn under the state lock and notifies subscribers.
func (h *Helper) update(fn func()) {
	h.mu.Lock()
	fn()
	snap := h.snapshotLocked()
	h.mu.Unlock()

	h.subsMu.Lock()
	subs := make([]subscriber, len(h.subs))
	copy(subs, h.subs)
	h.subsMu.Unlock()

	for _, s := range subs {
		s.fn(snap)
	}
}

// FetchFiles reads the catalogue, or its sorted variant, and replaces the
// result list on success.
func (h *Helper) FetchFiles(ctx context.Context, opts Options) {
	url := h.baseURL
	if opts.Sorted {
		url += "/sorted"
	}
	url += "?t=" + strconv.FormatInt(time.Now().UnixMilli(), 10)

	h.perform(ctx, http.MethodGet, url)
}

// RescanFiles asks the server to rescan its source directory and replaces
// the result list with the records it returns.
func (h *Helper) RescanFiles(ctx context.Context, opts Options) {
	url := h.baseURL + "/rescan?sorted=" + strconv.FormatBool(opts.Sorted)

	h.perform(ctx, http.MethodPost, url)
}

func (h *Helper) perform(ctx context.Context, method, url string) {
	h.update(func() {
		h.loading = true
		h.fetched = false
		h.errMsg = ""
	})

	var (
		files  []json.RawMessage
		errMsg string
	)
	defer func() {
		if r := recover(); r != nil {
			logging.Error("edfclient: %s %s panicked: %v", method, url, r)
			files, errMsg = nil, fmt.Sprintf("request failed: %v", r)
		}
		h.update(func() {
			if errMsg != "" {
				h.errMsg = errMsg
			} else {
				h.files = files
			}
			h.loading = false
			h.fetched = true
		})
	}()

	if err := sleep(ctx, h.delay); err != nil {
		errMsg = err.Error()
		return
	}

	files, errMsg = h.do(ctx, method, url)
	if errMsg != "" {
		logging.Warn("edfclient: %s %s: %s", method, url, errMsg)
	}
}

// do runs one request and returns the decoded list or an error message.
func (h *Helper) do(ctx context.Context, method, url string) ([]json.RawMessage, string) {
	req, err := http.NewRequestWithContext(ctx, method, url, http.NoBody)
	if err != nil {
		return nil, err.Error()
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	logging.Debug("edfclient: %s %s (request %s)", method, url, requestID)
	start := time.Now()

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, err.Error()
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, err.Error()
	}

	logging.Debug("edfclient: %s %s -> %d in %v (%d bytes)",
		method, url, resp.StatusCode, time.Since(start), len(body))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errorMessage(resp.StatusCode, body)
	}

	var files []json.RawMessage
	if err := json.Unmarshal(body, &files); err != nil {
		return nil, err.Error()
	}
	if files == nil {
		files = []json.RawMessage{}
	}
	return files, ""
}

// errorMessage prefers the detail of a problem response.
func errorMessage(status int, body []byte) string {
	var problem struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &problem) == nil && problem.Detail != "" {
		return problem.Detail
	}
	return fmt.Sprintf("request failed with status code %d", status)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
