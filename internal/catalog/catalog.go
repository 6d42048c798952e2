package catalog

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"edf-viewer/internal/edf"
	"edf-viewer/internal/logging"
	"edf-viewer/internal/metrics"
)

// Scan triggers, used as metric labels.
const (
	TriggerStartup = "startup"
	TriggerRescan  = "rescan"
	TriggerPoll    = "poll"
)

// Scanner produces the records of the source directory.
type Scanner interface {
	Scan(ctx context.Context) ([]edf.Record, error)
	Source() string
}

// Catalog ties a scanner to a store and tracks load status.
type Catalog struct {
	scanner Scanner
	store   Store

	// loadMu serialises loads; a rescan waits for a running poll reload.
	loadMu sync.Mutex

	statusMu  sync.RWMutex
	loading   bool
	loaded    bool
	lastLoad  time.Time
	lastError error
	stats     metrics.Stats
	startTime time.Time
}

// HealthStatus contains health check information.
type HealthStatus struct {
	Ready          bool      `json:"ready"`
	Loading        bool      `json:"loading"`
	Source         string    `json:"source"`
	StartTime      time.Time `json:"startTime"`
	Uptime         string    `json:"uptime"`
	LastLoaded     time.Time `json:"lastLoaded,omitempty"`
	LastError      string    `json:"lastError,omitempty"`
	ValidRecords   int       `json:"validRecords"`
	InvalidRecords int       `json:"invalidRecords"`
}

// New creates a Catalog. Nothing is scanned until Load is called.
func New(scanner Scanner, store Store) *Catalog {
	return &Catalog{
		scanner:   scanner,
		store:     store,
		startTime: time.Now(),
	}
}

// Load clears the store, scans the source directory and stores the result.
// The store is cleared before the scan so a failed scan leaves it empty.
func (c *Catalog) Load(ctx context.Context, trigger string) error {
	c.loadMu.Lock()
	defer c.loadMu.Unlock()

	metrics.ScanRunsTotal.WithLabelValues(trigger).Inc()
	c.setLoading(true)
	defer c.setLoading(false)

	logging.Debug("Loading catalogue (trigger: %s)", trigger)

	if err := c.store.Replace(ctx, nil); err != nil {
		return c.finish(nil, fmt.Errorf("failed to clear store: %w", err))
	}

	records, err := c.scanner.Scan(ctx)
	if err != nil {
		return c.finish(nil, err)
	}

	if err := c.store.Replace(ctx, records); err != nil {
		return c.finish(nil, fmt.Errorf("failed to store records: %w", err))
	}

	return c.finish(records, nil)
}

func (c *Catalog) setLoading(v bool) {
	c.statusMu.Lock()
	c.loading = v
	c.statusMu.Unlock()
}

// finish records the outcome of a load and returns err unchanged.
func (c *Catalog) finish(records []edf.Record, err error) error {
	c.statusMu.Lock()
	defer c.statusMu.Unlock()

	c.lastError = err
	c.stats = computeStats(records)
	if err == nil {
		c.loaded = true
		c.lastLoad = time.Now()
	} else {
		logging.Error("Catalogue load failed: %v", err)
	}
	return err
}

// List returns the records in scan order.
func (c *Catalog) List(ctx context.Context) ([]edf.Record, error) {
	return c.store.List(ctx)
}

// ListSorted returns the records by recording date, newest first. Records
// without a date come last in scan order.
func (c *Catalog) ListSorted(ctx context.Context) ([]edf.Record, error) {
	records, err := c.store.List(ctx)
	if err != nil {
		return nil, err
	}
	SortByRecordingDate(records)
	return records, nil
}

// Rescan reloads the catalogue and returns the new records. The load runs to
// completion even if ctx is cancelled.
func (c *Catalog) Rescan(ctx context.Context, sorted bool) ([]edf.Record, error) {
	logging.Debug("Rescanning EDF source (sorted=%v)", sorted)
	ctx = context.WithoutCancel(ctx)

	if err := c.Load(ctx, TriggerRescan); err != nil {
		return nil, err
	}
	if sorted {
		return c.ListSorted(ctx)
	}
	return c.List(ctx)
}

// SortByRecordingDate sorts records in place, newest recording first and
// records without a date last. The sort is stable.
func SortByRecordingDate(records []edf.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i].RecordingDate, records[j].RecordingDate
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return a.After(b.Time)
	})
}

// IsReady reports whether at least one load has succeeded.
func (c *Catalog) IsReady() bool {
	c.statusMu.RLock()
	defer c.statusMu.RUnlock()
	return c.loaded
}

// GetHealthStatus returns detailed health information.
func (c *Catalog) GetHealthStatus() HealthStatus {
	c.statusMu.RLock()
	defer c.statusMu.RUnlock()

	status := HealthStatus{
		Ready:          c.loaded,
		Loading:        c.loading,
		Source:         c.scanner.Source(),
		StartTime:      c.startTime,
		Uptime:         time.Since(c.startTime).String(),
		LastLoaded:     c.lastLoad,
		ValidRecords:   c.stats.ValidRecords,
		InvalidRecords: c.stats.InvalidRecords,
	}
	if c.lastError != nil {
		status.LastError = c.lastError.Error()
	}
	return status
}

// GetStats returns statistics of the last load for the metrics collector.
func (c *Catalog) GetStats() metrics.Stats {
	c.statusMu.RLock()
	defer c.statusMu.RUnlock()
	return c.stats
}

func computeStats(records []edf.Record) metrics.Stats {
	var s metrics.Stats
	for _, r := range records {
		if !r.ValidEDF {
			s.InvalidRecords++
			continue
		}
		s.ValidRecords++
		s.TotalChannels += len(r.Channels)
		s.RecordingSeconds += r.Length()
	}
	return s
}
