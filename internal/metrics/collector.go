package metrics

import (
	"time"

	"edf-viewer/internal/logging"
)

// StatsProvider interface for collecting stats
type StatsProvider interface {
	GetStats() Stats
}

// Stats holds the current catalogue statistics
type Stats struct {
	ValidRecords     int
	InvalidRecords   int
	TotalChannels    int
	RecordingSeconds float64
}

// Collector periodically collects and updates metrics
type Collector struct {
	statsProvider StatsProvider
	interval      time.Duration
	stopChan      chan struct{}
}

// NewCollector creates a new metrics collector
func NewCollector(provider StatsProvider, interval time.Duration) *Collector {
	return &Collector{
		statsProvider: provider,
		interval:      interval,
		stopChan:      make(chan struct{}),
	}
}

// Start begins the metrics collection loop
func (c *Collector) Start() {
	go c.collectLoop()
}

// Stop stops the metrics collection
func (c *Collector) Stop() {
	close(c.stopChan)
}

func (c *Collector) collectLoop() {
	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Collector) collect() {
	if c.statsProvider == nil {
		return
	}

	stats := c.statsProvider.GetStats()

	CatalogRecords.WithLabelValues("valid").Set(float64(stats.ValidRecords))
	CatalogRecords.WithLabelValues("invalid").Set(float64(stats.InvalidRecords))
	CatalogChannels.Set(float64(stats.TotalChannels))
	CatalogRecordingSeconds.Set(stats.RecordingSeconds)

	logging.Debug("Metrics collected: valid=%d, invalid=%d, channels=%d",
		stats.ValidRecords, stats.InvalidRecords, stats.TotalChannels)
}
