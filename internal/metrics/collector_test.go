package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

// =============================================================================
// Mock StatsProvider
// =============================================================================

type mockStatsProvider struct {
	mu    sync.Mutex
	stats Stats
	calls int
}

func (m *mockStatsProvider) GetStats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.stats
}

func (m *mockStatsProvider) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// =============================================================================
// Collector Tests
// =============================================================================

func TestCollectorCollectUpdatesGauges(t *testing.T) {
	provider := &mockStatsProvider{stats: Stats{
		ValidRecords:     4,
		InvalidRecords:   1,
		TotalChannels:    76,
		RecordingSeconds: 7200,
	}}

	c := NewCollector(provider, time.Hour)
	c.collect()

	if got := testutil.ToFloat64(CatalogRecords.WithLabelValues("valid")); got != 4 {
		t.Errorf("Expected 4 valid records, got %v", got)
	}
	if got := testutil.ToFloat64(CatalogRecords.WithLabelValues("invalid")); got != 1 {
		t.Errorf("Expected 1 invalid record, got %v", got)
	}
	if got := testutil.ToFloat64(CatalogChannels); got != 76 {
		t.Errorf("Expected 76 channels, got %v", got)
	}
	if got := testutil.ToFloat64(CatalogRecordingSeconds); got != 7200 {
		t.Errorf("Expected 7200 recording seconds, got %v", got)
	}
}

func TestCollectorNilProvider(_ *testing.T) {
	c := NewCollector(nil, time.Hour)
	// Should not panic
	c.collect()
}

func TestCollectorStartStop(t *testing.T) {
	provider := &mockStatsProvider{}

	c := NewCollector(provider, 10*time.Millisecond)
	c.Start()

	deadline := time.Now().Add(2 * time.Second)
	for provider.callCount() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	c.Stop()

	if provider.callCount() < 2 {
		t.Errorf("Expected collector to run at least twice, got %d", provider.callCount())
	}
}
