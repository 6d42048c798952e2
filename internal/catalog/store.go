package catalog

import (
	"context"
	"sync"
	"time"

	"edf-viewer/internal/edf"
	"edf-viewer/internal/metrics"
)

// Store holds the records of the last scan.
type Store interface {
	// Replace swaps the stored records for records, keeping their order.
	Replace(ctx context.Context, records []edf.Record) error
	// List returns the stored records in scan order.
	List(ctx context.Context) ([]edf.Record, error)
	Close() error
}

// MemoryStore keeps records in memory. It is the default store.
type MemoryStore struct {
	mu      sync.RWMutex
	records []edf.Record
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Replace(_ context.Context, records []edf.Record) error {
	start := time.Now()
	defer metrics.RecordStoreOperation("memory", "replace", start, nil)

	copied := make([]edf.Record, len(records))
	copy(copied, records)

	m.mu.Lock()
	m.records = copied
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) List(_ context.Context) ([]edf.Record, error) {
	start := time.Now()
	defer metrics.RecordStoreOperation("memory", "list", start, nil)

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]edf.Record, len(m.records))
	copy(out, m.records)
	return out, nil
}

func (m *MemoryStore) Close() error {
	return nil
}
