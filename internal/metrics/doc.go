// Package metrics provides Prometheus instrumentation for edf-viewer.
//
// All metrics are prefixed with "edf_viewer_" and registered through
// promauto at package init, so importing the package is enough to expose
// them on the default registry.
//
// # Metric Categories
//
//   - HTTP: request counts, durations and in-flight gauge, recorded by the
//     middleware package.
//   - Scanner: scan runs by trigger, failures, durations, per-file parse
//     results and change polling.
//   - Catalogue: record counts by validity, channel totals and total
//     recording length, refreshed by the Collector.
//   - Store: replace/list operations for the memory and sqlite stores.
//   - Filesystem: operation durations and stale-handle retry counters, fed
//     through the filesystem.Observer implemented in observer.go.
//
// Call InitializeMetrics once at startup so every label combination is
// exported from the first scrape.
package metrics
