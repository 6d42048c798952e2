package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edf_viewer_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "edf_viewer_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "edf_viewer_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Scanner metrics
var (
	ScanRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edf_viewer_scan_runs_total",
			Help: "Total number of source directory scans by trigger",
		},
		[]string{"trigger"}, // "startup", "rescan", "poll"
	)

	ScanErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "edf_viewer_scan_errors_total",
			Help: "Total number of scans that failed",
		},
	)

	ScanDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "edf_viewer_scan_duration_seconds",
			Help:    "Duration of a full source directory scan",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	ScanLastRunTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "edf_viewer_scan_last_run_timestamp",
			Help: "Unix timestamp of the last completed scan",
		},
	)

	ScanIsRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "edf_viewer_scan_running",
			Help: "Whether a scan is currently running (1 = running, 0 = idle)",
		},
	)

	ScanWorkers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "edf_viewer_scan_workers",
			Help: "Number of parser workers used by the last scan",
		},
	)

	FilesParsedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edf_viewer_files_parsed_total",
			Help: "Total number of EDF files parsed by result",
		},
		[]string{"result"}, // "valid", "invalid"
	)

	FileParseDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "edf_viewer_file_parse_duration_seconds",
			Help:    "Duration of parsing a single EDF file",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
		},
	)

	PollChecksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "edf_viewer_poll_checks_total",
			Help: "Total number of change detection polls",
		},
	)

	PollChangesDetected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "edf_viewer_poll_changes_detected_total",
			Help: "Total number of polls that detected a change in the source directory",
		},
	)
)

// Catalogue metrics
var (
	CatalogRecords = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "edf_viewer_catalog_records",
			Help: "Number of records currently in the catalogue by validity",
		},
		[]string{"validity"}, // "valid", "invalid"
	)

	CatalogChannels = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "edf_viewer_catalog_channels",
			Help: "Total number of signal channels across valid records",
		},
	)

	CatalogRecordingSeconds = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "edf_viewer_catalog_recording_seconds",
			Help: "Total recording length across valid records in seconds",
		},
	)
)

// Store metrics
var (
	StoreOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edf_viewer_store_operations_total",
			Help: "Total number of store operations",
		},
		[]string{"store", "operation", "status"},
	)

	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "edf_viewer_store_operation_duration_seconds",
			Help:    "Store operation duration in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"store", "operation"},
	)
)

// Filesystem metrics
var (
	FilesystemOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "edf_viewer_filesystem_operation_duration_seconds",
			Help:    "Duration of filesystem operations including retries",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"volume", "operation"},
	)

	FilesystemOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edf_viewer_filesystem_operation_errors_total",
			Help: "Total number of failed filesystem operations",
		},
		[]string{"volume", "operation"},
	)

	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edf_viewer_filesystem_retry_attempts_total",
			Help: "Total number of retries after a stale file handle",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetrySuccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edf_viewer_filesystem_retry_success_total",
			Help: "Total number of operations that succeeded after retrying",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edf_viewer_filesystem_retry_failures_total",
			Help: "Total number of operations that failed after exhausting retries",
		},
		[]string{"operation", "volume"},
	)

	FilesystemStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edf_viewer_filesystem_stale_errors_total",
			Help: "Total number of stale file handle errors seen",
		},
		[]string{"operation", "volume"},
	)
)

// Application info metric
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "edf_viewer_app_info",
			Help: "Application information",
		},
		[]string{"version", "commit", "go_version"},
	)
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}

// RecordStoreOperation records the outcome and duration of a store call.
func RecordStoreOperation(store, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	StoreOperationsTotal.WithLabelValues(store, operation, status).Inc()
	StoreOperationDuration.WithLabelValues(store, operation).Observe(time.Since(start).Seconds())
}
