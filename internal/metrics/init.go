package metrics

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	for _, trigger := range []string{"startup", "rescan", "poll"} {
		ScanRunsTotal.WithLabelValues(trigger)
	}

	for _, result := range []string{"valid", "invalid"} {
		FilesParsedTotal.WithLabelValues(result)
		CatalogRecords.WithLabelValues(result)
	}

	for _, store := range []string{"memory", "sqlite"} {
		for _, op := range []string{"replace", "list"} {
			StoreOperationsTotal.WithLabelValues(store, op, "success")
			StoreOperationsTotal.WithLabelValues(store, op, "error")
			StoreOperationDuration.WithLabelValues(store, op)
		}
	}

	volumes := []string{"source", "database", "unknown"}
	for _, vol := range volumes {
		for _, op := range []string{"stat", "open", "readdir"} {
			FilesystemOperationDuration.WithLabelValues(vol, op)
			FilesystemOperationErrors.WithLabelValues(vol, op)
			FilesystemRetryAttempts.WithLabelValues(op, vol)
			FilesystemRetrySuccess.WithLabelValues(op, vol)
			FilesystemRetryFailures.WithLabelValues(op, vol)
			FilesystemStaleErrors.WithLabelValues(op, vol)
		}
	}
}
