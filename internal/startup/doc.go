// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging.
//
// # Configuration
//
// All configuration is loaded from environment variables via [LoadConfig]:
//
//   - EDF_APP_DIR: Base directory relative sources are resolved against (default: .)
//   - EDF_SOURCE: Directory holding the EDF files (default: data/edf)
//   - PORT: HTTP server port (default: 8080)
//   - METRICS_PORT: Prometheus metrics server port (default: 9090)
//   - METRICS_ENABLED: Enable or disable metrics server (default: true)
//   - STORE: Catalogue store, memory or sqlite (default: memory)
//   - DATABASE_DIR: Directory of the SQLite database, sqlite store only (default: /database)
//   - SCAN_INTERVAL: Change detection interval as Go duration, 0 disables (default: 0)
//   - SCAN_WORKERS: Number of parallel file parsers (default: 2 per CPU, at most 8)
//   - FS_RETRIES: Retries of a filesystem call failing with a stale NFS handle (default: 3)
//   - CORS_ALLOWED_ORIGINS: Comma separated origins allowed to call the API
//   - CORS_ALLOWED_METHODS: Comma separated methods allowed cross-origin (default: GET,POST)
//   - CORS_ALLOW_CREDENTIALS: Allow credentialed cross-origin requests (default: false)
//   - LOG_LEVEL: Logging level - debug, info, warn, error (default: info)
//   - LOG_STATIC_FILES: Log requests outside the API (default: false)
//   - LOG_HEALTH_CHECKS: Log health check requests (default: true)
//   - MEMORY_LIMIT, MEMORY_RATIO, GOMEMLIMIT: Go memory limit, see [ConfigureMemory]
//
// A missing EDF directory is not a startup error; requests report it until
// the directory appears and a rescan succeeds.
//
// # Build Information
//
// Version, Commit and BuildTime are set at build time with -ldflags:
//
//	go build -ldflags "-X edf-viewer/internal/startup.Version=1.0.0"
package startup
