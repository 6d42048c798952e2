// Package main provides the entry point for the EDF Viewer server.
//
// The server scans a directory of EDF recordings once at startup, keeps the
// parsed header summaries in a catalogue store, and serves them as JSON to
// the browser and the terminal client.
//
// # Application Lifecycle
//
//  1. Memory Configuration: Sets GOMEMLIMIT from MEMORY_LIMIT if requested
//  2. Configuration Loading: Reads environment variables, see [edf-viewer/internal/startup]
//  3. Store Initialization: In-memory by default, SQLite when STORE=sqlite
//  4. Initial Scan: Parses every .edf file in the source directory
//  5. HTTP Server Setup: Routes, middleware, optional metrics server
//  6. Graceful Shutdown: Handles SIGINT/SIGTERM and stops all components
//
// A failed initial scan does not stop the server. The catalogue stays empty,
// /health reports degraded, and the error is returned to clients until a
// rescan succeeds.
//
// # HTTP Server
//
// The main server (default port 8080) exposes:
//
//	GET  /api/edfs          records in scan order
//	GET  /api/edfs/sorted   records newest first
//	POST /api/edfs/rescan   rescan, ?sorted=true for the sorted view
//	GET  /health, /healthz  detailed health
//	GET  /livez             liveness
//	GET  /readyz            readiness, 503 until the first successful load
//	GET  /version           build information
//
// Errors are returned as application/problem+json with the message in the
// detail member.
//
// The metrics server (default port 9090) exposes /metrics and /health.
//
// # Background Services
//
//   - Change detection: polls the source directory every SCAN_INTERVAL and
//     reloads the catalogue when files appear, disappear or change
//   - Metrics collector: refreshes the catalogue gauges every minute
//
// # Graceful Shutdown
//
//  1. Stop change detection
//  2. Stop the metrics collector
//  3. Shut down the metrics server
//  4. Shut down the main HTTP server (30s timeout)
//  5. Close the store
//
// # Build
//
//	go build -o edf-viewer ./cmd/edf-viewer
//
// # Related Packages
//
//   - [edf-viewer/internal/edf]: EDF header parsing
//   - [edf-viewer/internal/scanner]: Source directory scanning and polling
//   - [edf-viewer/internal/catalog]: Catalogue loading and stores
//   - [edf-viewer/internal/handlers]: HTTP request handlers
//   - [edf-viewer/internal/middleware]: HTTP middleware
//   - [edf-viewer/internal/startup]: Configuration and initialization
package main
