// Package workers sizes worker pools from the CPUs available to the process.
//
// GOMAXPROCS already reflects container CPU limits, so pools scale down
// inside constrained containers without extra configuration. Set
// SCAN_WORKERS to pin the count explicitly.
package workers
