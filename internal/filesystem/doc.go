/*
Package filesystem provides filesystem operations with retry logic for NFS
stale file handle errors.

EDF archives are frequently kept on network shares. StatWithRetry,
OpenWithRetry and ReadDirWithRetry retry ESTALE (errno 116) failures with
exponential backoff and return every other error immediately.

Usage:

	info, err := filesystem.StatWithRetry(sourceDir, filesystem.DefaultRetryConfig())

Metrics are reported through an Observer set with SetObserver; the metrics
package supplies the Prometheus implementation. Paths are labeled with a
volume name resolved by longest-prefix match (SetDefaultVolumeResolver).
*/
package filesystem
