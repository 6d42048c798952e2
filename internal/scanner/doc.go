// Package scanner discovers and parses the EDF files of the source directory.
//
// Only regular files directly inside the source directory whose name ends in
// ".edf" (any case) are considered; hidden files are skipped and
// subdirectories are never entered. Files are parsed concurrently by a
// bounded worker pool and returned in file name order.
//
// File access goes through the filesystem package so stale NFS handles are
// retried. A missing source directory is reported as ErrSourceNotFound.
//
// Watch provides polling-based change detection: it compares the top-level
// directory state with the state recorded by the last scan.
package scanner
