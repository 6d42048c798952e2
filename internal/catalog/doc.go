// Package catalog keeps the parsed EDF records served by the API.
//
// A Catalog combines a Scanner with a Store. Load clears the store, scans
// the source directory and stores the new records; loads are serialised.
// The store is either the in-memory MemoryStore or the SQLite store from the
// database package, selected with STORE.
//
// ListSorted orders records by recording date, newest first, with records
// that have no date (including invalid files) at the end.
package catalog
