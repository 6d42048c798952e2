// Package database provides the SQLite store for the EDF catalogue.
//
// Each record of the last scan is kept as one row of the edf_files table,
// holding the record's JSON together with a few indexed columns. Replace
// swaps the whole table content in a single transaction, so readers see
// either the old or the new scan. The metadata table keeps the time of the
// last stored scan.
//
// The database uses WAL mode for concurrent reads.
package database
