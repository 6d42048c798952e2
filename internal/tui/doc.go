// Package tui implements the terminal browser for the EDF catalogue.
//
// [Model] is a Bubble Tea model that owns one [edfclient.Helper]. Helper
// state changes are pushed to the model through a buffered channel, and the
// message returned when a request finishes re-reads the final state, so a
// dropped update never leaves the view stale.
//
// # Keys
//
//	j/k, up/down   move the cursor
//	r              fetch the catalogue again
//	s              switch between scan order and newest first
//	R              ask the server to rescan its directory
//	/              filter by file name or patient, esc clears
//	q              quit
//
// When a [cache.Store] is configured, the last good catalogue of each view is
// shown until the first request completes, marked as an offline copy.
//
// [RenderPlain] and [MatchRecords] serve the non-interactive output used when
// stdout is not a terminal.
package tui
