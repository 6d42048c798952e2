// Package edfclient is the request helper the EDF browser binds its view to.
//
// A [Helper] talks to the catalogue endpoint of the server (by default
// /api/edfs) and exposes four pieces of observable state: the result list,
// a loading flag, a fetched flag and an error message. [Helper.FetchFiles]
// reads the list, [Helper.RescanFiles] asks the server to re-read its source
// directory and returns the new list.
//
// Errors never leave the helper: every failure ends up in the Error field of
// the state. Overlapping calls are not coordinated; the call that finishes
// last determines the final state.
//
// Basic usage:
//
//	h := edfclient.New("http://localhost:8080/api/edfs")
//	h.Subscribe(func(s edfclient.Snapshot) { render(s) })
//	h.FetchFiles(ctx, edfclient.Options{Sorted: true})
package edfclient
