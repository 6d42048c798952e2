// Package main provides edf-browser, the terminal client of the EDF Viewer
// server.
//
// On a terminal it starts an interactive table of the catalogue. When stdout
// is not a terminal, or with -once, it prints the catalogue a single time:
//
//	edf-browser -once -sorted
//	edf-browser -once -match jane
//	edf-browser -once -rescan | less
//
// A failed request prints the server's message to stderr and exits with
// status 1.
//
// Configuration is read from ~/.config/edf-browser/config.yaml and EDF_*
// environment variables, see [edf-viewer/internal/config].
package main
