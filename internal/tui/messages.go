package tui

import (
	"edf-viewer/internal/cache"
	"edf-viewer/internal/edfclient"
)

// snapshotMsg carries a state change pushed by the request helper.
type snapshotMsg edfclient.Snapshot

// requestDoneMsg signals that a fetch or rescan call returned.
type requestDoneMsg struct {
	sorted bool
}

// cacheLoadedMsg carries the offline copy of the catalogue.
type cacheLoadedMsg struct {
	sorted    bool
	catalogue cache.Catalogue
}
