package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"edf-viewer/internal/edfclient"
)

// observe forwards helper state changes to ch without blocking the request.
// A dropped snapshot is harmless: requestDoneMsg re-reads the final state.
func observe(h *edfclient.Helper, ch chan<- edfclient.Snapshot) (unsubscribe func()) {
	return h.Subscribe(func(s edfclient.Snapshot) {
		select {
		case ch <- s:
		default:
		}
	})
}

// waitForSnapshot reads one state change from ch.
func waitForSnapshot(ch <-chan edfclient.Snapshot) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return nil
		}
		return snapshotMsg(s)
	}
}
