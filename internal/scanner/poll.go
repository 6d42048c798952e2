package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"time"

	"edf-viewer/internal/filesystem"
	"edf-viewer/internal/logging"
	"edf-viewer/internal/metrics"
)

// Watch polls the source directory every interval and calls onChange when
// the set of EDF files, their sizes or their modification times differ from
// the last scan. It returns when ctx is cancelled.
func (s *Scanner) Watch(ctx context.Context, interval time.Duration, onChange func()) {
	if interval <= 0 {
		return
	}

	logging.Info("Starting change detection polling (interval: %v)", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			changed, err := s.DetectChanges()
			if err != nil {
				logging.Error("Error detecting changes: %v", err)
				continue
			}
			if changed {
				logging.Info("EDF directory changes detected, triggering reload")
				onChange()
			}
		case <-ctx.Done():
			logging.Info("Change detection polling stopped")
			return
		}
	}
}

// DetectChanges compares the source directory with the state recorded by
// the last successful scan. Only the top level is read.
func (s *Scanner) DetectChanges() (bool, error) {
	metrics.PollChecksTotal.Inc()

	dir, err := s.Dir()
	if err != nil {
		return false, err
	}

	dirInfo, err := filesystem.StatWithRetry(dir, s.retry)
	if err != nil {
		return false, fmt.Errorf("failed to stat source directory: %w", err)
	}

	s.stateMu.RLock()
	last := s.lastState
	s.stateMu.RUnlock()

	if last.files == nil {
		// never scanned successfully; a directory that appeared is a change
		metrics.PollChangesDetected.Inc()
		return true, nil
	}

	if dirInfo.ModTime().After(last.modTime) {
		logging.Debug("Source directory modified: %v > %v", dirInfo.ModTime(), last.modTime)
		metrics.PollChangesDetected.Inc()
		return true, nil
	}

	entries, err := filesystem.ReadDirWithRetry(dir, s.retry)
	if err != nil {
		return false, fmt.Errorf("failed to read source directory: %w", err)
	}

	current := s.collect(dir, entries)
	if len(current) != len(last.files) {
		logging.Debug("EDF file count changed: %d -> %d", len(last.files), len(current))
		metrics.PollChangesDetected.Inc()
		return true, nil
	}

	for _, c := range current {
		stamp, ok := last.files[c.name]
		if !ok || stamp.size != c.info.Size() || !stamp.modTime.Equal(c.info.ModTime()) {
			logging.Debug("EDF file changed: %s", c.name)
			metrics.PollChangesDetected.Inc()
			return true, nil
		}
	}

	return false, nil
}

// remember records the directory state after a scan.
func (s *Scanner) remember(dirInfo fs.FileInfo, candidates []candidate) {
	files := make(map[string]fileStamp, len(candidates))
	for _, c := range candidates {
		files[c.name] = fileStamp{size: c.info.Size(), modTime: c.info.ModTime()}
	}

	s.stateMu.Lock()
	s.lastState = dirState{modTime: dirInfo.ModTime(), files: files}
	s.stateMu.Unlock()

	logging.Debug("Updated last known state: dirMod=%v, files=%d", dirInfo.ModTime(), len(files))
}
