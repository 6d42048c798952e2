package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"edf-viewer/internal/edf"
	"edf-viewer/internal/filesystem"
	"edf-viewer/internal/logging"
	"edf-viewer/internal/metrics"
	"edf-viewer/internal/workers"
)

const (
	// Upper bound for parse workers; EDF headers are small and the source
	// is often a network share.
	maxWorkers = 8

	edfExtension = ".edf"
)

// ErrSourceNotFound is returned when the configured source directory does not
// exist or is not a directory.
var ErrSourceNotFound = errors.New("EDF directory not found")

// Scanner finds and parses the EDF files of one source directory.
type Scanner struct {
	appDir     string
	source     string
	numWorkers int
	retry      filesystem.RetryConfig

	// Last known state for lightweight change detection
	stateMu   sync.RWMutex
	lastState dirState
}

// dirState fingerprints the source directory after a scan.
type dirState struct {
	modTime time.Time
	files   map[string]fileStamp
}

type fileStamp struct {
	size    int64
	modTime time.Time
}

// candidate is an EDF file found in the source directory.
type candidate struct {
	name string
	path string
	info fs.FileInfo
}

// New creates a Scanner for source, resolved against appDir when relative.
func New(appDir, source string) *Scanner {
	return &Scanner{
		appDir:     appDir,
		source:     source,
		numWorkers: workers.ForIO(maxWorkers),
		retry:      filesystem.DefaultRetryConfig(),
	}
}

// SetWorkers sets the number of parse workers.
func (s *Scanner) SetWorkers(n int) {
	if n > 0 {
		s.numWorkers = n
	}
}

// SetRetryConfig sets the retry behaviour for filesystem access.
func (s *Scanner) SetRetryConfig(config filesystem.RetryConfig) {
	s.retry = config
}

// Source returns the configured source, as given.
func (s *Scanner) Source() string {
	return s.source
}

// Dir returns the absolute path of the source directory.
func (s *Scanner) Dir() (string, error) {
	dir := s.source
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(s.appDir, dir)
	}
	return filepath.Abs(dir)
}

func (s *Scanner) notFound() error {
	return fmt.Errorf("%w in: %s", ErrSourceNotFound, s.source)
}

// Scan parses every top-level EDF file of the source directory and returns
// one record per file in file name order. Unparsable files yield invalid
// records; only directory level failures are returned as errors.
func (s *Scanner) Scan(ctx context.Context) ([]edf.Record, error) {
	metrics.ScanIsRunning.Set(1)
	defer metrics.ScanIsRunning.Set(0)

	start := time.Now()
	defer func() {
		metrics.ScanDuration.Observe(time.Since(start).Seconds())
		metrics.ScanLastRunTimestamp.SetToCurrentTime()
	}()

	records, err := s.scan(ctx)
	if err != nil {
		metrics.ScanErrors.Inc()
		return nil, err
	}

	valid := 0
	for _, r := range records {
		if r.ValidEDF {
			valid++
		}
	}
	logging.Info("Scan complete: %d files (%d valid, %d invalid) in %v",
		len(records), valid, len(records)-valid, time.Since(start))

	return records, nil
}

func (s *Scanner) scan(ctx context.Context) ([]edf.Record, error) {
	dir, err := s.Dir()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve source directory: %w", err)
	}

	logging.Info("Scanning EDF directory %s", dir)

	dirInfo, err := filesystem.StatWithRetry(dir, s.retry)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, s.notFound()
		}
		return nil, fmt.Errorf("failed to stat source directory: %w", err)
	}
	if !dirInfo.IsDir() {
		return nil, s.notFound()
	}

	entries, err := filesystem.ReadDirWithRetry(dir, s.retry)
	if err != nil {
		return nil, fmt.Errorf("failed to read source directory: %w", err)
	}

	// ReadDir returns entries sorted by file name.
	candidates := s.collect(dir, entries)
	logging.Debug("Found %d EDF files in %s", len(candidates), dir)

	records, err := s.parseAll(ctx, candidates)
	if err != nil {
		return nil, err
	}

	s.remember(dirInfo, candidates)
	return records, nil
}

// collect filters directory entries down to visible regular .edf files.
func (s *Scanner) collect(dir string, entries []fs.DirEntry) []candidate {
	var out []candidate
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if !strings.HasSuffix(strings.ToLower(name), edfExtension) {
			continue
		}

		path := filepath.Join(dir, name)

		var info fs.FileInfo
		var err error
		if entry.Type()&fs.ModeSymlink != 0 {
			info, err = filesystem.StatWithRetry(path, s.retry)
		} else {
			info, err = entry.Info()
		}
		if err != nil {
			logging.Warn("Error getting info for %s: %v", path, err)
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}

		out = append(out, candidate{name: name, path: path, info: info})
	}
	return out
}

// parseAll parses candidates with a bounded worker pool. Results keep the
// candidate order.
func (s *Scanner) parseAll(ctx context.Context, candidates []candidate) ([]edf.Record, error) {
	records := make([]edf.Record, len(candidates))
	if len(candidates) == 0 {
		return records, nil
	}

	numWorkers := s.numWorkers
	if numWorkers > len(candidates) {
		numWorkers = len(candidates)
	}
	metrics.ScanWorkers.Set(float64(numWorkers))
	logging.Debug("Parsing %d files with %d workers", len(candidates), numWorkers)

	jobs := make(chan int)
	var wg sync.WaitGroup

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				records[idx] = s.parseFile(candidates[idx])
			}
		}()
	}

	var err error
enqueue:
	for i := range candidates {
		if err = ctx.Err(); err != nil {
			break
		}
		select {
		case jobs <- i:
		case <-ctx.Done():
			err = ctx.Err()
			break enqueue
		}
	}
	close(jobs)
	wg.Wait()

	if err != nil {
		return nil, fmt.Errorf("scan cancelled: %w", err)
	}
	return records, nil
}

func (s *Scanner) parseFile(c candidate) edf.Record {
	start := time.Now()
	defer func() {
		metrics.FileParseDuration.Observe(time.Since(start).Seconds())
	}()

	rec, err := s.readFile(c)
	if err != nil {
		logging.Warn("Failed to read %s: %v", c.path, err)
	}

	if rec.ValidEDF {
		metrics.FilesParsedTotal.WithLabelValues("valid").Inc()
	} else {
		metrics.FilesParsedTotal.WithLabelValues("invalid").Inc()
		logging.Debug("Invalid EDF file: %s", c.name)
	}
	return rec
}

func (s *Scanner) readFile(c candidate) (edf.Record, error) {
	f, err := filesystem.OpenWithRetry(c.path, s.retry)
	if err != nil {
		return edf.InvalidRecord(c.name), err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			logging.Debug("Failed to close %s: %v", c.path, cerr)
		}
	}()

	return edf.ReadRecord(c.name, f)
}
