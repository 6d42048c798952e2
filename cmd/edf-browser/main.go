package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"edf-viewer/internal/cache"
	"edf-viewer/internal/config"
	"edf-viewer/internal/edfclient"
	"edf-viewer/internal/logging"
	"edf-viewer/internal/startup"
	"edf-viewer/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"
)

type options struct {
	once    bool
	sorted  bool
	rescan  bool
	match   string
	version bool
}

func main() {
	var opts options
	flag.BoolVar(&opts.once, "once", false, "print the catalogue once and exit")
	flag.BoolVar(&opts.sorted, "sorted", false, "newest recordings first")
	flag.BoolVar(&opts.rescan, "rescan", false, "ask the server to rescan before printing (with -once)")
	flag.StringVar(&opts.match, "match", "", "only print records matching this text (with -once)")
	flag.BoolVar(&opts.version, "version", false, "print version")
	flag.Parse()

	if opts.version {
		fmt.Printf("edf-browser %s\n", startup.Version)
		return
	}

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	closeLog, err := setupLogging(cfg.Logging)
	if err != nil {
		// The terminal belongs to the UI, so logs are dropped instead.
		logging.SetOutput(io.Discard)
	} else {
		defer closeLog()
	}
	logging.Info("starting edf-browser %s against %s", startup.Version, cfg.EndpointURL())

	h := edfclient.New(cfg.EndpointURL(),
		edfclient.WithDelay(cfg.API.Delay),
		edfclient.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout}),
	)

	sorted := opts.sorted || cfg.UI.Sorted

	if opts.once || !term.IsTerminal(int(os.Stdout.Fd())) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return printOnce(ctx, os.Stdout, h, sorted, opts)
	}

	store := openCache(cfg)
	if store != nil {
		defer store.Close()
	}

	p := tea.NewProgram(tui.New(h, tui.Options{Sorted: sorted, Cache: store}), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		logging.Error("TUI error: %v", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	logging.Info("shutting down")
	return nil
}

// printOnce performs a single request and writes the result as a plain table.
func printOnce(ctx context.Context, w io.Writer, h *edfclient.Helper, sorted bool, opts options) error {
	reqOpts := edfclient.Options{Sorted: sorted}
	if opts.rescan {
		h.RescanFiles(ctx, reqOpts)
	} else {
		h.FetchFiles(ctx, reqOpts)
	}

	snap := h.Snapshot()
	if snap.Error != "" {
		return errors.New(snap.Error)
	}

	records := tui.MatchRecords(tui.DecodeRecords(snap.Files), opts.match)
	return tui.RenderPlain(w, records)
}

func setupLogging(cfg config.LoggingConfig) (func(), error) {
	path, err := config.ExpandPath(cfg.File)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	logging.SetOutput(f)
	logging.SetLevel(logging.ParseLevel(cfg.Level))
	return func() { f.Close() }, nil
}

// openCache returns nil when the cache is disabled or cannot be opened.
func openCache(cfg *config.Config) *cache.Store {
	if !cfg.Cache.Enabled {
		return nil
	}
	dir, err := config.ExpandPath(cfg.Cache.Dir)
	if err != nil {
		logging.Warn("Invalid cache directory %q: %v", cfg.Cache.Dir, err)
		return nil
	}
	store, err := cache.Open(dir, cfg.EndpointURL())
	if err != nil {
		logging.Warn("Catalogue cache disabled: %v", err)
		return nil
	}
	return store
}
