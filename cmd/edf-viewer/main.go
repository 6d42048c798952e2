package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"edf-viewer/internal/catalog"
	"edf-viewer/internal/database"
	"edf-viewer/internal/filesystem"
	"edf-viewer/internal/handlers"
	"edf-viewer/internal/logging"
	"edf-viewer/internal/metrics"
	"edf-viewer/internal/middleware"
	"edf-viewer/internal/scanner"
	"edf-viewer/internal/startup"

	"github.com/gorilla/mux"
)

const (
	serverReadTimeout   = 15 * time.Second
	serverWriteTimeout  = 60 * time.Second
	serverIdleTimeout   = 60 * time.Second
	metricsReadTimeout  = 5 * time.Second
	metricsWriteTimeout = 10 * time.Second
	statsInterval       = time.Minute
	shutdownTimeout     = 30 * time.Second

	sourceMetadataKey = "source_dir"
)

func main() {
	startTime := time.Now()

	memConfig := startup.ConfigureMemory()

	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}
	startup.LogMemoryConfig(memConfig)

	metrics.InitializeMetrics()
	metrics.SetAppInfo(startup.Version, startup.Commit, startup.GoVersion)
	filesystem.SetObserver(metrics.NewFilesystemObserver())
	filesystem.SetDefaultVolumeResolver(filesystem.NewVolumeResolver(volumes(config)))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	storeStart := time.Now()
	store, err := openStore(ctx, config)
	if err != nil {
		startup.LogFatal("Failed to initialize %s store: %v", config.Store, err)
	}
	startup.LogStoreInit(config.Store, time.Since(storeStart))

	scan := newScanner(config)
	cat := catalog.New(scan, store)

	startup.LogScannerInit(config.SourceDir, config.ScanInterval)
	scanStart := time.Now()
	startup.LogScanComplete(cat.Load(ctx, catalog.TriggerStartup), time.Since(scanStart))

	go scan.Watch(ctx, config.ScanInterval, func() {
		// Load logs its own failures and records them for /health.
		_ = cat.Load(ctx, catalog.TriggerPoll)
	})

	collector := metrics.NewCollector(cat, statsInterval)
	collector.Start()

	h := handlers.New(cat)
	router := setupRouter(h)
	startup.LogHTTPRoutes(router, config.LogStaticFiles, config.LogHealthChecks)

	srv := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      buildHandler(router, config),
		ReadTimeout:  serverReadTimeout,
		WriteTimeout: serverWriteTimeout,
		IdleTimeout:  serverIdleTimeout,
	}

	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metricsSrv = &http.Server{
			Addr:         ":" + config.MetricsPort,
			Handler:      setupMetricsRouter(h),
			ReadTimeout:  metricsReadTimeout,
			WriteTimeout: metricsWriteTimeout,
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	go handleShutdown(srv, metricsSrv, collector, cancel, store)

	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})

	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		startup.LogFatal("Server error: %v", err)
	}
}

func newScanner(config *startup.Config) *scanner.Scanner {
	scan := scanner.New(config.AppDir, config.Source)
	if config.ScanWorkers > 0 {
		scan.SetWorkers(config.ScanWorkers)
	}
	retry := filesystem.DefaultRetryConfig()
	retry.MaxRetries = config.FSRetries
	scan.SetRetryConfig(retry)
	return scan
}

// volumes names the mounts used as filesystem metric labels.
func volumes(config *startup.Config) map[string]string {
	v := map[string]string{"source": config.SourceDir}
	if config.Store == startup.StoreSQLite {
		v["database"] = config.DatabaseDir
	}
	return v
}

func openStore(ctx context.Context, config *startup.Config) (catalog.Store, error) {
	if config.Store != startup.StoreSQLite {
		return catalog.NewMemoryStore(), nil
	}

	db, err := database.New(ctx, config.DatabasePath)
	if err != nil {
		return nil, err
	}

	if last, err := db.GetLastScan(ctx); err != nil {
		logging.Warn("  Could not read previous scan time: %v", err)
	} else if !last.IsZero() {
		logging.Info("  Previous scan: %s", last.Format(time.RFC3339))
	}
	if err := db.SetMetadata(ctx, sourceMetadataKey, config.SourceDir); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func setupRouter(h *handlers.Handlers) *mux.Router {
	r := mux.NewRouter()

	// Health check and version routes
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET", "HEAD")
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods("GET")
	r.HandleFunc("/version", h.GetVersion).Methods("GET")

	api := r.PathPrefix("/api/edfs").Subrouter()
	api.HandleFunc("", h.ListEDFs).Methods("GET")
	api.HandleFunc("/sorted", h.ListSortedEDFs).Methods("GET")
	api.HandleFunc("/rescan", h.RescanEDFs).Methods("POST")

	r.Use(middleware.Metrics(middleware.DefaultMetricsConfig()))

	return r
}

// buildHandler wraps the router in the middleware chain. CORS is outermost
// so preflight requests never reach the router.
func buildHandler(router http.Handler, config *startup.Config) http.Handler {
	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogStaticFiles = config.LogStaticFiles
	loggingConfig.LogHealthChecks = config.LogHealthChecks

	handler := middleware.Compression()(router)
	handler = middleware.Logger(loggingConfig)(handler)
	handler = middleware.RequestID(handler)
	return middleware.CORS(middleware.CORSConfig(config.CORS))(handler)
}

func setupMetricsRouter(h *handlers.Handlers) *mux.Router {
	r := mux.NewRouter()
	r.Handle("/metrics", h.MetricsHandler()).Methods("GET")
	r.HandleFunc("/health", h.LivenessCheck).Methods("GET", "HEAD")
	return r
}

func handleShutdown(srv, metricsSrv *http.Server, collector *metrics.Collector, stopBackground context.CancelFunc, store catalog.Store) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	startup.LogShutdownStep("Stopping change detection")
	stopBackground()
	startup.LogShutdownStepComplete("Change detection stopped")

	startup.LogShutdownStep("Stopping metrics collector")
	collector.Stop()
	startup.LogShutdownStepComplete("Metrics collector stopped")

	if metricsSrv != nil {
		startup.LogShutdownStep("Shutting down metrics server")
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Metrics server stopped")
		}
	}

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	startup.LogShutdownStep("Closing store")
	if err := store.Close(); err != nil {
		logging.Warn("Store close error: %v", err)
	} else {
		startup.LogShutdownStepComplete("Store closed")
	}

	startup.LogShutdownComplete()
}
