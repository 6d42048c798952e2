package startup

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"edf-viewer/internal/filesystem"
	"edf-viewer/internal/logging"

	"github.com/gorilla/mux"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// Store backends selectable with STORE.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// RouteInfo contains information about a registered route
type RouteInfo struct {
	Method string
	Path   string
	Name   string
}

// CORSConfig holds the cross-origin settings for the API routes.
type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowCredentials bool
}

// Config holds all application configuration
type Config struct {
	AppDir          string
	Source          string
	Port            string
	MetricsPort     string
	MetricsEnabled  bool
	Store           string
	DatabaseDir     string
	ScanInterval    time.Duration
	ScanWorkers     int
	FSRetries       int
	LogStaticFiles  bool
	LogHealthChecks bool
	CORS            CORSConfig

	// Derived paths
	SourceDir    string
	DatabasePath string
}

// LoadConfig loads and validates configuration from environment variables
func LoadConfig() (*Config, error) {
	printBanner()
	logSystemInfo()

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	appDir := getEnv("EDF_APP_DIR", ".")
	source := getEnv("EDF_SOURCE", "data/edf")
	port := getEnv("PORT", "8080")
	metricsPort := getEnv("METRICS_PORT", "9090")
	metricsEnabled := getEnvBool("METRICS_ENABLED", true)
	store := strings.ToLower(getEnv("STORE", StoreMemory))
	databaseDir := getEnv("DATABASE_DIR", "/database")
	scanIntervalStr := getEnv("SCAN_INTERVAL", "0")
	scanWorkers := getEnvInt("SCAN_WORKERS", 0)
	fsRetries := getEnvInt("FS_RETRIES", filesystem.DefaultRetryConfig().MaxRetries)
	logStaticFiles := getEnvBool("LOG_STATIC_FILES", false)
	logHealthChecks := getEnvBool("LOG_HEALTH_CHECKS", true)
	corsOrigins := getEnvList("CORS_ALLOWED_ORIGINS", "http://localhost:5173")
	corsMethods := getEnvList("CORS_ALLOWED_METHODS", "GET,POST")
	corsCredentials := getEnvBool("CORS_ALLOW_CREDENTIALS", false)

	logging.Info("  EDF_APP_DIR:            %s", appDir)
	logging.Info("  EDF_SOURCE:             %s", source)
	logging.Info("  PORT:                   %s", port)
	logging.Info("  METRICS_PORT:           %s", metricsPort)
	logging.Info("  METRICS_ENABLED:        %v", metricsEnabled)
	logging.Info("  STORE:                  %s", store)
	logging.Info("  DATABASE_DIR:           %s", databaseDir)
	logging.Info("  SCAN_INTERVAL:          %s", scanIntervalStr)
	logging.Info("  SCAN_WORKERS:           %d (0 = auto)", scanWorkers)
	logging.Info("  FS_RETRIES:             %d", fsRetries)
	logging.Info("  LOG_STATIC_FILES:       %v", logStaticFiles)
	logging.Info("  LOG_HEALTH_CHECKS:      %v", logHealthChecks)
	logging.Info("  CORS_ALLOWED_ORIGINS:   %s", strings.Join(corsOrigins, ","))
	logging.Info("  CORS_ALLOWED_METHODS:   %s", strings.Join(corsMethods, ","))
	logging.Info("  CORS_ALLOW_CREDENTIALS: %v", corsCredentials)
	logging.Info("  LOG_LEVEL:              %s", logging.GetLevel())

	scanInterval, err := time.ParseDuration(scanIntervalStr)
	if err != nil || scanInterval < 0 {
		logging.Warn("  Invalid SCAN_INTERVAL, polling disabled")
		scanInterval = 0
	}

	if store != StoreMemory && store != StoreSQLite {
		return nil, fmt.Errorf("unknown STORE %q (expected %s or %s)", store, StoreMemory, StoreSQLite)
	}

	if len(corsMethods) == 0 {
		return nil, errors.New("CORS_ALLOWED_METHODS must name at least one method")
	}

	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DIRECTORY SETUP")
	logging.Info("------------------------------------------------------------")

	sourceDir := source
	if !filepath.IsAbs(sourceDir) {
		sourceDir = filepath.Join(appDir, sourceDir)
	}
	sourceDir, err = filepath.Abs(sourceDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve EDF source path: %w", err)
	}
	logging.Info("  EDF directory (absolute): %s", sourceDir)

	// A missing source directory is reported per request, not at startup.
	if err := checkDirectory(sourceDir); err != nil {
		logging.Warn("  EDF directory issue: %v", err)
	}

	config := &Config{
		AppDir:          appDir,
		Source:          source,
		Port:            port,
		MetricsPort:     metricsPort,
		MetricsEnabled:  metricsEnabled,
		Store:           store,
		ScanInterval:    scanInterval,
		ScanWorkers:     scanWorkers,
		FSRetries:       fsRetries,
		LogStaticFiles:  logStaticFiles,
		LogHealthChecks: logHealthChecks,
		CORS: CORSConfig{
			AllowedOrigins:   corsOrigins,
			AllowedMethods:   corsMethods,
			AllowCredentials: corsCredentials,
		},
		SourceDir: sourceDir,
	}

	if store == StoreSQLite {
		databaseDir, err = filepath.Abs(databaseDir)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve database directory path: %w", err)
		}
		logging.Info("  Database directory (absolute): %s", databaseDir)

		if err := ensureDirectory(databaseDir); err != nil {
			return nil, fmt.Errorf("database directory error: %w", err)
		}

		logging.Debug("  Testing database directory write access...")
		if err := testWriteAccess(databaseDir); err != nil {
			return nil, fmt.Errorf("database directory is not writable (required for sqlite store): %w", err)
		}
		logging.Info("  [OK] Database directory is writable")

		config.DatabaseDir = databaseDir
		config.DatabasePath = filepath.Join(databaseDir, "edf.db")
	}

	logging.Info("")
	logging.Info("  Feature availability:")
	logging.Info("    Store:       %s", store)
	logging.Info("    Polling:     %s", enabledString(scanInterval > 0))
	logging.Info("    Metrics:     %s", enabledString(metricsEnabled))

	return config, nil
}

func enabledString(enabled bool) string {
	if enabled {
		return "ENABLED"
	}
	return "DISABLED"
}

// LogStoreInit logs store initialization
func LogStoreInit(store string, duration time.Duration) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("STORE INITIALIZATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  [OK] %s store initialized in %v", store, duration)
}

// LogScannerInit logs scanner initialization
func LogScannerInit(sourceDir string, interval time.Duration) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SCANNER INITIALIZATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Source directory: %s", sourceDir)
	if interval > 0 {
		logging.Info("  Poll interval:    %v", interval)
	} else {
		logging.Info("  Poll interval:    disabled (use POST /api/edfs/rescan)")
	}
	logging.Info("  Starting initial scan...")
}

// LogScanComplete logs the result of the initial scan
func LogScanComplete(err error, duration time.Duration) {
	if err != nil {
		logging.Warn("  Initial scan failed after %v: %v", duration, err)
		logging.Warn("  The API will report the error until a rescan succeeds")
		return
	}
	logging.Info("  [OK] Initial scan completed in %v", duration)
}

// GetRoutes extracts all registered routes from a mux.Router
func GetRoutes(router *mux.Router) ([]RouteInfo, error) {
	var routes []RouteInfo

	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		pathTemplate, err := route.GetPathTemplate()
		if err != nil {
			return err
		}

		methods, err := route.GetMethods()
		if err != nil {
			// Route might not have methods specified
			methods = []string{"*"}
		}

		name := route.GetName()

		for _, method := range methods {
			routes = append(routes, RouteInfo{
				Method: method,
				Path:   pathTemplate,
				Name:   name,
			})
		}

		return nil
	})

	return routes, err
}

// LogHTTPRoutes logs all registered HTTP routes dynamically
func LogHTTPRoutes(router *mux.Router, logStaticFiles, logHealthChecks bool) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("HTTP SERVER SETUP")
	logging.Info("------------------------------------------------------------")

	if logging.IsDebugEnabled() {
		routes, err := GetRoutes(router)
		if err != nil {
			logging.Warn("error walking routes: %v", err)
		}

		logging.Debug("  Registered routes (%d total):", len(routes))
		logging.Debug("")

		groups := make(map[string][]RouteInfo)
		for _, route := range routes {
			prefix := getRouteGroup(route.Path)
			groups[prefix] = append(groups[prefix], route)
		}

		groupKeys := make([]string, 0, len(groups))
		for k := range groups {
			groupKeys = append(groupKeys, k)
		}
		sort.Strings(groupKeys)

		for _, group := range groupKeys {
			if group != "" {
				logging.Debug("  [%s]", group)
			} else {
				logging.Debug("  [root]")
			}

			for _, route := range groups[group] {
				logging.Debug("    %-6s %s", route.Method, route.Path)
			}
			logging.Debug("")
		}
	}

	logging.Info("  HTTP logging enabled")
	if logStaticFiles {
		logging.Info("    Static file logging: ON")
	} else {
		logging.Info("    Static file logging: OFF (set LOG_STATIC_FILES=true to enable)")
	}
	if logHealthChecks {
		logging.Info("    Health check logging: ON")
	} else {
		logging.Info("    Health check logging: OFF (set LOG_HEALTH_CHECKS=true to enable)")
	}
}

// getRouteGroup extracts a group name from a route path
func getRouteGroup(path string) string {
	path = strings.TrimPrefix(path, "/")

	parts := strings.SplitN(path, "/", 2)
	first := parts[0]

	if first == "api" && len(parts) > 1 {
		subParts := strings.SplitN(parts[1], "/", 2)
		return "api/" + subParts[0]
	}

	return first
}

// ServerConfig holds configuration for the server startup log
type ServerConfig struct {
	Port            string
	MetricsPort     string
	MetricsEnabled  bool
	StartupDuration time.Duration
}

// LogServerStarted logs successful server start with all endpoint information
func LogServerStarted(config ServerConfig) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SERVER STARTED")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Startup time:    %v", config.StartupDuration)
	logging.Info("")
	logging.Info("  Endpoints:")
	logging.Info("    API:           http://0.0.0.0:%s/api/edfs", config.Port)
	if config.MetricsEnabled {
		logging.Info("    Metrics:       http://0.0.0.0:%s/metrics", config.MetricsPort)
	} else {
		logging.Info("    Metrics:       DISABLED")
	}
	logging.Info("")
	logging.Info("  Local access:")
	logging.Info("    API:           http://localhost:%s/api/edfs", config.Port)
	if config.MetricsEnabled {
		logging.Info("    Metrics:       http://localhost:%s/metrics", config.MetricsPort)
	}
	logging.Info("")
	logging.Info("  Press Ctrl+C to stop the server")
	logging.Info("------------------------------------------------------------")
	logging.Info("")
}

// LogShutdownInitiated logs shutdown start
func LogShutdownInitiated(signal string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SHUTDOWN INITIATED (received %s)", signal)
	logging.Info("------------------------------------------------------------")
}

// LogShutdownStep logs a shutdown step
func LogShutdownStep(step string) {
	logging.Debug("  %s...", step)
}

// LogShutdownStepComplete logs a completed shutdown step
func LogShutdownStepComplete(step string) {
	logging.Info("  [OK] %s", step)
}

// LogShutdownComplete logs shutdown completion
func LogShutdownComplete() {
	logging.Info("  [OK] Shutdown complete")
}

// LogFatal logs a fatal error and exits
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}

// Helper functions

func printBanner() {
	banner := `
------------------------------------------------------------
    __________  ______   _    ___
   / ____/ __ \/ ____/  | |  / (_)__ _      _____  _____
  / __/ / / / / /_      | | / / / _ \ | /| / / _ \/ ___/
 / /___/ /_/ / __/      | |/ / /  __/ |/ |/ /  __/ /
/_____/_____/_/         |___/_/\___/|__/|__/\___/_/

------------------------------------------------------------`
	logging.Println(banner)
	logging.Info("  Version:    %s", Version)
	logging.Info("  Commit:     %s", Commit)
	logging.Info("  Build Time: %s", BuildTime)
	logging.Info("  Started:    %s", time.Now().Format(time.RFC1123))
	logging.Info("")
}

func logSystemInfo() {
	logging.Info("------------------------------------------------------------")
	logging.Info("SYSTEM INFORMATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Go version:      %s", runtime.Version())
	logging.Info("  OS/Arch:         %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs available:  %d", runtime.NumCPU())
	logging.Info("  GOMAXPROCS:      %d", runtime.GOMAXPROCS(0))

	if runtime.GOMAXPROCS(0) < runtime.NumCPU() {
		logging.Info("  (Container CPU limit detected)")
	}

	if logging.IsDebugEnabled() {
		logging.Debug("  Goroutines:      %d", runtime.NumGoroutine())

		if wd, err := os.Getwd(); err == nil {
			logging.Debug("  Working dir:     %s", wd)
		}

		if hostname, err := os.Hostname(); err == nil {
			logging.Debug("  Hostname:        %s", hostname)
		}
	}

	logging.Info("")
}

// checkDirectory verifies path is an existing directory and logs its
// EDF file count at debug level.
func checkDirectory(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat directory: %w", err)
	}
	if !info.IsDir() {
		return errors.New("path exists but is not a directory")
	}

	logging.Debug("    [OK] Directory exists")

	if logging.IsDebugEnabled() {
		if entries, err := os.ReadDir(path); err == nil {
			count := 0
			for _, e := range entries {
				if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), ".edf") {
					count++
				}
			}
			logging.Debug("    Contents: %d EDF files (top level)", count)
		}
	}

	return nil
}

func ensureDirectory(path string) error {
	logging.Debug("  Checking directory: %s", path)

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		logging.Debug("    Directory does not exist, creating...")
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		logging.Debug("    [OK] Created directory: %s", path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat directory: %w", err)
	}
	if !info.IsDir() {
		return errors.New("path exists but is not a directory")
	}

	logging.Debug("    [OK] Directory exists")
	return nil
}

func testWriteAccess(dir string) error {
	testFile := filepath.Join(dir, ".write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
		return err
	}
	if err := os.Remove(testFile); err != nil {
		logging.Warn("failed to remove write test file %s: %v", testFile, err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("Invalid boolean value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		logging.Warn("Invalid %s value %q, using default %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

// getEnvList splits a comma separated variable, dropping blank items.
func getEnvList(key, defaultValue string) []string {
	var out []string
	for _, item := range strings.Split(getEnv(key, defaultValue), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
