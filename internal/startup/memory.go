package startup

import (
	"fmt"
	"math"
	"os"
	"runtime/debug"
	"strconv"

	"edf-viewer/internal/logging"
)

// DefaultMemoryRatio is the share of the container memory limit given to the
// Go heap when GOMEMLIMIT is derived from MEMORY_LIMIT.
const DefaultMemoryRatio = 0.9

// MemoryConfig reports how the Go memory limit was configured.
type MemoryConfig struct {
	Configured     bool
	Source         string // "GOMEMLIMIT", "MEMORY_LIMIT" or "none"
	ContainerLimit int64
	GoMemLimit     int64
	Ratio          float64
}

// ConfigureMemory sets the Go memory limit from MEMORY_LIMIT (bytes, e.g.
// from the Kubernetes Downward API) scaled by MEMORY_RATIO. An explicit
// GOMEMLIMIT always wins. Call it early in main.
func ConfigureMemory() MemoryConfig {
	if env := os.Getenv("GOMEMLIMIT"); env != "" {
		cfg := MemoryConfig{Source: "GOMEMLIMIT"}
		if limit := debug.SetMemoryLimit(-1); limit > 0 && limit < math.MaxInt64 {
			cfg.Configured = true
			cfg.GoMemLimit = limit
		}
		return cfg
	}

	raw := os.Getenv("MEMORY_LIMIT")
	if raw == "" {
		return MemoryConfig{Source: "none"}
	}

	limit, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || limit <= 0 {
		logging.Warn("Invalid MEMORY_LIMIT %q, GOMEMLIMIT not configured", raw)
		return MemoryConfig{Source: "none"}
	}

	ratio := DefaultMemoryRatio
	if s := os.Getenv("MEMORY_RATIO"); s != "" {
		r, err := strconv.ParseFloat(s, 64)
		if err != nil || r <= 0 || r > 1 {
			logging.Warn("Invalid MEMORY_RATIO %q, using %.2f", s, DefaultMemoryRatio)
		} else {
			ratio = r
		}
	}

	goLimit := int64(float64(limit) * ratio)
	debug.SetMemoryLimit(goLimit)

	return MemoryConfig{
		Configured:     true,
		Source:         "MEMORY_LIMIT",
		ContainerLimit: limit,
		GoMemLimit:     goLimit,
		Ratio:          ratio,
	}
}

// LogMemoryConfig logs the outcome of ConfigureMemory.
func LogMemoryConfig(cfg MemoryConfig) {
	switch cfg.Source {
	case "GOMEMLIMIT":
		logging.Info("  GOMEMLIMIT:      %s (from environment)", formatBytes(cfg.GoMemLimit))
	case "MEMORY_LIMIT":
		logging.Info("  GOMEMLIMIT:      %s (%.0f%% of %s container limit)",
			formatBytes(cfg.GoMemLimit), cfg.Ratio*100, formatBytes(cfg.ContainerLimit))
	default:
		logging.Debug("  GOMEMLIMIT:      not configured")
	}
}

// formatBytes formats bytes into a human-readable string
func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
