package handlers

import (
	"net/http"
	"runtime"

	"edf-viewer/internal/startup"
)

const (
	statusHealthy  = "healthy"
	statusStarting = "starting"
	statusDegraded = "degraded"
)

// HealthResponse contains the health check response
type HealthResponse struct {
	Status     string `json:"status"`
	Ready      bool   `json:"ready"`
	Version    string `json:"version"`
	Uptime     string `json:"uptime"`
	Loading    bool   `json:"loading"`
	Source     string `json:"source"`
	LastLoaded string `json:"lastLoaded,omitempty"`
	LastError  string `json:"lastError,omitempty"`

	// Catalogue summary
	ValidRecords   int `json:"validRecords"`
	InvalidRecords int `json:"invalidRecords"`

	// System info
	GoVersion    string `json:"goVersion"`
	NumCPU       int    `json:"numCpu"`
	NumGoroutine int    `json:"numGoroutine"`
}

// HealthCheck returns the health status of the service
func (h *Handlers) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	healthStatus := h.catalog.GetHealthStatus()

	response := HealthResponse{
		Ready:          healthStatus.Ready,
		Version:        startup.Version,
		Uptime:         healthStatus.Uptime,
		Loading:        healthStatus.Loading,
		Source:         healthStatus.Source,
		ValidRecords:   healthStatus.ValidRecords,
		InvalidRecords: healthStatus.InvalidRecords,
		GoVersion:      runtime.Version(),
		NumCPU:         runtime.NumCPU(),
		NumGoroutine:   runtime.NumGoroutine(),
	}

	if healthStatus.Ready {
		response.Status = statusHealthy
	} else {
		response.Status = statusStarting
	}

	if !healthStatus.LastLoaded.IsZero() {
		response.LastLoaded = healthStatus.LastLoaded.Format("2006-01-02T15:04:05Z07:00")
	}

	// A failed load after a good one keeps serving but is reported.
	if healthStatus.LastError != "" {
		response.LastError = healthStatus.LastError
		response.Status = statusDegraded
	}

	w.Header().Set("Content-Type", "application/json")

	// Return 503 only if not ready at all
	if !healthStatus.Ready {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	writeJSON(w, response)
}

// LivenessCheck is a simple liveness probe (always returns 200 if server is running)
func (h *Handlers) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	// For HEAD requests, only send headers (no body)
	if r.Method != http.MethodHead {
		writeJSON(w, map[string]string{
			"status": "alive",
		})
	}
}

// ReadinessCheck returns 200 only when the catalogue has been loaded once
func (h *Handlers) ReadinessCheck(w http.ResponseWriter, _ *http.Request) {
	if h.catalog.IsReady() {
		writeJSONStatus(w, http.StatusOK, "ready")
	} else {
		writeJSONStatus(w, http.StatusServiceUnavailable, "not_ready")
	}
}
