package handlers

import (
	"context"
	"errors"
	"net/http"

	"edf-viewer/internal/logging"
	"edf-viewer/internal/scanner"
)

const problemContentType = "application/problem+json"

// Problem is an RFC 7807 problem details body.
type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

// statusForError maps catalogue errors to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, scanner.ErrSourceNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeProblem writes a problem response for the request.
func writeProblem(w http.ResponseWriter, r *http.Request, status int, detail string) {
	problem := Problem{
		Type:     "about:blank",
		Title:    http.StatusText(status),
		Status:   status,
		Detail:   detail,
		Instance: r.URL.Path,
	}

	w.Header().Set("Content-Type", problemContentType)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	writeJSON(w, problem)
}

// writeError logs err and writes it as a problem response.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		logging.Error("%s %s failed: %v", r.Method, r.URL.Path, err)
	} else {
		logging.Warn("%s %s: %v", r.Method, r.URL.Path, err)
	}
	writeProblem(w, r, status, err.Error())
}
