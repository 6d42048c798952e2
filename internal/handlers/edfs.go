package handlers

import (
	"net/http"
	"strconv"

	"edf-viewer/internal/edf"
)

// ListEDFs returns the catalogue in scan order.
func (h *Handlers) ListEDFs(w http.ResponseWriter, r *http.Request) {
	records, err := h.catalog.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeRecords(w, records)
}

// ListSortedEDFs returns the catalogue newest recording first.
func (h *Handlers) ListSortedEDFs(w http.ResponseWriter, r *http.Request) {
	records, err := h.catalog.ListSorted(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeRecords(w, records)
}

// RescanEDFs reloads the source directory and returns the new catalogue.
// The optional sorted query parameter selects the sorted order.
func (h *Handlers) RescanEDFs(w http.ResponseWriter, r *http.Request) {
	sorted := false
	if raw := r.URL.Query().Get("sorted"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			writeProblem(w, r, http.StatusBadRequest, "invalid sorted parameter: "+raw)
			return
		}
		sorted = v
	}

	records, err := h.catalog.Rescan(r.Context(), sorted)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeRecords(w, records)
}

func writeRecords(w http.ResponseWriter, records []edf.Record) {
	if records == nil {
		records = []edf.Record{}
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	writeJSON(w, records)
}
