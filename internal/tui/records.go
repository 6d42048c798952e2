package tui

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"edf-viewer/internal/edf"

	"github.com/charmbracelet/bubbles/table"
	"github.com/sahilm/fuzzy"
)

// DecodeRecords decodes the opaque list returned by the server. Entries
// that are not records are kept as invalid rows so the count stays right.
func DecodeRecords(files []json.RawMessage) []edf.Record {
	records := make([]edf.Record, 0, len(files))
	for i, raw := range files {
		var r edf.Record
		if err := json.Unmarshal(raw, &r); err != nil || r.FileName == "" {
			r = edf.InvalidRecord(fmt.Sprintf("<record %d>", i+1))
		}
		records = append(records, r)
	}
	return records
}

// Columns returns the table columns scaled to width.
func Columns(width int) []table.Column {
	const fixed = 6 + 19 + 4 + 10 + 6 + 7*2
	flexible := width - fixed
	if flexible < 30 {
		flexible = 30
	}
	file := flexible * 3 / 5
	return []table.Column{
		{Title: "File", Width: file},
		{Title: "Valid", Width: 6},
		{Title: "Recorded", Width: 19},
		{Title: "Patient", Width: flexible - file},
		{Title: "Ch", Width: 4},
		{Title: "Length", Width: 10},
		{Title: "Annot", Width: 6},
	}
}

// Row formats a record as a table row.
func Row(r edf.Record) table.Row {
	valid := "no"
	if r.ValidEDF {
		valid = "yes"
	}
	return table.Row{
		r.FileName,
		valid,
		formatDate(r.RecordingDate),
		r.Patient(),
		formatInt(r.NumberOfChannels),
		formatLength(r.RecordingLength),
		formatInt(r.NumberOfAnnotations),
	}
}

func formatDate(d *edf.DateTime) string {
	if d == nil {
		return "-"
	}
	return d.Format("2006-01-02 15:04:05")
}

func formatInt(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}

func formatLength(seconds *float64) string {
	if seconds == nil {
		return "-"
	}
	return time.Duration(*seconds * float64(time.Second)).Round(time.Second).String()
}

// recordSource implements fuzzy.Source over file name and patient.
type recordSource []edf.Record

func (s recordSource) String(i int) string {
	return strings.ToLower(s[i].FileName + " " + s[i].Patient())
}

func (s recordSource) Len() int {
	return len(s)
}

// filterRecords returns the indexes of records matching query, best match
// first. An empty query keeps every record in order.
func filterRecords(records []edf.Record, query string) []int {
	query = strings.TrimSpace(query)
	if query == "" {
		idx := make([]int, len(records))
		for i := range idx {
			idx[i] = i
		}
		return idx
	}

	matches := fuzzy.FindFrom(strings.ToLower(query), recordSource(records))
	idx := make([]int, len(matches))
	for i, m := range matches {
		idx[i] = m.Index
	}
	return idx
}
