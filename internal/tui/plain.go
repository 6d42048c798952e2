package tui

import (
	"fmt"
	"io"
	"sort"

	"edf-viewer/internal/edf"

	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// MatchRecords keeps the records whose file name or patient fuzzily
// contains query, closest match first. Ties keep the input order.
func MatchRecords(records []edf.Record, query string) []edf.Record {
	if query == "" {
		return records
	}

	targets := make([]string, len(records))
	for i, r := range records {
		targets[i] = r.FileName + " " + r.Patient()
	}

	ranks := fuzzy.RankFindFold(query, targets)
	sort.Stable(ranks)

	out := make([]edf.Record, 0, len(ranks))
	for _, rank := range ranks {
		out = append(out, records[rank.OriginalIndex])
	}
	return out
}

// RenderPlain writes records as a plain table followed by a count line,
// for output that is not an interactive terminal.
func RenderPlain(w io.Writer, records []edf.Record) error {
	headers := make([]string, 0, 7)
	for _, c := range Columns(0) {
		headers = append(headers, c.Title)
	}

	t := ltable.New().
		Border(lipgloss.ASCIIBorder()).
		Headers(headers...)
	for _, r := range records {
		t.Row(Row(r)...)
	}

	valid := 0
	for _, r := range records {
		if r.ValidEDF {
			valid++
		}
	}

	_, err := fmt.Fprintf(w, "%s\n%d files, %d valid\n", t.Render(), len(records), valid)
	return err
}
