package edf

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	// NotAvailable is reported when no patient name can be derived.
	NotAvailable = "Not Available"
	// InvalidFileMessage is the error message of records for unreadable files.
	InvalidFileMessage = "Invalid EDF File"

	dateTimeLayout = "2006-01-02T15:04:05"
)

var patientNamePattern = regexp.MustCompile(`^[A-Za-z.]+(?:_[A-Za-z.]+)+$`)

// Channel is one signal of a recording as shown to clients.
type Channel struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// DateTime is a zone-less timestamp encoded as "2006-01-02T15:04:05".
type DateTime struct {
	time.Time
}

func (d DateTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(dateTimeLayout))
}

func (d *DateTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	t, err := time.Parse(dateTimeLayout, s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// Record is the JSON shape of one catalogue entry. Derived fields are nil for
// invalid files so they serialize as null.
type Record struct {
	FileName            string    `json:"fileName"`
	ValidEDF            bool      `json:"validEdf"`
	ErrorMessage        *string   `json:"errorMessage"`
	RecordingID         *string   `json:"recordingID"`
	RecordingDate       *DateTime `json:"recordingDate"`
	PatientName         *string   `json:"patientName"`
	Channels            []Channel `json:"channels"`
	NumberOfChannels    *int      `json:"numberOfChannels"`
	RecordingLength     *float64  `json:"recordingLength"`
	NumberOfAnnotations *int      `json:"numberOfAnnotations"`
	Checksum            string    `json:"checksum,omitempty"`
}

// NewRecord builds the record for a successfully parsed file.
func NewRecord(fileName string, f *File, checksum string) Record {
	h := f.Header
	channels := Channels(h.Signals)
	numChannels := len(channels)
	length := f.RecordingSeconds()
	annotations := f.Annotations
	patient := PatientName(h.PatientID)
	recordingID := strings.TrimSpace(h.RecordingID)

	rec := Record{
		FileName:            fileName,
		ValidEDF:            true,
		RecordingID:         &recordingID,
		PatientName:         &patient,
		Channels:            channels,
		NumberOfChannels:    &numChannels,
		RecordingLength:     &length,
		NumberOfAnnotations: &annotations,
		Checksum:            checksum,
	}
	if t, ok := ParseRecordingDate(h.StartDate, h.StartTime); ok {
		rec.RecordingDate = &DateTime{t}
	}
	return rec
}

// InvalidRecord builds the record for a file that could not be parsed.
func InvalidRecord(fileName string) Record {
	msg := InvalidFileMessage
	return Record{
		FileName:     fileName,
		ValidEDF:     false,
		ErrorMessage: &msg,
		Channels:     []Channel{},
	}
}

// Channels lists the signals with trimmed label and transducer type.
// Annotation signals are included, they are part of the file's signal list.
func Channels(signals []Signal) []Channel {
	out := make([]Channel, 0, len(signals))
	for _, s := range signals {
		out = append(out, Channel{
			Name: strings.TrimSpace(s.Label),
			Type: strings.TrimSpace(s.Transducer),
		})
	}
	return out
}

// PatientName extracts the patient name from an EDF+ subject ID
// ("code sex birthdate name"). The name must look like Given_Family with
// letters and dots only; underscores become spaces.
func PatientName(subjectID string) string {
	fields := strings.Fields(subjectID)
	if len(fields) < 4 {
		return NotAvailable
	}
	name := fields[3]
	if !patientNamePattern.MatchString(name) {
		return NotAvailable
	}
	return strings.ReplaceAll(name, "_", " ")
}

// ParseRecordingDate combines the header start date (dd.mm.yy) and time
// (hh.mm.ss). Two-digit years map to 2000+yy.
func ParseRecordingDate(date, clock string) (time.Time, bool) {
	d, ok := splitTriplet(strings.TrimSpace(date))
	if !ok {
		return time.Time{}, false
	}
	c, ok := splitTriplet(strings.TrimSpace(clock))
	if !ok {
		return time.Time{}, false
	}

	day, month, year := d[0], d[1], 2000+d[2]
	hour, minute, second := c[0], c[1], c[2]
	if month < 1 || month > 12 || day < 1 || hour > 23 || minute > 59 || second > 59 {
		return time.Time{}, false
	}

	t := time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC)
	if t.Day() != day {
		// time.Date normalised an out of range day, e.g. 31.02.
		return time.Time{}, false
	}
	return t, true
}

// splitTriplet parses "nn.nn.nn" into three numbers.
func splitTriplet(s string) ([3]int, bool) {
	var out [3]int
	parts := strings.Split(s, ".")
	if len(s) != 8 || len(parts) != 3 {
		return out, false
	}
	for i, p := range parts {
		if len(p) != 2 {
			return out, false
		}
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return out, false
		}
		out[i] = n
	}
	return out, true
}

// Summary returns a one-line description used in logs and plain output.
func (r Record) Summary() string {
	if !r.ValidEDF {
		return fmt.Sprintf("%s: %s", r.FileName, InvalidFileMessage)
	}
	date := "-"
	if r.RecordingDate != nil {
		date = r.RecordingDate.Format("2006-01-02 15:04:05")
	}
	return fmt.Sprintf("%s: %d channels, %.0fs, recorded %s",
		r.FileName, len(r.Channels), r.Length(), date)
}

// Length returns the recording length, or 0 when unknown.
func (r Record) Length() float64 {
	if r.RecordingLength == nil {
		return 0
	}
	return *r.RecordingLength
}

// Patient returns the patient name, or NotAvailable.
func (r Record) Patient() string {
	if r.PatientName == nil {
		return NotAvailable
	}
	return *r.PatientName
}
