package edf

import (
	"bytes"
	"errors"
	"testing"
)

// =============================================================================
// ParseHeader Tests
// =============================================================================

func TestParseHeader(t *testing.T) {
	data := buildEDF(defaultTestFile())

	h, err := ParseHeader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ParseHeader failed: %v", err)
	}

	if h.Version != "0" {
		t.Errorf("Expected version 0, got %q", h.Version)
	}
	if h.PatientID != "MCH-0234567 F 02-MAY-1951 Haagse_Harry" {
		t.Errorf("Unexpected patient ID %q", h.PatientID)
	}
	if h.StartDate != "02.03.02" || h.StartTime != "14.30.00" {
		t.Errorf("Unexpected start %q %q", h.StartDate, h.StartTime)
	}
	if h.HeaderBytes != 768 {
		t.Errorf("Expected 768 header bytes, got %d", h.HeaderBytes)
	}
	if h.NumberOfRecords != 2 {
		t.Errorf("Expected 2 records, got %d", h.NumberOfRecords)
	}
	if h.RecordDuration != 1 {
		t.Errorf("Expected duration 1, got %f", h.RecordDuration)
	}
	if len(h.Signals) != 2 {
		t.Fatalf("Expected 2 signals, got %d", len(h.Signals))
	}
	if h.Signals[0].Label != "EEG Fpz-Cz" {
		t.Errorf("Expected label 'EEG Fpz-Cz', got %q", h.Signals[0].Label)
	}
	if h.Signals[0].Transducer != "AgAgCl electrode" {
		t.Errorf("Expected transducer 'AgAgCl electrode', got %q", h.Signals[0].Transducer)
	}
	if h.Signals[1].SamplesPerRecord != 2 {
		t.Errorf("Expected 2 samples, got %d", h.Signals[1].SamplesPerRecord)
	}
	if h.Signals[0].DigitalMin != -2048 || h.Signals[0].PhysicalMax != 500 {
		t.Errorf("Unexpected ranges: %+v", h.Signals[0])
	}
	if h.IsEDFPlus() {
		t.Error("Expected plain EDF")
	}
	if h.RecordSize() != 12 {
		t.Errorf("Expected record size 12, got %d", h.RecordSize())
	}
}

func TestParseHeaderInvalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(f *testFile)
		data   func([]byte) []byte
	}{
		{
			name: "too short",
			data: func(b []byte) []byte { return b[:100] },
		},
		{
			name:   "wrong version",
			mutate: func(f *testFile) { f.version = "1" },
		},
		{
			name:   "duration not a number",
			mutate: func(f *testFile) { f.duration = "abc" },
		},
		{
			name:   "header bytes mismatch",
			mutate: func(f *testFile) { f.headerBytes = 512 },
		},
		{
			name:   "records below -1",
			mutate: func(f *testFile) { f.records = -5 },
		},
		{
			name: "truncated signal header",
			data: func(b []byte) []byte { return b[:400] },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := defaultTestFile()
			if tt.mutate != nil {
				tt.mutate(&f)
			}
			data := buildEDF(f)
			if tt.data != nil {
				data = tt.data(data)
			}

			_, err := ParseHeader(bytes.NewReader(data))
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !errors.Is(err, ErrInvalidHeader) {
				t.Errorf("Expected ErrInvalidHeader, got %v", err)
			}
		})
	}
}

func TestParseRejectsOversizedRecords(t *testing.T) {
	tests := []struct {
		name    string
		records int
		signals []testSignal
	}{
		{
			name:    "annotation signal",
			records: 1,
			signals: []testSignal{
				{label: AnnotationLabel, samples: 99999999},
				{label: "EEG Fpz-Cz", samples: 99999999},
			},
		},
		{
			name:    "unknown record count",
			records: -1,
			signals: []testSignal{{label: "EEG Fpz-Cz", samples: MaxRecordSize/2 + 1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := defaultTestFile()
			f.reserved = "EDF+C"
			f.records = tt.records
			f.signals = tt.signals
			f.headerOnly = true
			data := buildEDF(f)

			_, err := Parse(bytes.NewReader(data))
			if !errors.Is(err, ErrInvalidHeader) {
				t.Fatalf("Expected ErrInvalidHeader, got %v", err)
			}

			r, err := ReadRecord("huge.edf", bytes.NewReader(data))
			if err != nil {
				t.Fatalf("ReadRecord failed: %v", err)
			}
			if r.ValidEDF {
				t.Error("Expected oversized file to be reported invalid")
			}
		})
	}
}

func TestParseAcceptsRecordAtLimit(t *testing.T) {
	f := defaultTestFile()
	f.records = 0
	f.signals = []testSignal{{label: "EEG Fpz-Cz", samples: MaxRecordSize / 2}}

	if _, err := ParseHeader(bytes.NewReader(buildEDF(f))); err != nil {
		t.Errorf("Expected record of exactly %d bytes to be accepted, got %v", MaxRecordSize, err)
	}
}

// =============================================================================
// Parse Tests
// =============================================================================

func TestParsePlainEDF(t *testing.T) {
	f, err := Parse(bytes.NewReader(buildEDF(defaultTestFile())))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if f.Records != 2 {
		t.Errorf("Expected 2 records, got %d", f.Records)
	}
	if f.RecordingSeconds() != 2 {
		t.Errorf("Expected 2 seconds, got %f", f.RecordingSeconds())
	}
	if f.Annotations != 0 {
		t.Errorf("Expected 0 annotations, got %d", f.Annotations)
	}
}

func TestParseCountsAnnotations(t *testing.T) {
	first := append(tal("0", ""), tal("0.5", "Lights off")...)
	second := append(tal("1", ""), tal("1.2", "Arousal", "Snoring")...)
	second = append(second, tal("1.8", "")...)

	f, err := Parse(bytes.NewReader(buildEDF(annotationFile(first, second))))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if !f.Header.IsEDFPlus() {
		t.Error("Expected EDF+ header")
	}
	if f.Annotations != 2 {
		t.Errorf("Expected 2 annotations, got %d", f.Annotations)
	}
}

func TestParseTruncatedDataRecords(t *testing.T) {
	data := buildEDF(annotationFile(tal("0", ""), tal("1", "")))

	_, err := Parse(bytes.NewReader(data[:len(data)-10]))
	if err == nil {
		t.Fatal("Expected error for truncated data record")
	}
}

func TestParseUnknownRecordCount(t *testing.T) {
	tf := annotationFile(tal("0", ""), tal("1", "Event"), tal("2", ""))
	tf.records = -1

	f, err := Parse(bytes.NewReader(buildEDF(tf)))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if f.Records != 3 {
		t.Errorf("Expected 3 records counted from data, got %d", f.Records)
	}
	if f.Annotations != 1 {
		t.Errorf("Expected 1 annotation, got %d", f.Annotations)
	}
}

func TestCountTALs(t *testing.T) {
	tests := []struct {
		name  string
		block []byte
		want  int
	}{
		{"empty", nil, 0},
		{"time keeping only", tal("0", ""), 0},
		{"one text", tal("3", "Spike"), 1},
		{"two texts one tal", tal("3", "Spike", "Wave"), 1},
		{"with duration", []byte("+3\x150.5\x14Spike\x14\x00"), 1},
		{"padding", append(tal("3", "Spike"), make([]byte, 20)...), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CountTALs(tt.block); got != tt.want {
				t.Errorf("CountTALs() = %d, want %d", got, tt.want)
			}
		})
	}
}
