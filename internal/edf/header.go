package edf

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	// fixedHeaderSize is the size of the header part shared by all signals.
	fixedHeaderSize = 256
	// signalHeaderSize is the header size contributed by each signal.
	signalHeaderSize = 256

	// MaxRecordSize bounds the size of one data record. Records are read
	// into a buffer of this size, so larger headers are rejected before any
	// data is touched.
	MaxRecordSize = 8 << 20

	// AnnotationLabel marks the EDF+ annotation signal.
	AnnotationLabel = "EDF Annotations"
)

// ErrInvalidHeader is returned (wrapped) for any header that does not follow
// the EDF layout.
var ErrInvalidHeader = errors.New("invalid EDF header")

// Signal is the per-signal part of an EDF header.
type Signal struct {
	Label             string
	Transducer        string
	PhysicalDimension string
	PhysicalMin       float64
	PhysicalMax       float64
	DigitalMin        int
	DigitalMax        int
	Prefiltering      string
	SamplesPerRecord  int
}

// IsAnnotation reports whether the signal carries EDF+ annotations.
func (s Signal) IsAnnotation() bool {
	return s.Label == AnnotationLabel
}

// Header is a parsed EDF/EDF+ header. Text fields keep their trailing
// padding stripped; RecordingID and PatientID are otherwise untouched.
type Header struct {
	Version         string
	PatientID       string
	RecordingID     string
	StartDate       string
	StartTime       string
	HeaderBytes     int
	Reserved        string
	NumberOfRecords int
	RecordDuration  float64
	Signals         []Signal
}

// IsEDFPlus reports whether the reserved field marks the file as EDF+.
func (h *Header) IsEDFPlus() bool {
	return strings.HasPrefix(h.Reserved, "EDF+")
}

// RecordSize returns the size in bytes of one data record.
func (h *Header) RecordSize() int {
	size := 0
	for _, s := range h.Signals {
		size += s.SamplesPerRecord * 2
	}
	return size
}

// annotationSignal returns the index of the first annotation signal, or -1.
func (h *Header) annotationSignal() int {
	for i, s := range h.Signals {
		if s.IsAnnotation() {
			return i
		}
	}
	return -1
}

// File is the result of parsing an EDF file.
type File struct {
	Header      *Header
	Records     int
	Annotations int
}

// RecordingSeconds returns records times record duration.
func (f *File) RecordingSeconds() float64 {
	return float64(f.Records) * f.Header.RecordDuration
}

// fieldReader slices fixed-width ASCII fields off a byte buffer.
type fieldReader struct {
	buf []byte
	pos int
	err error
}

func (fr *fieldReader) text(width int) string {
	if fr.err != nil {
		return ""
	}
	if fr.pos+width > len(fr.buf) {
		fr.err = fmt.Errorf("%w: field at offset %d truncated", ErrInvalidHeader, fr.pos)
		return ""
	}
	s := string(fr.buf[fr.pos : fr.pos+width])
	fr.pos += width
	return strings.TrimRight(s, " \x00")
}

func (fr *fieldReader) integer(width int, name string) int {
	s := strings.TrimSpace(fr.text(width))
	if fr.err != nil {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		fr.err = fmt.Errorf("%w: %s %q is not an integer", ErrInvalidHeader, name, s)
		return 0
	}
	return n
}

func (fr *fieldReader) float(width int, name string) float64 {
	s := strings.TrimSpace(fr.text(width))
	if fr.err != nil {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		fr.err = fmt.Errorf("%w: %s %q is not a number", ErrInvalidHeader, name, s)
		return 0
	}
	return f
}

// ParseHeader reads the fixed header and all signal headers from r.
func ParseHeader(r io.Reader) (*Header, error) {
	fixed := make([]byte, fixedHeaderSize)
	if _, err := io.ReadFull(r, fixed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHeader, err)
	}

	fr := &fieldReader{buf: fixed}
	h := &Header{
		Version:     strings.TrimSpace(fr.text(8)),
		PatientID:   fr.text(80),
		RecordingID: fr.text(80),
		StartDate:   fr.text(8),
		StartTime:   fr.text(8),
		HeaderBytes: fr.integer(8, "header bytes"),
		Reserved:    fr.text(44),
	}
	h.NumberOfRecords = fr.integer(8, "number of data records")
	h.RecordDuration = fr.float(8, "duration of a data record")
	ns := fr.integer(4, "number of signals")
	if fr.err != nil {
		return nil, fr.err
	}

	if h.Version != "0" {
		return nil, fmt.Errorf("%w: unsupported version %q", ErrInvalidHeader, h.Version)
	}
	if ns < 0 {
		return nil, fmt.Errorf("%w: negative signal count %d", ErrInvalidHeader, ns)
	}
	if h.NumberOfRecords < -1 {
		return nil, fmt.Errorf("%w: number of data records %d", ErrInvalidHeader, h.NumberOfRecords)
	}
	if h.RecordDuration < 0 {
		return nil, fmt.Errorf("%w: negative record duration", ErrInvalidHeader)
	}
	if expected := fixedHeaderSize + ns*signalHeaderSize; h.HeaderBytes != expected {
		return nil, fmt.Errorf("%w: header bytes %d, expected %d for %d signals",
			ErrInvalidHeader, h.HeaderBytes, expected, ns)
	}

	signalBlock := make([]byte, ns*signalHeaderSize)
	if _, err := io.ReadFull(r, signalBlock); err != nil {
		return nil, fmt.Errorf("%w: signal headers truncated: %v", ErrInvalidHeader, err)
	}

	// Signal fields are stored column-wise: all labels, then all transducers...
	sr := &fieldReader{buf: signalBlock}
	h.Signals = make([]Signal, ns)
	for i := range h.Signals {
		h.Signals[i].Label = strings.TrimSpace(sr.text(16))
	}
	for i := range h.Signals {
		h.Signals[i].Transducer = strings.TrimSpace(sr.text(80))
	}
	for i := range h.Signals {
		h.Signals[i].PhysicalDimension = strings.TrimSpace(sr.text(8))
	}
	for i := range h.Signals {
		h.Signals[i].PhysicalMin = sr.float(8, "physical minimum")
	}
	for i := range h.Signals {
		h.Signals[i].PhysicalMax = sr.float(8, "physical maximum")
	}
	for i := range h.Signals {
		h.Signals[i].DigitalMin = sr.integer(8, "digital minimum")
	}
	for i := range h.Signals {
		h.Signals[i].DigitalMax = sr.integer(8, "digital maximum")
	}
	for i := range h.Signals {
		h.Signals[i].Prefiltering = strings.TrimSpace(sr.text(80))
	}
	for i := range h.Signals {
		h.Signals[i].SamplesPerRecord = sr.integer(8, "samples per record")
	}
	if sr.err != nil {
		return nil, sr.err
	}
	var recordSize int64
	for i, s := range h.Signals {
		if s.SamplesPerRecord < 0 {
			return nil, fmt.Errorf("%w: signal %d has negative sample count", ErrInvalidHeader, i)
		}
		recordSize += int64(s.SamplesPerRecord) * 2
		if recordSize > MaxRecordSize {
			return nil, fmt.Errorf("%w: data record larger than %d bytes", ErrInvalidHeader, MaxRecordSize)
		}
	}

	return h, nil
}

// Parse reads an EDF file from r. Data records are only read when they are
// needed: to count EDF+ annotations, or to count records when the header
// stores -1 (recording still in progress).
func Parse(r io.Reader) (*File, error) {
	br := bufio.NewReader(r)

	h, err := ParseHeader(br)
	if err != nil {
		return nil, err
	}

	f := &File{Header: h, Records: h.NumberOfRecords}

	annIdx := h.annotationSignal()
	if annIdx < 0 && h.NumberOfRecords >= 0 {
		return f, nil
	}

	records, annotations, err := readRecords(br, h, annIdx)
	if err != nil {
		return nil, err
	}
	f.Records = records
	f.Annotations = annotations
	return f, nil
}

// readRecords walks the data records. With a known record count every record
// must be present; with -1 it reads until EOF.
func readRecords(r io.Reader, h *Header, annIdx int) (records, annotations int, err error) {
	size := h.RecordSize()
	if size == 0 {
		if h.NumberOfRecords < 0 {
			return 0, 0, nil
		}
		return h.NumberOfRecords, 0, nil
	}

	annOffset, annLen := 0, 0
	if annIdx >= 0 {
		for i := 0; i < annIdx; i++ {
			annOffset += h.Signals[i].SamplesPerRecord * 2
		}
		annLen = h.Signals[annIdx].SamplesPerRecord * 2
	}

	buf := make([]byte, size)
	for h.NumberOfRecords < 0 || records < h.NumberOfRecords {
		n, err := io.ReadFull(r, buf)
		if err == io.EOF && h.NumberOfRecords < 0 {
			break
		}
		if err != nil {
			if h.NumberOfRecords < 0 && errors.Is(err, io.ErrUnexpectedEOF) && n > 0 {
				// partial trailing record of a recording in progress
				break
			}
			return 0, 0, fmt.Errorf("data record %d: %w", records, err)
		}
		records++
		if annIdx >= 0 {
			annotations += CountTALs(buf[annOffset : annOffset+annLen])
		}
	}

	return records, annotations, nil
}

// CountTALs counts the time-stamped annotation lists in one annotation
// signal block that carry at least one non-empty annotation text. The
// time-keeping TAL at the start of every record has no text and is skipped.
func CountTALs(block []byte) int {
	count := 0
	for _, tal := range bytes.Split(block, []byte{0}) {
		if len(tal) == 0 {
			continue
		}
		parts := bytes.Split(tal, []byte{0x14})
		// parts[0] is onset[\x15duration]
		for _, text := range parts[1:] {
			if len(bytes.TrimSpace(text)) > 0 {
				count++
				break
			}
		}
	}
	return count
}
