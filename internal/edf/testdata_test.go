package edf

import (
	"bytes"
	"fmt"
	"strconv"
)

// testSignal describes one signal for buildEDF.
type testSignal struct {
	label      string
	transducer string
	samples    int
}

// testFile describes a synthetic EDF file.
type testFile struct {
	version   string
	patient   string
	recording string
	date      string
	clock     string
	reserved  string
	records   int
	duration  string
	signals   []testSignal
	// annotations holds the raw annotation block per record, padded with NULs.
	annotations [][]byte
	// headerBytes overrides the computed header size when non-zero.
	headerBytes int
	// headerOnly omits the data records.
	headerOnly bool
}

func defaultTestFile() testFile {
	return testFile{
		version:   "0",
		patient:   "MCH-0234567 F 02-MAY-1951 Haagse_Harry",
		recording: "Startdate 02-MAR-2002 EMG561 BK/JOP Sony. MNC R Median Nerve.",
		date:      "02.03.02",
		clock:     "14.30.00",
		records:   2,
		duration:  "1",
		signals: []testSignal{
			{label: "EEG Fpz-Cz", transducer: "AgAgCl electrode", samples: 4},
			{label: "EOG horizontal", transducer: "", samples: 2},
		},
	}
}

func pad(s string, width int) string {
	if len(s) > width {
		return s[:width]
	}
	return s + string(bytes.Repeat([]byte{' '}, width-len(s)))
}

// buildEDF serialises f into the EDF byte layout, including data records.
func buildEDF(f testFile) []byte {
	var b bytes.Buffer
	ns := len(f.signals)
	headerBytes := f.headerBytes
	if headerBytes == 0 {
		headerBytes = 256 + ns*256
	}

	b.WriteString(pad(f.version, 8))
	b.WriteString(pad(f.patient, 80))
	b.WriteString(pad(f.recording, 80))
	b.WriteString(pad(f.date, 8))
	b.WriteString(pad(f.clock, 8))
	b.WriteString(pad(strconv.Itoa(headerBytes), 8))
	b.WriteString(pad(f.reserved, 44))
	b.WriteString(pad(strconv.Itoa(f.records), 8))
	b.WriteString(pad(f.duration, 8))
	b.WriteString(pad(strconv.Itoa(ns), 4))

	column := func(width int, value func(s testSignal) string) {
		for _, s := range f.signals {
			b.WriteString(pad(value(s), width))
		}
	}
	column(16, func(s testSignal) string { return s.label })
	column(80, func(s testSignal) string { return s.transducer })
	column(8, func(testSignal) string { return "uV" })
	column(8, func(testSignal) string { return "-500" })
	column(8, func(testSignal) string { return "500" })
	column(8, func(testSignal) string { return "-2048" })
	column(8, func(testSignal) string { return "2047" })
	column(80, func(testSignal) string { return "HP:0.1Hz" })
	column(8, func(s testSignal) string { return strconv.Itoa(s.samples) })
	column(32, func(testSignal) string { return "" })

	records := f.records
	if f.headerOnly {
		records = 0
	}
	if records < 0 {
		records = len(f.annotations)
	}
	for r := 0; r < records; r++ {
		for _, s := range f.signals {
			size := s.samples * 2
			if s.label == AnnotationLabel && r < len(f.annotations) {
				block := make([]byte, size)
				copy(block, f.annotations[r])
				b.Write(block)
				continue
			}
			b.Write(make([]byte, size))
		}
	}

	return b.Bytes()
}

// tal builds one time-stamped annotation list.
func tal(onset string, texts ...string) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "+%s\x14", onset)
	for _, t := range texts {
		b.WriteString(t)
		b.WriteByte(0x14)
	}
	b.WriteByte(0)
	return b.Bytes()
}

func annotationFile(blocks ...[]byte) testFile {
	f := defaultTestFile()
	f.reserved = "EDF+C"
	f.records = len(blocks)
	f.signals = append(f.signals, testSignal{label: AnnotationLabel, samples: 30})
	f.annotations = blocks
	return f
}
