package edf

import (
	"encoding/hex"
	"fmt"
	"io"

	"golang.org/x/crypto/blake2b"
)

// ReadRecord parses an EDF stream and returns its catalogue record. The
// checksum covers every byte of the stream, so r is always drained. A parse
// failure yields an invalid record, not an error; the error is only
// returned for read failures of the underlying stream after the parse.
func ReadRecord(fileName string, r io.Reader) (Record, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return Record{}, fmt.Errorf("blake2b: %w", err)
	}

	tee := io.TeeReader(r, h)
	f, parseErr := Parse(tee)

	if _, err := io.Copy(io.Discard, tee); err != nil {
		return InvalidRecord(fileName), fmt.Errorf("reading %s: %w", fileName, err)
	}

	if parseErr != nil {
		return InvalidRecord(fileName), nil
	}

	return NewRecord(fileName, f, hex.EncodeToString(h.Sum(nil))), nil
}
