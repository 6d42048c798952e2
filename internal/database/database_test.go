package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"edf-viewer/internal/edf"
)

func setupTestDB(t *testing.T) *Database {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "edf.db")
	db, err := New(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Close failed: %v", err)
		}
	})
	return db
}

func sampleRecords() []edf.Record {
	channels := 1
	length := 120.0
	annotations := 3
	patient := "John Doe"
	recordingID := "Startdate 15-JAN-2024"

	valid := edf.Record{
		FileName:            "b.edf",
		ValidEDF:            true,
		RecordingID:         &recordingID,
		RecordingDate:       &edf.DateTime{Time: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)},
		PatientName:         &patient,
		Channels:            []edf.Channel{{Name: "EEG C3", Type: "electrode"}},
		NumberOfChannels:    &channels,
		RecordingLength:     &length,
		NumberOfAnnotations: &annotations,
		Checksum:            "abc123",
	}

	return []edf.Record{valid, edf.InvalidRecord("a.edf")}
}

// =============================================================================
// Schema Tests
// =============================================================================

func TestNewCreatesSchema(t *testing.T) {
	db := setupTestDB(t)

	for _, table := range []string{"edf_files", "metadata"} {
		var name string
		err := db.db.QueryRowContext(context.Background(),
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("Expected table %s to exist: %v", table, err)
		}
	}
}

func TestNewReopensExistingDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "edf.db")
	ctx := context.Background()

	db, err := New(ctx, dbPath)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := db.Replace(ctx, sampleRecords()); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	db, err = New(ctx, dbPath)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer db.Close()

	count, err := db.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 records after reopen, got %d", count)
	}
}

func TestNewFailsForMissingDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "missing", "edf.db")

	if _, err := New(context.Background(), dbPath); err == nil {
		t.Error("Expected error for missing database directory")
	}
}

// =============================================================================
// Store Tests
// =============================================================================

func TestReplaceAndList(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.Replace(ctx, sampleRecords()); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	records, err := db.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}

	// scan order, not file name order
	if records[0].FileName != "b.edf" || records[1].FileName != "a.edf" {
		t.Errorf("Expected b.edf,a.edf, got %s,%s", records[0].FileName, records[1].FileName)
	}

	got := records[0]
	if got.Patient() != "John Doe" {
		t.Errorf("Expected patient John Doe, got %s", got.Patient())
	}
	if got.RecordingDate == nil || !got.RecordingDate.Equal(time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)) {
		t.Errorf("Unexpected recording date %v", got.RecordingDate)
	}
	if *got.NumberOfAnnotations != 3 {
		t.Errorf("Expected 3 annotations, got %d", *got.NumberOfAnnotations)
	}
	if got.Checksum != "abc123" {
		t.Errorf("Expected checksum abc123, got %s", got.Checksum)
	}

	invalid := records[1]
	if invalid.ValidEDF || invalid.ErrorMessage == nil || *invalid.ErrorMessage != edf.InvalidFileMessage {
		t.Errorf("Expected invalid record to round trip, got %+v", invalid)
	}
	if invalid.Channels == nil || len(invalid.Channels) != 0 {
		t.Errorf("Expected empty channel list, got %v", invalid.Channels)
	}
}

func TestReplaceClears(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.Replace(ctx, sampleRecords()); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}
	if err := db.Replace(ctx, nil); err != nil {
		t.Fatalf("Replace(nil) failed: %v", err)
	}

	records, err := db.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if records == nil || len(records) != 0 {
		t.Errorf("Expected empty non-nil list, got %v", records)
	}
}

func TestReplaceCancelledContext(t *testing.T) {
	db := setupTestDB(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := db.Replace(ctx, sampleRecords()); err == nil {
		t.Error("Expected error for cancelled context")
	}
}

// =============================================================================
// Metadata Tests
// =============================================================================

func TestLastScan(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	last, err := db.GetLastScan(ctx)
	if err != nil {
		t.Fatalf("GetLastScan failed: %v", err)
	}
	if !last.IsZero() {
		t.Errorf("Expected zero time before any scan, got %v", last)
	}

	before := time.Now().Add(-time.Second)
	if err := db.Replace(ctx, sampleRecords()); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	last, err = db.GetLastScan(ctx)
	if err != nil {
		t.Fatalf("GetLastScan failed: %v", err)
	}
	if last.Before(before) {
		t.Errorf("Expected last scan after %v, got %v", before, last)
	}
}

func TestMetadata(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if _, err := db.GetMetadata(ctx, "missing"); err == nil {
		t.Error("Expected error for missing key")
	}

	if err := db.SetMetadata(ctx, "source", "data/edf"); err != nil {
		t.Fatalf("SetMetadata failed: %v", err)
	}
	if err := db.SetMetadata(ctx, "source", "other"); err != nil {
		t.Fatalf("SetMetadata update failed: %v", err)
	}

	value, err := db.GetMetadata(ctx, "source")
	if err != nil {
		t.Fatalf("GetMetadata failed: %v", err)
	}
	if value != "other" {
		t.Errorf("Expected 'other', got %q", value)
	}
}
