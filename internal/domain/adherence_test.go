package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewAdherenceRecord(t *testing.T) {
	t.Parallel() // Enable parallel execution

	userID := uuid.New()
	medID := uuid.New()
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	rec, err := NewAdherenceRecord(userID, medID, day, MustTimeOfDay("08:00"))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Status != AdherenceStatusPending {
		t.Errorf("Expected pending status, got %q", rec.Status)
	}
	if rec.TakenAt != nil {
		t.Error("Expected nil TakenAt on a new record")
	}

	_, err = NewAdherenceRecord(uuid.Nil, medID, day, MustTimeOfDay("08:00"))
	if err != ErrAdherenceUserIDEmpty {
		t.Errorf("Expected error %v, got %v", ErrAdherenceUserIDEmpty, err)
	}

	_, err = NewAdherenceRecord(userID, uuid.Nil, day, MustTimeOfDay("08:00"))
	if err != ErrAdherenceMedicationIDEmpty {
		t.Errorf("Expected error %v, got %v", ErrAdherenceMedicationIDEmpty, err)
	}
}

func TestAdherenceConfirmAndSkip(t *testing.T) {
	t.Parallel()

	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	takenAt := time.Date(2024, 1, 1, 8, 5, 0, 0, time.UTC)

	rec, err := NewAdherenceRecord(uuid.New(), uuid.New(), day, MustTimeOfDay("08:00"))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if err := rec.Confirm(takenAt, "with breakfast"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Status != AdherenceStatusTaken {
		t.Errorf("Expected taken status, got %q", rec.Status)
	}
	if rec.TakenAt == nil || !rec.TakenAt.Equal(takenAt) {
		t.Errorf("Expected TakenAt %v, got %v", takenAt, rec.TakenAt)
	}

	// Confirming twice is rejected.
	if err := rec.Confirm(takenAt, ""); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("Expected ErrInvalidStatus, got %v", err)
	}

	// Skipping a non-pending record is rejected.
	if err := rec.Skip("nausea"); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("Expected ErrInvalidStatus, got %v", err)
	}

	skipped, err := NewAdherenceRecord(uuid.New(), uuid.New(), day, MustTimeOfDay("20:00"))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if err := skipped.Skip("nausea"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if skipped.Status != AdherenceStatusSkipped {
		t.Errorf("Expected skipped status, got %q", skipped.Status)
	}
}
