package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AdherenceStatus represents the lifecycle state of an adherence record.
type AdherenceStatus string

// Possible adherence status values.
const (
	AdherenceStatusPending AdherenceStatus = "pending"
	AdherenceStatusTaken   AdherenceStatus = "taken"
	AdherenceStatusSkipped AdherenceStatus = "skipped"
	AdherenceStatusMissed  AdherenceStatus = "missed"
)

// Adherence-specific validation errors
var (
	// ErrAdherenceIDEmpty is returned when an adherence record ID is empty or nil.
	ErrAdherenceIDEmpty = errors.New("adherence record ID cannot be empty")

	// ErrAdherenceUserIDEmpty is returned when the user ID is empty or nil.
	ErrAdherenceUserIDEmpty = errors.New("adherence record user ID cannot be empty")

	// ErrAdherenceMedicationIDEmpty is returned when the medication ID is empty or nil.
	ErrAdherenceMedicationIDEmpty = errors.New("adherence record medication ID cannot be empty")

	// ErrAdherenceDateZero is returned when the scheduled date is unset.
	ErrAdherenceDateZero = errors.New("adherence record scheduled date cannot be zero")
)

// AdherenceRecord tracks whether a single scheduled dose was taken.
// The tuple (UserID, MedicationID, ScheduledDate, ScheduledTime) is the
// record's identity key: materialization creates at most one record per key,
// and the storage layer enforces the key as a unique constraint as a backstop
// against concurrent generation runs.
//
// Records are created as pending by the generation job. User confirm/skip
// flows move them to taken/skipped; the missed sweep moves stale pending
// records to missed. The core never deletes adherence records.
type AdherenceRecord struct {
	ID            uuid.UUID       `json:"id"`
	UserID        uuid.UUID       `json:"user_id"`
	MedicationID  uuid.UUID       `json:"medication_id"`
	ScheduledDate time.Time       `json:"scheduled_date"`
	ScheduledTime TimeOfDay       `json:"scheduled_time"`
	Status        AdherenceStatus `json:"status"`
	TakenAt       *time.Time      `json:"taken_at,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// NewAdherenceRecord creates a pending AdherenceRecord for one scheduled dose.
// Returns an error if validation fails.
func NewAdherenceRecord(
	userID, medicationID uuid.UUID,
	scheduledDate time.Time,
	scheduledTime TimeOfDay,
) (*AdherenceRecord, error) {
	rec := &AdherenceRecord{
		ID:            uuid.New(),
		UserID:        userID,
		MedicationID:  medicationID,
		ScheduledDate: DateOf(scheduledDate),
		ScheduledTime: scheduledTime,
		Status:        AdherenceStatusPending,
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}

	if err := rec.Validate(); err != nil {
		return nil, err
	}

	return rec, nil
}

// Validate checks if the AdherenceRecord has valid data.
func (r *AdherenceRecord) Validate() error {
	if r.ID == uuid.Nil {
		return ErrAdherenceIDEmpty
	}

	if r.UserID == uuid.Nil {
		return ErrAdherenceUserIDEmpty
	}

	if r.MedicationID == uuid.Nil {
		return ErrAdherenceMedicationIDEmpty
	}

	if r.ScheduledDate.IsZero() {
		return ErrAdherenceDateZero
	}

	switch r.Status {
	case AdherenceStatusPending, AdherenceStatusTaken, AdherenceStatusSkipped, AdherenceStatusMissed:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidStatus, r.Status)
	}

	return nil
}

// Confirm marks the dose as taken at the given instant.
// Only pending records can be confirmed.
func (r *AdherenceRecord) Confirm(takenAt time.Time, notes string) error {
	if r.Status != AdherenceStatusPending {
		return fmt.Errorf("%w: cannot confirm %q record", ErrInvalidStatus, r.Status)
	}
	t := takenAt.UTC()
	r.Status = AdherenceStatusTaken
	r.TakenAt = &t
	r.Notes = notes
	r.UpdatedAt = time.Now().UTC()
	return nil
}

// Skip marks the dose as intentionally skipped.
// Only pending records can be skipped.
func (r *AdherenceRecord) Skip(notes string) error {
	if r.Status != AdherenceStatusPending {
		return fmt.Errorf("%w: cannot skip %q record", ErrInvalidStatus, r.Status)
	}
	r.Status = AdherenceStatusSkipped
	r.Notes = notes
	r.UpdatedAt = time.Now().UTC()
	return nil
}
