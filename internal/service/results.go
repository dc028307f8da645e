package service

import (
	"github.com/google/uuid"
)

// GenerationResult aggregates the outcome of one generation run. It is the
// shape returned to both the scheduled trigger and the manual trigger
// endpoint, so the two entry points stay interchangeable.
type GenerationResult struct {
	// MedicationsSeen is the number of active medications considered.
	MedicationsSeen int `json:"medications_seen"`

	// AdherenceCreated is the number of adherence records newly created.
	// Doses already covered by an earlier run do not count.
	AdherenceCreated int `json:"adherence_created"`

	// RemindersCreated is the number of reminder records newly created.
	RemindersCreated int `json:"reminders_created"`

	// Errors lists the medications whose expansion failed with a
	// configuration error. These failures are per-medication: the run
	// continues with the remaining medications.
	Errors []MedicationError `json:"errors,omitempty"`
}

// Created is the total number of records the run created.
func (r *GenerationResult) Created() int {
	return r.AdherenceCreated + r.RemindersCreated
}

// MedicationError reports a configuration failure of a single medication
// inside an otherwise successful generation run. Kind is one of the
// domain.ConfigErr* constants so operators can correlate failures to records.
type MedicationError struct {
	MedicationID uuid.UUID `json:"medication_id"`
	Kind         string    `json:"kind"`
	Message      string    `json:"message"`
}
