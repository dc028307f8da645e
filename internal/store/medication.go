package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/dosewise/dosewise-api/internal/domain"
)

// MedicationStore defines the interface for medication data persistence.
// Version: 1.0
type MedicationStore interface {
	// Create saves a new medication to the store.
	// Returns validation errors if the medication data is invalid.
	Create(ctx context.Context, med *domain.Medication) error

	// GetByID retrieves a medication by its unique ID.
	// Returns ErrMedicationNotFound if the medication does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Medication, error)

	// FindActiveScheduled retrieves all active medications that carry a
	// recurring schedule (daily or specific-day frequency). This is the
	// query the generation job expands; medications without this shape are
	// never expanded.
	FindActiveScheduled(ctx context.Context) ([]*domain.Medication, error)

	// Update modifies an existing medication.
	// Returns ErrMedicationNotFound if the medication does not exist.
	Update(ctx context.Context, med *domain.Medication) error
}
