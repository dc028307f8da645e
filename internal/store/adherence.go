package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/dosewise/dosewise-api/internal/domain"
)

// AdherenceStore defines the interface for adherence record persistence.
//
// The (user, medication, scheduled date, scheduled time) identity key MUST be
// enforced as a unique constraint by implementations: the existence check and
// insert in the materializer are not atomic, and the constraint is the sole
// correctness backstop against overlapping generation runs.
// Version: 1.0
type AdherenceStore interface {
	// Create inserts a new adherence record.
	// Returns ErrDuplicateAdherence if a record with the same identity key
	// already exists. Callers performing idempotent materialization treat
	// that error as "already covered", not as a failure.
	Create(ctx context.Context, rec *domain.AdherenceRecord) error

	// GetByID retrieves an adherence record by its unique ID.
	// Returns ErrAdherenceNotFound if the record does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.AdherenceRecord, error)

	// GetByKey retrieves an adherence record by its identity key.
	// Returns ErrAdherenceNotFound if no record exists for the key.
	GetByKey(
		ctx context.Context,
		userID, medicationID uuid.UUID,
		scheduledDate time.Time,
		scheduledTime domain.TimeOfDay,
	) (*domain.AdherenceRecord, error)

	// Exists reports whether a record with the given identity key exists.
	Exists(
		ctx context.Context,
		userID, medicationID uuid.UUID,
		scheduledDate time.Time,
		scheduledTime domain.TimeOfDay,
	) (bool, error)

	// Update persists status, taken-at and notes changes of an existing record.
	// Returns ErrAdherenceNotFound if the record does not exist.
	Update(ctx context.Context, rec *domain.AdherenceRecord) error

	// ListByUser retrieves a user's adherence records with a scheduled date
	// inside [from, to], ordered by (scheduled date, scheduled time).
	ListByUser(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*domain.AdherenceRecord, error)

	// MarkMissedOlderThan transitions pending records whose scheduled moment
	// is before the cutoff to missed, returning the number of records
	// transitioned. This powers the external missed sweep; reminder records
	// are never touched by it.
	MarkMissedOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
