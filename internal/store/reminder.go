package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/dosewise/dosewise-api/internal/domain"
)

// ReminderStore defines the interface for reminder record persistence.
//
// The (user, medication, scheduled instant) identity key MUST be enforced as
// a unique constraint by implementations, for the same reason as the
// adherence identity key: it is the backstop against concurrent runs.
// Version: 1.0
type ReminderStore interface {
	// CreateMultiple bulk-inserts new reminder records in one storage call.
	// A unique-key conflict on any record fails the whole call with
	// ErrDuplicateReminder; partial failures are surfaced, never swallowed.
	CreateMultiple(ctx context.Context, recs []*domain.ReminderRecord) error

	// GetByID retrieves a reminder by its unique ID.
	// Returns ErrReminderNotFound if the reminder does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ReminderRecord, error)

	// Exists reports whether a reminder with the given identity key exists.
	Exists(ctx context.Context, userID, medicationID uuid.UUID, scheduledAt time.Time) (bool, error)

	// ListDue retrieves pending reminders whose scheduled instant is at or
	// before now, oldest first, up to limit (0 = no limit). Sent and failed
	// reminders are never returned.
	ListDue(ctx context.Context, now time.Time, limit int) ([]*domain.ReminderRecord, error)

	// Update persists status, channel state and retry bookkeeping changes.
	// Returns ErrReminderNotFound if the reminder does not exist.
	Update(ctx context.Context, rec *domain.ReminderRecord) error
}
