package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dosewise/dosewise-api/internal/domain"
	"github.com/dosewise/dosewise-api/internal/domain/schedule"
	"github.com/dosewise/dosewise-api/internal/store"
)

// AdherenceMaterializer turns expanded doses into pending adherence records,
// deduplicating against existing storage state by the record identity key.
// The existence check and insert are deliberately not one transaction: the
// unique index on the identity key is the backstop when two generation runs
// overlap, and a duplicate insert is treated as "already covered".
type AdherenceMaterializer struct {
	adherenceStore store.AdherenceStore
	logger         *slog.Logger
}

// NewAdherenceMaterializer creates a new AdherenceMaterializer.
func NewAdherenceMaterializer(
	adherenceStore store.AdherenceStore,
	logger *slog.Logger,
) (*AdherenceMaterializer, error) {
	if adherenceStore == nil {
		return nil, fmt.Errorf("adherence store cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	return &AdherenceMaterializer{
		adherenceStore: adherenceStore,
		logger:         logger.With(slog.String("component", "adherence_materializer")),
	}, nil
}

// Materialize creates one pending adherence record per expanded dose that is
// not already covered, preserving dose order, and returns the number created.
// Doses whose identity key already exists are skipped without error, which
// makes the operation idempotent. Storage errors other than duplicates abort
// the call; records created before the error stay committed and a retried run
// completes the remainder.
func (m *AdherenceMaterializer) Materialize(
	ctx context.Context,
	doses []schedule.ExpandedDose,
) (int, error) {
	created := 0

	for _, dose := range doses {
		exists, err := m.adherenceStore.Exists(
			ctx, dose.UserID, dose.MedicationID, dose.ScheduledDate, dose.ScheduledTime)
		if err != nil {
			return created, fmt.Errorf("failed to check adherence existence: %w", err)
		}
		if exists {
			continue
		}

		rec, err := domain.NewAdherenceRecord(
			dose.UserID, dose.MedicationID, dose.ScheduledDate, dose.ScheduledTime)
		if err != nil {
			return created, fmt.Errorf("failed to build adherence record: %w", err)
		}

		err = m.adherenceStore.Create(ctx, rec)
		if errors.Is(err, store.ErrDuplicate) {
			// A concurrent run inserted the same identity key between the
			// existence check and our insert. The dose is covered.
			m.logger.Debug("adherence record created by concurrent run",
				"medication_id", dose.MedicationID,
				"scheduled_date", dose.ScheduledDate.Format("2006-01-02"),
				"scheduled_time", dose.ScheduledTime.String())
			continue
		}
		if err != nil {
			return created, fmt.Errorf("failed to create adherence record: %w", err)
		}

		created++
	}

	return created, nil
}
