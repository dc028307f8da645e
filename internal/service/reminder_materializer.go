package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/dosewise/dosewise-api/internal/domain"
	"github.com/dosewise/dosewise-api/internal/domain/schedule"
	"github.com/dosewise/dosewise-api/internal/store"
)

// ReminderMaterializer turns expanded doses into pending reminder records for
// the dispatch horizon, deduplicating against existing storage state by the
// (user, medication, scheduled instant) identity key. New records are
// bulk-inserted in one storage call to bound round-trips.
type ReminderMaterializer struct {
	reminderStore  store.ReminderStore
	adherenceStore store.AdherenceStore
	logger         *slog.Logger
}

// NewReminderMaterializer creates a new ReminderMaterializer.
func NewReminderMaterializer(
	reminderStore store.ReminderStore,
	adherenceStore store.AdherenceStore,
	logger *slog.Logger,
) (*ReminderMaterializer, error) {
	if reminderStore == nil {
		return nil, fmt.Errorf("reminder store cannot be nil")
	}
	if adherenceStore == nil {
		return nil, fmt.Errorf("adherence store cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	return &ReminderMaterializer{
		reminderStore:  reminderStore,
		adherenceStore: adherenceStore,
		logger:         logger.With(slog.String("component", "reminder_materializer")),
	}, nil
}

// Materialize creates pending reminder records for the doses falling inside
// [now, now + horizonDays] that are not already covered, and returns the
// number created. Channels are seeded from the user's notification
// preferences. Each record carries a weak back-reference to the adherence
// record sharing its dose when one exists.
//
// All new records go to storage in a single bulk insert. If a concurrent run
// claimed one of the identity keys between the existence checks and the
// insert, the materializer falls back to inserting records one at a time,
// skipping only the duplicated keys; any other insert failure is surfaced to
// the caller, never swallowed.
func (m *ReminderMaterializer) Materialize(
	ctx context.Context,
	med *domain.Medication,
	doses []schedule.ExpandedDose,
	prefs domain.NotificationPreferences,
	now time.Time,
	horizonDays int,
) (int, error) {
	horizonEnd := now.AddDate(0, 0, horizonDays)

	var recs []*domain.ReminderRecord
	for _, dose := range doses {
		if dose.ScheduledAt.Before(now) || dose.ScheduledAt.After(horizonEnd) {
			continue
		}

		exists, err := m.reminderStore.Exists(
			ctx, dose.UserID, dose.MedicationID, dose.ScheduledAt)
		if err != nil {
			return 0, fmt.Errorf("failed to check reminder existence: %w", err)
		}
		if exists {
			continue
		}

		rec, err := domain.NewReminderRecord(
			dose.UserID, dose.MedicationID, dose.ScheduledAt, prefs)
		if err != nil {
			return 0, fmt.Errorf("failed to build reminder record: %w", err)
		}
		rec.AdherenceID = m.resolveAdherenceID(ctx, dose)

		recs = append(recs, rec)
	}

	if len(recs) == 0 {
		return 0, nil
	}

	err := m.reminderStore.CreateMultiple(ctx, recs)
	if errors.Is(err, store.ErrDuplicate) {
		m.logger.Info("bulk reminder insert hit concurrent duplicate, retrying per record",
			"medication_id", med.ID, "count", len(recs))
		return m.createIndividually(ctx, recs)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to bulk-insert reminders: %w", err)
	}

	return len(recs), nil
}

// createIndividually is the duplicate-conflict fallback path: it inserts the
// prepared records one at a time so a single identity key claimed by a
// concurrent run does not prevent the remaining records from materializing.
func (m *ReminderMaterializer) createIndividually(
	ctx context.Context,
	recs []*domain.ReminderRecord,
) (int, error) {
	created := 0
	for _, rec := range recs {
		err := m.reminderStore.CreateMultiple(ctx, []*domain.ReminderRecord{rec})
		if errors.Is(err, store.ErrDuplicate) {
			continue
		}
		if err != nil {
			return created, fmt.Errorf("failed to insert reminder: %w", err)
		}
		created++
	}
	return created, nil
}

// resolveAdherenceID looks up the adherence record covering the same dose.
// The reference is weak: a missing record just leaves the field unset, and
// lookup errors are logged rather than failing materialization.
func (m *ReminderMaterializer) resolveAdherenceID(
	ctx context.Context,
	dose schedule.ExpandedDose,
) *uuid.UUID {
	adherence, err := m.adherenceStore.GetByKey(
		ctx, dose.UserID, dose.MedicationID, dose.ScheduledDate, dose.ScheduledTime)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			m.logger.Warn("failed to resolve adherence back-reference",
				"medication_id", dose.MedicationID, "error", err)
		}
		return nil
	}
	id := adherence.ID
	return &id
}
