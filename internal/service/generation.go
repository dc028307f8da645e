package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dosewise/dosewise-api/internal/domain"
	"github.com/dosewise/dosewise-api/internal/domain/schedule"
	"github.com/dosewise/dosewise-api/internal/store"
)

// GenerationConfig holds the window settings for a generation run.
type GenerationConfig struct {
	// WindowDays is how many days ahead of "now" schedules are expanded,
	// inclusive of today.
	WindowDays int

	// HorizonDays is how many days ahead reminders are eagerly materialized.
	// Doses beyond the horizon get adherence records but no reminder yet;
	// a later run picks them up once they enter the horizon.
	HorizonDays int
}

// DefaultGenerationConfig returns a GenerationConfig with reasonable defaults.
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		WindowDays:  7,
		HorizonDays: 2,
	}
}

// GenerationService runs the schedule generation job: it expands every active
// medication's recurring schedule and materializes adherence and reminder
// records from the expansion.
type GenerationService interface {
	// RunGeneration executes one generation run anchored at the given
	// instant. Per-medication configuration errors are collected in the
	// result and do not abort the run; storage errors do. A run aborted
	// mid-way leaves committed records in place and is safe to re-trigger
	// because materialization is idempotent.
	RunGeneration(ctx context.Context, now time.Time) (*GenerationResult, error)
}

// generationService is the default GenerationService implementation.
type generationService struct {
	medicationStore store.MedicationStore
	preferenceStore store.PreferenceStore
	adherence       *AdherenceMaterializer
	reminders       *ReminderMaterializer
	config          GenerationConfig
	logger          *slog.Logger
}

// NewGenerationService creates a new GenerationService with the given
// dependencies. Returns an error if any dependency is nil or the window
// configuration is not positive.
func NewGenerationService(
	medicationStore store.MedicationStore,
	preferenceStore store.PreferenceStore,
	adherence *AdherenceMaterializer,
	reminders *ReminderMaterializer,
	config GenerationConfig,
	logger *slog.Logger,
) (GenerationService, error) {
	if medicationStore == nil {
		return nil, fmt.Errorf("medication store cannot be nil")
	}
	if preferenceStore == nil {
		return nil, fmt.Errorf("preference store cannot be nil")
	}
	if adherence == nil {
		return nil, fmt.Errorf("adherence materializer cannot be nil")
	}
	if reminders == nil {
		return nil, fmt.Errorf("reminder materializer cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	if config.WindowDays < 1 || config.HorizonDays < 0 {
		return nil, fmt.Errorf("invalid generation window configuration: %+v", config)
	}

	return &generationService{
		medicationStore: medicationStore,
		preferenceStore: preferenceStore,
		adherence:       adherence,
		reminders:       reminders,
		config:          config,
		logger:          logger.With(slog.String("component", "generation_service")),
	}, nil
}

// RunGeneration implements GenerationService.RunGeneration
func (s *generationService) RunGeneration(ctx context.Context, now time.Time) (*GenerationResult, error) {
	now = now.UTC()
	result := &GenerationResult{}

	meds, err := s.medicationStore.FindActiveScheduled(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load active medications: %w", err)
	}
	result.MedicationsSeen = len(meds)

	windowStart := now
	windowEnd := now.AddDate(0, 0, s.config.WindowDays-1)

	for _, med := range meds {
		if err := ctx.Err(); err != nil {
			// Cancellation leaves already-committed records as-is; the
			// next run completes the remaining medications.
			return result, err
		}

		adherenceCreated, remindersCreated, err := s.generateForMedication(
			ctx, med, windowStart, windowEnd, now)
		if err != nil {
			var cfgErr *domain.ConfigurationError
			if errors.As(err, &cfgErr) {
				// Configuration problems are scoped to one medication:
				// record them in the result and keep going.
				s.logger.Warn("skipping misconfigured medication",
					"medication_id", cfgErr.MedicationID,
					"kind", cfgErr.Kind,
					"detail", cfgErr.Detail)
				result.Errors = append(result.Errors, MedicationError{
					MedicationID: cfgErr.MedicationID,
					Kind:         cfgErr.Kind,
					Message:      cfgErr.Detail,
				})
				continue
			}
			return result, fmt.Errorf("generation failed for medication %s: %w", med.ID, err)
		}

		result.AdherenceCreated += adherenceCreated
		result.RemindersCreated += remindersCreated
	}

	s.logger.Info("generation run completed",
		"medications_seen", result.MedicationsSeen,
		"adherence_created", result.AdherenceCreated,
		"reminders_created", result.RemindersCreated,
		"medication_errors", len(result.Errors))

	return result, nil
}

// generateForMedication expands one medication and materializes its records.
func (s *generationService) generateForMedication(
	ctx context.Context,
	med *domain.Medication,
	windowStart, windowEnd, now time.Time,
) (adherenceCreated, remindersCreated int, err error) {
	prefs := s.loadPreferences(ctx, med)

	loc, fellBack, err := schedule.ResolveLocation(prefs.Timezone, med.ID)
	if err != nil {
		return 0, 0, err
	}
	if fellBack {
		// The fallback silently changes which UTC instants doses land on,
		// so it is logged as an explicit decision rather than defaulted.
		s.logger.Info("user has no timezone configured, expanding in UTC",
			"user_id", med.UserID, "medication_id", med.ID)
	}

	doses, err := schedule.Expand(med, windowStart, windowEnd, loc)
	if err != nil {
		return 0, 0, err
	}
	if len(doses) == 0 {
		return 0, 0, nil
	}

	// Both materializers consume the same expansion; adherence goes first so
	// reminder records can resolve their weak adherence back-reference.
	adherenceCreated, err = s.adherence.Materialize(ctx, doses)
	if err != nil {
		return adherenceCreated, 0, err
	}

	remindersCreated, err = s.reminders.Materialize(
		ctx, med, doses, prefs, now, s.config.HorizonDays)
	if err != nil {
		return adherenceCreated, remindersCreated, err
	}

	return adherenceCreated, remindersCreated, nil
}

// loadPreferences fetches the user's notification preferences, falling back
// to the defaults when none are stored or the lookup fails.
func (s *generationService) loadPreferences(
	ctx context.Context,
	med *domain.Medication,
) domain.NotificationPreferences {
	prefs, err := s.preferenceStore.GetByUserID(ctx, med.UserID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("failed to load notification preferences, using defaults",
				"user_id", med.UserID, "error", err)
		}
		return domain.DefaultNotificationPreferences(med.UserID)
	}
	return *prefs
}
