package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/dosewise/dosewise-api/internal/domain"
	"github.com/dosewise/dosewise-api/internal/store"
)

// AdherenceService provides the user-facing adherence operations: confirming
// or skipping doses, listing history, and the missed sweep. These flows only
// ever mutate adherence records; reminder records belong to the dispatcher.
type AdherenceService interface {
	// Confirm marks a pending adherence record as taken at the given instant.
	// Returns store.ErrAdherenceNotFound if the record does not exist and
	// domain.ErrInvalidStatus if it is not pending.
	Confirm(ctx context.Context, id uuid.UUID, takenAt time.Time, notes string) (*domain.AdherenceRecord, error)

	// Skip marks a pending adherence record as intentionally skipped.
	Skip(ctx context.Context, id uuid.UUID, notes string) (*domain.AdherenceRecord, error)

	// List retrieves a user's adherence records scheduled inside [from, to].
	List(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*domain.AdherenceRecord, error)

	// SweepMissed transitions pending records older than the grace period
	// (measured back from now) to missed, returning how many changed.
	SweepMissed(ctx context.Context, now time.Time) (int64, error)
}

// adherenceService is the default AdherenceService implementation.
type adherenceService struct {
	adherenceStore store.AdherenceStore
	gracePeriod    time.Duration
	logger         *slog.Logger
}

// NewAdherenceService creates a new AdherenceService. gracePeriod is how long
// after its scheduled day a pending dose may stay pending before the sweep
// marks it missed.
func NewAdherenceService(
	adherenceStore store.AdherenceStore,
	gracePeriod time.Duration,
	logger *slog.Logger,
) (AdherenceService, error) {
	if adherenceStore == nil {
		return nil, fmt.Errorf("adherence store cannot be nil")
	}
	if gracePeriod < 0 {
		return nil, fmt.Errorf("grace period cannot be negative")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	return &adherenceService{
		adherenceStore: adherenceStore,
		gracePeriod:    gracePeriod,
		logger:         logger.With(slog.String("component", "adherence_service")),
	}, nil
}

// Confirm implements AdherenceService.Confirm
func (s *adherenceService) Confirm(
	ctx context.Context,
	id uuid.UUID,
	takenAt time.Time,
	notes string,
) (*domain.AdherenceRecord, error) {
	rec, err := s.adherenceStore.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := rec.Confirm(takenAt, notes); err != nil {
		return nil, err
	}

	if err := s.adherenceStore.Update(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to persist confirmation: %w", err)
	}

	return rec, nil
}

// Skip implements AdherenceService.Skip
func (s *adherenceService) Skip(
	ctx context.Context,
	id uuid.UUID,
	notes string,
) (*domain.AdherenceRecord, error) {
	rec, err := s.adherenceStore.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := rec.Skip(notes); err != nil {
		return nil, err
	}

	if err := s.adherenceStore.Update(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to persist skip: %w", err)
	}

	return rec, nil
}

// List implements AdherenceService.List
func (s *adherenceService) List(
	ctx context.Context,
	userID uuid.UUID,
	from, to time.Time,
) ([]*domain.AdherenceRecord, error) {
	return s.adherenceStore.ListByUser(ctx, userID, from, to)
}

// SweepMissed implements AdherenceService.SweepMissed
func (s *adherenceService) SweepMissed(ctx context.Context, now time.Time) (int64, error) {
	cutoff := now.UTC().Add(-s.gracePeriod)

	swept, err := s.adherenceStore.MarkMissedOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("missed sweep failed: %w", err)
	}

	if swept > 0 {
		s.logger.Info("missed sweep completed", "records_swept", swept)
	}

	return swept, nil
}
