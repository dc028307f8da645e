package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dosewise/dosewise-api/internal/domain"
	"github.com/dosewise/dosewise-api/internal/store"
)

func newAdherenceFixture(t *testing.T, grace time.Duration) (AdherenceService, *fakeAdherenceStore) {
	t.Helper()
	st := newFakeAdherenceStore()
	svc, err := NewAdherenceService(st, grace, testLogger())
	require.NoError(t, err)
	return svc, st
}

func pendingRecord(t *testing.T, st *fakeAdherenceStore, date time.Time, tod domain.TimeOfDay) *domain.AdherenceRecord {
	t.Helper()
	rec, err := domain.NewAdherenceRecord(uuid.New(), uuid.New(), date, tod)
	require.NoError(t, err)
	require.NoError(t, st.Create(context.Background(), rec))
	return rec
}

func TestAdherenceService_Confirm(t *testing.T) {
	t.Parallel()

	svc, st := newAdherenceFixture(t, 24*time.Hour)
	date := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	rec := pendingRecord(t, st, date, domain.MustTimeOfDay("08:00"))

	takenAt := date.Add(8*time.Hour + 12*time.Minute)
	updated, err := svc.Confirm(context.Background(), rec.ID, takenAt, "with breakfast")
	require.NoError(t, err)

	assert.Equal(t, domain.AdherenceStatusTaken, updated.Status)
	require.NotNil(t, updated.TakenAt)
	assert.True(t, updated.TakenAt.Equal(takenAt))
	assert.Equal(t, "with breakfast", updated.Notes)

	stored, err := st.GetByID(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AdherenceStatusTaken, stored.Status)
}

func TestAdherenceService_ConfirmNonPending(t *testing.T) {
	t.Parallel()

	svc, st := newAdherenceFixture(t, 24*time.Hour)
	date := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	rec := pendingRecord(t, st, date, domain.MustTimeOfDay("08:00"))

	_, err := svc.Skip(context.Background(), rec.ID, "")
	require.NoError(t, err)

	// A skipped record cannot be confirmed afterwards.
	_, err = svc.Confirm(context.Background(), rec.ID, time.Now(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestAdherenceService_ConfirmNotFound(t *testing.T) {
	t.Parallel()

	svc, _ := newAdherenceFixture(t, 24*time.Hour)
	_, err := svc.Confirm(context.Background(), uuid.New(), time.Now(), "")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAdherenceService_Skip(t *testing.T) {
	t.Parallel()

	svc, st := newAdherenceFixture(t, 24*time.Hour)
	date := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	rec := pendingRecord(t, st, date, domain.MustTimeOfDay("20:00"))

	updated, err := svc.Skip(context.Background(), rec.ID, "felt nauseous")
	require.NoError(t, err)
	assert.Equal(t, domain.AdherenceStatusSkipped, updated.Status)
	assert.Nil(t, updated.TakenAt)
	assert.Equal(t, "felt nauseous", updated.Notes)
}

func TestAdherenceService_List(t *testing.T) {
	t.Parallel()

	svc, st := newAdherenceFixture(t, 24*time.Hour)
	userID := uuid.New()
	medID := uuid.New()

	for day := 1; day <= 3; day++ {
		rec, err := domain.NewAdherenceRecord(
			userID, medID,
			time.Date(2024, 6, day, 0, 0, 0, 0, time.UTC),
			domain.MustTimeOfDay("08:00"))
		require.NoError(t, err)
		require.NoError(t, st.Create(context.Background(), rec))
	}

	recs, err := svc.List(context.Background(),
		userID,
		time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.True(t, recs[0].ScheduledDate.Before(recs[1].ScheduledDate))
}

func TestAdherenceService_SweepMissed(t *testing.T) {
	t.Parallel()

	grace := 12 * time.Hour
	svc, st := newAdherenceFixture(t, grace)

	stale := pendingRecord(t, st,
		time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), domain.MustTimeOfDay("08:00"))
	recent := pendingRecord(t, st,
		time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC), domain.MustTimeOfDay("08:00"))
	taken := pendingRecord(t, st,
		time.Date(2024, 5, 30, 0, 0, 0, 0, time.UTC), domain.MustTimeOfDay("08:00"))
	_, err := svc.Confirm(context.Background(), taken.ID, time.Now(), "")
	require.NoError(t, err)

	// June 1's day plus the grace period has fully elapsed; June 3's has not.
	now := time.Date(2024, 6, 3, 6, 0, 0, 0, time.UTC)
	swept, err := svc.SweepMissed(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), swept)

	staleStored, err := st.GetByID(context.Background(), stale.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AdherenceStatusMissed, staleStored.Status)

	recentStored, err := st.GetByID(context.Background(), recent.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AdherenceStatusPending, recentStored.Status)

	// Confirmed records are never swept.
	takenStored, err := st.GetByID(context.Background(), taken.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AdherenceStatusTaken, takenStored.Status)
}
