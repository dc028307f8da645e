package schedule

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dosewise/dosewise-api/internal/domain"
)

func testMedication(t *testing.T, times []string, days []time.Weekday, start string, end *string) *domain.Medication {
	t.Helper()

	tods := make([]domain.TimeOfDay, 0, len(times))
	for _, s := range times {
		tods = append(tods, domain.MustTimeOfDay(s))
	}

	startDate, err := time.Parse("2006-01-02", start)
	require.NoError(t, err)

	var endDate *time.Time
	if end != nil {
		e, err := time.Parse("2006-01-02", *end)
		require.NoError(t, err)
		endDate = &e
	}

	med, err := domain.NewMedication(
		uuid.New(), "Lisinopril", len(tods), tods, days, startDate, endDate,
	)
	require.NoError(t, err)
	return med
}

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}

func TestExpand_DailyTwoDoses(t *testing.T) {
	t.Parallel()

	// The user is in Sao Paulo (UTC-3, no DST since 2019).
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	med := testMedication(t, []string{"08:00", "20:00"}, nil, "2024-01-01", nil)

	doses, err := Expand(med, date(t, "2024-01-01"), date(t, "2024-01-02"), loc)
	require.NoError(t, err)
	require.Len(t, doses, 4)

	// Ascending (date, time-of-day) order, local 08:00 = 11:00 UTC.
	assert.Equal(t, time.Date(2024, 1, 1, 11, 0, 0, 0, time.UTC), doses[0].ScheduledAt)
	assert.Equal(t, time.Date(2024, 1, 1, 23, 0, 0, 0, time.UTC), doses[1].ScheduledAt)
	assert.Equal(t, time.Date(2024, 1, 2, 11, 0, 0, 0, time.UTC), doses[2].ScheduledAt)
	assert.Equal(t, time.Date(2024, 1, 2, 23, 0, 0, 0, time.UTC), doses[3].ScheduledAt)

	for _, d := range doses {
		assert.Equal(t, med.ID, d.MedicationID)
		assert.Equal(t, med.UserID, d.UserID)
	}
}

func TestExpand_DSTTransition(t *testing.T) {
	t.Parallel()

	// US DST starts 2024-03-10: New York jumps from UTC-5 to UTC-4.
	// A dose at local 09:00 must shift by exactly the one-hour offset
	// change, never by a full day.
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	med := testMedication(t, []string{"09:00"}, nil, "2024-03-09", nil)

	doses, err := Expand(med, date(t, "2024-03-09"), date(t, "2024-03-11"), loc)
	require.NoError(t, err)
	require.Len(t, doses, 3)

	assert.Equal(t, time.Date(2024, 3, 9, 14, 0, 0, 0, time.UTC), doses[0].ScheduledAt)
	assert.Equal(t, time.Date(2024, 3, 10, 13, 0, 0, 0, time.UTC), doses[1].ScheduledAt)
	assert.Equal(t, time.Date(2024, 3, 11, 13, 0, 0, 0, time.UTC), doses[2].ScheduledAt)
}

func TestExpand_SpecificDays(t *testing.T) {
	t.Parallel()

	med := testMedication(t,
		[]string{"10:00"},
		[]time.Weekday{time.Monday, time.Wednesday, time.Friday},
		"2024-01-01", nil)

	// 2024-01-01 is a Monday; a 7-day window covers exactly one of each
	// weekday, so Mon/Wed/Fri yields 3 doses.
	doses, err := Expand(med, date(t, "2024-01-01"), date(t, "2024-01-07"), time.UTC)
	require.NoError(t, err)
	require.Len(t, doses, 3)

	assert.Equal(t, time.Monday, doses[0].ScheduledDate.Weekday())
	assert.Equal(t, time.Wednesday, doses[1].ScheduledDate.Weekday())
	assert.Equal(t, time.Friday, doses[2].ScheduledDate.Weekday())
}

func TestExpand_WindowClampedByMedicationDates(t *testing.T) {
	t.Parallel()

	end := "2024-01-04"
	med := testMedication(t, []string{"08:00"}, nil, "2024-01-03", &end)

	// Window is wider than the medication's own date range on both sides.
	doses, err := Expand(med, date(t, "2024-01-01"), date(t, "2024-01-10"), time.UTC)
	require.NoError(t, err)
	require.Len(t, doses, 2)
	assert.Equal(t, 3, doses[0].ScheduledDate.Day())
	assert.Equal(t, 4, doses[1].ScheduledDate.Day())
}

func TestExpand_InactiveMedication(t *testing.T) {
	t.Parallel()

	med := testMedication(t, []string{"08:00"}, nil, "2024-01-01", nil)
	med.Active = false

	doses, err := Expand(med, date(t, "2024-01-01"), date(t, "2024-01-07"), time.UTC)
	require.NoError(t, err)
	assert.Empty(t, doses)
}

func TestExpand_ScheduleMismatch(t *testing.T) {
	t.Parallel()

	med := testMedication(t, []string{"08:00", "20:00"},
		[]time.Weekday{time.Monday}, "2024-01-01", nil)
	// Corrupt the schedule shape after construction: two times, one dose.
	med.DosesPerDay = 1

	_, err := Expand(med, date(t, "2024-01-01"), date(t, "2024-01-07"), time.UTC)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfiguration)

	var cfgErr *domain.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, domain.ConfigErrScheduleMismatch, cfgErr.Kind)
	assert.Equal(t, med.ID, cfgErr.MedicationID)
}

func TestExpand_Deterministic(t *testing.T) {
	t.Parallel()

	loc, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	med := testMedication(t, []string{"07:30", "22:15"}, nil, "2024-03-25", nil)

	first, err := Expand(med, date(t, "2024-03-25"), date(t, "2024-04-05"), loc)
	require.NoError(t, err)
	second, err := Expand(med, date(t, "2024-03-25"), date(t, "2024-04-05"), loc)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestResolveLocation(t *testing.T) {
	t.Parallel()

	medID := uuid.New()

	t.Run("empty timezone falls back to UTC", func(t *testing.T) {
		t.Parallel()

		loc, fellBack, err := ResolveLocation("", medID)
		require.NoError(t, err)
		assert.True(t, fellBack)
		assert.Equal(t, time.UTC, loc)
	})

	t.Run("valid timezone resolves", func(t *testing.T) {
		t.Parallel()

		loc, fellBack, err := ResolveLocation("America/Sao_Paulo", medID)
		require.NoError(t, err)
		assert.False(t, fellBack)
		assert.Equal(t, "America/Sao_Paulo", loc.String())
	})

	t.Run("invalid timezone is a configuration error", func(t *testing.T) {
		t.Parallel()

		_, _, err := ResolveLocation("Mars/Olympus_Mons", medID)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrConfiguration)

		var cfgErr *domain.ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, domain.ConfigErrInvalidTimezone, cfgErr.Kind)
	})
}
