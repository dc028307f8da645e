// Package schedule implements the pure schedule-expansion algorithm: it turns
// a medication's recurring dosing frequency into concrete per-day dose
// instants in the user's timezone. The package has no side effects and no
// clock access; callers supply the window bounds explicitly, which keeps
// expansion deterministic and safely re-runnable over overlapping windows.
package schedule

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/dosewise/dosewise-api/internal/domain"
)

// ExpandedDose is one concrete scheduled dose produced by expansion.
// ScheduledDate and ScheduledTime identify the dose on the user's local
// calendar; ScheduledAt is the same moment as a UTC instant, derived with the
// timezone offset in effect on that date so DST transitions shift the instant
// by exactly the offset change and never by a whole day.
type ExpandedDose struct {
	UserID        uuid.UUID
	MedicationID  uuid.UUID
	ScheduledDate time.Time
	ScheduledTime domain.TimeOfDay
	ScheduledAt   time.Time
}

// ResolveLocation resolves a user's IANA timezone identifier to a location.
// An empty identifier means the user never configured one: the UTC fallback
// is returned with fellBack=true so the caller can log the decision. A
// non-empty identifier that fails to load is a configuration error for the
// medication being expanded.
func ResolveLocation(tz string, medicationID uuid.UUID) (loc *time.Location, fellBack bool, err error) {
	if tz == "" {
		return time.UTC, true, nil
	}

	loc, lerr := time.LoadLocation(tz)
	if lerr != nil {
		return nil, false, domain.NewConfigurationError(
			domain.ConfigErrInvalidTimezone,
			medicationID,
			fmt.Sprintf("cannot resolve timezone %q: %v", tz, lerr),
		)
	}
	return loc, false, nil
}

// Expand produces the medication's scheduled doses for every local calendar
// date d with windowStart <= d <= windowEnd, d >= StartDate and, when an end
// date is set, d <= EndDate. For a specific-days schedule only dates whose
// weekday (in loc) is listed are included; an empty day set means daily.
// Each included date yields one dose per scheduled time, in ascending
// (date, time-of-day) order.
//
// Inactive medications expand to nothing. A malformed schedule (no times, or
// a times/doses-per-day mismatch on a specific-days schedule) returns a
// ConfigurationError carrying the medication ID, so a generation run can skip
// this medication and continue with the rest.
func Expand(
	med *domain.Medication,
	windowStart, windowEnd time.Time,
	loc *time.Location,
) ([]ExpandedDose, error) {
	if !med.Active {
		return nil, nil
	}

	if len(med.ScheduledTimes) == 0 {
		return nil, domain.NewConfigurationError(
			domain.ConfigErrNoScheduledTimes,
			med.ID,
			"medication has no scheduled times",
		)
	}

	if len(med.SpecificDays) > 0 && len(med.ScheduledTimes) != med.DosesPerDay {
		return nil, domain.NewConfigurationError(
			domain.ConfigErrScheduleMismatch,
			med.ID,
			fmt.Sprintf("%d scheduled times for %d doses per day",
				len(med.ScheduledTimes), med.DosesPerDay),
		)
	}

	start := localDate(windowStart, loc)
	if s := localDate(med.StartDate, loc); s.After(start) {
		start = s
	}
	end := localDate(windowEnd, loc)
	if med.EndDate != nil {
		if e := localDate(*med.EndDate, loc); e.Before(end) {
			end = e
		}
	}

	var doses []ExpandedDose
	// AddDate walks calendar days; adding 24h instead would drift on the
	// 23h/25h days around DST transitions.
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if !med.DosedOn(d.Weekday()) {
			continue
		}
		for _, tod := range med.ScheduledTimes {
			doses = append(doses, ExpandedDose{
				UserID:        med.UserID,
				MedicationID:  med.ID,
				ScheduledDate: d,
				ScheduledTime: tod,
				ScheduledAt:   tod.At(d, loc).UTC(),
			})
		}
	}

	return doses, nil
}

// localDate rebuilds t's calendar date at midnight in loc. Only the year,
// month and day of t are meaningful for windowing; the original location of
// t is deliberately ignored.
func localDate(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
