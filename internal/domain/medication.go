package domain

import (
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Medication-specific validation errors
var (
	// ErrMedicationIDEmpty is returned when a medication ID is empty or nil.
	ErrMedicationIDEmpty = errors.New("medication ID cannot be empty")

	// ErrMedicationUserIDEmpty is returned when a medication's user ID is empty or nil.
	ErrMedicationUserIDEmpty = errors.New("medication user ID cannot be empty")

	// ErrMedicationNameEmpty is returned when a medication's name is empty.
	ErrMedicationNameEmpty = errors.New("medication name cannot be empty")

	// ErrMedicationDosesInvalid is returned when doses per day is not positive.
	ErrMedicationDosesInvalid = errors.New("doses per day must be at least 1")

	// ErrMedicationTimesEmpty is returned when a medication has no scheduled times.
	ErrMedicationTimesEmpty = errors.New("medication must have at least one scheduled time")

	// ErrMedicationTimesMismatch is returned when the number of scheduled times
	// does not match doses per day for a specific-days schedule.
	ErrMedicationTimesMismatch = errors.New("scheduled times must match doses per day")

	// ErrMedicationDateRange is returned when the end date precedes the start date.
	ErrMedicationDateRange = errors.New("end date cannot precede start date")
)

// Medication represents a medication a user takes on a recurring schedule.
// The schedule fields describe dosing frequency: SpecificDays empty means
// every day; otherwise only the listed weekdays are dosed. ScheduledTimes are
// local wall-clock times in the user's timezone, resolved to UTC instants
// during expansion. StartDate and EndDate are inclusive local calendar dates.
type Medication struct {
	ID             uuid.UUID      `json:"id"`
	UserID         uuid.UUID      `json:"user_id"`
	Name           string         `json:"name"`
	Dosage         string         `json:"dosage,omitempty"`
	DosesPerDay    int            `json:"doses_per_day"`
	SpecificDays   []time.Weekday `json:"specific_days,omitempty"`
	ScheduledTimes []TimeOfDay    `json:"scheduled_times"`
	StartDate      time.Time      `json:"start_date"`
	EndDate        *time.Time     `json:"end_date,omitempty"`
	Active         bool           `json:"active"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// NewMedication creates a new active Medication with the given schedule.
// It generates a new UUID for the medication ID and sets the creation/update
// timestamps. Returns an error if validation fails.
func NewMedication(
	userID uuid.UUID,
	name string,
	dosesPerDay int,
	times []TimeOfDay,
	days []time.Weekday,
	startDate time.Time,
	endDate *time.Time,
) (*Medication, error) {
	// Times are kept sorted so expansion emits doses in ascending
	// (date, time-of-day) order without re-sorting per date.
	sorted := make([]TimeOfDay, len(times))
	copy(sorted, times)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	med := &Medication{
		ID:             uuid.New(),
		UserID:         userID,
		Name:           name,
		DosesPerDay:    dosesPerDay,
		SpecificDays:   days,
		ScheduledTimes: sorted,
		StartDate:      DateOf(startDate),
		Active:         true,
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	}
	if endDate != nil {
		d := DateOf(*endDate)
		med.EndDate = &d
	}

	if err := med.Validate(); err != nil {
		return nil, err
	}

	return med, nil
}

// Validate checks if the Medication has valid data.
// Returns an error if any field fails validation.
func (m *Medication) Validate() error {
	if m.ID == uuid.Nil {
		return ErrMedicationIDEmpty
	}

	if m.UserID == uuid.Nil {
		return ErrMedicationUserIDEmpty
	}

	if m.Name == "" {
		return ErrMedicationNameEmpty
	}

	if m.DosesPerDay < 1 {
		return ErrMedicationDosesInvalid
	}

	if len(m.ScheduledTimes) == 0 {
		return ErrMedicationTimesEmpty
	}

	// For a specific-days schedule, each dosed day gets exactly one dose per
	// scheduled time, so the two counts must agree.
	if len(m.SpecificDays) > 0 && len(m.ScheduledTimes) != m.DosesPerDay {
		return ErrMedicationTimesMismatch
	}

	if m.EndDate != nil && m.EndDate.Before(m.StartDate) {
		return ErrMedicationDateRange
	}

	return nil
}

// DosedOn reports whether the medication is dosed on the given weekday.
// An empty SpecificDays set means a daily schedule.
func (m *Medication) DosedOn(day time.Weekday) bool {
	if len(m.SpecificDays) == 0 {
		return true
	}
	for _, d := range m.SpecificDays {
		if d == day {
			return true
		}
	}
	return false
}
