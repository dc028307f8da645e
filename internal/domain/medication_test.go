package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewMedication(t *testing.T) {
	t.Parallel() // Enable parallel execution

	userID := uuid.New()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	times := []TimeOfDay{MustTimeOfDay("20:00"), MustTimeOfDay("08:00")}

	med, err := NewMedication(userID, "Metformin", 2, times, nil, start, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if med.ID == uuid.Nil {
		t.Error("Expected non-nil UUID, got nil UUID")
	}

	if med.UserID != userID {
		t.Errorf("Expected user ID %s, got %s", userID, med.UserID)
	}

	if !med.Active {
		t.Error("Expected new medication to be active")
	}

	// Scheduled times are kept sorted ascending.
	if med.ScheduledTimes[0].String() != "08:00" || med.ScheduledTimes[1].String() != "20:00" {
		t.Errorf("Expected sorted times, got %v", med.ScheduledTimes)
	}

	// Test invalid userID
	_, err = NewMedication(uuid.Nil, "Metformin", 2, times, nil, start, nil)
	if err != ErrMedicationUserIDEmpty {
		t.Errorf("Expected error %v, got %v", ErrMedicationUserIDEmpty, err)
	}

	// Test empty name
	_, err = NewMedication(userID, "", 2, times, nil, start, nil)
	if err != ErrMedicationNameEmpty {
		t.Errorf("Expected error %v, got %v", ErrMedicationNameEmpty, err)
	}

	// Test non-positive doses per day
	_, err = NewMedication(userID, "Metformin", 0, times, nil, start, nil)
	if err != ErrMedicationDosesInvalid {
		t.Errorf("Expected error %v, got %v", ErrMedicationDosesInvalid, err)
	}

	// Test times/doses mismatch with specific days set
	_, err = NewMedication(userID, "Metformin", 1, times,
		[]time.Weekday{time.Monday}, start, nil)
	if err != ErrMedicationTimesMismatch {
		t.Errorf("Expected error %v, got %v", ErrMedicationTimesMismatch, err)
	}

	// Test end date before start date
	end := start.AddDate(0, 0, -1)
	_, err = NewMedication(userID, "Metformin", 2, times, nil, start, &end)
	if err != ErrMedicationDateRange {
		t.Errorf("Expected error %v, got %v", ErrMedicationDateRange, err)
	}
}

func TestMedicationDosedOn(t *testing.T) {
	t.Parallel()

	daily := Medication{}
	for d := time.Sunday; d <= time.Saturday; d++ {
		if !daily.DosedOn(d) {
			t.Errorf("Expected daily medication to be dosed on %v", d)
		}
	}

	mwf := Medication{SpecificDays: []time.Weekday{time.Monday, time.Wednesday, time.Friday}}
	if !mwf.DosedOn(time.Monday) {
		t.Error("Expected Mon/Wed/Fri medication to be dosed on Monday")
	}
	if mwf.DosedOn(time.Tuesday) {
		t.Error("Expected Mon/Wed/Fri medication not to be dosed on Tuesday")
	}
}

func TestParseTimeOfDay(t *testing.T) {
	t.Parallel()

	tod, err := ParseTimeOfDay("08:30")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if tod.Hour != 8 || tod.Minute != 30 {
		t.Errorf("Expected 08:30, got %v", tod)
	}
	if tod.Minutes() != 510 {
		t.Errorf("Expected 510 minutes, got %d", tod.Minutes())
	}

	for _, bad := range []string{
		"25:00", "12:75", "noon", "",
		"08:00junk", "8:00", "8:5:30", "-8:00", "08-00", "0a:00",
	} {
		if _, err := ParseTimeOfDay(bad); err == nil {
			t.Errorf("Expected error for %q, got nil", bad)
		}
	}
}
