package domain

import (
	"fmt"
	"time"
)

// TimeOfDay is a wall-clock time without a date or timezone, used for
// medication dosing times ("08:00", "20:30"). It is resolved to a concrete
// instant only during schedule expansion, when the user's timezone and the
// calendar date are known.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses a "HH:MM" string into a TimeOfDay. The form is
// strict: exactly two digits, a colon, two digits, nothing else.
// Returns ErrInvalidTimeOfDay if the string is malformed or out of range.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	if len(s) != 5 || s[2] != ':' {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}
	for _, i := range []int{0, 1, 3, 4} {
		if s[i] < '0' || s[i] > '9' {
			return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
		}
	}
	h := int(s[0]-'0')*10 + int(s[1]-'0')
	m := int(s[3]-'0')*10 + int(s[4]-'0')
	if h > 23 || m > 59 {
		return TimeOfDay{}, fmt.Errorf("%w: %q out of range", ErrInvalidTimeOfDay, s)
	}
	return TimeOfDay{Hour: h, Minute: m}, nil
}

// MustTimeOfDay is a ParseTimeOfDay variant that panics on malformed input.
// Intended for tests and compile-time-known constants only.
func MustTimeOfDay(s string) TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		// ALLOW-PANIC: constructor for static values
		panic(err)
	}
	return t
}

// String renders the time as "HH:MM".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Minutes returns the number of minutes since midnight, used for ordering.
func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

// Before reports whether t is earlier in the day than other.
func (t TimeOfDay) Before(other TimeOfDay) bool {
	return t.Minutes() < other.Minutes()
}

// MarshalJSON renders the time as the "HH:MM" string form.
func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

// UnmarshalJSON parses the "HH:MM" string form.
func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("%w: %s", ErrInvalidTimeOfDay, s)
	}
	parsed, err := ParseTimeOfDay(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// At anchors the time of day to the given calendar date in the given
// location. The resulting instant uses the timezone offset in effect on that
// specific date, which keeps expansion correct across DST transitions.
func (t TimeOfDay) At(date time.Time, loc *time.Location) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour, t.Minute, 0, 0, loc)
}

// DateOf normalizes an instant to its calendar date (midnight, same location).
// Used wherever a date participates in a record identity key.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
