// Package domain defines the core business entities and errors.
package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrConfiguration is returned when a medication's schedule configuration
	// cannot be expanded (invalid timezone, malformed scheduled times).
	// It aborts generation for the offending medication only; wrap it with
	// a ConfigurationError to carry the offending identity key.
	ErrConfiguration = errors.New("invalid schedule configuration")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidStatus is returned when a record status transition is not valid.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrInvalidTimeOfDay is returned when a time-of-day string is malformed.
	ErrInvalidTimeOfDay = errors.New("invalid time of day")
)

// Configuration error kinds. Each ConfigurationError carries exactly one.
const (
	// ConfigErrInvalidTimezone indicates an unresolvable IANA timezone name.
	// A missing timezone falls back to UTC instead and is not an error.
	ConfigErrInvalidTimezone = "invalid_timezone"

	// ConfigErrScheduleMismatch indicates that the number of scheduled times
	// does not match the configured doses per day.
	ConfigErrScheduleMismatch = "schedule_mismatch"

	// ConfigErrNoScheduledTimes indicates a medication with no scheduled times.
	ConfigErrNoScheduledTimes = "no_scheduled_times"
)

// ConfigurationError describes why a single medication could not be expanded.
// It wraps ErrConfiguration so callers can match with errors.Is, and carries
// the offending medication ID so operators can correlate failures to records.
type ConfigurationError struct {
	Kind         string
	MedicationID uuid.UUID
	Detail       string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%v: %s (medication %s): %s",
		ErrConfiguration, e.Kind, e.MedicationID, e.Detail)
}

// Unwrap supports errors.Is(err, ErrConfiguration).
func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}

// NewConfigurationError creates a ConfigurationError for the given medication.
func NewConfigurationError(kind string, medicationID uuid.UUID, detail string) *ConfigurationError {
	return &ConfigurationError{
		Kind:         kind,
		MedicationID: medicationID,
		Detail:       detail,
	}
}
