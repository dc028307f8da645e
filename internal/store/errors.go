package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	// This is a generic version of the entity-specific not found errors
	// (e.g., ErrMedicationNotFound, ErrReminderNotFound).
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate of a
	// unique entity. For adherence and reminder records this means the record's
	// identity key already exists: the unique indexes on those keys are the
	// backstop against concurrent generation runs, so materializers treat this
	// error as "already covered" rather than as a failure.
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored. Check the wrapped error for specific validation details.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrUpdateFailed is returned when an update operation fails, for example
	// because the entity does not exist or the update violates constraints.
	ErrUpdateFailed = errors.New("update failed")

	// ErrTransactionFailed is returned when a database transaction fails
	// to commit or when an operation within a transaction fails.
	ErrTransactionFailed = errors.New("transaction failed")

	// Entity-specific "not found" errors

	// ErrMedicationNotFound indicates that the requested medication does not exist.
	ErrMedicationNotFound = fmt.Errorf("%w: medication", ErrNotFound)

	// ErrAdherenceNotFound indicates that the requested adherence record does not exist.
	ErrAdherenceNotFound = fmt.Errorf("%w: adherence record", ErrNotFound)

	// ErrReminderNotFound indicates that the requested reminder does not exist.
	ErrReminderNotFound = fmt.Errorf("%w: reminder", ErrNotFound)

	// ErrPreferencesNotFound indicates that the user has no stored notification
	// preferences. Callers fall back to domain.DefaultNotificationPreferences.
	ErrPreferencesNotFound = fmt.Errorf("%w: notification preferences", ErrNotFound)

	// Entity-specific "duplicate" errors

	// ErrDuplicateAdherence indicates an adherence record with the same
	// (user, medication, date, time-of-day) identity key already exists.
	ErrDuplicateAdherence = fmt.Errorf("%w: adherence record", ErrDuplicate)

	// ErrDuplicateReminder indicates a reminder with the same
	// (user, medication, scheduled instant) identity key already exists.
	ErrDuplicateReminder = fmt.Errorf("%w: reminder", ErrDuplicate)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if the error is any kind of "duplicate" error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// StoreError is a custom error type for store-specific errors with additional context.
type StoreError struct {
	Entity    string // The entity type (e.g., "medication", "reminder")
	Operation string // The operation that failed (e.g., "create", "update")
	Message   string // Error message
	Err       error  // Original error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf(
			"%s operation on %s failed: %s: %v",
			e.Operation,
			e.Entity,
			e.Message,
			e.Err,
		)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError with the given entity, operation, message, and wrapped error.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
