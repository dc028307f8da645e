package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dosewise/dosewise-api/internal/api/shared"
	"github.com/dosewise/dosewise-api/internal/domain"
	"github.com/dosewise/dosewise-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors: duplicate identity keys and invalid status
	// transitions (e.g. confirming an already-skipped dose)
	case errors.Is(err, store.ErrDuplicate),
		errors.Is(err, domain.ErrInvalidStatus):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidTimeOfDay):
		return http.StatusBadRequest

	// Misconfigured medications surface as unprocessable rather than a
	// server fault: the request was fine, the stored schedule is not.
	case errors.Is(err, domain.ErrConfiguration):
		return http.StatusUnprocessableEntity

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, store.ErrMedicationNotFound):
		return "Medication not found"

	case errors.Is(err, store.ErrAdherenceNotFound):
		return "Adherence record not found"

	case errors.Is(err, store.ErrReminderNotFound):
		return "Reminder not found"

	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	case errors.Is(err, store.ErrDuplicate):
		return "Record already exists"

	case errors.Is(err, domain.ErrInvalidStatus):
		return "Record is not in a state that allows this change"

	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid identifier"

	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrValidation):
		return "Invalid request data"

	case errors.Is(err, domain.ErrConfiguration):
		return "Medication schedule is misconfigured"

	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError writes an error response for the given internal error,
// mapping it to a status code and a sanitized message. A non-empty message
// overrides the mapped one.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, message string) {
	statusCode := MapErrorToStatusCode(err)
	if message == "" {
		message = GetSafeErrorMessage(err)
	}
	shared.RespondWithErrorAndLog(w, r, statusCode, message, err)
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	// Example format: "Key: 'UpdateAdherenceStatusRequest.Status' Error:Field
	// validation for 'Status' failed on the 'oneof' tag"
	if strings.Contains(errMsg, "Field validation") {
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}

				if tag != "" {
					return "Invalid " + field + ": " + getValidationTagMessage(tag)
				}
				return "Invalid " + field
			}
		}
	}

	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}
