package api

import (
	"time"

	"github.com/dosewise/dosewise-api/internal/domain"
)

// AdherenceRecordResponse represents the response data for an adherence record.
type AdherenceRecordResponse struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	MedicationID  string     `json:"medication_id"`
	ScheduledDate string     `json:"scheduled_date"`
	ScheduledTime string     `json:"scheduled_time"`
	Status        string     `json:"status"`
	TakenAt       *time.Time `json:"taken_at,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// adherenceToResponse transforms a domain adherence record to its response shape.
func adherenceToResponse(rec *domain.AdherenceRecord) AdherenceRecordResponse {
	return AdherenceRecordResponse{
		ID:            rec.ID.String(),
		UserID:        rec.UserID.String(),
		MedicationID:  rec.MedicationID.String(),
		ScheduledDate: rec.ScheduledDate.Format("2006-01-02"),
		ScheduledTime: rec.ScheduledTime.String(),
		Status:        string(rec.Status),
		TakenAt:       rec.TakenAt,
		Notes:         rec.Notes,
		CreatedAt:     rec.CreatedAt,
		UpdatedAt:     rec.UpdatedAt,
	}
}

// UpdateAdherenceStatusRequest represents the request body for the confirm/skip
// endpoint. TakenAt is only meaningful for "taken" and defaults to the server
// clock when omitted.
type UpdateAdherenceStatusRequest struct {
	Status  string     `json:"status" validate:"required,oneof=taken skipped"`
	TakenAt *time.Time `json:"taken_at,omitempty"`
	Notes   string     `json:"notes,omitempty" validate:"max=1000"`
}
