package events

import (
	"context"
	"fmt"
	"log/slog"
)

// AuditLogHandler writes each reminder lifecycle event to the structured log.
// It gives operators a delivery audit trail without any external sink.
type AuditLogHandler struct {
	logger *slog.Logger
}

// NewAuditLogHandler creates a new AuditLogHandler.
func NewAuditLogHandler(logger *slog.Logger) *AuditLogHandler {
	return &AuditLogHandler{
		logger: logger.With("component", "reminder_audit"),
	}
}

// HandleEvent implements the EventHandler interface.
func (h *AuditLogHandler) HandleEvent(ctx context.Context, event *ReminderLifecycleEvent) error {
	var payload ReminderPayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		return fmt.Errorf("failed to decode reminder payload: %w", err)
	}

	h.logger.InfoContext(ctx, "reminder lifecycle event",
		"event_id", event.ID,
		"event_type", event.Type,
		"reminder_id", payload.ReminderID,
		"user_id", payload.UserID,
		"medication_id", payload.MedicationID,
		"scheduled_at", payload.ScheduledAt,
		"retry_count", payload.RetryCount)
	return nil
}
