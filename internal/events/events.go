package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types emitted by the dispatch pipeline.
const (
	// TypeReminderSent is emitted when every enabled channel of a reminder
	// has been delivered and the reminder reaches its terminal sent state.
	TypeReminderSent = "reminder.sent"

	// TypeReminderFailed is emitted when a reminder exhausts its retry
	// attempts with at least one channel still undelivered.
	TypeReminderFailed = "reminder.failed"
)

// ReminderLifecycleEvent records a terminal state transition of a reminder.
// It carries the transition details as a serialized payload so handlers do
// not need a dependency on the dispatch package.
type ReminderLifecycleEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type is one of the Type* constants above
	Type string `json:"type"`

	// Payload contains the transition data serialized as JSON
	Payload json.RawMessage `json:"payload"`

	// OccurredAt is the timestamp when the transition happened
	OccurredAt time.Time `json:"occurred_at"`
}

// ReminderPayload is the standard payload for reminder lifecycle events.
type ReminderPayload struct {
	ReminderID   uuid.UUID `json:"reminder_id"`
	UserID       uuid.UUID `json:"user_id"`
	MedicationID uuid.UUID `json:"medication_id"`
	ScheduledAt  time.Time `json:"scheduled_at"`
	RetryCount   int       `json:"retry_count"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *ReminderLifecycleEvent) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewReminderEvent creates a new ReminderLifecycleEvent with the specified
// type and payload.
func NewReminderEvent(eventType string, payload interface{}) (*ReminderLifecycleEvent, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &ReminderLifecycleEvent{
		ID:         uuid.New(),
		Type:       eventType,
		Payload:    payloadBytes,
		OccurredAt: time.Now().UTC(),
	}, nil
}

// EventHandler defines an interface for components that can handle events.
// Handlers are responsible for processing events and taking appropriate actions.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *ReminderLifecycleEvent) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows the dispatcher to publish events without direct knowledge of
// handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	EmitEvent(ctx context.Context, event *ReminderLifecycleEvent) error
}
