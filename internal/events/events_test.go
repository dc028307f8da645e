package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReminderEvent(t *testing.T) {
	payload := ReminderPayload{
		ReminderID:   uuid.New(),
		UserID:       uuid.New(),
		MedicationID: uuid.New(),
		ScheduledAt:  time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC),
		RetryCount:   2,
	}

	event, err := NewReminderEvent(TypeReminderSent, payload)

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, TypeReminderSent, event.Type)
	assert.NotNil(t, event.Payload)
	assert.WithinDuration(t, time.Now(), event.OccurredAt, 2*time.Second)

	// Verify payload was correctly serialized
	var decoded ReminderPayload
	err = json.Unmarshal(event.Payload, &decoded)
	require.NoError(t, err)
	assert.Equal(t, payload.ReminderID, decoded.ReminderID)
	assert.Equal(t, payload.RetryCount, decoded.RetryCount)
	assert.True(t, payload.ScheduledAt.Equal(decoded.ScheduledAt))
}

// MockEventHandler implements the EventHandler interface for testing
type MockEventHandler struct {
	// The last event received by this handler
	LastEvent *ReminderLifecycleEvent
	// Error to return from HandleEvent
	HandlerError error
	// Count of events handled
	HandledCount int
}

// HandleEvent implements the EventHandler interface
func (h *MockEventHandler) HandleEvent(ctx context.Context, event *ReminderLifecycleEvent) error {
	h.LastEvent = event
	h.HandledCount++
	return h.HandlerError
}

func TestEventHandler(t *testing.T) {
	handler := &MockEventHandler{}

	event, err := NewReminderEvent(TypeReminderFailed, ReminderPayload{ReminderID: uuid.New()})
	require.NoError(t, err)

	err = handler.HandleEvent(context.Background(), event)
	assert.NoError(t, err)
	assert.Equal(t, 1, handler.HandledCount)
	assert.Equal(t, event, handler.LastEvent)

	// Test error case
	expectedErr := errors.New("handler error")
	handler.HandlerError = expectedErr
	err = handler.HandleEvent(context.Background(), event)
	assert.Equal(t, expectedErr, err)
	assert.Equal(t, 2, handler.HandledCount)
}
