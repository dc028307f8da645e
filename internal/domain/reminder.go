package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ReminderStatus represents the delivery state of a reminder record.
type ReminderStatus string

// Possible reminder status values. failed is terminal: once retry attempts
// are exhausted the dispatcher never touches the record again.
const (
	ReminderStatusPending ReminderStatus = "pending"
	ReminderStatusSent    ReminderStatus = "sent"
	ReminderStatusFailed  ReminderStatus = "failed"
)

// Channel identifies a reminder delivery channel. The set is closed so that
// channel handling stays exhaustiveness-checkable; adding a channel means
// extending Channels and the ChannelSet struct together.
type Channel string

// Supported delivery channels.
const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
	ChannelPush  Channel = "push"
)

// Channels returns all supported channels in a stable order.
func Channels() []Channel {
	return []Channel{ChannelEmail, ChannelSMS, ChannelPush}
}

// Reminder-specific validation errors
var (
	// ErrReminderIDEmpty is returned when a reminder ID is empty or nil.
	ErrReminderIDEmpty = errors.New("reminder ID cannot be empty")

	// ErrReminderUserIDEmpty is returned when the user ID is empty or nil.
	ErrReminderUserIDEmpty = errors.New("reminder user ID cannot be empty")

	// ErrReminderMedicationIDEmpty is returned when the medication ID is empty or nil.
	ErrReminderMedicationIDEmpty = errors.New("reminder medication ID cannot be empty")

	// ErrReminderScheduledAtZero is returned when the scheduled instant is unset.
	ErrReminderScheduledAtZero = errors.New("reminder scheduled instant cannot be zero")

	// ErrUnknownChannel is returned when a channel name is not one of the
	// supported channels.
	ErrUnknownChannel = errors.New("unknown channel")
)

// ChannelDelivery tracks the delivery state of one channel of one reminder.
type ChannelDelivery struct {
	Enabled bool       `json:"enabled"`
	Sent    bool       `json:"sent"`
	SentAt  *time.Time `json:"sent_at,omitempty"`
}

// ChannelSet holds per-channel delivery state for a reminder. It is a fixed
// struct rather than an open map so a missing channel is a compile error,
// not a silent nil lookup.
type ChannelSet struct {
	Email ChannelDelivery `json:"email"`
	SMS   ChannelDelivery `json:"sms"`
	Push  ChannelDelivery `json:"push"`
}

// State returns the delivery state for the given channel.
func (s *ChannelSet) State(ch Channel) (ChannelDelivery, error) {
	switch ch {
	case ChannelEmail:
		return s.Email, nil
	case ChannelSMS:
		return s.SMS, nil
	case ChannelPush:
		return s.Push, nil
	default:
		return ChannelDelivery{}, fmt.Errorf("%w: %q", ErrUnknownChannel, ch)
	}
}

// MarkSent records a successful delivery on the given channel.
func (s *ChannelSet) MarkSent(ch Channel, at time.Time) error {
	t := at.UTC()
	switch ch {
	case ChannelEmail:
		s.Email.Sent = true
		s.Email.SentAt = &t
	case ChannelSMS:
		s.SMS.Sent = true
		s.SMS.SentAt = &t
	case ChannelPush:
		s.Push.Sent = true
		s.Push.SentAt = &t
	default:
		return fmt.Errorf("%w: %q", ErrUnknownChannel, ch)
	}
	return nil
}

// PendingChannels returns the channels that are enabled but not yet sent.
// These are the channels a dispatch pass still has to deliver; channels that
// already succeeded are never re-sent on retry.
func (s *ChannelSet) PendingChannels() []Channel {
	var out []Channel
	if s.Email.Enabled && !s.Email.Sent {
		out = append(out, ChannelEmail)
	}
	if s.SMS.Enabled && !s.SMS.Sent {
		out = append(out, ChannelSMS)
	}
	if s.Push.Enabled && !s.Push.Sent {
		out = append(out, ChannelPush)
	}
	return out
}

// AllDelivered reports whether every enabled channel has been sent.
// A reminder with no enabled channels is trivially delivered.
func (s *ChannelSet) AllDelivered() bool {
	return len(s.PendingChannels()) == 0
}

// ReminderRecord is a scheduled notification for a single dose.
// The tuple (UserID, MedicationID, ScheduledAt) is the record's identity key,
// enforced as a unique constraint at the storage layer. AdherenceID is a weak
// back-reference to the adherence record sharing the same dose, resolved at
// materialization time; it never implies ownership.
//
// Reminder records are created by the reminder materializer and mutated only
// by the dispatch scanner. User confirm/skip flows never touch them.
type ReminderRecord struct {
	ID           uuid.UUID      `json:"id"`
	UserID       uuid.UUID      `json:"user_id"`
	MedicationID uuid.UUID      `json:"medication_id"`
	AdherenceID  *uuid.UUID     `json:"adherence_id,omitempty"`
	ScheduledAt  time.Time      `json:"scheduled_at"`
	Status       ReminderStatus `json:"status"`
	Channels     ChannelSet     `json:"channels"`
	RetryCount   int            `json:"retry_count"`
	LastRetryAt  *time.Time     `json:"last_retry_at,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// NewReminderRecord creates a pending ReminderRecord for the dose scheduled
// at the given UTC instant, with channels seeded from the user's notification
// preferences. Returns an error if validation fails.
func NewReminderRecord(
	userID, medicationID uuid.UUID,
	scheduledAt time.Time,
	prefs NotificationPreferences,
) (*ReminderRecord, error) {
	rec := &ReminderRecord{
		ID:           uuid.New(),
		UserID:       userID,
		MedicationID: medicationID,
		ScheduledAt:  scheduledAt.UTC(),
		Status:       ReminderStatusPending,
		Channels:     prefs.SeedChannels(),
		RetryCount:   0,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}

	if err := rec.Validate(); err != nil {
		return nil, err
	}

	return rec, nil
}

// Validate checks if the ReminderRecord has valid data.
func (r *ReminderRecord) Validate() error {
	if r.ID == uuid.Nil {
		return ErrReminderIDEmpty
	}

	if r.UserID == uuid.Nil {
		return ErrReminderUserIDEmpty
	}

	if r.MedicationID == uuid.Nil {
		return ErrReminderMedicationIDEmpty
	}

	if r.ScheduledAt.IsZero() {
		return ErrReminderScheduledAtZero
	}

	switch r.Status {
	case ReminderStatusPending, ReminderStatusSent, ReminderStatusFailed:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidStatus, r.Status)
	}

	if r.RetryCount < 0 {
		return fmt.Errorf("%w: negative retry count", ErrValidation)
	}

	return nil
}

// Due reports whether the reminder is due for dispatch at the given instant.
func (r *ReminderRecord) Due(now time.Time) bool {
	return r.Status == ReminderStatusPending && !r.ScheduledAt.After(now)
}
