package domain

import (
	"time"

	"github.com/google/uuid"
)

// NotificationPreferences holds a user's reminder delivery settings.
// Timezone is an IANA identifier ("America/Sao_Paulo"); an empty value means
// the user never set one and expansion falls back to UTC. The per-channel
// flags control which channels newly materialized reminders start enabled on.
type NotificationPreferences struct {
	UserID       uuid.UUID `json:"user_id"`
	Timezone     string    `json:"timezone,omitempty"`
	EmailEnabled bool      `json:"email_enabled"`
	SMSEnabled   bool      `json:"sms_enabled"`
	PushEnabled  bool      `json:"push_enabled"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// DefaultNotificationPreferences returns the preferences applied when a user
// has none stored: email reminders only, no timezone (UTC fallback).
func DefaultNotificationPreferences(userID uuid.UUID) NotificationPreferences {
	return NotificationPreferences{
		UserID:       userID,
		EmailEnabled: true,
	}
}

// SeedChannels builds the initial per-channel delivery state for a new
// reminder: each enabled channel starts enabled and unsent.
func (p NotificationPreferences) SeedChannels() ChannelSet {
	return ChannelSet{
		Email: ChannelDelivery{Enabled: p.EmailEnabled},
		SMS:   ChannelDelivery{Enabled: p.SMSEnabled},
		Push:  ChannelDelivery{Enabled: p.PushEnabled},
	}
}
