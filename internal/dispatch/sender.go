package dispatch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dosewise/dosewise-api/internal/domain"
)

// ChannelSender delivers one reminder over one channel. Implementations wrap
// the actual transports (email gateway, SMS provider, push service), which
// live outside this core. Any non-nil error is treated as retriable by the
// scanner.
// Version: 1.0
type ChannelSender interface {
	// Send delivers the reminder over the implementation's channel.
	Send(ctx context.Context, reminder *domain.ReminderRecord) error
}

// Senders holds one sender per supported channel. Like domain.ChannelSet it
// is a fixed struct rather than a map so a channel without a wired sender is
// caught at construction, not at dispatch time.
type Senders struct {
	Email ChannelSender
	SMS   ChannelSender
	Push  ChannelSender
}

// For returns the sender for the given channel.
func (s Senders) For(ch domain.Channel) (ChannelSender, error) {
	switch ch {
	case domain.ChannelEmail:
		return s.Email, nil
	case domain.ChannelSMS:
		return s.SMS, nil
	case domain.ChannelPush:
		return s.Push, nil
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownChannel, ch)
	}
}

// Validate ensures every channel has a sender wired.
func (s Senders) Validate() error {
	for _, ch := range domain.Channels() {
		sender, err := s.For(ch)
		if err != nil {
			return err
		}
		if sender == nil {
			return fmt.Errorf("no sender wired for channel %q", ch)
		}
	}
	return nil
}

// LogSender is a ChannelSender that only logs the delivery. It stands in for
// real transports in local development and keeps the dispatch path exercised
// end to end without external services.
type LogSender struct {
	channel domain.Channel
	logger  *slog.Logger
}

// NewLogSender creates a LogSender for the given channel.
func NewLogSender(channel domain.Channel, logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{
		channel: channel,
		logger:  logger.With(slog.String("component", "log_sender")),
	}
}

// Send implements ChannelSender.Send
func (s *LogSender) Send(_ context.Context, reminder *domain.ReminderRecord) error {
	s.logger.Info("delivering reminder",
		"channel", s.channel,
		"reminder_id", reminder.ID,
		"user_id", reminder.UserID,
		"medication_id", reminder.MedicationID,
		"scheduled_at", reminder.ScheduledAt)
	return nil
}
