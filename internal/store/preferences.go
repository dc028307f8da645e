package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/dosewise/dosewise-api/internal/domain"
)

// PreferenceStore defines the interface for notification preference persistence.
// Version: 1.0
type PreferenceStore interface {
	// GetByUserID retrieves a user's notification preferences.
	// Returns ErrPreferencesNotFound when the user never stored any;
	// callers fall back to domain.DefaultNotificationPreferences.
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.NotificationPreferences, error)

	// Upsert creates or replaces a user's notification preferences.
	Upsert(ctx context.Context, prefs *domain.NotificationPreferences) error
}
