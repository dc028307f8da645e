package postgres

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/dosewise/dosewise-api/internal/domain"
	"github.com/dosewise/dosewise-api/internal/store"
)

// PostgresPreferenceStore implements the store.PreferenceStore interface
// using a PostgreSQL database as the storage backend.
type PostgresPreferenceStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresPreferenceStore creates a new PostgreSQL implementation of the
// PreferenceStore interface. If logger is nil, a default logger will be used.
func NewPostgresPreferenceStore(db store.DBTX, logger *slog.Logger) *PostgresPreferenceStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresPreferenceStore{
		db:     db,
		logger: logger.With(slog.String("component", "preference_store")),
	}
}

// Ensure PostgresPreferenceStore implements store.PreferenceStore interface
var _ store.PreferenceStore = (*PostgresPreferenceStore)(nil)

// GetByUserID implements store.PreferenceStore.GetByUserID
func (s *PostgresPreferenceStore) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.NotificationPreferences, error) {
	query := `
		SELECT user_id, timezone, email_enabled, sms_enabled, push_enabled,
		       created_at, updated_at
		FROM notification_preferences
		WHERE user_id = $1
	`

	var prefs domain.NotificationPreferences
	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&prefs.UserID,
		&prefs.Timezone,
		&prefs.EmailEnabled,
		&prefs.SMSEnabled,
		&prefs.PushEnabled,
		&prefs.CreatedAt,
		&prefs.UpdatedAt,
	)
	if err != nil {
		if IsNotFoundError(err) {
			return nil, store.ErrPreferencesNotFound
		}
		return nil, MapError(err)
	}

	return &prefs, nil
}

// Upsert implements store.PreferenceStore.Upsert
func (s *PostgresPreferenceStore) Upsert(ctx context.Context, prefs *domain.NotificationPreferences) error {
	now := time.Now().UTC()

	query := `
		INSERT INTO notification_preferences
			(user_id, timezone, email_enabled, sms_enabled, push_enabled,
			 created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (user_id) DO UPDATE
		SET timezone = EXCLUDED.timezone,
		    email_enabled = EXCLUDED.email_enabled,
		    sms_enabled = EXCLUDED.sms_enabled,
		    push_enabled = EXCLUDED.push_enabled,
		    updated_at = EXCLUDED.updated_at
	`

	_, err := s.db.ExecContext(ctx, query,
		prefs.UserID,
		prefs.Timezone,
		prefs.EmailEnabled,
		prefs.SMSEnabled,
		prefs.PushEnabled,
		now,
	)
	if err != nil {
		s.logger.Error("failed to upsert notification preferences",
			"user_id", prefs.UserID, "error", err)
		return MapError(err)
	}

	return nil
}
