package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/dosewise/dosewise-api/internal/domain"
	"github.com/dosewise/dosewise-api/internal/store"
)

// PostgresReminderStore implements the store.ReminderStore interface using a
// PostgreSQL database as the storage backend. Per-channel delivery state is
// stored as a JSONB column; the identity key (user_id, medication_id,
// scheduled_at) is covered by a unique index in the schema.
type PostgresReminderStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresReminderStore creates a new PostgreSQL implementation of the
// ReminderStore interface. If logger is nil, a default logger will be used.
func NewPostgresReminderStore(db store.DBTX, logger *slog.Logger) *PostgresReminderStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresReminderStore{
		db:     db,
		logger: logger.With(slog.String("component", "reminder_store")),
	}
}

// Ensure PostgresReminderStore implements store.ReminderStore interface
var _ store.ReminderStore = (*PostgresReminderStore)(nil)

const reminderColumns = `
	id, user_id, medication_id, adherence_id, scheduled_at,
	status, channels, retry_count, last_retry_at, created_at, updated_at`

// CreateMultiple implements store.ReminderStore.CreateMultiple
// It bulk-inserts all records in a single multi-row INSERT so materialization
// round-trips stay bounded. A unique violation on any row fails the whole
// statement with ErrDuplicateReminder; nothing is silently dropped.
func (s *PostgresReminderStore) CreateMultiple(ctx context.Context, recs []*domain.ReminderRecord) error {
	if len(recs) == 0 {
		return nil
	}

	const fieldsPerRow = 11
	placeholders := make([]string, 0, len(recs))
	args := make([]any, 0, len(recs)*fieldsPerRow)

	for i, rec := range recs {
		if err := rec.Validate(); err != nil {
			return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
		}

		channels, err := json.Marshal(rec.Channels)
		if err != nil {
			return fmt.Errorf("failed to marshal channels: %w", err)
		}

		base := i * fieldsPerRow
		row := make([]string, fieldsPerRow)
		for j := range row {
			row[j] = fmt.Sprintf("$%d", base+j+1)
		}
		placeholders = append(placeholders, "("+strings.Join(row, ", ")+")")

		args = append(args,
			rec.ID,
			rec.UserID,
			rec.MedicationID,
			rec.AdherenceID,
			rec.ScheduledAt,
			rec.Status,
			channels,
			rec.RetryCount,
			rec.LastRetryAt,
			rec.CreatedAt,
			rec.UpdatedAt,
		)
	}

	query := `
		INSERT INTO reminders
			(id, user_id, medication_id, adherence_id, scheduled_at,
			 status, channels, retry_count, last_retry_at, created_at, updated_at)
		VALUES ` + strings.Join(placeholders, ", ")

	_, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		s.logger.Error("failed to bulk-insert reminders",
			"count", len(recs), "error", err)
		return MapUniqueViolation(err, store.ErrDuplicateReminder)
	}

	return nil
}

// GetByID implements store.ReminderStore.GetByID
func (s *PostgresReminderStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.ReminderRecord, error) {
	query := `SELECT ` + reminderColumns + ` FROM reminders WHERE id = $1`

	rec, err := scanReminder(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if IsNotFoundError(err) {
			return nil, store.ErrReminderNotFound
		}
		return nil, MapError(err)
	}

	return rec, nil
}

// Exists implements store.ReminderStore.Exists
func (s *PostgresReminderStore) Exists(
	ctx context.Context,
	userID, medicationID uuid.UUID,
	scheduledAt time.Time,
) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM reminders
			WHERE user_id = $1 AND medication_id = $2 AND scheduled_at = $3
		)
	`

	var exists bool
	err := s.db.QueryRowContext(ctx, query,
		userID, medicationID, scheduledAt.UTC()).Scan(&exists)
	if err != nil {
		return false, MapError(err)
	}

	return exists, nil
}

// ListDue implements store.ReminderStore.ListDue
func (s *PostgresReminderStore) ListDue(ctx context.Context, now time.Time, limit int) ([]*domain.ReminderRecord, error) {
	query := `
		SELECT ` + reminderColumns + `
		FROM reminders
		WHERE status = $1 AND scheduled_at <= $2
		ORDER BY scheduled_at ASC
	`
	args := []any{domain.ReminderStatusPending, now.UTC()}

	if limit > 0 {
		query += ` LIMIT $3`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		s.logger.Error("failed to query due reminders", "error", err)
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var recs []*domain.ReminderRecord
	for rows.Next() {
		rec, err := scanReminder(rows)
		if err != nil {
			return nil, MapError(err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return recs, nil
}

// Update implements store.ReminderStore.Update
func (s *PostgresReminderStore) Update(ctx context.Context, rec *domain.ReminderRecord) error {
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	channels, err := json.Marshal(rec.Channels)
	if err != nil {
		return fmt.Errorf("failed to marshal channels: %w", err)
	}

	query := `
		UPDATE reminders
		SET status = $1, channels = $2, retry_count = $3, last_retry_at = $4,
		    updated_at = $5
		WHERE id = $6
	`

	result, err := s.db.ExecContext(ctx, query,
		rec.Status,
		channels,
		rec.RetryCount,
		rec.LastRetryAt,
		rec.UpdatedAt,
		rec.ID,
	)
	if err != nil {
		return MapError(err)
	}

	return CheckRowsAffected(result, "reminder")
}

// scanReminder maps one reminders row to a domain entity.
func scanReminder(row rowScanner) (*domain.ReminderRecord, error) {
	var (
		rec         domain.ReminderRecord
		adherenceID uuid.NullUUID
		channelsRaw []byte
		lastRetryAt sql.NullTime
	)

	err := row.Scan(
		&rec.ID,
		&rec.UserID,
		&rec.MedicationID,
		&adherenceID,
		&rec.ScheduledAt,
		&rec.Status,
		&channelsRaw,
		&rec.RetryCount,
		&lastRetryAt,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(channelsRaw, &rec.Channels); err != nil {
		return nil, fmt.Errorf("corrupt channels column: %w", err)
	}

	if adherenceID.Valid {
		id := adherenceID.UUID
		rec.AdherenceID = &id
	}
	if lastRetryAt.Valid {
		t := lastRetryAt.Time
		rec.LastRetryAt = &t
	}

	return &rec, nil
}
