package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/dosewise/dosewise-api/internal/domain"
	"github.com/dosewise/dosewise-api/internal/store"
)

// PostgresAdherenceStore implements the store.AdherenceStore interface using
// a PostgreSQL database as the storage backend. The identity key
// (user_id, medication_id, scheduled_date, scheduled_time) is covered by a
// unique index in the schema; Create maps its violation to
// store.ErrDuplicateAdherence so idempotent materialization can treat the
// record as already covered.
type PostgresAdherenceStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresAdherenceStore creates a new PostgreSQL implementation of the
// AdherenceStore interface. If logger is nil, a default logger will be used.
func NewPostgresAdherenceStore(db store.DBTX, logger *slog.Logger) *PostgresAdherenceStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresAdherenceStore{
		db:     db,
		logger: logger.With(slog.String("component", "adherence_store")),
	}
}

// Ensure PostgresAdherenceStore implements store.AdherenceStore interface
var _ store.AdherenceStore = (*PostgresAdherenceStore)(nil)

const adherenceColumns = `
	id, user_id, medication_id, scheduled_date, scheduled_time,
	status, taken_at, notes, created_at, updated_at`

// Create implements store.AdherenceStore.Create
func (s *PostgresAdherenceStore) Create(ctx context.Context, rec *domain.AdherenceRecord) error {
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO adherence_records
			(id, user_id, medication_id, scheduled_date, scheduled_time,
			 status, taken_at, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := s.db.ExecContext(ctx, query,
		rec.ID,
		rec.UserID,
		rec.MedicationID,
		rec.ScheduledDate,
		rec.ScheduledTime.String(),
		rec.Status,
		rec.TakenAt,
		rec.Notes,
		rec.CreatedAt,
		rec.UpdatedAt,
	)
	if err != nil {
		return MapUniqueViolation(err, store.ErrDuplicateAdherence)
	}

	return nil
}

// GetByID implements store.AdherenceStore.GetByID
func (s *PostgresAdherenceStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.AdherenceRecord, error) {
	query := `SELECT ` + adherenceColumns + ` FROM adherence_records WHERE id = $1`

	rec, err := scanAdherence(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if IsNotFoundError(err) {
			return nil, store.ErrAdherenceNotFound
		}
		return nil, MapError(err)
	}

	return rec, nil
}

// GetByKey implements store.AdherenceStore.GetByKey
func (s *PostgresAdherenceStore) GetByKey(
	ctx context.Context,
	userID, medicationID uuid.UUID,
	scheduledDate time.Time,
	scheduledTime domain.TimeOfDay,
) (*domain.AdherenceRecord, error) {
	query := `
		SELECT ` + adherenceColumns + `
		FROM adherence_records
		WHERE user_id = $1 AND medication_id = $2
		  AND scheduled_date = $3 AND scheduled_time = $4
	`

	rec, err := scanAdherence(s.db.QueryRowContext(ctx, query,
		userID, medicationID, domain.DateOf(scheduledDate), scheduledTime.String()))
	if err != nil {
		if IsNotFoundError(err) {
			return nil, store.ErrAdherenceNotFound
		}
		return nil, MapError(err)
	}

	return rec, nil
}

// Exists implements store.AdherenceStore.Exists
func (s *PostgresAdherenceStore) Exists(
	ctx context.Context,
	userID, medicationID uuid.UUID,
	scheduledDate time.Time,
	scheduledTime domain.TimeOfDay,
) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM adherence_records
			WHERE user_id = $1 AND medication_id = $2
			  AND scheduled_date = $3 AND scheduled_time = $4
		)
	`

	var exists bool
	err := s.db.QueryRowContext(ctx, query,
		userID, medicationID, domain.DateOf(scheduledDate), scheduledTime.String(),
	).Scan(&exists)
	if err != nil {
		return false, MapError(err)
	}

	return exists, nil
}

// Update implements store.AdherenceStore.Update
func (s *PostgresAdherenceStore) Update(ctx context.Context, rec *domain.AdherenceRecord) error {
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE adherence_records
		SET status = $1, taken_at = $2, notes = $3, updated_at = $4
		WHERE id = $5
	`

	result, err := s.db.ExecContext(ctx, query,
		rec.Status,
		rec.TakenAt,
		rec.Notes,
		rec.UpdatedAt,
		rec.ID,
	)
	if err != nil {
		return MapError(err)
	}

	return CheckRowsAffected(result, "adherence record")
}

// ListByUser implements store.AdherenceStore.ListByUser
func (s *PostgresAdherenceStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	from, to time.Time,
) ([]*domain.AdherenceRecord, error) {
	query := `
		SELECT ` + adherenceColumns + `
		FROM adherence_records
		WHERE user_id = $1 AND scheduled_date BETWEEN $2 AND $3
		ORDER BY scheduled_date ASC, scheduled_time ASC
	`

	rows, err := s.db.QueryContext(ctx, query,
		userID, domain.DateOf(from), domain.DateOf(to))
	if err != nil {
		s.logger.Error("failed to list adherence records",
			"user_id", userID, "error", err)
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var recs []*domain.AdherenceRecord
	for rows.Next() {
		rec, err := scanAdherence(rows)
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

// MarkMissedOlderThan implements store.AdherenceStore.MarkMissedOlderThan
//
// A record is overdue when the UTC day following its scheduled date is
// already before the cutoff, which avoids marking today's still-open doses.
func (s *PostgresAdherenceStore) MarkMissedOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		UPDATE adherence_records
		SET status = $1, updated_at = $2
		WHERE status = $3 AND scheduled_date + INTERVAL '1 day' < $4
	`

	result, err := s.db.ExecContext(ctx, query,
		domain.AdherenceStatusMissed,
		time.Now().UTC(),
		domain.AdherenceStatusPending,
		cutoff.UTC(),
	)
	if err != nil {
		return 0, MapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return affected, nil
}

// scanAdherence maps one adherence_records row to a domain entity.
func scanAdherence(row rowScanner) (*domain.AdherenceRecord, error) {
	var (
		rec     domain.AdherenceRecord
		timeRaw string
		takenAt sql.NullTime
		notes   sql.NullString
	)

	err := row.Scan(
		&rec.ID,
		&rec.UserID,
		&rec.MedicationID,
		&rec.ScheduledDate,
		&timeRaw,
		&rec.Status,
		&takenAt,
		&notes,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	tod, err := domain.ParseTimeOfDay(timeRaw)
	if err != nil {
		return nil, fmt.Errorf("corrupt scheduled_time column: %w", err)
	}
	rec.ScheduledTime = tod

	if takenAt.Valid {
		t := takenAt.Time
		rec.TakenAt = &t
	}
	if notes.Valid {
		rec.Notes = notes.String
	}

	return &rec, nil
}
