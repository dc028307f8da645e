package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/dosewise/dosewise-api/internal/domain"
	"github.com/dosewise/dosewise-api/internal/store"
)

// PostgresMedicationStore implements the store.MedicationStore interface
// using a PostgreSQL database as the storage backend. Schedule shape fields
// (specific days, scheduled times) are stored as JSONB columns.
type PostgresMedicationStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresMedicationStore creates a new PostgreSQL implementation of the
// MedicationStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller. If logger is nil, a
// default logger will be used.
func NewPostgresMedicationStore(db store.DBTX, logger *slog.Logger) *PostgresMedicationStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresMedicationStore{
		db:     db,
		logger: logger.With(slog.String("component", "medication_store")),
	}
}

// Ensure PostgresMedicationStore implements store.MedicationStore interface
var _ store.MedicationStore = (*PostgresMedicationStore)(nil)

// Create implements store.MedicationStore.Create
func (s *PostgresMedicationStore) Create(ctx context.Context, med *domain.Medication) error {
	if err := med.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	days, times, err := marshalSchedule(med)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO medications
			(id, user_id, name, dosage, doses_per_day, specific_days,
			 scheduled_times, start_date, end_date, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err = s.db.ExecContext(ctx, query,
		med.ID,
		med.UserID,
		med.Name,
		med.Dosage,
		med.DosesPerDay,
		days,
		times,
		med.StartDate,
		med.EndDate,
		med.Active,
		med.CreatedAt,
		med.UpdatedAt,
	)
	if err != nil {
		s.logger.Error("failed to create medication",
			"medication_id", med.ID, "error", err)
		return MapError(err)
	}

	return nil
}

// GetByID implements store.MedicationStore.GetByID
func (s *PostgresMedicationStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Medication, error) {
	query := `
		SELECT id, user_id, name, dosage, doses_per_day, specific_days,
		       scheduled_times, start_date, end_date, active, created_at, updated_at
		FROM medications
		WHERE id = $1
	`

	med, err := scanMedication(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if IsNotFoundError(err) {
			return nil, store.ErrMedicationNotFound
		}
		return nil, MapError(err)
	}

	return med, nil
}

// FindActiveScheduled implements store.MedicationStore.FindActiveScheduled
func (s *PostgresMedicationStore) FindActiveScheduled(ctx context.Context) ([]*domain.Medication, error) {
	query := `
		SELECT id, user_id, name, dosage, doses_per_day, specific_days,
		       scheduled_times, start_date, end_date, active, created_at, updated_at
		FROM medications
		WHERE active = TRUE
		  AND jsonb_array_length(scheduled_times) > 0
		ORDER BY created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		s.logger.Error("failed to query active medications", "error", err)
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var meds []*domain.Medication
	for rows.Next() {
		med, err := scanMedication(rows)
		if err != nil {
			return nil, MapError(err)
		}
		meds = append(meds, med)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return meds, nil
}

// Update implements store.MedicationStore.Update
func (s *PostgresMedicationStore) Update(ctx context.Context, med *domain.Medication) error {
	if err := med.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	days, times, err := marshalSchedule(med)
	if err != nil {
		return err
	}

	med.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE medications
		SET name = $1, dosage = $2, doses_per_day = $3, specific_days = $4,
		    scheduled_times = $5, start_date = $6, end_date = $7, active = $8,
		    updated_at = $9
		WHERE id = $10
	`

	result, err := s.db.ExecContext(ctx, query,
		med.Name,
		med.Dosage,
		med.DosesPerDay,
		days,
		times,
		med.StartDate,
		med.EndDate,
		med.Active,
		med.UpdatedAt,
		med.ID,
	)
	if err != nil {
		return MapError(err)
	}

	return CheckRowsAffected(result, "medication")
}

// rowScanner abstracts *sql.Row and *sql.Rows for the scan helpers.
type rowScanner interface {
	Scan(dest ...any) error
}

// marshalSchedule serializes the medication's schedule shape fields to JSONB.
func marshalSchedule(med *domain.Medication) (days, times []byte, err error) {
	specificDays := med.SpecificDays
	if specificDays == nil {
		specificDays = []time.Weekday{}
	}
	days, err = json.Marshal(specificDays)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal specific days: %w", err)
	}

	times, err = json.Marshal(med.ScheduledTimes)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal scheduled times: %w", err)
	}

	return days, times, nil
}

// scanMedication maps one medications row to a domain entity.
func scanMedication(row rowScanner) (*domain.Medication, error) {
	var (
		med      domain.Medication
		daysRaw  []byte
		timesRaw []byte
		endDate  sql.NullTime
	)

	err := row.Scan(
		&med.ID,
		&med.UserID,
		&med.Name,
		&med.Dosage,
		&med.DosesPerDay,
		&daysRaw,
		&timesRaw,
		&med.StartDate,
		&endDate,
		&med.Active,
		&med.CreatedAt,
		&med.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(daysRaw, &med.SpecificDays); err != nil {
		return nil, fmt.Errorf("failed to unmarshal specific days: %w", err)
	}
	if err := json.Unmarshal(timesRaw, &med.ScheduledTimes); err != nil {
		return nil, fmt.Errorf("failed to unmarshal scheduled times: %w", err)
	}
	if endDate.Valid {
		d := endDate.Time
		med.EndDate = &d
	}

	return &med, nil
}
