package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dosewise/dosewise-api/internal/domain"
	"github.com/dosewise/dosewise-api/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeMedicationStore is an in-memory MedicationStore for service tests.
type fakeMedicationStore struct {
	mu      sync.Mutex
	meds    map[uuid.UUID]*domain.Medication
	findErr error
}

func newFakeMedicationStore() *fakeMedicationStore {
	return &fakeMedicationStore{meds: make(map[uuid.UUID]*domain.Medication)}
}

func (f *fakeMedicationStore) Create(_ context.Context, med *domain.Medication) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.meds[med.ID] = med
	return nil
}

func (f *fakeMedicationStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Medication, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	med, ok := f.meds[id]
	if !ok {
		return nil, store.ErrMedicationNotFound
	}
	return med, nil
}

func (f *fakeMedicationStore) FindActiveScheduled(_ context.Context) ([]*domain.Medication, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Medication
	for _, med := range f.meds {
		if med.Active && len(med.ScheduledTimes) > 0 {
			out = append(out, med)
		}
	}
	// Stable order keeps test assertions deterministic.
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeMedicationStore) Update(_ context.Context, med *domain.Medication) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.meds[med.ID]; !ok {
		return store.ErrMedicationNotFound
	}
	f.meds[med.ID] = med
	return nil
}

// adherenceKey mirrors the identity key the real store enforces uniquely.
func adherenceKey(userID, medicationID uuid.UUID, date time.Time, tod domain.TimeOfDay) string {
	return fmt.Sprintf("%s|%s|%s|%s",
		userID, medicationID, domain.DateOf(date).Format("2006-01-02"), tod)
}

// fakeAdherenceStore is an in-memory AdherenceStore enforcing the identity
// key the way the unique index would.
type fakeAdherenceStore struct {
	mu        sync.Mutex
	byID      map[uuid.UUID]*domain.AdherenceRecord
	byKey     map[string]uuid.UUID
	createErr error

	// existsAlwaysFalse simulates the race where another run inserts a key
	// between the existence check and the insert.
	existsAlwaysFalse bool
}

func newFakeAdherenceStore() *fakeAdherenceStore {
	return &fakeAdherenceStore{
		byID:  make(map[uuid.UUID]*domain.AdherenceRecord),
		byKey: make(map[string]uuid.UUID),
	}
}

func (f *fakeAdherenceStore) Create(_ context.Context, rec *domain.AdherenceRecord) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	key := adherenceKey(rec.UserID, rec.MedicationID, rec.ScheduledDate, rec.ScheduledTime)
	if _, ok := f.byKey[key]; ok {
		return store.ErrDuplicateAdherence
	}
	cp := *rec
	f.byID[rec.ID] = &cp
	f.byKey[key] = rec.ID
	return nil
}

func (f *fakeAdherenceStore) GetByID(_ context.Context, id uuid.UUID) (*domain.AdherenceRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.byID[id]
	if !ok {
		return nil, store.ErrAdherenceNotFound
	}
	cp := *rec
	return &cp, nil
}

func (f *fakeAdherenceStore) GetByKey(
	_ context.Context,
	userID, medicationID uuid.UUID,
	scheduledDate time.Time,
	scheduledTime domain.TimeOfDay,
) (*domain.AdherenceRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.byKey[adherenceKey(userID, medicationID, scheduledDate, scheduledTime)]
	if !ok {
		return nil, store.ErrAdherenceNotFound
	}
	cp := *f.byID[id]
	return &cp, nil
}

func (f *fakeAdherenceStore) Exists(
	_ context.Context,
	userID, medicationID uuid.UUID,
	scheduledDate time.Time,
	scheduledTime domain.TimeOfDay,
) (bool, error) {
	if f.existsAlwaysFalse {
		return false, nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.byKey[adherenceKey(userID, medicationID, scheduledDate, scheduledTime)]
	return ok, nil
}

func (f *fakeAdherenceStore) Update(_ context.Context, rec *domain.AdherenceRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[rec.ID]; !ok {
		return store.ErrAdherenceNotFound
	}
	cp := *rec
	f.byID[rec.ID] = &cp
	return nil
}

func (f *fakeAdherenceStore) ListByUser(
	_ context.Context,
	userID uuid.UUID,
	from, to time.Time,
) ([]*domain.AdherenceRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.AdherenceRecord
	for _, rec := range f.byID {
		if rec.UserID != userID {
			continue
		}
		if rec.ScheduledDate.Before(domain.DateOf(from)) || rec.ScheduledDate.After(domain.DateOf(to)) {
			continue
		}
		cp := *rec
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ScheduledDate.Equal(out[j].ScheduledDate) {
			return out[i].ScheduledDate.Before(out[j].ScheduledDate)
		}
		return out[i].ScheduledTime.Before(out[j].ScheduledTime)
	})
	return out, nil
}

func (f *fakeAdherenceStore) MarkMissedOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var swept int64
	for _, rec := range f.byID {
		if rec.Status != domain.AdherenceStatusPending {
			continue
		}
		// Mirrors the SQL sweep: the whole scheduled day must be over.
		dayEnd := rec.ScheduledDate.AddDate(0, 0, 1)
		if dayEnd.Before(cutoff) {
			rec.Status = domain.AdherenceStatusMissed
			rec.UpdatedAt = time.Now().UTC()
			swept++
		}
	}
	return swept, nil
}

func (f *fakeAdherenceStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byID)
}

// reminderKey mirrors the reminder identity key.
func reminderKey(userID, medicationID uuid.UUID, at time.Time) string {
	return fmt.Sprintf("%s|%s|%d", userID, medicationID, at.UTC().Unix())
}

// fakeReminderStore is an in-memory ReminderStore enforcing the identity key.
type fakeReminderStore struct {
	mu    sync.Mutex
	byID  map[uuid.UUID]*domain.ReminderRecord
	byKey map[string]uuid.UUID
}

func newFakeReminderStore() *fakeReminderStore {
	return &fakeReminderStore{
		byID:  make(map[uuid.UUID]*domain.ReminderRecord),
		byKey: make(map[string]uuid.UUID),
	}
}

func (f *fakeReminderStore) CreateMultiple(_ context.Context, recs []*domain.ReminderRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	// All-or-nothing, like the transactional bulk insert.
	for _, rec := range recs {
		if _, ok := f.byKey[reminderKey(rec.UserID, rec.MedicationID, rec.ScheduledAt)]; ok {
			return store.ErrDuplicateReminder
		}
	}
	for _, rec := range recs {
		cp := *rec
		f.byID[rec.ID] = &cp
		f.byKey[reminderKey(rec.UserID, rec.MedicationID, rec.ScheduledAt)] = rec.ID
	}
	return nil
}

func (f *fakeReminderStore) GetByID(_ context.Context, id uuid.UUID) (*domain.ReminderRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.byID[id]
	if !ok {
		return nil, store.ErrReminderNotFound
	}
	cp := *rec
	return &cp, nil
}

func (f *fakeReminderStore) Exists(_ context.Context, userID, medicationID uuid.UUID, scheduledAt time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.byKey[reminderKey(userID, medicationID, scheduledAt)]
	return ok, nil
}

func (f *fakeReminderStore) ListDue(_ context.Context, now time.Time, limit int) ([]*domain.ReminderRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.ReminderRecord
	for _, rec := range f.byID {
		if rec.Due(now) {
			cp := *rec
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.Before(out[j].ScheduledAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeReminderStore) Update(_ context.Context, rec *domain.ReminderRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[rec.ID]; !ok {
		return store.ErrReminderNotFound
	}
	cp := *rec
	f.byID[rec.ID] = &cp
	return nil
}

func (f *fakeReminderStore) all() []*domain.ReminderRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.ReminderRecord
	for _, rec := range f.byID {
		cp := *rec
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.Before(out[j].ScheduledAt) })
	return out
}

// fakePreferenceStore is an in-memory PreferenceStore.
type fakePreferenceStore struct {
	mu    sync.Mutex
	prefs map[uuid.UUID]*domain.NotificationPreferences
}

func newFakePreferenceStore() *fakePreferenceStore {
	return &fakePreferenceStore{prefs: make(map[uuid.UUID]*domain.NotificationPreferences)}
}

func (f *fakePreferenceStore) GetByUserID(_ context.Context, userID uuid.UUID) (*domain.NotificationPreferences, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.prefs[userID]
	if !ok {
		return nil, store.ErrPreferencesNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePreferenceStore) Upsert(_ context.Context, prefs *domain.NotificationPreferences) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *prefs
	f.prefs[prefs.UserID] = &cp
	return nil
}
