package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dosewise/dosewise-api/internal/dispatch"
	"github.com/dosewise/dosewise-api/internal/domain"
	"github.com/dosewise/dosewise-api/internal/service"
	"github.com/dosewise/dosewise-api/internal/store"
)

// fakeGenerationService returns a canned result or error.
type fakeGenerationService struct {
	result *service.GenerationResult
	err    error
}

func (f *fakeGenerationService) RunGeneration(_ context.Context, _ time.Time) (*service.GenerationResult, error) {
	return f.result, f.err
}

// emptyReminderStore satisfies store.ReminderStore with no due reminders.
type emptyReminderStore struct{}

func (emptyReminderStore) CreateMultiple(context.Context, []*domain.ReminderRecord) error {
	return nil
}

func (emptyReminderStore) GetByID(context.Context, uuid.UUID) (*domain.ReminderRecord, error) {
	return nil, store.ErrReminderNotFound
}

func (emptyReminderStore) Exists(context.Context, uuid.UUID, uuid.UUID, time.Time) (bool, error) {
	return false, nil
}

func (emptyReminderStore) ListDue(context.Context, time.Time, int) ([]*domain.ReminderRecord, error) {
	return nil, nil
}

func (emptyReminderStore) Update(context.Context, *domain.ReminderRecord) error { return nil }

// okSender always succeeds.
type okSender struct{}

func (okSender) Send(context.Context, *domain.ReminderRecord) error { return nil }

func newJobsRouter(t *testing.T, gen service.GenerationService) http.Handler {
	t.Helper()

	log := testLogger()
	scanner, err := dispatch.NewScanner(
		emptyReminderStore{},
		dispatch.Senders{Email: okSender{}, SMS: okSender{}, Push: okSender{}},
		dispatch.DefaultRetryPolicy(),
		dispatch.DefaultScannerConfig(),
		log)
	require.NoError(t, err)

	adherence := newFakeAdherenceService()
	adherence.swept = 3

	h := NewJobsHandler(gen, adherence, scanner, log)
	r := chi.NewRouter()
	r.Post("/api/jobs/generation", h.TriggerGeneration)
	r.Post("/api/jobs/dispatch", h.TriggerDispatch)
	r.Post("/api/jobs/sweep", h.TriggerSweep)
	return r
}

func TestJobsHandler_TriggerGeneration(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerationService{result: &service.GenerationResult{
		MedicationsSeen:  2,
		AdherenceCreated: 8,
		RemindersCreated: 4,
	}}

	req := httptest.NewRequest(http.MethodPost, "/api/jobs/generation", nil)
	rr := httptest.NewRecorder()
	newJobsRouter(t, gen).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var got service.GenerationResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, 8, got.AdherenceCreated)
	assert.Equal(t, 4, got.RemindersCreated)
}

func TestJobsHandler_TriggerGenerationFailure(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerationService{err: errors.New("database unavailable")}

	req := httptest.NewRequest(http.MethodPost, "/api/jobs/generation", nil)
	rr := httptest.NewRecorder()
	newJobsRouter(t, gen).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	// The raw error never reaches the client.
	assert.NotContains(t, rr.Body.String(), "database unavailable")
}

func TestJobsHandler_TriggerDispatch(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, "/api/jobs/dispatch", nil)
	rr := httptest.NewRecorder()
	newJobsRouter(t, &fakeGenerationService{result: &service.GenerationResult{}}).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var got dispatch.ScanResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, dispatch.ScanResult{}, got)
}

func TestJobsHandler_TriggerSweep(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, "/api/jobs/sweep", nil)
	rr := httptest.NewRecorder()
	newJobsRouter(t, &fakeGenerationService{result: &service.GenerationResult{}}).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var got map[string]int64
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, int64(3), got["swept"])
}
