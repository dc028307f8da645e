package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dosewise/dosewise-api/internal/api/shared"
	"github.com/dosewise/dosewise-api/internal/dispatch"
	"github.com/dosewise/dosewise-api/internal/platform/logger"
	"github.com/dosewise/dosewise-api/internal/service"
)

// JobsHandler exposes manual triggers for the background jobs. The endpoints
// run the same code paths as the scheduled triggers, so an operator can force
// a run (after a config fix, say) without waiting for the next cron firing.
type JobsHandler struct {
	generationService service.GenerationService
	adherenceService  service.AdherenceService
	scanner           *dispatch.Scanner
	logger            *slog.Logger
}

// NewJobsHandler creates a new JobsHandler.
func NewJobsHandler(
	generationService service.GenerationService,
	adherenceService service.AdherenceService,
	scanner *dispatch.Scanner,
	logger *slog.Logger,
) *JobsHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for JobsHandler")
	}

	return &JobsHandler{
		generationService: generationService,
		adherenceService:  adherenceService,
		scanner:           scanner,
		logger:            logger.With(slog.String("component", "jobs_handler")),
	}
}

// TriggerGeneration handles POST /api/jobs/generation requests.
// It runs one generation pass and returns its result counts.
func (h *JobsHandler) TriggerGeneration(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	result, err := h.generationService.RunGeneration(r.Context(), time.Now().UTC())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			http.StatusInternalServerError, "Generation run failed", err)
		return
	}

	log.Info("manual generation run completed",
		slog.Int("adherence_created", result.AdherenceCreated),
		slog.Int("reminders_created", result.RemindersCreated),
		slog.Int("medication_errors", len(result.Errors)))
	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

// TriggerDispatch handles POST /api/jobs/dispatch requests.
// It runs one dispatch scan pass and returns its result counts.
func (h *JobsHandler) TriggerDispatch(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	result, err := h.scanner.ScanOnce(r.Context(), time.Now().UTC())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			http.StatusInternalServerError, "Dispatch scan failed", err)
		return
	}

	log.Info("manual dispatch scan completed",
		slog.Int("processed", result.Processed),
		slog.Int("sent", result.Sent),
		slog.Int("failed", result.Failed))
	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

// TriggerSweep handles POST /api/jobs/sweep requests.
// It runs the missed-dose sweep and returns how many records transitioned.
func (h *JobsHandler) TriggerSweep(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	swept, err := h.adherenceService.SweepMissed(r.Context(), time.Now().UTC())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			http.StatusInternalServerError, "Missed sweep failed", err)
		return
	}

	log.Info("manual missed sweep completed", slog.Int64("records_swept", swept))
	shared.RespondWithJSON(w, r, http.StatusOK, map[string]int64{"swept": swept})
}
