package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dosewise/dosewise-api/internal/api/shared"
	"github.com/dosewise/dosewise-api/internal/domain"
	"github.com/dosewise/dosewise-api/internal/platform/logger"
	"github.com/dosewise/dosewise-api/internal/service"
)

// AdherenceHandler handles adherence-record HTTP requests.
type AdherenceHandler struct {
	adherenceService service.AdherenceService
	logger           *slog.Logger
}

// NewAdherenceHandler creates a new AdherenceHandler.
func NewAdherenceHandler(
	adherenceService service.AdherenceService,
	logger *slog.Logger,
) *AdherenceHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for AdherenceHandler")
	}

	return &AdherenceHandler{
		adherenceService: adherenceService,
		logger:           logger.With(slog.String("component", "adherence_handler")),
	}
}

// List handles GET /api/adherence requests.
// It returns a user's adherence records for a date range; from/to default to
// the last seven days.
func (h *AdherenceHandler) List(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, err := getQueryUUID(r, "user_id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	today := time.Now().UTC()
	from, err := getQueryDate(r, "from", today.AddDate(0, 0, -7))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	to, err := getQueryDate(r, "to", today)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	recs, err := h.adherenceService.List(r.Context(), userID, from, to)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	response := make([]AdherenceRecordResponse, 0, len(recs))
	for _, rec := range recs {
		response = append(response, adherenceToResponse(rec))
	}

	log.Debug("listed adherence records",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(response)))
	shared.RespondWithJSON(w, r, http.StatusOK, response)
}

// UpdateStatus handles POST /api/adherence/{id}/status requests.
// It moves a pending record to taken or skipped.
func (h *AdherenceHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req UpdateAdherenceStatusRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("failed to decode request body", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	var rec *domain.AdherenceRecord
	switch req.Status {
	case string(domain.AdherenceStatusTaken):
		takenAt := time.Now().UTC()
		if req.TakenAt != nil {
			takenAt = *req.TakenAt
		}
		rec, err = h.adherenceService.Confirm(r.Context(), id, takenAt, req.Notes)
	case string(domain.AdherenceStatusSkipped):
		rec, err = h.adherenceService.Skip(r.Context(), id, req.Notes)
	}

	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("updated adherence status",
		slog.String("adherence_id", id.String()),
		slog.String("status", req.Status))
	shared.RespondWithJSON(w, r, http.StatusOK, adherenceToResponse(rec))
}
