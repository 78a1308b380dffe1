// Package api provides HTTP handlers for the API.
package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/revisio/revisio-api/internal/api/shared"
	"github.com/revisio/revisio-api/internal/domain"
	"github.com/revisio/revisio-api/internal/platform/logger"
	"github.com/revisio/revisio-api/internal/redact"
	"github.com/revisio/revisio-api/internal/service/progress"
)

// SeriesHandler serves the series/session lifecycle routes for one item
// kind. The same handler code is mounted three times, each bound to its own
// kind and engine.
type SeriesHandler struct {
	kind    domain.ItemKind
	service progress.Service
	logger  *slog.Logger
}

// NewSeriesHandler creates a SeriesHandler for the given kind.
func NewSeriesHandler(
	kind domain.ItemKind,
	service progress.Service,
	log *slog.Logger,
) *SeriesHandler {
	if service == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("service cannot be nil for SeriesHandler")
	}
	if log == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for SeriesHandler")
	}

	return &SeriesHandler{
		kind:    kind,
		service: service,
		logger: log.With(
			slog.String("component", "series_handler"),
			slog.String("kind", string(kind)),
		),
	}
}

// Routes returns the router for this kind's series endpoints.
func (h *SeriesHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.CreateSeries)
	r.Get("/", h.ListSeries)
	r.Route("/{seriesID}", func(r chi.Router) {
		r.Get("/", h.GetSeries)
		r.Delete("/", h.DeleteSeries)
		r.Post("/complete", h.CompleteSeries)
		r.Post("/sessions", h.StartSession)
		r.Route("/sessions/{sessionNumber}", func(r chi.Router) {
			r.Post("/complete", h.CompleteSession)
			r.Delete("/", h.DeleteSession)
			r.Post("/items/{itemID}/interaction", h.RecordInteraction)
		})
	})
	return r
}

// CreateSeries handles POST / requests.
func (h *SeriesHandler) CreateSeries(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req CreateSeriesRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		log.Warn("validation error", slog.String("error", redact.Error(err)))
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Validation error", nil, err)
		return
	}

	series, err := h.service.CreateSeries(r.Context(), req.Title)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	log.Debug("series created", slog.String("series_id", series.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, seriesToResponse(series, false))
}

// ListSeries handles GET / requests.
func (h *SeriesHandler) ListSeries(w http.ResponseWriter, r *http.Request) {
	all, err := h.service.ListSeries(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	responses := make([]SeriesResponse, len(all))
	for i, series := range all {
		responses[i] = seriesToResponse(series, false)
	}
	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

// GetSeries handles GET /{seriesID} requests.
func (h *SeriesHandler) GetSeries(w http.ResponseWriter, r *http.Request) {
	seriesID, ok := h.seriesID(w, r)
	if !ok {
		return
	}

	series, err := h.service.GetSeries(r.Context(), seriesID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, seriesToResponse(series, true))
}

// DeleteSeries handles DELETE /{seriesID} requests. Deletion is
// unconditional and removes every embedded session regardless of status.
func (h *SeriesHandler) DeleteSeries(w http.ResponseWriter, r *http.Request) {
	seriesID, ok := h.seriesID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteSeries(r.Context(), seriesID); err != nil {
		h.respondError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, ConfirmationResponse{Success: true})
}

// CompleteSeries handles POST /{seriesID}/complete requests.
func (h *SeriesHandler) CompleteSeries(w http.ResponseWriter, r *http.Request) {
	seriesID, ok := h.seriesID(w, r)
	if !ok {
		return
	}

	if _, err := h.service.CompleteSeries(r.Context(), seriesID); err != nil {
		h.respondError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, ConfirmationResponse{Success: true})
}

// StartSession handles POST /{seriesID}/sessions requests.
func (h *SeriesHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	seriesID, ok := h.seriesID(w, r)
	if !ok {
		return
	}

	var req StartSessionRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		log.Warn("validation error", slog.String("error", redact.Error(err)))
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Validation error", nil, err)
		return
	}

	result, err := h.service.StartSession(r.Context(), seriesID, progress.StartSessionInput{
		ItemIDs:       req.ItemIDs,
		GeneratedFrom: req.GeneratedFrom,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, startToResponse(result))
}

// RecordInteraction handles
// POST /{seriesID}/sessions/{sessionNumber}/items/{itemID}/interaction requests.
func (h *SeriesHandler) RecordInteraction(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	seriesID, ok := h.seriesID(w, r)
	if !ok {
		return
	}
	sessionNumber, ok := h.sessionNumber(w, r)
	if !ok {
		return
	}
	itemID, err := strconv.ParseInt(chi.URLParam(r, "itemID"), 10, 64)
	if err != nil || itemID < 0 {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid item ID")
		return
	}

	var req RecordInteractionRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		log.Warn("validation error", slog.String("error", redact.Error(err)))
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Validation error", nil, err)
		return
	}

	result, err := h.service.RecordInteraction(
		r.Context(),
		seriesID,
		sessionNumber,
		itemID,
		req.toInteraction(h.kind),
	)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, RecordInteractionResponse{
		Success:     true,
		IsCorrect:   result.IsCorrect,
		Interaction: result.Interaction,
	})
}

// CompleteSession handles POST /{seriesID}/sessions/{sessionNumber}/complete requests.
func (h *SeriesHandler) CompleteSession(w http.ResponseWriter, r *http.Request) {
	seriesID, ok := h.seriesID(w, r)
	if !ok {
		return
	}
	sessionNumber, ok := h.sessionNumber(w, r)
	if !ok {
		return
	}

	if _, err := h.service.CompleteSession(r.Context(), seriesID, sessionNumber); err != nil {
		h.respondError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, ConfirmationResponse{Success: true})
}

// DeleteSession handles DELETE /{seriesID}/sessions/{sessionNumber} requests.
func (h *SeriesHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	seriesID, ok := h.seriesID(w, r)
	if !ok {
		return
	}
	sessionNumber, ok := h.sessionNumber(w, r)
	if !ok {
		return
	}

	result, err := h.service.DeleteSession(r.Context(), seriesID, sessionNumber)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, DeleteSessionResponse{
		Success:           true,
		SeriesDeleted:     result.SeriesDeleted,
		RemainingSessions: result.RemainingSessions,
	})
}

// seriesID extracts and parses the series ID path parameter, writing the
// error response itself when the parameter is missing or malformed.
func (h *SeriesHandler) seriesID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := chi.URLParam(r, "seriesID")
	if raw == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Series ID is required")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid series ID format")
		return uuid.Nil, false
	}
	return id, true
}

// sessionNumber extracts and parses the session number path parameter.
func (h *SeriesHandler) sessionNumber(w http.ResponseWriter, r *http.Request) (int, bool) {
	number, err := strconv.Atoi(chi.URLParam(r, "sessionNumber"))
	if err != nil || number < 1 {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid session number")
		return 0, false
	}
	return number, true
}

// respondError maps an engine error to its status code, sanitized message
// and detail map, logging the full error.
func (h *SeriesHandler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	shared.RespondWithErrorAndLog(
		w,
		r,
		MapErrorToStatusCode(err),
		GetSafeErrorMessage(err),
		ErrorDetails(err),
		err,
	)
}
