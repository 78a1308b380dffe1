package api

import (
	"errors"
	"net/http"

	"github.com/revisio/revisio-api/internal/domain"
	"github.com/revisio/revisio-api/internal/service/progress"
	"github.com/revisio/revisio-api/internal/store"
)

// MapErrorToStatusCode maps engine errors to HTTP status codes based on the
// error taxonomy. Validation failures and the duplicate-active-session
// conflict map to 400, absent entities to 404, the remaining state-machine
// conflicts to 409, and exhausted optimistic-concurrency retries to 503.
func MapErrorToStatusCode(err error) int {
	switch {
	// The active-session conflict is surfaced as a bad request, not 409,
	// to match the transport contract for session start.
	case errors.Is(err, domain.ErrActiveSessionExists):
		return http.StatusBadRequest

	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest

	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, store.ErrSeriesNotFound):
		return http.StatusNotFound

	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict

	case errors.Is(err, progress.ErrConcurrentUpdate):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-facing message for the
// error. Internal detail never leaks: unknown errors collapse to a generic
// message while the full error goes to the logs.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, domain.ErrActiveSessionExists):
		return "an active session already exists"

	case errors.Is(err, domain.ErrInteractionRecorded):
		return "interaction already recorded"

	case errors.Is(err, domain.ErrSessionCompleted):
		return "cannot record on completed session"

	case errors.Is(err, domain.ErrSessionPermanent):
		return "cannot delete completed session"

	case errors.Is(err, domain.ErrSessionAlreadyCompleted),
		errors.Is(err, domain.ErrSeriesAlreadyCompleted):
		return "already completed"

	case errors.Is(err, domain.ErrSeriesNotFound):
		return "series not found"

	case errors.Is(err, domain.ErrSessionNotFound):
		return "session not found"

	case errors.Is(err, domain.ErrItemNotFound):
		return "item not found"

	case errors.Is(err, progress.ErrConcurrentUpdate):
		return "series is being modified concurrently, try again"

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrNotFound):
		// Domain sentinel messages are written for end users.
		return err.Error()

	default:
		return "An unexpected error occurred"
	}
}

// ErrorDetails extracts the field-level detail map for errors that carry
// structured context, nil otherwise.
func ErrorDetails(err error) map[string]interface{} {
	var incomplete *domain.IncompleteSessionError
	if errors.As(err, &incomplete) {
		return map[string]interface{}{
			"unanswered_count": incomplete.Unanswered,
		}
	}

	var missing *domain.MissingItemsError
	if errors.As(err, &missing) {
		return map[string]interface{}{
			"missing_item_ids": missing.ItemIDs,
		}
	}

	return nil
}
