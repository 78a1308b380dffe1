// Package progress implements the series/session lifecycle engine. The
// state machine itself lives on the domain types; this package wires it to
// storage with single-writer-wins semantics: every mutation loads the full
// series, applies the transition in memory and saves the document back under
// an optimistic version check, retrying a bounded number of times on
// conflict. One engine serves all three item kinds; only the catalog and the
// correctness derivation differ per kind.
package progress

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/revisio/revisio-api/internal/domain"
)

// ErrConcurrentUpdate is returned when the bounded re-read-and-reapply
// retries on a storage version conflict are exhausted. It is transient:
// the caller may repeat the logical operation.
var ErrConcurrentUpdate = errors.New("concurrent update: series was modified, retries exhausted")

// StartSessionInput carries the parameters for starting a session.
type StartSessionInput struct {
	// ItemIDs are the catalog identifiers the session covers, in order.
	ItemIDs []int64

	// GeneratedFrom optionally records the item the session was generated
	// from. Provenance only; no referential integrity beyond non-negativity.
	GeneratedFrom *int64
}

// StartSessionResult is the outcome of a successful session start.
type StartSessionResult struct {
	Series  *domain.Series
	Session *domain.Session

	// Items holds the catalog display summaries for the session's items,
	// fetched to enrich the start-session response.
	Items []domain.ItemSummary
}

// RecordResult is the outcome of a successful interaction recording.
type RecordResult struct {
	// Interaction is the normalized stored payload, including any fields
	// derived during validation (table accuracy, choice correctness).
	Interaction *domain.Interaction

	// IsCorrect is the correctness signal for the recorded payload.
	IsCorrect bool
}

// DeleteSessionResult reports the effect of a session deletion.
type DeleteSessionResult struct {
	// SeriesDeleted is true when removing the session emptied the series and
	// the whole series was deleted as a cascading side effect.
	SeriesDeleted bool

	// RemainingSessions is the number of sessions left in the series, zero
	// when SeriesDeleted is true.
	RemainingSessions int
}

// Service provides the lifecycle operations over one item kind's series.
// The application wires three instances, one per kind, all sharing the same
// engine implementation.
type Service interface {
	// CreateSeries creates an active series with the given title.
	// Fails with a validation error for an empty or overlong title.
	CreateSeries(ctx context.Context, title string) (*domain.Series, error)

	// GetSeries retrieves a series with all embedded sessions.
	GetSeries(ctx context.Context, id uuid.UUID) (*domain.Series, error)

	// ListSeries returns all series of the engine's kind, newest first.
	ListSeries(ctx context.Context) ([]*domain.Series, error)

	// StartSession starts a new session on the series. Every item identifier
	// must resolve against the catalog; unknown ids fail with a
	// domain.MissingItemsError. A pre-existing active session fails the start
	// with domain.ErrActiveSessionExists unless the engine was configured
	// with WithAutoCompleteActive.
	StartSession(ctx context.Context, seriesID uuid.UUID, input StartSessionInput) (*StartSessionResult, error)

	// RecordInteraction validates and stores the write-once interaction for
	// one item of an active session. For choice series the correctness flag
	// is derived from the catalog's answer key, never taken from the caller.
	RecordInteraction(
		ctx context.Context,
		seriesID uuid.UUID,
		sessionNumber int,
		itemID int64,
		interaction *domain.Interaction,
	) (*RecordResult, error)

	// CompleteSession completes an active session once every item entry
	// carries an interaction.
	CompleteSession(ctx context.Context, seriesID uuid.UUID, sessionNumber int) (*domain.Session, error)

	// CompleteSeries completes the series. Caller-driven: it does not require
	// the sessions to be completed.
	CompleteSeries(ctx context.Context, seriesID uuid.UUID) (*domain.Series, error)

	// DeleteSession removes an incomplete session. Deleting the last session
	// cascades into deleting the series itself.
	DeleteSession(ctx context.Context, seriesID uuid.UUID, sessionNumber int) (*DeleteSessionResult, error)

	// DeleteSeries deletes the series and all embedded sessions regardless
	// of status.
	DeleteSeries(ctx context.Context, seriesID uuid.UUID) error
}
