package progress

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/avast/retry-go"
	"github.com/google/uuid"
	"github.com/revisio/revisio-api/internal/domain"
	"github.com/revisio/revisio-api/internal/platform/logger"
	"github.com/revisio/revisio-api/internal/store"
)

// defaultSaveRetries bounds the re-read-and-reapply attempts on a storage
// version conflict.
const defaultSaveRetries = 3

// retryDelay is the initial backoff between conflicting save attempts.
const retryDelay = 25 * time.Millisecond

// Option configures an engine.
type Option func(*engine)

// WithAutoCompleteActive switches the session-start conflict policy from
// rejecting to the legacy force-complete behavior: a pre-existing active
// session is completed in place, unanswered items and all, before the new
// session starts. Off by default.
func WithAutoCompleteActive() Option {
	return func(e *engine) {
		e.autoCompleteActive = true
	}
}

// WithSaveRetries overrides the bounded retry count for storage version
// conflicts. Values below one are ignored.
func WithSaveRetries(retries int) Option {
	return func(e *engine) {
		if retries >= 1 {
			e.saveRetries = uint(retries)
		}
	}
}

// WithAnswerKey attaches the answer key used to derive choice-question
// correctness. Required for engines of kind domain.KindChoice.
func WithAnswerKey(answers store.AnswerKey) Option {
	return func(e *engine) {
		e.answers = answers
	}
}

// engine implements Service generically over one item kind.
type engine struct {
	kind               domain.ItemKind
	seriesStore        store.SeriesStore
	catalog            store.Catalog
	answers            store.AnswerKey
	autoCompleteActive bool
	saveRetries        uint
	logger             *slog.Logger
}

// NewService creates the lifecycle engine for one item kind.
func NewService(
	kind domain.ItemKind,
	seriesStore store.SeriesStore,
	catalog store.Catalog,
	log *slog.Logger,
	opts ...Option,
) Service {
	if !kind.Valid() {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("invalid item kind for progress engine")
	}
	if seriesStore == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("seriesStore cannot be nil")
	}
	if catalog == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("catalog cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	e := &engine{
		kind:        kind,
		seriesStore: seriesStore,
		catalog:     catalog,
		saveRetries: defaultSaveRetries,
		logger: log.With(
			slog.String("component", "progress_engine"),
			slog.String("kind", string(kind)),
		),
	}
	for _, opt := range opts {
		opt(e)
	}

	if kind == domain.KindChoice && e.answers == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("choice engine requires an answer key")
	}
	return e
}

// Ensure engine implements Service.
var _ Service = (*engine)(nil)

// CreateSeries implements Service.CreateSeries.
func (e *engine) CreateSeries(ctx context.Context, title string) (*domain.Series, error) {
	log := logger.FromContextOrDefault(ctx, e.logger)

	series, err := domain.NewSeries(e.kind, title)
	if err != nil {
		log.Warn("series validation failed during create",
			slog.String("error", err.Error()))
		return nil, err
	}

	if err := e.seriesStore.Create(ctx, series); err != nil {
		log.Error("failed to create series",
			slog.String("error", err.Error()),
			slog.String("series_id", series.ID.String()))
		return nil, fmt.Errorf("failed to create series: %w", err)
	}

	log.Info("series created",
		slog.String("series_id", series.ID.String()),
		slog.String("title", series.Title))
	return series, nil
}

// GetSeries implements Service.GetSeries.
func (e *engine) GetSeries(ctx context.Context, id uuid.UUID) (*domain.Series, error) {
	return e.seriesStore.GetByID(ctx, id)
}

// ListSeries implements Service.ListSeries.
func (e *engine) ListSeries(ctx context.Context) ([]*domain.Series, error) {
	return e.seriesStore.List(ctx, e.kind)
}

// StartSession implements Service.StartSession.
func (e *engine) StartSession(
	ctx context.Context,
	seriesID uuid.UUID,
	input StartSessionInput,
) (*StartSessionResult, error) {
	log := logger.FromContextOrDefault(ctx, e.logger)

	if len(input.ItemIDs) == 0 {
		return nil, domain.ErrNoItems
	}

	if err := e.checkItemsExist(ctx, input.ItemIDs); err != nil {
		log.Warn("session start referenced unknown items",
			slog.String("series_id", seriesID.String()),
			slog.String("error", err.Error()))
		return nil, err
	}

	var result StartSessionResult
	err := e.mutate(ctx, seriesID, func(series *domain.Series, now time.Time) error {
		session, err := series.StartSession(
			input.ItemIDs,
			input.GeneratedFrom,
			e.autoCompleteActive,
			now,
		)
		if err != nil {
			return err
		}
		result.Series = series
		result.Session = session
		return nil
	})
	if err != nil {
		return nil, err
	}

	summaries, err := e.catalog.FetchSummaries(ctx, input.ItemIDs)
	if err != nil {
		// The session is already persisted; the summaries only enrich the
		// response, so a fetch failure downgrades to an empty item list.
		log.Error("failed to fetch item summaries after session start",
			slog.String("series_id", seriesID.String()),
			slog.String("error", err.Error()))
		summaries = nil
	}
	result.Items = summaries

	log.Info("session started",
		slog.String("series_id", seriesID.String()),
		slog.Int("session_number", result.Session.Number),
		slog.Int("item_count", len(result.Session.Items)))
	return &result, nil
}

// RecordInteraction implements Service.RecordInteraction.
func (e *engine) RecordInteraction(
	ctx context.Context,
	seriesID uuid.UUID,
	sessionNumber int,
	itemID int64,
	interaction *domain.Interaction,
) (*RecordResult, error) {
	log := logger.FromContextOrDefault(ctx, e.logger)

	if err := interaction.Validate(e.kind); err != nil {
		log.Warn("interaction payload validation failed",
			slog.String("series_id", seriesID.String()),
			slog.Int("session_number", sessionNumber),
			slog.Int64("item_id", itemID),
			slog.String("error", err.Error()))
		return nil, err
	}

	if e.kind == domain.KindChoice {
		answer, err := e.answers.CorrectAnswer(ctx, itemID)
		if err != nil {
			return nil, err
		}
		interaction.Choice.IsCorrect = interaction.Choice.SelectedAnswer == answer
	}

	err := e.mutate(ctx, seriesID, func(series *domain.Series, now time.Time) error {
		return series.RecordInteraction(sessionNumber, itemID, interaction, now)
	})
	if err != nil {
		return nil, err
	}

	log.Debug("interaction recorded",
		slog.String("series_id", seriesID.String()),
		slog.Int("session_number", sessionNumber),
		slog.Int64("item_id", itemID),
		slog.Bool("correct", interaction.Correct()))
	return &RecordResult{Interaction: interaction, IsCorrect: interaction.Correct()}, nil
}

// CompleteSession implements Service.CompleteSession.
func (e *engine) CompleteSession(
	ctx context.Context,
	seriesID uuid.UUID,
	sessionNumber int,
) (*domain.Session, error) {
	log := logger.FromContextOrDefault(ctx, e.logger)

	var completed *domain.Session
	err := e.mutate(ctx, seriesID, func(series *domain.Series, now time.Time) error {
		session, err := series.CompleteSession(sessionNumber, now)
		if err != nil {
			return err
		}
		completed = session
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("session completed",
		slog.String("series_id", seriesID.String()),
		slog.Int("session_number", sessionNumber))
	return completed, nil
}

// CompleteSeries implements Service.CompleteSeries.
func (e *engine) CompleteSeries(ctx context.Context, seriesID uuid.UUID) (*domain.Series, error) {
	log := logger.FromContextOrDefault(ctx, e.logger)

	var completed *domain.Series
	err := e.mutate(ctx, seriesID, func(series *domain.Series, now time.Time) error {
		if err := series.Complete(now); err != nil {
			return err
		}
		completed = series
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("series completed", slog.String("series_id", seriesID.String()))
	return completed, nil
}

// DeleteSession implements Service.DeleteSession. Removing the last session
// cascades into deleting the series itself, so a series is never persisted
// with zero sessions. The cascade delete is version-guarded: a write that
// commits between the read and the delete (a racing completeSession makes
// the session permanent) surfaces as a version conflict, and the retry
// re-reads and reapplies against the new state instead of destroying it.
func (e *engine) DeleteSession(
	ctx context.Context,
	seriesID uuid.UUID,
	sessionNumber int,
) (*DeleteSessionResult, error) {
	log := logger.FromContextOrDefault(ctx, e.logger)

	var result *DeleteSessionResult
	err := e.withRetry(ctx, func() error {
		series, err := e.seriesStore.GetByID(ctx, seriesID)
		if err != nil {
			return err
		}

		empty, err := series.DeleteSession(sessionNumber)
		if err != nil {
			return err
		}

		if empty {
			if err := e.seriesStore.DeleteVersion(ctx, seriesID, series.Version); err != nil {
				return err
			}
			result = &DeleteSessionResult{SeriesDeleted: true}
			return nil
		}

		if err := e.seriesStore.Save(ctx, series); err != nil {
			return err
		}
		result = &DeleteSessionResult{RemainingSessions: len(series.Sessions)}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("session deleted",
		slog.String("series_id", seriesID.String()),
		slog.Int("session_number", sessionNumber),
		slog.Bool("series_deleted", result.SeriesDeleted))
	return result, nil
}

// DeleteSeries implements Service.DeleteSeries.
func (e *engine) DeleteSeries(ctx context.Context, seriesID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, e.logger)

	if err := e.seriesStore.Delete(ctx, seriesID); err != nil {
		return err
	}

	log.Info("series deleted", slog.String("series_id", seriesID.String()))
	return nil
}

// mutate runs one read-modify-write cycle against the series under the
// engine's retry policy: load the document, apply the transition, save with
// the version check, and on a version conflict re-read and reapply.
func (e *engine) mutate(
	ctx context.Context,
	seriesID uuid.UUID,
	apply func(series *domain.Series, now time.Time) error,
) error {
	return e.withRetry(ctx, func() error {
		series, err := e.seriesStore.GetByID(ctx, seriesID)
		if err != nil {
			return err
		}
		if err := apply(series, time.Now().UTC()); err != nil {
			return err
		}
		return e.seriesStore.Save(ctx, series)
	})
}

// withRetry executes fn, retrying only on storage version conflicts, a
// bounded number of times. Exhausted retries surface as ErrConcurrentUpdate.
func (e *engine) withRetry(ctx context.Context, fn func() error) error {
	err := retry.Do(
		fn,
		retry.Context(ctx),
		retry.Attempts(e.saveRetries),
		retry.Delay(retryDelay),
		retry.RetryIf(store.IsRetryable),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(attempt uint, err error) {
			e.logger.Debug("retrying series mutation after version conflict",
				slog.Uint64("attempt", uint64(attempt)+1),
				slog.String("error", err.Error()))
		}),
	)
	if err != nil && store.IsRetryable(err) {
		return ErrConcurrentUpdate
	}
	return err
}

// checkItemsExist validates every item identifier against the catalog and
// reports the missing ones, sorted, in a MissingItemsError.
func (e *engine) checkItemsExist(ctx context.Context, itemIDs []int64) error {
	exists, err := e.catalog.Exists(ctx, itemIDs)
	if err != nil {
		return fmt.Errorf("failed to check catalog items: %w", err)
	}

	var missing []int64
	seen := make(map[int64]bool, len(itemIDs))
	for _, id := range itemIDs {
		if !exists[id] && !seen[id] {
			missing = append(missing, id)
			seen[id] = true
		}
	}
	if len(missing) == 0 {
		return nil
	}

	sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
	return &domain.MissingItemsError{Kind: e.kind, ItemIDs: missing}
}
