package progress_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revisio/revisio-api/internal/domain"
	"github.com/revisio/revisio-api/internal/platform/memory"
	"github.com/revisio/revisio-api/internal/service/progress"
	"github.com/revisio/revisio-api/internal/store"
)

// newFlashcardService wires an engine of kind flashcard over in-memory
// stores, seeding the catalog with items 1..5.
func newFlashcardService(t *testing.T, opts ...progress.Option) (progress.Service, *memory.SeriesStore) {
	t.Helper()
	seriesStore := memory.NewSeriesStore()
	catalog := memory.NewCatalog(
		domain.ItemSummary{ItemID: 1, Prompt: "What is a cell?"},
		domain.ItemSummary{ItemID: 2, Prompt: "What is a gene?"},
		domain.ItemSummary{ItemID: 3, Prompt: "What is mitosis?"},
		domain.ItemSummary{ItemID: 4, Prompt: "What is an enzyme?"},
		domain.ItemSummary{ItemID: 5, Prompt: "What is osmosis?"},
	)
	svc := progress.NewService(domain.KindFlashcard, seriesStore, catalog, slog.Default(), opts...)
	return svc, seriesStore
}

func flashcardInteraction(outcome domain.FlashcardOutcome) *domain.Interaction {
	return &domain.Interaction{
		Difficulty:       domain.DifficultyMedium,
		Confidence:       domain.ConfidenceHigh,
		TimeSpentSeconds: 30,
		Flashcard:        &domain.FlashcardResult{Outcome: outcome},
	}
}

func TestFlashcardSeriesLifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newFlashcardService(t)

	series, err := svc.CreateSeries(ctx, "Biology Review")
	require.NoError(t, err)
	require.Equal(t, domain.SeriesActive, series.Status)

	started, err := svc.StartSession(ctx, series.ID, progress.StartSessionInput{
		ItemIDs: []int64{1, 2, 3},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, started.Session.Number)
	require.Len(t, started.Session.Items, 3)
	for _, entry := range started.Session.Items {
		assert.Nil(t, entry.Interaction)
	}
	require.Len(t, started.Items, 3)
	assert.Equal(t, "What is a cell?", started.Items[0].Prompt)

	// Record one interaction; the second write on the same item conflicts
	recorded, err := svc.RecordInteraction(ctx, series.ID, 1, 2, flashcardInteraction(domain.OutcomeRight))
	require.NoError(t, err)
	assert.True(t, recorded.IsCorrect)

	_, err = svc.RecordInteraction(ctx, series.ID, 1, 2, flashcardInteraction(domain.OutcomeWrong))
	require.ErrorIs(t, err, domain.ErrInteractionRecorded)
	require.ErrorIs(t, err, domain.ErrConflict)

	// First value is unchanged after the failed second write
	reloaded, err := svc.GetSeries(ctx, series.ID)
	require.NoError(t, err)
	stored := reloaded.Session(1).Items[1].Interaction
	require.NotNil(t, stored)
	assert.Equal(t, domain.OutcomeRight, stored.Flashcard.Outcome)

	// Completion fails while two items are unanswered
	_, err = svc.CompleteSession(ctx, series.ID, 1)
	var incomplete *domain.IncompleteSessionError
	require.ErrorAs(t, err, &incomplete)
	assert.Equal(t, 2, incomplete.Unanswered)

	_, err = svc.RecordInteraction(ctx, series.ID, 1, 1, flashcardInteraction(domain.OutcomeRight))
	require.NoError(t, err)
	_, err = svc.RecordInteraction(ctx, series.ID, 1, 3, flashcardInteraction(domain.OutcomeWrong))
	require.NoError(t, err)

	completed, err := svc.CompleteSession(ctx, series.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionCompleted, completed.Status)
	assert.NotNil(t, completed.CompletedAt)

	// Completing again is a conflict
	_, err = svc.CompleteSession(ctx, series.ID, 1)
	require.ErrorIs(t, err, domain.ErrSessionAlreadyCompleted)
}

func TestDeleteOnlySessionCascades(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newFlashcardService(t)

	series, err := svc.CreateSeries(ctx, "Chemistry Drills")
	require.NoError(t, err)
	_, err = svc.StartSession(ctx, series.ID, progress.StartSessionInput{ItemIDs: []int64{1, 2}})
	require.NoError(t, err)

	result, err := svc.DeleteSession(ctx, series.ID, 1)
	require.NoError(t, err)
	assert.True(t, result.SeriesDeleted)
	assert.Zero(t, result.RemainingSessions)

	_, err = svc.GetSeries(ctx, series.ID)
	require.ErrorIs(t, err, domain.ErrSeriesNotFound)
}

func TestDeleteOneOfManySessions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newFlashcardService(t)

	series, err := svc.CreateSeries(ctx, "Physics Review")
	require.NoError(t, err)

	_, err = svc.StartSession(ctx, series.ID, progress.StartSessionInput{ItemIDs: []int64{1}})
	require.NoError(t, err)
	_, err = svc.RecordInteraction(ctx, series.ID, 1, 1, flashcardInteraction(domain.OutcomeRight))
	require.NoError(t, err)
	_, err = svc.CompleteSession(ctx, series.ID, 1)
	require.NoError(t, err)

	_, err = svc.StartSession(ctx, series.ID, progress.StartSessionInput{ItemIDs: []int64{2}})
	require.NoError(t, err)

	result, err := svc.DeleteSession(ctx, series.ID, 2)
	require.NoError(t, err)
	assert.False(t, result.SeriesDeleted)
	assert.Equal(t, 1, result.RemainingSessions)

	// Completed sessions are permanent
	_, err = svc.DeleteSession(ctx, series.ID, 1)
	require.ErrorIs(t, err, domain.ErrSessionPermanent)
}

func TestStartSessionRejectsWhileActive(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newFlashcardService(t)

	series, err := svc.CreateSeries(ctx, "Anatomy Review")
	require.NoError(t, err)
	_, err = svc.StartSession(ctx, series.ID, progress.StartSessionInput{ItemIDs: []int64{1}})
	require.NoError(t, err)

	_, err = svc.StartSession(ctx, series.ID, progress.StartSessionInput{ItemIDs: []int64{2}})
	require.ErrorIs(t, err, domain.ErrActiveSessionExists)
	assert.Contains(t, err.Error(), "an active session already exists")

	reloaded, err := svc.GetSeries(ctx, series.ID)
	require.NoError(t, err)
	assert.Len(t, reloaded.Sessions, 1)
}

func TestStartSessionAutoCompleteActiveOption(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newFlashcardService(t, progress.WithAutoCompleteActive())

	series, err := svc.CreateSeries(ctx, "History Review")
	require.NoError(t, err)
	_, err = svc.StartSession(ctx, series.ID, progress.StartSessionInput{ItemIDs: []int64{1, 2}})
	require.NoError(t, err)

	started, err := svc.StartSession(ctx, series.ID, progress.StartSessionInput{ItemIDs: []int64{3}})
	require.NoError(t, err)
	assert.Equal(t, 2, started.Session.Number)

	reloaded, err := svc.GetSeries(ctx, series.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionCompleted, reloaded.Session(1).Status)
	assert.NotNil(t, reloaded.Session(1).CompletedAt)
}

func TestStartSessionUnknownItems(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newFlashcardService(t)

	series, err := svc.CreateSeries(ctx, "Botany Review")
	require.NoError(t, err)

	_, err = svc.StartSession(ctx, series.ID, progress.StartSessionInput{
		ItemIDs: []int64{1, 42, 7, 42},
	})
	var missing *domain.MissingItemsError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []int64{7, 42}, missing.ItemIDs)
	require.ErrorIs(t, err, domain.ErrNotFound)

	// Nothing was persisted on the series
	reloaded, err := svc.GetSeries(ctx, series.ID)
	require.NoError(t, err)
	assert.Empty(t, reloaded.Sessions)
}

func TestChoiceCorrectnessDerivedFromAnswerKey(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	seriesStore := memory.NewSeriesStore()
	catalog := memory.NewCatalog(
		domain.ItemSummary{ItemID: 10, Prompt: "Powerhouse of the cell?"},
	)
	catalog.SetAnswer(10, "mitochondria")
	svc := progress.NewService(domain.KindChoice, seriesStore, catalog, slog.Default(),
		progress.WithAnswerKey(catalog))

	series, err := svc.CreateSeries(ctx, "Cell Biology Quiz")
	require.NoError(t, err)
	_, err = svc.StartSession(ctx, series.ID, progress.StartSessionInput{ItemIDs: []int64{10}})
	require.NoError(t, err)

	// The client's claimed correctness is ignored; the key decides
	interaction := &domain.Interaction{
		Difficulty: domain.DifficultyEasy,
		Confidence: domain.ConfidenceLow,
		Choice:     &domain.ChoiceResult{SelectedAnswer: "nucleus", IsCorrect: true},
	}
	recorded, err := svc.RecordInteraction(ctx, series.ID, 1, 10, interaction)
	require.NoError(t, err)
	assert.False(t, recorded.IsCorrect)
	assert.False(t, recorded.Interaction.Choice.IsCorrect)

	reloaded, err := svc.GetSeries(ctx, series.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.Session(1).Items[0].Interaction.Choice.IsCorrect)
}

func TestRecordInteractionRejectsWrongArm(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newFlashcardService(t)

	series, err := svc.CreateSeries(ctx, "Genetics Review")
	require.NoError(t, err)
	_, err = svc.StartSession(ctx, series.ID, progress.StartSessionInput{ItemIDs: []int64{1}})
	require.NoError(t, err)

	interaction := &domain.Interaction{
		Difficulty: domain.DifficultyEasy,
		Confidence: domain.ConfidenceHigh,
		Choice:     &domain.ChoiceResult{SelectedAnswer: "x"},
	}
	_, err = svc.RecordInteraction(ctx, series.ID, 1, 1, interaction)
	require.ErrorIs(t, err, domain.ErrPayloadKindMismatch)
}

func TestCompleteSeries(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newFlashcardService(t)

	series, err := svc.CreateSeries(ctx, "Ecology Review")
	require.NoError(t, err)

	completed, err := svc.CompleteSeries(ctx, series.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SeriesCompleted, completed.Status)
	assert.NotNil(t, completed.CompletedAt)

	_, err = svc.CompleteSeries(ctx, series.ID)
	require.ErrorIs(t, err, domain.ErrSeriesAlreadyCompleted)
}

func TestDeleteSeriesUnconditional(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newFlashcardService(t)

	series, err := svc.CreateSeries(ctx, "Disposable Series")
	require.NoError(t, err)
	_, err = svc.StartSession(ctx, series.ID, progress.StartSessionInput{ItemIDs: []int64{1}})
	require.NoError(t, err)
	_, err = svc.RecordInteraction(ctx, series.ID, 1, 1, flashcardInteraction(domain.OutcomeRight))
	require.NoError(t, err)
	_, err = svc.CompleteSession(ctx, series.ID, 1)
	require.NoError(t, err)

	// Completed sessions do not protect the series from deletion
	require.NoError(t, svc.DeleteSeries(ctx, series.ID))
	_, err = svc.GetSeries(ctx, series.ID)
	require.ErrorIs(t, err, domain.ErrSeriesNotFound)
}

func TestListSeriesFiltersByKind(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	seriesStore := memory.NewSeriesStore()
	catalog := memory.NewCatalog(domain.ItemSummary{ItemID: 1, Prompt: "p"})
	flashcards := progress.NewService(domain.KindFlashcard, seriesStore, catalog, slog.Default())
	tables := progress.NewService(domain.KindTable, seriesStore, catalog, slog.Default())

	_, err := flashcards.CreateSeries(ctx, "Flashcard Series")
	require.NoError(t, err)
	_, err = tables.CreateSeries(ctx, "Table Series")
	require.NoError(t, err)

	listed, err := flashcards.ListSeries(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "Flashcard Series", listed[0].Title)
}

// conflictingStore wraps a SeriesStore and fails the first n Save calls
// with a version conflict, simulating a concurrent writer.
type conflictingStore struct {
	*memory.SeriesStore
	remaining int
	saves     int
}

func (s *conflictingStore) Save(ctx context.Context, series *domain.Series) error {
	s.saves++
	if s.remaining > 0 {
		s.remaining--
		return store.ErrVersionConflict
	}
	return s.SeriesStore.Save(ctx, series)
}

// interferingStore wraps a SeriesStore and runs a competing write after a
// read, handing the now-stale copy back to the caller. Arming happens by
// assigning interfere; it fires once and disarms itself.
type interferingStore struct {
	*memory.SeriesStore
	interfere func()
}

func (s *interferingStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Series, error) {
	series, err := s.SeriesStore.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.interfere != nil {
		fn := s.interfere
		s.interfere = nil
		fn()
	}
	return series, nil
}

func TestDeleteSessionDoesNotDestroyRacingCompletion(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	base := memory.NewSeriesStore()
	wrapped := &interferingStore{SeriesStore: base}
	catalog := memory.NewCatalog(domain.ItemSummary{ItemID: 1, Prompt: "p"})
	svc := progress.NewService(domain.KindFlashcard, wrapped, catalog, slog.Default())

	series, err := svc.CreateSeries(ctx, "Contended Series")
	require.NoError(t, err)
	_, err = svc.StartSession(ctx, series.ID, progress.StartSessionInput{ItemIDs: []int64{1}})
	require.NoError(t, err)
	_, err = svc.RecordInteraction(ctx, series.ID, 1, 1, flashcardInteraction(domain.OutcomeRight))
	require.NoError(t, err)

	// A competing writer completes the session right after the delete's
	// read, making it permanent history.
	wrapped.interfere = func() {
		fresh, err := base.GetByID(ctx, series.ID)
		require.NoError(t, err)
		_, err = fresh.CompleteSession(1, time.Now().UTC())
		require.NoError(t, err)
		require.NoError(t, base.Save(ctx, fresh))
	}

	// The cascade delete must not destroy the committed completion: the
	// version-guarded delete conflicts, and the retry re-reads and fails
	// against the now-permanent session.
	_, err = svc.DeleteSession(ctx, series.ID, 1)
	require.ErrorIs(t, err, domain.ErrSessionPermanent)

	survivor, err := base.GetByID(ctx, series.ID)
	require.NoError(t, err)
	require.Len(t, survivor.Sessions, 1)
	assert.Equal(t, domain.SessionCompleted, survivor.Sessions[0].Status)
}

func TestMutationRetriesOnVersionConflict(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	flaky := &conflictingStore{SeriesStore: memory.NewSeriesStore(), remaining: 2}
	catalog := memory.NewCatalog(domain.ItemSummary{ItemID: 1, Prompt: "p"})
	svc := progress.NewService(domain.KindFlashcard, flaky, catalog, slog.Default())

	series, err := svc.CreateSeries(ctx, "Contended Series")
	require.NoError(t, err)

	// Two conflicts then success, within the default three attempts
	started, err := svc.StartSession(ctx, series.ID, progress.StartSessionInput{ItemIDs: []int64{1}})
	require.NoError(t, err)
	assert.Equal(t, 1, started.Session.Number)
	assert.Equal(t, 3, flaky.saves)
}

func TestMutationSurfacesExhaustedRetries(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	flaky := &conflictingStore{SeriesStore: memory.NewSeriesStore(), remaining: 100}
	catalog := memory.NewCatalog(domain.ItemSummary{ItemID: 1, Prompt: "p"})
	svc := progress.NewService(domain.KindFlashcard, flaky, catalog, slog.Default(),
		progress.WithSaveRetries(2))

	series, err := svc.CreateSeries(ctx, "Hopeless Series")
	require.NoError(t, err)

	_, err = svc.StartSession(ctx, series.ID, progress.StartSessionInput{ItemIDs: []int64{1}})
	require.ErrorIs(t, err, progress.ErrConcurrentUpdate)
	assert.Equal(t, 2, flaky.saves)
}

func TestMutationDoesNotRetryDomainErrors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	flaky := &conflictingStore{SeriesStore: memory.NewSeriesStore()}
	catalog := memory.NewCatalog(domain.ItemSummary{ItemID: 1, Prompt: "p"})
	svc := progress.NewService(domain.KindFlashcard, flaky, catalog, slog.Default())

	series, err := svc.CreateSeries(ctx, "Stable Series")
	require.NoError(t, err)
	_, err = svc.StartSession(ctx, series.ID, progress.StartSessionInput{ItemIDs: []int64{1}})
	require.NoError(t, err)
	saves := flaky.saves

	// A state-machine conflict is terminal, not retried
	_, err = svc.StartSession(ctx, series.ID, progress.StartSessionInput{ItemIDs: []int64{1}})
	require.ErrorIs(t, err, domain.ErrActiveSessionExists)
	assert.Equal(t, saves, flaky.saves)
}

func TestCreateSeriesValidation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newFlashcardService(t)

	_, err := svc.CreateSeries(ctx, "")
	require.ErrorIs(t, err, domain.ErrSeriesTitleEmpty)
	require.True(t, errors.Is(err, domain.ErrValidation))
}

func TestNewServicePanicsOnMissingDependencies(t *testing.T) {
	t.Parallel()

	catalog := memory.NewCatalog()
	seriesStore := memory.NewSeriesStore()

	assert.Panics(t, func() {
		progress.NewService(domain.ItemKind("bogus"), seriesStore, catalog, slog.Default())
	})
	assert.Panics(t, func() {
		progress.NewService(domain.KindFlashcard, nil, catalog, slog.Default())
	})
	assert.Panics(t, func() {
		progress.NewService(domain.KindFlashcard, seriesStore, nil, slog.Default())
	})
	// Choice engines require an answer key
	assert.Panics(t, func() {
		progress.NewService(domain.KindChoice, seriesStore, catalog, slog.Default())
	})
}
