package domain

import (
	"errors"
	"fmt"
)

// Error taxonomy roots. Every domain error wraps exactly one of these so
// callers can classify failures with errors.Is without matching on the
// individual sentinel.
var (
	// ErrValidation is the root of all malformed or out-of-range input errors.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is the root of all absent-entity errors (series, session,
	// item entry, catalog identifier).
	ErrNotFound = errors.New("not found")

	// ErrConflict is the root of all state-machine precondition violations:
	// duplicate active session, write-once interaction already set,
	// completing or deleting in the wrong status.
	ErrConflict = errors.New("conflict")
)

// Series validation errors.
var (
	// ErrSeriesTitleEmpty is returned when a series title is empty.
	ErrSeriesTitleEmpty = fmt.Errorf("%w: series title cannot be empty", ErrValidation)

	// ErrSeriesTitleTooLong is returned when a series title exceeds MaxTitleLength runes.
	ErrSeriesTitleTooLong = fmt.Errorf("%w: series title cannot exceed 200 characters", ErrValidation)

	// ErrSeriesKindInvalid is returned when a series carries an unknown item kind.
	ErrSeriesKindInvalid = fmt.Errorf("%w: unknown item kind", ErrValidation)

	// ErrSeriesIDEmpty is returned when a series ID is nil.
	ErrSeriesIDEmpty = fmt.Errorf("%w: series ID cannot be empty", ErrValidation)
)

// Lifecycle conflict errors.
var (
	// ErrSeriesAlreadyCompleted is returned when completing a series that is
	// already completed. Completion is monotonic and never reverts.
	ErrSeriesAlreadyCompleted = fmt.Errorf("%w: series already completed", ErrConflict)

	// ErrSessionAlreadyCompleted is returned when completing a session that is
	// already completed.
	ErrSessionAlreadyCompleted = fmt.Errorf("%w: session already completed", ErrConflict)

	// ErrActiveSessionExists is returned when starting a session while the
	// series already has an active one. The engine never auto-completes the
	// prior session unless explicitly configured to.
	ErrActiveSessionExists = fmt.Errorf("%w: an active session already exists", ErrConflict)

	// ErrSessionCompleted is returned when recording an interaction on a
	// session that has already been completed.
	ErrSessionCompleted = fmt.Errorf("%w: cannot record on completed session", ErrConflict)

	// ErrInteractionRecorded is returned on the second write attempt for the
	// same item entry. Interactions are write-once and never overwritten.
	ErrInteractionRecorded = fmt.Errorf("%w: interaction already recorded", ErrConflict)

	// ErrSessionPermanent is returned when deleting a completed session.
	// Completed sessions are permanent history.
	ErrSessionPermanent = fmt.Errorf("%w: cannot delete completed session", ErrConflict)
)

// Not-found errors.
var (
	// ErrSeriesNotFound indicates the requested series does not exist.
	ErrSeriesNotFound = fmt.Errorf("%w: series", ErrNotFound)

	// ErrSessionNotFound indicates the requested session number does not exist
	// within the series.
	ErrSessionNotFound = fmt.Errorf("%w: session", ErrNotFound)

	// ErrItemNotFound indicates the session has no entry for the given item.
	ErrItemNotFound = fmt.Errorf("%w: item entry", ErrNotFound)
)

// Session-start validation errors.
var (
	// ErrNoItems is returned when a session is started with an empty item list.
	ErrNoItems = fmt.Errorf("%w: session requires at least one item", ErrValidation)

	// ErrGeneratedFromNegative is returned when the provenance reference is negative.
	ErrGeneratedFromNegative = fmt.Errorf("%w: generatedFrom must be non-negative", ErrValidation)
)

// Interaction payload validation errors.
var (
	// ErrDifficultyInvalid is returned for a difficulty outside {easy, medium, hard}.
	ErrDifficultyInvalid = fmt.Errorf("%w: difficulty must be easy, medium or hard", ErrValidation)

	// ErrConfidenceInvalid is returned for a confidence outside {high, low}.
	ErrConfidenceInvalid = fmt.Errorf("%w: confidence must be high or low", ErrValidation)

	// ErrTimeSpentNegative is returned for a negative time-spent value.
	ErrTimeSpentNegative = fmt.Errorf("%w: time spent cannot be negative", ErrValidation)

	// ErrPayloadKindMismatch is returned when the payload arm does not match
	// the series item kind, or more than one arm is set.
	ErrPayloadKindMismatch = fmt.Errorf("%w: interaction payload does not match item kind", ErrValidation)

	// ErrFlashcardOutcomeInvalid is returned for a flashcard result outside {right, wrong}.
	ErrFlashcardOutcomeInvalid = fmt.Errorf("%w: flashcard result must be right or wrong", ErrValidation)

	// ErrChoiceAnswerEmpty is returned for a multiple-choice payload with no selected answer.
	ErrChoiceAnswerEmpty = fmt.Errorf("%w: selected answer cannot be empty", ErrValidation)

	// ErrTableCellsEmpty is returned for a table payload with no cell placements.
	ErrTableCellsEmpty = fmt.Errorf("%w: table result requires at least one cell", ErrValidation)

	// ErrTableCellInvalid is returned for a cell placement with negative coordinates.
	ErrTableCellInvalid = fmt.Errorf("%w: cell coordinates cannot be negative", ErrValidation)
)

// IncompleteSessionError reports a completion attempt on a session that still
// has unanswered items. It wraps ErrValidation and carries the unanswered
// count for field-level detail in responses.
type IncompleteSessionError struct {
	SessionNumber int
	Unanswered    int
}

// Error implements the error interface for IncompleteSessionError.
func (e *IncompleteSessionError) Error() string {
	return fmt.Sprintf(
		"cannot complete session %d with unanswered items: %d remaining",
		e.SessionNumber,
		e.Unanswered,
	)
}

// Unwrap classifies the error as a validation failure.
func (e *IncompleteSessionError) Unwrap() error {
	return ErrValidation
}

// MissingItemsError reports a session-start attempt that referenced catalog
// identifiers which do not exist. It wraps ErrNotFound and lists the ids.
type MissingItemsError struct {
	Kind    ItemKind
	ItemIDs []int64
}

// Error implements the error interface for MissingItemsError.
func (e *MissingItemsError) Error() string {
	return fmt.Sprintf("%s items not found in catalog: %v", e.Kind, e.ItemIDs)
}

// Unwrap classifies the error as a not-found failure.
func (e *MissingItemsError) Unwrap() error {
	return ErrNotFound
}
