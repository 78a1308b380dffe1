package domain

import (
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxTitleLength is the maximum series title length in runes.
const MaxTitleLength = 200

// SeriesStatus is the lifecycle state of a series. Transitions are
// monotonic: once completed, a series never becomes active again.
type SeriesStatus string

// Series statuses.
const (
	SeriesActive    SeriesStatus = "active"
	SeriesCompleted SeriesStatus = "completed"
)

// Series is a named, long-lived container of study sessions for one topic.
// It exclusively owns its sessions and is the unit of concurrency control:
// mutations load the whole series, transition it in memory and persist it
// back under an optimistic version check.
type Series struct {
	ID          uuid.UUID    `json:"id"`
	Kind        ItemKind     `json:"kind"`
	Title       string       `json:"title"`
	Status      SeriesStatus `json:"status"`
	Sessions    []*Session   `json:"sessions"`
	StartedAt   time.Time    `json:"started_at"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`

	// Version is the storage compare-and-swap token. Zero for a series that
	// has never been persisted; bumped by the store on every save.
	Version int64 `json:"-"`
}

// NewSeries creates an active series with no sessions.
// Returns an error if validation fails.
func NewSeries(kind ItemKind, title string) (*Series, error) {
	series := &Series{
		ID:        uuid.New(),
		Kind:      kind,
		Title:     title,
		Status:    SeriesActive,
		StartedAt: time.Now().UTC(),
	}

	if err := series.Validate(); err != nil {
		return nil, err
	}

	return series, nil
}

// Validate checks if the Series has valid data.
// Returns an error if any field fails validation.
func (s *Series) Validate() error {
	if s.ID == uuid.Nil {
		return ErrSeriesIDEmpty
	}
	if !s.Kind.Valid() {
		return ErrSeriesKindInvalid
	}
	if s.Title == "" {
		return ErrSeriesTitleEmpty
	}
	if utf8.RuneCountInString(s.Title) > MaxTitleLength {
		return ErrSeriesTitleTooLong
	}
	return nil
}

// ActiveSession returns the single active session, or nil when every
// session is completed. At most one session is ever active.
func (s *Series) ActiveSession() *Session {
	for _, session := range s.Sessions {
		if session.Status == SessionActive {
			return session
		}
	}
	return nil
}

// Session returns the session with the given number, or nil.
func (s *Series) Session(number int) *Session {
	for _, session := range s.Sessions {
		if session.Number == number {
			return session
		}
	}
	return nil
}

// NextSessionNumber returns max(existing session numbers) + 1, or 1 for a
// series with no sessions. Numbers are never reused after deletion, so the
// maximum is taken over the surviving sessions rather than their count.
func (s *Series) NextSessionNumber() int {
	max := 0
	for _, session := range s.Sessions {
		if session.Number > max {
			max = session.Number
		}
	}
	return max + 1
}

// StartSession appends a new active session covering the given items, in the
// supplied order, with interaction slots empty. By default a pre-existing
// active session makes the start fail with ErrActiveSessionExists; when
// autoCompleteActive is set the prior active session is force-completed in
// place instead, unanswered items and all (legacy behavior, off by default).
func (s *Series) StartSession(
	itemIDs []int64,
	generatedFrom *int64,
	autoCompleteActive bool,
	now time.Time,
) (*Session, error) {
	if len(itemIDs) == 0 {
		return nil, ErrNoItems
	}
	if generatedFrom != nil && *generatedFrom < 0 {
		return nil, ErrGeneratedFromNegative
	}

	if active := s.ActiveSession(); active != nil {
		if !autoCompleteActive {
			return nil, ErrActiveSessionExists
		}
		active.Status = SessionCompleted
		active.CompletedAt = &now
	}

	items := make([]ItemAttempt, len(itemIDs))
	for i, id := range itemIDs {
		items[i] = ItemAttempt{ItemID: id}
	}

	session := &Session{
		Number:        s.NextSessionNumber(),
		Status:        SessionActive,
		GeneratedFrom: generatedFrom,
		Items:         items,
		StartedAt:     now,
	}
	s.Sessions = append(s.Sessions, session)
	return session, nil
}

// RecordInteraction stores the interaction against one item of the numbered
// session. The payload must already be validated against the series kind.
func (s *Series) RecordInteraction(
	sessionNumber int,
	itemID int64,
	interaction *Interaction,
	now time.Time,
) error {
	session := s.Session(sessionNumber)
	if session == nil {
		return ErrSessionNotFound
	}
	return session.Record(itemID, interaction, now)
}

// CompleteSession flips the numbered session to completed once every item
// entry carries an interaction.
func (s *Series) CompleteSession(sessionNumber int, now time.Time) (*Session, error) {
	session := s.Session(sessionNumber)
	if session == nil {
		return nil, ErrSessionNotFound
	}
	if err := session.Complete(now); err != nil {
		return nil, err
	}
	return session, nil
}

// Complete flips the series to completed. Series completion is a
// caller-driven signal and does not require every session to be completed.
func (s *Series) Complete(now time.Time) error {
	if s.Status == SeriesCompleted {
		return ErrSeriesAlreadyCompleted
	}
	s.Status = SeriesCompleted
	s.CompletedAt = &now
	return nil
}

// DeleteSession removes the numbered session from the series. Completed
// sessions are permanent and cannot be deleted. Remaining sessions keep
// their numbers. Returns true when the deletion emptied the series, in
// which case the caller must delete the series itself.
func (s *Series) DeleteSession(sessionNumber int) (empty bool, err error) {
	for i, session := range s.Sessions {
		if session.Number != sessionNumber {
			continue
		}
		if session.Status == SessionCompleted {
			return false, ErrSessionPermanent
		}
		s.Sessions = append(s.Sessions[:i], s.Sessions[i+1:]...)
		return len(s.Sessions) == 0, nil
	}
	return false, ErrSessionNotFound
}

// TotalItems returns the number of item entries across all sessions.
func (s *Series) TotalItems() int {
	total := 0
	for _, session := range s.Sessions {
		total += len(session.Items)
	}
	return total
}

// TotalAnswered returns the number of recorded interactions across all sessions.
func (s *Series) TotalAnswered() int {
	total := 0
	for _, session := range s.Sessions {
		total += session.AnsweredCount()
	}
	return total
}

// TotalCorrect returns the number of correct interactions across all sessions.
func (s *Series) TotalCorrect() int {
	total := 0
	for _, session := range s.Sessions {
		total += session.CorrectCount()
	}
	return total
}

// SuccessRate returns round(100 * correct / total items), or 0 for a series
// with no items.
func (s *Series) SuccessRate() int {
	return roundedPercent(s.TotalCorrect(), s.TotalItems())
}
