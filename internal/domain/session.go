package domain

import (
	"time"
)

// SessionStatus is the lifecycle state of a session. Transitions are
// monotonic: once completed, a session never becomes active again.
type SessionStatus string

// Session statuses.
const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
)

// ItemAttempt is one entry in a session's item list: a catalog identifier
// and the interaction recorded against it, nil until the learner answers.
// Duplicate item identifiers are each tracked independently.
type ItemAttempt struct {
	ItemID      int64        `json:"item_id"`
	Interaction *Interaction `json:"interaction,omitempty"`
}

// ItemSummary carries the minimal display fields the catalog exposes for
// one item, used to enrich the start-session response.
type ItemSummary struct {
	ItemID int64  `json:"item_id"`
	Prompt string `json:"prompt"`
}

// Session is one numbered attempt at a fixed set of items within a series.
// It is embedded in its series and never addressable on its own.
type Session struct {
	Number        int           `json:"session_number"`
	Status        SessionStatus `json:"status"`
	GeneratedFrom *int64        `json:"generated_from,omitempty"`
	Items         []ItemAttempt `json:"items"`
	StartedAt     time.Time     `json:"started_at"`
	CompletedAt   *time.Time    `json:"completed_at,omitempty"`
}

// item returns the entry to record against for the given item identifier:
// the first unanswered entry with that id, or, when every matching entry is
// already answered, the first match so the caller can report the write-once
// conflict. Returns nil when the session has no entry for the id.
func (s *Session) item(itemID int64) *ItemAttempt {
	var first *ItemAttempt
	for i := range s.Items {
		if s.Items[i].ItemID != itemID {
			continue
		}
		if s.Items[i].Interaction == nil {
			return &s.Items[i]
		}
		if first == nil {
			first = &s.Items[i]
		}
	}
	return first
}

// Record stores the interaction for the given item. The payload must already
// be validated against the series kind. Fails when the session is completed,
// when the item entry does not exist, or when the entry already carries an
// interaction.
func (s *Session) Record(itemID int64, interaction *Interaction, now time.Time) error {
	if s.Status != SessionActive {
		return ErrSessionCompleted
	}
	entry := s.item(itemID)
	if entry == nil {
		return ErrItemNotFound
	}
	if entry.Interaction != nil {
		return ErrInteractionRecorded
	}
	interaction.RecordedAt = now
	entry.Interaction = interaction
	return nil
}

// Complete flips the session to completed. Fails with ErrSessionAlreadyCompleted
// on a repeat call and with IncompleteSessionError while any item is unanswered.
func (s *Session) Complete(now time.Time) error {
	if s.Status == SessionCompleted {
		return ErrSessionAlreadyCompleted
	}
	if unanswered := s.UnansweredCount(); unanswered > 0 {
		return &IncompleteSessionError{SessionNumber: s.Number, Unanswered: unanswered}
	}
	s.Status = SessionCompleted
	s.CompletedAt = &now
	return nil
}

// UnansweredCount returns how many item entries still have no interaction.
func (s *Session) UnansweredCount() int {
	count := 0
	for i := range s.Items {
		if s.Items[i].Interaction == nil {
			count++
		}
	}
	return count
}

// AnsweredCount returns how many item entries carry an interaction.
func (s *Session) AnsweredCount() int {
	return len(s.Items) - s.UnansweredCount()
}

// CorrectCount returns how many recorded interactions were correct.
func (s *Session) CorrectCount() int {
	count := 0
	for i := range s.Items {
		if s.Items[i].Interaction != nil && s.Items[i].Interaction.Correct() {
			count++
		}
	}
	return count
}
