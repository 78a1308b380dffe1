package api

import (
	"time"

	"github.com/revisio/revisio-api/internal/domain"
	"github.com/revisio/revisio-api/internal/service/progress"
)

// CreateSeriesRequest is the body for creating a series.
type CreateSeriesRequest struct {
	Title string `json:"title" validate:"required,max=200"`
}

// StartSessionRequest is the body for starting a session.
type StartSessionRequest struct {
	ItemIDs       []int64 `json:"item_ids"       validate:"required,min=1,dive,gt=0"`
	GeneratedFrom *int64  `json:"generated_from" validate:"omitempty,gte=0"`
}

// CellRequest is one cell placement in a table interaction body.
type CellRequest struct {
	Row      int   `json:"row"      validate:"gte=0"`
	Column   int   `json:"column"   validate:"gte=0"`
	Expected int64 `json:"expected"`
	Placed   int64 `json:"placed"`
}

// RecordInteractionRequest is the body for recording an interaction. The
// common fields are always required; exactly the arm matching the mounted
// kind must be present (result for flashcards, selected_answer for choice
// questions, cells for table exercises).
type RecordInteractionRequest struct {
	Difficulty       string        `json:"difficulty"               validate:"required,oneof=easy medium hard"`
	Confidence       string        `json:"confidence_while_solving" validate:"required,oneof=high low"`
	TimeSpentSeconds int           `json:"time_spent_seconds"       validate:"gte=0"`
	Result           string        `json:"result,omitempty"`
	SelectedAnswer   string        `json:"selected_answer,omitempty"`
	Cells            []CellRequest `json:"cells,omitempty"`
}

// toInteraction builds the domain payload for the handler's kind. The
// engine validates the result against the kind-specific schema.
func (req *RecordInteractionRequest) toInteraction(kind domain.ItemKind) *domain.Interaction {
	interaction := &domain.Interaction{
		Difficulty:       domain.Difficulty(req.Difficulty),
		Confidence:       domain.Confidence(req.Confidence),
		TimeSpentSeconds: req.TimeSpentSeconds,
	}

	switch kind {
	case domain.KindFlashcard:
		interaction.Flashcard = &domain.FlashcardResult{
			Outcome: domain.FlashcardOutcome(req.Result),
		}
	case domain.KindChoice:
		interaction.Choice = &domain.ChoiceResult{
			SelectedAnswer: req.SelectedAnswer,
		}
	case domain.KindTable:
		cells := make([]domain.CellPlacement, len(req.Cells))
		for i, cell := range req.Cells {
			cells[i] = domain.CellPlacement{
				Row:      cell.Row,
				Column:   cell.Column,
				Expected: cell.Expected,
				Placed:   cell.Placed,
			}
		}
		interaction.Table = &domain.TableResult{Cells: cells}
	}
	return interaction
}

// SeriesResponse is the representation of a created or fetched series.
type SeriesResponse struct {
	SeriesID    string            `json:"series_id"`
	Kind        string            `json:"kind"`
	Title       string            `json:"title"`
	Status      string            `json:"status"`
	StartedAt   time.Time         `json:"started_at"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
	Sessions    []SessionResponse `json:"sessions,omitempty"`

	TotalItems   int `json:"total_items"`
	TotalCorrect int `json:"total_correct"`
	SuccessRate  int `json:"success_rate"`
}

// SessionResponse is the representation of one session within a series.
type SessionResponse struct {
	SessionNumber int                  `json:"session_number"`
	Status        string               `json:"status"`
	GeneratedFrom *int64               `json:"generated_from,omitempty"`
	Items         []domain.ItemAttempt `json:"items"`
	StartedAt     time.Time            `json:"started_at"`
	CompletedAt   *time.Time           `json:"completed_at,omitempty"`
}

// StartSessionResponse is the body returned on a successful session start.
type StartSessionResponse struct {
	Success       bool                 `json:"success"`
	SessionNumber int                  `json:"session_number"`
	ItemCount     int                  `json:"item_count"`
	Items         []domain.ItemSummary `json:"items,omitempty"`
}

// RecordInteractionResponse is the correctness summary returned after
// recording an interaction.
type RecordInteractionResponse struct {
	Success     bool                `json:"success"`
	IsCorrect   bool                `json:"is_correct"`
	Interaction *domain.Interaction `json:"interaction"`
}

// ConfirmationResponse is the bare success confirmation for completion and
// series-deletion operations.
type ConfirmationResponse struct {
	Success bool `json:"success"`
}

// DeleteSessionResponse reports the effect of a session deletion, including
// whether the series itself was removed by the cascade.
type DeleteSessionResponse struct {
	Success           bool `json:"success"`
	SeriesDeleted     bool `json:"series_deleted"`
	RemainingSessions int  `json:"remaining_sessions"`
}

// seriesToResponse converts a domain.Series to its response representation.
func seriesToResponse(series *domain.Series, includeSessions bool) SeriesResponse {
	response := SeriesResponse{
		SeriesID:     series.ID.String(),
		Kind:         string(series.Kind),
		Title:        series.Title,
		Status:       string(series.Status),
		StartedAt:    series.StartedAt,
		CompletedAt:  series.CompletedAt,
		TotalItems:   series.TotalItems(),
		TotalCorrect: series.TotalCorrect(),
		SuccessRate:  series.SuccessRate(),
	}
	if includeSessions {
		response.Sessions = make([]SessionResponse, len(series.Sessions))
		for i, session := range series.Sessions {
			response.Sessions[i] = sessionToResponse(session)
		}
	}
	return response
}

// sessionToResponse converts a domain.Session to its response representation.
func sessionToResponse(session *domain.Session) SessionResponse {
	return SessionResponse{
		SessionNumber: session.Number,
		Status:        string(session.Status),
		GeneratedFrom: session.GeneratedFrom,
		Items:         session.Items,
		StartedAt:     session.StartedAt,
		CompletedAt:   session.CompletedAt,
	}
}

// startToResponse converts an engine start-session result to its response.
func startToResponse(result *progress.StartSessionResult) StartSessionResponse {
	return StartSessionResponse{
		Success:       true,
		SessionNumber: result.Session.Number,
		ItemCount:     len(result.Session.Items),
		Items:         result.Items,
	}
}
