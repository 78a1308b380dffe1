package domain

import (
	"math"
	"time"
)

// FlashcardOutcome is the learner's self-graded flashcard result.
type FlashcardOutcome string

// Flashcard outcomes.
const (
	OutcomeRight FlashcardOutcome = "right"
	OutcomeWrong FlashcardOutcome = "wrong"
)

// FlashcardResult is the interaction payload arm for flashcard series.
type FlashcardResult struct {
	Outcome FlashcardOutcome `json:"result"`
}

// ChoiceResult is the interaction payload arm for multiple-choice series.
// IsCorrect is derived at record time from the catalog's correct answer;
// the stored value is the derived boolean, never the client's claim.
type ChoiceResult struct {
	SelectedAnswer string `json:"selected_answer"`
	IsCorrect      bool   `json:"is_correct"`
}

// CellPlacement is one cell of a table-exercise result: where the learner
// placed a value and what the template expected there.
type CellPlacement struct {
	Row      int   `json:"row"`
	Column   int   `json:"column"`
	Expected int64 `json:"expected"`
	Placed   int64 `json:"placed"`
	Correct  bool  `json:"correct"`
}

// CellMismatch identifies one incorrectly placed cell.
type CellMismatch struct {
	Row      int   `json:"row"`
	Column   int   `json:"column"`
	Expected int64 `json:"expected"`
	Placed   int64 `json:"placed"`
}

// TableResult is the interaction payload arm for table-exercise series.
// Per-cell correctness, the accuracy percentage and the mismatch list are
// derived from the placements during validation, not trusted from the client.
type TableResult struct {
	Cells           []CellPlacement `json:"cells"`
	CorrectCount    int             `json:"correct_count"`
	AccuracyPercent int             `json:"accuracy_percent"`
	Mismatches      []CellMismatch  `json:"mismatches"`
}

// normalize recomputes the derived fields from the cell placements.
func (r *TableResult) normalize() {
	r.CorrectCount = 0
	r.Mismatches = nil
	for i := range r.Cells {
		cell := &r.Cells[i]
		cell.Correct = cell.Expected == cell.Placed
		if cell.Correct {
			r.CorrectCount++
			continue
		}
		r.Mismatches = append(r.Mismatches, CellMismatch{
			Row:      cell.Row,
			Column:   cell.Column,
			Expected: cell.Expected,
			Placed:   cell.Placed,
		})
	}
	r.AccuracyPercent = roundedPercent(r.CorrectCount, len(r.Cells))
}

// Interaction is the write-once record of a learner attempting one item
// within one session. Exactly one kind arm is set, matching the series kind.
type Interaction struct {
	Difficulty       Difficulty       `json:"difficulty"`
	Confidence       Confidence       `json:"confidence_while_solving"`
	TimeSpentSeconds int              `json:"time_spent_seconds"`
	RecordedAt       time.Time        `json:"recorded_at"`
	Flashcard        *FlashcardResult `json:"flashcard,omitempty"`
	Choice           *ChoiceResult    `json:"choice,omitempty"`
	Table            *TableResult     `json:"table,omitempty"`
}

// Validate checks the common fields and the kind arm against the series
// kind, and normalizes derived table fields. Returns an error wrapping
// ErrValidation if any rule fails.
func (i *Interaction) Validate(kind ItemKind) error {
	if !i.Difficulty.Valid() {
		return ErrDifficultyInvalid
	}
	if !i.Confidence.Valid() {
		return ErrConfidenceInvalid
	}
	if i.TimeSpentSeconds < 0 {
		return ErrTimeSpentNegative
	}

	if err := i.validateArm(kind); err != nil {
		return err
	}

	if i.Table != nil {
		i.Table.normalize()
	}
	return nil
}

// validateArm checks that exactly the arm for the given kind is present
// and that its fields are well formed.
func (i *Interaction) validateArm(kind ItemKind) error {
	arms := 0
	if i.Flashcard != nil {
		arms++
	}
	if i.Choice != nil {
		arms++
	}
	if i.Table != nil {
		arms++
	}
	if arms != 1 {
		return ErrPayloadKindMismatch
	}

	switch kind {
	case KindFlashcard:
		if i.Flashcard == nil {
			return ErrPayloadKindMismatch
		}
		if i.Flashcard.Outcome != OutcomeRight && i.Flashcard.Outcome != OutcomeWrong {
			return ErrFlashcardOutcomeInvalid
		}
	case KindChoice:
		if i.Choice == nil {
			return ErrPayloadKindMismatch
		}
		if i.Choice.SelectedAnswer == "" {
			return ErrChoiceAnswerEmpty
		}
	case KindTable:
		if i.Table == nil {
			return ErrPayloadKindMismatch
		}
		if len(i.Table.Cells) == 0 {
			return ErrTableCellsEmpty
		}
		for _, cell := range i.Table.Cells {
			if cell.Row < 0 || cell.Column < 0 {
				return ErrTableCellInvalid
			}
		}
	default:
		return ErrSeriesKindInvalid
	}
	return nil
}

// Correct reports the correctness signal for the recorded payload: a right
// flashcard outcome, a correct choice, or a fully accurate table placement.
func (i *Interaction) Correct() bool {
	switch {
	case i.Flashcard != nil:
		return i.Flashcard.Outcome == OutcomeRight
	case i.Choice != nil:
		return i.Choice.IsCorrect
	case i.Table != nil:
		return i.Table.AccuracyPercent == 100
	}
	return false
}

// roundedPercent computes round(100 * part / total), returning 0 when total
// is 0 to guard the division.
func roundedPercent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(part) / float64(total)))
}
