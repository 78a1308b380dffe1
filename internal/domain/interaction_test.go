package domain

import (
	"errors"
	"testing"
)

func TestInteractionValidateCommonFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Interaction)
		wantErr error
	}{
		{
			name:   "valid",
			mutate: func(i *Interaction) {},
		},
		{
			name:    "invalid difficulty",
			mutate:  func(i *Interaction) { i.Difficulty = "impossible" },
			wantErr: ErrDifficultyInvalid,
		},
		{
			name:    "empty difficulty",
			mutate:  func(i *Interaction) { i.Difficulty = "" },
			wantErr: ErrDifficultyInvalid,
		},
		{
			name:    "invalid confidence",
			mutate:  func(i *Interaction) { i.Confidence = "medium" },
			wantErr: ErrConfidenceInvalid,
		},
		{
			name:    "negative time spent",
			mutate:  func(i *Interaction) { i.TimeSpentSeconds = -1 },
			wantErr: ErrTimeSpentNegative,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			interaction := &Interaction{
				Difficulty:       DifficultyEasy,
				Confidence:       ConfidenceHigh,
				TimeSpentSeconds: 10,
				Flashcard:        &FlashcardResult{Outcome: OutcomeRight},
			}
			tc.mutate(interaction)

			err := interaction.Validate(KindFlashcard)
			if tc.wantErr == nil {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("Expected %v, got %v", tc.wantErr, err)
			}
			if !errors.Is(err, ErrValidation) {
				t.Error("Expected error to classify as validation")
			}
		})
	}
}

func TestInteractionValidateArm(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		kind    ItemKind
		arm     Interaction
		wantErr error
	}{
		{
			name: "flashcard right",
			kind: KindFlashcard,
			arm:  Interaction{Flashcard: &FlashcardResult{Outcome: OutcomeRight}},
		},
		{
			name:    "flashcard bogus outcome",
			kind:    KindFlashcard,
			arm:     Interaction{Flashcard: &FlashcardResult{Outcome: "maybe"}},
			wantErr: ErrFlashcardOutcomeInvalid,
		},
		{
			name:    "flashcard payload on choice series",
			kind:    KindChoice,
			arm:     Interaction{Flashcard: &FlashcardResult{Outcome: OutcomeRight}},
			wantErr: ErrPayloadKindMismatch,
		},
		{
			name: "choice answer",
			kind: KindChoice,
			arm:  Interaction{Choice: &ChoiceResult{SelectedAnswer: "mitochondria"}},
		},
		{
			name:    "choice empty answer",
			kind:    KindChoice,
			arm:     Interaction{Choice: &ChoiceResult{}},
			wantErr: ErrChoiceAnswerEmpty,
		},
		{
			name:    "no arm",
			kind:    KindFlashcard,
			arm:     Interaction{},
			wantErr: ErrPayloadKindMismatch,
		},
		{
			name: "two arms",
			kind: KindFlashcard,
			arm: Interaction{
				Flashcard: &FlashcardResult{Outcome: OutcomeRight},
				Choice:    &ChoiceResult{SelectedAnswer: "x"},
			},
			wantErr: ErrPayloadKindMismatch,
		},
		{
			name:    "table no cells",
			kind:    KindTable,
			arm:     Interaction{Table: &TableResult{}},
			wantErr: ErrTableCellsEmpty,
		},
		{
			name: "table negative coordinate",
			kind: KindTable,
			arm: Interaction{Table: &TableResult{
				Cells: []CellPlacement{{Row: -1, Column: 0, Expected: 1, Placed: 1}},
			}},
			wantErr: ErrTableCellInvalid,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			interaction := tc.arm
			interaction.Difficulty = DifficultyMedium
			interaction.Confidence = ConfidenceLow

			err := interaction.Validate(tc.kind)
			if tc.wantErr == nil {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("Expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestTableResultDerivation(t *testing.T) {
	t.Parallel()

	interaction := &Interaction{
		Difficulty: DifficultyHard,
		Confidence: ConfidenceLow,
		Table: &TableResult{
			Cells: []CellPlacement{
				{Row: 0, Column: 0, Expected: 1, Placed: 1},
				{Row: 0, Column: 1, Expected: 2, Placed: 5},
				{Row: 1, Column: 0, Expected: 3, Placed: 3},
				// Client-supplied derived fields are recomputed, not trusted
				{Row: 1, Column: 1, Expected: 4, Placed: 9, Correct: true},
			},
			CorrectCount:    99,
			AccuracyPercent: 99,
		},
	}

	if err := interaction.Validate(KindTable); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	table := interaction.Table
	if table.CorrectCount != 2 {
		t.Errorf("Expected 2 correct cells, got %d", table.CorrectCount)
	}
	if table.AccuracyPercent != 50 {
		t.Errorf("Expected 50%% accuracy, got %d", table.AccuracyPercent)
	}
	if len(table.Mismatches) != 2 {
		t.Fatalf("Expected 2 mismatches, got %d", len(table.Mismatches))
	}
	first := table.Mismatches[0]
	if first.Row != 0 || first.Column != 1 || first.Expected != 2 || first.Placed != 5 {
		t.Errorf("Unexpected first mismatch: %+v", first)
	}
	if table.Cells[3].Correct {
		t.Error("Expected client-claimed correctness to be overwritten")
	}
	if interaction.Correct() {
		t.Error("Expected a 50%% table to not count as correct")
	}
}

func TestInteractionCorrect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   Interaction
		want bool
	}{
		{"flashcard right", Interaction{Flashcard: &FlashcardResult{Outcome: OutcomeRight}}, true},
		{"flashcard wrong", Interaction{Flashcard: &FlashcardResult{Outcome: OutcomeWrong}}, false},
		{"choice correct", Interaction{Choice: &ChoiceResult{SelectedAnswer: "a", IsCorrect: true}}, true},
		{"choice incorrect", Interaction{Choice: &ChoiceResult{SelectedAnswer: "b"}}, false},
		{"table full accuracy", Interaction{Table: &TableResult{AccuracyPercent: 100}}, true},
		{"table partial accuracy", Interaction{Table: &TableResult{AccuracyPercent: 75}}, false},
		{"no arm", Interaction{}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := tc.in.Correct(); got != tc.want {
				t.Errorf("Expected Correct() = %v, got %v", tc.want, got)
			}
		})
	}
}

func TestRoundedPercent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		part, total, want int
	}{
		{0, 0, 0},
		{1, 3, 33},
		{2, 3, 67},
		{1, 2, 50},
		{3, 3, 100},
	}
	for _, tc := range tests {
		if got := roundedPercent(tc.part, tc.total); got != tc.want {
			t.Errorf("roundedPercent(%d, %d) = %d, want %d", tc.part, tc.total, got, tc.want)
		}
	}
}
