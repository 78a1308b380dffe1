package domain

// ItemKind identifies which catalog a series draws its items from and which
// interaction payload arm its sessions record.
type ItemKind string

// Supported item kinds.
const (
	KindFlashcard ItemKind = "flashcard"
	KindChoice    ItemKind = "choice"
	KindTable     ItemKind = "table"
)

// Valid reports whether the kind is one of the supported item kinds.
func (k ItemKind) Valid() bool {
	switch k {
	case KindFlashcard, KindChoice, KindTable:
		return true
	}
	return false
}

// Difficulty is the learner's subjective difficulty rating for one attempt.
type Difficulty string

// Difficulty values.
const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid reports whether the difficulty is one of the allowed ratings.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Confidence is the learner's self-reported confidence while solving.
type Confidence string

// Confidence values.
const (
	ConfidenceHigh Confidence = "high"
	ConfidenceLow  Confidence = "low"
)

// Valid reports whether the confidence is one of the allowed values.
func (c Confidence) Valid() bool {
	return c == ConfidenceHigh || c == ConfidenceLow
}
