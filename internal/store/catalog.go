package store

import (
	"context"

	"github.com/revisio/revisio-api/internal/domain"
)

// Catalog is the read-only view of one item catalog (flashcards, choice
// questions or table templates). The engine consults it only to validate
// session-start input and to enrich the start-session response; it never
// mutates catalog content.
type Catalog interface {
	// Exists reports which of the given item identifiers exist in the
	// catalog. Identifiers absent from the result map do not exist.
	Exists(ctx context.Context, itemIDs []int64) (map[int64]bool, error)

	// FetchSummaries returns the minimal display fields for the given items,
	// in catalog order. Unknown identifiers are silently omitted.
	FetchSummaries(ctx context.Context, itemIDs []int64) ([]domain.ItemSummary, error)
}

// AnswerKey is implemented by catalogs that hold a correct answer per item,
// currently only the choice-question catalog. The engine uses it to derive
// interaction correctness at record time; the derived boolean is what gets
// stored, never the answer itself.
type AnswerKey interface {
	// CorrectAnswer returns the stored correct answer for the given item.
	// Returns domain.ErrItemNotFound for an unknown identifier.
	CorrectAnswer(ctx context.Context, itemID int64) (string, error)
}
