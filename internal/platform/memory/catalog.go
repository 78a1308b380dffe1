package memory

import (
	"context"

	"github.com/revisio/revisio-api/internal/domain"
	"github.com/revisio/revisio-api/internal/store"
)

// Catalog is an in-memory store.Catalog backed by a fixed item set. Tests
// seed it with the identifiers and prompts they need; the choice variant
// also carries an answer key.
type Catalog struct {
	items   map[int64]domain.ItemSummary
	order   []int64
	answers map[int64]string
}

// NewCatalog creates a catalog holding the given items, preserving order
// for FetchSummaries.
func NewCatalog(items ...domain.ItemSummary) *Catalog {
	c := &Catalog{
		items:   make(map[int64]domain.ItemSummary, len(items)),
		answers: make(map[int64]string),
	}
	for _, item := range items {
		if _, seen := c.items[item.ItemID]; !seen {
			c.order = append(c.order, item.ItemID)
		}
		c.items[item.ItemID] = item
	}
	return c
}

// Ensure Catalog implements the catalog interfaces.
var (
	_ store.Catalog   = (*Catalog)(nil)
	_ store.AnswerKey = (*Catalog)(nil)
)

// SetAnswer records the correct answer for a choice question.
func (c *Catalog) SetAnswer(itemID int64, answer string) {
	c.answers[itemID] = answer
}

// Exists implements store.Catalog.Exists.
func (c *Catalog) Exists(ctx context.Context, itemIDs []int64) (map[int64]bool, error) {
	result := make(map[int64]bool, len(itemIDs))
	for _, id := range itemIDs {
		if _, ok := c.items[id]; ok {
			result[id] = true
		}
	}
	return result, nil
}

// FetchSummaries implements store.Catalog.FetchSummaries.
func (c *Catalog) FetchSummaries(ctx context.Context, itemIDs []int64) ([]domain.ItemSummary, error) {
	requested := make(map[int64]bool, len(itemIDs))
	for _, id := range itemIDs {
		requested[id] = true
	}

	var result []domain.ItemSummary
	for _, id := range c.order {
		if requested[id] {
			result = append(result, c.items[id])
		}
	}
	return result, nil
}

// CorrectAnswer implements store.AnswerKey.CorrectAnswer.
func (c *Catalog) CorrectAnswer(ctx context.Context, itemID int64) (string, error) {
	answer, ok := c.answers[itemID]
	if !ok {
		return "", domain.ErrItemNotFound
	}
	return answer, nil
}
