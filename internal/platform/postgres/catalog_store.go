package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/revisio/revisio-api/internal/domain"
	"github.com/revisio/revisio-api/internal/platform/logger"
	"github.com/revisio/revisio-api/internal/store"
)

// catalogTables maps each item kind to its catalog table. All three tables
// expose the same (id, prompt) display shape; only the choice table carries
// an answer column.
var catalogTables = map[domain.ItemKind]string{
	domain.KindFlashcard: "flashcards",
	domain.KindChoice:    "choice_questions",
	domain.KindTable:     "table_templates",
}

// CatalogStore implements store.Catalog for one item kind over its catalog
// table. The choice-question instance additionally implements
// store.AnswerKey.
type CatalogStore struct {
	db     store.DBTX
	kind   domain.ItemKind
	table  string
	logger *slog.Logger
}

// NewCatalogStore creates the read-only catalog store for the given kind.
func NewCatalogStore(db store.DBTX, kind domain.ItemKind, log *slog.Logger) *CatalogStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}
	table, ok := catalogTables[kind]
	if !ok {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("unknown item kind for catalog store")
	}
	if log == nil {
		log = slog.Default()
	}

	return &CatalogStore{
		db:     db,
		kind:   kind,
		table:  table,
		logger: log.With(slog.String("component", "catalog_store"), slog.String("kind", string(kind))),
	}
}

// Ensure CatalogStore implements the catalog interfaces.
var (
	_ store.Catalog   = (*CatalogStore)(nil)
	_ store.AnswerKey = (*CatalogStore)(nil)
)

// Exists implements store.Catalog.Exists.
func (s *CatalogStore) Exists(ctx context.Context, itemIDs []int64) (map[int64]bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := fmt.Sprintf(`SELECT id FROM %s WHERE id = ANY($1)`, s.table)

	rows, err := s.db.QueryContext(ctx, query, itemIDs)
	if err != nil {
		log.Error("failed to check catalog items", slog.String("error", err.Error()))
		return nil, err
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Error("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	result := make(map[int64]bool, len(itemIDs))
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		result[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// FetchSummaries implements store.Catalog.FetchSummaries.
func (s *CatalogStore) FetchSummaries(ctx context.Context, itemIDs []int64) ([]domain.ItemSummary, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := fmt.Sprintf(`SELECT id, prompt FROM %s WHERE id = ANY($1) ORDER BY id`, s.table)

	rows, err := s.db.QueryContext(ctx, query, itemIDs)
	if err != nil {
		log.Error("failed to fetch item summaries", slog.String("error", err.Error()))
		return nil, err
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Error("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	var result []domain.ItemSummary
	for rows.Next() {
		var summary domain.ItemSummary
		if err := rows.Scan(&summary.ItemID, &summary.Prompt); err != nil {
			return nil, err
		}
		result = append(result, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// CorrectAnswer implements store.AnswerKey.CorrectAnswer. Only the
// choice-question catalog carries an answer column; other kinds report the
// item as not found.
func (s *CatalogStore) CorrectAnswer(ctx context.Context, itemID int64) (string, error) {
	if s.kind != domain.KindChoice {
		return "", domain.ErrItemNotFound
	}

	var answer string
	err := s.db.QueryRowContext(
		ctx,
		`SELECT correct_answer FROM choice_questions WHERE id = $1`,
		itemID,
	).Scan(&answer)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrItemNotFound
		}
		return "", err
	}
	return answer, nil
}
