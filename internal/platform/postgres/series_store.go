package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/revisio/revisio-api/internal/domain"
	"github.com/revisio/revisio-api/internal/platform/logger"
	"github.com/revisio/revisio-api/internal/store"
)

// SeriesStore implements the store.SeriesStore interface using a PostgreSQL
// database as the storage backend. Each series row carries the whole
// document as JSONB plus a version column for optimistic locking; a few
// scalar columns are denormalized for listing.
type SeriesStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewSeriesStore creates a new PostgreSQL implementation of the SeriesStore
// interface. It accepts a database connection or transaction that should be
// initialized and managed by the caller. If logger is nil, a default logger
// will be used.
func NewSeriesStore(db store.DBTX, log *slog.Logger) *SeriesStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &SeriesStore{
		db:     db,
		logger: log.With(slog.String("component", "series_store")),
	}
}

// Ensure SeriesStore implements store.SeriesStore interface
var _ store.SeriesStore = (*SeriesStore)(nil)

// Create implements store.SeriesStore.Create.
// Returns store.ErrDuplicateID on an ID collision.
func (s *SeriesStore) Create(ctx context.Context, series *domain.Series) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := series.Validate(); err != nil {
		log.Warn("series validation failed during create",
			slog.String("error", err.Error()),
			slog.String("series_id", series.ID.String()))
		return err
	}

	document, err := json.Marshal(series)
	if err != nil {
		return fmt.Errorf("failed to marshal series document: %w", err)
	}

	query := `
		INSERT INTO series (id, kind, title, status, started_at, document, version)
		VALUES ($1, $2, $3, $4, $5, $6, 1)
	`
	_, err = s.db.ExecContext(
		ctx,
		query,
		series.ID,
		string(series.Kind),
		series.Title,
		string(series.Status),
		series.StartedAt,
		document,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrDuplicateID
		}
		log.Error("failed to create series",
			slog.String("error", err.Error()),
			slog.String("series_id", series.ID.String()))
		return err
	}

	series.Version = 1

	log.Debug("series created",
		slog.String("series_id", series.ID.String()),
		slog.String("kind", string(series.Kind)))
	return nil
}

// GetByID implements store.SeriesStore.GetByID.
// Returns store.ErrSeriesNotFound if the series does not exist.
func (s *SeriesStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Series, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT document, version
		FROM series
		WHERE id = $1
	`

	var document []byte
	var version int64
	err := s.db.QueryRowContext(ctx, query, id).Scan(&document, &version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("series not found", slog.String("series_id", id.String()))
			return nil, store.ErrSeriesNotFound
		}
		log.Error("failed to get series",
			slog.String("error", err.Error()),
			slog.String("series_id", id.String()))
		return nil, err
	}

	return unmarshalSeries(document, version)
}

// List implements store.SeriesStore.List.
func (s *SeriesStore) List(ctx context.Context, kind domain.ItemKind) ([]*domain.Series, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT document, version
		FROM series
		WHERE kind = $1
		ORDER BY started_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, string(kind))
	if err != nil {
		log.Error("failed to list series",
			slog.String("error", err.Error()),
			slog.String("kind", string(kind)))
		return nil, err
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Error("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	var result []*domain.Series
	for rows.Next() {
		var document []byte
		var version int64
		if err := rows.Scan(&document, &version); err != nil {
			return nil, err
		}
		series, err := unmarshalSeries(document, version)
		if err != nil {
			return nil, err
		}
		result = append(result, series)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Save implements store.SeriesStore.Save. The update only matches when the
// stored version equals the version the caller loaded; zero matched rows
// mean either a concurrent writer bumped the version or the series was
// deleted, distinguished with a follow-up existence probe.
func (s *SeriesStore) Save(ctx context.Context, series *domain.Series) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	document, err := json.Marshal(series)
	if err != nil {
		return fmt.Errorf("failed to marshal series document: %w", err)
	}

	query := `
		UPDATE series
		SET kind = $1,
		    title = $2,
		    status = $3,
		    started_at = $4,
		    document = $5,
		    version = version + 1
		WHERE id = $6 AND version = $7
		RETURNING version
	`

	var newVersion int64
	err = s.db.QueryRowContext(
		ctx,
		query,
		string(series.Kind),
		series.Title,
		string(series.Status),
		series.StartedAt,
		document,
		series.ID,
		series.Version,
	).Scan(&newVersion)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return s.classifySaveMiss(ctx, series.ID)
		}
		log.Error("failed to save series",
			slog.String("error", err.Error()),
			slog.String("series_id", series.ID.String()))
		return err
	}

	series.Version = newVersion

	log.Debug("series saved",
		slog.String("series_id", series.ID.String()),
		slog.Int64("version", newVersion))
	return nil
}

// Delete implements store.SeriesStore.Delete.
// Returns store.ErrSeriesNotFound if the series does not exist.
func (s *SeriesStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM series WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete series",
			slog.String("error", err.Error()),
			slog.String("series_id", id.String()))
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrSeriesNotFound
	}

	log.Debug("series deleted", slog.String("series_id", id.String()))
	return nil
}

// DeleteVersion implements store.SeriesStore.DeleteVersion. The delete only
// matches when the stored version equals the version the caller loaded; zero
// matched rows are classified the same way as a Save miss.
func (s *SeriesStore) DeleteVersion(ctx context.Context, id uuid.UUID, version int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(
		ctx,
		`DELETE FROM series WHERE id = $1 AND version = $2`,
		id,
		version,
	)
	if err != nil {
		log.Error("failed to delete series",
			slog.String("error", err.Error()),
			slog.String("series_id", id.String()))
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return s.classifySaveMiss(ctx, id)
	}

	log.Debug("series deleted",
		slog.String("series_id", id.String()),
		slog.Int64("version", version))
	return nil
}

// classifySaveMiss distinguishes a version conflict from a deleted series
// after an update matched zero rows.
func (s *SeriesStore) classifySaveMiss(ctx context.Context, id uuid.UUID) error {
	var exists bool
	err := s.db.QueryRowContext(
		ctx,
		`SELECT EXISTS (SELECT 1 FROM series WHERE id = $1)`,
		id,
	).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return store.ErrSeriesNotFound
	}
	return store.ErrVersionConflict
}

// unmarshalSeries restores a series from its JSONB document and stamps the
// stored version onto it.
func unmarshalSeries(document []byte, version int64) (*domain.Series, error) {
	var series domain.Series
	if err := json.Unmarshal(document, &series); err != nil {
		return nil, fmt.Errorf("failed to unmarshal series document: %w", err)
	}
	series.Version = version
	return &series, nil
}
