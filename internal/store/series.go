package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/revisio/revisio-api/internal/domain"
)

// SeriesStore persists Series aggregates as whole documents. The series,
// with its embedded sessions, is the unit of concurrency control: Save
// replaces the entire document and succeeds only when the caller holds the
// current version, so concurrent writers never silently lose an update.
type SeriesStore interface {
	// Create inserts a new series. The series must be valid according to
	// domain validation rules. Returns ErrDuplicateID on an ID collision.
	// On success the series Version is set to the initial stored version.
	Create(ctx context.Context, series *domain.Series) error

	// GetByID retrieves a series, with all embedded sessions, by its ID.
	// Returns ErrSeriesNotFound if the series does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Series, error)

	// List returns all series of the given kind, ordered by start time
	// descending. Reads need not observe a consistent snapshot across series.
	List(ctx context.Context, kind domain.ItemKind) ([]*domain.Series, error)

	// Save replaces the stored document with the given series if and only if
	// the stored version equals series.Version (compare-and-swap). On success
	// the series Version is bumped in place. Returns ErrVersionConflict on a
	// version mismatch and ErrSeriesNotFound if the series was deleted.
	Save(ctx context.Context, series *domain.Series) error

	// Delete removes the series and all embedded sessions unconditionally.
	// Returns ErrSeriesNotFound if the series does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteVersion removes the series if and only if the stored version
	// equals the given version (compare-and-swap delete). Returns
	// ErrVersionConflict when a concurrent writer bumped the version and
	// ErrSeriesNotFound if the series does not exist. Mutations that end in
	// a delete use this so a write committed after the caller's read is
	// never silently destroyed.
	DeleteVersion(ctx context.Context, id uuid.UUID, version int64) error
}
