package store

import (
	"errors"
	"fmt"

	"github.com/revisio/revisio-api/internal/domain"
)

// Store-level errors. Not-found errors wrap the domain taxonomy so callers
// can classify them with errors.Is(err, domain.ErrNotFound) without knowing
// which layer produced them.
var (
	// ErrSeriesNotFound indicates the requested series does not exist in the store.
	ErrSeriesNotFound = domain.ErrSeriesNotFound

	// ErrVersionConflict is returned by Save when the series version in the
	// store no longer matches the version the caller loaded. The engine
	// re-reads and reapplies the operation a bounded number of times.
	ErrVersionConflict = errors.New("series version conflict")

	// ErrDuplicateID indicates an insert collided with an existing series ID.
	ErrDuplicateID = fmt.Errorf("series ID already exists")
)

// IsRetryable reports whether the error is a transient storage conflict the
// caller may retry by re-reading and reapplying its operation.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrVersionConflict)
}
