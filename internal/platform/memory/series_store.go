// Package memory provides in-memory implementations of the store interfaces.
// The series store serializes all writers behind one lock and keeps the same
// version-bump semantics as the postgres implementation, which makes it both
// the test double and a reference for the compare-and-swap contract.
package memory

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/revisio/revisio-api/internal/domain"
	"github.com/revisio/revisio-api/internal/store"
)

// SeriesStore implements store.SeriesStore over a map. All mutating
// operations run under a single mutex, so each series has at most one
// writer at a time; Save still enforces the version check so the retry
// path behaves exactly as it does against postgres.
type SeriesStore struct {
	mu     sync.RWMutex
	series map[uuid.UUID]*storedSeries
}

// storedSeries is the persisted form: a deep-copied document plus the
// current version, independent of any copy handed to callers.
type storedSeries struct {
	document []byte
	version  int64
}

// NewSeriesStore creates an empty in-memory series store.
func NewSeriesStore() *SeriesStore {
	return &SeriesStore{series: make(map[uuid.UUID]*storedSeries)}
}

// Ensure SeriesStore implements store.SeriesStore.
var _ store.SeriesStore = (*SeriesStore)(nil)

// Create implements store.SeriesStore.Create.
func (s *SeriesStore) Create(ctx context.Context, series *domain.Series) error {
	if err := series.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.series[series.ID]; exists {
		return store.ErrDuplicateID
	}

	document, err := marshalSeries(series)
	if err != nil {
		return err
	}
	s.series[series.ID] = &storedSeries{document: document, version: 1}
	series.Version = 1
	return nil
}

// GetByID implements store.SeriesStore.GetByID.
func (s *SeriesStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Series, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.series[id]
	if !ok {
		return nil, store.ErrSeriesNotFound
	}
	return unmarshalSeries(stored.document, stored.version)
}

// List implements store.SeriesStore.List.
func (s *SeriesStore) List(ctx context.Context, kind domain.ItemKind) ([]*domain.Series, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Series
	for _, stored := range s.series {
		series, err := unmarshalSeries(stored.document, stored.version)
		if err != nil {
			return nil, err
		}
		if series.Kind == kind {
			result = append(result, series)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].StartedAt.After(result[j].StartedAt)
	})
	return result, nil
}

// Save implements store.SeriesStore.Save with compare-and-swap semantics.
func (s *SeriesStore) Save(ctx context.Context, series *domain.Series) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.series[series.ID]
	if !ok {
		return store.ErrSeriesNotFound
	}
	if stored.version != series.Version {
		return store.ErrVersionConflict
	}

	document, err := marshalSeries(series)
	if err != nil {
		return err
	}
	stored.document = document
	stored.version++
	series.Version = stored.version
	return nil
}

// Delete implements store.SeriesStore.Delete.
func (s *SeriesStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.series[id]; !ok {
		return store.ErrSeriesNotFound
	}
	delete(s.series, id)
	return nil
}

// DeleteVersion implements store.SeriesStore.DeleteVersion with the same
// version check as Save.
func (s *SeriesStore) DeleteVersion(ctx context.Context, id uuid.UUID, version int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.series[id]
	if !ok {
		return store.ErrSeriesNotFound
	}
	if stored.version != version {
		return store.ErrVersionConflict
	}
	delete(s.series, id)
	return nil
}

// marshalSeries deep-copies a series through its JSON document form, the
// same representation the postgres store persists.
func marshalSeries(series *domain.Series) ([]byte, error) {
	return json.Marshal(series)
}

// unmarshalSeries restores a series from its document form and stamps the
// stored version onto the copy.
func unmarshalSeries(document []byte, version int64) (*domain.Series, error) {
	var series domain.Series
	if err := json.Unmarshal(document, &series); err != nil {
		return nil, err
	}
	series.Version = version
	return &series, nil
}
