package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/okian/valuator/internal/domain/model"
	"github.com/okian/valuator/pkg/metrics"
)

// MemoryStore keeps catalogs in process memory. It backs the service when no
// database path is configured and serves as the store in tests.
type MemoryStore struct {
	mu       sync.RWMutex
	catalogs map[string]map[string]model.Track
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{catalogs: make(map[string]map[string]model.Track)}
}

// ReleasedTracks implements Store.ReleasedTracks.
func (s *MemoryStore) ReleasedTracks(_ context.Context, catalogID string) ([]model.Track, error) {
	defer observe("released_tracks", time.Now())

	all, err := s.tracks(catalogID)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, t := range all {
		if t.Released() {
			out = append(out, t)
		}
	}
	return out, nil
}

// StreamStats implements Store.StreamStats.
func (s *MemoryStore) StreamStats(_ context.Context, catalogID string) (model.StreamStats, error) {
	defer observe("stream_stats", time.Now())

	all, err := s.tracks(catalogID)
	if err != nil {
		return model.StreamStats{}, err
	}
	return statsOf(all), nil
}

// Holders implements Store.Holders.
func (s *MemoryStore) Holders(_ context.Context, catalogID string) ([]model.Holder, error) {
	defer observe("holders", time.Now())

	all, err := s.tracks(catalogID)
	if err != nil {
		return nil, err
	}
	return holdersOf(all), nil
}

// PutTracks implements Store.PutTracks.
func (s *MemoryStore) PutTracks(ctx context.Context, catalogID string, tracks []model.Track) error {
	defer observe("put_tracks", time.Now())

	if err := validateTracks(catalogID, tracks); err != nil {
		metrics.RecordStoreError("put_tracks")
		return err
	}

	s.mu.Lock()
	catalog, ok := s.catalogs[catalogID]
	if !ok {
		catalog = make(map[string]model.Track, len(tracks))
		s.catalogs[catalogID] = catalog
	}
	for _, t := range tracks {
		t.CatalogID = catalogID
		catalog[t.ID] = t
	}
	s.mu.Unlock()

	metrics.UpdateCatalogsTotal(s.Count(ctx))
	return nil
}

// Count implements Store.Count.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.catalogs)
}

// tracks returns a copy of a catalog's tracks ordered by ID.
func (s *MemoryStore) tracks(catalogID string) ([]model.Track, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	catalog, ok := s.catalogs[catalogID]
	if !ok || len(catalog) == 0 {
		metrics.RecordStoreError("not_found")
		return nil, ErrCatalogNotFound
	}
	out := make([]model.Track, 0, len(catalog))
	for _, t := range catalog {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func observe(op string, start time.Time) {
	metrics.RecordStoreQueryLatency(op, metrics.Milliseconds(time.Since(start)))
}
