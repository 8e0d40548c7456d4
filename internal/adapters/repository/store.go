// Package repository defines the catalog store interface and its implementations.
package repository

import (
	"context"
	"sort"

	"github.com/okian/valuator/internal/domain/model"
	"github.com/okian/valuator/internal/domain/valuation"
)

// topStreamTracks is how many of the most-streamed tracks feed the
// concentration figure.
const topStreamTracks = 5

// Store provides read/write access to catalog tracks.
type Store interface {
	// ReleasedTracks returns the released tracks of a catalog ordered by ID.
	// Returns ErrCatalogNotFound if the catalog holds no tracks at all.
	ReleasedTracks(ctx context.Context, catalogID string) ([]model.Track, error)

	// StreamStats sums the streams of the released tracks and of the five
	// most-streamed of them.
	StreamStats(ctx context.Context, catalogID string) (model.StreamStats, error)

	// Holders lists the rights holders named by the catalog's split documents.
	// Malformed documents are skipped.
	Holders(ctx context.Context, catalogID string) ([]model.Holder, error)

	// PutTracks inserts or replaces tracks by ID within a catalog.
	PutTracks(ctx context.Context, catalogID string, tracks []model.Track) error

	// Count returns the number of catalogs held by the store.
	Count(ctx context.Context) int
}

// holdersOf collects the distinct holders referenced by the tracks' splits.
func holdersOf(tracks []model.Track) []model.Holder {
	byID := make(map[string]*model.Holder)
	for _, t := range tracks {
		if t.PublisherSplits == nil {
			continue
		}
		splits, err := valuation.ParseSplits(*t.PublisherSplits)
		if err != nil {
			continue
		}
		seen := make(map[string]struct{}, len(splits))
		for _, s := range splits {
			if s.HolderID == "" {
				continue
			}
			h, ok := byID[s.HolderID]
			if !ok {
				h = &model.Holder{ID: s.HolderID}
				byID[s.HolderID] = h
			}
			if h.Name == "" {
				h.Name = s.HolderName
			}
			if _, dup := seen[s.HolderID]; !dup {
				seen[s.HolderID] = struct{}{}
				h.Tracks++
			}
		}
	}

	out := make([]model.Holder, 0, len(byID))
	for _, h := range byID {
		out = append(out, *h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// statsOf computes stream totals over released tracks.
func statsOf(tracks []model.Track) model.StreamStats {
	streams := make([]int64, 0, len(tracks))
	var stats model.StreamStats
	for _, t := range tracks {
		if !t.Released() {
			continue
		}
		stats.Total += t.Streams
		streams = append(streams, t.Streams)
	}
	sort.Slice(streams, func(i, j int) bool { return streams[i] > streams[j] })
	for i := 0; i < len(streams) && i < topStreamTracks; i++ {
		stats.TopFive += streams[i]
	}
	return stats
}

func validateTracks(catalogID string, tracks []model.Track) error {
	if catalogID == "" {
		return ErrInvalidCatalog
	}
	for _, t := range tracks {
		if t.ID == "" {
			return ErrInvalidTrack
		}
	}
	return nil
}
