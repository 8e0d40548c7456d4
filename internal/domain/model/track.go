// Package model contains domain models passed between layers.
package model

import (
	"strings"
	"time"
)

// StatusReleased marks a track that is publicly available.
const StatusReleased = "released"

// Track is a read-only snapshot of the per-track facts used for valuation.
type Track struct {
	ID        string     `json:"id"`
	CatalogID string     `json:"catalog_id,omitempty"`
	Title     string     `json:"title,omitempty"`
	Status    string     `json:"status,omitempty"`
	// ReleaseDate is nil when the release date is unknown.
	ReleaseDate *time.Time `json:"release_date"`
	// PublisherSplits holds the raw split document, a JSON array of
	// {holder_id, percentage} objects. Nil means no splits were recorded.
	PublisherSplits *string `json:"publisher_splits"`
	Streams         int64   `json:"streams,omitempty"`
}

// Released reports whether the track counts as released.
func (t Track) Released() bool {
	return strings.EqualFold(strings.TrimSpace(t.Status), StatusReleased)
}

// Dated reports whether the track has a known release date.
func (t Track) Dated() bool {
	return t.ReleaseDate != nil && !t.ReleaseDate.IsZero()
}

// StreamStats aggregates stream counts for a catalog.
type StreamStats struct {
	Total   int64 `json:"total"`
	TopFive int64 `json:"top_five"`
}

// Holder is a rights holder referenced by publisher splits.
type Holder struct {
	ID     string `json:"id"`
	Name   string `json:"name,omitempty"`
	Tracks int    `json:"tracks"`
}
