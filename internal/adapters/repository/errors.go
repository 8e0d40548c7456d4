package repository

import "errors"

// Sentinel kinds for catalog store errors.
var (
	ErrCatalogNotFound = errors.New("catalog not found")
	ErrInvalidCatalog  = errors.New("invalid catalog id")
	ErrInvalidTrack    = errors.New("track id must not be empty")
)
