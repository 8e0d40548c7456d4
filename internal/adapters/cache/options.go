package cache

import "errors"

// ErrFingerprint is returned when a cache key cannot be derived.
var ErrFingerprint = errors.New("cache fingerprint failed")

type config struct {
	maxSize int
}

// Option configures a cache.
type Option func(*config)

// WithMaxSize bounds the number of entries. maxSize <= 0 disables eviction.
func WithMaxSize(maxSize int) Option {
	return func(c *config) {
		c.maxSize = maxSize
	}
}
