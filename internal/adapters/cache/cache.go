// Package cache provides a bounded in-memory cache for computed valuations.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/okian/valuator/pkg/metrics"
)

const defaultMaxSize = 10_000

// Cache stores values by fingerprint.
type Cache[V any] interface {
	// Get returns the cached value for key, if any, and marks it recently used.
	Get(ctx context.Context, key string) (V, bool)
	// Put stores v under key, evicting the least recently used entry when full.
	Put(ctx context.Context, key string, v V)
	Len() int64
}

// inMemoryCache is a thread-safe LRU. Bounded mode (maxSize > 0) keeps at
// most maxSize entries; unbounded mode never evicts.
type inMemoryCache[V any] struct {
	lru *lru.Cache[string, V]
}

// New creates an in-memory cache.
func New[V any](opts ...Option) Cache[V] {
	cfg := config{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(&cfg)
	}
	size := cfg.maxSize
	if size <= 0 {
		size = math.MaxInt
	}
	// lru.New only fails for a non-positive size.
	l, _ := lru.New[string, V](size)
	return &inMemoryCache[V]{lru: l}
}

func (c *inMemoryCache[V]) Get(_ context.Context, key string) (V, bool) {
	v, ok := c.lru.Get(key)
	if !ok {
		metrics.RecordCacheMiss()
		return v, false
	}
	metrics.RecordCacheHit()
	return v, true
}

func (c *inMemoryCache[V]) Put(_ context.Context, key string, v V) {
	c.lru.Add(key, v)
	metrics.UpdateCacheSize(c.lru.Len())
}

func (c *inMemoryCache[V]) Len() int64 {
	return int64(c.lru.Len())
}

// Fingerprint hashes the JSON encoding of parts into a cache key.
func Fingerprint(parts ...any) (string, error) {
	h := sha256.New()
	enc := json.NewEncoder(h)
	for _, p := range parts {
		if err := enc.Encode(p); err != nil {
			return "", fmt.Errorf("%w: %w", ErrFingerprint, err)
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
