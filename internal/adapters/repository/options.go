package repository

import (
	"github.com/okian/valuator/pkg/logger"
)

const defaultBatchSize = 200

// Option applies a configuration option to a SQLStore.
type Option func(*SQLStore)

// WithLogger sets the logger used for store failures.
func WithLogger(l logger.Logger) Option {
	return func(s *SQLStore) {
		if l != nil {
			s.log = l
		}
	}
}

// WithBatchSize sets how many rows PutTracks writes per insert statement.
func WithBatchSize(n int) Option {
	return func(s *SQLStore) {
		if n > 0 {
			s.batchSize = n
		}
	}
}
