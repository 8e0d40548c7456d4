package worker

import (
	"github.com/okian/valuator/pkg/logger"
)

// Option applies a configuration option to the Pool.
type Option func(*Pool)

// WithSize caps the number of concurrent workers. Values below 1 keep the default.
func WithSize(n int) Option {
	return func(p *Pool) {
		if n > 0 {
			p.size = n
		}
	}
}

// WithLogger sets a custom logger for the pool and its workers.
func WithLogger(l logger.Logger) Option {
	return func(p *Pool) {
		if l != nil {
			p.logger = l
		}
	}
}
