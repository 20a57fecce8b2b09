package loadgate

import (
	"time"

	"go.uber.org/zap"
)

// DefaultFetchTimeout bounds a single fetch.
const DefaultFetchTimeout = 30 * time.Second

// Option configures a Gate.
type Option func(*options)

type options struct {
	logger       *zap.Logger
	cache        *Cache
	fetchTimeout time.Duration
}

func defaultOptions() options {
	return options{
		logger:       zap.NewNop(),
		fetchTimeout: DefaultFetchTimeout,
	}
}

// WithLogger sets the gate logger.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.logger = log
		}
	}
}

// WithCache makes the gate use cache instead of a new unbounded one.
func WithCache(cache *Cache) Option {
	return func(o *options) {
		o.cache = cache
	}
}

// WithFetchTimeout bounds each fetch. Zero disables the timeout.
func WithFetchTimeout(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.fetchTimeout = d
		}
	}
}
