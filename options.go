package flightcache

import (
	"io"
	"log/slog"
	"time"
)

// Option configures the cache.
type Option func(*options)

type options struct {
	logger          *slog.Logger
	cleanupInterval time.Duration
	cacheFailures   bool
}

func defaultOptions() *options {
	return &options{
		// Lazy expiry on read keeps the cache correct without a sweep;
		// the janitor only reclaims memory for keys that are never read
		// again, so it is opt-in.
		cleanupInterval: 0,
		cacheFailures:   false,
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithCleanupInterval enables a background janitor goroutine that removes
// expired entries every d. Zero or negative disables it.
// Default: disabled.
func WithCleanupInterval(d time.Duration) Option {
	return func(o *options) {
		o.cleanupInterval = d
	}
}

// WithFailureCaching stores failed outcomes for the full TTL, so callers
// within the freshness window fail fast with the original error instead
// of re-executing the operation.
// Default: failures are not cached; the next call retries immediately.
func WithFailureCaching() Option {
	return func(o *options) {
		o.cacheFailures = true
	}
}

// WithLogger sets a logger for debug-level cache events (hits, misses,
// leader elections, invalidations).
// Default: no output.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.logger = log
		}
	}
}
