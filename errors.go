package flightcache

import "errors"

// Sentinel errors for cache operations. Errors returned by the cached
// operation itself are never wrapped in these; they propagate verbatim.
var (
	// ErrInvalidTTL is returned by New when the TTL is not positive.
	ErrInvalidTTL = errors.New("flightcache: ttl must be positive")

	// ErrClosed is returned when an operation is attempted on a closed cache.
	ErrClosed = errors.New("flightcache: cache is closed")

	// ErrPanicked is delivered to followers whose leader panicked while
	// executing the operation. The leader's own caller observes the
	// original panic.
	ErrPanicked = errors.New("flightcache: operation panicked")
)
