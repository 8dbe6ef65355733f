// Package flightcache provides a keyed, time-bounded memoization cache
// with single-flight execution: concurrent calls for the same key are
// collapsed into one run of the underlying operation, and every caller
// receives the identical outcome.
//
// # Overview
//
// The cache answers three questions per call:
//
//   - Is there a fresh result for this key? Return it, no execution.
//   - Is someone already computing it? Wait and return their outcome.
//   - Otherwise, become the leader: execute, publish, release waiters.
//
// Freshness is a single TTL fixed at construction. Expiry is lazy: a
// stale entry is discarded the next time it is read. An optional janitor
// goroutine can sweep never-read keys (see [WithCleanupInterval]).
//
// # Basic Usage
//
//	c, err := flightcache.New[Report](5 * time.Second)
//	if err != nil {
//	    return err
//	}
//
//	report, err := c.Do(ctx, "report:2026-08", func(ctx context.Context) (Report, error) {
//	    return buildReport(ctx) // runs at most once per 5s window
//	})
//
// Key derivation is the caller's concern: bind the operation's arguments
// into the closure and into the key before calling Do. The cache treats
// keys as opaque strings with exact equality.
//
// # Single-Flight Semantics
//
// If N goroutines call Do with the same key while no fresh entry exists,
// exactly one of them (the leader) runs the operation on its own
// goroutine; the other N-1 (followers) block until the leader finishes
// and then return the same value or the same error. Distinct keys never
// serialize against each other, and no lock is held while the operation
// runs.
//
// # Error Handling
//
// An error returned by the operation reaches every caller untouched, so
// calling through the cache is indistinguishable from calling the
// operation directly. By default failures are not cached (fail-open):
// the next call after a failure retries. [WithFailureCaching] switches
// to negative caching, replaying the error until the TTL lapses.
//
// Construction with a non-positive TTL fails with [ErrInvalidTTL], and
// calls after [Cache.Close] fail with [ErrClosed]. Use [errors.Is] to
// check for them.
//
// # Known Limitations
//
// A follower's wait is unbounded: if the leader's operation never
// returns, every follower for that key blocks forever. The context
// passed to Do is forwarded to the operation but does not cancel a wait
// or an in-flight execution. There is no size bound or eviction policy;
// the TTL is the only thing that retires entries.
package flightcache
