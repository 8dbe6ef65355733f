package flightcache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/flightcache/internal/flight"
	"github.com/dmitrymomot/flightcache/internal/store"
)

// Operation is the unit of work the cache memoizes. The caller binds any
// arguments it needs before handing the operation over; the cache only
// forwards the context it received in Do.
type Operation[V any] func(ctx context.Context) (V, error)

// Cache memoizes operation results per key for a fixed TTL and collapses
// concurrent calls for the same key into a single execution.
//
// A Cache is an explicitly constructed, caller-owned value; there is no
// package-level instance. Call Close when done if a cleanup interval was
// configured.
type Cache[V any] struct {
	store   *store.Store[V]
	flights *flight.Registry[V]
	opts    *options
	done    chan struct{}
	stats   counters
	ttl     time.Duration
	mu      sync.Mutex
	closed  bool
}

// New creates a cache whose entries stay fresh for ttl.
// Returns ErrInvalidTTL if ttl is not positive.
func New[V any](ttl time.Duration, opts ...Option) (*Cache[V], error) {
	if ttl <= 0 {
		return nil, ErrInvalidTTL
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	c := &Cache[V]{
		store:   store.New[V](),
		flights: flight.NewRegistry[V](),
		opts:    o,
		done:    make(chan struct{}),
		ttl:     ttl,
	}

	if o.cleanupInterval > 0 {
		go c.janitor()
	}

	return c, nil
}

// Do returns the cached result for key if one is fresh; otherwise it
// ensures fn runs exactly once among all concurrent callers racing on
// key and hands the single outcome to each of them.
//
// fn runs synchronously on the goroutine of whichever caller is elected
// leader. ctx is forwarded to fn; it does not bound a follower's wait,
// which lasts until the leader's fn returns.
//
// Errors from fn are returned unmodified, exactly as a direct call would
// produce them. By default a failed outcome is not cached, so the next
// call after a failure executes fn again; see WithFailureCaching.
func (c *Cache[V]) Do(ctx context.Context, key string, fn Operation[V]) (V, error) {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()

	if closed {
		var zero V
		return zero, ErrClosed
	}

	if e, ok := c.store.Get(key, time.Now()); ok {
		c.stats.hits.Add(1)
		c.opts.logger.DebugContext(ctx, "cache hit", slog.String("key", key))
		return e.Value, e.Err
	}
	c.stats.misses.Add(1)

	leader, follower := c.flights.TryStart(key)
	if follower != nil {
		c.stats.deduped.Add(1)
		c.opts.logger.DebugContext(ctx, "joined in-flight call", slog.String("key", key))
		return follower.Wait()
	}

	return c.lead(ctx, leader, key, fn)
}

// lead runs fn as the leader for key and publishes the outcome to the
// store and to every attached follower.
func (c *Cache[V]) lead(ctx context.Context, leader *flight.Leader[V], key string, fn Operation[V]) (V, error) {
	// A previous leader may have published between our store miss and
	// TryStart. Re-checking under leadership closes that gap, keeping
	// executions at one per freshness window.
	if e, ok := c.store.Get(key, time.Now()); ok {
		leader.Finish(e.Value, e.Err)
		return e.Value, e.Err
	}

	c.stats.executions.Add(1)
	c.opts.logger.DebugContext(ctx, "executing operation",
		slog.String("key", key), slog.Duration("ttl", c.ttl))

	var (
		value V
		err   error
	)
	finished := false
	defer func() {
		if finished {
			return
		}
		// fn panicked. Release followers with a sentinel error and let
		// the panic unwind through the leader's caller.
		var zero V
		leader.Finish(zero, ErrPanicked)
	}()

	value, err = fn(ctx)
	finished = true

	// Publish to the store before releasing followers: a caller that
	// misses the registry right after Finish must find the entry.
	if err == nil || c.opts.cacheFailures {
		c.store.Set(key, store.Entry[V]{
			Value:     value,
			Err:       err,
			ExpiresAt: time.Now().Add(c.ttl),
		})
	}
	leader.Finish(value, err)

	if err != nil {
		c.stats.errors.Add(1)
		c.opts.logger.DebugContext(ctx, "operation failed",
			slog.String("key", key), slog.String("error", err.Error()))
	}

	return value, err
}

// Forget drops the stored entry for key so the next Do re-executes the
// operation. It does not affect an execution currently in flight;
// followers already attached still receive that leader's outcome.
func (c *Cache[V]) Forget(key string) {
	c.store.Delete(key)
	c.opts.logger.Debug("entry forgotten", slog.String("key", key))
}

// Len returns the number of stored entries. Entries that expired but
// were not yet read or swept are included.
func (c *Cache[V]) Len() int {
	return c.store.Len()
}

// Stats returns a snapshot of the cache's counters.
func (c *Cache[V]) Stats() Stats {
	return c.stats.snapshot()
}

// Close stops the background janitor and marks the cache as closed;
// subsequent Do calls return ErrClosed. Close is idempotent.
func (c *Cache[V]) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	c.closed = true
	close(c.done)

	return nil
}

// janitor periodically removes expired entries.
func (c *Cache[V]) janitor() {
	ticker := time.NewTicker(c.opts.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			if n := c.store.DeleteExpired(time.Now()); n > 0 {
				c.opts.logger.Debug("expired entries swept", slog.Int("removed", n))
			}
		}
	}
}
