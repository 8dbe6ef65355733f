package flightcache

import "sync/atomic"

// Stats is a snapshot of the cache's monotonic counters.
type Stats struct {
	// Hits counts calls answered from the store without any coordination.
	Hits uint64
	// Misses counts calls that found no fresh entry in the store.
	Misses uint64
	// Executions counts how many times the underlying operation actually ran.
	Executions uint64
	// Deduped counts calls that attached to an in-flight execution as followers.
	Deduped uint64
	// Errors counts executions that returned an error.
	Errors uint64
}

type counters struct {
	hits       atomic.Uint64
	misses     atomic.Uint64
	executions atomic.Uint64
	deduped    atomic.Uint64
	errors     atomic.Uint64
}

func (c *counters) snapshot() Stats {
	return Stats{
		Hits:       c.hits.Load(),
		Misses:     c.misses.Load(),
		Executions: c.executions.Load(),
		Deduped:    c.deduped.Load(),
		Errors:     c.errors.Load(),
	}
}
