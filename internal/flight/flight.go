// Package flight implements the single-flight registry that collapses
// concurrent executions for the same key into one.
//
// For each key the registry tracks at most one in-flight call. The first
// caller to reach TryStart for a key becomes the leader and is obligated
// to execute the operation and call Finish exactly once; every caller
// arriving while the call is in flight becomes a follower and blocks in
// Wait until the leader publishes the outcome.
//
// The check-and-register step in TryStart runs under the registry mutex,
// which is what makes "exactly one execution per key" hold under true
// parallelism. Wakeup uses a sync.WaitGroup per call: Add(1) happens
// before the call is registered, so a follower that attaches after the
// leader finished observes the completed WaitGroup immediately and no
// wakeup can be missed.
package flight

import "sync"

// call is the shared record for one in-flight execution. The leader
// writes val and err before releasing wg; followers read them only after
// wg.Wait returns, which gives the required happens-before edge.
type call[V any] struct {
	val V
	err error
	wg  sync.WaitGroup
}

// Registry arbitrates leadership per key. The zero value is not usable;
// construct with NewRegistry.
type Registry[V any] struct {
	flights map[string]*call[V]
	mu      sync.Mutex
}

// NewRegistry creates an empty registry.
func NewRegistry[V any]() *Registry[V] {
	return &Registry[V]{
		flights: make(map[string]*call[V]),
	}
}

// Leader is the token held by the single caller elected to execute the
// operation for a key. The holder must call Finish exactly once, even on
// failure, or every follower for the key blocks forever.
type Leader[V any] struct {
	reg *Registry[V]
	c   *call[V]
	key string
}

// Follower is the token held by a caller that attached to an execution
// already in flight.
type Follower[V any] struct {
	c *call[V]
}

// TryStart atomically checks for an in-flight call on key. If none
// exists, one is registered and a Leader is returned; otherwise a
// Follower bound to the existing call is returned. Exactly one of the
// two results is non-nil.
func (r *Registry[V]) TryStart(key string) (*Leader[V], *Follower[V]) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.flights[key]; ok {
		return nil, &Follower[V]{c: c}
	}

	c := new(call[V])
	c.wg.Add(1)
	r.flights[key] = c

	return &Leader[V]{reg: r, c: c, key: key}, nil
}

// InFlight returns the number of keys with a registered in-flight call.
func (r *Registry[V]) InFlight() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.flights)
}

// Finish records the outcome of the execution, removes the key from the
// registry so a later miss starts a fresh race, and wakes every attached
// follower. The outcome slots are written before the WaitGroup is
// released, and the registry entry is removed before that too, so no new
// follower can attach to an already-finished call.
func (l *Leader[V]) Finish(value V, err error) {
	l.c.val = value
	l.c.err = err

	l.reg.mu.Lock()
	delete(l.reg.flights, l.key)
	l.reg.mu.Unlock()

	l.c.wg.Done()
}

// Wait blocks until the leader calls Finish, then returns the recorded
// outcome. It returns immediately if the call already finished.
func (f *Follower[V]) Wait() (V, error) {
	f.c.wg.Wait()
	return f.c.val, f.c.err
}
