package flight

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTryStart(t *testing.T) {
	t.Parallel()

	t.Run("first caller becomes leader", func(t *testing.T) {
		t.Parallel()

		r := NewRegistry[int]()

		leader, follower := r.TryStart("k")
		require.NotNil(t, leader)
		require.Nil(t, follower)
		require.Equal(t, 1, r.InFlight())
	})

	t.Run("second caller becomes follower", func(t *testing.T) {
		t.Parallel()

		r := NewRegistry[int]()

		leader, _ := r.TryStart("k")
		require.NotNil(t, leader)

		l2, follower := r.TryStart("k")
		require.Nil(t, l2)
		require.NotNil(t, follower)
		require.Equal(t, 1, r.InFlight())
	})

	t.Run("distinct keys get distinct leaders", func(t *testing.T) {
		t.Parallel()

		r := NewRegistry[int]()

		la, _ := r.TryStart("a")
		lb, _ := r.TryStart("b")
		require.NotNil(t, la)
		require.NotNil(t, lb)
		require.Equal(t, 2, r.InFlight())
	})

	t.Run("exactly one leader under contention", func(t *testing.T) {
		t.Parallel()

		r := NewRegistry[int]()

		var leaders atomic.Int64
		var wg sync.WaitGroup
		start := make(chan struct{})

		followers := make([]*Follower[int], 20)
		for i := range followers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				if l, f := r.TryStart("contended"); l != nil {
					leaders.Add(1)
					go func() {
						time.Sleep(10 * time.Millisecond)
						l.Finish(99, nil)
					}()
				} else {
					followers[i] = f
				}
			}()
		}
		close(start)
		wg.Wait()

		require.EqualValues(t, 1, leaders.Load())

		for _, f := range followers {
			if f == nil {
				continue
			}
			v, err := f.Wait()
			require.NoError(t, err)
			require.Equal(t, 99, v)
		}
	})
}

func TestFinish(t *testing.T) {
	t.Parallel()

	t.Run("removes the key from the registry", func(t *testing.T) {
		t.Parallel()

		r := NewRegistry[string]()

		leader, _ := r.TryStart("k")
		leader.Finish("v", nil)
		require.Equal(t, 0, r.InFlight())

		// A fresh race can start after Finish.
		l2, f2 := r.TryStart("k")
		require.NotNil(t, l2)
		require.Nil(t, f2)
	})

	t.Run("delivers the value to waiting followers", func(t *testing.T) {
		t.Parallel()

		r := NewRegistry[string]()

		leader, _ := r.TryStart("k")
		_, follower := r.TryStart("k")

		done := make(chan struct{})
		go func() {
			defer close(done)
			v, err := follower.Wait()
			require.NoError(t, err)
			require.Equal(t, "result", v)
		}()

		leader.Finish("result", nil)

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("follower was not woken by Finish")
		}
	})

	t.Run("delivers the error to waiting followers", func(t *testing.T) {
		t.Parallel()

		r := NewRegistry[string]()
		opErr := errors.New("failed")

		leader, _ := r.TryStart("k")
		_, follower := r.TryStart("k")

		leader.Finish("", opErr)

		_, err := follower.Wait()
		require.ErrorIs(t, err, opErr)
	})
}

func TestWait(t *testing.T) {
	t.Parallel()

	t.Run("returns immediately when already finished", func(t *testing.T) {
		t.Parallel()

		r := NewRegistry[int]()

		leader, _ := r.TryStart("k")
		_, follower := r.TryStart("k")

		leader.Finish(5, nil)

		// Waiting after completion must not block or lose the outcome.
		v, err := follower.Wait()
		require.NoError(t, err)
		require.Equal(t, 5, v)
	})

	t.Run("every follower observes the same outcome", func(t *testing.T) {
		t.Parallel()

		type payload struct{ n int }

		r := NewRegistry[*payload]()

		leader, _ := r.TryStart("k")

		results := make([]*payload, 10)
		var wg sync.WaitGroup
		for i := range results {
			_, follower := r.TryStart("k")
			require.NotNil(t, follower)
			wg.Add(1)
			go func() {
				defer wg.Done()
				v, err := follower.Wait()
				require.NoError(t, err)
				results[i] = v
			}()
		}

		want := &payload{n: 1}
		leader.Finish(want, nil)
		wg.Wait()

		for _, got := range results {
			require.Same(t, want, got)
		}
	})
}
