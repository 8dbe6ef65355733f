// A runnable demonstration of single-flight memoization: two concurrent
// requests plus a third sequential one for the same key cost a single
// one-second computation, and all three observe the same value.
package main

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/flightcache"
)

func main() {
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	cache, err := flightcache.New[int](5*time.Second, flightcache.WithLogger(log))
	if err != nil {
		log.Error("failed to create cache", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer cache.Close()

	ctx := context.Background()
	start := time.Now()

	// Two concurrent requests race on the same key; one becomes the
	// leader and sleeps, the other attaches and waits.
	var g errgroup.Group
	results := make([]int, 2)
	for i := range results {
		requestID := uuid.NewString()
		g.Go(func() error {
			v, err := cache.Do(ctx, "expensive-report", slowRandom)
			if err != nil {
				return err
			}
			results[i] = v
			log.Info("request served",
				slog.String("request_id", requestID),
				slog.Int("value", v),
				slog.Duration("elapsed", time.Since(start)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Error("request failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// A third, sequential request inside the TTL window is a plain hit.
	third, err := cache.Do(ctx, "expensive-report", slowRandom)
	if err != nil {
		log.Error("request failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if results[0] != results[1] || results[0] != third {
		log.Error("results diverged",
			slog.Int("first", results[0]), slog.Int("second", results[1]), slog.Int("third", third))
		os.Exit(1)
	}

	stats := cache.Stats()
	log.Info("done",
		slog.Int("value", third),
		slog.Duration("total", time.Since(start)), // ~1s, not 3s
		slog.Uint64("executions", stats.Executions),
		slog.Uint64("deduped", stats.Deduped),
		slog.Uint64("hits", stats.Hits))
}

// slowRandom stands in for an expensive upstream call.
func slowRandom(_ context.Context) (int, error) {
	time.Sleep(time.Second)
	return rand.IntN(10)*100 + 100, nil
}
