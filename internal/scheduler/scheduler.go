// Package scheduler runs background housekeeping on a fixed interval.
package scheduler

import (
	"context"
	"time"

	"seace-engine/internal/logger"
)

type Task func(ctx context.Context) error

// Every runs task once right away and then on every tick until ctx is done.
// Runs never overlap; a failing run is logged and the next tick tries again.
func Every(ctx context.Context, interval time.Duration, name string, log logger.Logger, task Task) {
	log = logger.OrNop(log).With(logger.String("task", name))
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		if err := task(ctx); err != nil && ctx.Err() == nil {
			log.Warn("scheduled task failed", logger.Err(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}
