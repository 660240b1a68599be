package workers

import (
	"context"
	"log/slog"
	"time"
)

// StoryPurger is the slice of storage the sweeper needs.
type StoryPurger interface {
	PurgeExpiredStories(ctx context.Context) (int, error)
}

// StorySweeper removes expired stories from storage on a fixed interval.
// Reads already filter expired rows, the sweeper only reclaims space.
type StorySweeper struct {
	log      *slog.Logger
	purger   StoryPurger
	interval time.Duration
}

func NewStorySweeper(log *slog.Logger, purger StoryPurger, interval time.Duration) *StorySweeper {
	return &StorySweeper{log: log, purger: purger, interval: interval}
}

func (w *StorySweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			purged, err := w.purger.PurgeExpiredStories(ctx)
			if err != nil {
				w.log.Error("Story sweep failed", "error", err)
				continue
			}
			if purged > 0 {
				w.log.Info("Purged expired stories", "count", purged)
			}
		}
	}
}
