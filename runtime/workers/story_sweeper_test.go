package workers

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type countingPurger struct {
	calls atomic.Int64
	err   error
}

func (p *countingPurger) PurgeExpiredStories(context.Context) (int, error) {
	p.calls.Add(1)
	return 3, p.err
}

func TestStorySweeper_PurgesOnEveryTick(t *testing.T) {
	req := require.New(t)
	purger := &countingPurger{}
	sweeper := NewStorySweeper(slog.Default(), purger, 20*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	err := sweeper.Run(ctx)
	req.ErrorIs(err, context.DeadlineExceeded)
	req.GreaterOrEqual(purger.calls.Load(), int64(2))
}

func TestStorySweeper_SurvivesPurgeFailure(t *testing.T) {
	req := require.New(t)
	purger := &countingPurger{err: fmt.Errorf("disk on fire")}
	sweeper := NewStorySweeper(slog.Default(), purger, 20*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	// A failing purge must not kill the worker, only the context does
	err := sweeper.Run(ctx)
	req.ErrorIs(err, context.DeadlineExceeded)
	req.GreaterOrEqual(purger.calls.Load(), int64(2))
}
