package workers

import (
	"context"
	"log/slog"
	"time"

	"chat-pulse/observability"
)

// StatsReporter periodically logs the observability snapshot (sessions,
// deliveries, process CPU/RAM).
type StatsReporter struct {
	log      *slog.Logger
	stats    *observability.Stats
	interval time.Duration
}

func NewStatsReporter(log *slog.Logger, stats *observability.Stats, interval time.Duration) *StatsReporter {
	return &StatsReporter{log: log, stats: stats, interval: interval}
}

func (w *StatsReporter) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			snapshot := w.stats.GetLatest()
			w.log.Info("Runtime stats",
				"sessions_live", snapshot.SessionsLive,
				"messages_posted", snapshot.MessagesPosted,
				"deliveries", snapshot.Deliveries,
				"dropped", snapshot.DroppedEnvelopes,
				"cpu_percent", snapshot.CPUPercent,
				"ram_bytes", snapshot.RAMBytes,
			)
		}
	}
}
