// Package observability aggregates runtime counters for the debug surface.
package observability

import (
	"os"
	"sync/atomic"
	"time"

	"github.com/shirou/gopsutil/process"
)

// Snapshot is the JSON shape served by the debug server.
type Snapshot struct {
	SessionsOpened   uint64  `json:"sessions_opened"`
	SessionsClosed   uint64  `json:"sessions_closed"`
	SessionsLive     int64   `json:"sessions_live"`
	MessagesPosted   uint64  `json:"messages_posted"`
	ReactionsAdded   uint64  `json:"reactions_added"`
	Deliveries       uint64  `json:"deliveries"`
	DroppedEnvelopes uint64  `json:"dropped_envelopes"`
	AuthFailures     uint64  `json:"auth_failures"`
	CPUPercent       float64 `json:"cpu_percent"`
	RAMBytes         uint64  `json:"ram_bytes"`
	CollectedAt      string  `json:"collected_at"`
}

// Stats keeps hot-path counters on atomics, no locking on delivery paths.
type Stats struct {
	sessionsOpened   atomic.Uint64
	sessionsClosed   atomic.Uint64
	messagesPosted   atomic.Uint64
	reactionsAdded   atomic.Uint64
	deliveries       atomic.Uint64
	droppedEnvelopes atomic.Uint64
	authFailures     atomic.Uint64

	proc *process.Process
}

func NewStats() *Stats {
	// Best effort: self stats stay zero when the process handle is
	// unavailable (some containers).
	proc, _ := process.NewProcess(int32(os.Getpid()))
	return &Stats{proc: proc}
}

func (s *Stats) IncrSessionsOpened() { s.sessionsOpened.Add(1) }
func (s *Stats) IncrSessionsClosed() { s.sessionsClosed.Add(1) }
func (s *Stats) IncrMessagesPosted() { s.messagesPosted.Add(1) }
func (s *Stats) IncrReactionsAdded() { s.reactionsAdded.Add(1) }
func (s *Stats) IncrDeliveries()     { s.deliveries.Add(1) }
func (s *Stats) IncrDropped()        { s.droppedEnvelopes.Add(1) }
func (s *Stats) IncrAuthFailures()   { s.authFailures.Add(1) }

func (s *Stats) GetLatest() Snapshot {
	snapshot := Snapshot{
		SessionsOpened:   s.sessionsOpened.Load(),
		SessionsClosed:   s.sessionsClosed.Load(),
		MessagesPosted:   s.messagesPosted.Load(),
		ReactionsAdded:   s.reactionsAdded.Load(),
		Deliveries:       s.deliveries.Load(),
		DroppedEnvelopes: s.droppedEnvelopes.Load(),
		AuthFailures:     s.authFailures.Load(),
		CollectedAt:      time.Now().UTC().Format(time.RFC3339),
	}
	snapshot.SessionsLive = int64(snapshot.SessionsOpened) - int64(snapshot.SessionsClosed)

	if s.proc != nil {
		if mem, err := s.proc.MemoryInfo(); err == nil {
			snapshot.RAMBytes = mem.RSS
		}
		if cpu, err := s.proc.CPUPercent(); err == nil {
			snapshot.CPUPercent = cpu
		}
	}
	return snapshot
}
