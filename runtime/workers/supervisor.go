package workers

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"chat-pulse/contract"
	"chat-pulse/errors"
)

const waitTimeBeforeRestart = 200 * time.Millisecond

// Supervisor runs each registered worker in its own goroutine, recovers
// their panics and restarts them after a short delay. A crashing worker
// never takes the supervisor or its siblings down. Run returns once
// every worker has stopped.
type Supervisor struct {
	Cancel  context.CancelFunc
	wg      *sync.WaitGroup
	log     *slog.Logger
	workers []contract.Worker
}

func NewSupervisor(log *slog.Logger) *Supervisor {
	return &Supervisor{wg: &sync.WaitGroup{}, log: log}
}

func (s *Supervisor) Add(worker ...contract.Worker) contract.ISupervisor {
	s.workers = append(s.workers, worker...)
	return s
}

// Run blocks until the parent context cancels, Stop is called, or every
// worker has finished on its own.
func (s *Supervisor) Run(ctx context.Context) {
	// Child context so Stop() only tears down our workers, not the
	// caller's ctx.
	supervisedCtx, cancel := context.WithCancel(ctx)
	s.Cancel = cancel
	defer s.Cancel()

	for _, worker := range s.workers {
		s.Start(supervisedCtx, worker)
	}
	s.wg.Wait()
}

// Start launches one worker under supervision. A panic inside Run is
// recovered and counted as a crash; crashes restart the worker after
// waitTimeBeforeRestart, a nil return retires it for good.
func (s *Supervisor) Start(ctx context.Context, worker contract.Worker) {
	s.wg.Add(1)
	workerName := contract.GetWorkerName(worker)

	go func() {
		defer s.wg.Done()

		for {
			if ctx.Err() != nil {
				s.log.Info("Stopping worker", "name", workerName)
				return
			}

			err := func() (err error) {
				defer func() {
					if r := recover(); r != nil {
						err = errors.ErrWorkerPanic
					}
				}()
				return worker.Run(ctx)
			}()

			if err == nil {
				s.log.Info("Worker finished", "name", workerName)
				return
			}

			if ctx.Err() != nil {
				s.log.Info("Worker stopped (context canceled)", "name", workerName)
				return
			}

			s.log.Warn("Worker crashed, restarting", "name", workerName, "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(waitTimeBeforeRestart):
			}
		}
	}()
}

// Stop cancels the supervised context. Run keeps blocking until the
// workers have drained.
func (s *Supervisor) Stop() {
	if s.Cancel != nil {
		s.Cancel()
	}
}
