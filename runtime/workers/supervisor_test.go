package workers

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"chat-pulse/mocks"
)

func TestSupervisor_RestartOnPanic(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	workerMock := mocks.NewMockWorker(ctrl)

	// Given a worker that panics on every run
	var calls atomic.Int64
	workerMock.EXPECT().
		Run(gomock.Any()).
		DoAndReturn(func(ctx context.Context) error {
			calls.Add(1)
			panic("boom")
		}).
		AnyTimes()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	go NewSupervisor(slog.Default()).Add(workerMock).Run(ctx)

	// Then the supervisor recovers and runs it again
	req.Eventually(func() bool {
		return calls.Load() >= 2
	}, time.Second, 10*time.Millisecond)
}

func TestSupervisor_StopOnSuccess(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	workerMock := mocks.NewMockWorker(ctrl)

	// Given a worker that terminates cleanly on its first run
	workerMock.EXPECT().
		Run(gomock.Any()).
		Return(nil).
		Times(1)

	done := make(chan struct{})
	go func() {
		NewSupervisor(slog.Default()).Add(workerMock).Run(context.Background())
		close(done)
	}()

	// Then a nil return retires the worker and Run comes back
	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		req.Fail("supervisor kept running after the worker finished")
	}
}
