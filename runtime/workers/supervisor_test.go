package workers

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type funcWorker struct {
	run func(ctx context.Context) error
}

func (w funcWorker) Run(ctx context.Context) error { return w.run(ctx) }

func TestSupervisor_RestartOnPanic(t *testing.T) {
	req := require.New(t)
	log := slog.Default()

	var calls atomic.Int64
	worker := funcWorker{run: func(ctx context.Context) error {
		calls.Add(1)
		panic("boom")
	}}

	sup := NewSupervisor(log, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	go sup.Add(worker).Run(ctx)

	// Waiting for panics and restarts
	time.Sleep(200 * time.Millisecond)

	req.GreaterOrEqual(calls.Load(), int64(2))
}

func TestSupervisor_WorkerFinishingIsNotRestarted(t *testing.T) {
	req := require.New(t)
	log := slog.Default()

	// Given a worker running only once
	var calls atomic.Int64
	worker := funcWorker{run: func(ctx context.Context) error {
		calls.Add(1)
		return nil
	}}

	sup := NewSupervisor(log, 0)

	// Given a channel to notify when Run() terminated
	done := make(chan struct{})

	go func() {
		sup.Add(worker).Run(context.Background())
		close(done)
	}()

	// The worker terminates properly and is never restarted, while the
	// supervisor keeps running for workers started later.
	req.Eventually(func() bool { return calls.Load() == 1 }, 500*time.Millisecond, 5*time.Millisecond)

	sup.Stop()
	select {
	case <-done:
		req.Equal(int64(1), calls.Load())
	case <-time.After(500 * time.Millisecond):
		req.Fail("Supervisor should have stopped after Stop")
	}
}

func TestSupervisor_StopCancelsLazilyStartedWorker(t *testing.T) {
	req := require.New(t)
	log := slog.Default()

	sup := NewSupervisor(log, 0)

	done := make(chan struct{})
	go func() {
		sup.Run(context.Background())
		close(done)
	}()

	// Started long after Run began, like a room authority.
	running := make(chan struct{})
	sup.Start(funcWorker{run: func(ctx context.Context) error {
		close(running)
		<-ctx.Done()
		return ctx.Err()
	}})

	select {
	case <-running:
	case <-time.After(500 * time.Millisecond):
		req.Fail("lazily started worker never ran")
	}

	sup.Stop()
	select {
	case <-done:
		// Run waited for the lazy worker and returned.
	case <-time.After(500 * time.Millisecond):
		req.Fail("Stop should cancel workers started after Run began")
	}
}

func TestSupervisor_StartAfterStopIsNoOp(t *testing.T) {
	req := require.New(t)
	log := slog.Default()

	sup := NewSupervisor(log, 0)
	sup.Stop()

	var calls atomic.Int64
	sup.Start(funcWorker{run: func(ctx context.Context) error {
		calls.Add(1)
		return nil
	}})

	time.Sleep(50 * time.Millisecond)
	req.Zero(calls.Load())
}
