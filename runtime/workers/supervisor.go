package workers

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tone-row/resonance/contract"
	"github.com/tone-row/resonance/errors"
)

const defaultRestartInterval = 200 * time.Millisecond

// Supervisor Own a context and a Cancel function
// Run each worker in a goroutine
// Check panics and errors
// Restart workers automatically
// Shutdown properly if parent context is canceled
// Wait for the end of all goroutines via WaitGroup
//
// The supervised context exists from construction, so workers can be
// started lazily at any point of the supervisor's life and Stop cancels
// all of them, whenever they were started.
type Supervisor struct {
	mu              sync.Mutex
	ctx             context.Context
	cancel          context.CancelFunc
	wg              sync.WaitGroup
	log             *slog.Logger
	workers         []contract.Worker
	restartInterval time.Duration
}

func NewSupervisor(log *slog.Logger, restartInterval time.Duration) *Supervisor {
	if restartInterval <= 0 {
		restartInterval = defaultRestartInterval
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Supervisor{
		ctx:             ctx,
		cancel:          cancel,
		log:             log,
		restartInterval: restartInterval,
	}
}

// Run starts the pre-registered workers and supervises until the parent
// context or Stop cancels. It then waits for every worker to finish,
// including the ones started lazily after Run began.
func (s *Supervisor) Run(ctx context.Context) {
	s.mu.Lock()
	pending := s.workers
	s.workers = nil
	s.mu.Unlock()

	for _, worker := range pending {
		s.Start(worker)
	}

	select {
	case <-ctx.Done():
		// If the parent (main) cancels, we Cancel our children too.
		s.Stop()
	case <-s.ctx.Done():
	}
	s.wg.Wait()
}

func (s *Supervisor) Add(worker ...contract.Worker) contract.ISupervisor {
	s.mu.Lock()
	s.workers = append(s.workers, worker...)
	s.mu.Unlock()
	return s
}

// Start runs a worker under supervision, under the supervised context.
// The worker is executed in a dedicated goroutine. If its Run method panics,
// the supervisor recovers, restarts the worker, and keeps the supervision
// loop alive. A failure in one worker must not stop the supervisor itself.
// This provides fault isolation and basic self-healing behavior.
// Room authorities are started here lazily, long after Run began.
// After Stop, Start is a no-op: the WaitGroup must not grow once the
// waiters have been released.
func (s *Supervisor) Start(worker contract.Worker) {
	workerName := contract.GetWorkerName(worker)

	s.mu.Lock()
	if s.ctx.Err() != nil {
		s.mu.Unlock()
		s.log.Info(fmt.Sprintf("Supervisor stopped, not starting : %s", workerName))
		return
	}
	s.wg.Add(1)
	ctx := s.ctx
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()

		for {
			if ctx.Err() != nil {
				s.log.Info(fmt.Sprintf("Stopping : %s", workerName))
				return
			}

			err := func() (err error) {
				defer func() {
					if r := recover(); r != nil {
						err = errors.ErrWorkerPanic
					}
				}()
				// Execute the children goroutine
				// Restarted after a crash
				// Not restarting the entire goroutine
				return worker.Run(ctx)
			}()

			if err == nil {
				// Terminated properly, never restart !
				s.log.Info(fmt.Sprintf("Worker finished : %s", workerName))
				return
			}

			if ctx.Err() != nil {
				s.log.Info("Worker stopped (context canceled)", "name", workerName)
				return
			}

			s.log.Warn("Worker crashed, restarting", "name", workerName, "error", err)
			select {
			case <-ctx.Done():
				// Context canceled: priority stop.
				// Exit immediately without waiting for the restart delay.
				return
			case <-time.After(s.restartInterval):
				// Delay elapsed and context is still active.
				// Proceed with the worker restart.
			}
		}
	}()
}

// Stop Cancel all goroutines listening channel for Ctx.Done
// Supervisor will wait for all goroutines to finish
func (s *Supervisor) Stop() {
	s.mu.Lock()
	s.cancel()
	s.mu.Unlock()
}
