package workers

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"dm-lab/internal"
)

// panicOnceWorker panics on its first run, then blocks until canceled.
type panicOnceWorker struct {
	runs int32
}

func (w *panicOnceWorker) Run(ctx context.Context) error {
	if atomic.AddInt32(&w.runs, 1) == 1 {
		panic("first run goes down in flames")
	}
	<-ctx.Done()
	return nil
}

// finishingWorker terminates properly right away.
type finishingWorker struct {
	runs int32
}

func (w *finishingWorker) Run(_ context.Context) error {
	atomic.AddInt32(&w.runs, 1)
	return nil
}

func TestSupervisor_RestartsPanickedWorker(t *testing.T) {
	req := require.New(t)
	log := internal.GetLoggerFromString("ERROR")

	// Given a worker that panics on its first run
	worker := &panicOnceWorker{}
	sup := NewSupervisor(log)
	sup.Add(worker)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		sup.Run(ctx)
	}()

	// Then the supervisor recovers and starts it again
	req.Eventually(func() bool {
		return atomic.LoadInt32(&worker.runs) >= 2
	}, 2*time.Second, 10*time.Millisecond)

	// And everything winds down with the parent context
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		req.Fail("supervisor did not stop on context cancellation")
	}
}

func TestSupervisor_NeverRestartsCleanExit(t *testing.T) {
	req := require.New(t)
	log := internal.GetLoggerFromString("ERROR")

	// Given a worker that terminates properly
	worker := &finishingWorker{}
	sup := NewSupervisor(log)
	sup.Add(worker)

	done := make(chan struct{})
	go func() {
		defer close(done)
		sup.Run(context.Background())
	}()

	// Then the supervisor lets it rest
	select {
	case <-done:
	case <-time.After(time.Second):
		req.Fail("supervisor should return once all workers finished")
	}
	req.Equal(int32(1), atomic.LoadInt32(&worker.runs))
}

func TestSupervisor_StopCancelsWorkers(t *testing.T) {
	req := require.New(t)
	log := internal.GetLoggerFromString("ERROR")

	// Given a long-running worker
	worker := &panicOnceWorker{runs: 1} // skip the panic branch
	sup := NewSupervisor(log)
	sup.Add(worker)

	done := make(chan struct{})
	go func() {
		defer close(done)
		sup.Run(context.Background())
	}()

	// Give the worker a moment to start blocking
	req.Eventually(func() bool {
		return atomic.LoadInt32(&worker.runs) >= 2
	}, time.Second, 5*time.Millisecond)

	// When Stop is called
	sup.Stop()

	// Then the run loop drains
	select {
	case <-done:
	case <-time.After(time.Second):
		req.Fail("Stop must cancel all supervised goroutines")
	}
}
