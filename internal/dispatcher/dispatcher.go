// Package dispatcher routes accepted analysis jobs onto execution capacity.
//
// Two modes exist: Inline runs jobs on in-process goroutines bounded by a
// counting semaphore, Queued hands jobs to the shared queue consumed by a
// Pool of workers. Both report ErrBusy when capacity does not free up within
// the configured wait.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rankonai/seoscope/internal/workflow"
)

// ErrBusy reports that no execution capacity freed up within the wait window.
var ErrBusy = errors.New("server busy")

const (
	defaultInlineSlots = 5
	defaultInlineWait  = 5 * time.Second
	defaultEnqueueWait = 100 * time.Millisecond
)

// Runner executes a single job to completion.
type Runner interface {
	RunJob(ctx context.Context, item workflow.QueueItem) error
}

// Worker consumes queued jobs until its context finishes.
type Worker interface {
	Run(ctx context.Context)
}

// Inline executes jobs on goroutines bounded by a counting semaphore so a
// burst of submissions cannot exhaust the process.
type Inline struct {
	runner Runner
	slots  chan struct{}
	wait   time.Duration
	logger *zap.Logger

	base context.Context
	stop context.CancelFunc
	wg   sync.WaitGroup
}

// NewInline creates an Inline dispatcher. Zero slots or wait fall back to
// 5 slots and a 5s acquisition wait.
func NewInline(runner Runner, slots int, wait time.Duration, logger *zap.Logger) *Inline {
	if slots <= 0 {
		slots = defaultInlineSlots
	}
	if wait <= 0 {
		wait = defaultInlineWait
	}
	base, stop := context.WithCancel(context.Background())
	return &Inline{
		runner: runner,
		slots:  make(chan struct{}, slots),
		wait:   wait,
		logger: logger,
		base:   base,
		stop:   stop,
	}
}

// Dispatch acquires a slot and starts the job on its own goroutine. Jobs
// outlive the submitting request: they run against the dispatcher's base
// context, not the caller's.
func (d *Inline) Dispatch(ctx context.Context, item workflow.QueueItem) error {
	waitCtx, cancel := context.WithTimeout(ctx, d.wait)
	defer cancel()

	select {
	case d.slots <- struct{}{}:
	case <-waitCtx.Done():
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("dispatch canceled: %w", err)
		}
		return ErrBusy
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() { <-d.slots }()
		if err := d.runner.RunJob(d.base, item); err != nil {
			d.logger.Error("job run failed",
				zap.String("job_id", item.JobID),
				zap.String("url", item.URL),
				zap.Error(err),
			)
		}
	}()
	return nil
}

// Shutdown waits for in-flight jobs, canceling them if ctx expires first.
func (d *Inline) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		d.stop()
		return nil
	case <-ctx.Done():
		d.stop()
		return ctx.Err()
	}
}

// Queued hands jobs to the shared queue. A full queue that does not drain
// within the enqueue wait is reported as ErrBusy.
type Queued struct {
	queue workflow.Queue
	wait  time.Duration
}

// NewQueued creates a Queued dispatcher. A zero wait falls back to 100ms.
func NewQueued(queue workflow.Queue, wait time.Duration) *Queued {
	if wait <= 0 {
		wait = defaultEnqueueWait
	}
	return &Queued{queue: queue, wait: wait}
}

// Dispatch enqueues the job for the worker pool.
func (d *Queued) Dispatch(ctx context.Context, item workflow.QueueItem) error {
	waitCtx, cancel := context.WithTimeout(ctx, d.wait)
	defer cancel()

	if err := d.queue.Enqueue(waitCtx, item); err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return ErrBusy
		}
		return fmt.Errorf("queue enqueue: %w", err)
	}
	return nil
}

// Pool fans queue consumption out to a fixed set of workers.
type Pool struct {
	workers []Worker
}

// NewPool creates a Pool.
func NewPool(workers []Worker) *Pool {
	return &Pool{workers: workers}
}

// Run starts all workers and blocks until the context finishes.
func (p *Pool) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for _, w := range p.workers {
		wg.Add(1)
		go func(wk Worker) {
			defer wg.Done()
			wk.Run(ctx)
		}(w)
	}
	<-ctx.Done()
	wg.Wait()
}
