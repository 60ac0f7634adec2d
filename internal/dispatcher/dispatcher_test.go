// Package dispatcher contains tests for job dispatch and worker coordination.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/rankonai/seoscope/internal/workflow"
)

// TestPoolRunStartsWorkers ensures workers begin processing and stop on cancel.
func TestPoolRunStartsWorkers(t *testing.T) {
	t.Parallel()

	first := &signalWorker{started: make(chan struct{}, 1)}
	second := &signalWorker{started: make(chan struct{}, 1)}
	pool := NewPool([]Worker{first, second})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		pool.Run(ctx)
		close(done)
	}()

	for _, w := range []*signalWorker{first, second} {
		select {
		case <-w.started:
		case <-time.After(time.Second):
			t.Fatal("worker did not start")
		}
	}

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("pool did not stop after context cancel")
	}
}

// TestQueuedDispatchForwardsErrors verifies queue errors are wrapped for callers.
func TestQueuedDispatchForwardsErrors(t *testing.T) {
	t.Parallel()

	dispatch := NewQueued(&errorQueue{err: errors.New("boom")}, time.Second)

	err := dispatch.Dispatch(context.Background(), workflow.QueueItem{JobID: "job"})
	if err == nil || err.Error() != "queue enqueue: boom" {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

// TestQueuedDispatchBusyWhenQueueFull verifies a stalled queue surfaces ErrBusy.
func TestQueuedDispatchBusyWhenQueueFull(t *testing.T) {
	t.Parallel()

	dispatch := NewQueued(&blockingQueue{}, 20*time.Millisecond)

	err := dispatch.Dispatch(context.Background(), workflow.QueueItem{JobID: "job"})
	if !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
}

// TestQueuedDispatchCallerCancelIsNotBusy keeps caller cancellation distinct
// from backpressure.
func TestQueuedDispatchCallerCancelIsNotBusy(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	dispatch := NewQueued(&blockingQueue{}, time.Second)

	err := dispatch.Dispatch(ctx, workflow.QueueItem{JobID: "job"})
	if errors.Is(err, ErrBusy) {
		t.Fatalf("caller cancellation reported as busy: %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestInlineDispatchRunsJob(t *testing.T) {
	t.Parallel()

	runner := &recordingRunner{ran: make(chan workflow.QueueItem, 1)}
	d := NewInline(runner, 2, time.Second, zap.NewNop())

	item := workflow.QueueItem{JobID: "job-1", URL: "https://example.com/"}
	if err := d.Dispatch(context.Background(), item); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}

	select {
	case got := <-runner.ran:
		if got.JobID != "job-1" {
			t.Fatalf("unexpected item %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("job never ran")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := d.Shutdown(shutdownCtx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
}

func TestInlineDispatchBusyWhenSlotsExhausted(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	d := NewInline(&gateRunner{release: release}, 1, 20*time.Millisecond, zap.NewNop())

	if err := d.Dispatch(context.Background(), workflow.QueueItem{JobID: "job-1"}); err != nil {
		t.Fatalf("first Dispatch() error = %v", err)
	}
	if err := d.Dispatch(context.Background(), workflow.QueueItem{JobID: "job-2"}); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}

	close(release)

	// The slot frees once the first job returns.
	deadline := time.Now().Add(time.Second)
	for {
		if err := d.Dispatch(context.Background(), workflow.QueueItem{JobID: "job-3"}); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("slot was never released")
		}
		time.Sleep(10 * time.Millisecond)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := d.Shutdown(shutdownCtx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
}

func TestInlineShutdownCancelsStragglers(t *testing.T) {
	t.Parallel()

	runner := &ctxRunner{finished: make(chan struct{})}
	d := NewInline(runner, 1, time.Second, zap.NewNop())

	if err := d.Dispatch(context.Background(), workflow.QueueItem{JobID: "job-1"}); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := d.Shutdown(shutdownCtx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}

	select {
	case <-runner.finished:
	case <-time.After(time.Second):
		t.Fatal("job did not observe cancellation")
	}
}

type signalWorker struct {
	started chan struct{}
}

func (w *signalWorker) Run(ctx context.Context) {
	select {
	case w.started <- struct{}{}:
	default:
	}
	<-ctx.Done()
}

type blockingQueue struct{}

func (q *blockingQueue) Enqueue(ctx context.Context, _ workflow.QueueItem) error {
	<-ctx.Done()
	return fmt.Errorf("enqueue canceled: %w", ctx.Err())
}

func (q *blockingQueue) Dequeue(ctx context.Context) (workflow.QueueItem, error) {
	<-ctx.Done()
	return workflow.QueueItem{}, fmt.Errorf("dequeue canceled: %w", ctx.Err())
}

type errorQueue struct {
	err error
}

func (q *errorQueue) Enqueue(context.Context, workflow.QueueItem) error {
	return q.err
}

func (q *errorQueue) Dequeue(context.Context) (workflow.QueueItem, error) {
	return workflow.QueueItem{}, nil
}

type recordingRunner struct {
	ran chan workflow.QueueItem
}

func (r *recordingRunner) RunJob(_ context.Context, item workflow.QueueItem) error {
	r.ran <- item
	return nil
}

type gateRunner struct {
	release chan struct{}
}

func (r *gateRunner) RunJob(context.Context, workflow.QueueItem) error {
	<-r.release
	return nil
}

type ctxRunner struct {
	finished chan struct{}
}

func (r *ctxRunner) RunJob(ctx context.Context, _ workflow.QueueItem) error {
	<-ctx.Done()
	close(r.finished)
	return ctx.Err()
}
