// Package memory provides the bounded in-process job queue that links
// the HTTP dispatcher to the worker pool.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/rankonai/seoscope/internal/workflow"
)

// Queue is a bounded FIFO of accepted jobs. A full queue makes Enqueue
// block until a worker drains an item or the caller's context ends, which
// is how dispatch backpressure surfaces to the API. Close rejects further
// enqueues while letting workers drain what was already accepted.
type Queue struct {
	mu     sync.RWMutex
	items  chan workflow.QueueItem
	closed bool
}

// NewQueue returns a queue holding at most capacity pending jobs.
// Capacities below one are raised to one.
func NewQueue(capacity int) *Queue {
	if capacity < 1 {
		capacity = 1
	}
	return &Queue{items: make(chan workflow.QueueItem, capacity)}
}

// Enqueue adds a job, waiting for free capacity until the context ends.
// After Close it returns workflow.ErrQueueClosed.
func (q *Queue) Enqueue(ctx context.Context, item workflow.QueueItem) error {
	// The read lock spans the send so Close cannot close the channel
	// under an in-flight enqueue.
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return workflow.ErrQueueClosed
	}
	select {
	case q.items <- item:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("enqueue canceled: %w", ctx.Err())
	}
}

// Dequeue removes the oldest job, waiting until one arrives or the context
// ends. Once the queue is closed and drained it returns
// workflow.ErrQueueClosed.
func (q *Queue) Dequeue(ctx context.Context) (workflow.QueueItem, error) {
	select {
	case item, ok := <-q.items:
		if !ok {
			return workflow.QueueItem{}, workflow.ErrQueueClosed
		}
		return item, nil
	case <-ctx.Done():
		return workflow.QueueItem{}, fmt.Errorf("dequeue canceled: %w", ctx.Err())
	}
}

// Close stops accepting jobs. Pending items remain dequeueable; calling
// Close more than once is safe.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.items)
}
