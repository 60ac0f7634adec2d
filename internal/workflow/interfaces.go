package workflow

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a job ID is unknown or expired from storage.
var ErrNotFound = errors.New("job not found")

// ErrQueueClosed is returned by queue operations after shutdown has begun.
// Workers treat it as the signal to stop draining.
var ErrQueueClosed = errors.New("queue closed")

// JobStore persists job state. Update must apply the mutation atomically
// with respect to other Update calls for the same job so that concurrent
// step completions never lose each other's merges.
type JobStore interface {
	Create(ctx context.Context, job Job) error
	Get(ctx context.Context, id string) (Job, error)
	Update(ctx context.Context, id string, apply func(*Job) error) (Job, error)
}

// Queue provides enqueue/dequeue semantics for analysis jobs.
type Queue interface {
	Enqueue(ctx context.Context, item QueueItem) error
	Dequeue(ctx context.Context) (QueueItem, error)
}

// Publisher pushes completion events to an external broker.
type Publisher interface {
	Publish(ctx context.Context, event CompletionEvent) (string, error)
}

// SnapshotStore archives raw fetched HTML and returns a URI.
type SnapshotStore interface {
	Put(ctx context.Context, key string, contentType string, data []byte) (string, error)
}

// HistoryStore archives terminal jobs for later listing.
type HistoryStore interface {
	RecordJob(ctx context.Context, rec HistoryRecord) error
	ListJobs(ctx context.Context, status *JobStatus, limit, offset int) ([]HistoryRecord, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces job IDs (UUIDs).
type IDGenerator interface {
	NewID() string
}
