package progress

import "context"

// Sink receives event batches from the Hub. Consume may be called
// concurrently with itself; Close is the final call and flushes whatever
// the sink buffers.
type Sink interface {
	Consume(ctx context.Context, batch []Event) error
	Close(ctx context.Context) error
}

// Emitter is the write side of progress tracking. The Hub implements it,
// and job execution code depends on this interface alone.
type Emitter interface {
	Emit(evt Event)
}
