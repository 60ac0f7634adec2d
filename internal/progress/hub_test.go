package progress

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"go.uber.org/zap"
)

// captureSink records delivered batches on a channel so tests wait for
// delivery instead of polling.
type captureSink struct {
	got    chan []Event
	closed atomic.Bool
}

func newCaptureSink() *captureSink {
	return &captureSink{got: make(chan []Event, 16)}
}

func (c *captureSink) Consume(_ context.Context, batch []Event) error {
	c.got <- append([]Event(nil), batch...)
	return nil
}

func (c *captureSink) Close(context.Context) error {
	c.closed.Store(true)
	return nil
}

func (c *captureSink) next(t *testing.T) []Event {
	t.Helper()
	select {
	case b := <-c.got:
		return b
	case <-time.After(2 * time.Second):
		t.Fatal("no batch delivered")
		return nil
	}
}

func (c *captureSink) none(t *testing.T) {
	t.Helper()
	select {
	case b := <-c.got:
		t.Fatalf("unexpected batch of %d events", len(b))
	default:
	}
}

func stepDone(outcome Outcome) Event {
	return Event{
		JobID:    UUIDToBytes(uuid.New()),
		TS:       time.Now(),
		Stage:    StageStepDone,
		URL:      "https://example.com/page",
		Step:     "overview",
		Outcome:  outcome,
		Progress: 50,
		Dur:      120 * time.Millisecond,
	}
}

func TestHubFlushesWhenBatchFills(t *testing.T) {
	t.Parallel()

	sink := newCaptureSink()
	hub := NewHub(Config{QueueSize: 8, BatchSize: 2, FlushInterval: time.Minute}, sink)
	defer func() { require.NoError(t, hub.Close(context.Background())) }()

	hub.Emit(stepDone(OutcomeOK))
	hub.Emit(stepDone(OutcomeError))

	require.Len(t, sink.next(t), 2)
}

func TestHubFlushesPartialBatchOnTick(t *testing.T) {
	t.Parallel()

	sink := newCaptureSink()
	hub := NewHub(Config{QueueSize: 8, BatchSize: 10, FlushInterval: 20 * time.Millisecond}, sink)
	defer func() { require.NoError(t, hub.Close(context.Background())) }()

	hub.Emit(stepDone(OutcomeOK))
	require.Len(t, sink.next(t), 1)
}

func TestHubEmitDropsWhenQueueFull(t *testing.T) {
	t.Parallel()

	// Hand-built hub without a delivery goroutine, so the queue stays full.
	hub := &Hub{
		queue:  make(chan Event, 1),
		logger: zap.NewNop(),
	}

	returned := make(chan struct{})
	go func() {
		hub.Emit(stepDone(OutcomeOK))
		hub.Emit(stepDone(OutcomeOK))
		close(returned)
	}()
	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("Emit blocked on a full queue")
	}
	require.Len(t, hub.queue, 1)
}

func TestHubDropsInvalidEvents(t *testing.T) {
	t.Parallel()

	sink := newCaptureSink()
	hub := NewHub(Config{QueueSize: 8, BatchSize: 1, FlushInterval: time.Minute}, sink)

	hub.Emit(Event{TS: time.Now(), Stage: StageJobStart}) // missing job ID
	hub.Emit(stepDone(""))                                // step done without outcome

	require.NoError(t, hub.Close(context.Background()))
	sink.none(t)
}

func TestHubCloseFlushesQueueAndClosesSinks(t *testing.T) {
	t.Parallel()

	sink := newCaptureSink()
	hub := NewHub(Config{QueueSize: 8, BatchSize: 100, FlushInterval: time.Minute}, sink)

	for range 3 {
		hub.Emit(stepDone(OutcomeOK))
	}
	require.NoError(t, hub.Close(context.Background()))

	require.Len(t, sink.next(t), 3)
	require.True(t, sink.closed.Load())
}

func TestHubEmitAfterCloseIsNoOp(t *testing.T) {
	t.Parallel()

	sink := newCaptureSink()
	hub := NewHub(Config{QueueSize: 8, BatchSize: 1, FlushInterval: time.Minute}, sink)
	require.NoError(t, hub.Close(context.Background()))

	hub.Emit(stepDone(OutcomeOK))
	sink.none(t)
}

func TestHubIgnoresNilSinks(t *testing.T) {
	t.Parallel()

	sink := newCaptureSink()
	hub := NewHub(Config{QueueSize: 8, BatchSize: 1, FlushInterval: time.Minute}, nil, sink, nil)

	hub.Emit(stepDone(OutcomeOK))
	require.Len(t, sink.next(t), 1)
	require.NoError(t, hub.Close(context.Background()))
}
