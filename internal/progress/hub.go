package progress

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Config tunes the Hub. Zero values take the defaults below.
type Config struct {
	// QueueSize bounds the emit channel; a full queue drops events.
	QueueSize int
	// BatchSize flushes the pending batch once it holds this many events.
	BatchSize int
	// FlushInterval is the cadence at which partial batches are flushed.
	FlushInterval time.Duration
	// SinkTimeout bounds each sink call during a flush.
	SinkTimeout time.Duration
	// BaseContext is the parent for sink calls. Defaults to context.Background().
	BaseContext context.Context
	Logger      *zap.Logger
}

const (
	defaultQueueSize     = 512
	defaultBatchSize     = 64
	defaultFlushInterval = 250 * time.Millisecond
	defaultSinkTimeout   = 5 * time.Second
	dropReportEvery      = 5 * time.Second
)

// Hub collects job and step events from workers and delivers them to sinks
// in batches. Emit never blocks: a slow or absent consumer costs events,
// not job throughput.
type Hub struct {
	cfg    Config
	sinks  []Sink
	queue  chan Event
	logger *zap.Logger

	stopping atomic.Bool
	dropped  atomic.Int64
	nextDrop atomic.Int64 // unix nanos gating the next drop warning

	stopOnce sync.Once
	stopped  chan struct{}
	done     chan struct{}
	closeCtx context.Context
}

// NewHub starts the delivery goroutine over the given sinks. Nil sinks
// are ignored.
func NewHub(cfg Config, sinks ...Sink) *Hub {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = defaultFlushInterval
	}
	if cfg.SinkTimeout <= 0 {
		cfg.SinkTimeout = defaultSinkTimeout
	}
	if cfg.BaseContext == nil {
		cfg.BaseContext = context.Background()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	kept := make([]Sink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			kept = append(kept, s)
		}
	}

	h := &Hub{
		cfg:     cfg,
		sinks:   kept,
		queue:   make(chan Event, cfg.QueueSize),
		logger:  cfg.Logger,
		stopped: make(chan struct{}),
		done:    make(chan struct{}),
	}
	go h.deliver()
	return h
}

// Emit queues an event for delivery. Invalid events are discarded, and a
// full queue drops the event rather than blocking the caller.
func (h *Hub) Emit(evt Event) {
	if h == nil || h.stopping.Load() {
		return
	}
	if err := evt.Validate(); err != nil {
		h.logger.Debug("dropping invalid progress event", zap.Error(err))
		return
	}
	select {
	case h.queue <- evt:
	default:
		h.recordDrop()
	}
}

// recordDrop counts a lost event and warns at most once per report window.
func (h *Hub) recordDrop() {
	h.dropped.Add(1)
	now := time.Now().UnixNano()
	next := h.nextDrop.Load()
	if now < next || !h.nextDrop.CompareAndSwap(next, now+dropReportEvery.Nanoseconds()) {
		return
	}
	h.logger.Warn("progress events dropped, queue full", zap.Int64("dropped", h.dropped.Swap(0)))
}

// Close flushes everything still queued and shuts the sinks down. Safe to
// call more than once.
func (h *Hub) Close(ctx context.Context) error {
	if h == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	h.stopOnce.Do(func() {
		h.stopping.Store(true)
		h.closeCtx = ctx
		close(h.stopped)
	})
	select {
	case <-h.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("progress hub close: %w", ctx.Err())
	}
}

// deliver owns the batch: events accumulate up to BatchSize, and the ticker
// flushes partial batches so consumers lag at most one FlushInterval.
func (h *Hub) deliver() {
	defer close(h.done)
	ticker := time.NewTicker(h.cfg.FlushInterval)
	defer ticker.Stop()

	batch := make([]Event, 0, h.cfg.BatchSize)
	for {
		select {
		case evt := <-h.queue:
			batch = append(batch, evt)
			if len(batch) >= h.cfg.BatchSize {
				h.flush(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				h.flush(batch)
				batch = batch[:0]
			}
		case <-h.stopped:
			h.drain(batch)
			return
		}
	}
}

// drain empties whatever is already queued without waiting for producers,
// then closes the sinks.
func (h *Hub) drain(batch []Event) {
	for {
		select {
		case evt := <-h.queue:
			batch = append(batch, evt)
			if len(batch) >= h.cfg.BatchSize {
				h.flush(batch)
				batch = batch[:0]
			}
		default:
			h.flush(batch)
			ctx := h.closeCtx
			if ctx == nil {
				ctx = context.Background()
			}
			for _, sink := range h.sinks {
				if err := sink.Close(ctx); err != nil {
					h.logger.Warn("progress sink shutdown failed", zap.Error(err))
				}
			}
			return
		}
	}
}

func (h *Hub) flush(batch []Event) {
	if len(batch) == 0 {
		return
	}
	events := append([]Event(nil), batch...)
	for _, sink := range h.sinks {
		ctx, cancel := context.WithTimeout(h.cfg.BaseContext, h.cfg.SinkTimeout)
		if err := sink.Consume(ctx, events); err != nil {
			h.logger.Warn("progress sink rejected batch", zap.Error(err))
		}
		cancel()
	}
}
