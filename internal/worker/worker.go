// Package worker executes analysis jobs: a sequential overview phase
// followed by a concurrent fan-out of the enrichment tasks. Enrichment
// failures are recorded on the job instead of aborting it; only an
// overview failure fails the job.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/rankonai/seoscope/internal/clock/system"
	"github.com/rankonai/seoscope/internal/progress"
	"github.com/rankonai/seoscope/internal/seo"
	"github.com/rankonai/seoscope/internal/snapshot"
	"github.com/rankonai/seoscope/internal/tasks"
	"github.com/rankonai/seoscope/internal/workflow"
)

// Analyzer produces the overview report plus the HTML it actually
// analyzed, so the worker can archive the exact input.
type Analyzer interface {
	AnalyzePage(ctx context.Context, url string) (*seo.Report, string, error)
}

// Config controls Worker behavior.
type Config struct {
	// JobTimeout bounds one job end to end. Work past the deadline is
	// recorded as step failures, it never hangs the worker.
	JobTimeout time.Duration
	// SnapshotContentType is stored alongside archived HTML.
	SnapshotContentType string
	// SnapshotPrefix is the object prefix for archived HTML.
	SnapshotPrefix string
}

// Worker consumes queue items and executes the analysis pipeline.
type Worker struct {
	queue     workflow.Queue
	service   *workflow.Service
	analyzer  Analyzer
	runner    *tasks.Runner
	tasks     []tasks.Task
	snapshots workflow.SnapshotStore
	history   workflow.HistoryStore
	publisher workflow.Publisher
	emitter   progress.Emitter
	clock     workflow.Clock
	cfg       Config
	logger    *zap.Logger
	tracer    trace.Tracer
}

// New constructs a Worker. snapshots, history, publisher and emitter are
// optional; a nil value disables that side effect.
func New(
	queue workflow.Queue,
	service *workflow.Service,
	analyzer Analyzer,
	runner *tasks.Runner,
	taskList []tasks.Task,
	snapshots workflow.SnapshotStore,
	history workflow.HistoryStore,
	publisher workflow.Publisher,
	emitter progress.Emitter,
	clk workflow.Clock,
	cfg Config,
	logger *zap.Logger,
) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clk == nil {
		clk = system.New()
	}
	if cfg.JobTimeout == 0 {
		cfg.JobTimeout = 5 * time.Minute
	}
	if cfg.SnapshotContentType == "" {
		cfg.SnapshotContentType = "text/html; charset=utf-8"
	}
	return &Worker{
		queue:     queue,
		service:   service,
		analyzer:  analyzer,
		runner:    runner,
		tasks:     taskList,
		snapshots: snapshots,
		history:   history,
		publisher: publisher,
		emitter:   emitter,
		clock:     clk,
		cfg:       cfg,
		logger:    logger,
		tracer:    otel.Tracer("seoscope.worker"),
	}
}

// Run blocks, consuming queue items until the context finishes or the
// queue is closed and drained.
func (w *Worker) Run(ctx context.Context) {
	for {
		item, err := w.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, workflow.ErrQueueClosed) {
				return
			}
			w.logger.Error("queue dequeue failed", zap.Error(err))
			continue
		}
		w.logger.Debug("dequeued job", zap.String("job_id", item.JobID))
		if err := w.RunJob(ctx, item); err != nil {
			w.logger.Error("job run failed", zap.String("job_id", item.JobID), zap.Error(err))
		}
	}
}

// RunJob executes one job to a terminal state. Redelivered items whose
// job is already terminal are dropped without side effects. The parent
// context governs shutdown; the job deadline only bounds analysis work,
// terminal bookkeeping still runs after a timeout.
func (w *Worker) RunJob(parent context.Context, item workflow.QueueItem) error {
	logger := w.logger.With(zap.String("job_id", item.JobID), zap.String("url", item.URL))

	job, err := w.service.GetJob(parent, item.JobID)
	if err != nil {
		return fmt.Errorf("load job %s: %w", item.JobID, err)
	}
	if job.Status.Terminal() {
		logger.Info("job already terminal, skipping", zap.String("status", string(job.Status)))
		return nil
	}

	ctx, cancel := context.WithTimeout(parent, w.cfg.JobTimeout)
	defer cancel()

	ctx, span := w.tracer.Start(ctx, "run_job", trace.WithAttributes(
		attribute.String("job.id", job.ID),
		attribute.String("job.url", job.URL),
		attribute.Int("job.attempt", item.Attempt),
	))
	defer span.End()

	started := w.clock.Now()
	running := workflow.StatusRunning
	overviewStep := workflow.StepOverview
	if _, err := w.service.UpdateJob(parent, job.ID, workflow.JobUpdate{Status: &running, CurrentStep: &overviewStep}); err != nil {
		return fmt.Errorf("mark job running: %w", err)
	}
	w.emit(progress.Event{
		JobID: progress.ParseJobID(job.ID),
		TS:    started,
		Stage: progress.StageJobStart,
		URL:   job.URL,
	})

	report, html, err := w.runOverview(parent, ctx, job)
	if err != nil {
		span.RecordError(err)
		if parent.Err() != nil {
			return fmt.Errorf("job interrupted: %w", parent.Err())
		}
		return w.finishFailed(parent, job, started, err)
	}

	w.archiveSnapshot(parent, job, html)

	var wg sync.WaitGroup
	for _, t := range w.tasks {
		wg.Add(1)
		go func(t tasks.Task) {
			defer wg.Done()
			w.runTask(parent, ctx, job, report, t)
		}(t)
	}
	wg.Wait()

	if parent.Err() != nil {
		return fmt.Errorf("job interrupted: %w", parent.Err())
	}
	return w.finishCompleted(parent, job, started, report)
}

// runOverview executes the overview analysis and records its payload.
// The bounded ctx drives the analysis; merges and caching use parent so
// they survive a job timeout.
func (w *Worker) runOverview(parent, ctx context.Context, job workflow.Job) (*seo.Report, string, error) {
	start := w.clock.Now()
	w.emit(progress.Event{
		JobID: progress.ParseJobID(job.ID),
		TS:    start,
		Stage: progress.StageStepStart,
		URL:   job.URL,
		Step:  string(workflow.StepOverview),
	})

	ovCtx, span := w.tracer.Start(ctx, "step.overview", trace.WithAttributes(
		attribute.String("job.id", job.ID),
	))
	report, html, err := w.analyzer.AnalyzePage(ovCtx, job.URL)
	if err != nil {
		span.RecordError(err)
		span.End()
		w.emitStepDone(job, job.Progress, string(workflow.StepOverview), progress.OutcomeError, start, err.Error())
		return nil, "", fmt.Errorf("overview failed: %w", err)
	}
	span.SetAttributes(attribute.Int("overall_score", report.Scores.Overall))
	span.End()

	payload, err := json.Marshal(report)
	if err != nil {
		w.emitStepDone(job, job.Progress, string(workflow.StepOverview), progress.OutcomeError, start, err.Error())
		return nil, "", fmt.Errorf("encode overview: %w", err)
	}
	w.service.CacheStepResult(parent, workflow.StepOverview, job.URL, payload)

	updated, err := w.service.UpdateJob(parent, job.ID, workflow.JobUpdate{
		StepResult: &workflow.StepOutcome{Step: workflow.StepOverview, Payload: payload},
	})
	if err != nil {
		return nil, "", fmt.Errorf("record overview: %w", err)
	}

	w.emitStepDone(job, updated.Progress, string(workflow.StepOverview), progress.OutcomeOK, start, "")
	return report, html, nil
}

// runTask executes one enrichment task. Failures become `{"error": ...}`
// payloads under the step key; successful payloads are cached for reuse.
func (w *Worker) runTask(parent, ctx context.Context, job workflow.Job, report *seo.Report, t tasks.Task) {
	step := workflow.Step(t.Name())
	logger := w.logger.With(zap.String("job_id", job.ID), zap.String("step", t.Name()))

	start := w.clock.Now()
	w.emit(progress.Event{
		JobID: progress.ParseJobID(job.ID),
		TS:    start,
		Stage: progress.StageStepStart,
		URL:   job.URL,
		Step:  t.Name(),
	})

	taskCtx, span := w.tracer.Start(ctx, "step."+t.Name(), trace.WithAttributes(
		attribute.String("job.id", job.ID),
	))
	result := w.runner.Run(taskCtx, t, tasks.Input{URL: job.URL, Overview: report})
	span.End()

	var payload json.RawMessage
	if result.Success {
		data, err := json.Marshal(result.Data)
		if err != nil {
			result.Success = false
			result.Error = fmt.Sprintf("encode result: %v", err)
		} else {
			payload = data
			w.service.CacheStepResult(parent, step, job.URL, payload)
		}
	}
	outcome := progress.OutcomeOK
	note := ""
	if !result.Success {
		outcome = progress.OutcomeError
		note = result.Error
		payload = errorPayload(result.Error)
	}

	prog := job.Progress
	updated, err := w.service.UpdateJob(parent, job.ID, workflow.JobUpdate{
		StepResult: &workflow.StepOutcome{Step: step, Payload: payload},
	})
	if err != nil {
		logger.Error("step result not recorded", zap.Error(err))
	} else {
		prog = updated.Progress
	}

	w.emitStepDone(job, prog, t.Name(), outcome, start, note)
}

// finishCompleted assembles the aggregate result, caches it by URL and
// moves the job to COMPLETED. A cancellation that won the race leaves the
// job cancelled and is archived as such.
func (w *Worker) finishCompleted(ctx context.Context, job workflow.Job, started time.Time, report *seo.Report) error {
	extras := map[string]json.RawMessage{
		"url":       rawJSON(job.URL),
		"timestamp": rawJSON(report.Timestamp),
		"scores":    rawJSON(report.Scores),
	}
	updated, err := w.service.CompleteJob(ctx, job.ID, extras)
	if err != nil {
		if errors.Is(err, workflow.ErrTerminal) {
			if got, gerr := w.service.GetJob(ctx, job.ID); gerr == nil && got.Status == workflow.StatusCancelled {
				w.finishCancelled(ctx, got, started)
			}
			return nil
		}
		return fmt.Errorf("mark job completed: %w", err)
	}

	w.service.CacheFinalResult(ctx, updated.URL, updated.Result)

	finished := w.clock.Now()
	w.emit(progress.Event{
		JobID:    progress.ParseJobID(job.ID),
		TS:       finished,
		Stage:    progress.StageJobDone,
		URL:      job.URL,
		Progress: 100,
		Dur:      finished.Sub(started),
	})
	w.archiveTerminal(ctx, updated, started, report)
	return nil
}

// finishFailed marks the job FAILED with the cause. When a cancellation
// got there first the terminal status is left alone.
func (w *Worker) finishFailed(ctx context.Context, job workflow.Job, started time.Time, cause error) error {
	failed := workflow.StatusFailed
	msg := cause.Error()
	updated, err := w.service.UpdateJob(ctx, job.ID, workflow.JobUpdate{Status: &failed, Error: &msg})
	if err != nil {
		return fmt.Errorf("mark job failed: %w", err)
	}
	if updated.Status == workflow.StatusCancelled {
		w.finishCancelled(ctx, updated, started)
		return nil
	}

	finished := w.clock.Now()
	w.emit(progress.Event{
		JobID:    progress.ParseJobID(job.ID),
		TS:       finished,
		Stage:    progress.StageJobError,
		URL:      job.URL,
		Progress: updated.Progress,
		Dur:      finished.Sub(started),
		Note:     msg,
	})
	w.archiveTerminal(ctx, updated, started, nil)
	w.logger.Warn("job failed",
		zap.String("job_id", job.ID),
		zap.String("url", job.URL),
		zap.String("error", msg),
	)
	return nil
}

func (w *Worker) finishCancelled(ctx context.Context, job workflow.Job, started time.Time) {
	finished := w.clock.Now()
	w.emit(progress.Event{
		JobID:    progress.ParseJobID(job.ID),
		TS:       finished,
		Stage:    progress.StageJobCancel,
		URL:      job.URL,
		Progress: job.Progress,
		Dur:      finished.Sub(started),
	})
	w.archiveTerminal(ctx, job, started, nil)
	w.logger.Info("job cancelled during run", zap.String("job_id", job.ID))
}

// archiveSnapshot stores the fetched HTML. Failures are logged, never
// surfaced to the job.
func (w *Worker) archiveSnapshot(ctx context.Context, job workflow.Job, html string) {
	if w.snapshots == nil || html == "" {
		return
	}
	key := snapshot.ObjectKey(w.cfg.SnapshotPrefix, job.ID, w.clock.Now())
	uri, err := w.snapshots.Put(ctx, key, w.cfg.SnapshotContentType, []byte(html))
	if err != nil {
		w.logger.Warn("snapshot archival failed",
			zap.String("job_id", job.ID),
			zap.Error(err),
		)
		return
	}
	if uri != "" {
		w.logger.Debug("snapshot archived", zap.String("job_id", job.ID), zap.String("uri", uri))
	}
}

// archiveTerminal records the terminal job in history and publishes the
// completion event. Both sinks are best-effort.
func (w *Worker) archiveTerminal(ctx context.Context, job workflow.Job, started time.Time, report *seo.Report) {
	finished := w.clock.Now()
	durationMs := finished.Sub(started).Milliseconds()

	if w.history != nil {
		rec := workflow.HistoryRecord{
			JobID:      job.ID,
			URL:        job.URL,
			Status:     job.Status,
			DurationMs: durationMs,
			CreatedAt:  job.CreatedAt,
			FinishedAt: &finished,
		}
		if report != nil {
			overall := report.Scores.Overall
			rec.Overall = &overall
		}
		if job.Error != "" {
			msg := job.Error
			rec.Error = &msg
		}
		if err := w.history.RecordJob(ctx, rec); err != nil {
			w.logger.Warn("history record failed", zap.String("job_id", job.ID), zap.Error(err))
		}
	}

	if w.publisher != nil {
		event := workflow.CompletionEvent{
			JobID:      job.ID,
			URL:        job.URL,
			Status:     job.Status,
			Error:      job.Error,
			DurationMs: durationMs,
			FinishedAt: finished,
		}
		if report != nil {
			event.Overall = report.Scores.Overall
		}
		if _, err := w.publisher.Publish(ctx, event); err != nil {
			w.logger.Warn("completion publish failed", zap.String("job_id", job.ID), zap.Error(err))
		}
	}
}

func (w *Worker) emit(evt progress.Event) {
	if w.emitter == nil {
		return
	}
	w.emitter.Emit(evt)
}

func (w *Worker) emitStepDone(job workflow.Job, prog int, step string, outcome progress.Outcome, started time.Time, note string) {
	done := w.clock.Now()
	w.emit(progress.Event{
		JobID:    progress.ParseJobID(job.ID),
		TS:       done,
		Stage:    progress.StageStepDone,
		URL:      job.URL,
		Step:     step,
		Outcome:  outcome,
		Progress: prog,
		Dur:      done.Sub(started),
		Note:     note,
	})
}

func errorPayload(msg string) json.RawMessage {
	return rawJSON(map[string]string{"error": msg})
}

func rawJSON(v any) json.RawMessage {
	raw, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage("null")
	}
	return raw
}
