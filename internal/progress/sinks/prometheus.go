package sinks

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/rankonai/seoscope/internal/progress"
)

// PrometheusSink exports the progress stream as job and step collectors.
// A start-time table keyed by job ID keeps the running gauge exact under
// duplicate start events and supplies a runtime fallback when a terminal
// event arrives without a duration.
type PrometheusSink struct {
	jobsStarted   prometheus.Counter
	jobsCompleted *prometheus.CounterVec
	jobsRunning   prometheus.Gauge
	jobRuntime    *prometheus.HistogramVec

	stepsTotal   *prometheus.CounterVec
	stepDuration *prometheus.HistogramVec
	stepFailures *prometheus.CounterVec

	mu      sync.Mutex
	started map[[16]byte]time.Time
}

// NewPrometheusSink builds the sink and registers its collectors with reg.
// Registering the collectors twice against the same registry panics.
func NewPrometheusSink(reg prometheus.Registerer) *PrometheusSink {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	auto := promauto.With(reg)
	return &PrometheusSink{
		jobsStarted: auto.NewCounter(prometheus.CounterOpts{
			Name: "seoscope_jobs_started_total",
			Help: "Total analysis jobs that have started.",
		}),
		jobsCompleted: auto.NewCounterVec(prometheus.CounterOpts{
			Name: "seoscope_jobs_completed_total",
			Help: "Total jobs finished partitioned by terminal status.",
		}, []string{"status"}),
		jobsRunning: auto.NewGauge(prometheus.GaugeOpts{
			Name: "seoscope_jobs_running",
			Help: "Current number of running jobs.",
		}),
		jobRuntime: auto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "seoscope_job_runtime_seconds",
			Help:    "Wall time per finished job.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}, []string{"status"}),
		stepsTotal: auto.NewCounterVec(prometheus.CounterOpts{
			Name: "seoscope_steps_total",
			Help: "Step completions partitioned by step and outcome.",
		}, []string{"step", "outcome"}),
		stepDuration: auto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "seoscope_step_duration_seconds",
			Help:    "Step duration partitioned by step and outcome.",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}, []string{"step", "outcome"}),
		stepFailures: auto.NewCounterVec(prometheus.CounterOpts{
			Name: "seoscope_step_failures_total",
			Help: "Steps that settled with a recorded error.",
		}, []string{"step"}),
		started: make(map[[16]byte]time.Time),
	}
}

// Consume folds a batch of events into the collectors. It is safe for
// concurrent use by multiple goroutines.
func (s *PrometheusSink) Consume(_ context.Context, batch []progress.Event) error {
	for _, evt := range batch {
		switch evt.Stage {
		case progress.StageJobStart:
			s.jobStarted(evt)
		case progress.StageJobDone, progress.StageJobError, progress.StageJobCancel:
			s.jobFinished(evt)
		case progress.StageStepDone:
			s.stepDone(evt)
		}
	}
	return nil
}

func (s *PrometheusSink) jobStarted(evt progress.Event) {
	s.jobsStarted.Inc()
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.started[evt.JobID]; dup {
		return
	}
	s.started[evt.JobID] = evt.TS
	s.jobsRunning.Inc()
}

func (s *PrometheusSink) jobFinished(evt progress.Event) {
	status := terminalStatus(evt.Stage)
	s.jobsCompleted.WithLabelValues(status).Inc()
	if d := s.settle(evt); d > 0 {
		s.jobRuntime.WithLabelValues(status).Observe(d.Seconds())
	}
}

// settle drops the job from the running table and resolves the runtime to
// observe: the event's own duration when present, otherwise the gap back
// to the tracked start event.
func (s *PrometheusSink) settle(evt progress.Event) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	startTS, tracked := s.started[evt.JobID]
	if tracked {
		delete(s.started, evt.JobID)
		s.jobsRunning.Dec()
	}
	if evt.Dur > 0 {
		return evt.Dur
	}
	if tracked && evt.TS.After(startTS) {
		return evt.TS.Sub(startTS)
	}
	return 0
}

func terminalStatus(stage progress.Stage) string {
	switch stage {
	case progress.StageJobError:
		return "failed"
	case progress.StageJobCancel:
		return "cancelled"
	default:
		return "completed"
	}
}

func (s *PrometheusSink) stepDone(evt progress.Event) {
	step := evt.Step
	if step == "" {
		step = "unknown"
	}
	outcome := string(evt.Outcome)
	if outcome == "" {
		outcome = string(progress.OutcomeError)
	}
	s.stepsTotal.WithLabelValues(step, outcome).Inc()
	if evt.Dur > 0 {
		s.stepDuration.WithLabelValues(step, outcome).Observe(evt.Dur.Seconds())
	}
	if evt.Outcome == progress.OutcomeError {
		s.stepFailures.WithLabelValues(step).Inc()
	}
}

// Close implements progress.Sink; collectors stay registered for the
// process lifetime.
func (s *PrometheusSink) Close(context.Context) error {
	return nil
}
