package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rankonai/seoscope/internal/cache"
)

// ErrTerminal is returned when an operation requires a job that is still
// in flight but the job has already reached a terminal status.
var ErrTerminal = errors.New("job is in a terminal state")

// ErrBlockedHost is returned when a submitted URL resolves to a host on
// the configured blocklist.
var ErrBlockedHost = errors.New("host is blocked")

// Config carries the service tunables taken from top-level configuration.
type Config struct {
	ResultTTL time.Duration
	Blocklist []string
}

// Service owns job lifecycle transitions and result caching. All status
// changes funnel through UpdateJob so the terminal-state and progress
// rules hold no matter how many goroutines report step outcomes.
type Service struct {
	jobs      JobStore
	cache     cache.Store
	blocklist *Blocklist
	resultTTL time.Duration
	clock     Clock
	idgen     IDGenerator
	logger    *zap.Logger
}

func NewService(jobs JobStore, cacheStore cache.Store, cfg Config, clock Clock, idgen IDGenerator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		jobs:      jobs,
		cache:     cacheStore,
		blocklist: NewBlocklist(cfg.Blocklist),
		resultTTL: cfg.ResultTTL,
		clock:     clock,
		idgen:     idgen,
		logger:    logger,
	}
}

// CreateJob normalizes and validates the URL, then registers a pending job.
func (s *Service) CreateJob(ctx context.Context, rawURL string) (Job, error) {
	normalized, err := NormalizeURL(rawURL)
	if err != nil {
		return Job{}, fmt.Errorf("normalizing url: %w", err)
	}
	if s.blocklist.Blocked(Hostname(normalized)) {
		return Job{}, fmt.Errorf("%w: %s", ErrBlockedHost, Hostname(normalized))
	}

	now := s.clock.Now().UTC()
	job := Job{
		ID:             s.idgen.NewID(),
		URL:            normalized,
		Status:         StatusPending,
		CompletedSteps: []string{},
		Progress:       0,
		Result:         map[string]json.RawMessage{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return Job{}, fmt.Errorf("creating job: %w", err)
	}
	s.logger.Info("job created", zap.String("job_id", job.ID), zap.String("url", job.URL))
	return job, nil
}

// GetJob returns the current state of a job.
func (s *Service) GetJob(ctx context.Context, id string) (Job, error) {
	return s.jobs.Get(ctx, id)
}

// UpdateJob applies a partial update atomically. Once a job is terminal its
// status, progress, current step and error are frozen; a late step result
// may still merge into the result map so slow goroutines do not lose work.
// Progress is derived from completed steps and never decreases.
func (s *Service) UpdateJob(ctx context.Context, id string, upd JobUpdate) (Job, error) {
	return s.jobs.Update(ctx, id, func(j *Job) error {
		now := s.clock.Now().UTC()
		if j.Status.Terminal() {
			if upd.StepResult != nil {
				mergeStep(j, *upd.StepResult, false)
				j.UpdatedAt = now
			}
			return nil
		}
		if upd.Status != nil {
			j.Status = *upd.Status
		}
		if upd.CurrentStep != nil {
			j.CurrentStep = *upd.CurrentStep
		}
		if upd.Error != nil {
			j.Error = *upd.Error
		}
		if upd.StepResult != nil {
			mergeStep(j, *upd.StepResult, true)
		}
		if p := progressFor(len(j.CompletedSteps)); p > j.Progress {
			j.Progress = p
		}
		if j.Status == StatusCompleted {
			j.Progress = 100
		}
		j.UpdatedAt = now
		return nil
	})
}

// CompleteJob merges the aggregate extras (url, timestamp, scores) into
// the result map and moves the job to COMPLETED at full progress. It
// returns ErrTerminal when the job was already finished or cancelled, so
// a worker racing a cancellation never resurrects the job.
func (s *Service) CompleteJob(ctx context.Context, id string, extras map[string]json.RawMessage) (Job, error) {
	job, err := s.jobs.Update(ctx, id, func(j *Job) error {
		if j.Status.Terminal() {
			return ErrTerminal
		}
		if j.Result == nil {
			j.Result = map[string]json.RawMessage{}
		}
		for k, v := range extras {
			j.Result[k] = v
		}
		j.Status = StatusCompleted
		j.Progress = 100
		j.UpdatedAt = s.clock.Now().UTC()
		return nil
	})
	if err != nil {
		return Job{}, err
	}
	s.logger.Info("job completed", zap.String("job_id", id), zap.String("url", job.URL))
	return job, nil
}

// CancelJob moves a pending or running job to CANCELLED. It returns
// ErrNotFound for unknown jobs and ErrTerminal for finished ones.
func (s *Service) CancelJob(ctx context.Context, id string) (Job, error) {
	job, err := s.jobs.Update(ctx, id, func(j *Job) error {
		if j.Status.Terminal() {
			return ErrTerminal
		}
		j.Status = StatusCancelled
		j.CurrentStep = ""
		j.UpdatedAt = s.clock.Now().UTC()
		return nil
	})
	if err != nil {
		return Job{}, err
	}
	s.logger.Info("job cancelled", zap.String("job_id", id))
	return job, nil
}

// CachedResult returns a previously computed final result for the URL.
func (s *Service) CachedResult(ctx context.Context, url string) (map[string]json.RawMessage, bool) {
	key := cache.Key(KeyPrefixResult, url)
	raw, ok := s.cache.Get(ctx, key)
	if !ok {
		return nil, false
	}
	var result map[string]json.RawMessage
	if err := json.Unmarshal(raw, &result); err != nil {
		s.logger.Debug("discarding undecodable cached result", zap.String("url", url), zap.Error(err))
		return nil, false
	}
	return result, true
}

// CacheFinalResult stores the aggregate result for reuse by later runs.
func (s *Service) CacheFinalResult(ctx context.Context, url string, result map[string]json.RawMessage) bool {
	raw, err := json.Marshal(result)
	if err != nil {
		s.logger.Warn("final result not cacheable", zap.String("url", url), zap.Error(err))
		return false
	}
	return s.cache.Set(ctx, cache.Key(KeyPrefixResult, url), raw, s.resultTTL)
}

// CachedStepResult returns a cached payload for one step of the workflow.
func (s *Service) CachedStepResult(ctx context.Context, step Step, url string) (json.RawMessage, bool) {
	raw, ok := s.cache.Get(ctx, cache.Key(KeyPrefixStep(step), url))
	if !ok {
		return nil, false
	}
	return json.RawMessage(raw), true
}

// CacheStepResult stores one step's payload so a rerun can skip the work.
func (s *Service) CacheStepResult(ctx context.Context, step Step, url string, payload json.RawMessage) bool {
	return s.cache.Set(ctx, cache.Key(KeyPrefixStep(step), url), payload, s.resultTTL)
}

// InvalidateURL drops every cached artifact for the URL and reports how
// many entries were actually removed.
func (s *Service) InvalidateURL(ctx context.Context, url string) int {
	cleared := 0
	if s.cache.Delete(ctx, cache.Key(KeyPrefixResult, url)) {
		cleared++
	}
	for _, step := range append([]Step{StepOverview}, EnrichmentSteps()...) {
		if s.cache.Delete(ctx, cache.Key(KeyPrefixStep(step), url)) {
			cleared++
		}
	}
	s.logger.Info("cache invalidated", zap.String("url", url), zap.Int("cleared", cleared))
	return cleared
}

// mergeStep records a step outcome on the job. Bookkeeping (completed
// steps) only advances while the job is live; late merges after a terminal
// transition keep the payload but leave progress accounting untouched.
func mergeStep(j *Job, outcome StepOutcome, settle bool) {
	if j.Result == nil {
		j.Result = map[string]json.RawMessage{}
	}
	j.Result[string(outcome.Step)] = outcome.Payload
	if settle && !j.HasStep(string(outcome.Step)) {
		j.CompletedSteps = append(j.CompletedSteps, string(outcome.Step))
	}
}

func progressFor(completed int) int {
	return completed * 100 / TotalSteps()
}
