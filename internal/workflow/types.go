// Package workflow defines the job model and core contracts shared across subsystems.
package workflow

import (
	"encoding/json"
	"time"
)

// JobStatus represents the lifecycle state of an analysis job.
type JobStatus string

// Job status values persisted in the job store.
const (
	StatusPending   JobStatus = "pending"
	StatusRunning   JobStatus = "running"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
	StatusCancelled JobStatus = "cancelled"
)

// Terminal reports whether a status permits no further transitions.
func (s JobStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}

// Step identifies one unit of work inside a job.
type Step string

// Step names. Overview runs first and alone; the enrichment steps run
// concurrently after it and fail independently.
const (
	StepOverview  Step = "overview"
	StepInsights  Step = "insights"
	StepSignals   Step = "signals"
	StepKeywords  Step = "keywords"
	StepMarketing Step = "marketing"
	StepSocial    Step = "social"
	StepAISummary Step = "ai_summary"
)

// EnrichmentSteps returns the fan-out phase steps in dispatch order.
func EnrichmentSteps() []Step {
	return []Step{StepInsights, StepSignals, StepKeywords, StepMarketing, StepSocial, StepAISummary}
}

// TotalSteps is the number of steps a full job runs (overview + enrichment).
// Progress is derived from completed steps against this total.
func TotalSteps() int {
	return 1 + len(EnrichmentSteps())
}

// Cache key prefixes. The cache layer appends a hash of the semantic
// arguments (job ID or normalized URL) to these.
const (
	KeyPrefixJob    = "workflow:job"
	KeyPrefixResult = "workflow:result"
)

// KeyPrefixStep returns the cache key prefix for one step's per-URL payload.
func KeyPrefixStep(step Step) string {
	return "workflow:step:" + string(step)
}

// Job is the unit of orchestration: one analysis request for one URL.
// Mutated exclusively through the Service; immutable once terminal.
type Job struct {
	ID             string                     `json:"job_id"`
	URL            string                     `json:"url"`
	Status         JobStatus                  `json:"status"`
	CurrentStep    Step                       `json:"current_step,omitempty"`
	CompletedSteps []string                   `json:"completed_steps"`
	Progress       int                        `json:"progress"`
	Result         map[string]json.RawMessage `json:"result"`
	Error          string                     `json:"error,omitempty"`
	CreatedAt      time.Time                  `json:"created_at"`
	UpdatedAt      time.Time                  `json:"updated_at"`
}

// Clone returns a deep copy so stores can hand out jobs without aliasing.
func (j Job) Clone() Job {
	out := j
	if j.CompletedSteps != nil {
		out.CompletedSteps = append([]string(nil), j.CompletedSteps...)
	}
	if j.Result != nil {
		out.Result = make(map[string]json.RawMessage, len(j.Result))
		for k, v := range j.Result {
			out.Result[k] = append(json.RawMessage(nil), v...)
		}
	}
	return out
}

// HasStep reports whether the named step already settled for this job.
func (j Job) HasStep(step string) bool {
	for _, s := range j.CompletedSteps {
		if s == step {
			return true
		}
	}
	return false
}

// StepOutcome carries one settled step's payload into a job update.
// The payload may be a success document or an {"error": ...} record;
// either way the step counts as settled.
type StepOutcome struct {
	Step    Step
	Payload json.RawMessage
}

// JobUpdate is a partial state delta merged into a job by the Service.
// Nil fields are left untouched. Progress is never set directly; it is
// derived from the completed-step set.
type JobUpdate struct {
	Status      *JobStatus
	CurrentStep *Step
	Error       *string
	StepResult  *StepOutcome
}

// QueueItem wraps a job ready to run.
type QueueItem struct {
	JobID     string
	URL       string
	Attempt   int
	Submitted int64
}

// CompletionEvent is published when a job reaches a terminal state.
type CompletionEvent struct {
	JobID      string    `json:"job_id"`
	URL        string    `json:"url"`
	Status     JobStatus `json:"status"`
	Overall    int       `json:"overall_score,omitempty"`
	Error      string    `json:"error,omitempty"`
	DurationMs int64     `json:"duration_ms"`
	FinishedAt time.Time `json:"finished_at"`
}

// HistoryRecord is the archived summary of a terminal job.
type HistoryRecord struct {
	JobID      string     `json:"job_id"`
	URL        string     `json:"url"`
	Status     JobStatus  `json:"status"`
	Overall    *int       `json:"overall_score,omitempty"`
	Error      *string    `json:"error,omitempty"`
	DurationMs int64      `json:"duration_ms"`
	CreatedAt  time.Time  `json:"created_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}
