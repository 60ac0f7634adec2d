// Package progress defines the event stream emitted as analysis jobs move
// through the pipeline.
package progress

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Stage labels the milestone an Event records.
type Stage string

// Job lifecycle and step milestones.
const (
	StageJobStart  Stage = "JOB_START"
	StageJobDone   Stage = "JOB_DONE"
	StageJobError  Stage = "JOB_ERROR"
	StageJobCancel Stage = "JOB_CANCEL"
	StageStepStart Stage = "STEP_START"
	StageStepDone  Stage = "STEP_DONE"
)

// Outcome classifies how a pipeline step settled.
type Outcome string

// Step outcomes.
const (
	OutcomeOK    Outcome = "ok"
	OutcomeError Outcome = "error"
)

// Event is one milestone in a job's life. Sinks receive events in emit
// order per job but may see different jobs interleaved.
type Event struct {
	// JobID is the job's UUID in its 16-byte form.
	JobID [16]byte
	// TS is when the emitter recorded the milestone, in UTC.
	TS time.Time
	// Stage says which milestone this is.
	Stage Stage
	// URL is the page under analysis, already stripped of credentials.
	URL string
	// Step names the pipeline step for step-scoped stages.
	Step string
	// Outcome reports how a finished step settled.
	Outcome Outcome
	// Progress is the job's completion percentage after this event.
	Progress int
	// Dur is the elapsed time for finished steps and jobs.
	Dur time.Duration
	// Note carries short free-form context such as an error summary.
	Note string
}

// Validate rejects events that would be meaningless to sinks.
func (e Event) Validate() error {
	switch {
	case e.JobID == [16]byte{}:
		return errors.New("missing job id")
	case e.TS.IsZero():
		return errors.New("missing timestamp")
	case e.Progress < 0 || e.Progress > 100:
		return fmt.Errorf("progress %d out of range", e.Progress)
	case e.Dur < 0:
		return fmt.Errorf("negative duration %s", e.Dur)
	}
	return e.validateStage()
}

func (e Event) validateStage() error {
	switch e.Stage {
	case StageJobStart, StageJobDone, StageJobError, StageJobCancel:
		return nil
	case StageStepStart:
		if e.Step == "" {
			return errors.New("step start without step name")
		}
		return nil
	case StageStepDone:
		if e.Step == "" {
			return errors.New("step done without step name")
		}
		if e.Outcome == "" {
			return errors.New("step done without outcome")
		}
		return nil
	default:
		return fmt.Errorf("unknown stage %q", e.Stage)
	}
}

// JobUUID returns the job ID in its parsed form.
func (e Event) JobUUID() uuid.UUID {
	return uuid.UUID(e.JobID)
}

// UUIDToBytes converts id to the form events carry.
func UUIDToBytes(id uuid.UUID) [16]byte {
	return [16]byte(id)
}

// ParseJobID converts a job ID string. Malformed input yields the zero
// value, which Validate rejects.
func ParseJobID(id string) [16]byte {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return [16]byte{}
	}
	return [16]byte(parsed)
}
