// Package tasks implements the enrichment steps that run after the
// overview analysis. Each task consumes the overview report and
// produces one JSON-ready section of the aggregate result; tasks fail
// independently and never abort their siblings.
package tasks

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/rankonai/seoscope/internal/seo"
)

// Input is the immutable overview snapshot handed to every task.
type Input struct {
	URL      string
	Overview *seo.Report
}

// Result is the uniform envelope a task run produces. Failed runs carry
// an error message instead of data.
type Result struct {
	Success bool           `json:"success"`
	Task    string         `json:"task"`
	Data    map[string]any `json:"data,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// Task is one enrichment step.
type Task interface {
	Name() string
	Execute(ctx context.Context, in Input) (map[string]any, error)
}

// Runner executes tasks and guarantees that no error or panic escapes
// the result envelope.
type Runner struct {
	logger *zap.Logger
}

// NewRunner builds a Runner. A nil logger disables logging.
func NewRunner(logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{logger: logger}
}

// Run executes one task. Invalid input, task errors and panics all
// become failure Results.
func (r *Runner) Run(ctx context.Context, t Task, in Input) (result Result) {
	logger := r.logger.With(zap.String("task", t.Name()), zap.String("url", in.URL))

	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("task panicked", zap.Any("panic", rec))
			result = Result{Task: t.Name(), Error: fmt.Sprintf("panic: %v", rec)}
		}
	}()

	if err := validateInput(t, in); err != nil {
		logger.Warn("task input invalid", zap.Error(err))
		return Result{Task: t.Name(), Error: err.Error()}
	}

	logger.Info("task started")
	data, err := t.Execute(ctx, in)
	if err != nil {
		logger.Warn("task failed", zap.Error(err))
		return Result{Task: t.Name(), Error: err.Error()}
	}

	logger.Info("task completed")
	return Result{Success: true, Task: t.Name(), Data: data}
}

func validateInput(t Task, in Input) error {
	if in.URL == "" {
		return fmt.Errorf("%s: url is required", t.Name())
	}
	if in.Overview == nil {
		return fmt.Errorf("%s: overview data is required", t.Name())
	}
	return nil
}
