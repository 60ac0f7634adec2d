package sinks

import (
	"context"

	"go.uber.org/zap"

	"github.com/rankonai/seoscope/internal/progress"
)

// LogSink writes progress events to the service log. Job lifecycle events
// land at info level and per-step milestones at debug, so production logs
// stay readable while development builds see the full stream.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink returns a sink writing through logger.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

// Consume logs every event in the batch.
func (s *LogSink) Consume(_ context.Context, batch []progress.Event) error {
	for _, evt := range batch {
		s.log(evt)
	}
	return nil
}

func (s *LogSink) log(evt progress.Event) {
	fields := make([]zap.Field, 0, 8)
	fields = append(fields,
		zap.String("job_id", evt.JobUUID().String()),
		zap.String("stage", string(evt.Stage)),
		zap.String("url", evt.URL),
		zap.Int("progress", evt.Progress),
	)
	if evt.Step != "" {
		fields = append(fields, zap.String("step", evt.Step))
	}
	if evt.Outcome != "" {
		fields = append(fields, zap.String("outcome", string(evt.Outcome)))
	}
	if evt.Dur > 0 {
		fields = append(fields, zap.Duration("dur", evt.Dur))
	}
	if evt.Note != "" {
		fields = append(fields, zap.String("note", evt.Note))
	}

	switch evt.Stage {
	case progress.StageStepStart, progress.StageStepDone:
		s.logger.Debug("step progress", fields...)
	default:
		s.logger.Info("job progress", fields...)
	}
}

// Close implements progress.Sink. Nothing is buffered, so there is
// nothing to flush.
func (s *LogSink) Close(context.Context) error {
	return nil
}
