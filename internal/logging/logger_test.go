package logging

import (
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestModeDefaults(t *testing.T) {
	t.Parallel()

	dev, err := New(true, "")
	if err != nil {
		t.Fatalf("New(true, _) error = %v", err)
	}
	if !dev.Core().Enabled(zapcore.DebugLevel) {
		t.Error("development mode should log debug by default")
	}

	prod, err := New(false, "")
	if err != nil {
		t.Fatalf("New(false, _) error = %v", err)
	}
	if prod.Core().Enabled(zapcore.DebugLevel) {
		t.Error("production mode should start at info")
	}
}

func TestLevelOverridesModeDefault(t *testing.T) {
	t.Parallel()

	logger, err := New(false, "debug")
	if err != nil {
		t.Fatalf("New(false, debug) error = %v", err)
	}
	if !logger.Core().Enabled(zapcore.DebugLevel) {
		t.Error("explicit debug level should win over the production default")
	}

	quiet, err := New(true, "error")
	if err != nil {
		t.Fatalf("New(true, error) error = %v", err)
	}
	if quiet.Core().Enabled(zapcore.InfoLevel) {
		t.Error("explicit error level should silence info")
	}
}

func TestUnknownLevelErrors(t *testing.T) {
	t.Parallel()

	_, err := New(false, "shout")
	if err == nil || !strings.Contains(err.Error(), "shout") {
		t.Fatalf("New(false, shout) = %v, want error naming the level", err)
	}
}
