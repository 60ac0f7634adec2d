package noop

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rankonai/seoscope/internal/llm"
)

func TestClient_NeverConfigured(t *testing.T) {
	t.Parallel()

	c := New("grok")
	require.Equal(t, "grok", c.Name())
	require.False(t, c.Configured())

	_, err := c.Complete(context.Background(), llm.Request{User: "hi"})
	require.ErrorIs(t, err, llm.ErrNotConfigured)

	_, err = c.CompleteJSON(context.Background(), llm.Request{User: "hi"})
	require.ErrorIs(t, err, llm.ErrNotConfigured)
}

func TestNew_DefaultName(t *testing.T) {
	t.Parallel()

	require.Equal(t, "noop", New("").Name())
}
