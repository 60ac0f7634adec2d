package headless

import (
	"context"

	"github.com/rankonai/seoscope/internal/fetch"
)

// Noop implements fetch.Renderer but always reports that rendering is
// unavailable in the current build.
type Noop struct{}

// NewNoop creates a new Noop renderer.
func NewNoop() *Noop {
	return &Noop{}
}

// Render reports the missing renderer as a fetch error.
func (Noop) Render(_ context.Context, rawURL string) fetch.Result {
	return fetch.Result{
		URL:     rawURL,
		Headers: map[string]string{},
		Error:   "headless renderer not configured",
		Backend: Backend,
	}
}
