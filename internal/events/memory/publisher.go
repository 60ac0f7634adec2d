// Package memory contains an in-memory completion publisher for tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/rankonai/seoscope/internal/workflow"
)

// Publisher stores published completion events for inspection.
type Publisher struct {
	mu     sync.RWMutex
	events []workflow.CompletionEvent
}

// New returns a memory Publisher.
func New() *Publisher {
	return &Publisher{}
}

// Publish records the event and returns a pseudo ID.
func (p *Publisher) Publish(_ context.Context, event workflow.CompletionEvent) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return fmt.Sprintf("memory-%d", len(p.events)), nil
}

// Events returns the recorded publishes.
func (p *Publisher) Events() []workflow.CompletionEvent {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]workflow.CompletionEvent, len(p.events))
	copy(out, p.events)
	return out
}
