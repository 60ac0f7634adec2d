// Package llm defines the completion contract shared by the AI-backed
// enrichment tasks and its provider implementations.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNotConfigured reports a provider without credentials. Tasks treat
// it as "skip this provider", not as a transport failure.
var ErrNotConfigured = errors.New("llm provider not configured")

// Request is a single chat completion call. Zero values for Model,
// Temperature and MaxTokens fall back to provider defaults.
type Request struct {
	System      string
	User        string
	Model       string
	Temperature float64
	MaxTokens   int64
}

// Client is a chat completion provider.
type Client interface {
	// Name identifies the provider in results and logs ("openai", "grok").
	Name() string
	// Configured reports whether the provider has credentials.
	Configured() bool
	// Complete returns the raw text of a chat completion.
	Complete(ctx context.Context, req Request) (string, error)
	// CompleteJSON returns a completion parsed as a JSON object,
	// tolerating markdown code fences around it.
	CompleteJSON(ctx context.Context, req Request) (map[string]any, error)
}

// ParseJSON parses a model response as a JSON object. Models often wrap
// JSON in ```json fences even when asked not to, so fences are stripped
// before parsing.
func ParseJSON(raw string) (map[string]any, error) {
	cleaned := strings.TrimSpace(raw)
	if rest, ok := strings.CutPrefix(cleaned, "```json"); ok {
		cleaned = rest
	} else if rest, ok := strings.CutPrefix(cleaned, "```"); ok {
		cleaned = rest
	}
	cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	cleaned = strings.TrimSpace(cleaned)

	var out map[string]any
	if err := json.Unmarshal([]byte(cleaned), &out); err != nil {
		return nil, fmt.Errorf("parse llm json: %w", err)
	}
	return out, nil
}
