// Package noop provides an llm.Client placeholder for providers that
// have no credentials in the current deployment.
package noop

import (
	"context"
	"fmt"

	"github.com/rankonai/seoscope/internal/llm"
)

// Client always reports itself unconfigured.
type Client struct {
	name string
}

// New creates a placeholder client under the given provider name.
func New(name string) *Client {
	if name == "" {
		name = "noop"
	}
	return &Client{name: name}
}

func (c *Client) Name() string { return c.name }

func (c *Client) Configured() bool { return false }

func (c *Client) Complete(context.Context, llm.Request) (string, error) {
	return "", fmt.Errorf("%s: %w", c.name, llm.ErrNotConfigured)
}

func (c *Client) CompleteJSON(context.Context, llm.Request) (map[string]any, error) {
	return nil, fmt.Errorf("%s: %w", c.name, llm.ErrNotConfigured)
}

var _ llm.Client = (*Client)(nil)
