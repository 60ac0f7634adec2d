// Package uuid generates the identifiers handed to new jobs.
package uuid

import "github.com/google/uuid"

// Generator yields UUIDv7 strings so job IDs sort by creation time.
type Generator struct{}

// New returns a ready Generator.
func New() *Generator {
	return &Generator{}
}

// NewID returns the next UUIDv7, falling back to v4 when the entropy
// source rejects the timestamped form.
func (Generator) NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
