// Package memory provides in-memory storage implementations for
// development and tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/rankonai/seoscope/internal/workflow"
)

// JobStore keeps jobs in a mutex-guarded map. Update applies mutations
// under the lock so concurrent step merges never lose each other.
type JobStore struct {
	mu   sync.RWMutex
	jobs map[string]workflow.Job
}

// NewJobStore returns an empty in-memory store.
func NewJobStore() *JobStore {
	return &JobStore{jobs: make(map[string]workflow.Job)}
}

// Create stores a new job.
func (s *JobStore) Create(_ context.Context, job workflow.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[job.ID]; exists {
		return fmt.Errorf("job %s already exists", job.ID)
	}
	s.jobs[job.ID] = job.Clone()
	return nil
}

// Get fetches a job by ID.
func (s *JobStore) Get(_ context.Context, id string) (workflow.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return workflow.Job{}, workflow.ErrNotFound
	}
	return job.Clone(), nil
}

// Update applies the mutation atomically and returns the new state. A
// failed apply leaves the stored job untouched.
func (s *JobStore) Update(_ context.Context, id string, apply func(*workflow.Job) error) (workflow.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return workflow.Job{}, workflow.ErrNotFound
	}
	updated := job.Clone()
	if err := apply(&updated); err != nil {
		return workflow.Job{}, err
	}
	s.jobs[id] = updated
	return updated.Clone(), nil
}
