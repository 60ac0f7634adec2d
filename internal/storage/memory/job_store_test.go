package memory

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/rankonai/seoscope/internal/workflow"
)

func TestJobStoreLifecycle(t *testing.T) {
	t.Parallel()

	store := NewJobStore()
	ctx := context.Background()
	job := workflow.Job{ID: "job-1", URL: "https://example.com/", Status: workflow.StatusPending}

	if err := store.Create(ctx, job); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := store.Create(ctx, job); err == nil {
		t.Fatal("expected duplicate job error")
	}

	updated, err := store.Update(ctx, job.ID, func(j *workflow.Job) error {
		j.Status = workflow.StatusRunning
		j.CurrentStep = workflow.StepOverview
		return nil
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Status != workflow.StatusRunning || updated.CurrentStep != workflow.StepOverview {
		t.Fatalf("unexpected updated job %+v", updated)
	}

	got, err := store.Get(ctx, job.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	got.Status = workflow.StatusFailed
	got.Result = map[string]json.RawMessage{"overview": json.RawMessage(`{}`)}

	again, err := store.Get(ctx, job.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if again.Status != workflow.StatusRunning || again.Result != nil {
		t.Fatal("expected Get to return a copy")
	}
}

func TestJobStoreGetUnknown(t *testing.T) {
	t.Parallel()

	store := NewJobStore()
	if _, err := store.Get(context.Background(), "missing"); !errors.Is(err, workflow.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	_, err := store.Update(context.Background(), "missing", func(*workflow.Job) error { return nil })
	if !errors.Is(err, workflow.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestJobStoreUpdateFailureLeavesState(t *testing.T) {
	t.Parallel()

	store := NewJobStore()
	ctx := context.Background()
	if err := store.Create(ctx, workflow.Job{ID: "job-1", Status: workflow.StatusPending}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	boom := errors.New("boom")
	_, err := store.Update(ctx, "job-1", func(j *workflow.Job) error {
		j.Status = workflow.StatusFailed
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected apply error, got %v", err)
	}

	job, err := store.Get(ctx, "job-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if job.Status != workflow.StatusPending {
		t.Fatalf("expected state unchanged, got %+v", job)
	}
}

func TestJobStoreConcurrentStepMerges(t *testing.T) {
	t.Parallel()

	store := NewJobStore()
	ctx := context.Background()
	if err := store.Create(ctx, workflow.Job{ID: "job-1", Status: workflow.StatusRunning}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	steps := workflow.EnrichmentSteps()
	var wg sync.WaitGroup
	for _, step := range steps {
		wg.Add(1)
		go func(step workflow.Step) {
			defer wg.Done()
			_, err := store.Update(ctx, "job-1", func(j *workflow.Job) error {
				if j.Result == nil {
					j.Result = map[string]json.RawMessage{}
				}
				j.Result[string(step)] = json.RawMessage(`{}`)
				j.CompletedSteps = append(j.CompletedSteps, string(step))
				return nil
			})
			if err != nil {
				t.Errorf("Update(%s) error = %v", step, err)
			}
		}(step)
	}
	wg.Wait()

	job, err := store.Get(ctx, "job-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(job.CompletedSteps) != len(steps) || len(job.Result) != len(steps) {
		t.Fatalf("lost updates: steps=%v result keys=%d", job.CompletedSteps, len(job.Result))
	}
}
