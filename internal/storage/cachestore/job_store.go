// Package cachestore persists job state in the shared cache so the HTTP
// layer and the worker observe the same document. Jobs are stored as JSON
// under the job key prefix with a configurable TTL; every write refreshes
// the TTL.
//
// Read-modify-write cycles in Update are serialized by a sharded mutex,
// which is sufficient for a single process owning its jobs. Deployments
// running several workers against one cache must route a job's updates to
// the process that created it.
package cachestore

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/rankonai/seoscope/internal/cache"
	"github.com/rankonai/seoscope/internal/workflow"
)

// defaultJobTTL bounds how long job state survives after its last update.
// Matches the retention the status endpoints promise.
const defaultJobTTL = 24 * time.Hour

const lockShards = 64

// JobStore implements workflow.JobStore on top of a cache.Store.
type JobStore struct {
	store cache.Store
	ttl   time.Duration
	locks [lockShards]sync.Mutex
}

// NewJobStore returns a store writing job documents to the given cache.
// A non-positive ttl falls back to 24h.
func NewJobStore(store cache.Store, ttl time.Duration) *JobStore {
	if ttl <= 0 {
		ttl = defaultJobTTL
	}
	return &JobStore{store: store, ttl: ttl}
}

// Create writes the initial job document. The cache store never errors,
// so a rejected write means the backing store is unreachable; job state
// cannot be served without it, and the caller must fail the request.
func (s *JobStore) Create(ctx context.Context, job workflow.Job) error {
	if _, ok := s.store.Get(ctx, s.key(job.ID)); ok {
		return fmt.Errorf("job %s already exists", job.ID)
	}
	return s.write(ctx, job)
}

// Get loads a job by ID. Missing and expired entries both report
// workflow.ErrNotFound.
func (s *JobStore) Get(ctx context.Context, id string) (workflow.Job, error) {
	raw, ok := s.store.Get(ctx, s.key(id))
	if !ok {
		return workflow.Job{}, workflow.ErrNotFound
	}
	var job workflow.Job
	if err := json.Unmarshal(raw, &job); err != nil {
		return workflow.Job{}, fmt.Errorf("decode job %s: %w", id, err)
	}
	return job, nil
}

// Update applies the mutation under the job's shard lock and writes the
// result back, refreshing the TTL. When apply fails the stored document
// is left untouched.
func (s *JobStore) Update(ctx context.Context, id string, apply func(*workflow.Job) error) (workflow.Job, error) {
	lock := s.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	job, err := s.Get(ctx, id)
	if err != nil {
		return workflow.Job{}, err
	}
	if err := apply(&job); err != nil {
		return workflow.Job{}, err
	}
	if err := s.write(ctx, job); err != nil {
		return workflow.Job{}, err
	}
	return job, nil
}

func (s *JobStore) write(ctx context.Context, job workflow.Job) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode job %s: %w", job.ID, err)
	}
	if !s.store.Set(ctx, s.key(job.ID), payload, s.ttl) {
		return fmt.Errorf("job %s: cache store unavailable", job.ID)
	}
	return nil
}

func (s *JobStore) key(id string) string {
	return cache.Key(workflow.KeyPrefixJob, id)
}

func (s *JobStore) lockFor(id string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(id))
	return &s.locks[h.Sum32()%lockShards]
}
