// Package tracker owns the job map and the in-flight admission counter.
// It is the only shared mutable state in the service; everything is guarded
// by a single mutex so the admission invariant holds under concurrent
// submissions.
package tracker

import (
	"sync"

	"go.uber.org/zap"

	"github.com/jfaulkner/seedshot/internal/mapgen"
	"github.com/jfaulkner/seedshot/internal/metrics"
)

// Tracker implements mapgen.Tracker with a mutex-guarded map.
type Tracker struct {
	mu       sync.Mutex
	jobs     map[string]mapgen.Job
	inFlight int
	ceiling  int
	total    int

	clock  mapgen.Clock
	logger *zap.Logger
}

// New creates a Tracker with the given concurrency ceiling.
func New(ceiling int, clock mapgen.Clock, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics.Init()
	return &Tracker{
		jobs:    make(map[string]mapgen.Job),
		ceiling: ceiling,
		clock:   clock,
		logger:  logger,
	}
}

// Admit atomically claims an in-flight slot. It returns false without side
// effects when the ceiling is reached.
func (t *Tracker) Admit() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.inFlight >= t.ceiling {
		return false
	}
	t.inFlight++
	metrics.IncInFlight()
	return true
}

// CreateRecord inserts a job in processing state. Admit must have returned
// true for this submission.
func (t *Tracker) CreateRecord(job mapgen.Job) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.jobs[job.ID]; exists {
		t.logger.Warn("duplicate job record ignored", zap.String("job_id", job.ID))
		return
	}
	job.Status = mapgen.JobStatusProcessing
	t.jobs[job.ID] = job
	t.total++
}

// Complete transitions a job to its terminal state and releases the
// admission slot. A second call for the same job is a logged no-op; the
// first terminal state is never overwritten and the counter is decremented
// exactly once.
func (t *Tracker) Complete(jobID string, outcome mapgen.Outcome) {
	t.mu.Lock()
	defer t.mu.Unlock()

	job, ok := t.jobs[jobID]
	if !ok {
		t.logger.Warn("completion for unknown job", zap.String("job_id", jobID))
		return
	}
	if job.Status.Terminal() {
		t.logger.Warn("duplicate completion ignored",
			zap.String("job_id", jobID),
			zap.String("status", string(job.Status)),
		)
		return
	}

	now := t.clock.Now()
	job.Status = outcome.Status
	job.Completed = &now
	job.ArtifactURI = outcome.ArtifactURI
	job.OutputSize = outcome.OutputSize
	job.FailureReason = outcome.FailureReason
	job.Retryable = outcome.Retryable
	t.jobs[jobID] = job

	t.inFlight--
	metrics.DecInFlight()
	metrics.ObserveJob(string(outcome.Status))
}

// Get fetches a job by id.
func (t *Tracker) Get(jobID string) (mapgen.Job, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	job, ok := t.jobs[jobID]
	if !ok {
		return mapgen.Job{}, mapgen.ErrNotFound
	}
	return job, nil
}

// Summary returns counts by status plus the admission state.
func (t *Tracker) Summary() mapgen.Summary {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := mapgen.Summary{
		InFlight: t.inFlight,
		Ceiling:  t.ceiling,
		Total:    t.total,
	}
	for _, job := range t.jobs {
		switch job.Status {
		case mapgen.JobStatusProcessing:
			s.Processing++
		case mapgen.JobStatusReady:
			s.Ready++
		case mapgen.JobStatusFailed:
			s.Failed++
		}
	}
	return s
}
