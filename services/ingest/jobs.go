package ingest

import (
	"fmt"
	"sync"
	"time"
)

type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Job is the tracked state of one bulk upload. Total stays 0 until the
// dataset has been fully parsed; Processed counts records in attempted
// batches, including ones whose bulk write failed (FailedBatches keeps
// that loss visible). Completed and failed are terminal.
type Job struct {
	ID            string `json:"job_id"`
	Status        Status `json:"status"`
	Processed     int    `json:"processed"`
	Total         int    `json:"total"`
	FailedBatches int    `json:"failed_batches"`
	Error         string `json:"error,omitempty"`
}

// Registry maps job identifiers to job state. Entries are never removed
// while the process lives. Any number of readers may snapshot a job while
// the single worker that owns it writes.
type Registry struct {
	mu   sync.RWMutex
	jobs map[string]*Job
}

func NewRegistry() *Registry {
	return &Registry{jobs: make(map[string]*Job)}
}

// Create registers a new running job keyed by a millisecond timestamp.
// Uploads are rare and admin-triggered, so the timestamp alone almost
// always suffices; a numeric suffix covers same-millisecond submissions.
func (r *Registry) Create() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	jobID := fmt.Sprintf("job_%d", time.Now().UnixMilli())
	candidate := jobID
	for i := 1; ; i++ {
		if _, exists := r.jobs[candidate]; !exists {
			break
		}
		candidate = fmt.Sprintf("%s_%d", jobID, i)
	}

	r.jobs[candidate] = &Job{ID: candidate, Status: StatusRunning}
	return candidate
}

func (r *Registry) Snapshot(jobID string) (Job, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	job, ok := r.jobs[jobID]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

func (r *Registry) setTotal(jobID string, total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job, ok := r.jobs[jobID]; ok {
		job.Total = total
	}
}

func (r *Registry) addProcessed(jobID string, count int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job, ok := r.jobs[jobID]; ok {
		job.Processed += count
	}
}

func (r *Registry) addFailedBatch(jobID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job, ok := r.jobs[jobID]; ok {
		job.FailedBatches++
	}
}

func (r *Registry) complete(jobID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job, ok := r.jobs[jobID]; ok && job.Status == StatusRunning {
		job.Status = StatusCompleted
	}
}

func (r *Registry) fail(jobID string, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job, ok := r.jobs[jobID]; ok && job.Status == StatusRunning {
		job.Status = StatusFailed
		job.Error = message
	}
}
