package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/pratik-mahalle/costengine/internal/domain/job"
	"github.com/pratik-mahalle/costengine/internal/pkg/errors"
)

// JobRepository is an in-process optimization job registry
type JobRepository struct {
	mu   sync.RWMutex
	jobs map[string]*job.CostOptimizationJob
}

// NewJobRepository creates an empty job registry
func NewJobRepository() *JobRepository {
	return &JobRepository{jobs: make(map[string]*job.CostOptimizationJob)}
}

// Create stores a new job
func (r *JobRepository) Create(ctx context.Context, j *job.CostOptimizationJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.jobs[j.ID]; exists {
		return errors.Conflict("job " + j.ID + " already exists")
	}
	r.jobs[j.ID] = j.Clone()
	return nil
}

// Update replaces a stored job unless it already reached a terminal status
func (r *JobRepository) Update(ctx context.Context, j *job.CostOptimizationJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.jobs[j.ID]
	if !ok {
		return errors.NotFound("Job", j.ID)
	}
	if stored.Status.IsTerminal() {
		return errors.Conflict("job " + j.ID + " is already " + string(stored.Status))
	}
	r.jobs[j.ID] = j.Clone()
	return nil
}

// GetByID retrieves a job by ID
func (r *JobRepository) GetByID(ctx context.Context, id string) (*job.CostOptimizationJob, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	j, ok := r.jobs[id]
	if !ok {
		return nil, errors.NotFound("Job", id)
	}
	return j.Clone(), nil
}

// List returns an organization's jobs, most recently started first
func (r *JobRepository) List(ctx context.Context, organizationID string, limit int) ([]*job.CostOptimizationJob, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*job.CostOptimizationJob, 0)
	for _, j := range r.jobs {
		if j.OrganizationID == organizationID {
			out = append(out, j.Clone())
		}
	}

	sort.Slice(out, func(i, k int) bool {
		if !out[i].StartedAt.Equal(out[k].StartedAt) {
			return out[i].StartedAt.After(out[k].StartedAt)
		}
		return out[i].ID < out[k].ID
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
