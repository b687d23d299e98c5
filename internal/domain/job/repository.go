package job

import "context"

// Repository defines the job repository interface
type Repository interface {
	// Create stores a new job
	Create(ctx context.Context, j *CostOptimizationJob) error

	// Update replaces a stored job. Updating a job that is already terminal fails with Conflict.
	Update(ctx context.Context, j *CostOptimizationJob) error

	// GetByID retrieves a job by ID
	GetByID(ctx context.Context, id string) (*CostOptimizationJob, error)

	// List returns an organization's jobs, most recently started first; limit <= 0 means all
	List(ctx context.Context, organizationID string, limit int) ([]*CostOptimizationJob, error)
}
