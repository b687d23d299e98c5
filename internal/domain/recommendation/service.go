package recommendation

import (
	"context"

	"github.com/pratik-mahalle/costengine/internal/domain/cost"
	"github.com/pratik-mahalle/costengine/internal/domain/job"
)

// Service defines the interface for recommendation business logic
type Service interface {
	// AnalyzeAndOptimize runs every enabled analyzer and records the run as a job
	AnalyzeAndOptimize(ctx context.Context, organizationID string, costs []cost.CostDataPoint, utilization []cost.ResourceUtilization, opts Options) (*job.CostOptimizationJob, []*CostOptimizationRecommendation, error)

	// GetRecommendations lists an organization's recommendations
	GetRecommendations(ctx context.Context, organizationID string, filter Filter) ([]*CostOptimizationRecommendation, error)

	// GetRecommendation retrieves a single recommendation
	GetRecommendation(ctx context.Context, id string) (*CostOptimizationRecommendation, error)

	// UpdateRecommendationStatus moves a recommendation to a new status
	UpdateRecommendationStatus(ctx context.Context, id string, status Status, update StatusUpdate) (*CostOptimizationRecommendation, error)

	// GetTotalSavings sums savings of recommendations that are still open
	GetTotalSavings(ctx context.Context, organizationID string) (float64, error)

	// GetJob retrieves an optimization job
	GetJob(ctx context.Context, id string) (*job.CostOptimizationJob, error)

	// ListJobs lists an organization's optimization jobs, newest first
	ListJobs(ctx context.Context, organizationID string, limit int) ([]*job.CostOptimizationJob, error)
}
