package recommendation

import "context"

// Repository defines the interface for recommendation data access
type Repository interface {
	// Create inserts a new recommendation keyed by its ID
	Create(ctx context.Context, rec *CostOptimizationRecommendation) error

	// CreateMany inserts all recommendations or none of them
	CreateMany(ctx context.Context, recs []*CostOptimizationRecommendation) error

	// GetByID retrieves a recommendation by ID
	GetByID(ctx context.Context, id string) (*CostOptimizationRecommendation, error)

	// Update replaces a stored recommendation
	Update(ctx context.Context, rec *CostOptimizationRecommendation) error

	// List returns an organization's recommendations matching filter, largest savings first
	List(ctx context.Context, organizationID string, filter Filter) ([]*CostOptimizationRecommendation, error)
}
