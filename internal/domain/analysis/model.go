package analysis

import (
	"context"
	"time"

	"github.com/pratik-mahalle/costengine/internal/domain/recommendation"
)

// DefaultReportingWindow is the display period attached to every summary.
// It is not a query filter: summaries always cover the whole registry.
const DefaultReportingWindow = 30 * 24 * time.Hour

// TopWastefulLimit caps the wasteful-resource ranking
const TopWastefulLimit = 10

// CostOptimizationAnalysis is a point-in-time rollup of an organization's recommendations
type CostOptimizationAnalysis struct {
	OrganizationID       string                              `json:"organization_id"`
	PeriodStart          time.Time                           `json:"period_start"`
	PeriodEnd            time.Time                           `json:"period_end"`
	TotalCost            float64                             `json:"total_cost"`
	PotentialSavings     float64                             `json:"potential_savings"`
	SavingsPercentage    float64                             `json:"savings_percentage"`
	SavingsByCategory    map[recommendation.Category]float64 `json:"savings_by_category"`
	SavingsByType        map[recommendation.Type]float64     `json:"savings_by_type"`
	SavingsByConfidence  map[recommendation.Level]float64    `json:"savings_by_confidence"`
	TopWastefulResources []WastefulResource                  `json:"top_wasteful_resources"`
	RecommendationCount  int                                 `json:"recommendation_count"`
	GeneratedAt          time.Time                           `json:"generated_at"`
}

// WastefulResource ranks one resource by the spend a recommendation could recover
type WastefulResource struct {
	ResourceID       string  `json:"resource_id"`
	ResourceType     string  `json:"resource_type,omitempty"`
	CurrentCost      float64 `json:"current_cost"`
	WastedCost       float64 `json:"wasted_cost"`
	WastedPercentage float64 `json:"wasted_percentage"`
}

// Service defines the summary aggregation interface
type Service interface {
	// GenerateAnalysisSummary rolls up every recommendation of an organization
	GenerateAnalysisSummary(ctx context.Context, organizationID string) (*CostOptimizationAnalysis, error)
}
