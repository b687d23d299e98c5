package dto

import (
	"github.com/pratik-mahalle/costengine/internal/domain/cost"
	"github.com/pratik-mahalle/costengine/internal/domain/job"
	"github.com/pratik-mahalle/costengine/internal/domain/recommendation"
)

// AnalyzeRequest carries the cost and utilization data for an optimization run
type AnalyzeRequest struct {
	Costs          []cost.CostDataPoint       `json:"costs"`
	Utilization    []cost.ResourceUtilization `json:"utilization"`
	MinimumSavings float64                    `json:"minimum_savings,omitempty" validate:"gte=0"`
	IncludeTypes   []recommendation.Type      `json:"include_types,omitempty"`
	UserID         string                     `json:"user_id" validate:"required"`
}

// Options converts the request into optimization options
func (r AnalyzeRequest) Options() recommendation.Options {
	return recommendation.Options{
		MinimumSavings: r.MinimumSavings,
		IncludeTypes:   r.IncludeTypes,
		UserID:         r.UserID,
	}
}

// AnalyzeResponse reports the job and the recommendations it produced
type AnalyzeResponse struct {
	Job             *job.CostOptimizationJob                         `json:"job"`
	Recommendations []*recommendation.CostOptimizationRecommendation `json:"recommendations"`
}

// RecommendationListResponse lists recommendations
type RecommendationListResponse struct {
	Recommendations []*recommendation.CostOptimizationRecommendation `json:"recommendations"`
	Count           int                                              `json:"count"`
}

// UpdateRecommendationStatusRequest moves a recommendation through its lifecycle
type UpdateRecommendationStatusRequest struct {
	Status recommendation.Status `json:"status" validate:"required,oneof=pending in_progress implemented dismissed expired"`
	UserID string                `json:"user_id,omitempty"`
	Reason string                `json:"reason,omitempty"`
	Notes  string                `json:"notes,omitempty"`
}

// Update returns the optional fields applied with the status change
func (r UpdateRecommendationStatusRequest) Update() recommendation.StatusUpdate {
	return recommendation.StatusUpdate{
		UserID: r.UserID,
		Reason: r.Reason,
		Notes:  r.Notes,
	}
}

// SavingsResponse reports the savings still achievable from open recommendations
type SavingsResponse struct {
	TotalSavings  float64 `json:"total_savings"`
	AnnualSavings float64 `json:"annual_savings"`
}

// JobListResponse lists optimization jobs
type JobListResponse struct {
	Jobs  []*job.CostOptimizationJob `json:"jobs"`
	Count int                        `json:"count"`
}
