package client

import (
	"context"
	"net/url"
	"strconv"
)

// RecommendationService handles recommendation-related API calls
type RecommendationService struct {
	client *Client
}

// AnalyzeRequest carries the data for an optimization run
type AnalyzeRequest struct {
	Costs          []CostDataPoint       `json:"costs"`
	Utilization    []ResourceUtilization `json:"utilization"`
	MinimumSavings float64               `json:"minimum_savings,omitempty"`
	IncludeTypes   []string              `json:"include_types,omitempty"`
	UserID         string                `json:"user_id"`
}

// AnalyzeResult reports the job and the recommendations it produced
type AnalyzeResult struct {
	Job             *Job             `json:"job"`
	Recommendations []Recommendation `json:"recommendations"`
}

// RecommendationListOptions contains options for listing recommendations
type RecommendationListOptions struct {
	Status     string
	Type       string
	ResourceID string
	Limit      int
}

// UpdateRecommendationStatusRequest represents a request to move a recommendation to a new status
type UpdateRecommendationStatusRequest struct {
	Status string `json:"status"`
	UserID string `json:"user_id,omitempty"`
	Reason string `json:"reason,omitempty"`
	Notes  string `json:"notes,omitempty"`
}

// Savings reports the savings still achievable from open recommendations
type Savings struct {
	TotalSavings  float64 `json:"total_savings"`
	AnnualSavings float64 `json:"annual_savings"`
}

// Analyze runs the optimization recommender
func (s *RecommendationService) Analyze(ctx context.Context, organizationID string, req AnalyzeRequest) (*AnalyzeResult, error) {
	var result AnalyzeResult
	if err := s.client.doRequest(ctx, "POST", orgPath(organizationID, "/recommendations/analyze"), req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// List retrieves an organization's recommendations, largest savings first
func (s *RecommendationService) List(ctx context.Context, organizationID string, opts *RecommendationListOptions) ([]Recommendation, error) {
	query := url.Values{}

	if opts != nil {
		if opts.Status != "" {
			query.Set("status", opts.Status)
		}
		if opts.Type != "" {
			query.Set("type", opts.Type)
		}
		if opts.ResourceID != "" {
			query.Set("resource_id", opts.ResourceID)
		}
		if opts.Limit > 0 {
			query.Set("limit", strconv.Itoa(opts.Limit))
		}
	}

	path := orgPath(organizationID, "/recommendations")
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var result struct {
		Recommendations []Recommendation `json:"recommendations"`
	}
	if err := s.client.doRequest(ctx, "GET", path, nil, &result); err != nil {
		return nil, err
	}
	return result.Recommendations, nil
}

// Get retrieves a single recommendation by ID
func (s *RecommendationService) Get(ctx context.Context, id string) (*Recommendation, error) {
	var rec Recommendation
	if err := s.client.doRequest(ctx, "GET", "/api/v1/recommendations/"+pathEscape(id), nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// UpdateStatus moves a recommendation to a new status
func (s *RecommendationService) UpdateStatus(ctx context.Context, id string, req UpdateRecommendationStatusRequest) (*Recommendation, error) {
	var rec Recommendation
	if err := s.client.doRequest(ctx, "PATCH", "/api/v1/recommendations/"+pathEscape(id)+"/status", req, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Implement marks a recommendation implemented by userID
func (s *RecommendationService) Implement(ctx context.Context, id, userID, notes string) (*Recommendation, error) {
	return s.UpdateStatus(ctx, id, UpdateRecommendationStatusRequest{Status: "implemented", UserID: userID, Notes: notes})
}

// Dismiss marks a recommendation dismissed by userID
func (s *RecommendationService) Dismiss(ctx context.Context, id, userID, reason string) (*Recommendation, error) {
	return s.UpdateStatus(ctx, id, UpdateRecommendationStatusRequest{Status: "dismissed", UserID: userID, Reason: reason})
}

// TotalSavings returns the savings still achievable from open recommendations
func (s *RecommendationService) TotalSavings(ctx context.Context, organizationID string) (*Savings, error) {
	var savings Savings
	if err := s.client.doRequest(ctx, "GET", orgPath(organizationID, "/recommendations/savings"), nil, &savings); err != nil {
		return nil, err
	}
	return &savings, nil
}
