package client

import (
	"context"
	"net/url"
	"strconv"
	"time"
)

// AnomalyService handles anomaly detection-related API calls
type AnomalyService struct {
	client *Client
}

// DetectRequest carries samples and optional tuning for a detection run.
// Nil thresholds use the server defaults.
type DetectRequest struct {
	Samples              []CostDataPoint `json:"samples"`
	SensitivityThreshold *float64        `json:"sensitivity_threshold,omitempty"`
	MinimumAnomalyAmount *float64        `json:"minimum_anomaly_amount,omitempty"`
	LookbackDays         int             `json:"lookback_days,omitempty"`
}

// AnomalyListOptions contains options for listing anomalies
type AnomalyListOptions struct {
	Status     string // detected, investigating, resolved, false_positive
	Severity   string // critical, high, medium, low
	ResourceID string
	StartDate  *time.Time
	EndDate    *time.Time
	Limit      int
}

// UpdateAnomalyStatusRequest represents a request to move an anomaly to a new status
type UpdateAnomalyStatusRequest struct {
	Status     string `json:"status"`
	AssignedTo string `json:"assigned_to,omitempty"`
	RootCause  string `json:"root_cause,omitempty"`
	Notes      string `json:"notes,omitempty"`
	ResolvedBy string `json:"resolved_by,omitempty"`
	Resolution string `json:"resolution,omitempty"`
}

// AnomalySummary counts anomalies by severity
type AnomalySummary struct {
	BySeverity map[string]int `json:"by_severity"`
	Total      int            `json:"total"`
}

type anomalyList struct {
	Anomalies []Anomaly `json:"anomalies"`
	Count     int       `json:"count"`
}

// Detect runs anomaly detection over samples and returns the anomalies stored
func (s *AnomalyService) Detect(ctx context.Context, organizationID string, req DetectRequest) ([]Anomaly, error) {
	var result anomalyList
	if err := s.client.doRequest(ctx, "POST", orgPath(organizationID, "/anomalies/detect"), req, &result); err != nil {
		return nil, err
	}
	return result.Anomalies, nil
}

// List retrieves an organization's anomalies
func (s *AnomalyService) List(ctx context.Context, organizationID string, opts *AnomalyListOptions) ([]Anomaly, error) {
	query := url.Values{}

	if opts != nil {
		if opts.Status != "" {
			query.Set("status", opts.Status)
		}
		if opts.Severity != "" {
			query.Set("severity", opts.Severity)
		}
		if opts.ResourceID != "" {
			query.Set("resource_id", opts.ResourceID)
		}
		if opts.StartDate != nil {
			query.Set("start_date", opts.StartDate.UTC().Format(time.RFC3339))
		}
		if opts.EndDate != nil {
			query.Set("end_date", opts.EndDate.UTC().Format(time.RFC3339))
		}
		if opts.Limit > 0 {
			query.Set("limit", strconv.Itoa(opts.Limit))
		}
	}

	path := orgPath(organizationID, "/anomalies")
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var result anomalyList
	if err := s.client.doRequest(ctx, "GET", path, nil, &result); err != nil {
		return nil, err
	}
	return result.Anomalies, nil
}

// Get retrieves a single anomaly by ID
func (s *AnomalyService) Get(ctx context.Context, id string) (*Anomaly, error) {
	var anomaly Anomaly
	if err := s.client.doRequest(ctx, "GET", "/api/v1/anomalies/"+pathEscape(id), nil, &anomaly); err != nil {
		return nil, err
	}
	return &anomaly, nil
}

// UpdateStatus moves an anomaly to a new status
func (s *AnomalyService) UpdateStatus(ctx context.Context, id string, req UpdateAnomalyStatusRequest) (*Anomaly, error) {
	var anomaly Anomaly
	if err := s.client.doRequest(ctx, "PATCH", "/api/v1/anomalies/"+pathEscape(id)+"/status", req, &anomaly); err != nil {
		return nil, err
	}
	return &anomaly, nil
}

// Resolve marks an anomaly resolved
func (s *AnomalyService) Resolve(ctx context.Context, id, resolvedBy, resolution string) (*Anomaly, error) {
	return s.UpdateStatus(ctx, id, UpdateAnomalyStatusRequest{
		Status:     "resolved",
		ResolvedBy: resolvedBy,
		Resolution: resolution,
	})
}

// Summary counts an organization's anomalies by severity
func (s *AnomalyService) Summary(ctx context.Context, organizationID string) (*AnomalySummary, error) {
	var summary AnomalySummary
	if err := s.client.doRequest(ctx, "GET", orgPath(organizationID, "/anomalies/summary"), nil, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}
