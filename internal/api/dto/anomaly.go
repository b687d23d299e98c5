package dto

import (
	"github.com/pratik-mahalle/costengine/internal/domain/anomaly"
	"github.com/pratik-mahalle/costengine/internal/domain/cost"
)

// DetectAnomaliesRequest carries the samples to analyze and optional detection tuning.
// Omitted thresholds fall back to the engine defaults; an explicit 0 is kept.
type DetectAnomaliesRequest struct {
	Samples              []cost.CostDataPoint `json:"samples"`
	SensitivityThreshold *float64             `json:"sensitivity_threshold,omitempty" validate:"omitempty,gte=0"`
	MinimumAnomalyAmount *float64             `json:"minimum_anomaly_amount,omitempty" validate:"omitempty,gte=0"`
	LookbackDays         int                  `json:"lookback_days,omitempty" validate:"gte=0"`
}

// Options converts the request tuning into detection options
func (r DetectAnomaliesRequest) Options() anomaly.Options {
	opts := anomaly.DefaultOptions()
	if r.SensitivityThreshold != nil {
		opts.SensitivityThreshold = *r.SensitivityThreshold
	}
	if r.MinimumAnomalyAmount != nil {
		opts.MinimumAnomalyAmount = *r.MinimumAnomalyAmount
	}
	if r.LookbackDays > 0 {
		opts.LookbackDays = r.LookbackDays
	}
	return opts
}

// DetectAnomaliesResponse lists the anomalies a detection run stored
type DetectAnomaliesResponse struct {
	Anomalies []*anomaly.CostAnomaly `json:"anomalies"`
	Count     int                    `json:"count"`
}

// AnomalyListResponse lists anomalies
type AnomalyListResponse struct {
	Anomalies []*anomaly.CostAnomaly `json:"anomalies"`
	Count     int                    `json:"count"`
}

// UpdateAnomalyStatusRequest moves an anomaly through its lifecycle
type UpdateAnomalyStatusRequest struct {
	Status     anomaly.Status `json:"status" validate:"required,oneof=detected investigating resolved false_positive"`
	AssignedTo string         `json:"assigned_to,omitempty"`
	RootCause  string         `json:"root_cause,omitempty"`
	Notes      string         `json:"notes,omitempty"`
	ResolvedBy string         `json:"resolved_by,omitempty"`
	Resolution string         `json:"resolution,omitempty"`
}

// Update returns the optional fields applied with the status change
func (r UpdateAnomalyStatusRequest) Update() anomaly.StatusUpdate {
	return anomaly.StatusUpdate{
		AssignedTo: r.AssignedTo,
		RootCause:  r.RootCause,
		Notes:      r.Notes,
		ResolvedBy: r.ResolvedBy,
		Resolution: r.Resolution,
	}
}

// AnomalySummaryResponse counts anomalies by severity
type AnomalySummaryResponse struct {
	BySeverity map[anomaly.Severity]int `json:"by_severity"`
	Total      int                      `json:"total"`
}
