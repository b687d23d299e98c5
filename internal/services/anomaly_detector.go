package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/pratik-mahalle/costengine/internal/domain/anomaly"
	"github.com/pratik-mahalle/costengine/internal/domain/cost"
	"github.com/pratik-mahalle/costengine/internal/pkg/errors"
	"github.com/pratik-mahalle/costengine/internal/pkg/logger"
	"github.com/pratik-mahalle/costengine/internal/pkg/metrics"
	"github.com/pratik-mahalle/costengine/internal/pkg/stats"
	"github.com/pratik-mahalle/costengine/internal/pkg/validator"
)

// AnomalyDetector implements anomaly.Service with a per-resource z-score test
type AnomalyDetector struct {
	repo   anomaly.Repository
	logger *logger.Logger
	opts   EngineOptions
}

// NewAnomalyDetector creates a new anomaly detector
func NewAnomalyDetector(repo anomaly.Repository, log *logger.Logger, opts EngineOptions) *AnomalyDetector {
	return &AnomalyDetector{
		repo:   repo,
		logger: log,
		opts:   opts.withDefaults(),
	}
}

// DetectAnomalies runs detection over samples and stores every flagged day
func (s *AnomalyDetector) DetectAnomalies(ctx context.Context, organizationID string, samples []cost.CostDataPoint, opts anomaly.Options) (found []*anomaly.CostAnomaly, err error) {
	if organizationID == "" {
		return nil, errors.BadRequest("organization id is required")
	}
	if err := validator.Check(opts); err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			found = nil
			err = errors.AnalysisFailure(fmt.Sprintf("anomaly detection panicked: %v", r), nil)
		}
		if err != nil {
			s.logger.WithOrganization(organizationID).ErrorWithErr(err, "Failed to detect anomalies")
		}
	}()

	for i := range samples {
		if verr := validator.Check(samples[i]); verr != nil {
			return nil, errors.AnalysisFailure(fmt.Sprintf("invalid cost sample at index %d", i), verr)
		}
	}

	detectedAt := s.opts.Now()
	byResource := cost.GroupByResource(samples)
	resourceIDs := make([]string, 0, len(byResource))
	for id := range byResource {
		resourceIDs = append(resourceIDs, id)
	}
	sort.Strings(resourceIDs)

	found = make([]*anomaly.CostAnomaly, 0)
	for _, resourceID := range resourceIDs {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, errors.AnalysisFailure("anomaly detection cancelled", ctxErr)
		}

		anomalies, derr := s.detectResource(organizationID, byResource[resourceID], opts, detectedAt)
		if derr != nil {
			return nil, derr
		}
		found = append(found, anomalies...)
	}

	if cerr := s.repo.CreateMany(ctx, found); cerr != nil {
		return nil, errors.AnalysisFailure("failed to store anomalies", cerr)
	}
	for _, a := range found {
		metrics.RecordAnomaly(string(a.Severity), string(a.AnomalyType))
	}

	metrics.RecordDetectionDuration(time.Since(start))
	s.logger.WithFields(map[string]interface{}{
		"organization_id": organizationID,
		"samples":         len(samples),
		"resources":       len(resourceIDs),
		"anomalies":       len(found),
		"threshold":       opts.SensitivityThreshold,
		"minimum_amount":  opts.MinimumAnomalyAmount,
	}).Info("Anomaly detection completed")

	return found, nil
}

// detectResource tests the most recent days of one resource against its own baseline
func (s *AnomalyDetector) detectResource(organizationID string, samples []cost.CostDataPoint, opts anomaly.Options, detectedAt time.Time) ([]*anomaly.CostAnomaly, error) {
	sorted := make([]cost.CostDataPoint, len(samples))
	copy(sorted, samples)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	if len(sorted) < anomaly.MinimumSamples {
		metrics.RecordSkippedResource("insufficient_samples")
		return nil, nil
	}

	points := make([]stats.Sample, len(sorted))
	for i, p := range sorted {
		points[i] = stats.Sample{Timestamp: p.Timestamp, Value: p.Amount}
	}
	days := stats.BucketByDay(points)
	if len(days) < anomaly.MinimumDays {
		metrics.RecordSkippedResource("insufficient_days")
		return nil, nil
	}

	split := len(days) - anomaly.RecentDays
	baseline := stats.Totals(days[:split])
	mean := stats.Mean(baseline)
	stdDev := stats.StdDev(baseline)
	if !stats.IsFinite(mean) || !stats.IsFinite(stdDev) {
		return nil, errors.AnalysisFailure(fmt.Sprintf("baseline for resource %s overflowed", samples[0].ResourceID), nil)
	}

	latest := sorted[len(sorted)-1]
	currency := latest.Currency
	if currency == "" {
		currency = cost.DefaultCurrency
	}

	var out []*anomaly.CostAnomaly
	for _, day := range days[split:] {
		deviation := math.Abs(day.Total - mean)
		stdDevs := stats.ZScore(day.Total, mean, stdDev)
		if stdDevs < opts.SensitivityThreshold || deviation < opts.MinimumAnomalyAmount {
			continue
		}

		pct := 0.0
		if mean > 0 {
			pct = deviation / mean * 100
		}

		out = append(out, &anomaly.CostAnomaly{
			ID:                  s.opts.NewID(),
			OrganizationID:      organizationID,
			ResourceID:          latest.ResourceID,
			ResourceType:        latest.ResourceType,
			ServiceType:         latest.ServiceType,
			Region:              latest.Region,
			AccountID:           latest.AccountID,
			Currency:            currency,
			DetectedAt:          detectedAt,
			StartDate:           day.Day,
			EndDate:             day.Day,
			ExpectedCost:        mean,
			ActualCost:          day.Total,
			Deviation:           deviation,
			DeviationPercentage: pct,
			DeviationStdDevs:    stdDevs,
			Severity:            anomaly.SeverityForDeviation(stdDevs),
			Status:              anomaly.StatusDetected,
			AnomalyType:         anomaly.ClassifyShape(day.Total, mean),
			CreatedAt:           detectedAt,
			UpdatedAt:           detectedAt,
		})
	}
	return out, nil
}

// GetAnomalies lists an organization's anomalies
func (s *AnomalyDetector) GetAnomalies(ctx context.Context, organizationID string, filter anomaly.Filter) ([]*anomaly.CostAnomaly, error) {
	if organizationID == "" {
		return nil, errors.BadRequest("organization id is required")
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, errors.BadRequest("unknown anomaly status " + string(filter.Status))
	}
	if filter.Severity != "" && !filter.Severity.IsValid() {
		return nil, errors.BadRequest("unknown anomaly severity " + string(filter.Severity))
	}
	return s.repo.List(ctx, organizationID, filter)
}

// GetAnomaly retrieves a single anomaly
func (s *AnomalyDetector) GetAnomaly(ctx context.Context, id string) (*anomaly.CostAnomaly, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateAnomalyStatus moves an anomaly to a new status
func (s *AnomalyDetector) UpdateAnomalyStatus(ctx context.Context, id string, status anomaly.Status, update anomaly.StatusUpdate) (*anomaly.CostAnomaly, error) {
	if !status.IsValid() {
		return nil, errors.BadRequest("unknown anomaly status " + string(status))
	}

	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.opts.StrictTransitions && !anomaly.CanTransition(a.Status, status) {
		return nil, errors.Conflict(fmt.Sprintf("anomaly %s cannot move from %s to %s", id, a.Status, status))
	}

	now := s.opts.Now()
	previous := a.Status
	a.Status = status
	if update.AssignedTo != "" {
		a.AssignedTo = update.AssignedTo
	}
	if update.RootCause != "" {
		a.RootCause = update.RootCause
	}
	if update.Notes != "" {
		a.Notes = update.Notes
	}
	if status == anomaly.StatusResolved {
		a.ResolvedAt = &now
		a.ResolvedBy = update.ResolvedBy
		a.Resolution = update.Resolution
	}
	a.UpdatedAt = now

	if err := s.repo.Update(ctx, a); err != nil {
		s.logger.ErrorWithErr(err, "Failed to update anomaly status")
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"anomaly_id":      id,
		"organization_id": a.OrganizationID,
		"from":            previous,
		"to":              status,
	}).Info("Anomaly status updated")

	return a, nil
}

// GetSummary counts an organization's anomalies by severity
func (s *AnomalyDetector) GetSummary(ctx context.Context, organizationID string) (map[anomaly.Severity]int, error) {
	if organizationID == "" {
		return nil, errors.BadRequest("organization id is required")
	}
	return s.repo.CountBySeverity(ctx, organizationID)
}
