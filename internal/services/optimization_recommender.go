package services

import (
	"context"
	"fmt"

	"github.com/pratik-mahalle/costengine/internal/domain/cost"
	"github.com/pratik-mahalle/costengine/internal/domain/job"
	"github.com/pratik-mahalle/costengine/internal/domain/recommendation"
	"github.com/pratik-mahalle/costengine/internal/pkg/errors"
	"github.com/pratik-mahalle/costengine/internal/pkg/logger"
	"github.com/pratik-mahalle/costengine/internal/pkg/metrics"
	"github.com/pratik-mahalle/costengine/internal/pkg/validator"
)

// OptimizationRecommender implements recommendation.Service by running named rules
// over each resource's utilization and cost
type OptimizationRecommender struct {
	recs   recommendation.Repository
	jobs   job.Repository
	rules  []optimizationRule
	logger *logger.Logger
	opts   EngineOptions
}

// NewOptimizationRecommender creates a new optimization recommender
func NewOptimizationRecommender(recs recommendation.Repository, jobs job.Repository, log *logger.Logger, opts EngineOptions) *OptimizationRecommender {
	return &OptimizationRecommender{
		recs:   recs,
		jobs:   jobs,
		rules:  defaultRules(),
		logger: log,
		opts:   opts.withDefaults(),
	}
}

// AnalyzeAndOptimize runs every enabled rule and records the run as a job.
// On failure the failed job is returned together with an AnalysisFailure error.
func (s *OptimizationRecommender) AnalyzeAndOptimize(ctx context.Context, organizationID string, costs []cost.CostDataPoint, utilization []cost.ResourceUtilization, opts recommendation.Options) (*job.CostOptimizationJob, []*recommendation.CostOptimizationRecommendation, error) {
	if organizationID == "" {
		return nil, nil, errors.BadRequest("organization id is required")
	}
	if err := validator.Check(opts); err != nil {
		return nil, nil, err
	}
	for _, t := range opts.IncludeTypes {
		if !t.IsValid() {
			return nil, nil, errors.BadRequest("unknown recommendation type " + string(t))
		}
	}

	j := job.Start(s.opts.NewID(), organizationID, opts.UserID, s.opts.Now())
	if err := s.jobs.Create(ctx, j); err != nil {
		s.logger.ErrorWithErr(err, "Failed to create optimization job")
		return nil, nil, errors.AnalysisFailure("failed to create optimization job", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"organization_id": organizationID,
		"job_id":          j.ID,
		"resources":       len(utilization),
		"cost_samples":    len(costs),
	}).Info("Starting optimization analysis")

	recs, err := s.analyze(ctx, j, costs, utilization, opts)
	if err != nil {
		return s.failJob(ctx, j, err)
	}
	if err := s.recs.CreateMany(ctx, recs); err != nil {
		return s.failJob(ctx, j, fmt.Errorf("failed to store recommendations: %w", err))
	}
	for _, r := range recs {
		metrics.RecordRecommendation(string(r.Type))
	}

	var potential float64
	for _, r := range recs {
		potential += r.SavingsAmount
	}

	done := j.Clone()
	if err := done.Complete(len(utilization), len(recs), potential, s.opts.Now()); err != nil {
		return s.failJob(ctx, j, err)
	}
	if err := s.jobs.Update(ctx, done); err != nil {
		return s.failJob(ctx, j, err)
	}
	metrics.RecordOptimizationJob(string(done.Status), done.Duration())

	s.logger.WithFields(map[string]interface{}{
		"organization_id":   organizationID,
		"job_id":            done.ID,
		"recommendations":   len(recs),
		"potential_savings": potential,
	}).Info("Optimization analysis completed")

	return done, recs, nil
}

func (s *OptimizationRecommender) analyze(ctx context.Context, j *job.CostOptimizationJob, costs []cost.CostDataPoint, utilization []cost.ResourceUtilization, opts recommendation.Options) (out []*recommendation.CostOptimizationRecommendation, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = fmt.Errorf("optimization analysis panicked: %v", r)
		}
	}()

	for i := range costs {
		if verr := validator.Check(costs[i]); verr != nil {
			return nil, fmt.Errorf("invalid cost sample at index %d: %w", i, verr)
		}
	}
	for i := range utilization {
		if verr := validator.Check(utilization[i]); verr != nil {
			return nil, fmt.Errorf("invalid utilization record at index %d: %w", i, verr)
		}
	}

	totals := cost.TotalByResource(costs)
	currencies := make(map[string]string)
	for _, c := range costs {
		if c.Currency != "" {
			currencies[c.ResourceID] = c.Currency
		}
	}

	out = make([]*recommendation.CostOptimizationRecommendation, 0)
	for i := range utilization {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		u := &utilization[i]
		total := totals[u.ResourceID]
		if total == 0 {
			continue
		}

		for _, rule := range s.rules {
			if !opts.Includes(rule.Type()) {
				continue
			}
			rec := rule.Evaluate(u, total)
			if rec == nil || rec.SavingsAmount < opts.MinimumSavings {
				continue
			}

			now := s.opts.Now()
			rec.ID = s.opts.NewID()
			rec.OrganizationID = j.OrganizationID
			rec.JobID = j.ID
			rec.ResourceID = u.ResourceID
			rec.ResourceType = u.ResourceType
			rec.Currency = currencies[u.ResourceID]
			if rec.Currency == "" {
				rec.Currency = cost.DefaultCurrency
			}
			rec.Status = recommendation.StatusPending
			rec.CreatedAt = now
			rec.UpdatedAt = now

			out = append(out, rec)
		}
	}
	return out, nil
}

// failJob finalizes j as failed and converts cause into an AnalysisFailure
func (s *OptimizationRecommender) failJob(ctx context.Context, j *job.CostOptimizationJob, cause error) (*job.CostOptimizationJob, []*recommendation.CostOptimizationRecommendation, error) {
	s.logger.WithFields(map[string]interface{}{
		"organization_id": j.OrganizationID,
		"job_id":          j.ID,
	}).ErrorWithErr(cause, "Optimization analysis failed")

	if err := j.Fail(cause, s.opts.Now()); err != nil {
		s.logger.ErrorWithErr(err, "Failed to mark optimization job as failed")
	} else if err := s.jobs.Update(ctx, j); err != nil {
		s.logger.ErrorWithErr(err, "Failed to persist failed optimization job")
	}
	metrics.RecordOptimizationJob(string(j.Status), j.Duration())

	return j, nil, errors.AnalysisFailure("optimization analysis failed", cause)
}

// GetRecommendations lists an organization's recommendations
func (s *OptimizationRecommender) GetRecommendations(ctx context.Context, organizationID string, filter recommendation.Filter) ([]*recommendation.CostOptimizationRecommendation, error) {
	if organizationID == "" {
		return nil, errors.BadRequest("organization id is required")
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, errors.BadRequest("unknown recommendation status " + string(filter.Status))
	}
	if filter.Type != "" && !filter.Type.IsValid() {
		return nil, errors.BadRequest("unknown recommendation type " + string(filter.Type))
	}
	return s.recs.List(ctx, organizationID, filter)
}

// GetRecommendation retrieves a single recommendation
func (s *OptimizationRecommender) GetRecommendation(ctx context.Context, id string) (*recommendation.CostOptimizationRecommendation, error) {
	return s.recs.GetByID(ctx, id)
}

// UpdateRecommendationStatus moves a recommendation to a new status
func (s *OptimizationRecommender) UpdateRecommendationStatus(ctx context.Context, id string, status recommendation.Status, update recommendation.StatusUpdate) (*recommendation.CostOptimizationRecommendation, error) {
	if !status.IsValid() {
		return nil, errors.BadRequest("unknown recommendation status " + string(status))
	}

	rec, err := s.recs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.opts.StrictTransitions && !recommendation.CanTransition(rec.Status, status) {
		return nil, errors.Conflict(fmt.Sprintf("recommendation %s cannot move from %s to %s", id, rec.Status, status))
	}

	now := s.opts.Now()
	previous := rec.Status
	rec.Status = status
	switch status {
	case recommendation.StatusImplemented:
		rec.ImplementedAt = &now
		rec.ImplementedBy = update.UserID
	case recommendation.StatusDismissed:
		rec.DismissedAt = &now
		rec.DismissedBy = update.UserID
		rec.DismissReason = update.Reason
	}
	if update.Notes != "" {
		rec.Notes = update.Notes
	}
	rec.UpdatedAt = now

	if err := s.recs.Update(ctx, rec); err != nil {
		s.logger.ErrorWithErr(err, "Failed to update recommendation status")
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"recommendation_id": id,
		"organization_id":   rec.OrganizationID,
		"from":              previous,
		"to":                status,
	}).Info("Recommendation status updated")

	return rec, nil
}

// GetTotalSavings sums savings of recommendations that are still open
func (s *OptimizationRecommender) GetTotalSavings(ctx context.Context, organizationID string) (float64, error) {
	recs, err := s.GetRecommendations(ctx, organizationID, recommendation.Filter{})
	if err != nil {
		return 0, err
	}

	var total float64
	for _, r := range recs {
		if r.Status.IsOpen() {
			total += r.SavingsAmount
		}
	}
	return total, nil
}

// GetJob retrieves an optimization job
func (s *OptimizationRecommender) GetJob(ctx context.Context, id string) (*job.CostOptimizationJob, error) {
	return s.jobs.GetByID(ctx, id)
}

// ListJobs lists an organization's optimization jobs, newest first
func (s *OptimizationRecommender) ListJobs(ctx context.Context, organizationID string, limit int) ([]*job.CostOptimizationJob, error) {
	if organizationID == "" {
		return nil, errors.BadRequest("organization id is required")
	}
	return s.jobs.List(ctx, organizationID, limit)
}
