package services

import (
	"context"
	"sort"

	"github.com/pratik-mahalle/costengine/internal/domain/analysis"
	"github.com/pratik-mahalle/costengine/internal/domain/recommendation"
	"github.com/pratik-mahalle/costengine/internal/pkg/errors"
	"github.com/pratik-mahalle/costengine/internal/pkg/logger"
	"github.com/pratik-mahalle/costengine/internal/pkg/metrics"
)

// SummaryAggregator implements analysis.Service
type SummaryAggregator struct {
	recs   recommendation.Repository
	logger *logger.Logger
	opts   EngineOptions
}

// NewSummaryAggregator creates a new summary aggregator
func NewSummaryAggregator(recs recommendation.Repository, log *logger.Logger, opts EngineOptions) *SummaryAggregator {
	return &SummaryAggregator{
		recs:   recs,
		logger: log,
		opts:   opts.withDefaults(),
	}
}

// GenerateAnalysisSummary rolls up every recommendation of an organization.
// The reporting period is display-only and does not filter recommendations.
func (s *SummaryAggregator) GenerateAnalysisSummary(ctx context.Context, organizationID string) (*analysis.CostOptimizationAnalysis, error) {
	if organizationID == "" {
		return nil, errors.BadRequest("organization id is required")
	}

	recs, err := s.recs.List(ctx, organizationID, recommendation.Filter{})
	if err != nil {
		s.logger.ErrorWithErr(err, "Failed to list recommendations for summary")
		return nil, err
	}

	now := s.opts.Now()
	summary := &analysis.CostOptimizationAnalysis{
		OrganizationID:       organizationID,
		PeriodStart:          now.Add(-s.opts.ReportingWindow),
		PeriodEnd:            now,
		SavingsByCategory:    make(map[recommendation.Category]float64),
		SavingsByType:        make(map[recommendation.Type]float64),
		SavingsByConfidence:  make(map[recommendation.Level]float64),
		TopWastefulResources: make([]analysis.WastefulResource, 0),
		RecommendationCount:  len(recs),
		GeneratedAt:          now,
	}

	byResource := make(map[string]*analysis.WastefulResource)
	for _, r := range recs {
		summary.TotalCost += r.CurrentCost
		summary.PotentialSavings += r.SavingsAmount
		summary.SavingsByCategory[r.Category] += r.SavingsAmount
		summary.SavingsByType[r.Type] += r.SavingsAmount
		summary.SavingsByConfidence[r.Confidence] += r.SavingsAmount

		w, ok := byResource[r.ResourceID]
		if !ok {
			w = &analysis.WastefulResource{ResourceID: r.ResourceID, ResourceType: r.ResourceType}
			byResource[r.ResourceID] = w
		}
		if r.CurrentCost > w.CurrentCost {
			w.CurrentCost = r.CurrentCost
		}
		if r.SavingsAmount > w.WastedCost {
			w.WastedCost = r.SavingsAmount
		}
	}

	if summary.TotalCost != 0 {
		summary.SavingsPercentage = summary.PotentialSavings * 100 / summary.TotalCost
	}
	summary.TopWastefulResources = topWasteful(byResource, analysis.TopWastefulLimit)

	metrics.SetPotentialSavings(organizationID, summary.PotentialSavings)
	s.logger.WithFields(map[string]interface{}{
		"organization_id":   organizationID,
		"recommendations":   len(recs),
		"potential_savings": summary.PotentialSavings,
	}).Info("Analysis summary generated")

	return summary, nil
}

// topWasteful ranks resources by wasted cost, largest first, ties by resource id
func topWasteful(byResource map[string]*analysis.WastefulResource, limit int) []analysis.WastefulResource {
	out := make([]analysis.WastefulResource, 0, len(byResource))
	for _, w := range byResource {
		if w.CurrentCost != 0 {
			w.WastedPercentage = w.WastedCost * 100 / w.CurrentCost
		}
		out = append(out, *w)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].WastedCost != out[j].WastedCost {
			return out[i].WastedCost > out[j].WastedCost
		}
		return out[i].ResourceID < out[j].ResourceID
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
