// Package providers pulls daily billed cost from cloud billing APIs and exposes it
// as an ingest.Source for scheduled analysis runs.
package providers

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/pratik-mahalle/costengine/internal/domain/cost"
	"github.com/pratik-mahalle/costengine/internal/ingest"
	"github.com/pratik-mahalle/costengine/internal/pkg/logger"
	"github.com/pratik-mahalle/costengine/internal/pkg/metrics"
)

// CostFetcher returns daily cost samples billed in [start, end)
type CostFetcher interface {
	Provider() string
	FetchCosts(ctx context.Context, start, end time.Time) ([]cost.CostDataPoint, error)
}

// Source serves one organization whose costs come from one or more billing APIs.
// Utilization, when configured, is read from a directory source.
type Source struct {
	organizationID string
	window         time.Duration
	fetchers       []CostFetcher
	utilization    ingest.Source
	logger         *logger.Logger
	now            func() time.Time
}

// NewSource creates a billing-API source. utilization may be nil.
func NewSource(organizationID string, window time.Duration, utilization ingest.Source, log *logger.Logger, fetchers ...CostFetcher) *Source {
	return &Source{
		organizationID: organizationID,
		window:         window,
		fetchers:       fetchers,
		utilization:    utilization,
		logger:         log,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// Organizations returns the single configured organization
func (s *Source) Organizations(ctx context.Context) ([]string, error) {
	return []string{s.organizationID}, nil
}

// Load fetches the last window of billed cost from every provider
func (s *Source) Load(ctx context.Context, organizationID string) (*ingest.Dataset, error) {
	if organizationID != s.organizationID {
		return nil, fmt.Errorf("unknown organization %q", organizationID)
	}

	end := s.now().Truncate(24 * time.Hour)
	start := end.Add(-s.window)

	ds := &ingest.Dataset{OrganizationID: organizationID}
	for _, f := range s.fetchers {
		costs, err := f.FetchCosts(ctx, start, end)
		if err != nil {
			metrics.RecordCostFetch(f.Provider(), "failed", 0)
			return nil, fmt.Errorf("%s cost fetch failed: %w", f.Provider(), err)
		}
		metrics.RecordCostFetch(f.Provider(), "success", len(costs))
		s.logger.WithFields(map[string]interface{}{
			"organization_id": organizationID,
			"provider":        f.Provider(),
			"samples":         len(costs),
		}).Debug("Fetched billing data")
		ds.Costs = append(ds.Costs, costs...)
	}

	sort.SliceStable(ds.Costs, func(i, j int) bool {
		return ds.Costs[i].Timestamp.Before(ds.Costs[j].Timestamp)
	})

	if s.utilization != nil {
		u, err := s.utilization.Load(ctx, organizationID)
		if err != nil {
			return nil, fmt.Errorf("utilization load failed: %w", err)
		}
		ds.Utilization = u.Utilization
	}

	return ds, nil
}

// serviceResourceID keys billing rows that are grouped by service and region
// rather than by individual resource
func serviceResourceID(service, region string) string {
	if region == "" {
		region = "global"
	}
	return service + "/" + region
}
