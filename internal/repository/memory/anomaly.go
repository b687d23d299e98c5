package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/pratik-mahalle/costengine/internal/domain/anomaly"
	"github.com/pratik-mahalle/costengine/internal/pkg/errors"
)

// AnomalyRepository is an in-process anomaly registry
type AnomalyRepository struct {
	mu        sync.RWMutex
	anomalies map[string]*anomaly.CostAnomaly
}

// NewAnomalyRepository creates an empty anomaly registry
func NewAnomalyRepository() *AnomalyRepository {
	return &AnomalyRepository{anomalies: make(map[string]*anomaly.CostAnomaly)}
}

// Create inserts a new anomaly
func (r *AnomalyRepository) Create(ctx context.Context, a *anomaly.CostAnomaly) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.anomalies[a.ID]; exists {
		return errors.Conflict("anomaly " + a.ID + " already exists")
	}
	r.anomalies[a.ID] = a.Clone()
	return nil
}

// CreateMany inserts anomalies atomically; a duplicate ID rejects the whole batch
func (r *AnomalyRepository) CreateMany(ctx context.Context, anomalies []*anomaly.CostAnomaly) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]struct{}, len(anomalies))
	for _, a := range anomalies {
		if _, exists := r.anomalies[a.ID]; exists {
			return errors.Conflict("anomaly " + a.ID + " already exists")
		}
		if _, dup := seen[a.ID]; dup {
			return errors.Conflict("anomaly " + a.ID + " appears twice in batch")
		}
		seen[a.ID] = struct{}{}
	}
	for _, a := range anomalies {
		r.anomalies[a.ID] = a.Clone()
	}
	return nil
}

// GetByID retrieves an anomaly by ID
func (r *AnomalyRepository) GetByID(ctx context.Context, id string) (*anomaly.CostAnomaly, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.anomalies[id]
	if !ok {
		return nil, errors.NotFound("Anomaly", id)
	}
	return a.Clone(), nil
}

// Update replaces a stored anomaly
func (r *AnomalyRepository) Update(ctx context.Context, a *anomaly.CostAnomaly) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.anomalies[a.ID]; !ok {
		return errors.NotFound("Anomaly", a.ID)
	}
	r.anomalies[a.ID] = a.Clone()
	return nil
}

// List returns an organization's anomalies, newest detection first
func (r *AnomalyRepository) List(ctx context.Context, organizationID string, filter anomaly.Filter) ([]*anomaly.CostAnomaly, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*anomaly.CostAnomaly, 0)
	for _, a := range r.anomalies {
		if a.OrganizationID != organizationID || !filter.Matches(a) {
			continue
		}
		out = append(out, a.Clone())
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].DetectedAt.Equal(out[j].DetectedAt) {
			return out[i].DetectedAt.After(out[j].DetectedAt)
		}
		if !out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].StartDate.After(out[j].StartDate)
		}
		return out[i].ID < out[j].ID
	})

	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// CountBySeverity counts an organization's anomalies by severity
func (r *AnomalyRepository) CountBySeverity(ctx context.Context, organizationID string) (map[anomaly.Severity]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[anomaly.Severity]int, len(anomaly.Severities))
	for _, s := range anomaly.Severities {
		counts[s] = 0
	}
	for _, a := range r.anomalies {
		if a.OrganizationID == organizationID {
			counts[a.Severity]++
		}
	}
	return counts, nil
}
