package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/pratik-mahalle/costengine/internal/domain/recommendation"
	"github.com/pratik-mahalle/costengine/internal/pkg/errors"
)

// RecommendationRepository is an in-process recommendation registry
type RecommendationRepository struct {
	mu   sync.RWMutex
	recs map[string]*recommendation.CostOptimizationRecommendation
}

// NewRecommendationRepository creates an empty recommendation registry
func NewRecommendationRepository() *RecommendationRepository {
	return &RecommendationRepository{recs: make(map[string]*recommendation.CostOptimizationRecommendation)}
}

// Create inserts a new recommendation
func (r *RecommendationRepository) Create(ctx context.Context, rec *recommendation.CostOptimizationRecommendation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.recs[rec.ID]; exists {
		return errors.Conflict("recommendation " + rec.ID + " already exists")
	}
	r.recs[rec.ID] = rec.Clone()
	return nil
}

// CreateMany inserts recommendations atomically; a duplicate ID rejects the whole batch
func (r *RecommendationRepository) CreateMany(ctx context.Context, recs []*recommendation.CostOptimizationRecommendation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]struct{}, len(recs))
	for _, rec := range recs {
		if _, exists := r.recs[rec.ID]; exists {
			return errors.Conflict("recommendation " + rec.ID + " already exists")
		}
		if _, dup := seen[rec.ID]; dup {
			return errors.Conflict("recommendation " + rec.ID + " appears twice in batch")
		}
		seen[rec.ID] = struct{}{}
	}
	for _, rec := range recs {
		r.recs[rec.ID] = rec.Clone()
	}
	return nil
}

// GetByID retrieves a recommendation by ID
func (r *RecommendationRepository) GetByID(ctx context.Context, id string) (*recommendation.CostOptimizationRecommendation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.recs[id]
	if !ok {
		return nil, errors.NotFound("Recommendation", id)
	}
	return rec.Clone(), nil
}

// Update replaces a stored recommendation
func (r *RecommendationRepository) Update(ctx context.Context, rec *recommendation.CostOptimizationRecommendation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.recs[rec.ID]; !ok {
		return errors.NotFound("Recommendation", rec.ID)
	}
	r.recs[rec.ID] = rec.Clone()
	return nil
}

// List returns an organization's recommendations, largest savings first
func (r *RecommendationRepository) List(ctx context.Context, organizationID string, filter recommendation.Filter) ([]*recommendation.CostOptimizationRecommendation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*recommendation.CostOptimizationRecommendation, 0)
	for _, rec := range r.recs {
		if rec.OrganizationID != organizationID || !filter.Matches(rec) {
			continue
		}
		out = append(out, rec.Clone())
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].SavingsAmount != out[j].SavingsAmount {
			return out[i].SavingsAmount > out[j].SavingsAmount
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})

	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}
