package testutil

import (
	"context"
	"sync"

	"github.com/pratik-mahalle/costengine/internal/domain/anomaly"
	"github.com/pratik-mahalle/costengine/internal/domain/job"
	"github.com/pratik-mahalle/costengine/internal/domain/recommendation"
	"github.com/pratik-mahalle/costengine/internal/repository/memory"
)

// MockAnomalyRepository is an in-memory anomaly.Repository with injectable failures
type MockAnomalyRepository struct {
	*memory.AnomalyRepository
	CreateError error
	GetError    error
	UpdateError error
	ListError   error

	mu          sync.Mutex
	CreateCalls int
}

func NewMockAnomalyRepository() *MockAnomalyRepository {
	return &MockAnomalyRepository{AnomalyRepository: memory.NewAnomalyRepository()}
}

func (m *MockAnomalyRepository) Create(ctx context.Context, a *anomaly.CostAnomaly) error {
	m.mu.Lock()
	m.CreateCalls++
	m.mu.Unlock()
	if m.CreateError != nil {
		return m.CreateError
	}
	return m.AnomalyRepository.Create(ctx, a)
}

func (m *MockAnomalyRepository) CreateMany(ctx context.Context, anomalies []*anomaly.CostAnomaly) error {
	m.mu.Lock()
	m.CreateCalls++
	m.mu.Unlock()
	if m.CreateError != nil {
		return m.CreateError
	}
	return m.AnomalyRepository.CreateMany(ctx, anomalies)
}

func (m *MockAnomalyRepository) GetByID(ctx context.Context, id string) (*anomaly.CostAnomaly, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	return m.AnomalyRepository.GetByID(ctx, id)
}

func (m *MockAnomalyRepository) Update(ctx context.Context, a *anomaly.CostAnomaly) error {
	if m.UpdateError != nil {
		return m.UpdateError
	}
	return m.AnomalyRepository.Update(ctx, a)
}

func (m *MockAnomalyRepository) List(ctx context.Context, organizationID string, filter anomaly.Filter) ([]*anomaly.CostAnomaly, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	return m.AnomalyRepository.List(ctx, organizationID, filter)
}

// MockRecommendationRepository is an in-memory recommendation.Repository with injectable failures
type MockRecommendationRepository struct {
	*memory.RecommendationRepository
	CreateError error
	GetError    error
	UpdateError error
	ListError   error
	// FailAfter makes writes fail once they would store more than this many recommendations; 0 disables it
	FailAfter int

	mu      sync.Mutex
	created int
}

func NewMockRecommendationRepository() *MockRecommendationRepository {
	return &MockRecommendationRepository{RecommendationRepository: memory.NewRecommendationRepository()}
}

func (m *MockRecommendationRepository) Create(ctx context.Context, rec *recommendation.CostOptimizationRecommendation) error {
	if m.CreateError != nil {
		m.mu.Lock()
		reached := m.FailAfter == 0 || m.created >= m.FailAfter
		m.mu.Unlock()
		if reached {
			return m.CreateError
		}
	}
	if err := m.RecommendationRepository.Create(ctx, rec); err != nil {
		return err
	}
	m.mu.Lock()
	m.created++
	m.mu.Unlock()
	return nil
}

// CreateMany stores nothing when the batch would cross FailAfter
func (m *MockRecommendationRepository) CreateMany(ctx context.Context, recs []*recommendation.CostOptimizationRecommendation) error {
	if m.CreateError != nil {
		m.mu.Lock()
		reached := m.FailAfter == 0 || m.created+len(recs) > m.FailAfter
		m.mu.Unlock()
		if reached {
			return m.CreateError
		}
	}
	if err := m.RecommendationRepository.CreateMany(ctx, recs); err != nil {
		return err
	}
	m.mu.Lock()
	m.created += len(recs)
	m.mu.Unlock()
	return nil
}

func (m *MockRecommendationRepository) GetByID(ctx context.Context, id string) (*recommendation.CostOptimizationRecommendation, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	return m.RecommendationRepository.GetByID(ctx, id)
}

func (m *MockRecommendationRepository) Update(ctx context.Context, rec *recommendation.CostOptimizationRecommendation) error {
	if m.UpdateError != nil {
		return m.UpdateError
	}
	return m.RecommendationRepository.Update(ctx, rec)
}

func (m *MockRecommendationRepository) List(ctx context.Context, organizationID string, filter recommendation.Filter) ([]*recommendation.CostOptimizationRecommendation, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	return m.RecommendationRepository.List(ctx, organizationID, filter)
}

// MockJobRepository is an in-memory job.Repository with injectable failures
type MockJobRepository struct {
	*memory.JobRepository
	CreateError error
	UpdateError error
}

func NewMockJobRepository() *MockJobRepository {
	return &MockJobRepository{JobRepository: memory.NewJobRepository()}
}

func (m *MockJobRepository) Create(ctx context.Context, j *job.CostOptimizationJob) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	return m.JobRepository.Create(ctx, j)
}

func (m *MockJobRepository) Update(ctx context.Context, j *job.CostOptimizationJob) error {
	if m.UpdateError != nil {
		return m.UpdateError
	}
	return m.JobRepository.Update(ctx, j)
}
