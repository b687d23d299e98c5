package worker

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/pratik-mahalle/costengine/internal/domain/anomaly"
	"github.com/pratik-mahalle/costengine/internal/domain/cost"
	"github.com/pratik-mahalle/costengine/internal/domain/recommendation"
	"github.com/pratik-mahalle/costengine/internal/ingest"
	"github.com/pratik-mahalle/costengine/internal/pkg/logger"
	"github.com/pratik-mahalle/costengine/internal/services"
	"github.com/pratik-mahalle/costengine/internal/testutil"
)

type fakeSource struct {
	orgs     []string
	datasets map[string]*ingest.Dataset
	listErr  error
}

func (f *fakeSource) Organizations(ctx context.Context) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.orgs, nil
}

func (f *fakeSource) Load(ctx context.Context, organizationID string) (*ingest.Dataset, error) {
	ds, ok := f.datasets[organizationID]
	if !ok {
		return nil, fmt.Errorf("no data for %s", organizationID)
	}
	return ds, nil
}

func newTestScheduler(src ingest.Source, schedule string) (*AnalysisScheduler, *testutil.MockAnomalyRepository, *testutil.MockRecommendationRepository) {
	log := logger.New(logger.Config{Level: "error", Format: "json"})
	anomalies := testutil.NewMockAnomalyRepository()
	recs := testutil.NewMockRecommendationRepository()
	jobs := testutil.NewMockJobRepository()

	opts := services.EngineOptions{NewID: testutil.SequentialIDs("id")}
	detector := services.NewAnomalyDetector(anomalies, log, opts)
	recommender := services.NewOptimizationRecommender(recs, jobs, log, opts)

	s := NewAnalysisScheduler(src, detector, recommender,
		anomaly.DefaultOptions(), recommendation.Options{UserID: "scheduler"}, schedule, log)
	return s, anomalies, recs
}

func TestAnalysisScheduler_RunOnce(t *testing.T) {
	src := &fakeSource{
		orgs: []string{"org-a", "org-broken", "org-costs-only"},
		datasets: map[string]*ingest.Dataset{
			"org-a": {
				OrganizationID: "org-a",
				Costs:          testutil.SpikeSeries("i-web", 31, 400, 20, 900),
				Utilization:    []cost.ResourceUtilization{testutil.Utilization("i-web", 10, 10, 5000, 5000)},
			},
			"org-costs-only": {
				OrganizationID: "org-costs-only",
				Costs:          testutil.SpikeSeries("i-db", 31, 400, 20, 900),
			},
		},
	}

	s, anomalies, recs := newTestScheduler(src, "@daily")
	report := s.RunOnce(context.Background())

	if report.Organizations != 3 {
		t.Errorf("Organizations = %d, want 3", report.Organizations)
	}
	if report.Failed != 1 {
		t.Errorf("Failed = %d, want 1", report.Failed)
	}
	if report.Anomalies != 2 {
		t.Errorf("Anomalies = %d, want 2", report.Anomalies)
	}
	if report.Recommendations != 2 {
		t.Errorf("Recommendations = %d, want 2 (rightsizing and reserved instance)", report.Recommendations)
	}

	stored, err := anomalies.List(context.Background(), "org-costs-only", anomaly.Filter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(stored) != 1 {
		t.Errorf("org-costs-only stored %d anomalies, want 1", len(stored))
	}

	storedRecs, err := recs.List(context.Background(), "org-costs-only", recommendation.Filter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(storedRecs) != 0 {
		t.Errorf("org-costs-only stored %d recommendations, want 0", len(storedRecs))
	}
}

func TestAnalysisScheduler_RunOnceListFailure(t *testing.T) {
	s, _, _ := newTestScheduler(&fakeSource{listErr: fmt.Errorf("disk gone")}, "@daily")

	report := s.RunOnce(context.Background())
	if report.Organizations != 0 || report.Failed != 0 {
		t.Errorf("report = %+v, want an empty pass", report)
	}
}

func TestAnalysisScheduler_RunOnceStopsOnCancel(t *testing.T) {
	src := &fakeSource{orgs: []string{"org-a", "org-b"}}
	s, _, _ := newTestScheduler(src, "@daily")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report := s.RunOnce(ctx)
	if report.Organizations != 0 {
		t.Errorf("Organizations = %d, want 0 after cancellation", report.Organizations)
	}
}

func TestAnalysisScheduler_StartStop(t *testing.T) {
	s, _, _ := newTestScheduler(&fakeSource{}, "@hourly")

	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !s.IsRunning() {
		t.Error("IsRunning() = false after Start")
	}
	if err := s.Start(); err == nil {
		t.Error("second Start() should fail")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if s.IsRunning() {
		t.Error("IsRunning() = true after Stop")
	}
	if err := s.Stop(ctx); err != nil {
		t.Errorf("Stop() on a stopped scheduler error = %v", err)
	}
}

func TestAnalysisScheduler_InvalidSchedule(t *testing.T) {
	s, _, _ := newTestScheduler(&fakeSource{}, "every tuesday")

	if err := s.Start(); err == nil {
		t.Fatal("Start() with an invalid schedule should fail")
	}
	if s.IsRunning() {
		t.Error("IsRunning() = true after a failed Start")
	}
}
