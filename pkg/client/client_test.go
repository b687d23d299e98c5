package client_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pratik-mahalle/costengine/internal/api/handlers"
	"github.com/pratik-mahalle/costengine/internal/api/router"
	"github.com/pratik-mahalle/costengine/internal/config"
	"github.com/pratik-mahalle/costengine/internal/pkg/logger"
	"github.com/pratik-mahalle/costengine/internal/pkg/validator"
	"github.com/pratik-mahalle/costengine/internal/services"
	"github.com/pratik-mahalle/costengine/internal/testutil"
	"github.com/pratik-mahalle/costengine/pkg/client"
)

var day0 = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) *client.Client {
	t.Helper()

	log := logger.New(logger.Config{Level: "error", Format: "json"})
	val := validator.New()
	opts := services.EngineOptions{NewID: testutil.SequentialIDs("id")}

	detector := services.NewAnomalyDetector(testutil.NewMockAnomalyRepository(), log, opts)
	recs := testutil.NewMockRecommendationRepository()
	recommender := services.NewOptimizationRecommender(recs, testutil.NewMockJobRepository(), log, opts)

	h := &router.Handlers{
		Health:         handlers.NewHealthHandler(nil, "memory", log),
		Anomaly:        handlers.NewAnomalyHandler(detector, log, val),
		Recommendation: handlers.NewRecommendationHandler(recommender, log, val),
		Job:            handlers.NewJobHandler(recommender, log),
		Summary:        handlers.NewSummaryHandler(services.NewSummaryAggregator(recs, log, opts), log),
	}

	srv := httptest.NewServer(router.New(&config.Config{}, log, h, nil))
	t.Cleanup(srv.Close)

	return client.NewClient(client.Config{BaseURL: srv.URL + "/"})
}

func spikeSamples(resourceID string) []client.CostDataPoint {
	samples := make([]client.CostDataPoint, 0, 31)
	for i := 0; i < 30; i++ {
		amount := 420.0
		if i%2 == 1 {
			amount = 380
		}
		samples = append(samples, client.CostDataPoint{Timestamp: day0.AddDate(0, 0, i), Amount: amount, ResourceID: resourceID})
	}
	return append(samples, client.CostDataPoint{Timestamp: day0.AddDate(0, 0, 30), Amount: 900, ResourceID: resourceID})
}

func TestClient_Health(t *testing.T) {
	c := newTestServer(t)

	health, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", health.Status)
	assert.NoError(t, c.Ping(context.Background()))
}

func TestClient_Anomalies(t *testing.T) {
	c := newTestServer(t)
	ctx := context.Background()

	found, err := c.Anomalies().Detect(ctx, "org-1", client.DetectRequest{Samples: spikeSamples("i-web")})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "critical", found[0].Severity)
	assert.Equal(t, "spike", found[0].AnomalyType)

	list, err := c.Anomalies().List(ctx, "org-1", &client.AnomalyListOptions{Severity: "critical", Limit: 5})
	require.NoError(t, err)
	require.Len(t, list, 1)

	resolved, err := c.Anomalies().Resolve(ctx, found[0].ID, "alice", "planned load test")
	require.NoError(t, err)
	assert.Equal(t, "resolved", resolved.Status)
	assert.NotNil(t, resolved.ResolvedAt)

	got, err := c.Anomalies().Get(ctx, found[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "planned load test", got.Resolution)

	summary, err := c.Anomalies().Summary(ctx, "org-1")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Total)
	assert.Equal(t, 1, summary.BySeverity["critical"])

	_, err = c.Anomalies().Get(ctx, "missing")
	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.True(t, apiErr.IsNotFound())
	assert.Equal(t, "NOT_FOUND", apiErr.Code)
}

func TestClient_Recommendations(t *testing.T) {
	c := newTestServer(t)
	ctx := context.Background()

	result, err := c.Recommendations().Analyze(ctx, "org-1", client.AnalyzeRequest{
		Costs: []client.CostDataPoint{
			{Timestamp: day0, Amount: 250, ResourceID: "i-idle"},
			{Timestamp: day0.AddDate(0, 0, 15), Amount: 250, ResourceID: "i-idle"},
		},
		Utilization: []client.ResourceUtilization{{
			ResourceID: "i-idle",
			CPU:        &client.MetricStats{Average: 1},
			Memory:     &client.MetricStats{Average: 3},
			Network:    &client.NetworkStats{InboundAverage: 10, OutboundAverage: 10},
		}},
		IncludeTypes: []string{"idle_resource"},
		UserID:       "alice",
	})
	require.NoError(t, err)
	require.NotNil(t, result.Job)
	assert.Equal(t, "completed", result.Job.Status)
	require.Len(t, result.Recommendations, 1)
	rec := result.Recommendations[0]
	assert.Equal(t, "idle_resource", rec.Type)
	assert.InDelta(t, 500.0, rec.SavingsAmount, 1e-9)

	savings, err := c.Recommendations().TotalSavings(ctx, "org-1")
	require.NoError(t, err)
	assert.InDelta(t, 500.0, savings.TotalSavings, 1e-9)

	implemented, err := c.Recommendations().Implement(ctx, rec.ID, "bob", "terminated")
	require.NoError(t, err)
	assert.Equal(t, "implemented", implemented.Status)
	assert.Equal(t, "bob", implemented.ImplementedBy)

	pending, err := c.Recommendations().List(ctx, "org-1", &client.RecommendationListOptions{Status: "pending"})
	require.NoError(t, err)
	assert.Empty(t, pending)

	jobs, err := c.Jobs().List(ctx, "org-1", 10)
	require.NoError(t, err)
	require.Len(t, jobs, 1)

	job, err := c.Jobs().Get(ctx, jobs[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 1, job.RecommendationsGenerated)

	summary, err := c.Summary(ctx, "org-1")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.RecommendationCount)
	require.Len(t, summary.TopWastefulResources, 1)
	assert.Equal(t, "i-idle", summary.TopWastefulResources[0].ResourceID)
}

func TestClient_AnalysisFailure(t *testing.T) {
	c := newTestServer(t)

	_, err := c.Recommendations().Analyze(context.Background(), "org-1", client.AnalyzeRequest{
		Utilization: []client.ResourceUtilization{{ResourceType: "ec2_instance"}},
		UserID:      "alice",
	})
	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.True(t, apiErr.IsAnalysisFailure())
}

func TestClient_NonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := client.NewClient(client.Config{BaseURL: srv.URL})
	err := c.Ping(context.Background())

	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.True(t, apiErr.IsServerError())
	assert.Equal(t, "upstream down", apiErr.Message)
}
