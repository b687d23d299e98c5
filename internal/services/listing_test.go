package services

import (
	"context"
	"reflect"
	"testing"

	"github.com/pratik-mahalle/costengine/internal/domain/anomaly"
	"github.com/pratik-mahalle/costengine/internal/domain/cost"
	"github.com/pratik-mahalle/costengine/internal/domain/recommendation"
	"github.com/pratik-mahalle/costengine/internal/testutil"
)

func TestGetAnomalies_RepeatableOrder(t *testing.T) {
	ctx := context.Background()
	detector := newTestDetector(testutil.NewMockAnomalyRepository(), false)

	var samples []cost.CostDataPoint
	for _, id := range []string{"r-c", "r-a", "r-b", "r-d"} {
		samples = append(samples, testutil.SpikeSeries(id, 31, 400, 20, 900)...)
	}
	found, err := detector.DetectAnomalies(ctx, "org-1", samples, anomaly.DefaultOptions())
	if err != nil || len(found) != 4 {
		t.Fatalf("DetectAnomalies() = %d anomalies, %v; want 4", len(found), err)
	}

	first, err := detector.GetAnomalies(ctx, "org-1", anomaly.Filter{})
	if err != nil {
		t.Fatalf("GetAnomalies() error = %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := detector.GetAnomalies(ctx, "org-1", anomaly.Filter{})
		if err != nil {
			t.Fatalf("GetAnomalies() error = %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("GetAnomalies() order changed between calls")
		}
	}
}

func TestGetRecommendations_RepeatableOrder(t *testing.T) {
	ctx := context.Background()
	svc := newTestRecommender(testutil.NewMockRecommendationRepository(), testutil.NewMockJobRepository(), false)

	var costs []cost.CostDataPoint
	var util []cost.ResourceUtilization
	for _, id := range []string{"i-3", "i-1", "i-2"} {
		costs = append(costs, testutil.MonthlyCost(id, 500)...)
		util = append(util, testutil.Utilization(id, 2, 3, 10, 10))
	}
	if _, _, err := svc.AnalyzeAndOptimize(ctx, "org-1", costs, util, recommendation.Options{UserID: "user-1"}); err != nil {
		t.Fatalf("AnalyzeAndOptimize() error = %v", err)
	}

	first, err := svc.GetRecommendations(ctx, "org-1", recommendation.Filter{})
	if err != nil || len(first) != 9 {
		t.Fatalf("GetRecommendations() = %d, %v; want 9", len(first), err)
	}
	for i := 0; i < 5; i++ {
		again, err := svc.GetRecommendations(ctx, "org-1", recommendation.Filter{})
		if err != nil {
			t.Fatalf("GetRecommendations() error = %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("GetRecommendations() order changed between calls")
		}
	}
}
