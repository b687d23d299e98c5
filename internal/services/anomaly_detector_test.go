package services

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/pratik-mahalle/costengine/internal/domain/anomaly"
	"github.com/pratik-mahalle/costengine/internal/domain/cost"
	"github.com/pratik-mahalle/costengine/internal/pkg/errors"
	"github.com/pratik-mahalle/costengine/internal/pkg/logger"
	"github.com/pratik-mahalle/costengine/internal/testutil"
)

var testNow = time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)

func newTestDetector(repo anomaly.Repository, strict bool) *AnomalyDetector {
	log := logger.New(logger.Config{Level: "error", Format: "json"})
	return NewAnomalyDetector(repo, log, EngineOptions{
		StrictTransitions: strict,
		Now:               testutil.FixedClock(testNow),
		NewID:             testutil.SequentialIDs("anomaly"),
	})
}

func TestAnomalyDetector_DetectsSpikeOnFinalDay(t *testing.T) {
	repo := testutil.NewMockAnomalyRepository()
	detector := newTestDetector(repo, false)
	ctx := context.Background()

	samples := testutil.SpikeSeries("i-web", 31, 400, 20, 900)
	found, err := detector.DetectAnomalies(ctx, "org-1", samples, anomaly.DefaultOptions())
	if err != nil {
		t.Fatalf("DetectAnomalies() error = %v", err)
	}
	if len(found) != 1 {
		t.Fatalf("DetectAnomalies() returned %d anomalies, want 1", len(found))
	}

	a := found[0]
	lastDay := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	if !a.StartDate.Equal(lastDay) || !a.EndDate.Equal(lastDay) {
		t.Errorf("anomaly day = %v..%v, want %v", a.StartDate, a.EndDate, lastDay)
	}
	if a.ExpectedCost != 400 || a.ActualCost != 900 {
		t.Errorf("expected/actual = %v/%v, want 400/900", a.ExpectedCost, a.ActualCost)
	}
	if a.Deviation != math.Abs(a.ActualCost-a.ExpectedCost) {
		t.Errorf("Deviation = %v, want |actual-expected|", a.Deviation)
	}
	if a.DeviationPercentage != 125 {
		t.Errorf("DeviationPercentage = %v, want 125", a.DeviationPercentage)
	}
	if a.DeviationStdDevs != 25 {
		t.Errorf("DeviationStdDevs = %v, want 25", a.DeviationStdDevs)
	}
	if a.Severity != anomaly.SeverityCritical {
		t.Errorf("Severity = %s, want critical", a.Severity)
	}
	if a.AnomalyType != anomaly.TypeSpike {
		t.Errorf("AnomalyType = %s, want spike", a.AnomalyType)
	}
	if a.Status != anomaly.StatusDetected {
		t.Errorf("Status = %s, want detected", a.Status)
	}
	if a.OrganizationID != "org-1" || a.ResourceID != "i-web" || a.Region != "us-east-1" || a.Currency != "USD" {
		t.Errorf("anomaly attributes not inherited from samples: %+v", a)
	}
	if !a.DetectedAt.Equal(testNow) {
		t.Errorf("DetectedAt = %v, want %v", a.DetectedAt, testNow)
	}

	stored, err := detector.GetAnomaly(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetAnomaly() error = %v", err)
	}
	if stored.ID != a.ID {
		t.Errorf("stored anomaly id = %s, want %s", stored.ID, a.ID)
	}
}

func TestAnomalyDetector_RequiresBothTests(t *testing.T) {
	tests := []struct {
		name    string
		samples []cost.CostDataPoint
		opts    anomaly.Options
		want    int
	}{
		{
			name:    "large z but below minimum amount",
			samples: testutil.SpikeSeries("r1", 31, 10, 1, 20),
			opts:    anomaly.Options{SensitivityThreshold: 2, MinimumAnomalyAmount: 100},
			want:    0,
		},
		{
			name:    "same series with lower minimum amount",
			samples: testutil.SpikeSeries("r1", 31, 10, 1, 20),
			opts:    anomaly.Options{SensitivityThreshold: 2, MinimumAnomalyAmount: 5},
			want:    1,
		},
		{
			name:    "zero minimum amount disables the amount gate",
			samples: testutil.SpikeSeries("r1", 31, 10, 1, 50),
			opts:    anomaly.Options{SensitivityThreshold: 2, MinimumAnomalyAmount: 0},
			want:    1,
		},
		{
			name:    "large amount but small z",
			samples: testutil.SpikeSeries("r1", 31, 1000, 300, 1400),
			opts:    anomaly.Options{SensitivityThreshold: 2, MinimumAnomalyAmount: 100},
			want:    0,
		},
		{
			name:    "z exactly at threshold",
			samples: testutil.SpikeSeries("r1", 31, 1000, 100, 1200),
			opts:    anomaly.Options{SensitivityThreshold: 2, MinimumAnomalyAmount: 100},
			want:    1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			detector := newTestDetector(testutil.NewMockAnomalyRepository(), false)
			found, err := detector.DetectAnomalies(context.Background(), "org-1", tt.samples, tt.opts)
			if err != nil {
				t.Fatalf("DetectAnomalies() error = %v", err)
			}
			if len(found) != tt.want {
				t.Errorf("DetectAnomalies() returned %d anomalies, want %d", len(found), tt.want)
			}
		})
	}
}

func TestAnomalyDetector_InsufficientData(t *testing.T) {
	sixSamples := testutil.DailySeries("r1", 100, 100, 100, 100, 100, 5000)

	// seven samples spread over three days
	fewDays := testutil.DailySeries("r2", 100, 100, 100, 100, 100, 100, 5000)
	for i := range fewDays {
		fewDays[i].Timestamp = testutil.Day0.AddDate(0, 0, i%3)
	}

	constant := testutil.DailySeries("r3", 400, 400, 400, 400, 400, 400, 400, 400, 400, 900)

	tests := []struct {
		name    string
		samples []cost.CostDataPoint
	}{
		{"no samples", nil},
		{"fewer than seven samples", sixSamples},
		{"fewer than seven days", fewDays},
		{"zero standard deviation", constant},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			detector := newTestDetector(testutil.NewMockAnomalyRepository(), false)
			found, err := detector.DetectAnomalies(context.Background(), "org-1", tt.samples, anomaly.DefaultOptions())
			if err != nil {
				t.Fatalf("DetectAnomalies() error = %v", err)
			}
			if found == nil || len(found) != 0 {
				t.Errorf("DetectAnomalies() = %v, want empty non-nil slice", found)
			}
		})
	}
}

func TestAnomalyDetector_SumsSamplesPerDay(t *testing.T) {
	// two samples per day of 200 +/- 10 behave like one sample of 400 +/- 20
	var samples []cost.CostDataPoint
	for _, day := range testutil.SpikeSeries("r1", 31, 400, 20, 900) {
		morning, evening := day, day
		morning.Amount = day.Amount / 2
		evening.Amount = day.Amount / 2
		evening.Timestamp = day.Timestamp.Add(6 * time.Hour)
		samples = append(samples, evening, morning)
	}

	detector := newTestDetector(testutil.NewMockAnomalyRepository(), false)
	found, err := detector.DetectAnomalies(context.Background(), "org-1", samples, anomaly.DefaultOptions())
	if err != nil {
		t.Fatalf("DetectAnomalies() error = %v", err)
	}
	if len(found) != 1 || found[0].ActualCost != 900 {
		t.Fatalf("DetectAnomalies() = %+v, want one anomaly with actual 900", found)
	}
}

func TestAnomalyDetector_PartitionsByResource(t *testing.T) {
	samples := append(testutil.SpikeSeries("r-spiky", 31, 400, 20, 900), testutil.SpikeSeries("r-flat", 31, 400, 20, 420)...)

	detector := newTestDetector(testutil.NewMockAnomalyRepository(), false)
	found, err := detector.DetectAnomalies(context.Background(), "org-1", samples, anomaly.DefaultOptions())
	if err != nil {
		t.Fatalf("DetectAnomalies() error = %v", err)
	}
	if len(found) != 1 || found[0].ResourceID != "r-spiky" {
		t.Errorf("DetectAnomalies() = %+v, want one anomaly on r-spiky", found)
	}
}

func TestAnomalyDetector_Failures(t *testing.T) {
	ctx := context.Background()
	good := testutil.SpikeSeries("r1", 31, 400, 20, 900)

	t.Run("empty organization", func(t *testing.T) {
		detector := newTestDetector(testutil.NewMockAnomalyRepository(), false)
		_, err := detector.DetectAnomalies(ctx, "", good, anomaly.DefaultOptions())
		if errors.Code(err) != errors.ErrCodeBadRequest {
			t.Errorf("DetectAnomalies() error = %v, want bad request", err)
		}
	})

	t.Run("malformed amount", func(t *testing.T) {
		bad := testutil.SpikeSeries("r1", 31, 400, 20, 900)
		bad[3].Amount = math.NaN()
		detector := newTestDetector(testutil.NewMockAnomalyRepository(), false)
		_, err := detector.DetectAnomalies(ctx, "org-1", bad, anomaly.DefaultOptions())
		if errors.Code(err) != errors.ErrCodeAnalysisFailure {
			t.Errorf("DetectAnomalies() error = %v, want analysis failure", err)
		}
	})

	t.Run("baseline overflow", func(t *testing.T) {
		huge := testutil.SpikeSeries("r1", 31, 400, 20, 900)
		for i := range huge {
			huge[i].Amount = math.MaxFloat64
		}
		detector := newTestDetector(testutil.NewMockAnomalyRepository(), false)
		_, err := detector.DetectAnomalies(ctx, "org-1", huge, anomaly.DefaultOptions())
		if errors.Code(err) != errors.ErrCodeAnalysisFailure {
			t.Errorf("DetectAnomalies() error = %v, want analysis failure", err)
		}
	})

	t.Run("missing resource id", func(t *testing.T) {
		bad := testutil.SpikeSeries("r1", 31, 400, 20, 900)
		bad[0].ResourceID = ""
		detector := newTestDetector(testutil.NewMockAnomalyRepository(), false)
		_, err := detector.DetectAnomalies(ctx, "org-1", bad, anomaly.DefaultOptions())
		if errors.Code(err) != errors.ErrCodeAnalysisFailure {
			t.Errorf("DetectAnomalies() error = %v, want analysis failure", err)
		}
	})

	t.Run("store failure", func(t *testing.T) {
		repo := testutil.NewMockAnomalyRepository()
		repo.CreateError = errors.DatabaseError("insert failed", nil)
		detector := newTestDetector(repo, false)
		_, err := detector.DetectAnomalies(ctx, "org-1", good, anomaly.DefaultOptions())
		if errors.Code(err) != errors.ErrCodeAnalysisFailure {
			t.Errorf("DetectAnomalies() error = %v, want analysis failure", err)
		}
		repo.CreateError = nil
		left, err := detector.GetAnomalies(ctx, "org-1", anomaly.Filter{})
		if err != nil || len(left) != 0 {
			t.Errorf("GetAnomalies() = %d anomalies, %v; want none after failed run", len(left), err)
		}
	})

	t.Run("negative threshold", func(t *testing.T) {
		detector := newTestDetector(testutil.NewMockAnomalyRepository(), false)
		_, err := detector.DetectAnomalies(ctx, "org-1", good, anomaly.Options{SensitivityThreshold: -1})
		if errors.Code(err) != errors.ErrCodeValidation {
			t.Errorf("DetectAnomalies() error = %v, want validation error", err)
		}
	})
}

func TestAnomalyDetector_GetAnomalies(t *testing.T) {
	ctx := context.Background()
	detector := newTestDetector(testutil.NewMockAnomalyRepository(), false)

	samples := append(testutil.SpikeSeries("r1", 31, 400, 20, 900), testutil.SpikeSeries("r2", 31, 400, 20, 1500)...)
	if _, err := detector.DetectAnomalies(ctx, "org-1", samples, anomaly.DefaultOptions()); err != nil {
		t.Fatalf("DetectAnomalies() error = %v", err)
	}

	tests := []struct {
		name    string
		orgID   string
		filter  anomaly.Filter
		want    int
		wantErr bool
	}{
		{name: "all", orgID: "org-1", want: 2},
		{name: "limit", orgID: "org-1", filter: anomaly.Filter{Limit: 1}, want: 1},
		{name: "by resource", orgID: "org-1", filter: anomaly.Filter{ResourceID: "r2"}, want: 1},
		{name: "by status", orgID: "org-1", filter: anomaly.Filter{Status: anomaly.StatusResolved}, want: 0},
		{name: "other organization", orgID: "org-2", want: 0},
		{name: "unknown severity", orgID: "org-1", filter: anomaly.Filter{Severity: "extreme"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := detector.GetAnomalies(ctx, tt.orgID, tt.filter)
			if (err != nil) != tt.wantErr {
				t.Fatalf("GetAnomalies() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && len(got) != tt.want {
				t.Errorf("GetAnomalies() returned %d, want %d", len(got), tt.want)
			}
		})
	}

	first, _ := detector.GetAnomalies(ctx, "org-1", anomaly.Filter{})
	second, _ := detector.GetAnomalies(ctx, "org-1", anomaly.Filter{})
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Errorf("GetAnomalies() order is not stable: %s vs %s", first[i].ID, second[i].ID)
		}
	}

	summary, err := detector.GetSummary(ctx, "org-1")
	if err != nil {
		t.Fatalf("GetSummary() error = %v", err)
	}
	if summary[anomaly.SeverityCritical] != 2 {
		t.Errorf("GetSummary() critical = %d, want 2", summary[anomaly.SeverityCritical])
	}
}

func TestAnomalyDetector_UpdateAnomalyStatus(t *testing.T) {
	ctx := context.Background()
	detector := newTestDetector(testutil.NewMockAnomalyRepository(), false)

	found, err := detector.DetectAnomalies(ctx, "org-1", testutil.SpikeSeries("r1", 31, 400, 20, 900), anomaly.DefaultOptions())
	if err != nil || len(found) != 1 {
		t.Fatalf("DetectAnomalies() = %v, %v", found, err)
	}
	id := found[0].ID

	investigating, err := detector.UpdateAnomalyStatus(ctx, id, anomaly.StatusInvestigating, anomaly.StatusUpdate{AssignedTo: "alice"})
	if err != nil {
		t.Fatalf("UpdateAnomalyStatus(investigating) error = %v", err)
	}
	if investigating.AssignedTo != "alice" || investigating.ResolvedAt != nil {
		t.Errorf("investigating anomaly = %+v", investigating)
	}

	resolved, err := detector.UpdateAnomalyStatus(ctx, id, anomaly.StatusResolved, anomaly.StatusUpdate{
		ResolvedBy: "bob",
		Resolution: "autoscaling misconfiguration fixed",
		RootCause:  "runaway scale-out",
	})
	if err != nil {
		t.Fatalf("UpdateAnomalyStatus(resolved) error = %v", err)
	}
	if resolved.ResolvedAt == nil || !resolved.ResolvedAt.Equal(testNow) {
		t.Errorf("ResolvedAt = %v, want %v", resolved.ResolvedAt, testNow)
	}
	if resolved.ResolvedBy != "bob" || resolved.Resolution == "" || resolved.RootCause == "" {
		t.Errorf("resolution fields not recorded: %+v", resolved)
	}
	if resolved.AssignedTo != "alice" {
		t.Errorf("AssignedTo = %q, want it kept", resolved.AssignedTo)
	}

	stored, _ := detector.GetAnomaly(ctx, id)
	if stored.Status != anomaly.StatusResolved {
		t.Errorf("stored status = %s, want resolved", stored.Status)
	}

	// permissive mode allows reopening straight to detected
	if _, err := detector.UpdateAnomalyStatus(ctx, id, anomaly.StatusDetected, anomaly.StatusUpdate{}); err != nil {
		t.Errorf("UpdateAnomalyStatus(detected) error = %v, want nil in permissive mode", err)
	}

	if _, err := detector.UpdateAnomalyStatus(ctx, "missing", anomaly.StatusResolved, anomaly.StatusUpdate{}); !errors.IsNotFound(err) {
		t.Errorf("UpdateAnomalyStatus(missing) error = %v, want not found", err)
	}
	if _, err := detector.UpdateAnomalyStatus(ctx, id, "closed", anomaly.StatusUpdate{}); errors.Code(err) != errors.ErrCodeBadRequest {
		t.Errorf("UpdateAnomalyStatus(closed) error = %v, want bad request", err)
	}
}

func TestAnomalyDetector_StrictTransitions(t *testing.T) {
	ctx := context.Background()
	detector := newTestDetector(testutil.NewMockAnomalyRepository(), true)

	found, err := detector.DetectAnomalies(ctx, "org-1", testutil.SpikeSeries("r1", 31, 400, 20, 900), anomaly.DefaultOptions())
	if err != nil || len(found) != 1 {
		t.Fatalf("DetectAnomalies() = %v, %v", found, err)
	}
	id := found[0].ID

	if _, err := detector.UpdateAnomalyStatus(ctx, id, anomaly.StatusFalsePositive, anomaly.StatusUpdate{}); err != nil {
		t.Fatalf("UpdateAnomalyStatus(false_positive) error = %v", err)
	}
	if _, err := detector.UpdateAnomalyStatus(ctx, id, anomaly.StatusResolved, anomaly.StatusUpdate{}); !errors.IsConflict(err) {
		t.Errorf("UpdateAnomalyStatus(resolved) error = %v, want conflict", err)
	}
}
