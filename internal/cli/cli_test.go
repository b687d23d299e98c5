package cli

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pratik-mahalle/costengine/internal/api/handlers"
	"github.com/pratik-mahalle/costengine/internal/api/router"
	"github.com/pratik-mahalle/costengine/internal/config"
	"github.com/pratik-mahalle/costengine/internal/domain/cost"
	"github.com/pratik-mahalle/costengine/internal/pkg/logger"
	"github.com/pratik-mahalle/costengine/internal/pkg/validator"
	"github.com/pratik-mahalle/costengine/internal/services"
	"github.com/pratik-mahalle/costengine/internal/testutil"
	"github.com/pratik-mahalle/costengine/pkg/client"
)

var day0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// run executes the CLI with an isolated config file and returns stdout
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "config.yaml")}, args...))

	err := cmd.Execute()
	return out.String(), err
}

func writeJSON(t *testing.T, dir, name string, v interface{}) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func spikeCosts(resourceID string) []cost.CostDataPoint {
	samples := make([]cost.CostDataPoint, 0, 31)
	for i := 0; i < 30; i++ {
		amount := 420.0
		if i%2 == 1 {
			amount = 380
		}
		samples = append(samples, cost.CostDataPoint{Timestamp: day0.AddDate(0, 0, i), Amount: amount, ResourceID: resourceID})
	}
	return append(samples, cost.CostDataPoint{Timestamp: day0.AddDate(0, 0, 30), Amount: 900, ResourceID: resourceID})
}

// optimizeFixtures writes a resource costing 500 with low CPU and memory
func optimizeFixtures(t *testing.T) (costsPath, utilizationPath string) {
	t.Helper()
	dir := t.TempDir()

	costs := make([]cost.CostDataPoint, 0, 5)
	for i := 0; i < 5; i++ {
		costs = append(costs, cost.CostDataPoint{Timestamp: day0.AddDate(0, 0, i), Amount: 100, ResourceID: "i-web", ResourceType: "ec2"})
	}
	utilization := []cost.ResourceUtilization{{
		ResourceID:   "i-web",
		ResourceType: "ec2",
		CPU:          &cost.MetricStats{Average: 10, Peak: 30, P95: 25},
		Memory:       &cost.MetricStats{Average: 12, Peak: 20, P95: 18},
		PeriodStart:  day0,
		PeriodEnd:    day0.AddDate(0, 0, 5),
		SampleCount:  120,
	}}

	return writeJSON(t, dir, "costs.json", costs), writeJSON(t, dir, "utilization.json", utilization)
}

func TestAnalyzeAnomalies(t *testing.T) {
	costsPath := writeJSON(t, t.TempDir(), "costs.json", spikeCosts("i-db"))

	out, err := run(t, "analyze", "anomalies", "--costs", costsPath, "-o", "json")
	require.NoError(t, err)

	var anomalies []client.Anomaly
	require.NoError(t, json.Unmarshal([]byte(out), &anomalies))
	require.Len(t, anomalies, 1)
	assert.Equal(t, "i-db", anomalies[0].ResourceID)
	assert.Equal(t, "critical", anomalies[0].Severity)
	assert.Equal(t, "local", anomalies[0].OrganizationID)
}

func TestAnalyzeAnomalies_Table(t *testing.T) {
	costsPath := writeJSON(t, t.TempDir(), "costs.json", spikeCosts("i-db"))

	out, err := run(t, "analyze", "anomalies", "--costs", costsPath)
	require.NoError(t, err)
	assert.Contains(t, out, "SEVERITY")
	assert.Contains(t, out, "[!] CRITICAL")
	assert.Contains(t, out, "2024-01-31")
	assert.Contains(t, out, "1 anomalies")
}

func TestAnalyzeOptimize(t *testing.T) {
	costsPath, utilizationPath := optimizeFixtures(t)

	out, err := run(t, "analyze", "optimize", "--costs", costsPath, "--utilization", utilizationPath)
	require.NoError(t, err)
	assert.Contains(t, out, "rightsizing")
	assert.Contains(t, out, "reserved_instance")
	assert.NotContains(t, out, "idle_resource")
	assert.Contains(t, out, "2 recommendations, $350.00 potential monthly savings")
}

func TestAnalyzeOptimize_TypeFilter(t *testing.T) {
	costsPath, utilizationPath := optimizeFixtures(t)

	out, err := run(t, "analyze", "optimize", "--costs", costsPath, "--utilization", utilizationPath,
		"--types", "rightsizing", "--user", "alice", "-o", "json")
	require.NoError(t, err)

	var result client.AnalyzeResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.NotNil(t, result.Job)
	assert.Equal(t, "completed", result.Job.Status)
	assert.Equal(t, "alice", result.Job.CreatedBy)
	require.Len(t, result.Recommendations, 1)
	assert.Equal(t, "rightsizing", result.Recommendations[0].Type)
	assert.InDelta(t, 150, result.Recommendations[0].SavingsAmount, 1e-9)
}

func TestAnalyzeOptimize_UnknownType(t *testing.T) {
	costsPath, utilizationPath := optimizeFixtures(t)

	_, err := run(t, "analyze", "optimize", "--costs", costsPath, "--utilization", utilizationPath, "--types", "teleport")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown recommendation type")
}

func TestAnalyzeSummary(t *testing.T) {
	costsPath, utilizationPath := optimizeFixtures(t)

	out, err := run(t, "analyze", "summary", "--costs", costsPath, "--utilization", utilizationPath, "--org", "acme", "-o", "json")
	require.NoError(t, err)

	var summary client.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, "acme", summary.OrganizationID)
	assert.Equal(t, 2, summary.RecommendationCount)
	assert.InDelta(t, 1000, summary.TotalCost, 1e-9)
	assert.InDelta(t, 350, summary.PotentialSavings, 1e-9)
	require.Len(t, summary.TopWastefulResources, 1)
	assert.Equal(t, "i-web", summary.TopWastefulResources[0].ResourceID)
}

func TestAnalyze_MissingInput(t *testing.T) {
	_, err := run(t, "analyze", "anomalies", "--costs", filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)

	_, err = run(t, "analyze", "optimize", "--costs", "x.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "utilization")
}

func newTestServer(t *testing.T) string {
	t.Helper()

	log := logger.New(logger.Config{Level: "error", Format: "json"})
	opts := services.EngineOptions{NewID: testutil.SequentialIDs("id")}

	recs := testutil.NewMockRecommendationRepository()
	recommender := services.NewOptimizationRecommender(recs, testutil.NewMockJobRepository(), log, opts)
	h := &router.Handlers{
		Health:         handlers.NewHealthHandler(nil, "memory", log),
		Anomaly:        handlers.NewAnomalyHandler(services.NewAnomalyDetector(testutil.NewMockAnomalyRepository(), log, opts), log, validator.New()),
		Recommendation: handlers.NewRecommendationHandler(recommender, log, validator.New()),
		Job:            handlers.NewJobHandler(recommender, log),
		Summary:        handlers.NewSummaryHandler(services.NewSummaryAggregator(recs, log, opts), log),
	}

	srv := httptest.NewServer(router.New(&config.Config{}, log, h, nil))
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestRemoteRecommendationFlow(t *testing.T) {
	server := newTestServer(t)
	costsPath, utilizationPath := optimizeFixtures(t)

	out, err := run(t, "--server", server, "recommendations", "analyze", "--org", "acme",
		"--costs", costsPath, "--utilization", utilizationPath, "--user", "alice", "-o", "json")
	require.NoError(t, err)

	var result client.AnalyzeResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result.Recommendations, 2)

	out, err = run(t, "--server", server, "recommendations", "savings", "--org", "acme")
	require.NoError(t, err)
	assert.Contains(t, out, "Monthly: $350.00")
	assert.Contains(t, out, "Annual:  $4200.00")

	first := result.Recommendations[0].ID
	out, err = run(t, "--server", server, "recommendations", "implement", first, "--user", "bob")
	require.NoError(t, err)
	assert.Contains(t, out, "is now implemented")

	out, err = run(t, "--server", server, "recommendations", "list", "--org", "acme", "--status", "pending")
	require.NoError(t, err)
	assert.Contains(t, out, "1 recommendations")

	out, err = run(t, "--server", server, "jobs", "list", "--org", "acme")
	require.NoError(t, err)
	assert.Contains(t, out, "[+] completed")

	out, err = run(t, "--server", server, "summary", "--org", "acme")
	require.NoError(t, err)
	assert.Contains(t, out, "Recommendations:   2")
	assert.Contains(t, out, "i-web")
}

func TestRemoteAnomalyFlow(t *testing.T) {
	server := newTestServer(t)
	costsPath := writeJSON(t, t.TempDir(), "costs.json", spikeCosts("i-db"))

	out, err := run(t, "--server", server, "anomalies", "detect", "--org", "acme", "--costs", costsPath, "-o", "json")
	require.NoError(t, err)
	var found []client.Anomaly
	require.NoError(t, json.Unmarshal([]byte(out), &found))
	require.Len(t, found, 1)

	out, err = run(t, "--server", server, "anomalies", "resolve", found[0].ID, "--user", "carol", "--resolution", "batch job")
	require.NoError(t, err)
	assert.Contains(t, out, "resolved")

	out, err = run(t, "--server", server, "anomalies", "summary", "--org", "acme")
	require.NoError(t, err)
	assert.Contains(t, out, "TOTAL")

	_, err = run(t, "--server", server, "anomalies", "get", "missing")
	require.Error(t, err)
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsNotFound())

	_, err = run(t, "--server", server, "anomalies", "list", "--org", "acme", "--since", "yesterday")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "YYYY-MM-DD")
}

func TestStatus(t *testing.T) {
	server := newTestServer(t)

	out, err := run(t, "--server", server, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "[+] ok")
}

func TestOutputHelpers(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "abcd...", truncate("abcdefghij", 7))
	assert.Equal(t, "ab", truncate("abcdef", 2))

	assert.Equal(t, "[!] CRITICAL", formatSeverity("critical"))
	assert.Equal(t, "odd", formatSeverity("odd"))
	assert.Equal(t, "[~] in_progress", formatStatus("in_progress"))
	assert.Equal(t, "[-] dismissed", formatStatus("dismissed"))

	assert.Equal(t, []string{"b", "a", "c"}, sortedKeys(map[string]float64{"a": 10, "b": 20, "c": 10}))

	var buf bytes.Buffer
	table := NewTable(&buf, "NAME", "VALUE")
	table.AddRow("alpha", "1")
	table.Render()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], "----"))
	assert.True(t, strings.HasPrefix(lines[2], "alpha"))
}
