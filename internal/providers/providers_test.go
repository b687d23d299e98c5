package providers

import (
	"context"
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/costmanagement/armcostmanagement"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	cetypes "github.com/aws/aws-sdk-go-v2/service/costexplorer/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pratik-mahalle/costengine/internal/domain/cost"
	"github.com/pratik-mahalle/costengine/internal/ingest"
	"github.com/pratik-mahalle/costengine/internal/pkg/logger"
)

var day0 = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

type fakeCostExplorer struct {
	pages  []*costexplorer.GetCostAndUsageOutput
	inputs []costexplorer.GetCostAndUsageInput
	err    error
}

func (f *fakeCostExplorer) GetCostAndUsage(ctx context.Context, params *costexplorer.GetCostAndUsageInput, optFns ...func(*costexplorer.Options)) (*costexplorer.GetCostAndUsageOutput, error) {
	f.inputs = append(f.inputs, *params)
	if f.err != nil {
		return nil, f.err
	}
	page := f.pages[0]
	f.pages = f.pages[1:]
	return page, nil
}

func awsGroup(service, region, amount string) cetypes.Group {
	return cetypes.Group{
		Keys: []string{service, region},
		Metrics: map[string]cetypes.MetricValue{
			awsCostMetric: {Amount: aws.String(amount), Unit: aws.String("USD")},
		},
	}
}

func TestAWSCostFetcher_Pages(t *testing.T) {
	api := &fakeCostExplorer{pages: []*costexplorer.GetCostAndUsageOutput{
		{
			ResultsByTime: []cetypes.ResultByTime{{
				TimePeriod: &cetypes.DateInterval{Start: aws.String("2024-03-01"), End: aws.String("2024-03-02")},
				Groups: []cetypes.Group{
					awsGroup("Amazon EC2", "us-east-1", "120.50"),
					awsGroup("AWS Lambda", "us-east-1", "0"),
				},
			}},
			NextPageToken: aws.String("page-2"),
		},
		{
			ResultsByTime: []cetypes.ResultByTime{{
				TimePeriod: &cetypes.DateInterval{Start: aws.String("2024-03-02"), End: aws.String("2024-03-03")},
				Groups:     []cetypes.Group{awsGroup("Amazon S3", "eu-west-1", "7.25")},
			}},
		},
	}}

	f := NewAWSCostFetcherWithClient(api, "123456789012")
	samples, err := f.FetchCosts(context.Background(), day0, day0.AddDate(0, 0, 2))
	require.NoError(t, err)

	require.Len(t, samples, 2)
	assert.Equal(t, "Amazon EC2/us-east-1", samples[0].ResourceID)
	assert.Equal(t, 120.5, samples[0].Amount)
	assert.Equal(t, day0, samples[0].Timestamp)
	assert.Equal(t, cost.ProviderAWS, samples[0].ProviderType)
	assert.Equal(t, "123456789012", samples[0].AccountID)
	assert.Equal(t, "Amazon S3/eu-west-1", samples[1].ResourceID)

	require.Len(t, api.inputs, 2)
	assert.Equal(t, "2024-03-01", *api.inputs[0].TimePeriod.Start)
	assert.Equal(t, "2024-03-03", *api.inputs[0].TimePeriod.End)
	assert.Nil(t, api.inputs[0].NextPageToken)
	assert.Equal(t, "page-2", *api.inputs[1].NextPageToken)
}

func TestAWSCostFetcher_Error(t *testing.T) {
	f := NewAWSCostFetcherWithClient(&fakeCostExplorer{err: errors.New("throttled")}, "")
	_, err := f.FetchCosts(context.Background(), day0, day0.AddDate(0, 0, 1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "throttled")
}

type fakeCostQuery struct {
	result armcostmanagement.QueryResult
	scope  string
}

func (f *fakeCostQuery) Usage(ctx context.Context, scope string, parameters armcostmanagement.QueryDefinition, options *armcostmanagement.QueryClientUsageOptions) (armcostmanagement.QueryClientUsageResponse, error) {
	f.scope = scope
	return armcostmanagement.QueryClientUsageResponse{QueryResult: f.result}, nil
}

func TestAzureCostFetcher(t *testing.T) {
	api := &fakeCostQuery{result: armcostmanagement.QueryResult{
		Properties: &armcostmanagement.QueryProperties{
			Columns: []*armcostmanagement.QueryColumn{
				{Name: to.Ptr("PreTaxCost")},
				{Name: to.Ptr("UsageDate")},
				{Name: to.Ptr("ServiceName")},
				{Name: to.Ptr("ResourceLocation")},
				{Name: to.Ptr("Currency")},
			},
			Rows: [][]any{
				{42.0, 20240301.0, "Virtual Machines", "westeurope", "EUR"},
				{0.0, 20240301.0, "Bandwidth", "westeurope", "EUR"},
				{3.5, "2024-03-02", "Storage", "", ""},
				{9.0, nil, "Storage", "westeurope", "EUR"},
			},
		},
	}}

	f := NewAzureCostFetcherWithClient(api, "sub-1")
	samples, err := f.FetchCosts(context.Background(), day0, day0.AddDate(0, 0, 2))
	require.NoError(t, err)
	assert.Equal(t, "subscriptions/sub-1", api.scope)

	require.Len(t, samples, 2)
	assert.Equal(t, "Virtual Machines/westeurope", samples[0].ResourceID)
	assert.Equal(t, "EUR", samples[0].Currency)
	assert.Equal(t, day0, samples[0].Timestamp)
	assert.Equal(t, "Storage/global", samples[1].ResourceID)
	assert.Equal(t, cost.DefaultCurrency, samples[1].Currency)
	assert.Equal(t, day0.AddDate(0, 0, 1), samples[1].Timestamp)
}

func TestGCPSample(t *testing.T) {
	row := gcpBillingRow{
		ServiceName: "Compute Engine",
		Region:      "us-central1",
		ProjectID:   "prod-123",
		CostDate:    bigquery.NullDate{Date: civil.Date{Year: 2024, Month: time.March, Day: 1}, Valid: true},
		DailyCost:   88.1,
	}

	s, ok := gcpSample(row)
	require.True(t, ok)
	assert.Equal(t, "Compute Engine/us-central1", s.ResourceID)
	assert.Equal(t, day0, s.Timestamp)
	assert.Equal(t, cost.DefaultCurrency, s.Currency)
	assert.Equal(t, "prod-123", s.AccountID)

	row.DailyCost = 0
	_, ok = gcpSample(row)
	assert.False(t, ok)

	row.DailyCost = 1
	row.CostDate.Valid = false
	_, ok = gcpSample(row)
	assert.False(t, ok)
}

func TestGCPCostFetcher_RequiresTable(t *testing.T) {
	_, err := NewGCPCostFetcher(GCPBillingCredentials{ProjectID: "p"}).FetchCosts(context.Background(), day0, day0)
	assert.Error(t, err)
}

type staticFetcher struct {
	name    string
	samples []cost.CostDataPoint
	err     error
	start   time.Time
	end     time.Time
}

func (f *staticFetcher) Provider() string { return f.name }

func (f *staticFetcher) FetchCosts(ctx context.Context, start, end time.Time) ([]cost.CostDataPoint, error) {
	f.start, f.end = start, end
	return f.samples, f.err
}

type utilizationOnly struct{}

func (utilizationOnly) Organizations(ctx context.Context) ([]string, error) { return nil, nil }

func (utilizationOnly) Load(ctx context.Context, organizationID string) (*ingest.Dataset, error) {
	return &ingest.Dataset{
		OrganizationID: organizationID,
		Utilization:    []cost.ResourceUtilization{{ResourceID: "Amazon EC2/us-east-1"}},
	}, nil
}

func TestSource_Load(t *testing.T) {
	log := logger.New(logger.Config{Level: "error", Format: "json"})
	a := &staticFetcher{name: "aws", samples: []cost.CostDataPoint{{Timestamp: day0.AddDate(0, 0, 2), Amount: 1, ResourceID: "a"}}}
	b := &staticFetcher{name: "azure", samples: []cost.CostDataPoint{{Timestamp: day0, Amount: 2, ResourceID: "b"}}}

	src := NewSource("acme", 7*24*time.Hour, utilizationOnly{}, log, a, b)
	src.now = func() time.Time { return day0.AddDate(0, 0, 10).Add(15 * time.Hour) }

	orgs, err := src.Organizations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"acme"}, orgs)

	ds, err := src.Load(context.Background(), "acme")
	require.NoError(t, err)
	require.Len(t, ds.Costs, 2)
	assert.Equal(t, "b", ds.Costs[0].ResourceID)
	assert.Equal(t, "a", ds.Costs[1].ResourceID)
	require.Len(t, ds.Utilization, 1)

	assert.Equal(t, day0.AddDate(0, 0, 10), a.end)
	assert.Equal(t, day0.AddDate(0, 0, 3), a.start)

	_, err = src.Load(context.Background(), "other")
	assert.Error(t, err)
}

func TestSource_FetchError(t *testing.T) {
	src := NewSource("acme", time.Hour, nil, logger.Nop(), &staticFetcher{name: "gcp", err: errors.New("denied")})

	_, err := src.Load(context.Background(), "acme")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gcp cost fetch failed")
}
