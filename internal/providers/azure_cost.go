package providers

import (
	"context"
	"fmt"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/costmanagement/armcostmanagement"

	"github.com/pratik-mahalle/costengine/internal/domain/cost"
)

// AzureCredentials holds a service principal and the subscription to query
type AzureCredentials struct {
	TenantID       string
	ClientID       string
	ClientSecret   string
	SubscriptionID string
}

// CostQueryAPI is the subset of the Cost Management query client used here
type CostQueryAPI interface {
	Usage(ctx context.Context, scope string, parameters armcostmanagement.QueryDefinition, options *armcostmanagement.QueryClientUsageOptions) (armcostmanagement.QueryClientUsageResponse, error)
}

// AzureCostFetcher reads daily pre-tax cost grouped by service and location
type AzureCostFetcher struct {
	api            CostQueryAPI
	subscriptionID string
}

// NewAzureCostFetcher authenticates with a client secret
func NewAzureCostFetcher(creds AzureCredentials) (*AzureCostFetcher, error) {
	credential, err := azidentity.NewClientSecretCredential(creds.TenantID, creds.ClientID, creds.ClientSecret, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure credential: %w", err)
	}

	client, err := armcostmanagement.NewQueryClient(credential, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cost management client: %w", err)
	}

	return NewAzureCostFetcherWithClient(client, creds.SubscriptionID), nil
}

// NewAzureCostFetcherWithClient wraps an existing query client
func NewAzureCostFetcherWithClient(api CostQueryAPI, subscriptionID string) *AzureCostFetcher {
	return &AzureCostFetcher{api: api, subscriptionID: subscriptionID}
}

// Provider returns "azure"
func (f *AzureCostFetcher) Provider() string { return cost.ProviderAzure }

// FetchCosts runs an ActualCost usage query over [start, end)
func (f *AzureCostFetcher) FetchCosts(ctx context.Context, start, end time.Time) ([]cost.CostDataPoint, error) {
	from, until := start.UTC(), end.UTC().Add(-time.Second)
	def := armcostmanagement.QueryDefinition{
		Type:       to.Ptr(armcostmanagement.ExportTypeActualCost),
		Timeframe:  to.Ptr(armcostmanagement.TimeframeTypeCustom),
		TimePeriod: &armcostmanagement.QueryTimePeriod{From: &from, To: &until},
		Dataset: &armcostmanagement.QueryDataset{
			Granularity: to.Ptr(armcostmanagement.GranularityTypeDaily),
			Aggregation: map[string]*armcostmanagement.QueryAggregation{
				"PreTaxCost": {Name: to.Ptr("PreTaxCost"), Function: to.Ptr(armcostmanagement.FunctionTypeSum)},
			},
			Grouping: []*armcostmanagement.QueryGrouping{
				{Type: to.Ptr(armcostmanagement.QueryColumnTypeDimension), Name: to.Ptr("ServiceName")},
				{Type: to.Ptr(armcostmanagement.QueryColumnTypeDimension), Name: to.Ptr("ResourceLocation")},
			},
		},
	}

	resp, err := f.api.Usage(ctx, "subscriptions/"+f.subscriptionID, def, nil)
	if err != nil {
		return nil, fmt.Errorf("Azure Cost Management API error: %w", err)
	}
	return f.samples(resp.QueryResult), nil
}

func (f *AzureCostFetcher) samples(result armcostmanagement.QueryResult) []cost.CostDataPoint {
	if result.Properties == nil {
		return nil
	}

	cols := make(map[string]int)
	for i, col := range result.Properties.Columns {
		if col != nil && col.Name != nil {
			cols[*col.Name] = i
		}
	}

	var out []cost.CostDataPoint
	for _, row := range result.Properties.Rows {
		amount, _ := column(row, cols, "PreTaxCost").(float64)
		if amount == 0 {
			continue
		}

		raw := column(row, cols, "UsageDate")
		if raw == nil {
			raw = column(row, cols, "UsageDateKey")
		}
		day, ok := azureDate(raw)
		if !ok {
			continue
		}

		service, _ := column(row, cols, "ServiceName").(string)
		location, _ := column(row, cols, "ResourceLocation").(string)
		currency, _ := column(row, cols, "Currency").(string)
		if currency == "" {
			currency = cost.DefaultCurrency
		}

		out = append(out, cost.CostDataPoint{
			Timestamp:    day,
			Amount:       amount,
			Currency:     currency,
			ResourceID:   serviceResourceID(service, location),
			ResourceType: service,
			ServiceType:  service,
			ProviderType: cost.ProviderAzure,
			Region:       location,
			AccountID:    f.subscriptionID,
		})
	}
	return out
}

func column(row []any, cols map[string]int, name string) any {
	i, ok := cols[name]
	if !ok || i >= len(row) {
		return nil
	}
	return row[i]
}

// azureDate accepts the YYYYMMDD number the query API returns, or an ISO date
func azureDate(v any) (time.Time, bool) {
	switch d := v.(type) {
	case float64:
		n := int(d)
		t := time.Date(n/10000, time.Month((n%10000)/100), n%100, 0, 0, 0, 0, time.UTC)
		return t, n > 0
	case string:
		t, err := time.Parse("2006-01-02", d)
		if err != nil {
			t, err = time.Parse(time.RFC3339, d)
		}
		return t.UTC().Truncate(24 * time.Hour), err == nil
	}
	return time.Time{}, false
}
