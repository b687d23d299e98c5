package providers

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/pratik-mahalle/costengine/internal/domain/cost"
)

// GCPBillingCredentials locates a BigQuery billing export table
type GCPBillingCredentials struct {
	ProjectID          string
	ServiceAccountJSON string
	// BillingTable is project.dataset.table of the standard billing export
	BillingTable string
}

// gcpBillingRow is one aggregated row of the billing export query
type gcpBillingRow struct {
	ServiceName string            `bigquery:"service_name"`
	Region      string            `bigquery:"region"`
	ProjectID   string            `bigquery:"project_id"`
	CostDate    bigquery.NullDate `bigquery:"cost_date"`
	DailyCost   float64           `bigquery:"daily_cost"`
	Currency    string            `bigquery:"currency"`
}

// GCPCostFetcher queries daily cost by service, region and project
type GCPCostFetcher struct {
	creds GCPBillingCredentials
}

// NewGCPCostFetcher creates a fetcher; the BigQuery client is opened per fetch
func NewGCPCostFetcher(creds GCPBillingCredentials) *GCPCostFetcher {
	return &GCPCostFetcher{creds: creds}
}

// Provider returns "gcp"
func (f *GCPCostFetcher) Provider() string { return cost.ProviderGCP }

// FetchCosts reads the billing export for [start, end)
func (f *GCPCostFetcher) FetchCosts(ctx context.Context, start, end time.Time) ([]cost.CostDataPoint, error) {
	if f.creds.BillingTable == "" {
		return nil, fmt.Errorf("no billing table configured")
	}

	var opts []option.ClientOption
	if f.creds.ServiceAccountJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(f.creds.ServiceAccountJSON)))
	}

	client, err := bigquery.NewClient(ctx, f.creds.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create BigQuery client: %w", err)
	}
	defer client.Close()

	query := client.Query(fmt.Sprintf(`
		SELECT
			service.description AS service_name,
			IFNULL(location.region, 'global') AS region,
			IFNULL(project.id, '') AS project_id,
			DATE(usage_start_time) AS cost_date,
			SUM(cost) AS daily_cost,
			currency
		FROM `+"`%s`"+`
		WHERE DATE(usage_start_time) >= @start_date AND DATE(usage_start_time) < @end_date
		GROUP BY service_name, region, project_id, cost_date, currency
		ORDER BY cost_date ASC
	`, f.creds.BillingTable))
	query.Parameters = []bigquery.QueryParameter{
		{Name: "start_date", Value: start.UTC().Format("2006-01-02")},
		{Name: "end_date", Value: end.UTC().Format("2006-01-02")},
	}

	it, err := query.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("BigQuery query error: %w", err)
	}

	var samples []cost.CostDataPoint
	for {
		var row gcpBillingRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("BigQuery row read error: %w", err)
		}
		if sample, ok := gcpSample(row); ok {
			samples = append(samples, sample)
		}
	}

	return samples, nil
}

func gcpSample(row gcpBillingRow) (cost.CostDataPoint, bool) {
	if row.DailyCost == 0 || !row.CostDate.Valid {
		return cost.CostDataPoint{}, false
	}

	currency := row.Currency
	if currency == "" {
		currency = cost.DefaultCurrency
	}

	d := row.CostDate.Date
	return cost.CostDataPoint{
		Timestamp:    time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC),
		Amount:       row.DailyCost,
		Currency:     currency,
		ResourceID:   serviceResourceID(row.ServiceName, row.Region),
		ResourceType: row.ServiceName,
		ServiceType:  row.ServiceName,
		ProviderType: cost.ProviderGCP,
		Region:       row.Region,
		AccountID:    row.ProjectID,
	}, true
}
