package providers

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	cetypes "github.com/aws/aws-sdk-go-v2/service/costexplorer/types"

	"github.com/pratik-mahalle/costengine/internal/domain/cost"
)

const awsCostMetric = "UnblendedCost"

// AWSCredentials selects how Cost Explorer is authenticated. Empty keys fall
// back to the default credential chain.
type AWSCredentials struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
}

// CostExplorerAPI is the subset of the Cost Explorer client used here
type CostExplorerAPI interface {
	GetCostAndUsage(ctx context.Context, params *costexplorer.GetCostAndUsageInput, optFns ...func(*costexplorer.Options)) (*costexplorer.GetCostAndUsageOutput, error)
}

// AWSCostFetcher reads daily unblended cost grouped by service and region
type AWSCostFetcher struct {
	api       CostExplorerAPI
	accountID string
}

// NewAWSCostFetcher builds a Cost Explorer client from creds.
// Cost Explorer is served from us-east-1 regardless of where resources run.
func NewAWSCostFetcher(ctx context.Context, creds AWSCredentials) (*AWSCostFetcher, error) {
	region := creds.Region
	if region == "" {
		region = "us-east-1"
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if creds.AccessKeyID != "" && creds.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(creds.AccessKeyID, creds.SecretAccessKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return NewAWSCostFetcherWithClient(costexplorer.NewFromConfig(cfg), ""), nil
}

// NewAWSCostFetcherWithClient wraps an existing Cost Explorer client
func NewAWSCostFetcherWithClient(api CostExplorerAPI, accountID string) *AWSCostFetcher {
	return &AWSCostFetcher{api: api, accountID: accountID}
}

// Provider returns "aws"
func (f *AWSCostFetcher) Provider() string { return cost.ProviderAWS }

// FetchCosts pages through GetCostAndUsage for [start, end)
func (f *AWSCostFetcher) FetchCosts(ctx context.Context, start, end time.Time) ([]cost.CostDataPoint, error) {
	input := &costexplorer.GetCostAndUsageInput{
		TimePeriod: &cetypes.DateInterval{
			Start: aws.String(start.UTC().Format("2006-01-02")),
			End:   aws.String(end.UTC().Format("2006-01-02")),
		},
		Granularity: cetypes.GranularityDaily,
		Metrics:     []string{awsCostMetric},
		GroupBy: []cetypes.GroupDefinition{
			{Type: cetypes.GroupDefinitionTypeDimension, Key: aws.String("SERVICE")},
			{Type: cetypes.GroupDefinitionTypeDimension, Key: aws.String("REGION")},
		},
	}

	var samples []cost.CostDataPoint
	for {
		out, err := f.api.GetCostAndUsage(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("AWS Cost Explorer API error: %w", err)
		}
		samples = append(samples, f.samples(out.ResultsByTime)...)

		if out.NextPageToken == nil || *out.NextPageToken == "" {
			return samples, nil
		}
		input.NextPageToken = out.NextPageToken
	}
}

func (f *AWSCostFetcher) samples(results []cetypes.ResultByTime) []cost.CostDataPoint {
	var out []cost.CostDataPoint
	for _, byTime := range results {
		if byTime.TimePeriod == nil || byTime.TimePeriod.Start == nil {
			continue
		}
		day, err := time.Parse("2006-01-02", *byTime.TimePeriod.Start)
		if err != nil {
			continue
		}

		for _, group := range byTime.Groups {
			var service, region string
			if len(group.Keys) > 0 {
				service = group.Keys[0]
			}
			if len(group.Keys) > 1 {
				region = group.Keys[1]
			}

			metric, ok := group.Metrics[awsCostMetric]
			if !ok || metric.Amount == nil {
				continue
			}
			amount, err := strconv.ParseFloat(*metric.Amount, 64)
			if err != nil || amount == 0 {
				continue
			}

			currency := cost.DefaultCurrency
			if metric.Unit != nil && *metric.Unit != "" {
				currency = *metric.Unit
			}

			out = append(out, cost.CostDataPoint{
				Timestamp:    day,
				Amount:       amount,
				Currency:     currency,
				ResourceID:   serviceResourceID(service, region),
				ResourceType: service,
				ServiceType:  service,
				ProviderType: cost.ProviderAWS,
				Region:       region,
				AccountID:    f.accountID,
			})
		}
	}
	return out
}
