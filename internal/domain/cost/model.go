package cost

import "time"

// CostDataPoint is one billed-cost observation produced by the ingestion pipeline
type CostDataPoint struct {
	Timestamp    time.Time         `json:"timestamp" yaml:"timestamp" validate:"required"`
	Amount       float64           `json:"amount" yaml:"amount" validate:"finite"`
	Currency     string            `json:"currency,omitempty" yaml:"currency,omitempty"`
	ResourceID   string            `json:"resource_id" yaml:"resource_id" validate:"required"`
	ResourceType string            `json:"resource_type,omitempty" yaml:"resource_type,omitempty"`
	ServiceType  string            `json:"service_type,omitempty" yaml:"service_type,omitempty"`
	ProviderType string            `json:"provider_type,omitempty" yaml:"provider_type,omitempty" validate:"omitempty,oneof=aws gcp azure"`
	Region       string            `json:"region,omitempty" yaml:"region,omitempty"`
	AccountID    string            `json:"account_id,omitempty" yaml:"account_id,omitempty"`
	Tags         map[string]string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// MetricStats summarizes one utilization metric over a window, in percent
type MetricStats struct {
	Average float64 `json:"average" yaml:"average"`
	Peak    float64 `json:"peak" yaml:"peak"`
	P95     float64 `json:"p95" yaml:"p95"`
}

// NetworkStats holds average inbound and outbound throughput
type NetworkStats struct {
	InboundAverage  float64 `json:"inbound_average" yaml:"inbound_average"`
	OutboundAverage float64 `json:"outbound_average" yaml:"outbound_average"`
}

// ResourceUtilization summarizes a resource's usage over a time window
type ResourceUtilization struct {
	ResourceID   string        `json:"resource_id" yaml:"resource_id" validate:"required"`
	ResourceType string        `json:"resource_type,omitempty" yaml:"resource_type,omitempty"`
	CPU          *MetricStats  `json:"cpu,omitempty" yaml:"cpu,omitempty"`
	Memory       *MetricStats  `json:"memory,omitempty" yaml:"memory,omitempty"`
	Disk         *MetricStats  `json:"disk,omitempty" yaml:"disk,omitempty"`
	Network      *NetworkStats `json:"network,omitempty" yaml:"network,omitempty"`
	PeriodStart  time.Time     `json:"period_start" yaml:"period_start"`
	PeriodEnd    time.Time     `json:"period_end" yaml:"period_end"`
	SampleCount  int           `json:"sample_count" yaml:"sample_count" validate:"gte=0"`
}

// CPUAverage returns the average CPU utilization, treating a missing metric as 0
func (u *ResourceUtilization) CPUAverage() float64 {
	if u.CPU == nil {
		return 0
	}
	return u.CPU.Average
}

// MemoryAverage returns the average memory utilization, treating a missing metric as 0
func (u *ResourceUtilization) MemoryAverage() float64 {
	if u.Memory == nil {
		return 0
	}
	return u.Memory.Average
}

// NetworkIn returns the average inbound network throughput, 0 when unknown
func (u *ResourceUtilization) NetworkIn() float64 {
	if u.Network == nil {
		return 0
	}
	return u.Network.InboundAverage
}

// NetworkOut returns the average outbound network throughput, 0 when unknown
func (u *ResourceUtilization) NetworkOut() float64 {
	if u.Network == nil {
		return 0
	}
	return u.Network.OutboundAverage
}

// Provider constants
const (
	ProviderAWS   = "aws"
	ProviderGCP   = "gcp"
	ProviderAzure = "azure"
)

// DefaultCurrency is assumed when a sample carries none
const DefaultCurrency = "USD"

// GroupByResource partitions samples by resource identifier, preserving input order
func GroupByResource(samples []CostDataPoint) map[string][]CostDataPoint {
	out := make(map[string][]CostDataPoint)
	for _, s := range samples {
		out[s.ResourceID] = append(out[s.ResourceID], s)
	}
	return out
}

// TotalByResource sums sample amounts per resource identifier
func TotalByResource(samples []CostDataPoint) map[string]float64 {
	out := make(map[string]float64)
	for _, s := range samples {
		out[s.ResourceID] += s.Amount
	}
	return out
}
