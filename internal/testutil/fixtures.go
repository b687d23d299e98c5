package testutil

import (
	"fmt"
	"time"

	"github.com/pratik-mahalle/costengine/internal/domain/cost"
)

// Day0 anchors generated series; every fixture is relative to it
var Day0 = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// DailySeries returns one sample per day for resourceID, starting at Day0
func DailySeries(resourceID string, amounts ...float64) []cost.CostDataPoint {
	out := make([]cost.CostDataPoint, len(amounts))
	for i, amount := range amounts {
		out[i] = cost.CostDataPoint{
			Timestamp:    Day0.AddDate(0, 0, i),
			Amount:       amount,
			Currency:     "USD",
			ResourceID:   resourceID,
			ResourceType: "ec2_instance",
			ServiceType:  "compute",
			ProviderType: cost.ProviderAWS,
			Region:       "us-east-1",
			AccountID:    "123456789012",
		}
	}
	return out
}

// SteadySeries returns days samples alternating around level by +/- jitter
func SteadySeries(days int, level, jitter float64) []float64 {
	out := make([]float64, days)
	for i := range out {
		if i%2 == 0 {
			out[i] = level + jitter
		} else {
			out[i] = level - jitter
		}
	}
	return out
}

// SpikeSeries returns a steady baseline of days-1 samples followed by one spike
func SpikeSeries(resourceID string, days int, level, jitter, spike float64) []cost.CostDataPoint {
	amounts := SteadySeries(days-1, level, jitter)
	return DailySeries(resourceID, append(amounts, spike)...)
}

// Utilization builds a utilization record with the given averages
func Utilization(resourceID string, cpu, memory, netIn, netOut float64) cost.ResourceUtilization {
	return cost.ResourceUtilization{
		ResourceID:   resourceID,
		ResourceType: "ec2_instance",
		CPU:          &cost.MetricStats{Average: cpu, Peak: cpu * 2, P95: cpu * 1.5},
		Memory:       &cost.MetricStats{Average: memory, Peak: memory * 2, P95: memory * 1.5},
		Network:      &cost.NetworkStats{InboundAverage: netIn, OutboundAverage: netOut},
		PeriodStart:  Day0,
		PeriodEnd:    Day0.AddDate(0, 0, 30),
		SampleCount:  720,
	}
}

// MonthlyCost returns two half-month samples for resourceID summing to total
func MonthlyCost(resourceID string, total float64) []cost.CostDataPoint {
	points := DailySeries(resourceID, total/2, total/2)
	points[1].Timestamp = Day0.AddDate(0, 0, 15)
	return points
}

// SequentialIDs returns an id generator yielding prefix-1, prefix-2, ...
func SequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

// FixedClock returns a clock frozen at t
func FixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
