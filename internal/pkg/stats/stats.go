// Package stats holds the small set of descriptive statistics used by the
// cost analysis services. Everything here is pure and allocation-light.
package stats

import (
	"math"
	"sort"
	"time"
)

// Sample is one time-stamped observation
type Sample struct {
	Timestamp time.Time
	Value     float64
}

// DailyTotal is the sum of all samples falling on one UTC calendar day
type DailyTotal struct {
	Day   time.Time
	Total float64
	Count int
}

// Mean returns the arithmetic mean, or 0 for an empty slice
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Variance returns the population variance, or 0 for an empty slice
func Variance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := Mean(values)
	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	return sq / float64(len(values))
}

// StdDev returns the population standard deviation
func StdDev(values []float64) float64 {
	return math.Sqrt(Variance(values))
}

// Sum adds up values
func Sum(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum
}

// DayOf truncates t to midnight of its UTC calendar day
func DayOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// BucketByDay sums samples per UTC day and returns the buckets oldest first
func BucketByDay(samples []Sample) []DailyTotal {
	if len(samples) == 0 {
		return nil
	}

	index := make(map[time.Time]int)
	buckets := make([]DailyTotal, 0)
	for _, s := range samples {
		day := DayOf(s.Timestamp)
		i, ok := index[day]
		if !ok {
			i = len(buckets)
			index[day] = i
			buckets = append(buckets, DailyTotal{Day: day})
		}
		buckets[i].Total += s.Value
		buckets[i].Count++
	}

	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Day.Before(buckets[j].Day)
	})
	return buckets
}

// Totals extracts the Total column of daily buckets
func Totals(days []DailyTotal) []float64 {
	out := make([]float64, len(days))
	for i, d := range days {
		out[i] = d.Total
	}
	return out
}

// ZScore returns |value-mean| / stdDev, or 0 when stdDev is 0
func ZScore(value, mean, stdDev float64) float64 {
	if stdDev == 0 {
		return 0
	}
	return math.Abs(value-mean) / stdDev
}

// IsFinite reports whether v is neither NaN nor infinite
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
