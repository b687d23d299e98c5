package stats

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeanVarianceStdDev(t *testing.T) {
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}

	assert.InDelta(t, 5.0, Mean(values), 1e-9)
	assert.InDelta(t, 4.0, Variance(values), 1e-9)
	assert.InDelta(t, 2.0, StdDev(values), 1e-9)
	assert.InDelta(t, 40.0, Sum(values), 1e-9)
}

func TestEmptyInputs(t *testing.T) {
	assert.Zero(t, Mean(nil))
	assert.Zero(t, Variance(nil))
	assert.Zero(t, StdDev(nil))
	assert.Nil(t, BucketByDay(nil))
}

func TestConstantSeriesHasZeroStdDev(t *testing.T) {
	assert.Zero(t, StdDev([]float64{400, 400, 400, 400}))
	assert.Zero(t, ZScore(900, 400, 0))
}

func TestZScore(t *testing.T) {
	assert.InDelta(t, 25.0, ZScore(900, 400, 20), 1e-9)
	assert.InDelta(t, 2.0, ZScore(360, 400, 20), 1e-9)
}

func TestBucketByDay_SumsPerUTCDay(t *testing.T) {
	day1 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	// 23:30 at UTC-5 is 04:30 UTC the next day
	est := time.FixedZone("EST", -5*3600)

	samples := []Sample{
		{Timestamp: day1.Add(26 * time.Hour), Value: 5},
		{Timestamp: day1.Add(1 * time.Hour), Value: 10},
		{Timestamp: day1.Add(13 * time.Hour), Value: 15},
		{Timestamp: time.Date(2024, 3, 1, 23, 30, 0, 0, est), Value: 7},
	}

	days := BucketByDay(samples)
	require.Len(t, days, 2)

	assert.True(t, days[0].Day.Equal(day1))
	assert.InDelta(t, 25.0, days[0].Total, 1e-9)
	assert.Equal(t, 2, days[0].Count)

	assert.True(t, days[1].Day.Equal(day1.AddDate(0, 0, 1)))
	assert.InDelta(t, 12.0, days[1].Total, 1e-9)
	assert.Equal(t, []float64{25, 12}, Totals(days))
}

func TestIsFinite(t *testing.T) {
	assert.True(t, IsFinite(1.5))
	assert.False(t, IsFinite(math.NaN()))
	assert.False(t, IsFinite(math.Inf(1)))
}
