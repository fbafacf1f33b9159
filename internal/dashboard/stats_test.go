package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bikepulse/pkg/contracts/domain"
)

func TestBoxStats(t *testing.T) {
	b := boxStats([]float64{1, 2, 3, 4, 5, 6, 7, 8, 100})
	require.NotNil(t, b)
	assert.InDelta(t, 4.5, b.Median, 1e-9)
	assert.Equal(t, []float64{100}, b.Outliers)
	assert.Equal(t, 1.0, b.Min)
	assert.Equal(t, 8.0, b.Max)
	assert.LessOrEqual(t, b.Q1, b.Median)
	assert.LessOrEqual(t, b.Median, b.Q3)

	assert.Nil(t, boxStats(nil))
}

func TestSturgesHistogram(t *testing.T) {
	assert.Equal(t, 1, sturgesBins(1))
	assert.Equal(t, 11, sturgesBins(731))

	v := []float64{0, 1, 2, 3, 4, 5, 6, 7}
	points := histogram(v)
	require.Len(t, points, 4)
	total := 0.0
	for _, p := range points {
		total += *p.Y
	}
	assert.Equal(t, float64(len(v)), total, "every value lands in a bin")

	same := histogram([]float64{3, 3, 3})
	require.Len(t, same, 1)
	assert.Equal(t, 3.0, *same[0].Y)
	assert.Empty(t, histogram(nil))
}

func TestDensity(t *testing.T) {
	points, h := density([]float64{10, 12, 14, 30})
	require.Len(t, points, densityPoints)
	assert.Greater(t, h, 0.0)

	// the integral of the estimate is close to 1
	step := points[1].X.(float64) - points[0].X.(float64)
	area := 0.0
	for _, p := range points {
		area += *p.Y * step
	}
	assert.InDelta(t, 1.0, area, 0.1)

	flat, h := density([]float64{5, 5, 5})
	assert.Empty(t, flat)
	assert.Zero(t, h)
}

func TestInsights_NoData(t *testing.T) {
	empty := domain.GroupResult{}
	for _, in := range []domain.Insight{
		SeasonInsight(empty),
		WorkingDayInsight(empty),
		MonthInsight(empty),
		CorrelationInsight(domain.CorrelationMatrix{}),
		ClusterInsight(domain.ClusterResult{}),
	} {
		assert.True(t, in.NoData, in.ID)
	}
}
