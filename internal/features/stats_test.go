package features

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMean_SkipsNaN(t *testing.T) {
	assert.InDelta(t, 2.0, mean([]float64{1, math.NaN(), 3}), 1e-9)
	assert.True(t, math.IsNaN(mean(nil)))
	assert.True(t, math.IsNaN(mean([]float64{math.NaN()})))
}

func TestMedian(t *testing.T) {
	assert.Equal(t, 2.0, median([]float64{3, 1, 2}))
	assert.Equal(t, 2.5, median([]float64{4, 1, 2, 3}))
	assert.Equal(t, 2.0, median([]float64{3, math.NaN(), 1, 2}))
	assert.True(t, math.IsNaN(median(nil)))
}

func TestAggregate(t *testing.T) {
	values := []float64{1, 2, 10}
	assert.InDelta(t, 13.0/3, aggregate(values, AggMean), 1e-9)
	assert.Equal(t, 2.0, aggregate(values, AggMedian))
}

func TestClampNonNegative(t *testing.T) {
	assert.Equal(t, 0.0, clampNonNegative(-1.5))
	assert.Equal(t, 1.5, clampNonNegative(1.5))
	assert.True(t, math.IsNaN(clampNonNegative(math.NaN())))
}
