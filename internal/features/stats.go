package features

import (
	"math"
	"sort"
	"time"
)

// daysBetween returns the elapsed time from a to b in 24h day units
func daysBetween(a, b time.Time) float64 {
	return b.Sub(a).Hours() / hoursPerDay
}

// mean averages values, skipping NaN entries. Returns NaN when no
// usable value remains.
func mean(values []float64) float64 {
	sum := 0.0
	count := 0
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		count++
	}
	if count == 0 {
		return math.NaN()
	}
	return sum / float64(count)
}

// median returns the middle value (or midpoint of the two middle
// values), skipping NaN entries. Returns NaN when no usable value
// remains.
func median(values []float64) float64 {
	usable := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			usable = append(usable, v)
		}
	}
	if len(usable) == 0 {
		return math.NaN()
	}
	sort.Float64s(usable)
	mid := len(usable) / 2
	if len(usable)%2 == 1 {
		return usable[mid]
	}
	return (usable[mid-1] + usable[mid]) / 2
}

// aggregate applies the selected statistic to values
func aggregate(values []float64, agg AggFunc) float64 {
	if agg == AggMedian {
		return median(values)
	}
	return mean(values)
}

// clampNonNegative floors v at zero. NaN passes through so missing
// inputs stay missing.
func clampNonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
