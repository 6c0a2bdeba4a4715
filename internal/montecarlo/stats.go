package montecarlo

import (
	"math"
	"sort"
)

// Summarize reduces values to summary statistics. It returns nil for an
// empty input rather than a summary of zeros.
func Summarize(values []float64) *Summary {
	if len(values) == 0 {
		return nil
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	return &Summary{
		Count:  len(values),
		Mean:   mean,
		Median: Percentile(sorted, 50),
		P10:    Percentile(sorted, 10),
		P90:    Percentile(sorted, 90),
		StdDev: stdDev(values, mean),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
	}
}

// Percentile returns the p-th percentile of sorted values, interpolating
// linearly between the two nearest ranks.
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	pos := p / 100 * float64(len(sorted)-1)
	lower := int(math.Floor(pos))
	upper := int(math.Ceil(pos))
	if lower == upper {
		return sorted[lower]
	}
	weight := pos - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

func stdDev(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return 0
	}
	varianceSum := 0.0
	for _, v := range values {
		diff := v - mean
		varianceSum += diff * diff
	}
	return math.Sqrt(varianceSum / float64(len(values)))
}
