package montecarlo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentile(t *testing.T) {
	sorted := []float64{1, 2, 3, 4, 5}
	tests := []struct {
		p    float64
		want float64
	}{
		{0, 1},
		{50, 3},
		{100, 5},
		{10, 1.4},
		{90, 4.6},
		{25, 2},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, Percentile(sorted, tt.p), 1e-12, "p%v", tt.p)
	}

	assert.Equal(t, 7.0, Percentile([]float64{7}, 90))
	assert.True(t, math.IsNaN(Percentile(nil, 50)))
}

func TestSummarize(t *testing.T) {
	assert.Nil(t, Summarize(nil))

	in := []float64{4, 1, 3, 2}
	s := Summarize(in)
	require.NotNil(t, s)
	assert.Equal(t, 4, s.Count)
	assert.Equal(t, 2.5, s.Mean)
	assert.Equal(t, 2.5, s.Median)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 4.0, s.Max)
	assert.InDelta(t, math.Sqrt(1.25), s.StdDev, 1e-12)
	assert.Equal(t, []float64{4, 1, 3, 2}, in, "input must not be reordered")
}
