package montecarlo

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uvafan/toy-takeoff-modeling/internal/bank"
	"github.com/uvafan/toy-takeoff-modeling/internal/config"
	"github.com/uvafan/toy-takeoff-modeling/internal/dist"
	"github.com/uvafan/toy-takeoff-modeling/internal/metrics"
)

func scenario() []config.Milestone {
	return []config.Milestone{
		{Name: "a", Distribution: dist.Spec{Kind: dist.KindLognormal, Median: 2, Spread: 1.5}},
		{Name: "b", After: "a", Distribution: dist.Spec{Kind: dist.KindExponential, Mean: 1}},
		{Name: "c", After: "a", NeverProbability: 0.5, Distribution: dist.Spec{Kind: dist.KindConstant, Value: 1}},
	}
}

func scenarioPairs() []config.Pair {
	return []config.Pair{
		{Name: "a_to_b", Start: "a", End: "b"},
		{Name: "a_to_c", Start: "a", End: "c"},
	}
}

func newRunner(t *testing.T, specs []config.Milestone, pairs []config.Pair, cfg Config) *Runner {
	t.Helper()
	b, err := bank.New(specs)
	require.NoError(t, err)
	r, err := New(b, pairs, cfg)
	require.NoError(t, err)
	return r
}

func run(t *testing.T, specs []config.Milestone, pairs []config.Pair, cfg Config) *ResultSet {
	t.Helper()
	rs, err := newRunner(t, specs, pairs, cfg).Run(context.Background())
	require.NoError(t, err)
	return rs
}

func TestRun_ScenarioMeans(t *testing.T) {
	rs := run(t, scenario(), scenarioPairs(), Config{Trials: 10000, Seed: 7})

	ab, ok := rs.Pair("a_to_b")
	require.True(t, ok)
	require.NotNil(t, ab.Summary)
	assert.Equal(t, 10000, ab.Summary.Count)
	assert.Zero(t, ab.Excluded)
	assert.InDelta(t, 1.0, ab.Summary.Mean, 0.05)

	a, ok := rs.Milestone("a")
	require.True(t, ok)
	sigma := math.Log(1.5)
	assert.InDelta(t, 2*math.Exp(sigma*sigma/2), a.Summary.Mean, 0.05)
	assert.Zero(t, a.Never)
}

func TestRun_NeverExcluded(t *testing.T) {
	rs := run(t, scenario(), scenarioPairs(), Config{Trials: 10000, Seed: 11})

	c, ok := rs.Milestone("c")
	require.True(t, ok)
	assert.InDelta(t, 0.5, c.NeverFraction(), 0.03)

	ac, ok := rs.Pair("a_to_c")
	require.True(t, ok)
	assert.Equal(t, c.Never, ac.Excluded)
	assert.Equal(t, 10000-ac.Excluded, ac.Summary.Count)
	// c is always exactly one year after a when it occurs.
	assert.InDelta(t, 1.0, ac.Summary.Min, 1e-9)
	assert.InDelta(t, 1.0, ac.Summary.Max, 1e-9)
}

func TestRun_Deterministic(t *testing.T) {
	cfg := Config{Trials: 2000, Seed: 42, Workers: 1}
	first := run(t, scenario(), scenarioPairs(), cfg)
	second := run(t, scenario(), scenarioPairs(), cfg)
	cfg.Workers = 8
	parallel := run(t, scenario(), scenarioPairs(), cfg)

	for _, other := range []*ResultSet{second, parallel} {
		assert.Equal(t, first.Pairs, other.Pairs)
		assert.Equal(t, first.Milestones, other.Milestones)
	}

	cfg.Seed = 43
	reseeded := run(t, scenario(), scenarioPairs(), cfg)
	assert.NotEqual(t, first.Pairs[0].Deltas, reseeded.Pairs[0].Deltas)
}

func TestRun_ClampsNegativeDeltas(t *testing.T) {
	specs := []config.Milestone{
		{Name: "x", Distribution: dist.Spec{Kind: dist.KindUniform, Min: dist.Float(0), Max: dist.Float(1)}},
		{Name: "y", Distribution: dist.Spec{Kind: dist.KindUniform, Min: dist.Float(0), Max: dist.Float(1)}},
	}
	rs := run(t, specs, []config.Pair{{Name: "x_to_y", Start: "x", End: "y"}}, Config{Trials: 1000, Seed: 3})

	p := rs.Pairs[0]
	assert.Positive(t, p.Clamped)
	assert.Less(t, p.Clamped, 1000)
	for _, d := range p.Deltas {
		assert.GreaterOrEqual(t, d, 0.0)
	}
	assert.Equal(t, 0.0, p.Summary.Min)
}

func TestRun_NoSamples(t *testing.T) {
	specs := []config.Milestone{
		{Name: "a", Distribution: dist.Spec{Kind: dist.KindConstant, Value: 1}},
		{Name: "gone", NeverProbability: 1, Distribution: dist.Spec{Kind: dist.KindConstant, Value: 2}},
	}
	rec := metrics.New()
	r := newRunner(t, specs, []config.Pair{{Name: "a_to_gone", Start: "a", End: "gone"}}, Config{Trials: 500, Seed: 1})
	r.Metrics = rec

	rs, err := r.Run(context.Background())
	require.NoError(t, err)

	p := rs.Pairs[0]
	assert.Nil(t, p.Summary)
	assert.Equal(t, StatusNoSamples, p.Status())
	assert.Equal(t, 500, p.Excluded)
	assert.Empty(t, p.Deltas)

	expected := `
# HELP takeoff_pair_no_samples_total Runs in which a pair had no valid trials
# TYPE takeoff_pair_no_samples_total counter
takeoff_pair_no_samples_total{pair="a_to_gone"} 1
# HELP takeoff_trials_total Total number of sampled trials
# TYPE takeoff_trials_total counter
takeoff_trials_total 500
`
	err = testutil.GatherAndCompare(rec.Registry(), strings.NewReader(expected),
		"takeoff_pair_no_samples_total", "takeoff_trials_total")
	assert.NoError(t, err)
}

func TestRun_PercentileOrdering(t *testing.T) {
	rs := run(t, scenario(), scenarioPairs(), Config{Trials: 3000, Seed: 5})
	for _, p := range rs.Pairs {
		s := p.Summary
		require.NotNil(t, s, p.Pair.Name)
		assert.LessOrEqual(t, s.Min, s.P10, p.Pair.Name)
		assert.LessOrEqual(t, s.P10, s.Median, p.Pair.Name)
		assert.LessOrEqual(t, s.Median, s.P90, p.Pair.Name)
		assert.LessOrEqual(t, s.P90, s.Max, p.Pair.Name)
	}
}

func TestRun_MedianConverges(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping convergence run in short mode")
	}
	medians := func(trials int) []float64 {
		out := make([]float64, 0, 20)
		for seed := uint64(1); seed <= 20; seed++ {
			rs := run(t, scenario(), scenarioPairs()[:1], Config{Trials: trials, Seed: seed})
			out = append(out, rs.Pairs[0].Summary.Median)
		}
		return out
	}
	spread := func(vs []float64) float64 {
		s := Summarize(vs)
		return s.StdDev
	}

	small := spread(medians(100))
	large := spread(medians(10000))
	assert.Less(t, large, small/3, "median spread should shrink with more trials")
}

func TestRun_CancelledContext(t *testing.T) {
	r := newRunner(t, scenario(), scenarioPairs(), Config{Trials: 100000, Seed: 1})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNew_Errors(t *testing.T) {
	b, err := bank.New(scenario())
	require.NoError(t, err)

	_, err = New(b, []config.Pair{{Name: "bad", Start: "a", End: "ghost"}}, Config{Trials: 10})
	assert.ErrorIs(t, err, bank.ErrUnknownMilestone)
	assert.Contains(t, err.Error(), "ghost")

	_, err = New(b, scenarioPairs(), Config{Trials: 0})
	assert.ErrorIs(t, err, ErrInvalidRun)

	_, err = New(b, scenarioPairs(), Config{Trials: 10, Workers: -1})
	assert.ErrorIs(t, err, ErrInvalidRun)
}

func TestNew_DefaultWorkers(t *testing.T) {
	r := newRunner(t, scenario(), scenarioPairs(), Config{Trials: 10})
	assert.Positive(t, r.Config.Workers)

	rs, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, rs.Workers, "a single chunk needs one worker")
	assert.NotEmpty(t, rs.RunID)
}
