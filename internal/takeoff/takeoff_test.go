package takeoff

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedSkill(name string, start, end float64, accel bool) Skill {
	return Skill{
		Name:        name,
		Start:       Level{Mean: start},
		End:         Level{Mean: end},
		Accelerates: accel,
	}
}

func TestNew_Defaults(t *testing.T) {
	m, err := New(Params{Skills: []Skill{fixedSkill("coding", 0, 1, false)}})
	require.NoError(t, err)

	p := m.Params()
	assert.Equal(t, float64(DefaultYearsToCrossHumanRange), p.YearsToCrossHumanRange)
	assert.Equal(t, float64(DefaultStepDays), p.StepDays)
	assert.Equal(t, float64(DefaultMaxYears), p.MaxYears)
}

func TestNew_Invalid(t *testing.T) {
	cases := map[string]Params{
		"no skills":      {},
		"empty name":     {Skills: []Skill{{Name: ""}}},
		"duplicate":      {Skills: []Skill{fixedSkill("a", 0, 1, false), fixedSkill("a", 0, 1, false)}},
		"negative stdev": {Skills: []Skill{{Name: "a", Start: Level{Stdev: -1}}}},
		"negative years": {Skills: []Skill{fixedSkill("a", 0, 1, false)}, YearsToCrossHumanRange: -2},
		"nan level":      {Skills: []Skill{fixedSkill("a", math.NaN(), 1, false)}},
		"inf stdev":      {Skills: []Skill{{Name: "a", End: Level{Mean: 1, Stdev: math.Inf(1)}}}},
		"nan years":      {Skills: []Skill{fixedSkill("a", 0, 1, false)}, YearsToCrossHumanRange: math.NaN()},
		"inf max years":  {Skills: []Skill{fixedSkill("a", 0, 1, false)}, MaxYears: math.Inf(1)},
	}
	for name, p := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := New(p)
			require.ErrorIs(t, err, ErrInvalidParams)
		})
	}
}

func TestMean_NoAccelerationCrossesInConfiguredYears(t *testing.T) {
	m, err := New(Params{Skills: []Skill{fixedSkill("coding", 0, 1, false)}})
	require.NoError(t, err)

	// One full human range at the default pace takes four years.
	assert.InDelta(t, 4.0, m.Mean(), 2.0/365)
}

func TestMean_AccelerationShortensTakeoff(t *testing.T) {
	slow, err := New(Params{Skills: []Skill{fixedSkill("research", 0, 1, false)}})
	require.NoError(t, err)
	fast, err := New(Params{Skills: []Skill{fixedSkill("research", 0, 1, true)}})
	require.NoError(t, err)

	assert.Less(t, fast.Mean(), slow.Mean())
	assert.Greater(t, fast.Mean(), 0.0)
}

func TestAcceleration_FlooredAtOne(t *testing.T) {
	m, err := New(Params{Skills: []Skill{
		fixedSkill("research", 0, 1, true),
		fixedSkill("engineering", 0, 1, true),
		fixedSkill("persuasion", 0, 1, false),
	}})
	require.NoError(t, err)

	tests := []struct {
		name string
		cur  []float64
		want float64
	}{
		{"at zero", []float64{0, 0, 5}, 1},
		{"both below zero", []float64{-0.5, -0.5, 5}, 1},
		// Each factor is floored at 0 before the product, so two skills
		// below -1 do not multiply into a speed-up.
		{"both below minus one", []float64{-2, -3, 5}, 1},
		{"one below minus one", []float64{-2, 1, 5}, 1},
		{"above zero", []float64{1, 0.5, -5}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, m.acceleration(tt.cur), 1e-12)
		})
	}
}

func TestMean_AlreadyPastThreshold(t *testing.T) {
	m, err := New(Params{Skills: []Skill{fixedSkill("persuasion", 2, 1, false)}})
	require.NoError(t, err)
	assert.Equal(t, 0.0, m.Mean())
}

func TestSample_CappedAtMaxYears(t *testing.T) {
	m, err := New(Params{
		Skills:   []Skill{fixedSkill("hacking", 0, 1000, false)},
		MaxYears: 2,
	})
	require.NoError(t, err)

	r := rand.New(rand.NewPCG(1, 2))
	assert.InDelta(t, 2.0, m.Sample(r), 1.0/365)
}

func TestSample_DeterministicForSeed(t *testing.T) {
	m, err := New(Params{Skills: []Skill{
		{Name: "persuasion", Start: Level{Mean: -0.5, Stdev: 1.5}, End: Level{Mean: 3, Stdev: 2}},
		{Name: "coding", Start: Level{Mean: -0.5, Stdev: 1.5}, End: Level{Mean: 1, Stdev: 1}, Accelerates: true},
	}})
	require.NoError(t, err)

	a := rand.New(rand.NewPCG(7, 7))
	b := rand.New(rand.NewPCG(7, 7))
	for i := 0; i < 20; i++ {
		x, y := m.Sample(a), m.Sample(b)
		assert.Equal(t, x, y)
		assert.GreaterOrEqual(t, x, 0.0)
	}
}
