// Package takeoff models the time it takes AI capabilities to climb from a
// starting level to an end threshold across several skills, where progress
// in research-relevant skills speeds up progress everywhere.
//
// Capabilities are measured on a human-range scale: 0 is the 0th-percentile
// human, 1 is the 100th-percentile human, and values outside [0, 1]
// extrapolate from that.
package takeoff

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
)

const daysPerYear = 365

// Defaults applied by Params.WithDefaults.
const (
	DefaultYearsToCrossHumanRange = 4
	DefaultStepDays               = 1
	DefaultMaxYears               = 100
)

// ErrInvalidParams is returned when the model parameters cannot be used.
var ErrInvalidParams = errors.New("invalid takeoff parameters")

// Level is a normal distribution over a capability level.
type Level struct {
	Mean  float64 `yaml:"mean" json:"mean"`
	Stdev float64 `yaml:"stdev" json:"stdev" validate:"gte=0"`
}

// Skill is one capability tracked by the model.
type Skill struct {
	Name  string `yaml:"name" json:"name" validate:"required"`
	Start Level  `yaml:"start" json:"start"`
	End   Level  `yaml:"end" json:"end"`
	// Accelerates marks skills whose level feeds the speed-up factor
	// (research and engineering in the reference scenario).
	Accelerates bool `yaml:"accelerates,omitempty" json:"accelerates,omitempty"`
}

// Params configures a takeoff model.
type Params struct {
	Skills                 []Skill `yaml:"skills" json:"skills" validate:"required,min=1,dive"`
	YearsToCrossHumanRange float64 `yaml:"years_to_cross_human_range,omitempty" json:"years_to_cross_human_range,omitempty" validate:"gte=0"`
	StepDays               float64 `yaml:"step_days,omitempty" json:"step_days,omitempty" validate:"gte=0"`
	MaxYears               float64 `yaml:"max_years,omitempty" json:"max_years,omitempty" validate:"gte=0"`
}

// WithDefaults returns a copy of p with zero-valued knobs filled in.
func (p Params) WithDefaults() Params {
	if p.YearsToCrossHumanRange == 0 {
		p.YearsToCrossHumanRange = DefaultYearsToCrossHumanRange
	}
	if p.StepDays == 0 {
		p.StepDays = DefaultStepDays
	}
	if p.MaxYears == 0 {
		p.MaxYears = DefaultMaxYears
	}
	return p
}

// Validate checks p after defaults have been applied.
func (p Params) Validate() error {
	if len(p.Skills) == 0 {
		return fmt.Errorf("%w: at least one skill is required", ErrInvalidParams)
	}
	seen := make(map[string]bool, len(p.Skills))
	for _, s := range p.Skills {
		if s.Name == "" {
			return fmt.Errorf("%w: skill name is required", ErrInvalidParams)
		}
		if seen[s.Name] {
			return fmt.Errorf("%w: duplicate skill %q", ErrInvalidParams, s.Name)
		}
		seen[s.Name] = true
		for _, v := range []float64{s.Start.Mean, s.Start.Stdev, s.End.Mean, s.End.Stdev} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: skill %q levels must be finite", ErrInvalidParams, s.Name)
			}
		}
		if s.Start.Stdev < 0 || s.End.Stdev < 0 {
			return fmt.Errorf("%w: skill %q stdev must be >= 0", ErrInvalidParams, s.Name)
		}
	}
	if !(p.YearsToCrossHumanRange > 0) || math.IsInf(p.YearsToCrossHumanRange, 0) {
		return fmt.Errorf("%w: years_to_cross_human_range must be > 0, got %g", ErrInvalidParams, p.YearsToCrossHumanRange)
	}
	if !(p.StepDays > 0) || math.IsInf(p.StepDays, 0) {
		return fmt.Errorf("%w: step_days must be > 0, got %g", ErrInvalidParams, p.StepDays)
	}
	if !(p.MaxYears > 0) || math.IsInf(p.MaxYears, 0) {
		return fmt.Errorf("%w: max_years must be > 0, got %g", ErrInvalidParams, p.MaxYears)
	}
	return nil
}

// Model samples takeoff durations. It is immutable and safe for concurrent use.
type Model struct {
	params Params
	// progress per step at an acceleration factor of 1
	baseStep float64
	maxSteps int
}

// New validates params and builds a Model.
func New(params Params) (*Model, error) {
	p := params.WithDefaults()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Model{
		params:   p,
		baseStep: p.StepDays / (p.YearsToCrossHumanRange * daysPerYear),
		maxSteps: int(math.Ceil(p.MaxYears * daysPerYear / p.StepDays)),
	}, nil
}

// Params returns the effective parameters.
func (m *Model) Params() Params {
	return m.params
}

// Sample draws start levels and end thresholds for every skill and returns
// the years until all skills reach their thresholds.
func (m *Model) Sample(r *rand.Rand) float64 {
	n := len(m.params.Skills)
	cur := make([]float64, n)
	end := make([]float64, n)
	for i, s := range m.params.Skills {
		cur[i] = s.Start.Mean + s.Start.Stdev*r.NormFloat64()
		end[i] = s.End.Mean + s.End.Stdev*r.NormFloat64()
	}
	return m.run(cur, end)
}

// Mean returns the duration of the run where every skill starts and ends at
// its central value. It is a point estimate, not the expectation of Sample.
func (m *Model) Mean() float64 {
	n := len(m.params.Skills)
	cur := make([]float64, n)
	end := make([]float64, n)
	for i, s := range m.params.Skills {
		cur[i] = s.Start.Mean
		end[i] = s.End.Mean
	}
	return m.run(cur, end)
}

func (m *Model) String() string {
	return fmt.Sprintf("takeoff(%d skills, %gy to cross human range)", len(m.params.Skills), m.params.YearsToCrossHumanRange)
}

// run steps cur forward in place until it dominates end or maxSteps is hit.
func (m *Model) run(cur, end []float64) float64 {
	steps := 0
	for steps < m.maxSteps && !reached(cur, end) {
		inc := m.baseStep * m.acceleration(cur)
		for i := range cur {
			cur[i] += inc
		}
		steps++
	}
	return float64(steps) * m.params.StepDays / daysPerYear
}

// acceleration is the product of (level+1) over accelerating skills, floored
// at 1. A skill below -1 contributes nothing rather than flipping the sign.
func (m *Model) acceleration(cur []float64) float64 {
	factor := 1.0
	found := false
	for i, s := range m.params.Skills {
		if !s.Accelerates {
			continue
		}
		found = true
		factor *= math.Max(cur[i]+1, 0)
	}
	if !found {
		return 1
	}
	return math.Max(factor, 1)
}

func reached(cur, end []float64) bool {
	for i := range cur {
		if cur[i] < end[i] {
			return false
		}
	}
	return true
}
