// Package dist provides the parametric distributions used to describe
// uncertainty about when a milestone happens or how long a transition takes.
package dist

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// Distribution draws real values from a fixed parametric law. Implementations
// are immutable and safe for concurrent use; all randomness comes from r.
type Distribution interface {
	Sample(r *rand.Rand) float64
	// Mean is the analytic mean of the unbounded law, or a central point
	// estimate where no closed form exists.
	Mean() float64
	String() string
}

// Constant always returns Value.
type Constant struct {
	Value float64
}

func (c Constant) Sample(*rand.Rand) float64 { return c.Value }
func (c Constant) Mean() float64            { return c.Value }
func (c Constant) String() string           { return fmt.Sprintf("constant(%g)", c.Value) }

// Normal is a Gaussian with the given mean and standard deviation.
type Normal struct {
	Mu    float64
	Sigma float64
}

func (n Normal) Sample(r *rand.Rand) float64 { return n.Mu + n.Sigma*r.NormFloat64() }
func (n Normal) Mean() float64               { return n.Mu }
func (n Normal) String() string              { return fmt.Sprintf("normal(mean=%g, stdev=%g)", n.Mu, n.Sigma) }

// Lognormal is parameterised by its median and a multiplicative spread
// factor: one standard deviation in log space multiplies or divides the
// median by Spread.
type Lognormal struct {
	Median float64
	Spread float64
}

func (l Lognormal) sigma() float64 { return math.Log(l.Spread) }

func (l Lognormal) Sample(r *rand.Rand) float64 {
	return l.Median * math.Exp(l.sigma()*r.NormFloat64())
}

func (l Lognormal) Mean() float64 {
	s := l.sigma()
	return l.Median * math.Exp(s*s/2)
}

func (l Lognormal) String() string {
	return fmt.Sprintf("lognormal(median=%g, spread=%g)", l.Median, l.Spread)
}

// Uniform is flat over [Min, Max).
type Uniform struct {
	Min, Max float64
}

func (u Uniform) Sample(r *rand.Rand) float64 { return u.Min + (u.Max-u.Min)*r.Float64() }
func (u Uniform) Mean() float64               { return (u.Min + u.Max) / 2 }
func (u Uniform) String() string              { return fmt.Sprintf("uniform(%g, %g)", u.Min, u.Max) }

// Exponential has the given mean (1/rate).
type Exponential struct {
	Mu float64
}

func (e Exponential) Sample(r *rand.Rand) float64 { return e.Mu * r.ExpFloat64() }
func (e Exponential) Mean() float64               { return e.Mu }
func (e Exponential) String() string              { return fmt.Sprintf("exponential(mean=%g)", e.Mu) }

// Weighted is one component of a Mixture.
type Weighted struct {
	Weight float64
	Dist   Distribution
}

// Mixture picks a component with probability proportional to its weight and
// samples from it.
type Mixture struct {
	components []Weighted
	cumulative []float64
}

// NewMixture normalises weights. Callers validate that weights are positive.
func NewMixture(components []Weighted) *Mixture {
	m := &Mixture{
		components: append([]Weighted(nil), components...),
		cumulative: make([]float64, len(components)),
	}
	total := 0.0
	for _, c := range components {
		total += c.Weight
	}
	acc := 0.0
	for i, c := range components {
		acc += c.Weight / total
		m.cumulative[i] = acc
	}
	m.cumulative[len(m.cumulative)-1] = 1
	return m
}

func (m *Mixture) Sample(r *rand.Rand) float64 {
	u := r.Float64()
	for i, c := range m.cumulative {
		if u < c {
			return m.components[i].Dist.Sample(r)
		}
	}
	return m.components[len(m.components)-1].Dist.Sample(r)
}

func (m *Mixture) Mean() float64 {
	mean := 0.0
	prev := 0.0
	for i, c := range m.components {
		mean += (m.cumulative[i] - prev) * c.Dist.Mean()
		prev = m.cumulative[i]
	}
	return mean
}

func (m *Mixture) String() string {
	return fmt.Sprintf("mixture(%d components)", len(m.components))
}

// Bounded clamps draws of Inner into [Min, Max]. Clamping puts the tail mass
// on the bound, which is how a point mass at zero is expressed.
type Bounded struct {
	Inner    Distribution
	Min, Max float64
}

func (b Bounded) Sample(r *rand.Rand) float64 {
	return clamp(b.Inner.Sample(r), b.Min, b.Max)
}

// Mean clamps the inner mean. It ignores the mass moved onto the bounds.
func (b Bounded) Mean() float64 {
	return clamp(b.Inner.Mean(), b.Min, b.Max)
}

func (b Bounded) String() string {
	return fmt.Sprintf("%s in [%g, %g]", b.Inner, b.Min, b.Max)
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
