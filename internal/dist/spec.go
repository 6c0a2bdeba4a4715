package dist

import (
	"errors"
	"fmt"
	"math"

	"github.com/uvafan/toy-takeoff-modeling/internal/takeoff"
)

// ErrInvalidParameter is returned when a Spec cannot be turned into a Distribution.
var ErrInvalidParameter = errors.New("invalid distribution parameter")

// Kind names a distribution family.
type Kind string

const (
	KindConstant    Kind = "constant"
	KindNormal      Kind = "normal"
	KindLognormal   Kind = "lognormal"
	KindUniform     Kind = "uniform"
	KindExponential Kind = "exponential"
	KindMixture     Kind = "mixture"
	KindTakeoff     Kind = "takeoff"
)

// Spec is the configuration form of a distribution. Which fields are read
// depends on Kind:
//
//	constant:    value
//	normal:      mean, stdev
//	lognormal:   median, spread (>= 1)
//	uniform:     min, max
//	exponential: mean
//	mixture:     components
//	takeoff:     takeoff
//
// For every kind except uniform, min and max are optional bounds that clamp draws.
type Spec struct {
	Kind       Kind            `yaml:"kind" json:"kind" validate:"required,oneof=constant normal lognormal uniform exponential mixture takeoff"`
	Value      float64         `yaml:"value,omitempty" json:"value,omitempty"`
	Mean       float64         `yaml:"mean,omitempty" json:"mean,omitempty"`
	Stdev      float64         `yaml:"stdev,omitempty" json:"stdev,omitempty"`
	Median     float64         `yaml:"median,omitempty" json:"median,omitempty"`
	Spread     float64         `yaml:"spread,omitempty" json:"spread,omitempty"`
	Min        *float64        `yaml:"min,omitempty" json:"min,omitempty"`
	Max        *float64        `yaml:"max,omitempty" json:"max,omitempty"`
	Components []Component     `yaml:"components,omitempty" json:"components,omitempty" validate:"dive"`
	Takeoff    *takeoff.Params `yaml:"takeoff,omitempty" json:"takeoff,omitempty"`
}

// Component is a weighted entry of a mixture Spec.
type Component struct {
	Weight float64 `yaml:"weight" json:"weight" validate:"gt=0"`
	Spec   `yaml:",inline"`
}

// Build validates the spec and returns the distribution it describes.
func Build(s Spec) (Distribution, error) {
	d, err := buildInner(s)
	if err != nil {
		return nil, err
	}
	if s.Kind == KindUniform || (s.Min == nil && s.Max == nil) {
		return d, nil
	}
	lo, hi := math.Inf(-1), math.Inf(1)
	if s.Min != nil {
		lo = *s.Min
	}
	if s.Max != nil {
		hi = *s.Max
	}
	if lo > hi {
		return nil, fmt.Errorf("%w: %s bounds min %g > max %g", ErrInvalidParameter, s.Kind, lo, hi)
	}
	return Bounded{Inner: d, Min: lo, Max: hi}, nil
}

func buildInner(s Spec) (Distribution, error) {
	if err := checkFinite(s); err != nil {
		return nil, err
	}
	switch s.Kind {
	case KindConstant:
		return Constant{Value: s.Value}, nil

	case KindNormal:
		if s.Stdev < 0 {
			return nil, fmt.Errorf("%w: normal stdev must be >= 0, got %g", ErrInvalidParameter, s.Stdev)
		}
		return Normal{Mu: s.Mean, Sigma: s.Stdev}, nil

	case KindLognormal:
		if s.Median <= 0 {
			return nil, fmt.Errorf("%w: lognormal median must be > 0, got %g", ErrInvalidParameter, s.Median)
		}
		if s.Spread < 1 {
			return nil, fmt.Errorf("%w: lognormal spread must be >= 1, got %g", ErrInvalidParameter, s.Spread)
		}
		return Lognormal{Median: s.Median, Spread: s.Spread}, nil

	case KindUniform:
		if s.Min == nil || s.Max == nil {
			return nil, fmt.Errorf("%w: uniform requires min and max", ErrInvalidParameter)
		}
		if *s.Min > *s.Max {
			return nil, fmt.Errorf("%w: uniform min %g > max %g", ErrInvalidParameter, *s.Min, *s.Max)
		}
		return Uniform{Min: *s.Min, Max: *s.Max}, nil

	case KindExponential:
		if s.Mean <= 0 {
			return nil, fmt.Errorf("%w: exponential mean must be > 0, got %g", ErrInvalidParameter, s.Mean)
		}
		return Exponential{Mu: s.Mean}, nil

	case KindMixture:
		if len(s.Components) == 0 {
			return nil, fmt.Errorf("%w: mixture requires at least one component", ErrInvalidParameter)
		}
		comps := make([]Weighted, 0, len(s.Components))
		for i, c := range s.Components {
			if c.Weight <= 0 || math.IsInf(c.Weight, 0) || math.IsNaN(c.Weight) {
				return nil, fmt.Errorf("%w: mixture component %d weight must be > 0, got %g", ErrInvalidParameter, i, c.Weight)
			}
			d, err := Build(c.Spec)
			if err != nil {
				return nil, fmt.Errorf("mixture component %d: %w", i, err)
			}
			comps = append(comps, Weighted{Weight: c.Weight, Dist: d})
		}
		return NewMixture(comps), nil

	case KindTakeoff:
		if s.Takeoff == nil {
			return nil, fmt.Errorf("%w: takeoff requires a takeoff block", ErrInvalidParameter)
		}
		m, err := takeoff.New(*s.Takeoff)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidParameter, err)
		}
		return m, nil

	case "":
		return nil, fmt.Errorf("%w: kind is required", ErrInvalidParameter)

	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidParameter, s.Kind)
	}
}

type param struct {
	name string
	v    float64
}

// checkFinite rejects NaN and infinite parameters. Range guards below are
// comparisons, which NaN passes silently.
func checkFinite(s Spec) error {
	params := []param{
		{"value", s.Value},
		{"mean", s.Mean},
		{"stdev", s.Stdev},
		{"median", s.Median},
		{"spread", s.Spread},
	}
	if s.Min != nil {
		params = append(params, param{"min", *s.Min})
	}
	if s.Max != nil {
		params = append(params, param{"max", *s.Max})
	}
	for _, p := range params {
		if math.IsNaN(p.v) || math.IsInf(p.v, 0) {
			return fmt.Errorf("%w: %s %s must be finite, got %g", ErrInvalidParameter, s.Kind, p.name, p.v)
		}
	}
	return nil
}

// Float is a convenience for filling the optional bound fields of a Spec.
func Float(v float64) *float64 {
	return &v
}
