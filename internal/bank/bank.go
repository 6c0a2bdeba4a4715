// Package bank is the milestone distribution bank: for every configured
// milestone it holds the distribution describing when (or whether) that
// milestone happens, and the static dependency order trials follow.
//
// A Bank is validated completely at construction and is read-only after
// that, so a single Bank can serve any number of concurrent trials.
package bank

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/uvafan/toy-takeoff-modeling/internal/config"
	"github.com/uvafan/toy-takeoff-modeling/internal/dist"
	"github.com/uvafan/toy-takeoff-modeling/internal/graph"
	"github.com/uvafan/toy-takeoff-modeling/internal/timeline"
)

var (
	// ErrInvalidMilestone covers milestone-level settings outside their range.
	ErrInvalidMilestone = errors.New("invalid milestone")
	// ErrUnknownMilestone is returned when looking up a name the bank does not hold.
	ErrUnknownMilestone = errors.New("unknown milestone")
)

// ConfigError names the milestone a configuration error belongs to.
type ConfigError struct {
	Milestone string
	Err       error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("milestone %q: %v", e.Milestone, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// SampleFunc draws one milestone time. ref is the already-sampled time of
// the reference milestone and is ignored for absolute milestones.
type SampleFunc func(r *rand.Rand, ref timeline.Time) timeline.Time

// Milestone is a validated, immutable sampling rule.
type Milestone struct {
	Name             string
	Description      string
	Reference        string // empty for absolute milestones
	NeverProbability float64
	Dist             dist.Distribution

	slot    int
	refSlot int
}

// Relative reports whether the milestone is defined as a delta from another.
func (m *Milestone) Relative() bool {
	return m.Reference != ""
}

// Slot is the milestone's position in the bank's order and in every Timeline.
func (m *Milestone) Slot() int {
	return m.slot
}

// ReferenceSlot is the slot of the reference milestone, or -1 for absolute ones.
func (m *Milestone) ReferenceSlot() int {
	return m.refSlot
}

// Sample resolves the never-occurs draw first, then draws a time. A relative
// milestone whose reference never occurred never occurs either, and its
// delta is floored at zero.
func (m *Milestone) Sample(r *rand.Rand, ref timeline.Time) timeline.Time {
	if m.Relative() && !ref.Occurred() {
		return timeline.Never()
	}
	if m.NeverProbability > 0 && r.Float64() < m.NeverProbability {
		return timeline.Never()
	}
	v := m.Dist.Sample(r)
	if !m.Relative() {
		return timeline.At(v)
	}
	return ref.Add(math.Max(v, 0))
}

// Bank holds every milestone in topological order.
type Bank struct {
	milestones []*Milestone
	byName     map[string]*Milestone
	index      *timeline.Index
	graph      *graph.MilestoneGraph
}

// New validates the milestone configuration and builds a Bank. Any failure
// is a configuration error naming the offending milestone.
func New(specs []config.Milestone) (*Bank, error) {
	nodes := make([]graph.Node, 0, len(specs))
	for _, s := range specs {
		n := graph.Node{ID: s.Name}
		if s.After != "" {
			n.After = []string{s.After}
		}
		nodes = append(nodes, n)
	}

	g, err := graph.Build(nodes)
	if err != nil {
		var nodeErr *graph.NodeError
		if errors.As(err, &nodeErr) {
			return nil, &ConfigError{Milestone: nodeErr.ID, Err: nodeErr.Err}
		}
		return nil, fmt.Errorf("build milestone graph: %w", err)
	}

	order, err := g.TopoOrder()
	if err != nil {
		return nil, fmt.Errorf("order milestones: %w", err)
	}

	byName := make(map[string]*Milestone, len(specs))
	for _, s := range specs {
		if s.NeverProbability < 0 || s.NeverProbability > 1 || math.IsNaN(s.NeverProbability) {
			return nil, &ConfigError{
				Milestone: s.Name,
				Err:       fmt.Errorf("%w: never_probability must be in [0, 1], got %g", ErrInvalidMilestone, s.NeverProbability),
			}
		}
		d, err := dist.Build(s.Distribution)
		if err != nil {
			return nil, &ConfigError{Milestone: s.Name, Err: err}
		}
		byName[s.Name] = &Milestone{
			Name:             s.Name,
			Description:      s.Description,
			Reference:        s.After,
			NeverProbability: s.NeverProbability,
			Dist:             d,
			refSlot:          -1,
		}
	}

	b := &Bank{
		milestones: make([]*Milestone, len(order)),
		byName:     byName,
		index:      timeline.NewIndex(order),
		graph:      g,
	}
	for i, name := range order {
		m := byName[name]
		m.slot = i
		b.milestones[i] = m
	}
	for _, m := range b.milestones {
		if m.Relative() {
			m.refSlot = byName[m.Reference].slot
		}
	}

	return b, nil
}

// Sampler returns the sampling function for the named milestone.
func (b *Bank) Sampler(name string) (SampleFunc, error) {
	m, ok := b.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownMilestone, name)
	}
	return m.Sample, nil
}

// Milestone returns the named milestone.
func (b *Bank) Milestone(name string) (*Milestone, bool) {
	m, ok := b.byName[name]
	return m, ok
}

// Milestones returns the milestones in dependency order. Every relative
// milestone appears after its reference.
func (b *Bank) Milestones() []*Milestone {
	return append([]*Milestone(nil), b.milestones...)
}

// Order returns milestone names in dependency order.
func (b *Bank) Order() []string {
	return b.index.Names()
}

// Index returns the shared slot index used by every Timeline from this bank.
func (b *Bank) Index() *timeline.Index {
	return b.index
}

// Graph returns the milestone dependency graph.
func (b *Bank) Graph() *graph.MilestoneGraph {
	return b.graph
}

// Len returns the number of milestones.
func (b *Bank) Len() int {
	return len(b.milestones)
}
