// Package plan computes a deterministic expected-value schedule for a
// milestone bank, used as a quick preview alongside the Monte Carlo results.
package plan

import (
	"fmt"
	"math"
	"sort"

	"github.com/uvafan/toy-takeoff-modeling/internal/bank"
)

// slackEpsilon absorbs float noise when deciding whether a milestone has slack.
const slackEpsilon = 1e-9

// Analyze performs a forward pass over the bank's reference graph to place
// each milestone at its expected time, then a backward pass to find the chain
// that determines the horizon.
func Analyze(b *bank.Bank) (*Plan, error) {
	g := b.Graph()
	order, err := g.TopoOrder()
	if err != nil {
		return nil, fmt.Errorf("order milestones: %w", err)
	}
	levels, err := g.Levels()
	if err != nil {
		return nil, fmt.Errorf("level milestones: %w", err)
	}

	p := &Plan{
		Order:     order,
		Estimates: make(map[string]*Estimate, len(order)),
	}

	// Forward pass: expected time = reference expected time + mean delta.
	for _, name := range order {
		m, ok := b.Milestone(name)
		if !ok {
			return nil, fmt.Errorf("%w %q", bank.ErrUnknownMilestone, name)
		}
		est := &Estimate{
			Name:       name,
			Reference:  m.Reference,
			Delta:      m.Dist.Mean(),
			Occurrence: 1 - m.NeverProbability,
		}
		if m.Relative() {
			ref := p.Estimates[m.Reference]
			est.Delta = math.Max(est.Delta, 0)
			est.Expected = ref.Expected + est.Delta
			est.Occurrence *= ref.Occurrence
		} else {
			est.Expected = est.Delta
		}
		p.Estimates[name] = est

		if est.Expected > p.Horizon || len(p.Estimates) == 1 {
			p.Horizon = est.Expected
		}
	}

	// Backward pass: a milestone finishes when its latest dependent does.
	for i := len(order) - 1; i >= 0; i-- {
		est := p.Estimates[order[i]]
		est.Finish = est.Expected
		for _, succ := range g.Adj[est.Name] {
			if f := p.Estimates[succ].Finish; f > est.Finish {
				est.Finish = f
			}
		}
		est.Slack = p.Horizon - est.Finish
		est.IsCritical = est.Slack <= slackEpsilon
	}

	p.CriticalChain = criticalChain(p)
	p.Levels = make([]Level, len(levels))
	for i, lv := range levels {
		names := append([]string(nil), lv.Milestones...)
		critical := false
		for _, name := range names {
			p.Estimates[name].Level = lv.Index
			if p.Estimates[name].IsCritical {
				critical = true
			}
		}
		// Critical milestones first within a level.
		sort.SliceStable(names, func(a, b int) bool {
			return p.Estimates[names[a]].IsCritical && !p.Estimates[names[b]].IsCritical
		})
		p.Levels[i] = Level{Index: lv.Index, Milestones: names, IsCritical: critical}
	}

	return p, nil
}

// criticalChain walks references back from the milestone that sets the
// horizon. Ties go to the earliest milestone in topological order.
func criticalChain(p *Plan) []string {
	var last *Estimate
	for _, name := range p.Order {
		est := p.Estimates[name]
		if est.IsCritical && est.Expected >= p.Horizon-slackEpsilon {
			last = est
			break
		}
	}
	if last == nil {
		return nil
	}

	var chain []string
	for est := last; est != nil; {
		chain = append(chain, est.Name)
		if est.Reference == "" {
			break
		}
		est = p.Estimates[est.Reference]
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// Estimate returns the estimate for name, or nil.
func (p *Plan) Estimate(name string) *Estimate {
	return p.Estimates[name]
}
