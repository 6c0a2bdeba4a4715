// Package sampler draws one coherent timeline per trial from a bank.
package sampler

import (
	"fmt"
	"math/rand/v2"

	"github.com/uvafan/toy-takeoff-modeling/internal/bank"
	"github.com/uvafan/toy-takeoff-modeling/internal/timeline"
)

type step struct {
	sample  bank.SampleFunc
	refSlot int
}

// Sampler walks the bank's milestones in dependency order. It holds no
// mutable state, so one Sampler can be shared by concurrent trials as long as
// each trial brings its own random source.
type Sampler struct {
	index *timeline.Index
	steps []step
}

// New resolves the sampling function of every milestone once.
func New(b *bank.Bank) (*Sampler, error) {
	s := &Sampler{index: b.Index()}
	for _, m := range b.Milestones() {
		fn, err := b.Sampler(m.Name)
		if err != nil {
			return nil, fmt.Errorf("resolve sampler for %s: %w", m.Name, err)
		}
		s.steps = append(s.steps, step{sample: fn, refSlot: m.ReferenceSlot()})
	}
	return s, nil
}

// Sample draws one trial.
func (s *Sampler) Sample(r *rand.Rand) *timeline.Timeline {
	tl := timeline.New(s.index)
	for i, st := range s.steps {
		ref := timeline.Never()
		if st.refSlot >= 0 {
			// the bank's topological order guarantees refSlot < i
			ref = tl.At(st.refSlot)
		}
		tl.Set(i, st.sample(r, ref))
	}
	return tl
}
