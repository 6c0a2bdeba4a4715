// Package timeline holds the per-trial outcome of a simulation: the time at
// which each milestone occurred, or an explicit never marker.
package timeline

import (
	"encoding/json"
	"fmt"
)

// Time is either a sampled occurrence time in years or "never".
// The zero value is Never.
type Time struct {
	years    float64
	occurred bool
}

// At returns a Time that occurred at the given number of years from the origin.
func At(years float64) Time {
	return Time{years: years, occurred: true}
}

// Never returns the not-occurred marker.
func Never() Time {
	return Time{}
}

// Occurred reports whether the milestone happened in this trial.
func (t Time) Occurred() bool {
	return t.occurred
}

// Years returns the occurrence time and true, or 0 and false for never.
func (t Time) Years() (float64, bool) {
	return t.years, t.occurred
}

// Add shifts an occurred time by delta years. Never stays never.
func (t Time) Add(delta float64) Time {
	if !t.occurred {
		return t
	}
	return At(t.years + delta)
}

// Sub returns t minus start in years. ok is false when either side is never.
func (t Time) Sub(start Time) (delta float64, ok bool) {
	if !t.occurred || !start.occurred {
		return 0, false
	}
	return t.years - start.years, true
}

func (t Time) String() string {
	if !t.occurred {
		return "never"
	}
	return fmt.Sprintf("%.2fy", t.years)
}

// MarshalJSON encodes an occurred time as a number and never as null.
func (t Time) MarshalJSON() ([]byte, error) {
	if !t.occurred {
		return []byte("null"), nil
	}
	return json.Marshal(t.years)
}

// Index maps milestone names to their slot in a Timeline. It is built once
// and shared read-only by every trial.
type Index struct {
	names []string
	pos   map[string]int
}

// NewIndex builds an index over names in the given order.
func NewIndex(names []string) *Index {
	idx := &Index{
		names: append([]string(nil), names...),
		pos:   make(map[string]int, len(names)),
	}
	for i, n := range idx.names {
		idx.pos[n] = i
	}
	return idx
}

// Lookup returns the slot for a milestone name.
func (idx *Index) Lookup(name string) (int, bool) {
	i, ok := idx.pos[name]
	return i, ok
}

// Names returns the milestone names in slot order.
func (idx *Index) Names() []string {
	return append([]string(nil), idx.names...)
}

// Len returns the number of milestones.
func (idx *Index) Len() int {
	return len(idx.names)
}

// Timeline is one trial's mapping from milestone to Time. It is owned by the
// trial that created it.
type Timeline struct {
	index *Index
	times []Time
}

// New returns a Timeline with every milestone set to never.
func New(index *Index) *Timeline {
	return &Timeline{
		index: index,
		times: make([]Time, index.Len()),
	}
}

// Set records the time for the milestone in slot i.
func (tl *Timeline) Set(i int, t Time) {
	tl.times[i] = t
}

// At returns the time in slot i.
func (tl *Timeline) At(i int) Time {
	return tl.times[i]
}

// Get returns the time for a milestone by name.
func (tl *Timeline) Get(name string) (Time, bool) {
	i, ok := tl.index.Lookup(name)
	if !ok {
		return Never(), false
	}
	return tl.times[i], true
}

// Times returns a copy of the per-slot times.
func (tl *Timeline) Times() []Time {
	return append([]Time(nil), tl.times...)
}

// MarshalJSON encodes the timeline as an object keyed by milestone name.
func (tl *Timeline) MarshalJSON() ([]byte, error) {
	m := make(map[string]Time, len(tl.times))
	for i, n := range tl.index.names {
		m[n] = tl.times[i]
	}
	return json.Marshal(m)
}
