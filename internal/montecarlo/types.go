package montecarlo

import (
	"time"

	"github.com/uvafan/toy-takeoff-modeling/internal/config"
)

// Config holds runner configuration.
type Config struct {
	Trials  int
	Workers int // 0 means GOMAXPROCS
	Seed    uint64
}

// Status describes whether a pair produced usable statistics.
type Status string

const (
	StatusOK        Status = "ok"
	StatusNoSamples Status = "no_samples"
)

// Summary is the reduction of a set of per-trial values, in years.
type Summary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	P10    float64 `json:"p10"`
	P90    float64 `json:"p90"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// PairResult is the Result Set of one start/end pair.
type PairResult struct {
	Pair config.Pair `json:"pair"`
	// Deltas holds one non-negative value per valid trial, in trial order.
	Deltas []float64 `json:"-"`
	// Excluded counts trials where the start or end never occurred.
	Excluded int `json:"excluded"`
	// Clamped counts trials where the end preceded the start.
	Clamped int `json:"clamped"`
	// Summary is nil when no trial was valid.
	Summary *Summary `json:"summary"`
}

// Status reports StatusNoSamples when every trial was excluded.
func (p PairResult) Status() Status {
	if p.Summary == nil {
		return StatusNoSamples
	}
	return StatusOK
}

// MilestoneResult summarises when a single milestone occurred.
type MilestoneResult struct {
	Name     string   `json:"name"`
	Occurred int      `json:"occurred"`
	Never    int      `json:"never"`
	Summary  *Summary `json:"summary"`
}

// NeverFraction is the share of trials in which the milestone did not occur.
func (m MilestoneResult) NeverFraction() float64 {
	total := m.Occurred + m.Never
	if total == 0 {
		return 0
	}
	return float64(m.Never) / float64(total)
}

// ResultSet is the read-only outcome of a run.
type ResultSet struct {
	RunID      string            `json:"run_id"`
	Seed       uint64            `json:"seed"`
	Trials     int               `json:"trials"`
	Workers    int               `json:"workers"`
	StartedAt  time.Time         `json:"started_at"`
	Elapsed    time.Duration     `json:"elapsed"`
	Pairs      []PairResult      `json:"pairs"`
	Milestones []MilestoneResult `json:"milestones"`
}

// Pair returns the result for the named pair.
func (rs *ResultSet) Pair(name string) (PairResult, bool) {
	for _, p := range rs.Pairs {
		if p.Pair.Name == name {
			return p, true
		}
	}
	return PairResult{}, false
}

// Milestone returns the occurrence summary for the named milestone.
func (rs *ResultSet) Milestone(name string) (MilestoneResult, bool) {
	for _, m := range rs.Milestones {
		if m.Name == name {
			return m, true
		}
	}
	return MilestoneResult{}, false
}
