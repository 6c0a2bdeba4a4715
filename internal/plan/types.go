package plan

// Plan is the expected-value schedule of a milestone bank: every milestone
// placed at its reference's expected time plus the mean of its own
// distribution, ignoring sampling noise.
type Plan struct {
	Order         []string
	Estimates     map[string]*Estimate
	Levels        []Level
	Horizon       float64  // latest expected time of any milestone
	CriticalChain []string // reference chain ending at the horizon milestone
}

// Estimate holds the expected-value placement of a single milestone.
type Estimate struct {
	Name       string
	Reference  string  // empty for absolute milestones
	Level      int     // depth in the reference graph
	Delta      float64 // mean offset from the reference (or from year 0)
	Expected   float64 // expected time, in years from the model origin
	Finish     float64 // latest expected time among this milestone and its dependents
	Slack      float64 // Horizon - Finish
	Occurrence float64 // probability the milestone occurs at all
	IsCritical bool
}

// Level groups milestones at the same depth of the reference graph.
type Level struct {
	Index      int
	Milestones []string
	IsCritical bool // true if the level holds a critical chain milestone
}
