package graph

// Node is a milestone as seen by the dependency graph.
type Node struct {
	ID string
	// After lists the milestones this one is defined relative to.
	After []string
}

// MilestoneGraph is a directed acyclic graph of milestones. An edge a -> b
// means b is sampled relative to a.
type MilestoneGraph struct {
	Nodes  map[string]*Node
	Adj    map[string][]string // milestone -> milestones defined after it
	RevAdj map[string][]string // milestone -> milestones it is defined after
	Roots  []string            // absolute milestones
	Leaves []string            // milestones nothing else references
}

// Level groups milestones that sit at the same depth of the graph.
type Level struct {
	Index      int
	Milestones []string
}
