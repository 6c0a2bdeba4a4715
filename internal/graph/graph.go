// Package graph builds the milestone dependency DAG and computes the
// topological order trials are sampled in.
package graph

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrCycle             = errors.New("dependency cycle detected")
	ErrUnknownDependency = errors.New("unknown milestone")
	ErrDuplicateNode     = errors.New("duplicate milestone")
)

// NodeError ties a graph error to the milestone that caused it.
type NodeError struct {
	ID  string
	Err error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("milestone %q: %v", e.ID, e.Err)
}

func (e *NodeError) Unwrap() error {
	return e.Err
}

// Build constructs a MilestoneGraph. It fails on duplicate IDs, references
// to milestones that are not in nodes, and cycles.
func Build(nodes []Node) (*MilestoneGraph, error) {
	g := &MilestoneGraph{
		Nodes:  make(map[string]*Node, len(nodes)),
		Adj:    make(map[string][]string),
		RevAdj: make(map[string][]string),
	}

	// Index all milestones
	for i := range nodes {
		n := nodes[i]
		if n.ID == "" {
			return nil, fmt.Errorf("milestone at position %d: empty name", i)
		}
		if _, dup := g.Nodes[n.ID]; dup {
			return nil, &NodeError{ID: n.ID, Err: ErrDuplicateNode}
		}
		n.After = append([]string(nil), n.After...)
		g.Nodes[n.ID] = &n
	}

	edgeSet := make(map[[2]string]bool)
	for _, id := range sortedIDs(g.Nodes) {
		for _, ref := range g.Nodes[id].After {
			if _, ok := g.Nodes[ref]; !ok {
				return nil, &NodeError{ID: id, Err: fmt.Errorf("%w %q", ErrUnknownDependency, ref)}
			}
			key := [2]string{ref, id}
			if edgeSet[key] {
				continue
			}
			edgeSet[key] = true
			g.Adj[ref] = append(g.Adj[ref], id)
			g.RevAdj[id] = append(g.RevAdj[id], ref)
		}
	}

	// Sort adjacency lists for deterministic ordering
	for k := range g.Adj {
		sort.Strings(g.Adj[k])
	}
	for k := range g.RevAdj {
		sort.Strings(g.RevAdj[k])
	}

	for id := range g.Nodes {
		if len(g.RevAdj[id]) == 0 {
			g.Roots = append(g.Roots, id)
		}
		if len(g.Adj[id]) == 0 {
			g.Leaves = append(g.Leaves, id)
		}
	}
	sort.Strings(g.Roots)
	sort.Strings(g.Leaves)

	if cycle := g.DetectCycle(); cycle != nil {
		return nil, &NodeError{ID: cycle[0], Err: fmt.Errorf("%w: %s", ErrCycle, strings.Join(cycle, " -> "))}
	}

	return g, nil
}

// DetectCycle returns the cycle path if one exists, or nil if the graph is acyclic.
// Uses DFS with coloring: white (unvisited), gray (in progress), black (done).
func (g *MilestoneGraph) DetectCycle() []string {
	const (
		white = 0
		gray  = 1
		black = 2
	)

	color := make(map[string]int)
	parent := make(map[string]string)

	var dfs func(node string) []string
	dfs = func(node string) []string {
		color[node] = gray
		for _, next := range g.Adj[node] {
			if color[next] == gray {
				// Found a cycle, walk parents back to next
				cycle := []string{next, node}
				cur := node
				for cur != next {
					cur = parent[cur]
					cycle = append(cycle, cur)
				}
				for i, j := 0, len(cycle)-1; i < j; i, j = i+1, j-1 {
					cycle[i], cycle[j] = cycle[j], cycle[i]
				}
				return cycle
			}
			if color[next] == white {
				parent[next] = node
				if cycle := dfs(next); cycle != nil {
					return cycle
				}
			}
		}
		color[node] = black
		return nil
	}

	for _, id := range sortedIDs(g.Nodes) {
		if color[id] == white {
			if cycle := dfs(id); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}

// TopoOrder performs Kahn's algorithm. Ready milestones are taken in name
// order so the result is deterministic.
func (g *MilestoneGraph) TopoOrder() ([]string, error) {
	inDegree := make(map[string]int, len(g.Nodes))
	for id := range g.Nodes {
		inDegree[id] = len(g.RevAdj[id])
	}

	var queue []string
	for id := range g.Nodes {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}
	sort.Strings(queue)

	order := make([]string, 0, len(g.Nodes))
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		order = append(order, node)

		var newReady []string
		for _, succ := range g.Adj[node] {
			inDegree[succ]--
			if inDegree[succ] == 0 {
				newReady = append(newReady, succ)
			}
		}
		sort.Strings(newReady)
		queue = append(queue, newReady...)
	}

	if len(order) != len(g.Nodes) {
		return nil, fmt.Errorf("%w: topological sort placed %d of %d milestones", ErrCycle, len(order), len(g.Nodes))
	}
	return order, nil
}

// Levels groups milestones by depth: roots are level 0 and every other
// milestone sits one level below its deepest reference.
func (g *MilestoneGraph) Levels() ([]Level, error) {
	order, err := g.TopoOrder()
	if err != nil {
		return nil, err
	}

	depth := make(map[string]int, len(order))
	maxDepth := 0
	for _, id := range order {
		d := 0
		for _, pred := range g.RevAdj[id] {
			if depth[pred]+1 > d {
				d = depth[pred] + 1
			}
		}
		depth[id] = d
		if d > maxDepth {
			maxDepth = d
		}
	}

	if len(order) == 0 {
		return nil, nil
	}
	levels := make([]Level, maxDepth+1)
	for i := range levels {
		levels[i].Index = i
	}
	for _, id := range order {
		levels[depth[id]].Milestones = append(levels[depth[id]].Milestones, id)
	}
	for i := range levels {
		sort.Strings(levels[i].Milestones)
	}
	return levels, nil
}

// Len returns the number of milestones in the graph.
func (g *MilestoneGraph) Len() int {
	return len(g.Nodes)
}

func sortedIDs(nodes map[string]*Node) []string {
	ids := make([]string, 0, len(nodes))
	for id := range nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
