package plan

import (
	"fmt"
	"sort"
	"strings"
)

// Graph owns work items and their dependency edges. It is mutable while the
// planner assembles it and must not be touched once an ExecutionPlan has been
// emitted from it.
type Graph struct {
	items      map[string]*WorkItem
	prereqs    map[string]map[string]struct{} // id -> prerequisite ids
	dependents map[string]map[string]struct{} // id -> ids that require it
}

func NewGraph() *Graph {
	return &Graph{
		items:      make(map[string]*WorkItem),
		prereqs:    make(map[string]map[string]struct{}),
		dependents: make(map[string]map[string]struct{}),
	}
}

// AddItem registers a work item. The item starts Pending.
func (g *Graph) AddItem(item WorkItem) error {
	if _, exists := g.items[item.ID]; exists {
		return fmt.Errorf("item '%s': %w", item.ID, ErrDuplicateItem)
	}
	item.Status = StatusPending
	g.items[item.ID] = &item
	g.prereqs[item.ID] = make(map[string]struct{})
	g.dependents[item.ID] = make(map[string]struct{})
	return nil
}

// AddDependency records that `from` requires `to` to finish first.
// Adding the same edge twice is a no-op.
func (g *Graph) AddDependency(from, to string) error {
	if from == to {
		return fmt.Errorf("item '%s': %w", from, ErrSelfDependency)
	}
	if _, ok := g.items[from]; !ok {
		return fmt.Errorf("item '%s': %w", from, ErrUnknownItem)
	}
	if _, ok := g.items[to]; !ok {
		return fmt.Errorf("item '%s': %w", to, ErrUnknownItem)
	}
	g.prereqs[from][to] = struct{}{}
	g.dependents[to][from] = struct{}{}
	return nil
}

// Item returns the registered item, or nil.
func (g *Graph) Item(id string) *WorkItem {
	return g.items[id]
}

// Len returns the number of registered items.
func (g *Graph) Len() int {
	return len(g.items)
}

// IDs returns all item ids sorted for deterministic iteration.
func (g *Graph) IDs() []string {
	ids := make([]string, 0, len(g.items))
	for id := range g.items {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Prerequisites returns the sorted prerequisite ids of an item.
func (g *Graph) Prerequisites(id string) []string {
	pres := make([]string, 0, len(g.prereqs[id]))
	for pre := range g.prereqs[id] {
		pres = append(pres, pre)
	}
	sort.Strings(pres)
	return pres
}

// TopologicalOrder runs Kahn's algorithm. The zero-indegree frontier is kept
// sorted by id so the order is deterministic. If any item never reaches zero
// remaining prerequisites the graph has a cycle and the error names the
// unresolved ids; no partial order is returned.
func (g *Graph) TopologicalOrder() ([]string, error) {
	remaining := make(map[string]int, len(g.items))
	var queue []string
	for _, id := range g.IDs() {
		remaining[id] = len(g.prereqs[id])
		if remaining[id] == 0 {
			queue = append(queue, id)
		}
	}

	order := make([]string, 0, len(g.items))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)

		var unblocked []string
		for dep := range g.dependents[id] {
			remaining[dep]--
			if remaining[dep] == 0 {
				unblocked = append(unblocked, dep)
			}
		}
		sort.Strings(unblocked)
		queue = append(queue, unblocked...)
	}

	if len(order) < len(g.items) {
		var stuck []string
		for id, n := range remaining {
			if n > 0 {
				stuck = append(stuck, id)
			}
		}
		sort.Strings(stuck)
		return nil, fmt.Errorf("unresolved items [%s]: %w", strings.Join(stuck, ", "), ErrCycleDetected)
	}
	return order, nil
}

// ParallelGroups assigns items to maximal levels: level k holds every
// not-yet-placed item whose prerequisites all sit in levels 0..k-1. Flattening
// the levels in order yields a valid topological order. Items within a level
// are sorted by id.
func (g *Graph) ParallelGroups() ([][]string, error) {
	if _, err := g.TopologicalOrder(); err != nil {
		return nil, err
	}

	placed := make(map[string]struct{}, len(g.items))
	var groups [][]string
	for len(placed) < len(g.items) {
		var level []string
		for _, id := range g.IDs() {
			if _, done := placed[id]; done {
				continue
			}
			eligible := true
			for pre := range g.prereqs[id] {
				if _, done := placed[pre]; !done {
					eligible = false
					break
				}
			}
			if eligible {
				level = append(level, id)
			}
		}
		// Acyclic graphs always make progress; guarded anyway.
		if len(level) == 0 {
			return nil, fmt.Errorf("no eligible items among %d unplaced: %w", len(g.items)-len(placed), ErrCycleDetected)
		}
		for _, id := range level {
			placed[id] = struct{}{}
		}
		groups = append(groups, level)
	}
	return groups, nil
}

// CriticalPath computes the longest cost chain by dynamic programming over the
// topological order, reconstructing the maximizing chain through predecessor
// pointers. Ties break toward the smallest id.
func (g *Graph) CriticalPath() (CriticalPath, error) {
	order, err := g.TopologicalOrder()
	if err != nil {
		return CriticalPath{}, err
	}
	if len(order) == 0 {
		return CriticalPath{}, nil
	}

	longest := make(map[string]float64, len(order))
	pred := make(map[string]string, len(order))
	for _, id := range order {
		best := 0.0
		bestPre := ""
		for pre := range g.prereqs[id] {
			c := longest[pre]
			if c > best || (c == best && (bestPre == "" || pre < bestPre)) {
				best = c
				bestPre = pre
			}
		}
		longest[id] = g.items[id].EstimatedCost + best
		if bestPre != "" {
			pred[id] = bestPre
		}
	}

	endID := ""
	for _, id := range order {
		if endID == "" || longest[id] > longest[endID] || (longest[id] == longest[endID] && id < endID) {
			endID = id
		}
	}

	var chain []string
	for id := endID; id != ""; id = pred[id] {
		chain = append(chain, id)
		if _, ok := pred[id]; !ok {
			break
		}
	}
	// Reverse into dependency order.
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return CriticalPath{Items: chain, Cost: longest[endID]}, nil
}

// Validate is a non-throwing diagnostic pass. It reports every structural
// problem it can find (dangling edges, cycles) instead of stopping at the
// first, so callers can inspect a graph before committing to a plan.
func (g *Graph) Validate() []error {
	var problems []error
	for _, id := range g.IDs() {
		var missing []string
		for pre := range g.prereqs[id] {
			if _, ok := g.items[pre]; !ok {
				missing = append(missing, pre)
			}
		}
		sort.Strings(missing)
		for _, pre := range missing {
			problems = append(problems, fmt.Errorf("item '%s' depends on '%s': %w", id, pre, ErrUnknownItem))
		}
	}
	if _, err := g.TopologicalOrder(); err != nil {
		problems = append(problems, err)
	}
	return problems
}
