package plan

import "fmt"

// CreateExecutionPlan builds a dependency graph from the given item specs,
// applies explicit edges, then lets each detection rule add inferred edges.
// Any cycle fails the whole call; an edge is never silently dropped to break
// one. The returned plan is immutable.
func CreateExecutionPlan(specs []ItemSpec, rules []DetectionRule) (*ExecutionPlan, error) {
	g := NewGraph()
	for _, s := range specs {
		item := WorkItem{
			ID:            s.ID,
			Title:         s.Title,
			Description:   s.Description,
			EstimatedCost: s.EstimatedCost,
			Dependencies:  append([]string(nil), s.DependsOn...),
		}
		if err := g.AddItem(item); err != nil {
			return nil, err
		}
	}

	for _, s := range specs {
		for _, dep := range s.DependsOn {
			if err := g.AddDependency(s.ID, dep); err != nil {
				return nil, err
			}
		}
	}

	// Inferred edges are additive on top of the explicit ones. A rule that
	// fires on an already-present edge is a no-op.
	for _, rule := range rules {
		for _, a := range specs {
			for _, b := range specs {
				if a.ID == b.ID {
					continue
				}
				if rule(a, b) {
					if err := g.AddDependency(a.ID, b.ID); err != nil {
						return nil, err
					}
				}
			}
		}
	}

	order, err := g.TopologicalOrder()
	if err != nil {
		return nil, fmt.Errorf("plan rejected: %w", err)
	}
	groups, err := g.ParallelGroups()
	if err != nil {
		return nil, err
	}
	critical, err := g.CriticalPath()
	if err != nil {
		return nil, err
	}

	deps := make(map[string][]string, g.Len())
	for _, id := range g.IDs() {
		deps[id] = g.Prerequisites(id)
	}

	return &ExecutionPlan{
		ExecutionOrder:    order,
		ParallelGroups:    groups,
		CriticalPath:      critical,
		Dependencies:      deps,
		EstimatedDuration: critical.Cost,
	}, nil
}

// Items materializes the mutable WorkItems for one execution run of the given
// specs. Each run gets fresh items so plan structures stay immutable.
func Items(specs []ItemSpec) map[string]*WorkItem {
	items := make(map[string]*WorkItem, len(specs))
	for _, s := range specs {
		items[s.ID] = &WorkItem{
			ID:            s.ID,
			Title:         s.Title,
			Description:   s.Description,
			EstimatedCost: s.EstimatedCost,
			Dependencies:  append([]string(nil), s.DependsOn...),
			Status:        StatusPending,
		}
	}
	return items
}
