package display

import (
	"fmt"
	"strings"

	"overseer/internal/plan"
)

func FormatPlan(p *plan.ExecutionPlan, items map[string]*plan.WorkItem) string {
	var sb strings.Builder
	sb.WriteString("Proposed execution plan:\n")
	sb.WriteString("--------------------------------------------------\n")

	for gi, group := range p.ParallelGroups {
		sb.WriteString(fmt.Sprintf("Group %d:\n", gi+1))
		for _, id := range group {
			line := fmt.Sprintf("  - %s", id)
			if item := items[id]; item != nil {
				if item.Title != "" {
					line += fmt.Sprintf("  %s", item.Title)
				}
				line += fmt.Sprintf("  (cost=%.1f", item.EstimatedCost)
				if deps := p.Dependencies[id]; len(deps) > 0 {
					line += fmt.Sprintf(", after %s", strings.Join(deps, ", "))
				}
				line += ")"
			}
			sb.WriteString(line + "\n")
		}
	}

	sb.WriteString(fmt.Sprintf("Critical path: %s  (cost=%.1f)\n",
		strings.Join(p.CriticalPath.Items, " -> "), p.CriticalPath.Cost))
	sb.WriteString(fmt.Sprintf("Estimated duration (unlimited workers): %.1f\n", p.EstimatedDuration))
	sb.WriteString("--------------------------------------------------")
	return sb.String()
}
