package display

import (
	"fmt"
	"sort"
	"strings"

	"overseer/internal/orchestrator"
	"overseer/internal/reflection"
)

const maxDescriptionLength = 100

// FormatSynthesis renders the merged analysis as a prioritized action list.
func FormatSynthesis(p *orchestrator.SynthesizedPlan) string {
	var sb strings.Builder
	sb.WriteString("Synthesized analysis:\n")
	sb.WriteString("--------------------------------------------------\n")

	if len(p.PrioritizedActions) == 0 {
		sb.WriteString("No findings.\n")
	}
	for i, f := range p.PrioritizedActions {
		desc := f.Description
		if len(desc) > maxDescriptionLength {
			desc = desc[:maxDescriptionLength] + "..."
		}
		sb.WriteString(fmt.Sprintf("%3d. [%s] %s:%d  %s  (%s, via %s)\n",
			i+1, strings.ToUpper(f.Severity.String()), f.File, f.Line, desc, f.Category, f.SourceAgent))
	}

	if len(p.Conflicts) > 0 {
		sb.WriteString(fmt.Sprintf("Conflicts (%d):\n", len(p.Conflicts)))
		for _, c := range p.Conflicts {
			sb.WriteString(fmt.Sprintf("  %s:%d\n", c.File, c.Line))
			for _, f := range c.Findings {
				sb.WriteString(fmt.Sprintf("    %s recommends: %s\n", f.SourceAgent, f.Recommendation))
			}
		}
	}

	keys := make([]string, 0, len(p.MetricsSummary))
	for k := range p.MetricsSummary {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	sb.WriteString("Metrics:\n")
	for _, k := range keys {
		sb.WriteString(fmt.Sprintf("  %s = %g\n", k, p.MetricsSummary[k]))
	}

	sb.WriteString(fmt.Sprintf("Health score: %.1f\n", p.HealthScore))
	sb.WriteString("--------------------------------------------------")
	return sb.String()
}

// FormatRecommendations renders the reflection engine's read-side report.
func FormatRecommendations(r *reflection.Recommendations) string {
	var sb strings.Builder
	sb.WriteString("Reflection recommendations:\n")
	sb.WriteString("--------------------------------------------------\n")

	empty := true
	if len(r.MiscalibratedBuckets) > 0 {
		empty = false
		sb.WriteString("Miscalibrated confidence:\n")
		for _, b := range r.MiscalibratedBuckets {
			sb.WriteString("  - " + b + "\n")
		}
	}
	if len(r.DecliningStrategies) > 0 {
		empty = false
		sb.WriteString("Declining strategies:\n")
		for _, s := range r.DecliningStrategies {
			sb.WriteString("  - " + s + "\n")
		}
	}
	if len(r.RecurringFailures) > 0 {
		empty = false
		sb.WriteString("Recurring failures:\n")
		for _, f := range r.RecurringFailures {
			sb.WriteString("  - " + f + "\n")
		}
	}
	if empty {
		sb.WriteString("Nothing stands out yet.\n")
	}
	sb.WriteString("--------------------------------------------------")
	return sb.String()
}
