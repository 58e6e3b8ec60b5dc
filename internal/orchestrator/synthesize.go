package orchestrator

import (
	"fmt"
	"sort"

	"overseer/internal/agent"
)

// Conflict groups findings that share a location but disagree on the remedy.
type Conflict struct {
	File     string          `json:"file"`
	Line     int             `json:"line"`
	Findings []agent.Finding `json:"findings"`
}

// SynthesizedPlan is the merged, prioritized view over all agent reports.
// It is plain serializable data for external reporting layers.
type SynthesizedPlan struct {
	PrioritizedActions []agent.Finding    `json:"prioritized_actions"`
	Conflicts          []Conflict         `json:"conflicts"`
	MetricsSummary     map[string]float64 `json:"metrics_summary"`
	HealthScore        float64            `json:"health_score"`
}

// Synthesize merges findings across reports into one deterministic plan:
// identical inputs always produce identical output, which reporting layers
// rely on for caching and reproducible diffs. Reports with Err set contribute
// no findings but are counted in the metrics summary.
func Synthesize(reports []*agent.Report) *SynthesizedPlan {
	plan := &SynthesizedPlan{
		MetricsSummary: make(map[string]float64),
	}

	var failed int
	for _, r := range reports {
		if r.Err != "" {
			failed++
			continue
		}
		plan.PrioritizedActions = append(plan.PrioritizedActions, r.Findings...)
		for k, v := range r.Metrics {
			plan.MetricsSummary[r.Agent+"."+k] = v
		}
	}
	plan.MetricsSummary["agents_total"] = float64(len(reports))
	plan.MetricsSummary["agents_failed"] = float64(failed)

	sortFindings(plan.PrioritizedActions)
	plan.Conflicts = findConflicts(plan.PrioritizedActions)

	penalty := 0.0
	for _, f := range plan.PrioritizedActions {
		plan.MetricsSummary["findings."+f.Severity.String()]++
		penalty += f.Severity.Weight()
	}
	plan.HealthScore = clamp(100-penalty, 0, 100)
	return plan
}

// sortFindings orders by severity descending, then category, file, line. The
// trailing keys exist only to make equal-priority orderings byte-stable.
func sortFindings(findings []agent.Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		a, b := findings[i], findings[j]
		if a.Severity != b.Severity {
			return a.Severity > b.Severity
		}
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Description != b.Description {
			return a.Description < b.Description
		}
		return a.SourceAgent < b.SourceAgent
	})
}

// findConflicts groups findings by (file, line); a group whose members give
// more than one distinct recommendation becomes one Conflict entry.
func findConflicts(findings []agent.Finding) []Conflict {
	type location struct {
		file string
		line int
	}
	groups := make(map[location][]agent.Finding)
	for _, f := range findings {
		loc := location{f.File, f.Line}
		groups[loc] = append(groups[loc], f)
	}

	var conflicts []Conflict
	for loc, group := range groups {
		distinct := make(map[string]struct{})
		for _, f := range group {
			distinct[f.Recommendation] = struct{}{}
		}
		if len(distinct) > 1 {
			conflicts = append(conflicts, Conflict{File: loc.file, Line: loc.line, Findings: group})
		}
	}
	sort.Slice(conflicts, func(i, j int) bool {
		if conflicts[i].File != conflicts[j].File {
			return conflicts[i].File < conflicts[j].File
		}
		return conflicts[i].Line < conflicts[j].Line
	})
	return conflicts
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Summary returns a one-line description of the synthesized plan.
func (p *SynthesizedPlan) Summary() string {
	return fmt.Sprintf("%d findings, %d conflicts, health %.1f",
		len(p.PrioritizedActions), len(p.Conflicts), p.HealthScore)
}
