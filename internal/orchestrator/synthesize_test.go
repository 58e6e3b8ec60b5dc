package orchestrator

import (
	"encoding/json"
	"testing"

	"overseer/internal/agent"
)

func sampleReports() []*agent.Report {
	return []*agent.Report{
		{
			Agent: "security",
			Findings: []agent.Finding{
				{Severity: agent.SeverityMedium, Category: "security/tls", File: "b.go", Line: 3, Recommendation: "enable verification", SourceAgent: "security"},
				{Severity: agent.SeverityCritical, Category: "security/secrets", File: "a.go", Line: 10, Recommendation: "rotate the key", SourceAgent: "security"},
			},
			Metrics: map[string]float64{"files_scanned": 2},
		},
		{
			Agent: "hygiene",
			Findings: []agent.Finding{
				{Severity: agent.SeverityLow, Category: "hygiene/todo", File: "a.go", Line: 4, Recommendation: "resolve the marker", SourceAgent: "hygiene"},
			},
			Metrics: map[string]float64{"files_scanned": 2},
		},
	}
}

func TestSynthesizeIsDeterministic(t *testing.T) {
	first, err := json.Marshal(Synthesize(sampleReports()))
	if err != nil {
		t.Fatal(err)
	}
	second, err := json.Marshal(Synthesize(sampleReports()))
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != string(second) {
		t.Errorf("synthesize is not byte-stable:\n first:  %s\n second: %s", first, second)
	}
}

func TestSynthesizePrioritizesBySeverity(t *testing.T) {
	plan := Synthesize(sampleReports())
	if len(plan.PrioritizedActions) != 3 {
		t.Fatalf("expected 3 findings, got %d", len(plan.PrioritizedActions))
	}
	for i := 1; i < len(plan.PrioritizedActions); i++ {
		if plan.PrioritizedActions[i].Severity > plan.PrioritizedActions[i-1].Severity {
			t.Errorf("findings not sorted by severity desc at index %d", i)
		}
	}
	if plan.PrioritizedActions[0].Category != "security/secrets" {
		t.Errorf("critical finding should sort first, got %+v", plan.PrioritizedActions[0])
	}
}

func TestHealthScore(t *testing.T) {
	empty := Synthesize(nil)
	if empty.HealthScore != 100 {
		t.Errorf("zero findings should score 100, got %v", empty.HealthScore)
	}

	// Health never increases as findings accumulate, and stays within [0,100].
	var findings []agent.Finding
	previous := 100.0
	for i := 0; i < 30; i++ {
		findings = append(findings, agent.Finding{Severity: agent.SeverityHigh, Category: "x", File: "f.go", Line: i})
		plan := Synthesize([]*agent.Report{{Agent: "a", Findings: findings}})
		if plan.HealthScore > previous {
			t.Fatalf("health score increased after adding a finding: %v -> %v", previous, plan.HealthScore)
		}
		if plan.HealthScore < 0 || plan.HealthScore > 100 {
			t.Fatalf("health score out of bounds: %v", plan.HealthScore)
		}
		previous = plan.HealthScore
	}
	if previous != 0 {
		t.Errorf("30 high findings should floor the score at 0, got %v", previous)
	}
}

func TestConflictDetection(t *testing.T) {
	reports := []*agent.Report{
		{Agent: "a", Findings: []agent.Finding{
			{Severity: agent.SeverityHigh, File: "x.go", Line: 5, Recommendation: "delete the block", SourceAgent: "a"},
			{Severity: agent.SeverityMedium, File: "y.go", Line: 7, Recommendation: "same advice", SourceAgent: "a"},
		}},
		{Agent: "b", Findings: []agent.Finding{
			{Severity: agent.SeverityLow, File: "x.go", Line: 5, Recommendation: "rewrite the block", SourceAgent: "b"},
			{Severity: agent.SeverityLow, File: "y.go", Line: 7, Recommendation: "same advice", SourceAgent: "b"},
		}},
	}

	plan := Synthesize(reports)
	if len(plan.Conflicts) != 1 {
		t.Fatalf("expected exactly 1 conflict, got %d", len(plan.Conflicts))
	}
	c := plan.Conflicts[0]
	if c.File != "x.go" || c.Line != 5 {
		t.Errorf("conflict at wrong location: %s:%d", c.File, c.Line)
	}
	if len(c.Findings) != 2 {
		t.Errorf("conflict should reference both findings, got %d", len(c.Findings))
	}
}

func TestSynthesizeMetricsSummary(t *testing.T) {
	reports := sampleReports()
	reports = append(reports, &agent.Report{Agent: "broken", Err: "boom"})

	plan := Synthesize(reports)
	if plan.MetricsSummary["agents_total"] != 3 {
		t.Errorf("agents_total: %v", plan.MetricsSummary["agents_total"])
	}
	if plan.MetricsSummary["agents_failed"] != 1 {
		t.Errorf("agents_failed: %v", plan.MetricsSummary["agents_failed"])
	}
	if plan.MetricsSummary["security.files_scanned"] != 2 {
		t.Errorf("per-agent metric missing: %v", plan.MetricsSummary)
	}
	if plan.MetricsSummary["findings.critical"] != 1 {
		t.Errorf("severity counts missing: %v", plan.MetricsSummary)
	}
}
