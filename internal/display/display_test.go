package display

import (
	"strings"
	"testing"
	"time"

	"overseer/internal/agent"
	"overseer/internal/executor"
	"overseer/internal/metrics"
	"overseer/internal/orchestrator"
	"overseer/internal/plan"
	"overseer/internal/reflection"
)

func TestFormatPlan(t *testing.T) {
	p := &plan.ExecutionPlan{
		ExecutionOrder: []string{"build", "test", "package"},
		ParallelGroups: [][]string{{"build"}, {"test", "package"}},
		CriticalPath:   plan.CriticalPath{Items: []string{"build", "test"}, Cost: 7},
		Dependencies: map[string][]string{
			"test":    {"build"},
			"package": {"build"},
		},
		EstimatedDuration: 7,
	}
	items := map[string]*plan.WorkItem{
		"build":   {ID: "build", Title: "Compile sources", EstimatedCost: 3},
		"test":    {ID: "test", Title: "Run unit tests", EstimatedCost: 4},
		"package": {ID: "package", Title: "Bundle artifacts", EstimatedCost: 2},
	}

	out := FormatPlan(p, items)

	for _, want := range []string{
		"Proposed execution plan",
		"Group 1:",
		"Group 2:",
		"build",
		"Compile sources",
		"after build",
		"Critical path: build -> test",
		"cost=7.0",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("plan output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatExecutionReport(t *testing.T) {
	r := &executor.Report{
		RunID: "ab12cd34",
		Statuses: map[string]plan.Status{
			"build": plan.StatusCompleted,
			"test":  plan.StatusFailed,
		},
		Completed: 1,
		Failed:    1,
		Metrics: &metrics.RunMetrics{
			RunID:           "ab12cd34",
			DurationMs:      1500,
			ParallelSpeedup: 2.5,
			Groups: []metrics.GroupMetrics{
				{
					Group:      0,
					DurationMs: 900,
					Items: []metrics.ItemMetrics{
						{ID: "build", Status: "COMPLETED", DurationMs: 900},
					},
				},
				{
					Group:      1,
					DurationMs: 600,
					Items: []metrics.ItemMetrics{
						{ID: "test", Status: "FAILED", DurationMs: 600, Err: "exit 1"},
					},
				},
			},
		},
	}

	out := FormatExecutionReport(r)

	for _, want := range []string{
		"Run ab12cd34",
		"Group 1",
		"Group 2",
		"build",
		"FAILED",
		"exit 1",
		"Completed: 1  Failed: 1  Skipped: 0",
		"speedup: 2.50x",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "cancelled") {
		t.Error("non-cancelled run should not mention cancellation")
	}
}

func TestFormatSynthesis(t *testing.T) {
	p := orchestrator.Synthesize([]*agent.Report{
		{
			Agent:    "security",
			Duration: time.Second,
			Findings: []agent.Finding{
				{
					Severity:       agent.SeverityCritical,
					Category:       "secrets",
					File:           "main.go",
					Line:           10,
					Description:    "hardcoded credential",
					Recommendation: "move to env",
					SourceAgent:    "security",
				},
			},
			Metrics: map[string]float64{"files_scanned": 3},
		},
	})

	out := FormatSynthesis(p)

	for _, want := range []string{
		"Synthesized analysis",
		"[CRITICAL]",
		"main.go:10",
		"hardcoded credential",
		"security.files_scanned = 3",
		"Health score: 90.0",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("synthesis output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatRecommendations(t *testing.T) {
	out := FormatRecommendations(&reflection.Recommendations{
		DecliningStrategies: []string{"greedy"},
		RecurringFailures:   []string{"fix failed 4 times"},
	})
	for _, want := range []string{"greedy", "fix failed 4 times"} {
		if !strings.Contains(out, want) {
			t.Errorf("recommendations output missing %q:\n%s", want, out)
		}
	}

	empty := FormatRecommendations(&reflection.Recommendations{})
	if !strings.Contains(empty, "Nothing stands out yet") {
		t.Errorf("empty recommendations should say so:\n%s", empty)
	}
}
