package display

import (
	"fmt"
	"sort"
	"strings"

	"overseer/internal/executor"
)

// FormatExecutionReport renders the per-group and per-item timings of one run.
func FormatExecutionReport(r *executor.Report) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Run %s\n", r.RunID))
	sb.WriteString("--------------------------------------------------\n")

	if r.Metrics != nil {
		for _, gm := range r.Metrics.Groups {
			sb.WriteString(fmt.Sprintf("Group %d  (%d ms)\n", gm.Group+1, gm.DurationMs))
			lines := make([]string, 0, len(gm.Items))
			for _, im := range gm.Items {
				line := fmt.Sprintf("  - %-20s %-10s %5d ms", im.ID, im.Status, im.DurationMs)
				if im.Err != "" {
					line += "  " + im.Err
				}
				lines = append(lines, line)
			}
			// Workers finish in arbitrary order; render each group sorted.
			sort.Strings(lines)
			for _, line := range lines {
				sb.WriteString(line + "\n")
			}
		}
	}

	sb.WriteString(fmt.Sprintf("Completed: %d  Failed: %d  Skipped: %d\n",
		r.Completed, r.Failed, r.Skipped))
	if r.Cancelled {
		sb.WriteString("Run was cancelled before finishing.\n")
	}
	if r.Metrics != nil {
		sb.WriteString(fmt.Sprintf("Wall clock: %d ms  Parallel speedup: %.2fx\n",
			r.Metrics.DurationMs, r.Metrics.ParallelSpeedup))
	}
	sb.WriteString("--------------------------------------------------")
	return sb.String()
}
