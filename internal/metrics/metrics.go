package metrics

import "time"

type ItemMetrics struct {
	ID         string    `json:"id"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	DurationMs int64     `json:"duration_ms"`
	Status     string    `json:"status"`
	Err        string    `json:"err,omitempty"`
}

type GroupMetrics struct {
	Group      int           `json:"group"`
	Start      time.Time     `json:"start"`
	End        time.Time     `json:"end"`
	DurationMs int64         `json:"duration_ms"`
	Items      []ItemMetrics `json:"items"`
}

type RunMetrics struct {
	RunID      string         `json:"run_id"`
	Start      time.Time      `json:"start"`
	End        time.Time      `json:"end"`
	DurationMs int64          `json:"duration_ms"`
	Succeeded  bool           `json:"succeeded"`
	Groups     []GroupMetrics `json:"groups"`

	// ParallelSpeedup compares the summed estimated cost of all plan items
	// against the measured wall clock of the run.
	ParallelSpeedup float64 `json:"parallel_speedup"`
}

// Compute derived fields for a group.
func (g *GroupMetrics) Finalize() {
	g.DurationMs = g.End.Sub(g.Start).Milliseconds()
}

// Compute derived fields for a run. totalCost is the summed estimated cost of
// every plan item, expressed in seconds.
func (r *RunMetrics) Finalize(totalCost float64) {
	r.DurationMs = r.End.Sub(r.Start).Milliseconds()
	if wall := r.End.Sub(r.Start).Seconds(); wall > 0 {
		r.ParallelSpeedup = totalCost / wall
	}
}
