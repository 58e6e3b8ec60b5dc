// Package orchestrator fans a target out to analysis agents and folds their
// reports into one prioritized plan.
package orchestrator

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"overseer/internal/agent"
)

const defaultMaxWorkers = 4

// Options controls how Analyze dispatches agents.
type Options struct {
	Parallel   bool
	MaxWorkers int
}

// Analyze runs every agent against the target, sequentially or via a bounded
// worker pool. A failing or panicking agent is converted into a report with
// Err set and never aborts the remaining agents. One report is returned per
// agent, ordered by agent name.
func Analyze(ctx context.Context, target string, agents []agent.Agent, opts Options) []*agent.Report {
	if len(agents) == 0 {
		return nil
	}

	reports := make([]*agent.Report, 0, len(agents))
	if !opts.Parallel {
		for _, a := range agents {
			reports = append(reports, runAgent(ctx, a, target))
		}
	} else {
		workers := opts.MaxWorkers
		if workers <= 0 {
			workers = defaultMaxWorkers
		}

		var mu sync.Mutex
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(workers)
		for _, a := range agents {
			ag := a
			g.Go(func() error {
				report := runAgent(gctx, ag, target)
				mu.Lock()
				reports = append(reports, report)
				mu.Unlock()
				return nil
			})
		}
		// Workers never return errors; Wait is the fan-in barrier.
		_ = g.Wait()
	}

	sort.Slice(reports, func(i, j int) bool { return reports[i].Agent < reports[j].Agent })
	return reports
}

// runAgent isolates one agent run: its error or panic becomes Report.Err.
func runAgent(ctx context.Context, a agent.Agent, target string) (report *agent.Report) {
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			report = &agent.Report{
				Agent:    a.Name(),
				Duration: time.Since(start),
				Err:      fmt.Sprintf("panic: %v", rec),
			}
		}
	}()

	report, err := a.Analyze(ctx, target)
	if err != nil {
		return &agent.Report{
			Agent:    a.Name(),
			Duration: time.Since(start),
			Err:      err.Error(),
		}
	}
	if report == nil {
		return &agent.Report{
			Agent:    a.Name(),
			Duration: time.Since(start),
			Err:      "agent returned no report",
		}
	}
	report.Agent = a.Name()
	return report
}
