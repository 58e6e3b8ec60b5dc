// Package executor drives an ExecutionPlan group by group. What "doing the
// work" means is the caller's business: the executor only schedules, observes
// outcomes, and propagates failures to dependents.
package executor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"overseer/internal/metrics"
	"overseer/internal/plan"
)

const defaultMaxWorkers = 8

// WorkFunc performs one work item. A returned error marks the item failed.
// Per-item timeouts are the work function's responsibility; a timed-out item
// is treated like any other failed one.
type WorkFunc func(ctx context.Context, item *plan.WorkItem) error

type Options struct {
	Parallel   bool
	MaxWorkers int
}

// Report describes one run of a plan.
type Report struct {
	RunID     string                 `json:"run_id"`
	Statuses  map[string]plan.Status `json:"statuses"`
	Errors    map[string]string      `json:"errors,omitempty"`
	Completed int                    `json:"completed"`
	Failed    int                    `json:"failed"`
	Skipped   int                    `json:"skipped"`
	Cancelled bool                   `json:"cancelled"`
	Metrics   *metrics.RunMetrics    `json:"metrics"`
}

// ExecutePlan runs the plan's parallel groups in order, waiting for each
// group to fully resolve before the next starts; later groups rely on that
// barrier to assume earlier dependencies are satisfied.
//
// Within a group up to MaxWorkers items run concurrently. A failing item does
// not block its siblings, but every item whose transitive dependency failed
// is marked Skipped and never invoked. Cancellation is observed at each group
// boundary and before each dispatch; in-flight items finish naturally.
//
// Item failures degrade the report, they do not error the call. The returned
// error is non-nil only when the context was cancelled.
func ExecutePlan(ctx context.Context, p *plan.ExecutionPlan, items map[string]*plan.WorkItem, workFn WorkFunc, opts Options) (*Report, error) {
	report := &Report{
		RunID:    uuid.New().String()[:8],
		Statuses: make(map[string]plan.Status, len(items)),
		Errors:   make(map[string]string),
		Metrics:  &metrics.RunMetrics{Start: time.Now()},
	}
	report.Metrics.RunID = report.RunID

	var totalCost float64
	for _, item := range items {
		totalCost += item.EstimatedCost
	}

	workers := opts.MaxWorkers
	if workers <= 0 {
		workers = defaultMaxWorkers
	}
	if !opts.Parallel {
		workers = 1
	}

	// Ids whose failure or skip poisons their dependents. The set grows as
	// groups resolve, which makes the propagation transitive across every
	// later group.
	poisoned := make(map[string]struct{})

	var mu sync.Mutex // guards poisoned, report maps, and group metrics

	for gi, group := range p.ParallelGroups {
		if ctx.Err() != nil {
			report.Cancelled = true
			skipRemaining(p.ParallelGroups[gi:], items, report)
			break
		}

		gm := metrics.GroupMetrics{Group: gi, Start: time.Now()}
		var g errgroup.Group
		g.SetLimit(workers)

		for _, id := range group {
			item := items[id]

			// Items in one group never depend on each other, so the poisoned
			// set only ever names ids from fully resolved earlier groups.
			// The lock still matters: workers of this group append to the
			// same report and metrics.
			mu.Lock()
			if item == nil {
				report.Errors[id] = "item missing from run set"
				poisoned[id] = struct{}{}
				mu.Unlock()
				continue
			}
			if blocked := blockedBy(p.Dependencies[id], poisoned); blocked != "" {
				item.Status = plan.StatusSkipped
				poisoned[id] = struct{}{}
				report.Statuses[id] = plan.StatusSkipped
				report.Errors[id] = fmt.Sprintf("skipped: dependency '%s' did not complete", blocked)
				gm.Items = append(gm.Items, metrics.ItemMetrics{ID: id, Status: string(plan.StatusSkipped)})
				mu.Unlock()
				continue
			}
			if ctx.Err() != nil {
				report.Cancelled = true
				item.Status = plan.StatusSkipped
				poisoned[id] = struct{}{}
				report.Statuses[id] = plan.StatusSkipped
				mu.Unlock()
				continue
			}
			item.Status = plan.StatusReady
			mu.Unlock()
			g.Go(func() error {
				im := metrics.ItemMetrics{ID: item.ID, Start: time.Now()}

				item.Status = plan.StatusRunning
				err := invoke(ctx, workFn, item)
				im.End = time.Now()
				im.DurationMs = im.End.Sub(im.Start).Milliseconds()

				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					item.Status = plan.StatusFailed
					poisoned[item.ID] = struct{}{}
					report.Statuses[item.ID] = plan.StatusFailed
					report.Errors[item.ID] = err.Error()
					im.Err = err.Error()
				} else {
					item.Status = plan.StatusCompleted
					report.Statuses[item.ID] = plan.StatusCompleted
				}
				im.Status = string(item.Status)
				gm.Items = append(gm.Items, im)
				return nil
			})
		}

		// Barrier: the whole group resolves before the next starts.
		_ = g.Wait()

		gm.End = time.Now()
		gm.Finalize()
		report.Metrics.Groups = append(report.Metrics.Groups, gm)
	}

	for _, status := range report.Statuses {
		switch status {
		case plan.StatusCompleted:
			report.Completed++
		case plan.StatusFailed:
			report.Failed++
		case plan.StatusSkipped:
			report.Skipped++
		}
	}

	report.Metrics.End = time.Now()
	report.Metrics.Succeeded = report.Failed == 0 && report.Skipped == 0 && !report.Cancelled
	report.Metrics.Finalize(totalCost)

	if report.Cancelled {
		return report, context.Cause(ctx)
	}
	return report, nil
}

// invoke runs the work function with panic isolation so one bad item cannot
// take down the run.
func invoke(ctx context.Context, workFn WorkFunc, item *plan.WorkItem) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic in work item '%s': %v", item.ID, rec)
		}
	}()
	return workFn(ctx, item)
}

// blockedBy returns the first poisoned prerequisite, or "".
func blockedBy(deps []string, poisoned map[string]struct{}) string {
	for _, dep := range deps {
		if _, bad := poisoned[dep]; bad {
			return dep
		}
	}
	return ""
}

// skipRemaining marks every not-yet-resolved item of the remaining groups as
// skipped after cancellation was observed at a group boundary.
func skipRemaining(groups [][]string, items map[string]*plan.WorkItem, report *Report) {
	for _, group := range groups {
		for _, id := range group {
			if _, resolved := report.Statuses[id]; resolved {
				continue
			}
			if item := items[id]; item != nil {
				item.Status = plan.StatusSkipped
			}
			report.Statuses[id] = plan.StatusSkipped
		}
	}
}
