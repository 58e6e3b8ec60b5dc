package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"overseer/internal/display"
	"overseer/internal/executor"
	"overseer/internal/logger"
	"overseer/internal/plan"
)

var (
	runFail       []string
	runWorkers    int
	runSequential bool
	runInfer      bool
	runScale      time.Duration
)

var runCmd = &cobra.Command{
	Use:   "run <items.json>",
	Short: "Plan a set of work items and execute it with a rehearsal worker",
	Long: `Run plans the items and executes the groups with a rehearsal work function
that sleeps proportionally to each item's estimated cost. Use --fail to force
specific items to fail and watch the skip propagation.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		specs, err := plan.LoadItemSpecs(args[0])
		if err != nil {
			return err
		}
		p, err := plan.CreateExecutionPlan(specs, detectionRules(runInfer))
		if err != nil {
			return err
		}
		fmt.Println(display.FormatPlan(p, plan.Items(specs)))

		report, err := executePlan(ctx, p, plan.Items(specs))
		fmt.Println(display.FormatExecutionReport(report))
		if err != nil {
			return fmt.Errorf("run cancelled: %w", err)
		}
		return nil
	},
}

// executePlan runs the plan with the rehearsal work function and the
// configured worker bounds. Shared by run, loop, and the shell.
func executePlan(ctx context.Context, p *plan.ExecutionPlan, items map[string]*plan.WorkItem) (*executor.Report, error) {
	failSet := make(map[string]struct{}, len(runFail))
	for _, id := range runFail {
		failSet[id] = struct{}{}
	}

	opts := executor.Options{
		Parallel:   cfg.Parallel && !runSequential,
		MaxWorkers: cfg.Workers,
	}
	if runWorkers > 0 {
		opts.MaxWorkers = runWorkers
	}

	report, err := executor.ExecutePlan(ctx, p, items, rehearse(failSet), opts)
	logger.Log.Printf("run %s: completed=%d failed=%d skipped=%d cancelled=%v",
		report.RunID, report.Completed, report.Failed, report.Skipped, report.Cancelled)
	return report, err
}

// rehearse builds a work function that sleeps runScale per unit of estimated
// cost, failing the items named in failSet.
func rehearse(failSet map[string]struct{}) executor.WorkFunc {
	return func(ctx context.Context, item *plan.WorkItem) error {
		d := time.Duration(item.EstimatedCost * float64(runScale))
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return ctx.Err()
		}
		if _, forced := failSet[item.ID]; forced {
			return errors.New("forced failure")
		}
		return nil
	}
}

func init() {
	runCmd.Flags().StringSliceVar(&runFail, "fail", nil, "item ids forced to fail")
	runCmd.Flags().IntVar(&runWorkers, "workers", 0, "max concurrent items per group (default from config)")
	runCmd.Flags().BoolVar(&runSequential, "sequential", false, "run one item at a time")
	runCmd.Flags().BoolVar(&runInfer, "infer", false, "infer edges from description mentions")
	runCmd.Flags().DurationVar(&runScale, "scale", 50*time.Millisecond, "sleep per unit of estimated cost")
}
