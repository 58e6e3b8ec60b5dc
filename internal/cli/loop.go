package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"overseer/internal/executor"
	"overseer/internal/logger"
	"overseer/internal/loop"
	"overseer/internal/plan"
	"overseer/internal/reflection"
)

var (
	loopMaxIterations int
	loopTimeout       time.Duration
	loopMinHealth     float64
)

var loopCmd = &cobra.Command{
	Use:   "loop <items.json> <dir>",
	Short: "Drive run and analyze sessions until the health goal or a cap is hit",
	Long: `Loop repeatedly executes the plan and re-analyzes the directory, recording
every outcome in the reflection store. It starts on the parallel strategy and
falls back to sequential execution after three consecutive failures.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		specs, err := plan.LoadItemSpecs(args[0])
		if err != nil {
			return err
		}
		p, err := plan.CreateExecutionPlan(specs, nil)
		if err != nil {
			return err
		}
		target := args[1]

		store, err := reflection.NewFileStore(cfg.HistoryFile)
		if err != nil {
			return err
		}
		engine := reflection.NewEngine(store)

		minHealth := loopMinHealth
		if minHealth < 0 {
			minHealth = cfg.MinHealth
		}

		var lastHealth float64 = -1
		var lastRunClean bool

		policy := loop.PolicyFunc(func(ctx context.Context, state reflection.StrategyState) (*loop.Decision, error) {
			confidence := 0.5
			if state.Samples > 0 {
				confidence = state.SuccessRate
			}
			strategy := state.Strategy
			return &loop.Decision{
				ActionType: "run-and-analyze",
				Strategy:   strategy,
				Confidence: confidence,
				Apply: func(ctx context.Context) error {
					opts := executor.Options{Parallel: strategy == "parallel", MaxWorkers: cfg.Workers}
					report, err := executor.ExecutePlan(ctx, p, plan.Items(specs), rehearse(nil), opts)
					if err != nil {
						return err
					}
					lastRunClean = report.Failed == 0 && report.Skipped == 0

					synth, err := runAnalysis(ctx, target)
					if err != nil {
						return err
					}
					lastHealth = synth.HealthScore

					if !lastRunClean {
						return fmt.Errorf("run left %d failed, %d skipped", report.Failed, report.Skipped)
					}
					if lastHealth < minHealth {
						return fmt.Errorf("health %.1f below goal %.1f", lastHealth, minHealth)
					}
					return nil
				},
			}, nil
		})

		goal := func() bool { return lastRunClean && lastHealth >= minHealth }

		session := loop.New(engine, policy)
		result, err := session.Run(ctx, goal, loop.Options{
			MaxIterations: loopMaxIterations,
			Timeout:       loopTimeout,
			Strategies:    []string{"parallel", "sequential"},
		})
		if result != nil {
			printLoopResult(result)
			logger.Log.Printf("loop session %s: %s after %d iterations",
				result.SessionID, result.Outcome, result.Iterations)
		}
		if err != nil {
			return err
		}
		if result.Outcome != loop.OutcomeDone {
			return fmt.Errorf("session ended %s", result.Outcome)
		}
		return nil
	},
}

func printLoopResult(result *loop.Result) {
	fmt.Printf("Session %s: %s after %d iteration(s), final strategy %s\n",
		result.SessionID, result.Outcome, result.Iterations, result.FinalStrategy)
	for _, rec := range result.Trace {
		status := "ok"
		if !rec.Succeeded {
			status = "err"
		}
		line := fmt.Sprintf("  %2d. %-12s %-16s conf=%.2f [%s] %d ms",
			rec.Iteration, rec.Strategy, rec.ActionType, rec.Confidence, status, rec.DurationMs)
		if rec.Switched {
			line += "  -> switched strategy"
		}
		if rec.Err != "" {
			line += "  " + rec.Err
		}
		fmt.Println(line)
	}
}

func init() {
	loopCmd.Flags().IntVar(&loopMaxIterations, "max-iterations", 5, "hard cap on actions per session")
	loopCmd.Flags().DurationVar(&loopTimeout, "timeout", 5*time.Minute, "wall clock bound for the session")
	loopCmd.Flags().Float64Var(&loopMinHealth, "min-health", -1, "health goal (default from config)")
}
