package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"overseer/internal/agent"
	"overseer/internal/display"
	"overseer/internal/logger"
	"overseer/internal/orchestrator"
)

var (
	analyzeAgents    []string
	analyzeJSON      bool
	analyzeMinHealth float64
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <dir>",
	Short: "Run analysis agents over a directory and print the synthesized plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		synth, err := runAnalysis(ctx, args[0])
		if err != nil {
			return err
		}

		if analyzeJSON {
			data, err := json.MarshalIndent(synth, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
		} else {
			fmt.Println(display.FormatSynthesis(synth))
		}

		minHealth := analyzeMinHealth
		if minHealth < 0 {
			minHealth = cfg.MinHealth
		}
		if synth.HealthScore < minHealth {
			return fmt.Errorf("health score %.1f below threshold %.1f", synth.HealthScore, minHealth)
		}
		return nil
	},
}

// runAnalysis fans the selected agents out over target and synthesizes their
// reports. Shared by analyze, loop, and the shell.
func runAnalysis(ctx context.Context, target string) (*orchestrator.SynthesizedPlan, error) {
	names := analyzeAgents
	if len(names) == 0 {
		names = cfg.Agents
	}
	agents, err := agent.Builtin().Select(names)
	if err != nil {
		return nil, err
	}

	reports := orchestrator.Analyze(ctx, target, agents, orchestrator.Options{
		Parallel:   cfg.Parallel,
		MaxWorkers: cfg.Workers,
	})
	synth := orchestrator.Synthesize(reports)
	logger.Log.Printf("analyze %s: %s", target, synth.Summary())
	return synth, nil
}

func init() {
	analyzeCmd.Flags().StringSliceVar(&analyzeAgents, "agents", nil, "agents to run (default from config, empty means all)")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "print the synthesized plan as JSON")
	analyzeCmd.Flags().Float64Var(&analyzeMinHealth, "min-health", -1, "fail below this health score (default from config)")
}
