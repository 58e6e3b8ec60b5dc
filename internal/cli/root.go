// Package cli wires the overseer commands. Commands stay thin: they parse
// flags, call into the internal packages, and render through display.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"overseer/internal/config"
	"overseer/internal/logger"
	"overseer/internal/plan"
)

var (
	cfg        config.Config
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "overseer",
	Short: "Dependency-aware work scheduling and multi-agent analysis",
	Long: `Overseer plans work items into parallel execution groups, runs them with
bounded concurrency, fans analysis agents out over a codebase, and records
action outcomes so repeated sessions can adjust their strategy.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if err := logger.Init(cfg.LogFile); err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "config file")
	rootCmd.AddCommand(planCmd, runCmd, analyzeCmd, loopCmd, historyCmd, shellCmd, initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.WriteDefault(configPath); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", configPath)
		return nil
	},
}

// detectionRules returns the inferred-edge rules the planner applies on top
// of explicit depends_on edges. The mention rule adds "a depends on b" when
// a's description names b's id as a whole word.
func detectionRules(infer bool) []plan.DetectionRule {
	if !infer {
		return nil
	}
	return []plan.DetectionRule{
		func(a, b plan.ItemSpec) bool {
			return containsWord(a.Description, b.ID)
		},
	}
}

func containsWord(text, word string) bool {
	if word == "" {
		return false
	}
	for _, field := range strings.FieldsFunc(text, func(r rune) bool {
		return r == ' ' || r == ',' || r == '.' || r == ';' || r == ':' || r == '\n' || r == '\t'
	}) {
		if field == word {
			return true
		}
	}
	return false
}
