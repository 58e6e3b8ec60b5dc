package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"overseer/internal/display"
	"overseer/internal/plan"
)

var (
	planJSON  bool
	planInfer bool
)

var planCmd = &cobra.Command{
	Use:   "plan <items.json>",
	Short: "Build and print the execution plan for a set of work items",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		specs, err := plan.LoadItemSpecs(args[0])
		if err != nil {
			return err
		}
		p, err := plan.CreateExecutionPlan(specs, detectionRules(planInfer))
		if err != nil {
			return err
		}

		if planJSON {
			data, err := json.MarshalIndent(p, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		}
		fmt.Println(display.FormatPlan(p, plan.Items(specs)))
		return nil
	},
}

func init() {
	planCmd.Flags().BoolVar(&planJSON, "json", false, "print the raw plan as JSON")
	planCmd.Flags().BoolVar(&planInfer, "infer", false, "infer edges from description mentions")
}
