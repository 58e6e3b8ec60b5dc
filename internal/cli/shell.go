package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"overseer/internal/display"
	"overseer/internal/listener"
	"overseer/internal/plan"
	"overseer/internal/reflection"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive session accepting plan, run, analyze, and history verbs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := listener.Init(); err != nil {
			return fmt.Errorf("init terminal input: %w", err)
		}
		defer listener.Close()

		listener.AsyncPrintln("overseer shell. Verbs: plan <items.json>, run <items.json>, analyze <dir>, history, exit.")

		for {
			input := listener.GetInput()
			if input == "" {
				continue
			}
			fields := strings.Fields(input)
			verb, rest := fields[0], fields[1:]

			switch verb {
			case "exit", "quit":
				return nil
			case "plan":
				shellPlan(rest)
			case "run":
				shellRun(cmd.Context(), rest)
			case "analyze":
				shellAnalyze(cmd.Context(), rest)
			case "history":
				shellHistory()
			case "help":
				listener.AsyncPrintln("Verbs: plan <items.json>, run <items.json>, analyze <dir>, history, exit.")
			default:
				listener.AsyncPrintln(fmt.Sprintf("Unknown verb %q. Try 'help'.", verb))
			}
		}
	},
}

func shellPlan(args []string) {
	if len(args) != 1 {
		listener.AsyncPrintln("Usage: plan <items.json>")
		return
	}
	specs, err := plan.LoadItemSpecs(args[0])
	if err != nil {
		listener.AsyncPrintln(err.Error())
		return
	}
	p, err := plan.CreateExecutionPlan(specs, nil)
	if err != nil {
		listener.AsyncPrintln(err.Error())
		return
	}
	listener.AsyncPrintln(display.FormatPlan(p, plan.Items(specs)))
}

// shellRun shows the plan, asks for confirmation, then executes in the
// background so the prompt stays responsive.
func shellRun(ctx context.Context, args []string) {
	if len(args) != 1 {
		listener.AsyncPrintln("Usage: run <items.json>")
		return
	}
	specs, err := plan.LoadItemSpecs(args[0])
	if err != nil {
		listener.AsyncPrintln(err.Error())
		return
	}
	p, err := plan.CreateExecutionPlan(specs, nil)
	if err != nil {
		listener.AsyncPrintln(err.Error())
		return
	}

	listener.AsyncPrintln(display.FormatPlan(p, plan.Items(specs)))
	if !listener.AskYesNo("Execute this plan?") {
		listener.AsyncPrintln("Run cancelled.")
		return
	}

	go func() {
		report, err := executePlan(ctx, p, plan.Items(specs))
		listener.AsyncPrintln(display.FormatExecutionReport(report))
		if err != nil {
			listener.AsyncPrintln(fmt.Sprintf("Run ended early: %v", err))
		}
	}()
}

func shellAnalyze(ctx context.Context, args []string) {
	if len(args) != 1 {
		listener.AsyncPrintln("Usage: analyze <dir>")
		return
	}
	target := args[0]
	go func() {
		synth, err := runAnalysis(ctx, target)
		if err != nil {
			listener.AsyncPrintln(err.Error())
			return
		}
		listener.AsyncPrintln(display.FormatSynthesis(synth))
	}()
}

func shellHistory() {
	store, err := reflection.NewFileStore(cfg.HistoryFile)
	if err != nil {
		listener.AsyncPrintln(err.Error())
		return
	}
	rec, err := reflection.NewEngine(store).Recommend()
	if err != nil {
		listener.AsyncPrintln(err.Error())
		return
	}
	listener.AsyncPrintln(display.FormatRecommendations(rec))
}
