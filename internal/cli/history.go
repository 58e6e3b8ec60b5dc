package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"overseer/internal/display"
	"overseer/internal/reflection"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Summarize the reflection log and print recommendations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := reflection.NewFileStore(cfg.HistoryFile)
		if err != nil {
			return err
		}
		records, err := store.All()
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Println("No recorded outcomes yet.")
			return nil
		}

		var successes int
		for _, r := range records {
			if r.Success {
				successes++
			}
		}
		fmt.Printf("%d recorded outcomes, %d succeeded (%.0f%%)\n",
			len(records), successes, 100*float64(successes)/float64(len(records)))

		engine := reflection.NewEngine(store)
		rec, err := engine.Recommend()
		if err != nil {
			return err
		}
		fmt.Println(display.FormatRecommendations(rec))
		return nil
	},
}
