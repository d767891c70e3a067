package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/qihao/futures-insight/internal/market"
)

var (
	analyzeDate string
	analyzeJSON bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the full analysis for one trade date",
	Long: `Fetches position rankings and daily prices, runs every strategy,
classifies term structures, and prints the resonance report.

Example:
  insight analyze --date 20260830
  insight analyze --date 20260830 --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := buildApp()
		if err != nil {
			return err
		}
		defer app.close()

		date := analyzeDate
		if date == "" {
			date = market.RecentTradeDate(0)
		}

		progress := func(message string, fraction float64) {
			if !analyzeJSON {
				fmt.Fprintf(os.Stderr, "[%3.0f%%] %s\n", fraction*100, message)
			}
		}

		summary, err := app.orchestrator.Run(context.Background(), date, progress)
		if err != nil {
			return err
		}

		if analyzeJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(summary)
		}

		printSummary(summary)
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeDate, "date", "", "trade date YYYYMMDD (default: today)")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "emit the raw summary as JSON")
	rootCmd.AddCommand(analyzeCmd)
}
