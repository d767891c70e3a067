package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qihao/futures-insight/internal/market"
)

var fetchDate string

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch position rankings without running the analysis",
	Long: `Fetches every source's position ranking for one trade date and
writes the per-exchange artifacts.

Example:
  insight fetch --date 20260830`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := buildApp()
		if err != nil {
			return err
		}
		defer app.close()

		date := fetchDate
		if date == "" {
			date = market.RecentTradeDate(0)
		}

		report, err := app.manager.FetchPositions(context.Background(), date,
			func(message string, fraction float64) {
				fmt.Printf("[%3.0f%%] %s\n", fraction*100, message)
			})
		if err != nil {
			return err
		}

		fmt.Println(report.String())
		for _, f := range report.Failed {
			fmt.Printf("  failed %s: %s\n", f.Source, f.Reason)
		}
		if !report.MeetsThreshold(app.cfg.Acquisition.MinSuccessRate) {
			return fmt.Errorf("success rate %.0f%% below threshold %.0f%%",
				report.SuccessRate()*100, app.cfg.Acquisition.MinSuccessRate*100)
		}
		return nil
	},
}

func init() {
	fetchCmd.Flags().StringVar(&fetchDate, "date", "", "trade date YYYYMMDD (default: today)")
	rootCmd.AddCommand(fetchCmd)
}
