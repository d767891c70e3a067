// Package commands implements the insight CLI.
package commands

import (
	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "insight",
	Short: "Futures position analysis pipeline",
	Long: `insight fetches futures position rankings and daily prices,
runs the signal strategies, and reports cross-strategy resonance.

Examples:
  insight analyze --date 20260830
  insight fetch --date 20260830
  insight cache evict --age 72h
  insight scheduler`,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
