package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var evictAge time.Duration

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Cache maintenance",
}

var cacheEvictCmd = &cobra.Command{
	Use:   "evict",
	Short: "Remove cache entries older than the given age",
	Long: `Removes expired cache files. The cache leaves expired entries in
place until evicted, so run this periodically or let the scheduler's
maintenance job handle it.

Example:
  insight cache evict --age 72h`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := buildApp()
		if err != nil {
			return err
		}
		defer app.close()

		removed, err := app.store.EvictOlderThan(context.Background(), evictAge)
		if err != nil {
			return err
		}
		summaries, err := app.summaryStore.EvictOlderThan(context.Background(), evictAge)
		if err != nil {
			return err
		}
		fmt.Printf("evicted %d entries older than %s\n", removed+summaries, evictAge)
		return nil
	},
}

func init() {
	cacheEvictCmd.Flags().DurationVar(&evictAge, "age", 72*time.Hour, "evict entries older than this")
	cacheCmd.AddCommand(cacheEvictCmd)
	rootCmd.AddCommand(cacheCmd)
}
