package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/qihao/futures-insight/internal/scheduler"
	"github.com/qihao/futures-insight/internal/scheduler/jobs"
	"github.com/qihao/futures-insight/pkg/cache"
)

var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run the analysis scheduler daemon",
	Long: `Starts the scheduler with the daily analysis job and cache
maintenance, then blocks until interrupted.

Jobs:
  daily_analysis    - full analysis after the close (ANALYSIS_SCHEDULE)
  cache_maintenance - nightly eviction of stale cache entries`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := buildApp()
		if err != nil {
			return err
		}
		defer app.close()

		sched := scheduler.New(app.log)
		if err := sched.AddJob(jobs.NewDailyAnalysis(app.orchestrator, app.cfg.AnalysisSchedule, app.log)); err != nil {
			return err
		}
		maintenance := jobs.NewCacheMaintenance(
			[]cache.Store{app.store, app.summaryStore},
			3*app.cfg.DataTTL, "0 30 3 * * *", app.log)
		if err := sched.AddJob(maintenance); err != nil {
			return err
		}

		sched.Start()
		app.log.Info("scheduler running, press ctrl-c to stop")

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		sched.Stop()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schedulerCmd)
}
