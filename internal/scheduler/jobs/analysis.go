// Package jobs holds the concrete scheduled jobs.
package jobs

import (
	"context"
	"fmt"

	"github.com/qihao/futures-insight/internal/analysis"
	"github.com/qihao/futures-insight/internal/market"
	"github.com/qihao/futures-insight/pkg/logger"
	"github.com/qihao/futures-insight/pkg/progress"
)

// DailyAnalysis runs the full position analysis for the current trade
// date after the market close.
type DailyAnalysis struct {
	orchestrator *analysis.Orchestrator
	schedule     string
	log          *logger.Logger
}

func NewDailyAnalysis(orchestrator *analysis.Orchestrator, schedule string, log *logger.Logger) *DailyAnalysis {
	return &DailyAnalysis{orchestrator: orchestrator, schedule: schedule, log: log}
}

func (j *DailyAnalysis) Name() string     { return "daily_analysis" }
func (j *DailyAnalysis) Schedule() string { return j.schedule }

func (j *DailyAnalysis) Run(ctx context.Context) error {
	date := market.RecentTradeDate(0)
	summary, err := j.orchestrator.Run(ctx, date, progress.Nop)
	if err != nil {
		return fmt.Errorf("daily analysis for %s: %w", date, err)
	}

	j.log.WithFields(map[string]interface{}{
		"date":      summary.TradeDate,
		"contracts": summary.Statistics.Contracts,
		"long":      summary.Statistics.LongSignals,
		"short":     summary.Statistics.ShortSignals,
		"resonant":  summary.Statistics.ResonantSymbols,
	}).Info("daily analysis stored")
	return nil
}
