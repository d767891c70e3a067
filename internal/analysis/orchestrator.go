// Package analysis runs the full pipeline: acquisition, strategies,
// term structure, and resonance, folded into one summary.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/qihao/futures-insight/internal/acquire"
	"github.com/qihao/futures-insight/internal/market"
	"github.com/qihao/futures-insight/internal/resonance"
	"github.com/qihao/futures-insight/internal/source"
	"github.com/qihao/futures-insight/internal/strategy"
	"github.com/qihao/futures-insight/internal/termstructure"
	"github.com/qihao/futures-insight/pkg/cache"
	"github.com/qihao/futures-insight/pkg/config"
	"github.com/qihao/futures-insight/pkg/logger"
	"github.com/qihao/futures-insight/pkg/progress"
)

// Stage completion fractions reported to the progress sink.
const (
	fractionPositions = 0.1
	fractionPrices    = 0.6
	fractionSnapshots = 0.8
	fractionSignals   = 0.9
	fractionCurves    = 0.95
	fractionDone      = 1.0
)

// Orchestrator drives one analysis run end to end. Partial upstream
// failures degrade the summary; only a run with zero usable position
// sources aborts.
type Orchestrator struct {
	cfg       *config.Config
	registry  *source.Registry
	manager   *acquire.Manager
	artifacts *acquire.ArtifactStore
	engine    *strategy.Engine
	term      *termstructure.Analyzer
	store     cache.Store // nil disables summary caching
	log       *logger.Logger
}

// New wires an orchestrator from already-constructed parts.
func New(cfg *config.Config, registry *source.Registry, manager *acquire.Manager,
	artifacts *acquire.ArtifactStore, engine *strategy.Engine,
	term *termstructure.Analyzer, store cache.Store, log *logger.Logger) *Orchestrator {
	return &Orchestrator{
		cfg:       cfg,
		registry:  registry,
		manager:   manager,
		artifacts: artifacts,
		engine:    engine,
		term:      term,
		store:     store,
		log:       log,
	}
}

// Run analyzes one trade date. The progress sink may be nil; reports
// pass through a relay so slow sinks never stall the pipeline.
func (o *Orchestrator) Run(ctx context.Context, date string, report progress.Func) (*Summary, error) {
	if err := market.ValidateTradeDate(date); err != nil {
		return nil, err
	}
	if report == nil {
		report = progress.Nop
	}
	relay := progress.NewRelay(report)
	defer relay.Close()

	if summary, ok := o.cachedSummary(ctx, date); ok {
		relay.Report("serving cached analysis", fractionDone)
		return summary, nil
	}

	relay.Report("fetching position rankings", fractionPositions)
	posReport, err := o.manager.FetchPositions(ctx, date,
		progress.Scaled(relay.Report, fractionPositions, fractionPrices))
	if err != nil {
		return nil, err
	}
	if len(posReport.Succeeded) == 0 {
		return nil, fmt.Errorf("%w: no position source yielded data for %s",
			market.ErrEmptyResult, date)
	}
	if !posReport.MeetsThreshold(o.cfg.Acquisition.MinSuccessRate) {
		o.log.WithFields(map[string]interface{}{
			"rate":      posReport.SuccessRate(),
			"threshold": o.cfg.Acquisition.MinSuccessRate,
		}).Warn("position acquisition below success threshold, continuing degraded")
	}

	relay.Report("fetching daily prices", fractionPrices)
	prices, err := o.manager.FetchPrices(ctx, date,
		progress.Scaled(relay.Report, fractionPrices, fractionSnapshots))
	if err != nil {
		o.log.WithError(err).Warn("price acquisition failed, term structure will be skipped")
		prices = &market.PriceTable{TradeDate: date}
	}

	relay.Report("loading position artifacts", fractionSnapshots)
	snapshots, err := o.loadSnapshots(date)
	if err != nil {
		return nil, err
	}

	relay.Report("running strategies", fractionSignals)
	signals := o.engine.Evaluate(ctx, snapshots)

	relay.Report("analyzing term structure", fractionCurves)
	var curves []market.TermStructureResult
	var skipped []string
	if prices.Empty() {
		o.log.Info("no daily prices available, skipping term structure")
	} else {
		curves, skipped = o.term.Analyze(prices)
	}

	res := resonance.Aggregate(signals)
	summary := &Summary{
		TradeDate:     date,
		GeneratedAt:   time.Now().UTC(),
		RetailSeats:   o.cfg.RetailSeats,
		Boards:        buildBoards(signals),
		Resonance:     res,
		TermStructure: curves,
		Statistics:    buildStatistics(len(snapshots), signals, res),
		FailedSources: posReport.Failed,
		SkippedVars:   skipped,
	}

	o.cacheSummary(ctx, date, summary)
	relay.Report("analysis complete", fractionDone)

	o.log.WithFields(map[string]interface{}{
		"date":      date,
		"contracts": summary.Statistics.Contracts,
		"long":      summary.Statistics.LongSignals,
		"short":     summary.Statistics.ShortSignals,
	}).Info("analysis run finished")
	return summary, nil
}

// loadSnapshots flattens every available artifact for the date. Sources
// without an artifact, including ones that failed this run, are skipped.
func (o *Orchestrator) loadSnapshots(date string) ([]market.ContractSnapshot, error) {
	names := make([]string, 0, o.registry.Len())
	for _, desc := range o.registry.Sources() {
		names = append(names, desc.Name)
	}

	byExchange, err := o.artifacts.LoadDate(names, date)
	if err != nil {
		return nil, err
	}

	var snapshots []market.ContractSnapshot
	for _, name := range names {
		snapshots = append(snapshots, byExchange[name]...)
	}
	return snapshots, nil
}

func summaryKey(date string) string {
	return cache.Key("analysis_summary", date)
}

func (o *Orchestrator) cachedSummary(ctx context.Context, date string) (*Summary, bool) {
	if o.store == nil {
		return nil, false
	}
	data, ok, err := o.store.Get(ctx, summaryKey(date))
	if err != nil || !ok {
		return nil, false
	}
	var summary Summary
	if err := json.Unmarshal(data, &summary); err != nil {
		o.log.WithError(err).Debug("cached summary unreadable")
		return nil, false
	}
	return &summary, true
}

func (o *Orchestrator) cacheSummary(ctx context.Context, date string, summary *Summary) {
	if o.store == nil {
		return
	}
	data, err := json.Marshal(summary)
	if err != nil {
		return
	}
	if err := o.store.Put(ctx, summaryKey(date), data); err != nil {
		o.log.WithError(err).Debug("summary cache write failed")
	}
}
