// Package strategy holds the position-analysis strategies and the
// engine that runs them across contracts.
package strategy

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/qihao/futures-insight/internal/market"
	"github.com/qihao/futures-insight/pkg/logger"
)

// Strategy derives one signal from one contract snapshot. Pure: no
// shared state, identical input yields an identical signal.
type Strategy interface {
	Name() string
	Evaluate(snap *market.ContractSnapshot) market.StrategySignal
}

// Engine evaluates every registered strategy over every contract.
type Engine struct {
	strategies []Strategy
	workers    int
	log        *logger.Logger
}

// NewEngine builds an engine. workers bounds concurrent contract
// evaluation; <=0 means one worker per contract.
func NewEngine(log *logger.Logger, workers int, strategies ...Strategy) *Engine {
	return &Engine{strategies: strategies, workers: workers, log: log}
}

// Strategies returns the registered strategy names in order.
func (e *Engine) Strategies() []string {
	names := make([]string, len(e.strategies))
	for i, s := range e.strategies {
		names[i] = s.Name()
	}
	return names
}

// Evaluate runs all strategies over the given snapshots. Contracts are
// evaluated concurrently; output is grouped by strategy name and ordered
// by contract key, so identical input produces identical output. A
// strategy panic degrades only that contract's signal to an error
// direction.
func (e *Engine) Evaluate(ctx context.Context, snapshots []market.ContractSnapshot) map[string][]market.StrategySignal {
	ordered := make([]market.ContractSnapshot, len(snapshots))
	copy(ordered, snapshots)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Key() < ordered[j].Key()
	})

	// signals[contract][strategy], filled concurrently without overlap.
	signals := make([][]market.StrategySignal, len(ordered))
	for i := range signals {
		signals[i] = make([]market.StrategySignal, len(e.strategies))
	}

	workers := e.workers
	if workers <= 0 || workers > len(ordered) {
		workers = len(ordered)
	}
	if workers < 1 {
		workers = 1
	}
	sem := make(chan struct{}, workers)

	var wg sync.WaitGroup
	for i := range ordered {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()
			snap := &ordered[idx]
			for j, strat := range e.strategies {
				signals[idx][j] = e.evaluateOne(strat, snap)
			}
		}(i)
	}
	wg.Wait()

	out := make(map[string][]market.StrategySignal, len(e.strategies))
	for j, strat := range e.strategies {
		list := make([]market.StrategySignal, 0, len(ordered))
		for i := range ordered {
			list = append(list, signals[i][j])
		}
		out[strat.Name()] = list
	}
	return out
}

// evaluateOne shields the engine from a misbehaving strategy. A panic
// becomes an error-direction signal for that contract only.
func (e *Engine) evaluateOne(strat Strategy, snap *market.ContractSnapshot) (sig market.StrategySignal) {
	defer func() {
		if r := recover(); r != nil {
			e.log.WithFields(map[string]interface{}{
				"strategy": strat.Name(),
				"contract": snap.Key(),
			}).Errorf("strategy panicked: %v", r)
			sig = market.StrategySignal{
				Strategy:  strat.Name(),
				Contract:  snap.Key(),
				Direction: market.DirectionError,
				Strength:  0,
				Rationale: fmt.Sprintf("evaluation failed: %v", r),
			}
		}
	}()
	return strat.Evaluate(snap)
}
