package analysis

import (
	"sort"
	"time"

	"github.com/qihao/futures-insight/internal/acquire"
	"github.com/qihao/futures-insight/internal/market"
)

// StrategyBoard is one strategy's directional signal lists, strongest
// first.
type StrategyBoard struct {
	Long  []market.StrategySignal `json:"long"`
	Short []market.StrategySignal `json:"short"`
}

// Statistics are the headline counts of one run.
type Statistics struct {
	Contracts       int `json:"contracts"`
	LongSignals     int `json:"long_signals"`
	ShortSignals    int `json:"short_signals"`
	ErrorSignals    int `json:"error_signals"`
	ResonantSymbols int `json:"resonant_symbols"`
}

// Summary is the full result of one analysis run.
type Summary struct {
	TradeDate     string                         `json:"trade_date"`
	GeneratedAt   time.Time                      `json:"generated_at"`
	RetailSeats   []string                       `json:"retail_seats"`
	Boards        map[string]StrategyBoard       `json:"strategies"`
	Resonance     market.ResonanceSet            `json:"resonance"`
	TermStructure []market.TermStructureResult   `json:"term_structure,omitempty"`
	Statistics    Statistics                     `json:"statistics"`
	FailedSources []acquire.SourceFailure        `json:"failed_sources,omitempty"`
	SkippedVars   []string                       `json:"skipped_varieties,omitempty"`
}

// buildBoards splits each strategy's signals into directional lists
// ordered by strength descending, contract key as tie breaker.
func buildBoards(signals map[string][]market.StrategySignal) map[string]StrategyBoard {
	boards := make(map[string]StrategyBoard, len(signals))
	for name, list := range signals {
		var board StrategyBoard
		for _, sig := range list {
			switch sig.Direction {
			case market.DirectionLong:
				board.Long = append(board.Long, sig)
			case market.DirectionShort:
				board.Short = append(board.Short, sig)
			}
		}
		sortByStrength(board.Long)
		sortByStrength(board.Short)
		boards[name] = board
	}
	return boards
}

func sortByStrength(signals []market.StrategySignal) {
	sort.SliceStable(signals, func(i, j int) bool {
		if signals[i].Strength != signals[j].Strength {
			return signals[i].Strength > signals[j].Strength
		}
		return signals[i].Contract < signals[j].Contract
	})
}

func buildStatistics(contracts int, signals map[string][]market.StrategySignal, res market.ResonanceSet) Statistics {
	stats := Statistics{
		Contracts:       contracts,
		ResonantSymbols: len(res.Long) + len(res.Short),
	}
	for _, list := range signals {
		for _, sig := range list {
			switch sig.Direction {
			case market.DirectionLong:
				stats.LongSignals++
			case market.DirectionShort:
				stats.ShortSignals++
			case market.DirectionError:
				stats.ErrorSignals++
			}
		}
	}
	return stats
}
