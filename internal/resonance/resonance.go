// Package resonance finds symbols that several strategies agree on.
package resonance

import (
	"sort"
	"strings"
	"unicode"

	"github.com/qihao/futures-insight/internal/market"
)

const (
	// topPerStrategy bounds how many signals per direction each
	// strategy contributes.
	topPerStrategy = 10
	// minStrategies is how many distinct strategies must agree before a
	// symbol counts as resonating.
	minStrategies = 2
)

// Aggregate cross-references the strongest signals of every strategy
// and keeps the symbols at least two strategies agree on, per
// direction. Output ordering is deterministic: agreement count
// descending, then symbol ascending.
func Aggregate(signals map[string][]market.StrategySignal) market.ResonanceSet {
	return market.ResonanceSet{
		Long:  aggregateDirection(signals, market.DirectionLong),
		Short: aggregateDirection(signals, market.DirectionShort),
	}
}

func aggregateDirection(signals map[string][]market.StrategySignal, dir market.Direction) []market.ResonanceEntry {
	type bucket struct {
		strategies map[string]bool
		contracts  map[string]bool
	}
	buckets := make(map[string]*bucket)

	strategies := make([]string, 0, len(signals))
	for name := range signals {
		strategies = append(strategies, name)
	}
	sort.Strings(strategies)

	for _, name := range strategies {
		for _, sig := range topSignals(signals[name], dir) {
			symbol := SymbolOf(sig.Contract)
			if symbol == "" {
				continue
			}
			b := buckets[symbol]
			if b == nil {
				b = &bucket{strategies: make(map[string]bool), contracts: make(map[string]bool)}
				buckets[symbol] = b
			}
			b.strategies[name] = true
			b.contracts[sig.Contract] = true
		}
	}

	entries := make([]market.ResonanceEntry, 0, len(buckets))
	for symbol, b := range buckets {
		if len(b.strategies) < minStrategies {
			continue
		}
		entries = append(entries, market.ResonanceEntry{
			Symbol:     symbol,
			Count:      len(b.strategies),
			Strategies: sortedKeys(b.strategies),
			Contracts:  sortedKeys(b.contracts),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Symbol < entries[j].Symbol
	})
	return entries
}

// topSignals picks a strategy's strongest signals in one direction,
// strength descending with contract key as the tie breaker.
func topSignals(signals []market.StrategySignal, dir market.Direction) []market.StrategySignal {
	matched := make([]market.StrategySignal, 0, len(signals))
	for _, sig := range signals {
		if sig.Direction == dir {
			matched = append(matched, sig)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].Strength != matched[j].Strength {
			return matched[i].Strength > matched[j].Strength
		}
		return matched[i].Contract < matched[j].Contract
	})
	if len(matched) > topPerStrategy {
		matched = matched[:topPerStrategy]
	}
	return matched
}

// SymbolOf reduces a signal's contract key to its variety symbol: the
// letters of the contract code, uppercased. Snapshot keys carry an
// exchange prefix, which is stripped first.
func SymbolOf(contractKey string) string {
	code := contractKey
	if i := strings.LastIndex(contractKey, "_"); i >= 0 {
		code = contractKey[i+1:]
	}
	var b strings.Builder
	for _, r := range code {
		if unicode.IsLetter(r) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return b.String()
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
