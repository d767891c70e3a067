package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/qihao/futures-insight/internal/analysis"
	"github.com/qihao/futures-insight/internal/market"
)

// shown bounds how many signals print per strategy and direction.
const shown = 10

func printSummary(s *analysis.Summary) {
	fmt.Printf("Analysis for %s (generated %s)\n",
		s.TradeDate, s.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Printf("Contracts: %d  Long: %d  Short: %d  Errors: %d\n\n",
		s.Statistics.Contracts, s.Statistics.LongSignals,
		s.Statistics.ShortSignals, s.Statistics.ErrorSignals)

	names := make([]string, 0, len(s.Boards))
	for name := range s.Boards {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		board := s.Boards[name]
		fmt.Printf("== %s ==\n", name)
		printSignals("long", board.Long)
		printSignals("short", board.Short)
		fmt.Println()
	}

	printResonance("long", s.Resonance.Long)
	printResonance("short", s.Resonance.Short)

	if len(s.TermStructure) > 0 {
		fmt.Println("== term structure ==")
		for _, ts := range s.TermStructure {
			fmt.Printf("  %-6s %-8s %s\n", ts.Variety, ts.Structure,
				strings.Join(ts.Contracts, " > "))
		}
		fmt.Println()
	}

	if len(s.FailedSources) > 0 {
		fmt.Println("== failed sources ==")
		for _, f := range s.FailedSources {
			fmt.Printf("  %s: %s\n", f.Source, f.Reason)
		}
	}
}

func printSignals(label string, signals []market.StrategySignal) {
	if len(signals) == 0 {
		return
	}
	fmt.Printf("  %s:\n", label)
	for i, sig := range signals {
		if i == shown {
			fmt.Printf("    ... %d more\n", len(signals)-shown)
			break
		}
		fmt.Printf("    %-14s %8.3f  %s\n", sig.Contract, sig.Strength, sig.Rationale)
	}
}

func printResonance(label string, entries []market.ResonanceEntry) {
	if len(entries) == 0 {
		return
	}
	fmt.Printf("== resonance (%s) ==\n", label)
	for _, e := range entries {
		fmt.Printf("  %-6s x%d  [%s]  %s\n", e.Symbol, e.Count,
			strings.Join(e.Strategies, ", "), strings.Join(e.Contracts, " "))
	}
	fmt.Println()
}
