package resonance

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/qihao/futures-insight/internal/market"
)

func sig(strategy, contract string, dir market.Direction, strength float64) market.StrategySignal {
	return market.StrategySignal{
		Strategy:  strategy,
		Contract:  contract,
		Direction: dir,
		Strength:  strength,
	}
}

func TestAggregate_TwoStrategyAgreement(t *testing.T) {
	signals := map[string][]market.StrategySignal{
		"power_change": {
			sig("power_change", "dce_m2501", market.DirectionLong, 800),
			sig("power_change", "shfe_cu2502", market.DirectionLong, 300),
		},
		"retail_reverse": {
			sig("retail_reverse", "dce_m2505", market.DirectionLong, 0.4),
			sig("retail_reverse", "czce_SR501", market.DirectionShort, 0.2),
		},
	}

	set := Aggregate(signals)

	if len(set.Long) != 1 {
		t.Fatalf("Long = %+v, want just M", set.Long)
	}
	entry := set.Long[0]
	if entry.Symbol != "M" || entry.Count != 2 {
		t.Errorf("entry = %+v, want M with count 2", entry)
	}
	if !reflect.DeepEqual(entry.Strategies, []string{"power_change", "retail_reverse"}) {
		t.Errorf("Strategies = %v", entry.Strategies)
	}
	if !reflect.DeepEqual(entry.Contracts, []string{"dce_m2501", "dce_m2505"}) {
		t.Errorf("Contracts = %v", entry.Contracts)
	}
	if len(set.Short) != 0 {
		t.Errorf("Short = %+v, want none (single strategy)", set.Short)
	}
}

func TestAggregate_SingleStrategyNeverQualifies(t *testing.T) {
	signals := map[string][]market.StrategySignal{
		"power_change": {
			sig("power_change", "dce_m2501", market.DirectionLong, 800),
			sig("power_change", "dce_m2505", market.DirectionLong, 700),
		},
	}

	set := Aggregate(signals)
	if len(set.Long) != 0 || len(set.Short) != 0 {
		t.Errorf("set = %+v, want empty", set)
	}
}

func TestAggregate_OnlyTopTenPerStrategyCount(t *testing.T) {
	// The weakest of eleven long signals misses the cut, so it cannot
	// resonate with the other strategy.
	var power []market.StrategySignal
	for i := 0; i < 11; i++ {
		power = append(power, sig("power_change",
			fmt.Sprintf("dce_v%d2501", i), market.DirectionLong, float64(100-i)))
	}
	signals := map[string][]market.StrategySignal{
		"power_change": power,
		"informed_divergence": {
			sig("informed_divergence", "dce_v102505", market.DirectionLong, 0.9),
		},
	}

	set := Aggregate(signals)
	if len(set.Long) != 0 {
		t.Errorf("Long = %+v, want none: v10 was rank 11 for power_change", set.Long)
	}
}

func TestAggregate_OrderedByCountThenSymbol(t *testing.T) {
	signals := map[string][]market.StrategySignal{
		"a": {
			sig("a", "dce_m2501", market.DirectionShort, 3),
			sig("a", "shfe_cu2502", market.DirectionShort, 2),
			sig("a", "dce_c2501", market.DirectionShort, 1),
		},
		"b": {
			sig("b", "dce_m2509", market.DirectionShort, 3),
			sig("b", "shfe_cu2505", market.DirectionShort, 2),
			sig("b", "dce_c2505", market.DirectionShort, 1),
		},
		"c": {
			sig("c", "dce_m2601", market.DirectionShort, 1),
		},
	}

	set := Aggregate(signals)
	got := make([]string, len(set.Short))
	for i, e := range set.Short {
		got[i] = fmt.Sprintf("%s:%d", e.Symbol, e.Count)
	}
	want := []string{"M:3", "C:2", "CU:2"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Short order = %v, want %v", got, want)
	}
}

func TestSymbolOf(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"dce_m2501", "M"},
		{"czce_SR501", "SR"},
		{"shfe_cu2502", "CU"},
		{"m2501", "M"},
		{"dce_2501", ""},
	}
	for _, tt := range tests {
		if got := SymbolOf(tt.key); got != tt.want {
			t.Errorf("SymbolOf(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}
