package strategy

import (
	"fmt"
	"math"

	"github.com/qihao/futures-insight/internal/market"
)

// PowerChangeName identifies the long/short power shift strategy.
const PowerChangeName = "power_change"

// PowerChange reads the day-over-day shift in aggregate long and short
// open interest. Longs building while shorts unwind is a long signal,
// the mirror image a short signal.
type PowerChange struct{}

// NewPowerChange returns the strategy.
func NewPowerChange() *PowerChange { return &PowerChange{} }

func (s *PowerChange) Name() string { return PowerChangeName }

func (s *PowerChange) Evaluate(snap *market.ContractSnapshot) market.StrategySignal {
	totals := snap.Totals()
	sig := market.StrategySignal{
		Strategy: PowerChangeName,
		Contract: snap.Key(),
	}

	switch {
	case totals.LongChg > 0 && totals.ShortChg < 0:
		sig.Direction = market.DirectionLong
		sig.Strength = math.Abs(totals.LongChg) + math.Abs(totals.ShortChg)
		sig.Rationale = fmt.Sprintf("longs +%.0f while shorts %.0f", totals.LongChg, totals.ShortChg)
	case totals.LongChg < 0 && totals.ShortChg > 0:
		sig.Direction = market.DirectionShort
		sig.Strength = math.Abs(totals.LongChg) + math.Abs(totals.ShortChg)
		sig.Rationale = fmt.Sprintf("longs %.0f while shorts +%.0f", totals.LongChg, totals.ShortChg)
	default:
		sig.Direction = market.DirectionNeutral
		sig.Strength = 0
		sig.Rationale = fmt.Sprintf("no divergence: longs %+.0f, shorts %+.0f", totals.LongChg, totals.ShortChg)
	}
	return sig
}
