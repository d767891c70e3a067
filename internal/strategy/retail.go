package strategy

import (
	"fmt"
	"strings"

	"github.com/qihao/futures-insight/internal/market"
)

// RetailReverseName identifies the retail counter-positioning strategy.
const RetailReverseName = "retail_reverse"

// RetailReverse watches a configured list of retail-heavy broker seats
// and fades their moves: every watched seat piling into shorts is read
// as a long signal, and vice versa.
type RetailReverse struct {
	seats []string
}

// NewRetailReverse builds the strategy for the given watch list.
func NewRetailReverse(seats []string) *RetailReverse {
	return &RetailReverse{seats: seats}
}

func (s *RetailReverse) Name() string { return RetailReverseName }

func (s *RetailReverse) Evaluate(snap *market.ContractSnapshot) market.StrategySignal {
	sig := market.StrategySignal{
		Strategy: RetailReverseName,
		Contract: snap.Key(),
	}

	details := make([]market.SeatDetail, 0, len(s.seats))
	for _, name := range s.seats {
		d := aggregateSeat(snap, name)
		if d.LongPos+d.ShortPos == 0 {
			continue
		}
		details = append(details, d)
	}

	if len(details) == 0 {
		sig.Direction = market.DirectionNeutral
		sig.Strength = 0
		sig.Rationale = "no watched seat holds a position"
		return sig
	}
	sig.Seats = details

	allShorting := true
	allLonging := true
	for _, d := range details {
		if !(d.ShortChg > 0 && d.LongChg <= 0) {
			allShorting = false
		}
		if !(d.LongChg > 0 && d.ShortChg <= 0) {
			allLonging = false
		}
	}

	totals := snap.Totals()
	var watched float64
	for _, d := range details {
		watched += d.LongPos + d.ShortPos
	}
	strength := 0.0
	if denom := totals.Long + totals.Short; denom > 0 {
		strength = watched / denom
	}

	switch {
	case allShorting:
		sig.Direction = market.DirectionLong
		sig.Strength = strength
		sig.Rationale = "every watched seat is adding shorts"
	case allLonging:
		sig.Direction = market.DirectionShort
		sig.Strength = strength
		sig.Rationale = "every watched seat is adding longs"
	default:
		sig.Direction = market.DirectionNeutral
		sig.Strength = 0
		sig.Rationale = "watched seats disagree: " + seatMoves(details)
	}
	return sig
}

// aggregateSeat sums a seat's holdings across every row it appears in,
// long side and short side separately.
func aggregateSeat(snap *market.ContractSnapshot, name string) market.SeatDetail {
	d := market.SeatDetail{Name: name}
	for _, r := range snap.Records {
		if r.LongParty == name {
			if r.LongOI != nil {
				d.LongPos += *r.LongOI
			}
			if r.LongOIChg != nil {
				d.LongChg += *r.LongOIChg
			}
		}
		if r.ShortParty == name {
			if r.ShortOI != nil {
				d.ShortPos += *r.ShortOI
			}
			if r.ShortOIChg != nil {
				d.ShortChg += *r.ShortOIChg
			}
		}
	}
	return d
}

func seatMoves(details []market.SeatDetail) string {
	parts := make([]string, 0, len(details))
	for _, d := range details {
		parts = append(parts, fmt.Sprintf("%s long %+.0f short %+.0f", d.Name, d.LongChg, d.ShortChg))
	}
	return strings.Join(parts, "; ")
}
