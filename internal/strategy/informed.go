package strategy

import (
	"fmt"
	"math"
	"sort"

	"github.com/qihao/futures-insight/internal/market"
)

// InformedDivergenceName identifies the informed/uninformed sentiment
// divergence strategy.
const InformedDivergenceName = "informed_divergence"

const (
	// minQualifyingSeats is the minimum number of usable records before
	// splitting into groups makes sense.
	minQualifyingSeats = 5
	// informedFraction of the ranking counts as informed, at least two
	// seats.
	informedFraction = 0.4
	// sentimentThreshold on the group sentiment difference before a
	// directional call.
	sentimentThreshold = 0.05
)

// rankedSeat is one usable record scored for the group split.
type rankedSeat struct {
	informedness float64 // position size relative to volume
	sentiment    float64 // (long-short)/(long+short)
	hasSentiment bool
}

// InformedDivergence splits a contract's ranking into an informed group
// (seats holding large positions relative to their trading volume) and
// the rest, then compares the net sentiment of the two groups.
type InformedDivergence struct{}

// NewInformedDivergence returns the strategy.
func NewInformedDivergence() *InformedDivergence { return &InformedDivergence{} }

func (s *InformedDivergence) Name() string { return InformedDivergenceName }

func (s *InformedDivergence) Evaluate(snap *market.ContractSnapshot) market.StrategySignal {
	sig := market.StrategySignal{
		Strategy: InformedDivergenceName,
		Contract: snap.Key(),
	}

	seats := make([]rankedSeat, 0, len(snap.Records))
	for _, r := range snap.Records {
		if r.Volume == nil || *r.Volume <= 0 || r.LongOI == nil || r.ShortOI == nil {
			continue
		}
		long, short := *r.LongOI, *r.ShortOI
		seat := rankedSeat{informedness: (long + short) / *r.Volume}
		if total := long + short; total > 0 {
			seat.sentiment = (long - short) / total
			seat.hasSentiment = true
		}
		seats = append(seats, seat)
	}

	if len(seats) < minQualifyingSeats {
		sig.Direction = market.DirectionNeutral
		sig.Strength = 0
		sig.Rationale = fmt.Sprintf("only %d usable seats, need %d", len(seats), minQualifyingSeats)
		return sig
	}

	sort.SliceStable(seats, func(i, j int) bool {
		return seats[i].informedness > seats[j].informedness
	})

	informedSize := int(math.Ceil(informedFraction * float64(len(seats))))
	if informedSize < 2 {
		informedSize = 2
	}

	informedMean, okInformed := meanSentiment(seats[:informedSize])
	retailMean, okRetail := meanSentiment(seats[informedSize:])
	if !okInformed || !okRetail {
		sig.Direction = market.DirectionNeutral
		sig.Strength = 0
		sig.Rationale = "a sentiment group has no seats with open positions"
		return sig
	}

	diff := informedMean - retailMean
	sig.Strength = math.Abs(diff)
	switch {
	case diff > sentimentThreshold:
		sig.Direction = market.DirectionLong
	case diff < -sentimentThreshold:
		sig.Direction = market.DirectionShort
	default:
		sig.Direction = market.DirectionNeutral
	}
	sig.Rationale = fmt.Sprintf("informed %.3f vs uninformed %.3f (diff %+.3f)",
		informedMean, retailMean, diff)
	return sig
}

// meanSentiment averages sentiment over the seats that have one. A
// group where every seat holds zero total position has no mean.
func meanSentiment(group []rankedSeat) (float64, bool) {
	var sum float64
	var n int
	for _, seat := range group {
		if seat.hasSentiment {
			sum += seat.sentiment
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}
