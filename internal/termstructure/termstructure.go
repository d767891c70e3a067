// Package termstructure classifies each variety's futures curve from
// the merged daily price table.
package termstructure

import (
	"sort"
	"strings"
	"unicode"

	"github.com/qihao/futures-insight/internal/market"
	"github.com/qihao/futures-insight/pkg/logger"
)

// maturityUnknown sorts contracts with an unparsable code after every
// dated contract.
const maturityUnknown = 1<<31 - 1

// Analyzer groups quotes by variety and classifies each curve.
type Analyzer struct {
	log *logger.Logger
}

func NewAnalyzer(log *logger.Logger) *Analyzer {
	return &Analyzer{log: log}
}

// Analyze classifies every variety with at least two priced contracts.
// Varieties without enough points are returned in skipped. Results are
// ordered by variety for reproducible output.
func (a *Analyzer) Analyze(table *market.PriceTable) (results []market.TermStructureResult, skipped []string) {
	if table.Empty() {
		return nil, nil
	}

	byVariety := make(map[string][]market.PriceQuote)
	for _, q := range table.Quotes {
		v := varietyOf(q)
		if v == "" {
			continue
		}
		byVariety[v] = append(byVariety[v], q)
	}

	varieties := make([]string, 0, len(byVariety))
	for v := range byVariety {
		varieties = append(varieties, v)
	}
	sort.Strings(varieties)

	for _, v := range varieties {
		result, ok := classify(v, byVariety[v])
		if !ok {
			skipped = append(skipped, v)
			continue
		}
		results = append(results, result)
	}

	a.log.WithFields(map[string]interface{}{
		"classified": len(results),
		"skipped":    len(skipped),
	}).Debug("term structure analysis done")
	return results, skipped
}

// classify orders one variety's priced contracts near to far and reads
// the curve shape. Fewer than two usable points means no classification.
func classify(variety string, quotes []market.PriceQuote) (market.TermStructureResult, bool) {
	type point struct {
		contract string
		close    float64
		maturity int
	}

	points := make([]point, 0, len(quotes))
	for _, q := range quotes {
		if q.Close == nil || *q.Close <= 0 {
			continue
		}
		points = append(points, point{
			contract: q.Symbol,
			close:    *q.Close,
			maturity: maturityOf(q.Symbol),
		})
	}
	if len(points) < 2 {
		return market.TermStructureResult{}, false
	}

	sort.SliceStable(points, func(i, j int) bool {
		if points[i].maturity != points[j].maturity {
			return points[i].maturity < points[j].maturity
		}
		return points[i].contract < points[j].contract
	})

	result := market.TermStructureResult{
		Variety:   variety,
		Contracts: make([]string, len(points)),
		Closes:    make([]float64, len(points)),
	}
	for i, p := range points {
		result.Contracts[i] = p.contract
		result.Closes[i] = p.close
	}

	decreasing := true
	increasing := true
	for i := 1; i < len(points); i++ {
		if points[i].close >= points[i-1].close {
			decreasing = false
		}
		if points[i].close <= points[i-1].close {
			increasing = false
		}
	}

	switch {
	case decreasing:
		result.Structure = market.StructureBack
	case increasing:
		result.Structure = market.StructureContango
	default:
		result.Structure = market.StructureFlat
	}
	return result, true
}

// varietyOf prefers the quote's variety field, falling back to the
// letters of the contract code.
func varietyOf(q market.PriceQuote) string {
	if q.Variety != "" {
		return strings.ToUpper(q.Variety)
	}
	var b strings.Builder
	for _, r := range q.Symbol {
		if unicode.IsLetter(r) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return b.String()
}

// maturityOf reads the trailing four digits of a contract code as YYMM.
// Two-digit years below 50 land in the 2000s. Codes without a parsable
// suffix sort last.
func maturityOf(symbol string) int {
	digits := make([]rune, 0, len(symbol))
	for _, r := range symbol {
		if r >= '0' && r <= '9' {
			digits = append(digits, r)
		} else {
			digits = digits[:0]
		}
	}
	if len(digits) < 4 {
		return maturityUnknown
	}
	tail := digits[len(digits)-4:]
	yy := int(tail[0]-'0')*10 + int(tail[1]-'0')
	mm := int(tail[2]-'0')*10 + int(tail[3]-'0')
	if mm < 1 || mm > 12 {
		return maturityUnknown
	}
	year := 1900 + yy
	if yy < 50 {
		year = 2000 + yy
	}
	return year*100 + mm
}
