package source

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/qihao/futures-insight/internal/market"
)

// Canonical position-ranking column names every adapter normalizes to.
const (
	colLongParty   = "long_party_name"
	colLongOI      = "long_open_interest"
	colLongOIChg   = "long_open_interest_chg"
	colShortParty  = "short_party_name"
	colShortOI     = "short_open_interest"
	colShortOIChg  = "short_open_interest_chg"
	colVolume      = "vol"
	colPriceSymbol = "symbol"
	colPriceVar    = "variety"
	colPriceClose  = "close"
)

// SchemaAdapter canonicalizes one source's raw tables. The zero value
// assumes the source already uses canonical column names.
type SchemaAdapter struct {
	// Renames maps source column names to canonical ones. Columns not
	// present in the map pass through unchanged.
	Renames map[string]string
}

// DefaultAdapter passes columns through unchanged.
func DefaultAdapter() SchemaAdapter {
	return SchemaAdapter{}
}

// CZCEAdapter maps the Zhengzhou ranking columns onto the canonical
// schema. CZCE publishes long and short ranks side by side, with the
// short-side columns suffixed ".1".
func CZCEAdapter() SchemaAdapter {
	return SchemaAdapter{Renames: map[string]string{
		"g_party_n":      colLongParty,
		"open_inten":     colLongOI,
		"inten_intert":   colLongOIChg,
		"t_party_n":      colShortParty,
		"open_inten.1":   colShortOI,
		"inten_intert.1": colShortOIChg,
	}}
}

// Positions canonicalizes one raw contract table into position records.
// Party name columns must be present; numeric columns coerce softly, so
// a blank or malformed cell becomes a null rather than an error.
func (a SchemaAdapter) Positions(t Table) ([]market.PositionRecord, error) {
	records := make([]market.PositionRecord, 0, len(t.Rows))
	for i, row := range t.Rows {
		canon := a.canonicalize(row)

		longParty, okLong := canon[colLongParty]
		shortParty, okShort := canon[colShortParty]
		if !okLong && !okShort {
			return nil, fmt.Errorf("%w: table %s row %d has no party columns",
				market.ErrDataFormat, t.Name, i)
		}

		records = append(records, market.PositionRecord{
			LongParty:  strings.TrimSpace(longParty),
			LongOI:     coerceNumeric(canon[colLongOI]),
			LongOIChg:  coerceNumeric(canon[colLongOIChg]),
			ShortParty: strings.TrimSpace(shortParty),
			ShortOI:    coerceNumeric(canon[colShortOI]),
			ShortOIChg: coerceNumeric(canon[colShortOIChg]),
			Volume:     coerceNumeric(canon[colVolume]),
		})
	}
	return records, nil
}

// Quotes canonicalizes a raw daily price table. Rows without a symbol
// are dropped; a malformed close becomes a null quote.
func (a SchemaAdapter) Quotes(t Table) []market.PriceQuote {
	quotes := make([]market.PriceQuote, 0, len(t.Rows))
	for _, row := range t.Rows {
		canon := a.canonicalize(row)
		symbol := strings.TrimSpace(canon[colPriceSymbol])
		if symbol == "" {
			continue
		}
		quotes = append(quotes, market.PriceQuote{
			Symbol:  symbol,
			Variety: strings.TrimSpace(canon[colPriceVar]),
			Close:   coerceNumeric(canon[colPriceClose]),
		})
	}
	return quotes
}

func (a SchemaAdapter) canonicalize(row Row) Row {
	if len(a.Renames) == 0 {
		return row
	}
	out := make(Row, len(row))
	for col, val := range row {
		if canon, ok := a.Renames[col]; ok {
			col = canon
		}
		out[col] = val
	}
	return out
}

// coerceNumeric parses a raw cell into a float, stripping thousands
// separators and stray whitespace first. Blank, "nan" and unparsable
// cells all coerce to null.
func coerceNumeric(raw string) *float64 {
	cleaned := strings.ReplaceAll(raw, ",", "")
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" || strings.EqualFold(cleaned, "nan") || strings.EqualFold(cleaned, "none") {
		return nil
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return &v
}
