package market

import "sort"

// PriceQuote is one contract's daily close, tagged with its exchange.
type PriceQuote struct {
	Symbol   string   `json:"symbol"`
	Variety  string   `json:"variety"`
	Close    *float64 `json:"close"`
	Exchange string   `json:"exchange"`
}

// PriceTable is the merged daily price table across exchanges for one
// trade date.
type PriceTable struct {
	TradeDate string       `json:"trade_date"`
	Quotes    []PriceQuote `json:"quotes"`
}

// Empty reports whether the table carries no quotes.
func (t *PriceTable) Empty() bool {
	return t == nil || len(t.Quotes) == 0
}

// Append merges quotes into the table, tagging each with the exchange.
func (t *PriceTable) Append(exchange string, quotes []PriceQuote) {
	for _, q := range quotes {
		q.Exchange = exchange
		t.Quotes = append(t.Quotes, q)
	}
}

// SortDeterministic orders quotes by symbol, then exchange, so merged
// tables are reproducible regardless of fetch completion order.
func (t *PriceTable) SortDeterministic() {
	sort.Slice(t.Quotes, func(i, j int) bool {
		if t.Quotes[i].Symbol != t.Quotes[j].Symbol {
			return t.Quotes[i].Symbol < t.Quotes[j].Symbol
		}
		return t.Quotes[i].Exchange < t.Quotes[j].Exchange
	})
}
