package market

import (
	"errors"
	"testing"
)

func f(v float64) *float64 { return &v }

func TestContractSnapshot_Totals(t *testing.T) {
	snap := &ContractSnapshot{
		Exchange: "dce",
		Contract: "m2501",
		Records: []PositionRecord{
			{LongOI: f(1000), LongOIChg: f(100), ShortOI: f(800), ShortOIChg: f(-50), Volume: f(2000)},
			{LongOI: f(500), LongOIChg: f(-20), ShortOI: f(700), ShortOIChg: f(30), Volume: f(900)},
			{LongOI: nil, LongOIChg: nil, ShortOI: f(100), ShortOIChg: nil, Volume: nil},
		},
	}

	totals := snap.Totals()
	if totals.Long != 1500 {
		t.Errorf("Long = %v, want 1500", totals.Long)
	}
	if totals.Short != 1600 {
		t.Errorf("Short = %v, want 1600", totals.Short)
	}
	if totals.LongChg != 80 {
		t.Errorf("LongChg = %v, want 80", totals.LongChg)
	}
	if totals.ShortChg != -20 {
		t.Errorf("ShortChg = %v, want -20", totals.ShortChg)
	}
}

func TestContractSnapshot_Key(t *testing.T) {
	snap := &ContractSnapshot{Exchange: "czce", Contract: "SR501"}
	if got := snap.Key(); got != "czce_SR501" {
		t.Errorf("Key() = %q, want %q", got, "czce_SR501")
	}
}

func TestPriceTable_AppendTagsExchange(t *testing.T) {
	table := &PriceTable{TradeDate: "20260830"}
	table.Append("dce", []PriceQuote{
		{Symbol: "m2501", Variety: "m", Close: f(3000)},
	})

	if len(table.Quotes) != 1 {
		t.Fatalf("Quotes = %d, want 1", len(table.Quotes))
	}
	if table.Quotes[0].Exchange != "dce" {
		t.Errorf("Exchange = %q, want dce", table.Quotes[0].Exchange)
	}
}

func TestPriceTable_SortDeterministic(t *testing.T) {
	table := &PriceTable{}
	table.Append("shfe", []PriceQuote{{Symbol: "cu2502"}, {Symbol: "al2501"}})
	table.Append("dce", []PriceQuote{{Symbol: "cu2502"}})
	table.SortDeterministic()

	want := []struct{ symbol, exchange string }{
		{"al2501", "shfe"},
		{"cu2502", "dce"},
		{"cu2502", "shfe"},
	}
	for i, w := range want {
		if table.Quotes[i].Symbol != w.symbol || table.Quotes[i].Exchange != w.exchange {
			t.Errorf("Quotes[%d] = %s/%s, want %s/%s",
				i, table.Quotes[i].Symbol, table.Quotes[i].Exchange, w.symbol, w.exchange)
		}
	}
}

func TestValidateTradeDate(t *testing.T) {
	tests := []struct {
		date  string
		valid bool
	}{
		{"20260830", true},
		{"20260230", false}, // no February 30th
		{"2026-08-30", false},
		{"260830", false},
		{"", false},
	}

	for _, tt := range tests {
		err := ValidateTradeDate(tt.date)
		if tt.valid && err != nil {
			t.Errorf("ValidateTradeDate(%q) = %v, want nil", tt.date, err)
		}
		if !tt.valid {
			if err == nil {
				t.Errorf("ValidateTradeDate(%q) should fail", tt.date)
			} else if !errors.Is(err, ErrConfiguration) {
				t.Errorf("ValidateTradeDate(%q) error should wrap ErrConfiguration", tt.date)
			}
		}
	}
}

func TestRecentTradeDate_Format(t *testing.T) {
	date := RecentTradeDate(1)
	if err := ValidateTradeDate(date); err != nil {
		t.Errorf("RecentTradeDate produced invalid date %q: %v", date, err)
	}
}
