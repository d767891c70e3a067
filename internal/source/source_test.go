package source

import (
	"context"
	"errors"
	"testing"

	"github.com/qihao/futures-insight/internal/market"
)

func stubFetch(ctx context.Context, date string) (*Dataset, error) {
	return &Dataset{}, nil
}

func TestNewRegistry_OrdersByPriority(t *testing.T) {
	reg, err := NewRegistry(nil,
		Descriptor{Name: ExchangeCZCE, Positions: stubFetch, Priority: 3},
		Descriptor{Name: ExchangeDCE, Positions: stubFetch, Priority: 1},
		Descriptor{Name: ExchangeCFFEX, Positions: stubFetch, Priority: 2},
	)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	want := []string{ExchangeDCE, ExchangeCFFEX, ExchangeCZCE}
	for i, s := range reg.Sources() {
		if s.Name != want[i] {
			t.Errorf("Sources()[%d] = %s, want %s", i, s.Name, want[i])
		}
	}
}

func TestNewRegistry_RejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		sources []Descriptor
	}{
		{"empty", nil},
		{"unnamed", []Descriptor{{Positions: stubFetch}}},
		{"no fetch", []Descriptor{{Name: ExchangeDCE}}},
		{"duplicate", []Descriptor{
			{Name: ExchangeDCE, Positions: stubFetch},
			{Name: ExchangeDCE, Positions: stubFetch},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(nil, tt.sources...)
			if !errors.Is(err, market.ErrConfiguration) {
				t.Errorf("want ErrConfiguration, got %v", err)
			}
		})
	}
}

func TestRegistry_PriceSources(t *testing.T) {
	reg, err := NewRegistry(nil,
		Descriptor{Name: ExchangeDCE, MarketCode: "DCE", Positions: stubFetch},
		Descriptor{Name: ExchangeGFEX, Positions: stubFetch},
	)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	priced := reg.PriceSources()
	if len(priced) != 1 || priced[0].Name != ExchangeDCE {
		t.Errorf("PriceSources() = %v, want only dce", priced)
	}
}

func TestDataset_Empty(t *testing.T) {
	var nilDS *Dataset
	if !nilDS.Empty() {
		t.Error("nil dataset should be empty")
	}
	if !(&Dataset{Tables: []Table{{Name: "m2501"}}}).Empty() {
		t.Error("dataset with rowless table should be empty")
	}
	ds := &Dataset{Tables: []Table{{Name: "m2501", Rows: []Row{{"vol": "1"}}}}}
	if ds.Empty() {
		t.Error("dataset with rows should not be empty")
	}
}

func TestCZCEAdapter_RenamesColumns(t *testing.T) {
	table := Table{
		Name: "SR501",
		Rows: []Row{{
			"g_party_n":      "中信期货",
			"open_inten":     "12,345",
			"inten_intert":   "-120",
			"t_party_n":      "国泰君安",
			"open_inten.1":   "9 876",
			"inten_intert.1": "45",
			"vol":            "30000",
		}},
	}

	records, err := CZCEAdapter().Positions(table)
	if err != nil {
		t.Fatalf("Positions: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}

	r := records[0]
	if r.LongParty != "中信期货" || r.ShortParty != "国泰君安" {
		t.Errorf("party names = %q/%q", r.LongParty, r.ShortParty)
	}
	if r.LongOI == nil || *r.LongOI != 12345 {
		t.Errorf("LongOI = %v, want 12345", r.LongOI)
	}
	if r.ShortOI == nil || *r.ShortOI != 9876 {
		t.Errorf("ShortOI = %v, want 9876", r.ShortOI)
	}
	if r.LongOIChg == nil || *r.LongOIChg != -120 {
		t.Errorf("LongOIChg = %v, want -120", r.LongOIChg)
	}
}

func TestAdapter_CoercesMalformedNumbersToNull(t *testing.T) {
	table := Table{
		Name: "m2501",
		Rows: []Row{{
			"long_party_name":    "永安期货",
			"long_open_interest": "nan",
			"short_party_name":   "银河期货",
			"vol":                "abc",
		}},
	}

	records, err := DefaultAdapter().Positions(table)
	if err != nil {
		t.Fatalf("Positions: %v", err)
	}
	if records[0].LongOI != nil {
		t.Errorf("LongOI = %v, want nil", records[0].LongOI)
	}
	if records[0].Volume != nil {
		t.Errorf("Volume = %v, want nil", records[0].Volume)
	}
}

func TestAdapter_MissingPartyColumnsIsFormatError(t *testing.T) {
	table := Table{Name: "m2501", Rows: []Row{{"vol": "100"}}}
	_, err := DefaultAdapter().Positions(table)
	if !errors.Is(err, market.ErrDataFormat) {
		t.Errorf("want ErrDataFormat, got %v", err)
	}
}

func TestAdapter_QuotesDropsSymbollessRows(t *testing.T) {
	table := Table{Rows: []Row{
		{"symbol": "m2501", "variety": "m", "close": "3,012.5"},
		{"symbol": "", "close": "100"},
		{"symbol": "cu2502", "variety": "cu", "close": "nan"},
	}}

	quotes := DefaultAdapter().Quotes(table)
	if len(quotes) != 2 {
		t.Fatalf("quotes = %d, want 2", len(quotes))
	}
	if quotes[0].Close == nil || *quotes[0].Close != 3012.5 {
		t.Errorf("Close = %v, want 3012.5", quotes[0].Close)
	}
	if quotes[1].Close != nil {
		t.Errorf("nan close should be nil, got %v", quotes[1].Close)
	}
}
