package market

import "fmt"

// PositionRecord is one row of an exchange position-ranking table after
// canonicalization. Numeric fields are nil when the source omitted them.
type PositionRecord struct {
	LongParty  string   `json:"long_party_name"`
	LongOI     *float64 `json:"long_open_interest"`
	LongOIChg  *float64 `json:"long_open_interest_chg"`
	ShortParty string   `json:"short_party_name"`
	ShortOI    *float64 `json:"short_open_interest"`
	ShortOIChg *float64 `json:"short_open_interest_chg"`
	Volume     *float64 `json:"vol"`
}

// ContractSnapshot is the full position ranking of one contract on one
// exchange. Immutable once built; totals are always recomputed from the
// records rather than stored.
type ContractSnapshot struct {
	Exchange string           `json:"exchange"`
	Contract string           `json:"contract"`
	Records  []PositionRecord `json:"records"`
}

// Key identifies the snapshot across exchanges, e.g. "dce_m2501".
func (s *ContractSnapshot) Key() string {
	return fmt.Sprintf("%s_%s", s.Exchange, s.Contract)
}

// SnapshotTotals are per-side sums over a snapshot's records.
type SnapshotTotals struct {
	Long     float64
	Short    float64
	LongChg  float64
	ShortChg float64
}

// Totals sums open interest and day-over-day changes across all records,
// skipping nil fields.
func (s *ContractSnapshot) Totals() SnapshotTotals {
	var t SnapshotTotals
	for _, r := range s.Records {
		if r.LongOI != nil {
			t.Long += *r.LongOI
		}
		if r.ShortOI != nil {
			t.Short += *r.ShortOI
		}
		if r.LongOIChg != nil {
			t.LongChg += *r.LongOIChg
		}
		if r.ShortOIChg != nil {
			t.ShortChg += *r.ShortOIChg
		}
	}
	return t
}
