package market

// ResonanceEntry records cross-strategy agreement on one symbol in one
// direction. Only entries backed by at least two distinct strategies are
// valid.
type ResonanceEntry struct {
	Symbol     string   `json:"symbol"`
	Count      int      `json:"count"` // distinct contributing strategies
	Strategies []string `json:"strategies"`
	Contracts  []string `json:"contracts"`
}

// ResonanceSet groups resonance entries by direction.
type ResonanceSet struct {
	Long  []ResonanceEntry `json:"long"`
	Short []ResonanceEntry `json:"short"`
}
