package market

// Direction is the stance a strategy takes on a contract.
type Direction string

const (
	DirectionLong    Direction = "long"
	DirectionShort   Direction = "short"
	DirectionNeutral Direction = "neutral"
	// DirectionError marks a signal degraded by an internal data error.
	// It never aborts sibling contracts or strategies.
	DirectionError Direction = "error"
)

// SeatDetail is the aggregated position of one watched seat across both
// sides of a snapshot.
type SeatDetail struct {
	Name     string  `json:"seat_name"`
	LongChg  float64 `json:"long_chg"`
	ShortChg float64 `json:"short_chg"`
	LongPos  float64 `json:"long_pos"`
	ShortPos float64 `json:"short_pos"`
}

// StrategySignal is the output of one strategy for one contract.
// It is derived solely from the contract's snapshot, so re-running a
// strategy on identical input yields an identical signal.
type StrategySignal struct {
	Strategy  string       `json:"strategy"`
	Contract  string       `json:"contract"` // snapshot key, e.g. "dce_m2501"
	Direction Direction    `json:"direction"`
	Strength  float64      `json:"strength"`
	Rationale string       `json:"rationale"`
	Seats     []SeatDetail `json:"seats,omitempty"`
}
