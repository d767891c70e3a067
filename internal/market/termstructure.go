package market

// TermStructure classifies the shape of a variety's price curve.
type TermStructure string

const (
	// StructureBack: strictly decreasing close as maturity increases.
	StructureBack TermStructure = "back"
	// StructureContango: strictly increasing close as maturity increases.
	StructureContango TermStructure = "contango"
	// StructureFlat: any other pattern, ties included.
	StructureFlat TermStructure = "flat"
)

// TermStructureResult is the classification of one variety's curve.
// Contracts and Closes are parallel slices ordered near month to far.
type TermStructureResult struct {
	Variety   string        `json:"variety"`
	Structure TermStructure `json:"structure"`
	Contracts []string      `json:"contracts"`
	Closes    []float64     `json:"closes"`
}
