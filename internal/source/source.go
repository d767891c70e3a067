// Package source defines the registry of upstream exchange data sources.
// The actual network providers are injected as fetch capabilities; this
// package only describes them and canonicalizes what they return.
package source

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/qihao/futures-insight/internal/market"
)

// Exchange identifiers used across artifacts and snapshot keys.
const (
	ExchangeDCE   = "dce"   // Dalian Commodity Exchange
	ExchangeCFFEX = "cffex" // China Financial Futures Exchange
	ExchangeCZCE  = "czce"  // Zhengzhou Commodity Exchange
	ExchangeSHFE  = "shfe"  // Shanghai Futures Exchange
	ExchangeGFEX  = "gfex"  // Guangzhou Futures Exchange
)

// Row is one raw table row keyed by source column name.
type Row map[string]string

// Table is a named raw table as returned by a fetch capability. For
// position data each table holds one contract's ranking; for daily
// prices a single table holds all quotes.
type Table struct {
	Name string
	Rows []Row
}

// Dataset is the set of named tables one fetch call produced.
type Dataset struct {
	Tables []Table
}

// Empty reports whether the dataset holds no rows at all.
func (d *Dataset) Empty() bool {
	if d == nil {
		return true
	}
	for _, t := range d.Tables {
		if len(t.Rows) > 0 {
			return false
		}
	}
	return true
}

// FetchFunc is the injected capability for fetching a source's position
// ranking for one trade date. Failures of any kind (timeout, throttling,
// transport) all mean "source unavailable this attempt".
type FetchFunc func(ctx context.Context, date string) (*Dataset, error)

// DailyFetchFunc fetches the merged daily price table for one market.
type DailyFetchFunc func(ctx context.Context, date, marketCode string) (*Dataset, error)

// Descriptor is the static, immutable configuration of one exchange
// source.
type Descriptor struct {
	Name       string        // exchange identifier
	MarketCode string        // daily price endpoint market code, "" when absent
	Positions  FetchFunc     // position-ranking capability
	Adapter    SchemaAdapter // canonicalizes the raw position tables
	Timeout    time.Duration // per-attempt timeout; <=0 uses the manager default
	MaxRetries int           // attempts beyond the first; <0 uses the manager default
	Priority   int           // lower fetches first when queuing work
}

// Registry holds the configured sources plus the shared daily price
// capability. Immutable after construction.
type Registry struct {
	sources []Descriptor
	daily   DailyFetchFunc
}

// NewRegistry validates the descriptors and returns a registry with
// sources ordered by priority.
func NewRegistry(daily DailyFetchFunc, sources ...Descriptor) (*Registry, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("%w: registry needs at least one source", market.ErrConfiguration)
	}

	seen := make(map[string]bool, len(sources))
	for _, s := range sources {
		if s.Name == "" {
			return nil, fmt.Errorf("%w: source without a name", market.ErrConfiguration)
		}
		if s.Positions == nil {
			return nil, fmt.Errorf("%w: source %s has no fetch capability", market.ErrConfiguration, s.Name)
		}
		if seen[s.Name] {
			return nil, fmt.Errorf("%w: duplicate source %s", market.ErrConfiguration, s.Name)
		}
		seen[s.Name] = true
	}

	ordered := make([]Descriptor, len(sources))
	copy(ordered, sources)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority < ordered[j].Priority
	})

	return &Registry{sources: ordered, daily: daily}, nil
}

// Sources returns all descriptors in priority order.
func (r *Registry) Sources() []Descriptor {
	return r.sources
}

// PriceSources returns the descriptors that publish a daily price table.
func (r *Registry) PriceSources() []Descriptor {
	out := make([]Descriptor, 0, len(r.sources))
	for _, s := range r.sources {
		if s.MarketCode != "" {
			out = append(out, s)
		}
	}
	return out
}

// Daily returns the shared daily price capability, or nil when prices
// are not configured.
func (r *Registry) Daily() DailyFetchFunc {
	return r.daily
}

// Get looks a source up by name.
func (r *Registry) Get(name string) (Descriptor, bool) {
	for _, s := range r.sources {
		if s.Name == name {
			return s, true
		}
	}
	return Descriptor{}, false
}

// Len returns the number of configured sources.
func (r *Registry) Len() int {
	return len(r.sources)
}
