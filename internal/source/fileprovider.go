package source

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/qihao/futures-insight/internal/market"
)

// FileProvider serves raw datasets from local JSON files, one file per
// source per trade date. It backs offline runs and replays of
// previously captured exchange data; live providers satisfy the same
// fetch signatures.
type FileProvider struct {
	dir string
}

func NewFileProvider(dir string) *FileProvider {
	return &FileProvider{dir: dir}
}

// Positions returns the position-ranking capability for one source.
// The file layout is <dir>/<source>_<date>.json holding a Dataset.
func (p *FileProvider) Positions(name string) FetchFunc {
	return func(ctx context.Context, date string) (*Dataset, error) {
		return p.load(fmt.Sprintf("%s_%s.json", name, date))
	}
}

// Daily serves the shared daily price capability from
// <dir>/daily_<market>_<date>.json.
func (p *FileProvider) Daily() DailyFetchFunc {
	return func(ctx context.Context, date, marketCode string) (*Dataset, error) {
		return p.load(fmt.Sprintf("daily_%s_%s.json", marketCode, date))
	}
}

func (p *FileProvider) load(name string) (*Dataset, error) {
	data, err := os.ReadFile(filepath.Join(p.dir, name))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: no dataset file %s", market.ErrEmptyResult, name)
	}
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", name, err)
	}

	var ds Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("%w: dataset %s: %v", market.ErrDataFormat, name, err)
	}
	return &ds, nil
}

// DefaultDescriptors wires the five exchanges against a provider, CZCE
// behind its schema adapter. GFEX publishes no merged daily table.
func DefaultDescriptors(p *FileProvider) []Descriptor {
	return []Descriptor{
		{Name: ExchangeDCE, MarketCode: "DCE", Positions: p.Positions(ExchangeDCE), Adapter: DefaultAdapter(), MaxRetries: -1, Priority: 1},
		{Name: ExchangeCFFEX, MarketCode: "CFFEX", Positions: p.Positions(ExchangeCFFEX), Adapter: DefaultAdapter(), MaxRetries: -1, Priority: 2},
		{Name: ExchangeCZCE, MarketCode: "CZCE", Positions: p.Positions(ExchangeCZCE), Adapter: CZCEAdapter(), MaxRetries: -1, Priority: 3},
		{Name: ExchangeSHFE, MarketCode: "SHFE", Positions: p.Positions(ExchangeSHFE), Adapter: DefaultAdapter(), MaxRetries: -1, Priority: 4},
		{Name: ExchangeGFEX, Positions: p.Positions(ExchangeGFEX), Adapter: DefaultAdapter(), MaxRetries: -1, Priority: 5},
	}
}
