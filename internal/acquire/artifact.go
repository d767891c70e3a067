package acquire

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/qihao/futures-insight/internal/market"
)

// ArtifactStore persists one position artifact per exchange per trade
// date under the data directory. Re-running a date overwrites the
// previous artifact for that exchange.
type ArtifactStore struct {
	dir string
}

// NewArtifactStore creates the data directory if needed.
func NewArtifactStore(dir string) (*ArtifactStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &ArtifactStore{dir: dir}, nil
}

func (s *ArtifactStore) path(exchange, date string) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s_position_%s.json", exchange, date))
}

// Save writes one exchange's contract snapshots for a trade date. The
// write goes through a temp file and rename so a concurrent reader
// never sees a partial artifact.
func (s *ArtifactStore) Save(exchange, date string, snapshots []market.ContractSnapshot) error {
	data, err := json.MarshalIndent(snapshots, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s artifact: %w", exchange, err)
	}

	tmp, err := os.CreateTemp(s.dir, exchange+"-*.tmp")
	if err != nil {
		return fmt.Errorf("write %s artifact: %w", exchange, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s artifact: %w", exchange, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s artifact: %w", exchange, err)
	}
	if err := os.Rename(tmp.Name(), s.path(exchange, date)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s artifact: %w", exchange, err)
	}
	return nil
}

// Load reads one exchange's artifact for a trade date. A missing
// artifact is reported as absent, not as an error, so downstream stages
// can skip exchanges that failed to fetch.
func (s *ArtifactStore) Load(exchange, date string) ([]market.ContractSnapshot, bool, error) {
	data, err := os.ReadFile(s.path(exchange, date))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read %s artifact: %w", exchange, err)
	}

	var snapshots []market.ContractSnapshot
	if err := json.Unmarshal(data, &snapshots); err != nil {
		return nil, false, fmt.Errorf("%w: %s artifact for %s: %v",
			market.ErrDataFormat, exchange, date, err)
	}
	return snapshots, true, nil
}

// LoadDate loads every available artifact for a trade date, keyed by
// exchange. Exchanges without an artifact are simply absent from the
// result.
func (s *ArtifactStore) LoadDate(exchanges []string, date string) (map[string][]market.ContractSnapshot, error) {
	out := make(map[string][]market.ContractSnapshot, len(exchanges))
	for _, ex := range exchanges {
		snapshots, ok, err := s.Load(ex, date)
		if err != nil {
			return nil, err
		}
		if ok {
			out[ex] = snapshots
		}
	}
	return out, nil
}
