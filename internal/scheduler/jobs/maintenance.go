package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/qihao/futures-insight/pkg/cache"
	"github.com/qihao/futures-insight/pkg/logger"
)

// CacheMaintenance evicts cache entries older than the retention
// window across every store it watches. Expired entries are otherwise
// left on disk until this runs.
type CacheMaintenance struct {
	stores    []cache.Store
	retention time.Duration
	schedule  string
	log       *logger.Logger
}

func NewCacheMaintenance(stores []cache.Store, retention time.Duration, schedule string, log *logger.Logger) *CacheMaintenance {
	return &CacheMaintenance{stores: stores, retention: retention, schedule: schedule, log: log}
}

func (j *CacheMaintenance) Name() string     { return "cache_maintenance" }
func (j *CacheMaintenance) Schedule() string { return j.schedule }

func (j *CacheMaintenance) Run(ctx context.Context) error {
	total := 0
	for _, store := range j.stores {
		removed, err := store.EvictOlderThan(ctx, j.retention)
		if err != nil {
			return fmt.Errorf("cache eviction: %w", err)
		}
		total += removed
	}
	j.log.WithField("removed", total).Info("cache maintenance done")
	return nil
}
