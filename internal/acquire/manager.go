// Package acquire fetches exchange data concurrently, with caching,
// retries, and per-source fault isolation.
package acquire

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/qihao/futures-insight/internal/market"
	"github.com/qihao/futures-insight/internal/source"
	"github.com/qihao/futures-insight/pkg/cache"
	"github.com/qihao/futures-insight/pkg/config"
	"github.com/qihao/futures-insight/pkg/logger"
	"github.com/qihao/futures-insight/pkg/progress"
)

// Manager coordinates fetching across all registered sources. A bounded
// worker pool runs the fetches, a shared rate limiter spaces out
// upstream requests, and every failure stays contained to its source.
type Manager struct {
	cfg       config.AcquisitionConfig
	registry  *source.Registry
	store     cache.Store // nil disables caching
	artifacts *ArtifactStore
	limiter   *rate.Limiter
	log       *logger.Logger
}

// SourceFailure records why one source produced no data for a run.
type SourceFailure struct {
	Source string `json:"source"`
	Reason string `json:"reason"`
}

// PositionReport is the outcome of one position acquisition run.
type PositionReport struct {
	TradeDate string                               `json:"trade_date"`
	Succeeded []string                             `json:"succeeded"`
	Failed    []SourceFailure                      `json:"failed"`
	Snapshots map[string][]market.ContractSnapshot `json:"-"`
}

// SuccessRate returns the fraction of sources that yielded data.
func (r *PositionReport) SuccessRate() float64 {
	total := len(r.Succeeded) + len(r.Failed)
	if total == 0 {
		return 0
	}
	return float64(len(r.Succeeded)) / float64(total)
}

// MeetsThreshold reports whether enough sources succeeded for the run
// to count as usable.
func (r *PositionReport) MeetsThreshold(min float64) bool {
	return r.SuccessRate() >= min
}

// NewManager wires the acquisition pipeline. store may be nil to run
// without a cache.
func NewManager(cfg config.AcquisitionConfig, registry *source.Registry, store cache.Store, artifacts *ArtifactStore, log *logger.Logger) *Manager {
	limit := rate.Limit(cfg.RequestsPerSec)
	if cfg.RequestsPerSec <= 0 {
		limit = rate.Inf
	}
	return &Manager{
		cfg:       cfg,
		registry:  registry,
		store:     store,
		artifacts: artifacts,
		limiter:   rate.NewLimiter(limit, 1),
		log:       log,
	}
}

// FetchPositions fetches the position rankings of every registered
// source for one trade date. Each source that yields data gets its
// artifact written immediately; failures are collected, never
// propagated across sources. Per-source completion is reported to the
// progress sink as a stage-local fraction in [0, 1].
func (m *Manager) FetchPositions(ctx context.Context, date string, report progress.Func) (*PositionReport, error) {
	if err := market.ValidateTradeDate(date); err != nil {
		return nil, err
	}
	if report == nil {
		report = progress.Nop
	}

	sources := m.registry.Sources()
	jobs := make(chan source.Descriptor, len(sources))
	for _, s := range sources {
		jobs <- s
	}
	close(jobs)

	rep := &PositionReport{
		TradeDate: date,
		Snapshots: make(map[string][]market.ContractSnapshot, len(sources)),
	}
	total := len(sources)
	done := 0
	var mu sync.Mutex
	var wg sync.WaitGroup

	workers := m.cfg.Workers
	if workers > len(sources) {
		workers = len(sources)
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for desc := range jobs {
				snapshots, err := m.fetchSource(ctx, desc, date)
				mu.Lock()
				done++
				if err != nil {
					rep.Failed = append(rep.Failed, SourceFailure{
						Source: desc.Name,
						Reason: err.Error(),
					})
					m.log.WithField("source", desc.Name).WithError(err).Warn("source fetch failed")
					report(fmt.Sprintf("%s unavailable (%d/%d)", desc.Name, done, total),
						float64(done)/float64(total))
				} else {
					rep.Succeeded = append(rep.Succeeded, desc.Name)
					rep.Snapshots[desc.Name] = snapshots
					report(fmt.Sprintf("fetched %s positions (%d/%d)", desc.Name, done, total),
						float64(done)/float64(total))
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	sort.Strings(rep.Succeeded)
	sort.Slice(rep.Failed, func(i, j int) bool {
		return rep.Failed[i].Source < rep.Failed[j].Source
	})

	m.log.WithFields(map[string]interface{}{
		"date":      date,
		"succeeded": len(rep.Succeeded),
		"failed":    len(rep.Failed),
	}).Info("position acquisition finished")

	return rep, nil
}

// fetchSource resolves one source's snapshots, preferring the cache,
// and writes the artifact on success.
func (m *Manager) fetchSource(ctx context.Context, desc source.Descriptor, date string) ([]market.ContractSnapshot, error) {
	key := cache.KeyWith("position_rank", []string{desc.Name}, map[string]string{"date": date})

	if snapshots, ok := m.cacheGet(ctx, desc.Name, key); ok {
		if err := m.artifacts.Save(desc.Name, date, snapshots); err != nil {
			return nil, err
		}
		return snapshots, nil
	}

	ds, err := m.fetchWithRetry(ctx, desc, date)
	if err != nil {
		return nil, err
	}

	snapshots, err := canonicalize(desc, ds)
	if err != nil {
		return nil, err
	}
	if len(snapshots) == 0 {
		return nil, fmt.Errorf("%w: %s yielded no contracts for %s",
			market.ErrEmptyResult, desc.Name, date)
	}

	m.cachePut(ctx, desc.Name, key, snapshots)

	if err := m.artifacts.Save(desc.Name, date, snapshots); err != nil {
		return nil, err
	}
	return snapshots, nil
}

// fetchWithRetry runs the fetch capability with a per-attempt timeout.
// The delay between attempts grows with the attempt number, and timeout
// or throttling failures wait an extra beat before retrying.
func (m *Manager) fetchWithRetry(ctx context.Context, desc source.Descriptor, date string) (*source.Dataset, error) {
	timeout := desc.Timeout
	if timeout <= 0 {
		timeout = m.cfg.DefaultTimeout
	}
	retries := desc.MaxRetries
	if retries < 0 {
		retries = m.cfg.MaxRetries
	}

	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(attempt) * m.cfg.RetryDelay
			if errors.Is(lastErr, market.ErrTimeout) || errors.Is(lastErr, market.ErrRateLimited) {
				delay *= 2
			}
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		if err := m.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		ds, err := m.fetchOnce(ctx, desc, date, timeout)
		if err == nil {
			if ds.Empty() {
				lastErr = fmt.Errorf("%w: %s returned nothing for %s",
					market.ErrEmptyResult, desc.Name, date)
				continue
			}
			return ds, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("%s failed after %d attempts: %w", desc.Name, retries+1, lastErr)
}

// fetchOnce runs a single attempt under its own deadline. If the
// deadline fires, the attempt goroutine is abandoned; its late result
// is discarded via the buffered channel.
func (m *Manager) fetchOnce(ctx context.Context, desc source.Descriptor, date string, timeout time.Duration) (*source.Dataset, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		ds  *source.Dataset
		err error
	}
	done := make(chan result, 1)
	go func() {
		ds, err := desc.Positions(attemptCtx, date)
		done <- result{ds, err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			if errors.Is(res.err, context.DeadlineExceeded) {
				return nil, fmt.Errorf("%w: %s attempt exceeded %v", market.ErrTimeout, desc.Name, timeout)
			}
			return nil, res.err
		}
		return res.ds, nil
	case <-attemptCtx.Done():
		if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s attempt exceeded %v", market.ErrTimeout, desc.Name, timeout)
		}
		return nil, attemptCtx.Err()
	}
}

// canonicalize turns a raw dataset into contract snapshots through the
// source's schema adapter. Tables that fail canonicalization are
// skipped individually; only a fully unusable dataset is an error.
func canonicalize(desc source.Descriptor, ds *source.Dataset) ([]market.ContractSnapshot, error) {
	snapshots := make([]market.ContractSnapshot, 0, len(ds.Tables))
	var firstErr error
	for _, table := range ds.Tables {
		if len(table.Rows) == 0 {
			continue
		}
		records, err := desc.Adapter.Positions(table)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		snapshots = append(snapshots, market.ContractSnapshot{
			Exchange: desc.Name,
			Contract: table.Name,
			Records:  records,
		})
	}
	if len(snapshots) == 0 && firstErr != nil {
		return nil, firstErr
	}
	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].Contract < snapshots[j].Contract
	})
	return snapshots, nil
}

// FetchPrices builds the merged daily price table across every source
// that publishes one. Per-exchange failures are logged and skipped; an
// empty table is a valid result, not an error. Completion per exchange
// is reported as a stage-local fraction in [0, 1].
func (m *Manager) FetchPrices(ctx context.Context, date string, report progress.Func) (*market.PriceTable, error) {
	if err := market.ValidateTradeDate(date); err != nil {
		return nil, err
	}
	if report == nil {
		report = progress.Nop
	}

	daily := m.registry.Daily()
	table := &market.PriceTable{TradeDate: date}
	if daily == nil {
		return table, nil
	}

	priced := m.registry.PriceSources()
	for i, desc := range priced {
		quotes, err := m.fetchDaily(ctx, daily, desc, date)
		if err != nil {
			m.log.WithField("source", desc.Name).WithError(err).Warn("price fetch failed")
			report(fmt.Sprintf("%s prices unavailable (%d/%d)", desc.Name, i+1, len(priced)),
				float64(i+1)/float64(len(priced)))
			continue
		}
		table.Append(desc.Name, quotes)
		report(fmt.Sprintf("fetched %s prices (%d/%d)", desc.Name, i+1, len(priced)),
			float64(i+1)/float64(len(priced)))
	}

	table.SortDeterministic()
	return table, nil
}

func (m *Manager) fetchDaily(ctx context.Context, daily source.DailyFetchFunc, desc source.Descriptor, date string) ([]market.PriceQuote, error) {
	key := cache.KeyWith("futures_daily", nil, map[string]string{
		"market": desc.MarketCode,
		"date":   date,
	})

	if m.store != nil {
		if data, ok, err := m.store.Get(ctx, key); err == nil && ok {
			var quotes []market.PriceQuote
			if err := json.Unmarshal(data, &quotes); err == nil {
				return quotes, nil
			}
		}
	}

	if err := m.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	attemptCtx, cancel := context.WithTimeout(ctx, m.cfg.DefaultTimeout)
	defer cancel()

	ds, err := daily(attemptCtx, date, desc.MarketCode)
	if err != nil {
		return nil, err
	}

	quotes := make([]market.PriceQuote, 0)
	for _, t := range ds.Tables {
		quotes = append(quotes, desc.Adapter.Quotes(t)...)
	}

	if m.store != nil && len(quotes) > 0 {
		if data, err := json.Marshal(quotes); err == nil {
			if err := m.store.Put(ctx, key, data); err != nil {
				m.log.WithError(err).Debug("price cache write failed")
			}
		}
	}
	return quotes, nil
}

func (m *Manager) cacheGet(ctx context.Context, name, key string) ([]market.ContractSnapshot, bool) {
	if m.store == nil {
		return nil, false
	}
	data, ok, err := m.store.Get(ctx, key)
	if err != nil || !ok {
		if err != nil {
			m.log.WithField("source", name).WithError(err).Debug("cache read failed")
		}
		return nil, false
	}
	var snapshots []market.ContractSnapshot
	if err := json.Unmarshal(data, &snapshots); err != nil {
		m.log.WithField("source", name).WithError(err).Debug("cache entry unreadable")
		return nil, false
	}
	if len(snapshots) == 0 {
		return nil, false
	}
	return snapshots, true
}

func (m *Manager) cachePut(ctx context.Context, name, key string, snapshots []market.ContractSnapshot) {
	if m.store == nil {
		return
	}
	data, err := json.Marshal(snapshots)
	if err != nil {
		return
	}
	if err := m.store.Put(ctx, key, data); err != nil {
		m.log.WithField("source", name).WithError(err).Debug("cache write failed")
	}
}

// FailedSources formats the failure list for summaries and logs.
func (r *PositionReport) FailedSources() []string {
	out := make([]string, 0, len(r.Failed))
	for _, f := range r.Failed {
		out = append(out, fmt.Sprintf("%s: %s", f.Source, f.Reason))
	}
	return out
}

// String summarizes the report in one line.
func (r *PositionReport) String() string {
	return fmt.Sprintf("date=%s ok=[%s] failed=%d rate=%.0f%%",
		r.TradeDate, strings.Join(r.Succeeded, ","), len(r.Failed), r.SuccessRate()*100)
}
