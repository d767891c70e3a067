package commands

import (
	"fmt"
	"path/filepath"

	"github.com/qihao/futures-insight/internal/acquire"
	"github.com/qihao/futures-insight/internal/analysis"
	"github.com/qihao/futures-insight/internal/source"
	"github.com/qihao/futures-insight/internal/strategy"
	"github.com/qihao/futures-insight/internal/termstructure"
	"github.com/qihao/futures-insight/pkg/cache"
	"github.com/qihao/futures-insight/pkg/config"
	"github.com/qihao/futures-insight/pkg/logger"
)

// app holds the wired pipeline shared by the subcommands.
type app struct {
	cfg          *config.Config
	log          *logger.Logger
	store        cache.Store // fetched datasets, DataTTL
	summaryStore cache.Store // analysis summaries, AnalysisTTL
	registry     *source.Registry
	manager      *acquire.Manager
	orchestrator *analysis.Orchestrator
	closers      []func()
}

// buildApp loads configuration and wires the pipeline against the
// local file provider.
func buildApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	log := logger.New(cfg)

	a := &app{cfg: cfg, log: log}

	// Datasets and summaries age out on different clocks, so each gets
	// its own store with its own TTL.
	if cfg.Redis.Enabled {
		store, err := cache.NewRedisStore(cfg.Redis, "insight", cfg.DataTTL)
		if err != nil {
			return nil, fmt.Errorf("connect redis cache: %w", err)
		}
		a.store = store
		a.closers = append(a.closers, func() { _ = store.Close() })

		summaries, err := cache.NewRedisStore(cfg.Redis, "insight:analysis", cfg.AnalysisTTL)
		if err != nil {
			return nil, fmt.Errorf("connect redis cache: %w", err)
		}
		a.summaryStore = summaries
		a.closers = append(a.closers, func() { _ = summaries.Close() })
	} else {
		store, err := cache.NewFileStore(cfg.CacheDir, cfg.DataTTL)
		if err != nil {
			return nil, fmt.Errorf("open file cache: %w", err)
		}
		a.store = store

		summaries, err := cache.NewFileStore(filepath.Join(cfg.CacheDir, "analysis"), cfg.AnalysisTTL)
		if err != nil {
			return nil, fmt.Errorf("open file cache: %w", err)
		}
		a.summaryStore = summaries
	}

	provider := source.NewFileProvider(cfg.SourceDir)
	registry, err := source.NewRegistry(provider.Daily(), source.DefaultDescriptors(provider)...)
	if err != nil {
		return nil, err
	}
	a.registry = registry

	artifacts, err := acquire.NewArtifactStore(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	a.manager = acquire.NewManager(cfg.Acquisition, registry, a.store, artifacts, log)

	engine := strategy.NewEngine(log, cfg.Acquisition.Workers,
		strategy.NewPowerChange(),
		strategy.NewInformedDivergence(),
		strategy.NewRetailReverse(cfg.RetailSeats),
	)
	a.orchestrator = analysis.New(cfg, registry, a.manager, artifacts, engine,
		termstructure.NewAnalyzer(log), a.summaryStore, log)

	return a, nil
}

func (a *app) close() {
	for _, fn := range a.closers {
		fn()
	}
}
