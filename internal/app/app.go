package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/newthinker/prism/internal/config"
	"github.com/newthinker/prism/internal/core"
	"github.com/newthinker/prism/internal/engine"
	"github.com/newthinker/prism/internal/horizon"
	"github.com/newthinker/prism/internal/metrics"
	"github.com/newthinker/prism/internal/policy"
	"github.com/newthinker/prism/internal/provider"
	"github.com/newthinker/prism/internal/results"
	"github.com/newthinker/prism/internal/results/archive"
	"github.com/newthinker/prism/internal/universe"
)

// App assembles the simulation stack from configuration: universe and data
// snapshots, the policy selector, the engine, the results store and the
// metrics registry. Each process run gets a uuid attached to result rows.
type App struct {
	cfg      *config.Config
	logger   *zap.Logger
	universe *universe.Universe
	history  provider.HistoryProvider
	ratios   provider.RatioProvider
	selector *policy.Selector
	engine   *engine.Engine
	store    results.Store
	registry *metrics.Registry
	runID    string
}

// New loads the data snapshots and wires up the application.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	u, err := universe.LoadCSV(cfg.Data.UniverseFile)
	if err != nil {
		return nil, err
	}

	history, err := provider.NewCSVHistory(cfg.Data.ReturnsFile)
	if err != nil {
		return nil, err
	}

	selector := policy.NewSelector()
	selector.Register(policy.NewBase())
	selector.Register(policy.NewRandom())
	selector.Register(policy.NewStratified())

	var ratios provider.RatioProvider
	if cfg.Data.FundamentalsFile != "" {
		fundamentals, err := provider.NewCSVFundamentals(cfg.Data.FundamentalsFile)
		if err != nil {
			return nil, err
		}
		ratios = fundamentals
		selector.Register(policy.NewRatio(ratios, cfg.Policies.RatioName, cfg.Policies.RatioAscending))
	}

	store, err := newStore(cfg.Results)
	if err != nil {
		return nil, err
	}

	var registry *metrics.Registry
	if cfg.Metrics.Enabled {
		registry = metrics.NewRegistry()
	}

	return &App{
		cfg:      cfg,
		logger:   logger,
		universe: u,
		history:  history,
		ratios:   ratios,
		selector: selector,
		engine:   engine.New(selector, history, logger, registry),
		store:    store,
		registry: registry,
		runID:    uuid.NewString(),
	}, nil
}

func newStore(cfg config.ResultsConfig) (results.Store, error) {
	switch cfg.Type {
	case "csv":
		return results.NewCSVStore(cfg.Path)
	default:
		return results.NewSQLiteStore(cfg.DSN)
	}
}

// Universe returns the loaded universe.
func (a *App) Universe() *universe.Universe { return a.universe }

// Selector returns the policy selector.
func (a *App) Selector() *policy.Selector { return a.selector }

// Store returns the results store.
func (a *App) Store() results.Store { return a.store }

// RunID returns the uuid tagged onto rows written by this process.
func (a *App) RunID() string { return a.runID }

// EngineConfig fills engine operational knobs from configuration defaults.
func (a *App) EngineConfig(policyName string, numStocks int, duration string, method core.Method, trials int) engine.Config {
	if trials <= 0 {
		trials = a.cfg.Simulation.Trials
	}
	return engine.Config{
		Policy:         policyName,
		NumStocks:      numStocks,
		Duration:       duration,
		Method:         method,
		Trials:         trials,
		Seed:           a.cfg.Simulation.Seed,
		RetryLimit:     a.cfg.Simulation.RetryLimit,
		Workers:        a.cfg.Simulation.Workers,
		PeriodsPerYear: a.cfg.Simulation.PeriodsPerYear,
	}
}

// RunConfiguration executes one simulation configuration end to end: run
// the trial batch, summarize the outcome distribution, persist the row.
func (a *App) RunConfiguration(ctx context.Context, cfg engine.Config) (*results.Row, error) {
	batch, err := a.engine.Run(ctx, a.universe, cfg)
	if err != nil {
		return nil, err
	}

	key := results.Key{
		Policy:    cfg.Policy,
		NumStocks: cfg.NumStocks,
		Duration:  cfg.Duration,
		Method:    string(cfg.Method),
		Trials:    cfg.Trials,
	}
	years := horizon.Years(batch.Periods, cfg.PeriodsPerYear)
	row := results.Summarize(key, batch, years, a.runID)

	if err := a.store.Upsert(ctx, row); err != nil {
		return nil, err
	}
	return &row, nil
}

// ArchiveResults snapshots the results table to the configured cold
// storage backend and returns the snapshot key. Only the CSV table is a
// plain file; the sqlite database file is snapshotted as-is.
func (a *App) ArchiveResults(ctx context.Context) (string, error) {
	if !a.cfg.Archive.Enabled {
		return "", nil
	}

	var storage archive.Storage
	var err error
	switch a.cfg.Archive.Type {
	case "s3":
		storage, err = archive.NewS3(archive.S3Config{
			Bucket:    a.cfg.Archive.S3.Bucket,
			Endpoint:  a.cfg.Archive.S3.Endpoint,
			Region:    a.cfg.Archive.S3.Region,
			AccessKey: a.cfg.Archive.S3.AccessKey,
			SecretKey: a.cfg.Archive.S3.SecretKey,
			Prefix:    a.cfg.Archive.S3.Prefix,
		})
	default:
		storage, err = archive.NewLocalFS(a.cfg.Archive.Path)
	}
	if err != nil {
		return "", err
	}

	tablePath := a.cfg.Results.Path
	if a.cfg.Results.Type == "sqlite" {
		tablePath = a.cfg.Results.DSN
	}
	return archive.Snapshot(ctx, storage, tablePath)
}

// ServeMetrics exposes the prometheus registry over HTTP until the context
// is cancelled. No-op when metrics are disabled.
func (a *App) ServeMetrics(ctx context.Context) {
	if a.registry == nil {
		return
	}

	mux := http.NewServeMux()
	mux.Handle(a.cfg.Metrics.Path, promhttp.HandlerFor(a.registry.Registry, promhttp.HandlerOpts{}))
	server := &http.Server{Addr: a.cfg.Metrics.Addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Warn("metrics server stopped", zap.Error(err))
		}
	}()
}

// Close releases the results store.
func (a *App) Close() error {
	if err := a.store.Close(); err != nil {
		return fmt.Errorf("closing results store: %w", err)
	}
	return nil
}
