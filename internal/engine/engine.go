package engine

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/exp/rand"

	"github.com/newthinker/prism/internal/core"
	"github.com/newthinker/prism/internal/horizon"
	"github.com/newthinker/prism/internal/metrics"
	"github.com/newthinker/prism/internal/policy"
	"github.com/newthinker/prism/internal/provider"
	"github.com/newthinker/prism/internal/universe"
)

// Config identifies one batch of trials. The (Policy, NumStocks, Duration,
// Method, Trials) tuple is the addressable unit of work and the primary key
// of a results row; the remaining fields are operational knobs.
type Config struct {
	Policy    string
	NumStocks int
	Duration  string
	Method    core.Method
	Trials    int

	Seed           uint64
	RetryLimit     int
	Workers        int
	PeriodsPerYear int
}

// Validate checks the configuration against the universe.
func (c Config) Validate(u *universe.Universe) error {
	if c.Trials < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("trial count must be positive, got %d", c.Trials))
	}
	if c.NumStocks < 1 || c.NumStocks > u.Len() {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("portfolio size %d out of range [1, %d]", c.NumStocks, u.Len()))
	}
	if _, err := core.ParseMethod(string(c.Method)); err != nil {
		return err
	}
	if _, err := horizon.Resolve(c.Duration, c.PeriodsPerYear); err != nil {
		return err
	}
	return nil
}

// Outcome is one trial's terminal portfolio return. Invalid outcomes are
// counted but excluded from numeric aggregation.
type Outcome struct {
	Return float64
	Valid  bool
}

// Batch is the result of running all trials of one configuration.
type Batch struct {
	Outcomes []Outcome
	Periods  int
	Missing  int
	Retries  int
	Elapsed  time.Duration
}

// Engine runs simulation trials for one configuration at a time. Universe
// and history snapshots are read-only, so a single engine may be shared.
type Engine struct {
	selector *policy.Selector
	history  provider.HistoryProvider
	logger   *zap.Logger
	metrics  *metrics.Registry
}

// New creates an Engine. Logger and metrics may be nil.
func New(selector *policy.Selector, history provider.HistoryProvider, logger *zap.Logger, reg *metrics.Registry) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		selector: selector,
		history:  history,
		logger:   logger,
		metrics:  reg,
	}
}

// Run executes cfg.Trials independent trials and returns their outcomes.
//
// Trials run on a bounded worker pool. Each trial owns a private random
// stream derived from the run seed and the trial index, so results do not
// depend on scheduling order. A trial-level data problem is retried with
// the offending tickers excluded; exhausting the retry budget fails the
// whole configuration.
func (e *Engine) Run(ctx context.Context, u *universe.Universe, cfg Config) (*Batch, error) {
	start := time.Now()

	if err := cfg.Validate(u); err != nil {
		return nil, err
	}
	periods, err := horizon.Resolve(cfg.Duration, cfg.PeriodsPerYear)
	if err != nil {
		return nil, err
	}

	workers := cfg.Workers
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > cfg.Trials {
		workers = cfg.Trials
	}

	outcomes := make([]Outcome, cfg.Trials)
	retries := make([]int, cfg.Trials)
	trialErrs := make([]error, cfg.Trials)

	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for trial := range jobs {
				out, nRetries, err := e.runTrial(u, cfg, periods, trial)
				outcomes[trial] = out
				retries[trial] = nRetries
				trialErrs[trial] = err
			}
		}()
	}

dispatch:
	for trial := 0; trial < cfg.Trials; trial++ {
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- trial:
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	batch := &Batch{Outcomes: outcomes, Periods: periods}
	for trial := 0; trial < cfg.Trials; trial++ {
		if err := trialErrs[trial]; err != nil {
			e.metrics.RecordConfiguration("failed")
			return nil, err
		}
		batch.Retries += retries[trial]
		e.metrics.RecordTrial(cfg.Policy, string(cfg.Method))
		if !outcomes[trial].Valid {
			batch.Missing++
			e.metrics.RecordMissing(cfg.Policy, string(cfg.Method))
		}
	}

	batch.Elapsed = time.Since(start)
	e.metrics.RecordConfiguration("ok")
	e.metrics.ObserveSimulationDuration(batch.Elapsed.Seconds())

	e.logger.Info("configuration complete",
		zap.String("policy", cfg.Policy),
		zap.Int("num_stocks", cfg.NumStocks),
		zap.String("duration", cfg.Duration),
		zap.String("method", string(cfg.Method)),
		zap.Int("trials", cfg.Trials),
		zap.Int("missing", batch.Missing),
		zap.Int("retries", batch.Retries),
		zap.Duration("elapsed", batch.Elapsed),
	)

	return batch, nil
}

// runTrial executes one trial: select tickers, simulate one return path per
// ticker, compound, equal-weight. Tickers with degenerate history fail the
// attempt and are excluded from the retry's selection universe.
func (e *Engine) runTrial(u *universe.Universe, cfg Config, periods, trial int) (Outcome, int, error) {
	rng := rand.New(rand.NewSource(cfg.Seed + uint64(trial)))

	excluded := make(map[string]struct{})
	for attempt := 0; ; attempt++ {
		eligible := u.Without(excluded)
		if eligible.Len() < cfg.NumStocks {
			return Outcome{}, attempt, core.WrapError(core.ErrRetriesExhausted,
				fmt.Errorf("trial %d: only %d eligible tickers left, need %d",
					trial, eligible.Len(), cfg.NumStocks))
		}

		symbols, err := e.selector.Select(cfg.Policy, eligible, cfg.NumStocks, rng)
		if err != nil {
			return Outcome{}, attempt, err
		}

		histories := make([][]float64, len(symbols))
		var degenerate []string
		for i, symbol := range symbols {
			hist, err := e.history.History(symbol)
			if err != nil {
				if errors.Is(err, core.ErrDataUnavailable) {
					degenerate = append(degenerate, symbol)
					continue
				}
				return Outcome{}, attempt, err
			}
			if len(hist) < 2 {
				degenerate = append(degenerate, symbol)
				continue
			}
			histories[i] = hist
		}

		if len(degenerate) > 0 {
			if attempt >= cfg.RetryLimit {
				return Outcome{}, attempt, core.WrapError(core.ErrRetriesExhausted,
					core.WrapError(core.ErrInsufficientHistory,
						fmt.Errorf("trial %d: tickers %v after %d attempts", trial, degenerate, attempt+1)))
			}
			for _, symbol := range degenerate {
				excluded[symbol] = struct{}{}
			}
			e.metrics.RecordRetry()
			e.logger.Debug("trial retry",
				zap.Int("trial", trial),
				zap.Strings("excluded", degenerate),
				zap.Int("attempt", attempt+1),
			)
			continue
		}

		return simulatePortfolio(histories, cfg.Method, periods, rng), attempt, nil
	}
}
