package engine

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newthinker/prism/internal/core"
	"github.com/newthinker/prism/internal/policy"
	"github.com/newthinker/prism/internal/provider"
	"github.com/newthinker/prism/internal/universe"
)

func testUniverse(t *testing.T, symbols ...string) *universe.Universe {
	t.Helper()
	tickers := make([]core.Ticker, len(symbols))
	for i, s := range symbols {
		tickers[i] = core.Ticker{Symbol: s, Sector: "test"}
	}
	u, err := universe.New(tickers)
	require.NoError(t, err)
	return u
}

func testSelector() *policy.Selector {
	s := policy.NewSelector()
	s.Register(policy.NewBase())
	s.Register(policy.NewRandom())
	s.Register(policy.NewStratified())
	return s
}

func testConfig(policyName string, method core.Method, trials int) Config {
	return Config{
		Policy:         policyName,
		NumStocks:      3,
		Duration:       "3m",
		Method:         method,
		Trials:         trials,
		Seed:           42,
		RetryLimit:     3,
		Workers:        4,
		PeriodsPerYear: 12,
	}
}

func constantHistory(r float64, n int) []float64 {
	h := make([]float64, n)
	for i := range h {
		h[i] = r
	}
	return h
}

func TestRun_ZeroReturnHistory(t *testing.T) {
	// Every ticker's history is flat zero, so every trial's terminal
	// return is exactly zero under both methods.
	returns := map[string][]float64{}
	symbols := []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J"}
	for _, s := range symbols {
		returns[s] = constantHistory(0, 24)
	}
	u := testUniverse(t, symbols...)
	history := provider.NewMemoryHistory(returns)
	e := New(testSelector(), history, nil, nil)

	for _, method := range []core.Method{core.MethodMonteCarlo, core.MethodBootstrap} {
		batch, err := e.Run(context.Background(), u, testConfig("random", method, 100))
		require.NoError(t, err, method)

		assert.Equal(t, 3, batch.Periods, method)
		assert.Equal(t, 0, batch.Missing, method)
		require.Len(t, batch.Outcomes, 100, method)
		for _, out := range batch.Outcomes {
			require.True(t, out.Valid)
			assert.Equal(t, 0.0, out.Return, method)
		}
	}
}

func TestRun_ZeroVarianceCompounds(t *testing.T) {
	// Constant 1% per period compounds deterministically, without drawing.
	u := testUniverse(t, "A", "B", "C")
	history := provider.NewMemoryHistory(map[string][]float64{
		"A": constantHistory(0.01, 12),
		"B": constantHistory(0.01, 12),
		"C": constantHistory(0.01, 12),
	})
	e := New(testSelector(), history, nil, nil)

	cfg := testConfig("base", core.MethodMonteCarlo, 10)
	cfg.Duration = "1y"
	batch, err := e.Run(context.Background(), u, cfg)
	require.NoError(t, err)

	want := math.Pow(1.01, 12) - 1
	for _, out := range batch.Outcomes {
		require.True(t, out.Valid)
		assert.InDelta(t, want, out.Return, 1e-12)
	}

	cfg.Method = core.MethodBootstrap
	batch, err = e.Run(context.Background(), u, cfg)
	require.NoError(t, err)
	for _, out := range batch.Outcomes {
		assert.InDelta(t, want, out.Return, 1e-12)
	}
}

func TestRun_Reproducible(t *testing.T) {
	u := testUniverse(t, "A", "B", "C", "D", "E")
	history := provider.NewMemoryHistory(map[string][]float64{
		"A": {0.01, -0.02, 0.03, 0.00},
		"B": {0.02, 0.01, -0.01, 0.04},
		"C": {-0.03, 0.02, 0.01, 0.02},
		"D": {0.00, 0.00, 0.05, -0.04},
		"E": {0.01, 0.01, 0.01, 0.02},
	})
	e := New(testSelector(), history, nil, nil)
	cfg := testConfig("random", core.MethodMonteCarlo, 50)

	first, err := e.Run(context.Background(), u, cfg)
	require.NoError(t, err)
	second, err := e.Run(context.Background(), u, cfg)
	require.NoError(t, err)
	assert.Equal(t, first.Outcomes, second.Outcomes)

	cfg.Seed = 7
	third, err := e.Run(context.Background(), u, cfg)
	require.NoError(t, err)
	assert.NotEqual(t, first.Outcomes, third.Outcomes)
}

func TestRun_RetriesExcludeDegenerateTickers(t *testing.T) {
	// "C" has a single observation, which cannot seed a simulation. The
	// base policy picks it on the first attempt; the retry must exclude
	// it and succeed with the remaining tickers.
	u := testUniverse(t, "A", "B", "C", "D")
	history := provider.NewMemoryHistory(map[string][]float64{
		"A": constantHistory(0.01, 10),
		"B": constantHistory(0.01, 10),
		"C": {0.05},
		"D": constantHistory(0.01, 10),
	})
	e := New(testSelector(), history, nil, nil)

	batch, err := e.Run(context.Background(), u, testConfig("base", core.MethodBootstrap, 5))
	require.NoError(t, err)
	assert.Equal(t, 0, batch.Missing)
	assert.Equal(t, 5, batch.Retries) // one retry per trial
	for _, out := range batch.Outcomes {
		assert.True(t, out.Valid)
	}
}

func TestRun_RetriesExhausted(t *testing.T) {
	// No ticker has usable history, so exclusion drains the universe.
	u := testUniverse(t, "A", "B", "C", "D")
	history := provider.NewMemoryHistory(map[string][]float64{
		"A": {0.01},
		"B": {},
		"C": {0.05},
		"D": nil,
	})
	e := New(testSelector(), history, nil, nil)

	_, err := e.Run(context.Background(), u, testConfig("base", core.MethodBootstrap, 3))
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrRetriesExhausted)
}

func TestRun_UnknownSymbolTreatedAsMissingHistory(t *testing.T) {
	// "C" is absent from the history snapshot entirely; the trial retries
	// around it the same way it does for short histories.
	u := testUniverse(t, "A", "B", "C", "D")
	history := provider.NewMemoryHistory(map[string][]float64{
		"A": constantHistory(0.01, 10),
		"B": constantHistory(0.01, 10),
		"D": constantHistory(0.01, 10),
	})
	e := New(testSelector(), history, nil, nil)

	batch, err := e.Run(context.Background(), u, testConfig("base", core.MethodBootstrap, 2))
	require.NoError(t, err)
	assert.Equal(t, 2, batch.Retries)
}

func TestRun_NaNHistoryYieldsMissingOutcomes(t *testing.T) {
	nan := math.NaN()
	u := testUniverse(t, "A", "B", "C")
	history := provider.NewMemoryHistory(map[string][]float64{
		"A": {nan, nan, nan},
		"B": constantHistory(0.01, 10),
		"C": constantHistory(0.01, 10),
	})
	e := New(testSelector(), history, nil, nil)

	batch, err := e.Run(context.Background(), u, testConfig("base", core.MethodMonteCarlo, 10))
	require.NoError(t, err)
	assert.Equal(t, 10, batch.Missing)
	for _, out := range batch.Outcomes {
		assert.False(t, out.Valid)
	}
}

func TestRun_ContextCancelled(t *testing.T) {
	u := testUniverse(t, "A", "B", "C")
	history := provider.NewMemoryHistory(map[string][]float64{
		"A": constantHistory(0.01, 10),
		"B": constantHistory(0.01, 10),
		"C": constantHistory(0.01, 10),
	})
	e := New(testSelector(), history, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.Run(ctx, u, testConfig("base", core.MethodBootstrap, 1000))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConfig_Validate(t *testing.T) {
	u := testUniverse(t, "A", "B", "C")

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero trials", func(c *Config) { c.Trials = 0 }},
		{"zero stocks", func(c *Config) { c.NumStocks = 0 }},
		{"too many stocks", func(c *Config) { c.NumStocks = 4 }},
		{"bad method", func(c *Config) { c.Method = "jackknife" }},
		{"bad duration", func(c *Config) { c.Duration = "3w" }},
		{"zero periods per year", func(c *Config) { c.PeriodsPerYear = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig("base", core.MethodBootstrap, 10)
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(u), core.ErrConfigInvalid)
		})
	}

	valid := testConfig("base", core.MethodBootstrap, 10)
	assert.NoError(t, valid.Validate(u))
}
