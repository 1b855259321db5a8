package provider

import "github.com/newthinker/prism/internal/core"

// HistoryProvider supplies per-ticker historical period returns. The engine
// never fetches data itself; a provider snapshot is loaded once, up front,
// and treated as immutable for the run.
type HistoryProvider interface {
	// History returns the time-ordered period returns for a ticker, or
	// core.ErrDataUnavailable when the ticker cannot be resolved.
	History(symbol string) ([]float64, error)
}

// RatioProvider supplies a fixed-year snapshot of fundamental ratios.
// Consumed only by the ratio-driven selection policy.
type RatioProvider interface {
	// Ratio returns the named ratio for a ticker. A resolvable ticker with
	// no value for the ratio yields an invalid core.Float, not an error.
	Ratio(symbol, name string) (core.Float, error)
}
