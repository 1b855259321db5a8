package provider

import (
	"fmt"

	"github.com/newthinker/prism/internal/core"
)

// MemoryHistory is an in-memory HistoryProvider. Besides tests it backs
// runs whose return series were already assembled by the caller.
type MemoryHistory struct {
	returns map[string][]float64
}

// NewMemoryHistory wraps a returns-by-symbol map. The map is not copied;
// callers hand over ownership.
func NewMemoryHistory(returns map[string][]float64) *MemoryHistory {
	if returns == nil {
		returns = make(map[string][]float64)
	}
	return &MemoryHistory{returns: returns}
}

// History implements HistoryProvider.
func (m *MemoryHistory) History(symbol string) ([]float64, error) {
	r, ok := m.returns[symbol]
	if !ok {
		return nil, core.WrapError(core.ErrDataUnavailable,
			fmt.Errorf("no return history for %s", symbol))
	}
	return r, nil
}

// MemoryRatios is an in-memory RatioProvider.
type MemoryRatios struct {
	ratios map[string]map[string]core.Float
}

// NewMemoryRatios wraps a symbol -> ratio name -> value map.
func NewMemoryRatios(ratios map[string]map[string]core.Float) *MemoryRatios {
	if ratios == nil {
		ratios = make(map[string]map[string]core.Float)
	}
	return &MemoryRatios{ratios: ratios}
}

// Ratio implements RatioProvider.
func (m *MemoryRatios) Ratio(symbol, name string) (core.Float, error) {
	byName, ok := m.ratios[symbol]
	if !ok {
		return core.Missing(), core.WrapError(core.ErrDataUnavailable,
			fmt.Errorf("no fundamentals for %s", symbol))
	}
	return byName[name], nil
}
