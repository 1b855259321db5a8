package universe

import (
	"fmt"
	"sort"

	"github.com/newthinker/prism/internal/core"
)

// Universe is the fixed, ordered set of tickers a run selects from.
// Immutable after construction; derived universes are new values.
type Universe struct {
	tickers []core.Ticker
	index   map[string]int
}

// New builds a universe from an ordered ticker list. Duplicate symbols and
// tickers without a sector are rejected.
func New(tickers []core.Ticker) (*Universe, error) {
	index := make(map[string]int, len(tickers))
	for i, t := range tickers {
		if t.Symbol == "" {
			return nil, core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("ticker at position %d has empty symbol", i))
		}
		if t.Sector == "" {
			return nil, core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("ticker %s has no sector", t.Symbol))
		}
		if _, dup := index[t.Symbol]; dup {
			return nil, core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("duplicate ticker %s", t.Symbol))
		}
		index[t.Symbol] = i
	}

	u := &Universe{
		tickers: make([]core.Ticker, len(tickers)),
		index:   index,
	}
	copy(u.tickers, tickers)
	return u, nil
}

// Len returns the number of tickers.
func (u *Universe) Len() int {
	return len(u.tickers)
}

// Tickers returns a copy of the ordered ticker list.
func (u *Universe) Tickers() []core.Ticker {
	out := make([]core.Ticker, len(u.tickers))
	copy(out, u.tickers)
	return out
}

// Symbols returns the ordered symbols.
func (u *Universe) Symbols() []string {
	out := make([]string, len(u.tickers))
	for i, t := range u.tickers {
		out[i] = t.Symbol
	}
	return out
}

// Contains reports whether the symbol is in the universe.
func (u *Universe) Contains(symbol string) bool {
	_, ok := u.index[symbol]
	return ok
}

// Sector returns the sector tag for a symbol.
func (u *Universe) Sector(symbol string) (string, bool) {
	i, ok := u.index[symbol]
	if !ok {
		return "", false
	}
	return u.tickers[i].Sector, true
}

// SectorCounts returns the number of tickers per sector.
func (u *Universe) SectorCounts() map[string]int {
	counts := make(map[string]int)
	for _, t := range u.tickers {
		counts[t.Sector]++
	}
	return counts
}

// Sectors returns the sector names in alphabetical order.
func (u *Universe) Sectors() []string {
	seen := make(map[string]struct{})
	var sectors []string
	for _, t := range u.tickers {
		if _, ok := seen[t.Sector]; !ok {
			seen[t.Sector] = struct{}{}
			sectors = append(sectors, t.Sector)
		}
	}
	sort.Strings(sectors)
	return sectors
}

// BySector returns the ordered symbols of one sector.
func (u *Universe) BySector(sector string) []string {
	var out []string
	for _, t := range u.tickers {
		if t.Sector == sector {
			out = append(out, t.Symbol)
		}
	}
	return out
}

// Without returns a derived universe with the given symbols removed.
// Canonical order of the remaining tickers is preserved. Used by the
// engine to retry a trial after excluding degenerate tickers.
func (u *Universe) Without(excluded map[string]struct{}) *Universe {
	if len(excluded) == 0 {
		return u
	}
	kept := make([]core.Ticker, 0, len(u.tickers))
	index := make(map[string]int)
	for _, t := range u.tickers {
		if _, skip := excluded[t.Symbol]; skip {
			continue
		}
		index[t.Symbol] = len(kept)
		kept = append(kept, t)
	}
	return &Universe{tickers: kept, index: index}
}
