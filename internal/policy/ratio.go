package policy

import (
	"errors"
	"fmt"
	"sort"

	"golang.org/x/exp/rand"

	"github.com/newthinker/prism/internal/core"
	"github.com/newthinker/prism/internal/provider"
	"github.com/newthinker/prism/internal/universe"
)

// Ratio ranks the universe by a single fundamental ratio and takes the top
// N. Ties break by symbol so the selection is fully deterministic. Tickers
// missing the ratio are excluded from ranking; if exclusion leaves fewer
// than N candidates the policy fails rather than under-filling.
type Ratio struct {
	ratios    provider.RatioProvider
	ratioName string
	ascending bool
}

// NewRatio creates a ratio-driven policy. ascending=true ranks lowest
// first (e.g. debt_ratio); false ranks highest first (e.g. roe).
func NewRatio(ratios provider.RatioProvider, ratioName string, ascending bool) *Ratio {
	return &Ratio{ratios: ratios, ratioName: ratioName, ascending: ascending}
}

func (r *Ratio) Name() string { return "ratio" }

func (r *Ratio) Description() string {
	direction := "highest"
	if r.ascending {
		direction = "lowest"
	}
	return fmt.Sprintf("Fundamentals-ranked selection: %s %s first", direction, r.ratioName)
}

// Select implements Policy. The rng is accepted for interface symmetry and
// never consumed.
func (r *Ratio) Select(u *universe.Universe, size int, _ *rand.Rand) ([]string, error) {
	type ranked struct {
		symbol string
		value  float64
	}

	candidates := make([]ranked, 0, u.Len())
	for _, symbol := range u.Symbols() {
		v, err := r.ratios.Ratio(symbol, r.ratioName)
		if err != nil {
			// An unresolvable ticker is missing data, not a failure.
			if errors.Is(err, core.ErrDataUnavailable) {
				continue
			}
			return nil, err
		}
		if !v.Valid {
			continue
		}
		candidates = append(candidates, ranked{symbol: symbol, value: v.Value})
	}

	if len(candidates) < size {
		return nil, core.WrapError(core.ErrInsufficientData,
			fmt.Errorf("only %d of %d tickers have ratio %s, need %d",
				len(candidates), u.Len(), r.ratioName, size))
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].value != candidates[j].value {
			if r.ascending {
				return candidates[i].value < candidates[j].value
			}
			return candidates[i].value > candidates[j].value
		}
		return candidates[i].symbol < candidates[j].symbol
	})

	selected := make([]string, size)
	for i := 0; i < size; i++ {
		selected[i] = candidates[i].symbol
	}
	return selected, nil
}
