package policy

import (
	"golang.org/x/exp/rand"

	"github.com/newthinker/prism/internal/universe"
)

// Base is the non-randomized control: the first N tickers in canonical
// universe order. Every trial sees the same portfolio, so its outcome
// distribution reflects price-path randomness only.
type Base struct{}

// NewBase creates the base policy.
func NewBase() *Base { return &Base{} }

func (b *Base) Name() string { return "base" }

func (b *Base) Description() string {
	return "Deterministic reference portfolio: first N tickers in universe order"
}

// Select implements Policy. The rng is accepted for interface symmetry and
// never consumed.
func (b *Base) Select(u *universe.Universe, size int, _ *rand.Rand) ([]string, error) {
	return u.Symbols()[:size], nil
}
