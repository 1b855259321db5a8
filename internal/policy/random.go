package policy

import (
	"golang.org/x/exp/rand"

	"github.com/newthinker/prism/internal/universe"
)

// Random selects uniformly without replacement from the full universe.
type Random struct{}

// NewRandom creates the random policy.
func NewRandom() *Random { return &Random{} }

func (r *Random) Name() string { return "random" }

func (r *Random) Description() string {
	return "Uniform selection without replacement from the full universe"
}

// Select implements Policy.
func (r *Random) Select(u *universe.Universe, size int, rng *rand.Rand) ([]string, error) {
	symbols := u.Symbols()
	perm := rng.Perm(len(symbols))

	selected := make([]string, size)
	for i := 0; i < size; i++ {
		selected[i] = symbols[perm[i]]
	}
	return selected, nil
}
