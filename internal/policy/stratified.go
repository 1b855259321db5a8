package policy

import (
	"sort"

	"golang.org/x/exp/rand"

	"github.com/newthinker/prism/internal/universe"
)

// Stratified samples across sectors so the portfolio's sector mix
// approximates the universe's. Per-sector slot counts come from
// largest-remainder rounding, so the total always equals the requested
// size even when it does not divide evenly across sectors.
type Stratified struct{}

// NewStratified creates the stratified policy.
func NewStratified() *Stratified { return &Stratified{} }

func (s *Stratified) Name() string { return "stratified" }

func (s *Stratified) Description() string {
	return "Sector-proportional selection with largest-remainder slot allocation"
}

// Select implements Policy.
func (s *Stratified) Select(u *universe.Universe, size int, rng *rand.Rand) ([]string, error) {
	sectors := u.Sectors()
	counts := u.SectorCounts()
	total := u.Len()

	slots := allocateSlots(sectors, counts, total, size)

	selected := make([]string, 0, size)
	chosen := make(map[string]struct{}, size)
	for _, sector := range sectors {
		members := u.BySector(sector)
		perm := rng.Perm(len(members))
		for i := 0; i < slots[sector]; i++ {
			symbol := members[perm[i]]
			selected = append(selected, symbol)
			chosen[symbol] = struct{}{}
		}
	}

	// Slots a capped sector could not absorb are filled with uniform draws
	// from the remaining tickers.
	if len(selected) < size {
		var rest []string
		for _, symbol := range u.Symbols() {
			if _, ok := chosen[symbol]; !ok {
				rest = append(rest, symbol)
			}
		}
		perm := rng.Perm(len(rest))
		for i := 0; len(selected) < size; i++ {
			selected = append(selected, rest[perm[i]])
		}
	}

	return selected, nil
}

// allocateSlots distributes size slots over sectors by largest-remainder
// rounding: floor of each proportional share first, then one extra slot per
// sector in order of descending fractional remainder, ties broken by sector
// name. Allocations never exceed a sector's member count.
func allocateSlots(sectors []string, counts map[string]int, total, size int) map[string]int {
	type share struct {
		sector    string
		remainder float64
	}

	slots := make(map[string]int, len(sectors))
	assigned := 0
	remainders := make([]share, 0, len(sectors))

	for _, sector := range sectors {
		exact := float64(size) * float64(counts[sector]) / float64(total)
		base := int(exact)
		if base > counts[sector] {
			base = counts[sector]
		}
		slots[sector] = base
		assigned += base
		remainders = append(remainders, share{sector: sector, remainder: exact - float64(base)})
	}

	sort.Slice(remainders, func(i, j int) bool {
		if remainders[i].remainder != remainders[j].remainder {
			return remainders[i].remainder > remainders[j].remainder
		}
		return remainders[i].sector < remainders[j].sector
	})

	for _, r := range remainders {
		if assigned >= size {
			break
		}
		if slots[r.sector] < counts[r.sector] {
			slots[r.sector]++
			assigned++
		}
	}

	return slots
}
