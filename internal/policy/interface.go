package policy

import (
	"fmt"
	"sort"

	"golang.org/x/exp/rand"

	"github.com/newthinker/prism/internal/core"
	"github.com/newthinker/prism/internal/universe"
)

// Policy maps (universe, size, random state) to one concrete ticker set for
// a single trial. Implementations are pure: same inputs and rng state, same
// selection. Randomness only ever comes from the supplied rng.
type Policy interface {
	Name() string
	Description() string
	Select(u *universe.Universe, size int, rng *rand.Rand) ([]string, error)
}

// Selector owns the closed set of policies and validates requests at the
// configuration boundary. Name lookup happens here, once per configuration,
// never inside the trial loop.
type Selector struct {
	policies map[string]Policy
}

// NewSelector creates an empty selector.
func NewSelector() *Selector {
	return &Selector{policies: make(map[string]Policy)}
}

// Register adds a policy to the selector.
func (s *Selector) Register(p Policy) {
	s.policies[p.Name()] = p
}

// Get retrieves a policy by name.
func (s *Selector) Get(name string) (Policy, bool) {
	p, ok := s.policies[name]
	return p, ok
}

// Names returns the registered policy names in alphabetical order.
func (s *Selector) Names() []string {
	names := make([]string, 0, len(s.policies))
	for name := range s.policies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Select validates bounds and dispatches to the named policy.
func (s *Selector) Select(name string, u *universe.Universe, size int, rng *rand.Rand) ([]string, error) {
	p, ok := s.policies[name]
	if !ok {
		return nil, core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown policy %q", name))
	}
	if size < 1 || size > u.Len() {
		return nil, core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("portfolio size %d out of range [1, %d]", size, u.Len()))
	}
	return p.Select(u, size, rng)
}
