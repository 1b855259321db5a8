package core

import "fmt"

// Method selects how simulated return paths are generated.
type Method string

const (
	// MethodMonteCarlo draws i.i.d. samples from a normal distribution
	// fitted to a ticker's historical returns.
	MethodMonteCarlo Method = "monte_carlo"

	// MethodBootstrap resamples a ticker's actual historical returns
	// with replacement.
	MethodBootstrap Method = "bootstrap"
)

// ParseMethod validates a method name from the configuration boundary.
func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case MethodMonteCarlo, MethodBootstrap:
		return Method(s), nil
	}
	return "", WrapError(ErrConfigInvalid,
		fmt.Errorf("simulation type must be monte_carlo or bootstrap, got %q", s))
}

// Ticker is an equity identifier tagged with its sector.
type Ticker struct {
	Symbol string
	Sector string
}
