// Package horizon converts human-readable duration tokens like "3m" or
// "5y" into simulation period counts.
package horizon

import (
	"fmt"
	"math"
	"strconv"

	"github.com/newthinker/prism/internal/core"
)

// Resolve parses a duration token of the form <integer><unit>, unit "m"
// (months) or "y" (years), and converts it to a period count at the given
// series granularity. Both resampling methods must share the same
// periodsPerYear constant so horizons stay comparable across methods.
func Resolve(token string, periodsPerYear int) (int, error) {
	if periodsPerYear < 1 {
		return 0, core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("periods_per_year must be positive, got %d", periodsPerYear))
	}
	if len(token) < 2 {
		return 0, core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("duration token %q too short", token))
	}

	unit := token[len(token)-1]
	n, err := strconv.Atoi(token[:len(token)-1])
	if err != nil {
		return 0, core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("duration token %q has no numeric prefix", token))
	}
	if n <= 0 {
		return 0, core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("duration token %q must be positive", token))
	}

	var periods int
	switch unit {
	case 'm':
		periods = int(math.Round(float64(n) / 12 * float64(periodsPerYear)))
	case 'y':
		periods = n * periodsPerYear
	default:
		return 0, core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("duration token %q has unknown unit %q", token, string(unit)))
	}

	if periods < 1 {
		periods = 1
	}
	return periods, nil
}

// Years returns the horizon length in years implied by a period count at
// the given granularity. Used for annualizing terminal returns.
func Years(periods, periodsPerYear int) float64 {
	return float64(periods) / float64(periodsPerYear)
}
