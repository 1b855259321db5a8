package engine

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/newthinker/prism/internal/core"
)

// simulatePortfolio simulates one return path per ticker, compounds each to
// a terminal holding-period return, and equal-weights them into the
// portfolio terminal return. A NaN anywhere makes the outcome missing.
func simulatePortfolio(histories [][]float64, method core.Method, periods int, rng *rand.Rand) Outcome {
	sum := 0.0
	for _, hist := range histories {
		var terminal float64
		switch method {
		case core.MethodBootstrap:
			terminal = bootstrapTerminal(hist, periods, rng)
		default:
			terminal = monteCarloTerminal(hist, periods, rng)
		}
		if math.IsNaN(terminal) || math.IsInf(terminal, 0) {
			return Outcome{}
		}
		sum += terminal
	}

	portfolio := sum / float64(len(histories))
	if math.IsNaN(portfolio) || math.IsInf(portfolio, 0) {
		return Outcome{}
	}
	return Outcome{Return: portfolio, Valid: true}
}

// monteCarloTerminal fits a normal distribution to the full history and
// compounds `periods` i.i.d. draws. Zero-variance history degenerates to
// the compounded constant mean instead of drawing.
func monteCarloTerminal(history []float64, periods int, rng *rand.Rand) float64 {
	mu := stat.Mean(history, nil)
	sigma := stat.StdDev(history, nil)

	if sigma == 0 || math.IsNaN(sigma) {
		return compoundConstant(mu, periods)
	}

	normal := distuv.Normal{Mu: mu, Sigma: sigma, Src: rng}
	cum := 1.0
	for t := 0; t < periods; t++ {
		cum *= 1 + normal.Rand()
	}
	return cum - 1
}

// bootstrapTerminal compounds `periods` draws with replacement from the
// observed returns. Single-observation blocks: the empirical marginal
// distribution is preserved, autocorrelation is not.
func bootstrapTerminal(history []float64, periods int, rng *rand.Rand) float64 {
	cum := 1.0
	for t := 0; t < periods; t++ {
		cum *= 1 + history[rng.Intn(len(history))]
	}
	return cum - 1
}

func compoundConstant(r float64, periods int) float64 {
	return math.Pow(1+r, float64(periods)) - 1
}
