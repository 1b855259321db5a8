package results

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/newthinker/prism/internal/core"
	"github.com/newthinker/prism/internal/engine"
)

// Percentile points reported for every configuration.
const (
	quantileLow  = 0.05
	quantileMid  = 0.50
	quantileHigh = 0.95
)

// Summarize reduces a trial batch to one result row. Only valid outcomes
// enter the statistics; missing outcomes are surfaced through
// MissingCount. horizonYears annualizes the mean terminal return.
func Summarize(key Key, batch *engine.Batch, horizonYears float64, runID string) Row {
	row := Row{
		Key:          key,
		MissingCount: batch.Missing,
		RunID:        runID,
		UpdatedAt:    time.Now().UTC(),
	}

	valid := make([]float64, 0, len(batch.Outcomes))
	for _, o := range batch.Outcomes {
		if o.Valid {
			valid = append(valid, o.Return)
		}
	}
	row.ValidCount = len(valid)

	if len(valid) == 0 {
		return row
	}

	sort.Float64s(valid)
	mean := stat.Mean(valid, nil)
	row.Mean = core.FloatOf(mean)
	row.P05 = core.FloatOf(stat.Quantile(quantileLow, stat.Empirical, valid, nil))
	row.P50 = core.FloatOf(stat.Quantile(quantileMid, stat.Empirical, valid, nil))
	row.P95 = core.FloatOf(stat.Quantile(quantileHigh, stat.Empirical, valid, nil))
	row.AnnMean = annualize(mean, horizonYears)

	if len(valid) > 1 {
		row.Std = core.FloatOf(stat.StdDev(valid, nil))
	}

	return row
}

// annualize converts a holding-period return to its annual-rate
// equivalent: (1+r)^(1/years) - 1. Losses past -100% have no real
// annualized rate and come back missing.
func annualize(r, years float64) core.Float {
	if years <= 0 || 1+r <= 0 {
		return core.Missing()
	}
	return core.FloatOf(math.Pow(1+r, 1/years) - 1)
}
