package provider

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/newthinker/prism/internal/core"
)

// CSVHistory loads period returns from a long-format CSV file with a header
// row of "symbol,return" (an optional leading date/period column is
// tolerated and ignored). Rows are assumed time-ordered within a symbol.
type CSVHistory struct {
	returns map[string][]float64
}

// NewCSVHistory reads the whole file into an immutable snapshot.
func NewCSVHistory(path string) (*CSVHistory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, core.WrapError(core.ErrDataUnavailable,
			fmt.Errorf("opening returns file: %w", err))
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, core.WrapError(core.ErrDataUnavailable,
			fmt.Errorf("reading returns file: %w", err))
	}
	if len(records) < 2 {
		return nil, core.WrapError(core.ErrDataUnavailable,
			fmt.Errorf("returns file %s has no data rows", path))
	}

	symbolCol, returnCol := -1, -1
	for i, name := range records[0] {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "symbol", "ticker":
			symbolCol = i
		case "return", "ret":
			returnCol = i
		}
	}
	if symbolCol < 0 || returnCol < 0 {
		return nil, core.WrapError(core.ErrDataUnavailable,
			fmt.Errorf("returns file %s missing symbol/return columns", path))
	}

	returns := make(map[string][]float64)
	for _, rec := range records[1:] {
		symbol := strings.TrimSpace(rec[symbolCol])
		raw := strings.TrimSpace(rec[returnCol])
		if symbol == "" {
			continue
		}
		// Gaps in upstream data arrive as empty cells or NA markers.
		// They stay out of the series; degenerate series are caught at
		// simulation time, not load time.
		if raw == "" || raw == "NA" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, core.WrapError(core.ErrDataUnavailable,
				fmt.Errorf("bad return value %q for %s: %w", raw, symbol, err))
		}
		returns[symbol] = append(returns[symbol], v)
	}

	return &CSVHistory{returns: returns}, nil
}

// History implements HistoryProvider.
func (c *CSVHistory) History(symbol string) ([]float64, error) {
	r, ok := c.returns[symbol]
	if !ok {
		return nil, core.WrapError(core.ErrDataUnavailable,
			fmt.Errorf("no return history for %s", symbol))
	}
	return r, nil
}

// Symbols returns the symbols with at least one observation.
func (c *CSVHistory) Symbols() []string {
	out := make([]string, 0, len(c.returns))
	for s := range c.returns {
		out = append(out, s)
	}
	return out
}
