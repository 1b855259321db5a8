package provider

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/newthinker/prism/internal/core"
)

// CSVFundamentals loads a fixed-year fundamentals snapshot from a CSV file
// with a header row: a "symbol" column plus one column per field. Fields
// may be precomputed ratios (roe, debt_ratio, ...) or raw statement values
// (net_income, total_assets, ...). When a requested ratio is absent as a
// column it is derived from the raw fields via safe division, so missing
// statement lines surface as missing ratios rather than errors.
type CSVFundamentals struct {
	fields map[string]map[string]core.Float
}

// NewCSVFundamentals reads the snapshot file.
func NewCSVFundamentals(path string) (*CSVFundamentals, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, core.WrapError(core.ErrDataUnavailable,
			fmt.Errorf("opening fundamentals file: %w", err))
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, core.WrapError(core.ErrDataUnavailable,
			fmt.Errorf("reading fundamentals file: %w", err))
	}
	if len(records) < 2 {
		return nil, core.WrapError(core.ErrDataUnavailable,
			fmt.Errorf("fundamentals file %s has no data rows", path))
	}

	header := records[0]
	symbolCol := -1
	for i, name := range header {
		if n := strings.ToLower(strings.TrimSpace(name)); n == "symbol" || n == "ticker" {
			symbolCol = i
		}
	}
	if symbolCol < 0 {
		return nil, core.WrapError(core.ErrDataUnavailable,
			fmt.Errorf("fundamentals file %s missing symbol column", path))
	}

	fields := make(map[string]map[string]core.Float, len(records)-1)
	for _, rec := range records[1:] {
		symbol := strings.TrimSpace(rec[symbolCol])
		if symbol == "" {
			continue
		}
		byName := make(map[string]core.Float, len(header)-1)
		for i, name := range header {
			if i == symbolCol {
				continue
			}
			key := strings.ToLower(strings.TrimSpace(name))
			byName[key] = core.ParseFloat(strings.TrimSpace(rec[i]))
		}
		fields[symbol] = byName
	}

	return &CSVFundamentals{fields: fields}, nil
}

// Ratio implements RatioProvider.
func (c *CSVFundamentals) Ratio(symbol, name string) (core.Float, error) {
	byName, ok := c.fields[symbol]
	if !ok {
		return core.Missing(), core.WrapError(core.ErrDataUnavailable,
			fmt.Errorf("no fundamentals for %s", symbol))
	}

	name = strings.ToLower(name)
	if v, ok := byName[name]; ok && v.Valid {
		return v, nil
	}
	return deriveRatio(byName, name), nil
}

// deriveRatio computes well-known ratios from raw statement fields.
// Anything it cannot derive is missing.
func deriveRatio(fields map[string]core.Float, name string) core.Float {
	switch name {
	case "roe":
		return core.SafeDiv(fields["net_income"], fields["stockholders_equity"])
	case "roa":
		return core.SafeDiv(fields["net_income"], fields["total_assets"])
	case "net_profit_margin":
		return core.SafeDiv(fields["net_income"], fields["total_revenue"])
	case "debt_ratio":
		return core.SafeDiv(fields["total_liabilities"], fields["total_assets"])
	case "debt_to_equity":
		return core.SafeDiv(fields["total_liabilities"], fields["stockholders_equity"])
	case "current_ratio":
		return core.SafeDiv(fields["current_assets"], fields["current_liabilities"])
	case "cash_ratio":
		return core.SafeDiv(fields["cash_and_equivalents"], fields["current_liabilities"])
	}
	return core.Missing()
}
