package universe

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/newthinker/prism/internal/core"
)

// LoadCSV reads a universe from a CSV file with a header row containing at
// least "symbol" and "sector" columns. Extra columns are ignored so the
// same file can carry fundamentals.
func LoadCSV(path string) (*Universe, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("opening universe file: %w", err))
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("reading universe file: %w", err))
	}
	if len(records) < 2 {
		return nil, core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("universe file %s has no data rows", path))
	}

	symbolCol, sectorCol := -1, -1
	for i, name := range records[0] {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "symbol", "ticker":
			symbolCol = i
		case "sector", "industry":
			sectorCol = i
		}
	}
	if symbolCol < 0 || sectorCol < 0 {
		return nil, core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("universe file %s missing symbol/sector columns", path))
	}

	tickers := make([]core.Ticker, 0, len(records)-1)
	for _, rec := range records[1:] {
		tickers = append(tickers, core.Ticker{
			Symbol: strings.TrimSpace(rec[symbolCol]),
			Sector: strings.TrimSpace(rec[sectorCol]),
		})
	}

	return New(tickers)
}
