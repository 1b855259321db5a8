package universe

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/newthinker/prism/internal/core"
)

func testTickers() []core.Ticker {
	return []core.Ticker{
		{Symbol: "AAPL", Sector: "tech"},
		{Symbol: "MSFT", Sector: "tech"},
		{Symbol: "XOM", Sector: "energy"},
		{Symbol: "JPM", Sector: "finance"},
		{Symbol: "GS", Sector: "finance"},
	}
}

func TestNew_RejectsDuplicates(t *testing.T) {
	_, err := New([]core.Ticker{
		{Symbol: "AAPL", Sector: "tech"},
		{Symbol: "AAPL", Sector: "tech"},
	})
	if !errors.Is(err, core.ErrConfigInvalid) {
		t.Errorf("expected CONFIG_INVALID, got %v", err)
	}
}

func TestNew_RejectsMissingSector(t *testing.T) {
	_, err := New([]core.Ticker{{Symbol: "AAPL"}})
	if !errors.Is(err, core.ErrConfigInvalid) {
		t.Errorf("expected CONFIG_INVALID, got %v", err)
	}
}

func TestUniverse_SectorCounts(t *testing.T) {
	u, err := New(testTickers())
	if err != nil {
		t.Fatal(err)
	}

	counts := u.SectorCounts()
	if counts["tech"] != 2 || counts["energy"] != 1 || counts["finance"] != 2 {
		t.Errorf("unexpected sector counts: %v", counts)
	}
	if got := u.Sectors(); len(got) != 3 || got[0] != "energy" {
		t.Errorf("Sectors() = %v, want alphabetical [energy finance tech]", got)
	}
}

func TestUniverse_Without(t *testing.T) {
	u, err := New(testTickers())
	if err != nil {
		t.Fatal(err)
	}

	derived := u.Without(map[string]struct{}{"MSFT": {}, "GS": {}})
	if derived.Len() != 3 {
		t.Fatalf("derived Len() = %d, want 3", derived.Len())
	}
	if derived.Contains("MSFT") {
		t.Error("excluded ticker still present")
	}
	// Canonical order preserved
	want := []string{"AAPL", "XOM", "JPM"}
	for i, s := range derived.Symbols() {
		if s != want[i] {
			t.Errorf("Symbols()[%d] = %s, want %s", i, s, want[i])
		}
	}

	// Original untouched
	if u.Len() != 5 {
		t.Errorf("original universe mutated, Len() = %d", u.Len())
	}
}

func TestLoadCSV(t *testing.T) {
	content := []byte("symbol,sector,roe\nAAPL,tech,0.31\nXOM,energy,0.12\n")
	path := filepath.Join(t.TempDir(), "universe.csv")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatal(err)
	}

	u, err := LoadCSV(path)
	if err != nil {
		t.Fatalf("LoadCSV failed: %v", err)
	}
	if u.Len() != 2 {
		t.Errorf("Len() = %d, want 2", u.Len())
	}
	if sector, _ := u.Sector("XOM"); sector != "energy" {
		t.Errorf("Sector(XOM) = %s, want energy", sector)
	}
}

func TestLoadCSV_MissingColumns(t *testing.T) {
	content := []byte("name,weight\nAAPL,1\n")
	path := filepath.Join(t.TempDir(), "universe.csv")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadCSV(path)
	if !errors.Is(err, core.ErrConfigInvalid) {
		t.Errorf("expected CONFIG_INVALID, got %v", err)
	}
}
