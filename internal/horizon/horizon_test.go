package horizon

import (
	"errors"
	"testing"

	"github.com/newthinker/prism/internal/core"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		token          string
		periodsPerYear int
		want           int
		wantErr        bool
	}{
		{"3m", 12, 3, false},
		{"6m", 12, 6, false},
		{"1y", 12, 12, false},
		{"5y", 12, 60, false},
		{"10y", 12, 120, false},
		{"1m", 12, 1, false},
		{"3m", 252, 63, false},
		{"1y", 252, 252, false},
		// One month of daily periods rounds but never drops below 1
		{"1m", 4, 1, false},
		{"0y", 12, 0, true},
		{"-3m", 12, 0, true},
		{"3w", 12, 0, true},
		{"y", 12, 0, true},
		{"", 12, 0, true},
		{"3m", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, err := Resolve(tt.token, tt.periodsPerYear)
			if tt.wantErr {
				if !errors.Is(err, core.ErrConfigInvalid) {
					t.Fatalf("expected CONFIG_INVALID, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve(%q) failed: %v", tt.token, err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q, %d) = %d, want %d", tt.token, tt.periodsPerYear, got, tt.want)
			}
		})
	}
}

func TestResolve_Monotonic(t *testing.T) {
	tokens := []string{"1m", "3m", "6m", "1y", "3y", "5y", "10y"}
	prev := 0
	for _, token := range tokens {
		got, err := Resolve(token, 12)
		if err != nil {
			t.Fatalf("Resolve(%q) failed: %v", token, err)
		}
		if got <= prev {
			t.Errorf("Resolve(%q) = %d, not greater than previous %d", token, got, prev)
		}
		prev = got
	}
}

func TestYears(t *testing.T) {
	if y := Years(60, 12); y != 5 {
		t.Errorf("Years(60, 12) = %f, want 5", y)
	}
	if y := Years(6, 12); y != 0.5 {
		t.Errorf("Years(6, 12) = %f, want 0.5", y)
	}
}
