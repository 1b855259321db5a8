package core

import (
	"math"
	"strconv"
)

// Float is an explicitly nullable numeric value. Upstream providers hand
// back missing fundamentals and degenerate statistics routinely; carrying
// validity alongside the value keeps "missing" from silently becoming 0.
type Float struct {
	Value float64
	Valid bool
}

// FloatOf wraps a concrete value. NaN and infinities are treated as missing.
func FloatOf(v float64) Float {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Float{}
	}
	return Float{Value: v, Valid: true}
}

// Missing returns the invalid Float.
func Missing() Float {
	return Float{}
}

// SafeDiv divides numerator by denominator, yielding missing when either
// input is missing or the denominator is zero.
func SafeDiv(numerator, denominator Float) Float {
	if !numerator.Valid || !denominator.Valid || denominator.Value == 0 {
		return Float{}
	}
	return FloatOf(numerator.Value / denominator.Value)
}

// Or returns the value when valid, otherwise the fallback.
func (f Float) Or(fallback float64) float64 {
	if f.Valid {
		return f.Value
	}
	return fallback
}

// String renders the value, or "NA" when missing. Used by the tabular
// results encoders.
func (f Float) String() string {
	if !f.Valid {
		return "NA"
	}
	return strconv.FormatFloat(f.Value, 'g', -1, 64)
}

// ParseFloat parses the tabular rendering produced by String.
func ParseFloat(s string) Float {
	if s == "" || s == "NA" {
		return Float{}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Float{}
	}
	return FloatOf(v)
}
