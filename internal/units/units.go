// Package units provides shared constants and validation for length units
package units

import "strings"

// Unit constants
const (
	MM = "mm"
	CM = "cm"
	M  = "m"
)

// ValidUnits contains all valid unit values
var ValidUnits = []string{MM, CM, M}

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return strings.Join(ValidUnits, ", ")
}

// ToMillimetres converts a length in the given units to millimetres.
// COP series are always held in mm.
func ToMillimetres(v float64, from string) float64 {
	switch from {
	case CM:
		return v * 10
	case M:
		return v * 1000
	default:
		return v
	}
}

// SliceToMillimetres converts every element of v into a new slice.
func SliceToMillimetres(v []float64, from string) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = ToMillimetres(x, from)
	}
	return out
}
