package units

import (
	"math"
	"testing"
)

func TestToMillimetres(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		units    string
		expected float64
	}{
		{"12 mm", 12, MM, 12},
		{"1.5 cm", 1.5, CM, 15},
		{"0.02 m", 0.02, M, 20},
		{"negative cm", -3.2, CM, -32},
		{"unknown units default to mm", 7, "inch", 7},
		{"NaN stays NaN", math.NaN(), CM, math.NaN()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ToMillimetres(tt.value, tt.units)
			if math.IsNaN(tt.expected) {
				if !math.IsNaN(result) {
					t.Errorf("ToMillimetres(%f, %s) = %f, want NaN", tt.value, tt.units, result)
				}
				return
			}
			if math.Abs(result-tt.expected) > 1e-9 {
				t.Errorf("ToMillimetres(%f, %s) = %f, want %f", tt.value, tt.units, result, tt.expected)
			}
		})
	}
}

func TestSliceToMillimetres(t *testing.T) {
	in := []float64{1, 2.5}
	out := SliceToMillimetres(in, CM)
	if out[0] != 10 || out[1] != 25 {
		t.Errorf("SliceToMillimetres = %v", out)
	}
	if in[0] != 1 {
		t.Error("input was modified")
	}
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		name     string
		unit     string
		expected bool
	}{
		{"valid mm", MM, true},
		{"valid cm", CM, true},
		{"valid m", M, true},
		{"invalid unit", "inch", false},
		{"empty string", "", false},
		{"case sensitive", "MM", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValid(tt.unit); got != tt.expected {
				t.Errorf("IsValid(%q) = %v, want %v", tt.unit, got, tt.expected)
			}
		})
	}
}

func TestGetValidUnitsString(t *testing.T) {
	if got := GetValidUnitsString(); got != "mm, cm, m" {
		t.Errorf("GetValidUnitsString() = %q", got)
	}
}
