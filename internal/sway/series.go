package sway

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrEmptySeries is returned when a stage receives a zero-length series.
	ErrEmptySeries = errors.New("empty COP series")
	// ErrLengthMismatch is returned when COP_x and COP_y differ in length.
	ErrLengthMismatch = errors.New("COP_x and COP_y length mismatch")
)

// Direction identifies one of the three sway signals derived from a trial.
type Direction string

const (
	// RD is the resultant distance, hypot(COP_x, COP_y).
	RD Direction = "RD"
	// ML is the medio-lateral displacement (COP_x).
	ML Direction = "ML"
	// AP is the antero-posterior displacement (COP_y).
	AP Direction = "AP"
)

// Directions lists the sway directions in the order features are emitted.
var Directions = []Direction{RD, ML, AP}

// COPSeries is a pair of equal-length displacement series in millimetres
// sampled at Frequency Hz. Values are never modified after construction;
// every transformation returns a new series.
type COPSeries struct {
	x         []float64
	y         []float64
	Frequency float64
}

// NewCOPSeries copies x and y into a new series.
func NewCOPSeries(x, y []float64, frequency float64) (COPSeries, error) {
	if len(x) != len(y) {
		return COPSeries{}, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(x), len(y))
	}
	return COPSeries{
		x:         append([]float64(nil), x...),
		y:         append([]float64(nil), y...),
		Frequency: frequency,
	}, nil
}

// Len returns the number of samples.
func (s COPSeries) Len() int { return len(s.x) }

// X returns a copy of the medio-lateral series.
func (s COPSeries) X() []float64 { return append([]float64(nil), s.x...) }

// Y returns a copy of the antero-posterior series.
func (s COPSeries) Y() []float64 { return append([]float64(nil), s.y...) }

// Duration is N / fs in seconds.
func (s COPSeries) Duration() float64 {
	if s.Frequency <= 0 {
		return math.NaN()
	}
	return float64(len(s.x)) / s.Frequency
}

// RD returns the resultant distance for every sample.
func (s COPSeries) RD() []float64 {
	rd := make([]float64, len(s.x))
	for i := range s.x {
		rd[i] = math.Hypot(s.x[i], s.y[i])
	}
	return rd
}

// Signal returns a copy of the series for the given direction.
func (s COPSeries) Signal(d Direction) []float64 {
	switch d {
	case ML:
		return s.X()
	case AP:
		return s.Y()
	default:
		return s.RD()
	}
}

// Map applies f independently to both axes and returns the result as a new
// series at the given frequency. f must not retain or modify its argument.
func (s COPSeries) Map(frequency float64, f func([]float64) ([]float64, error)) (COPSeries, error) {
	x, err := f(s.X())
	if err != nil {
		return COPSeries{}, fmt.Errorf("COP_x: %w", err)
	}
	y, err := f(s.Y())
	if err != nil {
		return COPSeries{}, fmt.Errorf("COP_y: %w", err)
	}
	return NewCOPSeries(x, y, frequency)
}

// Reverse returns the series traversed backwards in time.
func (s COPSeries) Reverse() COPSeries {
	n := len(s.x)
	out := COPSeries{x: make([]float64, n), y: make([]float64, n), Frequency: s.Frequency}
	for i := 0; i < n; i++ {
		out.x[i] = s.x[n-1-i]
		out.y[i] = s.y[n-1-i]
	}
	return out
}

// MarshalCOP returns the intermediate representation written when COP
// series are dumped for debugging.
func (s COPSeries) MarshalCOP() map[string][]float64 {
	return map[string][]float64{"COP_x": s.X(), "COP_y": s.Y()}
}
