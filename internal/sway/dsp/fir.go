package dsp

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// FirWin designs a linear-phase low-pass FIR filter with numtaps
// coefficients. cutoff is relative to the Nyquist frequency (0 < cutoff <= 1)
// and the Kaiser window shape beta controls the stop-band attenuation.
// The taps are scaled for unit gain at DC.
func FirWin(numtaps int, cutoff, beta float64) ([]float64, error) {
	if numtaps < 1 {
		return nil, fmt.Errorf("firwin: numtaps must be positive, got %d", numtaps)
	}
	if cutoff <= 0 || cutoff > 1 {
		return nil, fmt.Errorf("firwin: cutoff must be in (0, 1], got %g", cutoff)
	}
	alpha := float64(numtaps-1) / 2
	win := Kaiser(numtaps, beta)
	h := make([]float64, numtaps)
	for i := range h {
		m := float64(i) - alpha
		h[i] = cutoff * sinc(cutoff*m) * win[i]
	}
	floats.Scale(1/floats.Sum(h), h)
	return h, nil
}

// sinc is the normalised sinc, sin(pi x)/(pi x).
func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	px := math.Pi * x
	return math.Sin(px) / px
}
