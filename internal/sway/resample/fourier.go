package resample

import (
	"fmt"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Fourier resamples x to exactly num samples by truncating or zero-padding
// its spectrum. The signal is assumed periodic, so edges may ring.
func Fourier(x []float64, num int) ([]float64, error) {
	nx := len(x)
	if nx == 0 {
		return nil, ErrEmptyInput
	}
	if num < 1 {
		return nil, fmt.Errorf("%w: num=%d", ErrInvalidRatio, num)
	}
	if num == nx {
		return append([]float64(nil), x...), nil
	}

	X := fourier.NewFFT(nx).Coefficients(nil, x)
	Y := make([]complex128, num/2+1)

	n := num
	if nx < n {
		n = nx
	}
	copy(Y, X[:n/2+1])
	if n%2 == 0 {
		switch {
		case num < nx:
			Y[n/2] *= 2
		case num > nx:
			Y[n/2] *= 0.5
		}
	}

	y := fourier.NewFFT(num).Sequence(nil, Y)
	scale := 1 / float64(nx)
	for i := range y {
		y[i] *= scale
	}
	return y, nil
}
