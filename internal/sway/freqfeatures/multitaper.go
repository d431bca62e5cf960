package freqfeatures

import (
	"fmt"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/banshee-data/sway.report/internal/sway"
	"github.com/banshee-data/sway.report/internal/sway/dsp"
)

// MultitaperEstimator averages the eigenspectra of orthonormal sine tapers.
type MultitaperEstimator struct {
	Tapers int
	NFFT   int
}

// Estimate implements Estimator.
func (m MultitaperEstimator) Estimate(x []float64, fs float64) (sway.SpectralDensity, error) {
	n := len(x)
	if n < 2 || n <= m.Tapers {
		return sway.SpectralDensity{}, fmt.Errorf("%w: %d samples for %d tapers", ErrSignalTooShort, n, m.Tapers)
	}
	nfft := nfftFor(m.NFFT, n)
	if nfft < n {
		return sway.SpectralDensity{}, fmt.Errorf("multitaper: nfft %d shorter than signal %d", nfft, n)
	}

	centred := demean(x)
	fft := fourier.NewFFT(nfft)
	buf := make([]float64, nfft)
	coeff := make([]complex128, nfft/2+1)
	power := make([]float64, nfft/2+1)
	for _, taper := range dsp.SineTapers(n, m.Tapers) {
		for i := range buf {
			buf[i] = 0
		}
		for i, v := range centred {
			buf[i] = v * taper[i]
		}
		coeff = fft.Coefficients(coeff, buf)
		for i, c := range coeff {
			a := cmplx.Abs(c)
			power[i] += a * a
		}
	}
	// Tapers have unit energy, so only the rate and taper count remain.
	for i := range power {
		power[i] /= fs * float64(m.Tapers)
	}
	oneSided(power, nfft)
	return sway.SpectralDensity{Frequencies: frequencies(nfft, fs), Power: power}, nil
}
