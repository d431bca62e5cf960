package freqfeatures

import (
	"fmt"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/banshee-data/sway.report/internal/sway"
	"github.com/banshee-data/sway.report/internal/sway/dsp"
)

// WelchEstimator averages periodic-Hann windowed periodograms of
// half-overlapping segments. Each segment has its mean removed and is
// zero-padded to NFFT points.
type WelchEstimator struct {
	NPerSeg int
	NFFT    int
}

// Estimate implements Estimator. Signals shorter than NPerSeg are
// analysed as a single segment.
func (w WelchEstimator) Estimate(x []float64, fs float64) (sway.SpectralDensity, error) {
	n := len(x)
	if n < 2 {
		return sway.SpectralDensity{}, fmt.Errorf("%w: %d samples", ErrSignalTooShort, n)
	}
	nperseg := w.NPerSeg
	if nperseg > n {
		nperseg = n
	}
	nfft := nfftFor(w.NFFT, n)
	if nfft < nperseg {
		return sway.SpectralDensity{}, fmt.Errorf("welch: nfft %d shorter than segment %d", nfft, nperseg)
	}

	win := dsp.Hann(nperseg, true)
	var sumSq float64
	for _, v := range win {
		sumSq += v * v
	}
	scale := 1 / (fs * sumSq)

	step := nperseg - nperseg/2
	segments := (n-nperseg)/step + 1

	fft := fourier.NewFFT(nfft)
	buf := make([]float64, nfft)
	coeff := make([]complex128, nfft/2+1)
	power := make([]float64, nfft/2+1)
	for s := 0; s < segments; s++ {
		seg := demean(x[s*step : s*step+nperseg])
		for i := range buf {
			buf[i] = 0
		}
		for i, v := range seg {
			buf[i] = v * win[i]
		}
		coeff = fft.Coefficients(coeff, buf)
		for i, c := range coeff {
			a := cmplx.Abs(c)
			power[i] += a * a
		}
	}
	for i := range power {
		power[i] *= scale / float64(segments)
	}
	oneSided(power, nfft)
	return sway.SpectralDensity{Frequencies: frequencies(nfft, fs), Power: power}, nil
}
