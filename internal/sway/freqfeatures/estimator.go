// Package freqfeatures estimates the power spectrum of each sway direction
// and derives frequency-domain features from it.
//
// The default estimator is Welch's averaged periodogram. Multitaper and
// autoregressive (Burg, Yule-Walker, covariance, modified covariance)
// estimators can be swapped in through NewEstimator. Every estimator
// returns a one-sided power spectral density in units²/Hz.
package freqfeatures

import (
	"errors"
	"fmt"

	"github.com/banshee-data/sway.report/internal/sway"
)

var (
	// ErrUnknownMethod is returned by NewEstimator for unsupported names.
	ErrUnknownMethod = errors.New("unknown spectral method")
	// ErrSignalTooShort is returned when a signal cannot support the
	// requested segment length or model order.
	ErrSignalTooShort = errors.New("signal too short for spectral estimate")
)

// Estimator produces a one-sided power spectral density.
type Estimator interface {
	Estimate(x []float64, fs float64) (sway.SpectralDensity, error)
}

// Method names a spectral estimator.
type Method string

const (
	Welch              Method = "welch"
	Multitaper         Method = "multitaper"
	Burg               Method = "burg"
	YuleWalker         Method = "yule_walker"
	Covariance         Method = "covariance"
	ModifiedCovariance Method = "modified_covariance"
)

// Params holds the tuning shared by the estimators. A zero NFFT means
// twice the signal length.
type Params struct {
	NPerSeg int // Welch segment length
	NFFT    int
	AROrder int // autoregressive model order
	Tapers  int // multitaper taper count
}

// NewEstimator returns the estimator for method.
func NewEstimator(method Method, p Params) (Estimator, error) {
	switch method {
	case Welch, "":
		if p.NPerSeg < 1 {
			return nil, fmt.Errorf("welch: nperseg must be positive, got %d", p.NPerSeg)
		}
		return WelchEstimator{NPerSeg: p.NPerSeg, NFFT: p.NFFT}, nil
	case Multitaper:
		if p.Tapers < 1 {
			return nil, fmt.Errorf("multitaper: taper count must be positive, got %d", p.Tapers)
		}
		return MultitaperEstimator{Tapers: p.Tapers, NFFT: p.NFFT}, nil
	case Burg, YuleWalker, Covariance, ModifiedCovariance:
		if p.AROrder < 1 {
			return nil, fmt.Errorf("%s: model order must be positive, got %d", method, p.AROrder)
		}
		return AREstimator{Method: method, Order: p.AROrder, NFFT: p.NFFT}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
}

func nfftFor(nfft, n int) int {
	if nfft > 0 {
		return nfft
	}
	return 2 * n
}

// frequencies returns the one-sided bin centres for an nfft-point FFT.
func frequencies(nfft int, fs float64) []float64 {
	f := make([]float64, nfft/2+1)
	for i := range f {
		f[i] = float64(i) * fs / float64(nfft)
	}
	return f
}

// oneSided doubles every bin that has a mirror image in the negative
// frequencies (all but DC and, for even nfft, Nyquist).
func oneSided(p []float64, nfft int) {
	last := len(p)
	if nfft%2 == 0 {
		last--
	}
	for i := 1; i < last; i++ {
		p[i] *= 2
	}
}

func demean(x []float64) []float64 {
	var sum float64
	for _, v := range x {
		sum += v
	}
	mean := sum / float64(len(x))
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = v - mean
	}
	return out
}
