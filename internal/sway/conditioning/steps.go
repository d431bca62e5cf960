package conditioning

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/sway.report/internal/sway/dsp"
)

// LowPass applies a Butterworth low-pass of the given order forward and
// backward. fc and fs are in Hz.
func LowPass(x []float64, order int, fc, fs float64) ([]float64, error) {
	sos, err := dsp.Butter(order, fc/(fs/2))
	if err != nil {
		return nil, fmt.Errorf("low-pass %g Hz at %g Hz: %w", fc, fs, err)
	}
	return sos.FiltFilt(x)
}

// Trim keeps x[lower:upper]. upper <= 0 counts back from the end, so 0
// keeps everything after lower.
func Trim(x []float64, lower, upper int) ([]float64, error) {
	n := len(x)
	end := upper
	if upper <= 0 {
		end = n + upper
	}
	if lower < 0 || end > n || lower >= end {
		return nil, fmt.Errorf("%w: [%d:%d] of %d samples", ErrTrimOutOfRange, lower, upper, n)
	}
	return append([]float64(nil), x[lower:end]...), nil
}

// Detrend removes the mean (Constant) or the least-squares line (Linear).
func Detrend(x []float64, mode DetrendMode) ([]float64, error) {
	out := append([]float64(nil), x...)
	if len(out) == 0 {
		return out, nil
	}
	switch mode {
	case Constant:
		floats.AddConst(-stat.Mean(out, nil), out)
	case Linear:
		if len(out) == 1 {
			out[0] = 0
			break
		}
		t := make([]float64, len(out))
		floats.Span(t, 0, float64(len(out)-1))
		alpha, beta := stat.LinearRegression(t, out, nil, false)
		for i := range out {
			out[i] -= alpha + beta*t[i]
		}
	default:
		return nil, fmt.Errorf("unsupported detrending type %q", mode)
	}
	return out, nil
}
