package resample

import (
	"fmt"
	"math"
)

// SWARII is the sliding-window average resampler for irregularly spaced
// samples. Each output sample t_k = t_0 + k/DesiredFrequency is the mean of
// every input whose timestamp falls in [t_k - WindowSize/2, t_k + WindowSize/2).
//
// A window that catches no samples repeats the previous output. The first
// window always holds t_0, so there is always a value to carry.
type SWARII struct {
	WindowSize       float64 // seconds
	DesiredFrequency float64 // Hz
}

// Resample returns the output times (relative to t[0]) and values.
func (s SWARII) Resample(t, x []float64) ([]float64, []float64, error) {
	if len(t) != len(x) {
		return nil, nil, fmt.Errorf("%w: %d timestamps, %d values", ErrLengthMismatch, len(t), len(x))
	}
	if len(x) == 0 {
		return nil, nil, ErrEmptyInput
	}
	if !(s.DesiredFrequency > 0) || !(s.WindowSize > 0) {
		return nil, nil, fmt.Errorf("%w: window=%g frequency=%g", ErrInvalidRatio, s.WindowSize, s.DesiredFrequency)
	}
	for i := 1; i < len(t); i++ {
		if t[i] < t[i-1] || math.IsNaN(t[i]) {
			return nil, nil, fmt.Errorf("%w: t[%d]=%g after t[%d]=%g", ErrNonMonotonicTimestamps, i, t[i], i-1, t[i-1])
		}
	}

	t0 := t[0]
	n := int(math.Floor((t[len(t)-1] - t0) * s.DesiredFrequency))
	if n < 1 {
		return nil, nil, fmt.Errorf("%w: %gs of samples is shorter than one output step", ErrEmptyInput, t[len(t)-1]-t0)
	}

	times := make([]float64, n)
	values := make([]float64, n)
	filled := make([]bool, n)
	half := s.WindowSize / 2

	// Both window edges only move forward.
	lo, hi := 0, 0
	for k := 0; k < n; k++ {
		tk := float64(k) / s.DesiredFrequency
		times[k] = tk
		start, end := t0+tk-half, t0+tk+half
		for hi < len(t) && t[hi] < end {
			hi++
		}
		for lo < hi && t[lo] < start {
			lo++
		}
		if hi > lo {
			var sum float64
			for _, v := range x[lo:hi] {
				sum += v
			}
			values[k] = sum / float64(hi-lo)
			filled[k] = true
		}
	}

	for k := 1; k < n; k++ {
		if !filled[k] {
			values[k] = values[k-1]
		}
	}
	return times, values, nil
}
