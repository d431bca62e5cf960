package resample

import (
	"fmt"

	"github.com/banshee-data/sway.report/internal/sway/dsp"
)

// Decimate low-pass filters x with an order-8 Chebyshev type I filter run
// forward and backward, then keeps every q-th sample.
func Decimate(x []float64, q int) ([]float64, error) {
	if len(x) == 0 {
		return nil, ErrEmptyInput
	}
	if q < 1 {
		return nil, fmt.Errorf("%w: q=%d", ErrInvalidRatio, q)
	}
	if q == 1 {
		return append([]float64(nil), x...), nil
	}
	sos, err := dsp.Cheby1(8, 0.05, 0.8/float64(q))
	if err != nil {
		return nil, fmt.Errorf("decimate: %w", err)
	}
	y, err := sos.FiltFilt(x)
	if err != nil {
		return nil, fmt.Errorf("decimate: %w", err)
	}
	out := make([]float64, 0, (len(y)+q-1)/q)
	for i := 0; i < len(y); i += q {
		out = append(out, y[i])
	}
	return out, nil
}
