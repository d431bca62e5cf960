package resample

import (
	"fmt"
	"math"

	"github.com/banshee-data/sway.report/internal/sway/dsp"
)

const kaiserBeta = 5.0

// Polyphase resamples x by up/down with a Kaiser-windowed anti-aliasing FIR.
// The filter is centred so the output has no delay relative to the input.
// Samples outside x are treated as zero. The output holds
// round(len(x)*up/down) samples.
func Polyphase(x []float64, up, down int) ([]float64, error) {
	if len(x) == 0 {
		return nil, ErrEmptyInput
	}
	if up < 1 || down < 1 {
		return nil, fmt.Errorf("%w: up=%d down=%d", ErrInvalidRatio, up, down)
	}
	g := gcd(up, down)
	up, down = up/g, down/g
	if up == 1 && down == 1 {
		return append([]float64(nil), x...), nil
	}

	maxRate := up
	if down > maxRate {
		maxRate = down
	}
	halfLen := 10 * maxRate
	h, err := dsp.FirWin(2*halfLen+1, 1/float64(maxRate), kaiserBeta)
	if err != nil {
		return nil, err
	}
	for i := range h {
		h[i] *= float64(up)
	}

	nOut := int(math.Round(float64(len(x)) * float64(up) / float64(down)))
	out := make([]float64, nOut)
	for j := range out {
		// Upsampled position j*down sits at tap halfLen; input sample i
		// contributes through tap j*down - i*up + halfLen.
		centre := j*down + halfLen
		iMin := ceilDiv(centre-(len(h)-1), up)
		if iMin < 0 {
			iMin = 0
		}
		iMax := centre / up
		if iMax > len(x)-1 {
			iMax = len(x) - 1
		}
		var acc float64
		for i := iMin; i <= iMax; i++ {
			acc += x[i] * h[centre-i*up]
		}
		out[j] = acc
	}
	return out, nil
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func ceilDiv(a, b int) int {
	if a <= 0 {
		return -((-a) / b)
	}
	return (a + b - 1) / b
}
