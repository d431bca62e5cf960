package dsp

import "fmt"

// Filter runs x through the cascade once, starting from rest.
func (s SOS) Filter(x []float64) []float64 {
	return s.filter(x, make([][2]float64, len(s)))
}

// filter applies each section in direct form II transposed, starting
// from the given per-section states. zi is consumed.
func (s SOS) filter(x []float64, zi [][2]float64) []float64 {
	y := append([]float64(nil), x...)
	for i, sec := range s {
		b0, b1, b2, a1, a2 := sec[0], sec[1], sec[2], sec[4], sec[5]
		z0, z1 := zi[i][0], zi[i][1]
		for n, v := range y {
			out := b0*v + z0
			z0 = b1*v - a1*out + z1
			z1 = b2*v - a2*out
			y[n] = out
		}
	}
	return y
}

// steadyState returns the per-section states that correspond to a unit
// step having been applied forever.
func (s SOS) steadyState() [][2]float64 {
	zi := make([][2]float64, len(s))
	scale := 1.0
	for i, sec := range s {
		b0, b1, b2, a1, a2 := sec[0], sec[1], sec[2], sec[4], sec[5]
		kdc := (b0 + b1 + b2) / (1 + a1 + a2)
		z1 := b2 - kdc*a2
		z0 := z1 + b1 - kdc*a1
		zi[i] = [2]float64{z0 * scale, z1 * scale}
		scale *= kdc
	}
	return zi
}

// PadLen is the number of samples of odd extension FiltFilt adds at each
// end of the signal.
func (s SOS) PadLen() int {
	ntaps := 2*len(s) + 1
	var zb, za int
	for _, sec := range s {
		if sec[2] == 0 {
			zb++
		}
		if sec[5] == 0 {
			za++
		}
	}
	if zb < za {
		ntaps -= zb
	} else {
		ntaps -= za
	}
	return 3 * ntaps
}

// FiltFilt applies the cascade forward and backward so the result has no
// phase shift. The signal is extended at both ends by odd reflection and
// each pass starts from the steady state of its first sample, following
// Gustafsson's initial-condition method.
func (s SOS) FiltFilt(x []float64) ([]float64, error) {
	edge := s.PadLen()
	n := len(x)
	if n <= edge {
		return nil, fmt.Errorf("%w: need more than %d samples, got %d", ErrSignalTooShort, edge, n)
	}

	ext := make([]float64, 0, n+2*edge)
	for i := edge; i >= 1; i-- {
		ext = append(ext, 2*x[0]-x[i])
	}
	ext = append(ext, x...)
	for i := 1; i <= edge; i++ {
		ext = append(ext, 2*x[n-1]-x[n-1-i])
	}

	zi := s.steadyState()
	y := s.filter(ext, scaled(zi, ext[0]))
	reverse(y)
	y = s.filter(y, scaled(zi, y[0]))
	reverse(y)

	return y[edge : edge+n], nil
}

func scaled(zi [][2]float64, v float64) [][2]float64 {
	out := make([][2]float64, len(zi))
	for i, z := range zi {
		out[i] = [2]float64{z[0] * v, z[1] * v}
	}
	return out
}

func reverse(x []float64) {
	for i, j := 0, len(x)-1; i < j; i, j = i+1, j-1 {
		x[i], x[j] = x[j], x[i]
	}
}

// DCGain returns the gain of the cascade at zero frequency.
func (s SOS) DCGain() float64 {
	g := 1.0
	for _, sec := range s {
		g *= (sec[0] + sec[1] + sec[2]) / (sec[3] + sec[4] + sec[5])
	}
	return g
}
