package dsp

import "math"

// Hann returns a Hann window of length n. A periodic window (as used for
// spectral estimation) omits the final zero of the symmetric window.
func Hann(n int, periodic bool) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{1}
	}
	den := float64(n - 1)
	if periodic {
		den = float64(n)
	}
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/den)
	}
	return w
}

// Kaiser returns a symmetric Kaiser window of length n and shape beta.
func Kaiser(n int, beta float64) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{1}
	}
	w := make([]float64, n)
	den := BesselI0(beta)
	for i := range w {
		x := 2*float64(i)/float64(n-1) - 1
		w[i] = BesselI0(beta*math.Sqrt(1-x*x)) / den
	}
	return w
}

// BesselI0 is the modified Bessel function of the first kind, order 0,
// evaluated by its power series.
func BesselI0(x float64) float64 {
	sum, term := 1.0, 1.0
	half := x / 2
	for k := 1; k < 500; k++ {
		term *= (half / float64(k)) * (half / float64(k))
		sum += term
		if term < sum*1e-17 {
			break
		}
	}
	return sum
}

// SineTapers returns k orthonormal sine tapers of length n
// (Riedel & Sidorenko, 1995).
func SineTapers(n, k int) [][]float64 {
	tapers := make([][]float64, k)
	norm := math.Sqrt(2 / float64(n+1))
	for j := 0; j < k; j++ {
		t := make([]float64, n)
		for i := range t {
			t[i] = norm * math.Sin(math.Pi*float64(j+1)*float64(i+1)/float64(n+1))
		}
		tapers[j] = t
	}
	return tapers
}
