package dsp

// CumTrapz integrates y over x with the composite trapezoidal rule. The
// result has the same length as y and starts at 0.
func CumTrapz(y, x []float64) []float64 {
	n := len(y)
	if len(x) < n {
		n = len(x)
	}
	out := make([]float64, n)
	for i := 1; i < n; i++ {
		out[i] = out[i-1] + (x[i]-x[i-1])*(y[i]+y[i-1])/2
	}
	return out
}
