package freqfeatures

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/banshee-data/sway.report/internal/sway"
)

// AREstimator fits an autoregressive model of the given order and
// evaluates its spectrum on an NFFT-point grid:
//
//	P(f) = σ² / (fs · |1 + Σ a_k e^{-2πi f k / fs}|²)
type AREstimator struct {
	Method Method
	Order  int
	NFFT   int
}

// Estimate implements Estimator.
func (e AREstimator) Estimate(x []float64, fs float64) (sway.SpectralDensity, error) {
	n := len(x)
	if n <= 2*e.Order {
		return sway.SpectralDensity{}, fmt.Errorf("%w: %d samples for order %d", ErrSignalTooShort, n, e.Order)
	}
	centred := demean(x)
	if floats.Norm(centred, 2) == 0 {
		return sway.SpectralDensity{}, fmt.Errorf("%s: zero-variance signal", e.Method)
	}

	var (
		a      []float64
		sigma2 float64
		err    error
	)
	switch e.Method {
	case Burg:
		a, sigma2 = arBurg(centred, e.Order)
	case YuleWalker:
		a, sigma2 = arYuleWalker(centred, e.Order)
	case Covariance:
		a, sigma2, err = arLeastSquares(centred, e.Order, false)
	case ModifiedCovariance:
		a, sigma2, err = arLeastSquares(centred, e.Order, true)
	default:
		return sway.SpectralDensity{}, fmt.Errorf("%w: %q", ErrUnknownMethod, e.Method)
	}
	if err != nil {
		return sway.SpectralDensity{}, fmt.Errorf("%s: %w", e.Method, err)
	}
	if floats.HasNaN(a) || math.IsNaN(sigma2) {
		return sway.SpectralDensity{}, fmt.Errorf("%s: model fit did not converge", e.Method)
	}

	nfft := nfftFor(e.NFFT, n)
	if nfft <= e.Order {
		return sway.SpectralDensity{}, fmt.Errorf("%s: nfft %d not above order %d", e.Method, nfft, e.Order)
	}
	poly := make([]float64, nfft)
	poly[0] = 1
	copy(poly[1:], a)
	den := fourier.NewFFT(nfft).Coefficients(nil, poly)

	power := make([]float64, len(den))
	for i, c := range den {
		m := cmplx.Abs(c)
		power[i] = sigma2 / (fs * m * m)
	}
	oneSided(power, nfft)
	return sway.SpectralDensity{Frequencies: frequencies(nfft, fs), Power: power}, nil
}

// arYuleWalker solves the Yule-Walker equations from the biased
// autocorrelation with the Levinson-Durbin recursion.
func arYuleWalker(x []float64, p int) ([]float64, float64) {
	n := float64(len(x))
	r := make([]float64, p+1)
	for lag := 0; lag <= p; lag++ {
		var s float64
		for i := lag; i < len(x); i++ {
			s += x[i] * x[i-lag]
		}
		r[lag] = s / n
	}

	a := make([]float64, p)
	e := r[0]
	for k := 0; k < p; k++ {
		if e == 0 {
			return a, 0
		}
		acc := r[k+1]
		for j := 0; j < k; j++ {
			acc += a[j] * r[k-j]
		}
		refl := -acc / e
		prev := append([]float64(nil), a[:k]...)
		for j := 0; j < k; j++ {
			a[j] = prev[j] + refl*prev[k-1-j]
		}
		a[k] = refl
		e *= 1 - refl*refl
	}
	return a, e
}

// arBurg estimates the reflection coefficients by minimising the sum of
// forward and backward prediction errors at each order.
func arBurg(x []float64, p int) ([]float64, float64) {
	n := len(x)
	f := append([]float64(nil), x...)
	b := append([]float64(nil), x...)
	var e float64
	for _, v := range x {
		e += v * v
	}
	e /= float64(n)

	a := make([]float64, 0, p)
	for k := 0; k < p; k++ {
		var num, den float64
		for i := k + 1; i < n; i++ {
			num += f[i] * b[i-1]
			den += f[i]*f[i] + b[i-1]*b[i-1]
		}
		if den == 0 {
			return append(a, make([]float64, p-k)...), 0
		}
		refl := -2 * num / den

		prev := append([]float64(nil), a...)
		a = append(a, refl)
		for j := 0; j < k; j++ {
			a[j] = prev[j] + refl*prev[k-1-j]
		}
		e *= 1 - refl*refl

		for i := n - 1; i > k; i-- {
			fi := f[i]
			f[i] = fi + refl*b[i-1]
			b[i] = b[i-1] + refl*fi
		}
	}
	return a, e
}

// arLeastSquares fits the model by least squares on the forward
// prediction equations, and on the backward ones too when modified is set.
func arLeastSquares(x []float64, p int, modified bool) ([]float64, float64, error) {
	n := len(x)
	rows := n - p
	if modified {
		rows *= 2
	}
	A := mat.NewDense(rows, p, nil)
	rhs := mat.NewVecDense(rows, nil)
	row := 0
	for t := p; t < n; t++ {
		for k := 1; k <= p; k++ {
			A.Set(row, k-1, -x[t-k])
		}
		rhs.SetVec(row, x[t])
		row++
	}
	if modified {
		for t := 0; t < n-p; t++ {
			for k := 1; k <= p; k++ {
				A.Set(row, k-1, -x[t+k])
			}
			rhs.SetVec(row, x[t])
			row++
		}
	}

	var coef mat.VecDense
	if err := coef.SolveVec(A, rhs); err != nil {
		return nil, 0, fmt.Errorf("least squares: %w", err)
	}
	var fit mat.VecDense
	fit.MulVec(A, &coef)
	var ssr float64
	for i := 0; i < rows; i++ {
		d := rhs.AtVec(i) - fit.AtVec(i)
		ssr += d * d
	}
	a := make([]float64, p)
	for i := range a {
		a[i] = coef.AtVec(i)
	}
	return a, ssr / float64(rows), nil
}
