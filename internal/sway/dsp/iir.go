package dsp

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"sort"
)

var (
	// ErrUnstableFilter is returned for cutoffs outside (0, Nyquist) or
	// designs whose poles fall on or outside the unit circle.
	ErrUnstableFilter = errors.New("unstable filter")
	// ErrSignalTooShort is returned when a signal cannot be padded for
	// zero-phase filtering.
	ErrSignalTooShort = errors.New("signal too short for zero-phase filter")
)

// Section holds one biquad as b0, b1, b2, a0, a1, a2 with a0 == 1.
type Section [6]float64

// SOS is a cascade of second-order sections.
type SOS []Section

// zpk is a filter in zero/pole/gain form.
type zpk struct {
	z []complex128
	p []complex128
	k float64
}

// Butter designs a digital Butterworth low-pass filter. wn is the -3 dB
// cutoff relative to the Nyquist frequency.
func Butter(order int, wn float64) (SOS, error) {
	if order < 1 {
		return nil, fmt.Errorf("butter: order must be positive, got %d", order)
	}
	return lowPass(buttap(order), wn)
}

// Cheby1 designs a digital Chebyshev type I low-pass filter with the given
// pass-band ripple (dB). wn is the pass-band edge relative to Nyquist.
func Cheby1(order int, rippleDB, wn float64) (SOS, error) {
	if order < 1 {
		return nil, fmt.Errorf("cheby1: order must be positive, got %d", order)
	}
	if rippleDB <= 0 {
		return nil, fmt.Errorf("cheby1: ripple must be positive, got %g", rippleDB)
	}
	return lowPass(cheb1ap(order, rippleDB), wn)
}

func lowPass(proto zpk, wn float64) (SOS, error) {
	if !(wn > 0 && wn < 1) {
		return nil, fmt.Errorf("%w: normalised cutoff %g not in (0, 1)", ErrUnstableFilter, wn)
	}
	const fs = 2.0
	warped := 2 * fs * math.Tan(math.Pi*wn/fs)
	d := bilinear(lp2lp(proto, warped), fs)
	for _, p := range d.p {
		if cmplx.Abs(p) >= 1 {
			return nil, fmt.Errorf("%w: pole %v outside unit circle", ErrUnstableFilter, p)
		}
	}
	sos := d.sections()
	for _, s := range sos {
		for _, c := range s {
			if math.IsNaN(c) || math.IsInf(c, 0) {
				return nil, fmt.Errorf("%w: non-finite coefficient", ErrUnstableFilter)
			}
		}
	}
	return sos, nil
}

// buttap returns the analog Butterworth prototype with unit cutoff.
func buttap(n int) zpk {
	p := make([]complex128, 0, n)
	for m := -n + 1; m < n; m += 2 {
		p = append(p, -cmplx.Exp(complex(0, math.Pi*float64(m)/float64(2*n))))
	}
	return zpk{p: p, k: 1}
}

// cheb1ap returns the analog Chebyshev type I prototype.
func cheb1ap(n int, rp float64) zpk {
	eps := math.Sqrt(math.Pow(10, 0.1*rp) - 1)
	mu := math.Asinh(1/eps) / float64(n)
	p := make([]complex128, 0, n)
	for m := -n + 1; m < n; m += 2 {
		theta := math.Pi * float64(m) / float64(2*n)
		p = append(p, -cmplx.Sinh(complex(mu, theta)))
	}
	prod := complex(1, 0)
	for _, pi := range p {
		prod *= -pi
	}
	k := real(prod)
	if n%2 == 0 {
		k /= math.Sqrt(1 + eps*eps)
	}
	return zpk{p: p, k: k}
}

// lp2lp scales a unit-cutoff analog prototype to cutoff wo (rad/s).
func lp2lp(f zpk, wo float64) zpk {
	degree := len(f.p) - len(f.z)
	out := zpk{k: f.k * math.Pow(wo, float64(degree))}
	for _, z := range f.z {
		out.z = append(out.z, z*complex(wo, 0))
	}
	for _, p := range f.p {
		out.p = append(out.p, p*complex(wo, 0))
	}
	return out
}

// bilinear maps an analog filter to the z-plane.
func bilinear(f zpk, fs float64) zpk {
	fs2 := complex(2*fs, 0)
	degree := len(f.p) - len(f.z)
	out := zpk{}
	num, den := complex(1, 0), complex(1, 0)
	for _, z := range f.z {
		out.z = append(out.z, (fs2+z)/(fs2-z))
		num *= fs2 - z
	}
	for _, p := range f.p {
		out.p = append(out.p, (fs2+p)/(fs2-p))
		den *= fs2 - p
	}
	for i := 0; i < degree; i++ {
		out.z = append(out.z, -1)
	}
	out.k = f.k * real(num/den)
	return out
}

// sections splits the filter into biquads. Complex roots are paired with
// their conjugates and real roots are paired in order; a leftover real
// root gives a first-order section. The gain is applied to the first
// section.
func (f zpk) sections() SOS {
	pg := groupRoots(f.p)
	zg := groupRoots(f.z)
	n := len(pg)
	if len(zg) > n {
		n = len(zg)
	}
	sos := make(SOS, n)
	for i := 0; i < n; i++ {
		var b, a [3]float64
		b = [3]float64{1, 0, 0}
		a = [3]float64{1, 0, 0}
		if i < len(zg) {
			b = rootPoly(zg[i])
		}
		if i < len(pg) {
			a = rootPoly(pg[i])
		}
		sos[i] = Section{b[0], b[1], b[2], a[0], a[1], a[2]}
	}
	if n > 0 {
		for j := 0; j < 3; j++ {
			sos[0][j] *= f.k
		}
	}
	return sos
}

const conjTol = 1e-10

// groupRoots returns root pairs (conjugate or real) followed by a single
// real root when the count is odd. Pairs closest to the unit circle go last
// so the final sections carry the sharpest resonances.
func groupRoots(roots []complex128) [][]complex128 {
	var complexUpper, reals []complex128
	for _, r := range roots {
		switch {
		case math.Abs(imag(r)) <= conjTol*math.Max(1, cmplx.Abs(r)):
			reals = append(reals, complex(real(r), 0))
		case imag(r) > 0:
			complexUpper = append(complexUpper, r)
		}
	}
	sort.Slice(complexUpper, func(i, j int) bool {
		return cmplx.Abs(complexUpper[i]) < cmplx.Abs(complexUpper[j])
	})
	var groups [][]complex128
	for i := 0; i+1 < len(reals); i += 2 {
		groups = append(groups, []complex128{reals[i], reals[i+1]})
	}
	for _, c := range complexUpper {
		groups = append(groups, []complex128{c, cmplx.Conj(c)})
	}
	if len(reals)%2 == 1 {
		groups = append([][]complex128{{reals[len(reals)-1]}}, groups...)
	}
	return groups
}

// rootPoly expands (1 - r1 z^-1)(1 - r2 z^-1) into real coefficients.
func rootPoly(rs []complex128) [3]float64 {
	switch len(rs) {
	case 1:
		return [3]float64{1, -real(rs[0]), 0}
	case 2:
		return [3]float64{1, -real(rs[0] + rs[1]), real(rs[0] * rs[1])}
	default:
		return [3]float64{1, 0, 0}
	}
}
