package agreement

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// ErrTooFewPairs is returned when a statistic needs more paired samples.
var ErrTooFewPairs = errors.New("too few paired samples")

// loaZ is the normal quantile for 95% limits of agreement.
const loaZ = 1.96

// Summary describes one sample.
type Summary struct {
	N    int     `json:"n"`
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
}

// Describe returns count, mean and sample standard deviation of the finite
// values in x.
func Describe(x []float64) Summary {
	f := finite(x)
	s := Summary{N: len(f), Mean: math.NaN(), Std: math.NaN()}
	if len(f) > 0 {
		s.Mean = stat.Mean(f, nil)
	}
	if len(f) > 1 {
		s.Std = stat.StdDev(f, nil)
	}
	return s
}

// TestResult is a statistic with its two-sided p-value.
type TestResult struct {
	Statistic float64 `json:"statistic"`
	P         float64 `json:"p"`
}

// PairedTTest tests whether the mean of a-b differs from zero.
func PairedTTest(a, b []float64) (TestResult, error) {
	d, err := differences(a, b)
	if err != nil {
		return TestResult{}, err
	}
	if len(d) < 2 {
		return TestResult{}, ErrTooFewPairs
	}
	n := float64(len(d))
	mean, sd := stat.MeanStdDev(d, nil)
	if sd == 0 {
		if mean == 0 {
			return TestResult{Statistic: math.NaN(), P: math.NaN()}, nil
		}
		return TestResult{Statistic: math.Copysign(math.Inf(1), mean), P: 0}, nil
	}
	t := mean / (sd / math.Sqrt(n))
	return TestResult{Statistic: t, P: twoSidedT(t, n-1)}, nil
}

// Spearman returns the rank correlation of a and b and its p-value from
// the t approximation with n-2 degrees of freedom.
func Spearman(a, b []float64) (TestResult, error) {
	if len(a) != len(b) {
		return TestResult{}, errors.New("samples differ in length")
	}
	if len(a) < 3 {
		return TestResult{}, ErrTooFewPairs
	}
	rho := stat.Correlation(Rank(a), Rank(b), nil)
	if math.IsNaN(rho) {
		return TestResult{Statistic: math.NaN(), P: math.NaN()}, nil
	}
	n := float64(len(a))
	if math.Abs(rho) >= 1 {
		return TestResult{Statistic: rho, P: 0}, nil
	}
	t := rho * math.Sqrt((n-2)/(1-rho*rho))
	return TestResult{Statistic: rho, P: twoSidedT(t, n-2)}, nil
}

func twoSidedT(t, df float64) float64 {
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return 2 * dist.Survival(math.Abs(t))
}

// Rank returns 1-based ranks with ties given their average rank.
func Rank(x []float64) []float64 {
	idx := make([]int, len(x))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool { return x[idx[i]] < x[idx[j]] })
	ranks := make([]float64, len(x))
	for i := 0; i < len(idx); {
		j := i
		for j+1 < len(idx) && x[idx[j+1]] == x[idx[i]] {
			j++
		}
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			ranks[idx[k]] = avg
		}
		i = j + 1
	}
	return ranks
}

// BlandAltman holds the mean difference (a-b) and its 95% limits of
// agreement.
type BlandAltman struct {
	Bias  float64 `json:"bias"`
	SD    float64 `json:"sd"`
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// BlandAltmanLimits computes bias ± 1.96·SD of the paired differences.
func BlandAltmanLimits(a, b []float64) (BlandAltman, error) {
	d, err := differences(a, b)
	if err != nil {
		return BlandAltman{}, err
	}
	if len(d) < 2 {
		return BlandAltman{}, ErrTooFewPairs
	}
	bias, sd := stat.MeanStdDev(d, nil)
	return BlandAltman{Bias: bias, SD: sd, Lower: bias - loaZ*sd, Upper: bias + loaZ*sd}, nil
}

// ICC21 is the two-way random-effects, absolute-agreement, single-measure
// intraclass correlation of two raters over the same subjects.
func ICC21(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, errors.New("samples differ in length")
	}
	n := len(a)
	if n < 2 {
		return 0, ErrTooFewPairs
	}
	const k = 2.0
	nf := float64(n)

	grand := (floats.Sum(a) + floats.Sum(b)) / (k * nf)
	var ssRows, ssTotal float64
	for i := 0; i < n; i++ {
		m := (a[i] + b[i]) / k
		ssRows += k * (m - grand) * (m - grand)
		ssTotal += (a[i]-grand)*(a[i]-grand) + (b[i]-grand)*(b[i]-grand)
	}
	ma, mb := floats.Sum(a)/nf, floats.Sum(b)/nf
	ssCols := nf * ((ma-grand)*(ma-grand) + (mb-grand)*(mb-grand))
	ssErr := ssTotal - ssRows - ssCols

	msr := ssRows / (nf - 1)
	msc := ssCols / (k - 1)
	mse := ssErr / ((nf - 1) * (k - 1))

	den := msr + (k-1)*mse + k*(msc-mse)/nf
	if den == 0 {
		return math.NaN(), nil
	}
	return (msr - mse) / den, nil
}

func differences(a, b []float64) ([]float64, error) {
	if len(a) != len(b) {
		return nil, errors.New("samples differ in length")
	}
	d := make([]float64, len(a))
	floats.SubTo(d, a, b)
	return d, nil
}

func finite(x []float64) []float64 {
	out := make([]float64, 0, len(x))
	for _, v := range x {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}
