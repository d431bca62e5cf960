package freqfeatures

import (
	"fmt"
	"math"
	"strconv"

	"gonum.org/v1/gonum/floats"

	"github.com/banshee-data/sway.report/internal/monitoring"
	"github.com/banshee-data/sway.report/internal/sway"
	"github.com/banshee-data/sway.report/internal/sway/dsp"
)

// DefaultThresholds are the n%-power frequencies reported by default.
var DefaultThresholds = []float64{50, 80}

// DefaultRange is the sway band analysed by default, Hz.
var DefaultRange = [2]float64{0.15, 5}

// Engine computes frequency-domain features for RD, ML and AP. Spectra
// are restricted to Range (a non-positive upper bound keeps everything
// above the lower one) before any feature is derived. Nil Thresholds
// selects DefaultThresholds. Fs overrides the series frequency when
// positive.
type Engine struct {
	Estimator  Estimator
	Range      [2]float64
	Thresholds []float64
	Fs         float64
}

type feature struct {
	name string
	eval func(s sway.SpectralDensity, area []float64) float64
}

func (e Engine) features() []feature {
	fs := []feature{
		{"Total power", func(_ sway.SpectralDensity, area []float64) float64 { return area[len(area)-1] }},
		{"Peak frequency", peakFrequency},
	}
	thresholds := e.Thresholds
	if thresholds == nil {
		thresholds = DefaultThresholds
	}
	for _, n := range thresholds {
		n := n
		fs = append(fs, feature{
			name: strconv.FormatFloat(n, 'g', -1, 64) + "% power frequency",
			eval: func(s sway.SpectralDensity, area []float64) float64 { return powerFrequency(s, area, n) },
		})
	}
	return append(fs,
		feature{"Centroidal frequency", func(s sway.SpectralDensity, _ []float64) float64 { return centroid(s) }},
		feature{"Frequency dispersion", func(s sway.SpectralDensity, _ []float64) float64 { return dispersion(s) }},
	)
}

// Compute returns the features and the restricted spectrum of each
// direction. A direction whose spectrum cannot be estimated gets NaN
// features and is logged; the other directions are unaffected. The only
// error is an empty series.
func (e Engine) Compute(cop sway.COPSeries) (sway.FeatureSet, map[sway.Direction]sway.SpectralDensity, error) {
	if cop.Len() == 0 {
		return sway.FeatureSet{}, nil, sway.ErrEmptySeries
	}
	fs := e.Fs
	if fs <= 0 {
		fs = cop.Frequency
	}

	spectra := make(map[sway.Direction]sway.SpectralDensity, len(sway.Directions))
	for _, d := range sway.Directions {
		psd, err := e.estimate(cop.Signal(d), fs)
		if err != nil {
			monitoring.Logf("frequency features: %s spectrum unavailable: %v", d, err)
			continue
		}
		spectra[d] = psd
	}

	b := sway.NewFeatureSetBuilder()
	for _, f := range e.features() {
		for _, d := range sway.Directions {
			name := f.name + "-" + string(d)
			psd, ok := spectra[d]
			if !ok {
				b.Add(name, math.NaN())
				continue
			}
			b.Add(name, guard(name, func() float64 {
				return f.eval(psd, dsp.CumTrapz(psd.Power, psd.Frequencies))
			}))
		}
	}
	return b.Build(), spectra, nil
}

// estimate runs the estimator behind a recover boundary and rejects
// spectra that are empty after restriction or contain non-finite power.
func (e Engine) estimate(x []float64, fs float64) (psd sway.SpectralDensity, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("estimator panic: %v", r)
		}
	}()
	full, err := e.Estimator.Estimate(x, fs)
	if err != nil {
		return sway.SpectralDensity{}, err
	}
	psd = full.Restrict(e.Range[0], e.Range[1])
	if psd.Len() == 0 {
		return sway.SpectralDensity{}, fmt.Errorf("no bins in [%g, %g] Hz", e.Range[0], e.Range[1])
	}
	for i, p := range psd.Power {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return sway.SpectralDensity{}, fmt.Errorf("non-finite power at %g Hz", psd.Frequencies[i])
		}
	}
	return psd, nil
}

// guard evaluates one feature. A panic or non-finite result becomes NaN
// and is logged.
func guard(name string, f func() float64) (v float64) {
	defer func() {
		if r := recover(); r != nil {
			monitoring.Logf("frequency features: %s: %v", name, r)
			v = math.NaN()
		}
	}()
	v = f()
	if math.IsNaN(v) || math.IsInf(v, 0) {
		monitoring.Logf("frequency features: %s is not finite", name)
		return math.NaN()
	}
	return v
}

func peakFrequency(s sway.SpectralDensity, _ []float64) float64 {
	return s.Frequencies[floats.MaxIdx(s.Power)]
}

// powerFrequency is the first frequency at which the cumulative power
// reaches n percent of the total. A spectrum without power gives NaN.
func powerFrequency(s sway.SpectralDensity, area []float64, n float64) float64 {
	total := area[len(area)-1]
	if total == 0 {
		return math.NaN()
	}
	target := n / 100 * total
	for i, a := range area {
		if a >= target {
			return s.Frequencies[i]
		}
	}
	return math.NaN()
}

// moment is the k-th spectral moment Σ f^k·P(f).
func moment(s sway.SpectralDensity, k float64) float64 {
	var m float64
	for i, f := range s.Frequencies {
		m += math.Pow(f, k) * s.Power[i]
	}
	return m
}

func centroid(s sway.SpectralDensity) float64 {
	return math.Sqrt(moment(s, 2) / moment(s, 0))
}

func dispersion(s sway.SpectralDensity) float64 {
	m0, m1, m2 := moment(s, 0), moment(s, 1), moment(s, 2)
	if m0*m2 == 0 {
		return math.NaN()
	}
	v := 1 - m1*m1/(m0*m2)
	if v < 0 && v > -1e-12 {
		v = 0
	}
	return math.Sqrt(v)
}
