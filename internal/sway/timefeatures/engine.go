// Package timefeatures computes time-domain postural sway measures from a
// conditioned COP series: distance, velocity, range, confidence areas and
// the hybrid measures built on them (sway area, mean frequency, fractal
// dimension).
//
// Definitions follow Prieto et al. (1996). The standard deviations used by
// the area measures are derived from the mean and RMS distances rather
// than recomputed from the samples.
package timefeatures

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/sway.report/internal/sway"
)

// Engine computes time-domain features. Z05 is the one-sided 95% normal
// critical value and F05 the 95% F statistic for a bivariate sample.
type Engine struct {
	Z05 float64
	F05 float64
}

// Default critical values for large samples.
const (
	DefaultZ05 = 1.645
	DefaultF05 = 3.0
)

// Compute returns the features for one series. Degenerate input (zero
// variance, zero path) yields NaN for the affected features only.
func (e Engine) Compute(cop sway.COPSeries) (sway.FeatureSet, error) {
	n := cop.Len()
	if n == 0 {
		return sway.FeatureSet{}, sway.ErrEmptySeries
	}
	x, y, rd := cop.X(), cop.Y(), cop.RD()
	absX, absY := abs(x), abs(y)
	duration := cop.Duration()

	meanRD, meanML, meanAP := stat.Mean(rd, nil), stat.Mean(absX, nil), stat.Mean(absY, nil)
	rmsRD, rmsML, rmsAP := rms(rd), rms(x), rms(y)
	stdRD, stdML, stdAP := derivedStd(rmsRD, meanRD), derivedStd(rmsML, meanML), derivedStd(rmsAP, meanAP)

	pathRD, pathML, pathAP := pathLength(x, y), excursion(x), excursion(y)
	velRD, velML, velAP := pathRD/duration, pathML/duration, pathAP/duration

	// Confidence circle and ellipse.
	radiusCC := meanRD + e.Z05*stdRD
	areaCC := math.Pi * radiusCC * radiusCC
	ellipse := ellipseTerm(stdML, stdAP, covariance(x, y))
	areaCE := math.Pi * e.F05 * ellipse

	b := sway.NewFeatureSetBuilder()
	b.Add("Mean distance", meanRD).
		Add("Mean distance-ML", meanML).
		Add("Mean distance-AP", meanAP).
		Add("Rms distance", rmsRD).
		Add("Rms distance-ML", rmsML).
		Add("Rms distance-AP", rmsAP).
		Add("Std distance", stdRD).
		Add("Std distance-ML", stdML).
		Add("Std distance-AP", stdAP).
		Add("Path length", pathRD).
		Add("Path length-ML", pathML).
		Add("Path length-AP", pathAP).
		Add("Mean velocity", velRD).
		Add("Mean velocity-ML", velML).
		Add("Mean velocity-AP", velAP).
		Add("Range", spread(rd)).
		Add("Range-ML", spread(x)).
		Add("Range-AP", spread(y)).
		Add("95% confidence circle area", areaCC).
		Add("95% confidence ellipse area", areaCE).
		Add("Sway area", swayArea(x, y, duration)).
		Add("Mean frequency", velRD/(2*math.Pi*meanRD)).
		Add("Mean frequency-ML", velML/(4*math.Sqrt2*meanML)).
		Add("Mean frequency-AP", velAP/(4*math.Sqrt2*meanAP)).
		Add("Fractal dimension-CC", fractalDimension(n, 2*radiusCC, pathRD)).
		Add("Fractal dimension-CE", fractalDimension(n, math.Sqrt(4*e.F05*ellipse), pathRD))
	return b.Build(), nil
}

func abs(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = math.Abs(v)
	}
	return out
}

func rms(x []float64) float64 {
	return math.Sqrt(floats.Dot(x, x) / float64(len(x)))
}

// derivedStd is sqrt(rms² - mean²). Rounding can push a zero variance a
// hair below zero; that is clamped, anything larger propagates as NaN.
func derivedStd(rms, mean float64) float64 {
	v := rms*rms - mean*mean
	if v < 0 && v > -1e-12*rms*rms {
		v = 0
	}
	return math.Sqrt(v)
}

func pathLength(x, y []float64) float64 {
	var sum float64
	for i := 1; i < len(x); i++ {
		sum += math.Hypot(x[i]-x[i-1], y[i]-y[i-1])
	}
	return sum
}

func excursion(x []float64) float64 {
	var sum float64
	for i := 1; i < len(x); i++ {
		sum += math.Abs(x[i] - x[i-1])
	}
	return sum
}

func spread(x []float64) float64 {
	return math.Abs(floats.Max(x) - floats.Min(x))
}

// covariance is the unbiased sample covariance, NaN for a single sample.
func covariance(x, y []float64) float64 {
	if len(x) < 2 {
		return math.NaN()
	}
	return stat.Covariance(x, y, nil)
}

// ellipseTerm is the square-root term shared by the ellipse area and the
// ellipse-derived fractal dimension diameter. A negative radicand gives NaN.
func ellipseTerm(sml, sap, cov float64) float64 {
	sml2, sap2 := sml*sml, sap*sap
	return math.Sqrt(sml2*sml2 + sap2*sap2 + 6*sml2*sap2 - 4*cov*cov - (sml2 + sap2))
}

func swayArea(x, y []float64, duration float64) float64 {
	var sum float64
	for i := 0; i+1 < len(x); i++ {
		sum += math.Abs(x[i+1]*y[i] - x[i]*y[i+1])
	}
	return sum / (2 * duration)
}

// fractalDimension is ln N / ln(N·d / path).
func fractalDimension(n int, d, path float64) float64 {
	fn := float64(n)
	return math.Log(fn) / math.Log(fn*d/path)
}
