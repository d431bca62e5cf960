package freqfeatures

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/banshee-data/sway.report/internal/monitoring"
	"github.com/banshee-data/sway.report/internal/sway"
	"github.com/banshee-data/sway.report/internal/sway/dsp"
)

func TestMain(m *testing.M) {
	monitoring.SetLogger(nil)
	m.Run()
}

func sine(n int, freq, fs, amp float64) []float64 {
	x := make([]float64, n)
	for i := range x {
		x[i] = amp * math.Sin(2*math.Pi*freq*float64(i)/fs)
	}
	return x
}

// integral is the trapezoidal area under the whole spectrum.
func integral(s sway.SpectralDensity) float64 {
	a := dsp.CumTrapz(s.Power, s.Frequencies)
	return a[len(a)-1]
}

func ar2(n int, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	x := make([]float64, n)
	for i := 2; i < n; i++ {
		x[i] = 1.5*x[i-1] - 0.9*x[i-2] + rng.NormFloat64()
	}
	return x
}

func TestPowerFrequency_Delta(t *testing.T) {
	t.Parallel()

	s := sway.SpectralDensity{
		Frequencies: []float64{0, 0.5, 1, 1.5, 2, 2.5, 3},
		Power:       []float64{0, 0, 0, 10, 0, 0, 0},
	}
	area := dsp.CumTrapz(s.Power, s.Frequencies)
	assert.Equal(t, 1.5, powerFrequency(s, area, 50))
	assert.Equal(t, 1.5, peakFrequency(s, area))
}

func TestPowerFrequency_Flat(t *testing.T) {
	t.Parallel()

	const fmax = 10.0
	n := 101
	s := sway.SpectralDensity{Frequencies: make([]float64, n), Power: make([]float64, n)}
	floats.Span(s.Frequencies, 0, fmax)
	for i := range s.Power {
		s.Power[i] = 3
	}
	area := dsp.CumTrapz(s.Power, s.Frequencies)
	assert.InDelta(t, fmax/2, powerFrequency(s, area, 50), fmax/float64(n-1))
	assert.InDelta(t, 0.8*fmax, powerFrequency(s, area, 80), fmax/float64(n-1))
}

func TestPowerFrequency_NoPower(t *testing.T) {
	t.Parallel()

	s := sway.SpectralDensity{
		Frequencies: []float64{0.5, 1, 1.5},
		Power:       []float64{0, 0, 0},
	}
	area := dsp.CumTrapz(s.Power, s.Frequencies)
	assert.True(t, math.IsNaN(powerFrequency(s, area, 50)))
	assert.True(t, math.IsNaN(powerFrequency(s, area, 80)))
}

func TestMoments(t *testing.T) {
	t.Parallel()

	s := sway.SpectralDensity{Frequencies: []float64{1, 3}, Power: []float64{1, 1}}
	assert.InDelta(t, math.Sqrt(5), centroid(s), 1e-12)
	assert.InDelta(t, math.Sqrt(0.2), dispersion(s), 1e-12)

	single := sway.SpectralDensity{Frequencies: []float64{2}, Power: []float64{4}}
	assert.Equal(t, 0.0, dispersion(single))

	zero := sway.SpectralDensity{Frequencies: []float64{1, 2}, Power: []float64{0, 0}}
	assert.True(t, math.IsNaN(dispersion(zero)))
}

func TestWelch_SineParseval(t *testing.T) {
	t.Parallel()

	x := sine(2000, 2, 100, 1)
	est, err := NewEstimator(Welch, Params{NPerSeg: 256})
	require.NoError(t, err)
	psd, err := est.Estimate(x, 100)
	require.NoError(t, err)

	// nfft defaults to twice the signal length.
	require.Equal(t, 2001, psd.Len())
	assert.Equal(t, 50.0, psd.Frequencies[psd.Len()-1])
	assert.InDelta(t, 2.0, peakFrequency(psd, nil), 0.05)
	assert.InDelta(t, 0.5, integral(psd), 0.025)
}

func TestWelch_ShortSignalSingleSegment(t *testing.T) {
	t.Parallel()

	est := WelchEstimator{NPerSeg: 512, NFFT: 256}
	_, err := est.Estimate(sine(300, 2, 100, 1), 100)
	assert.Error(t, err, "nfft shorter than the clamped segment")

	est.NFFT = 0
	psd, err := est.Estimate(sine(300, 2, 100, 1), 100)
	require.NoError(t, err)
	assert.Equal(t, 301, psd.Len())

	_, err = est.Estimate([]float64{1}, 100)
	assert.ErrorIs(t, err, ErrSignalTooShort)
}

func TestMultitaper_SineParseval(t *testing.T) {
	t.Parallel()

	x := sine(1000, 3, 100, 2)
	est, err := NewEstimator(Multitaper, Params{Tapers: 5})
	require.NoError(t, err)
	psd, err := est.Estimate(x, 100)
	require.NoError(t, err)

	assert.InDelta(t, 3.0, peakFrequency(psd, nil), 0.1)
	assert.InDelta(t, 2.0, integral(psd), 0.1)
}

func TestAR_CoefficientRecovery(t *testing.T) {
	t.Parallel()

	x := demean(ar2(20000, 7))
	want := []float64{-1.5, 0.9}

	yw, _ := arYuleWalker(x, 2)
	assert.InDeltaSlice(t, want, yw, 0.03)

	burg, s2 := arBurg(x, 2)
	assert.InDeltaSlice(t, want, burg, 0.03)
	assert.InDelta(t, 1.0, s2, 0.05)

	cov, s2, err := arLeastSquares(x, 2, false)
	require.NoError(t, err)
	assert.InDeltaSlice(t, want, cov, 0.03)
	assert.InDelta(t, 1.0, s2, 0.05)

	mcov, _, err := arLeastSquares(x, 2, true)
	require.NoError(t, err)
	assert.InDeltaSlice(t, want, mcov, 0.03)
}

func TestAR_SpectrumPeak(t *testing.T) {
	t.Parallel()

	// Poles at radius sqrt(0.9), angle acos(1.5/(2·sqrt(0.9))).
	peak := math.Acos(1.5/(2*math.Sqrt(0.9))) / (2 * math.Pi) * 100
	x := ar2(8000, 11)
	for _, m := range []Method{Burg, YuleWalker, Covariance, ModifiedCovariance} {
		est, err := NewEstimator(m, Params{AROrder: 2, NFFT: 4096})
		require.NoError(t, err)
		psd, err := est.Estimate(x, 100)
		require.NoError(t, err, string(m))
		assert.Equal(t, 2049, psd.Len())
		assert.InDelta(t, peak, peakFrequency(psd, nil), 0.5, string(m))
	}
}

func TestAR_Errors(t *testing.T) {
	t.Parallel()

	est := AREstimator{Method: Covariance, Order: 4}
	_, err := est.Estimate([]float64{1, 2, 3}, 100)
	assert.ErrorIs(t, err, ErrSignalTooShort)

	// A constant signal has no prediction equations of full rank.
	_, err = est.Estimate(make([]float64, 100), 100)
	assert.Error(t, err)

	_, err = AREstimator{Method: "arma", Order: 2}.Estimate(ar2(100, 1), 100)
	assert.ErrorIs(t, err, ErrUnknownMethod)
}

func TestNewEstimator(t *testing.T) {
	t.Parallel()

	_, err := NewEstimator("lomb_scargle", Params{})
	assert.ErrorIs(t, err, ErrUnknownMethod)
	_, err = NewEstimator(Welch, Params{})
	assert.Error(t, err)
	_, err = NewEstimator(Multitaper, Params{})
	assert.Error(t, err)
	_, err = NewEstimator(Burg, Params{})
	assert.Error(t, err)

	est, err := NewEstimator("", Params{NPerSeg: 64})
	require.NoError(t, err)
	assert.IsType(t, WelchEstimator{}, est)
}

type nonNegativeFails struct{ Estimator }

func (e nonNegativeFails) Estimate(x []float64, fs float64) (sway.SpectralDensity, error) {
	if floats.Min(x) >= 0 {
		return sway.SpectralDensity{}, errors.New("refusing non-negative signal")
	}
	return e.Estimator.Estimate(x, fs)
}

type panics struct{}

func (panics) Estimate([]float64, float64) (sway.SpectralDensity, error) { panic("boom") }

func swayCOP(t *testing.T) sway.COPSeries {
	t.Helper()
	x := sine(3000, 0.4, 100, 3)
	y := sine(3000, 1.2, 100, 2)
	cop, err := sway.NewCOPSeries(x, y, 100)
	require.NoError(t, err)
	return cop
}

func TestEngine_Features(t *testing.T) {
	t.Parallel()

	e := Engine{
		Estimator: WelchEstimator{NPerSeg: 1024},
		Range:     DefaultRange,
	}
	fs, spectra, err := e.Compute(swayCOP(t))
	require.NoError(t, err)

	require.Equal(t, 18, fs.Len())
	assert.Equal(t, []string{"Total power-RD", "Total power-ML", "Total power-AP"}, fs.Names()[:3])
	assert.Contains(t, fs.Names(), "50% power frequency-ML")
	assert.Contains(t, fs.Names(), "80% power frequency-AP")
	assert.Contains(t, fs.Names(), "Frequency dispersion-RD")
	assert.Zero(t, fs.NaNCount())

	assert.InDelta(t, 0.4, fs.Value("Peak frequency-ML"), 0.05)
	assert.InDelta(t, 1.2, fs.Value("Peak frequency-AP"), 0.05)

	require.Len(t, spectra, 3)
	for d, psd := range spectra {
		assert.GreaterOrEqual(t, psd.Frequencies[0], 0.15, string(d))
		assert.LessOrEqual(t, psd.Frequencies[psd.Len()-1], 5.0, string(d))
	}
}

func TestEngine_DirectionIsolation(t *testing.T) {
	t.Parallel()

	e := Engine{
		Estimator: nonNegativeFails{WelchEstimator{NPerSeg: 1024}},
		Range:     DefaultRange,
	}
	fs, spectra, err := e.Compute(swayCOP(t))
	require.NoError(t, err)

	assert.Equal(t, 6, fs.NaNCount())
	assert.True(t, math.IsNaN(fs.Value("Total power-RD")))
	assert.False(t, math.IsNaN(fs.Value("Total power-ML")))
	assert.False(t, math.IsNaN(fs.Value("Centroidal frequency-AP")))
	_, ok := spectra[sway.RD]
	assert.False(t, ok)
}

func TestEngine_PanicAndEmptyRange(t *testing.T) {
	t.Parallel()

	fs, _, err := Engine{Estimator: panics{}}.Compute(swayCOP(t))
	require.NoError(t, err)
	assert.Equal(t, 18, fs.NaNCount())

	e := Engine{Estimator: WelchEstimator{NPerSeg: 256}, Range: [2]float64{80, 90}}
	fs, _, err = e.Compute(swayCOP(t))
	require.NoError(t, err)
	assert.Equal(t, 18, fs.NaNCount())

	_, _, err = e.Compute(sway.COPSeries{})
	assert.ErrorIs(t, err, sway.ErrEmptySeries)
}

func TestEngine_CustomThresholds(t *testing.T) {
	t.Parallel()

	e := Engine{
		Estimator:  WelchEstimator{NPerSeg: 512},
		Thresholds: []float64{25, 50, 95},
		Fs:         100,
	}
	fs, _, err := e.Compute(swayCOP(t))
	require.NoError(t, err)
	assert.Equal(t, 21, fs.Len())
	assert.LessOrEqual(t, fs.Value("25% power frequency-ML"), fs.Value("95% power frequency-ML"))
}
