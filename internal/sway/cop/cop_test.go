package cop

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/sway.report/internal/acquisition"
)

func constant(n int, v float64) [][]float64 {
	out := make([][]float64, n)
	for i := range out {
		out[i] = []float64{v}
	}
	return out
}

func plate(n int) *acquisition.RawChannelSet {
	return &acquisition.RawChannelSet{
		Frequency: 1000,
		Channels: map[string][][]float64{
			"Fx1": constant(n, 0),
			"Fy1": constant(n, 0),
			"Fz1": constant(n, 500),
			"Mx1": constant(n, 1000),
			"My1": constant(n, 1000),
		},
	}
}

func estimator() Estimator {
	return Estimator{
		Dz:          40,
		BoardWidth:  433,
		BoardLength: 238,
		Labels:      acquisition.DefaultLabels(),
	}
}

func TestZeroFill_HoldLastValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []float64
		want []float64
	}{
		{"interior run", []float64{1, 2, 0, 0, 3}, []float64{1, 2, 2, 2, 3}},
		{"leading zeros", []float64{0, 0, 4, 0, 5}, []float64{4, 4, 4, 4, 5}},
		{"trailing zeros", []float64{6, 0, 0}, []float64{6, 6, 6}},
		{"all zero", []float64{0, 0, 0}, []float64{0, 0, 0}},
		{"empty", []float64{}, []float64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := make([]float64, len(tt.in))
			copy(in, tt.in)
			assert.Equal(t, tt.want, HoldLastValue.Apply(in))
			assert.Equal(t, tt.in, in, "input must not be modified")
		})
	}
}

func TestZeroFill_ReplaceWithOne(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []float64{1, 2, 1, 3}, ReplaceWithOne.Apply([]float64{0, 2, 0, 3}))

	empty := ReplaceWithOne.Apply([]float64{})
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestParseZeroFillPolicy(t *testing.T) {
	t.Parallel()

	p, err := ParseZeroFillPolicy("")
	require.NoError(t, err)
	assert.Equal(t, HoldLastValue, p)
	p, err = ParseZeroFillPolicy("replace_with_one")
	require.NoError(t, err)
	assert.Equal(t, ReplaceWithOne, p)
	_, err = ParseZeroFillPolicy("interpolate")
	assert.Error(t, err)
}

func TestForcePlate_ConstantLoad(t *testing.T) {
	t.Parallel()

	cop, err := estimator().ForcePlate(plate(2000))
	require.NoError(t, err)
	require.Equal(t, 2000, cop.Len())
	assert.Equal(t, 1000.0, cop.Frequency)
	for i, v := range cop.X() {
		require.InDelta(t, -2.0, v, 1e-12, "COP_x[%d]", i)
	}
	for i, v := range cop.Y() {
		require.InDelta(t, 2.0, v, 1e-12, "COP_y[%d]", i)
	}
}

func TestForcePlate_Axes(t *testing.T) {
	t.Parallel()

	raw := plate(4)
	raw.Channels["Fx1"] = constant(4, 10)
	raw.Channels["Fy1"] = constant(4, 5)

	e := estimator()
	std, err := e.ForcePlate(raw)
	require.NoError(t, err)
	assert.InDelta(t, -(1000+40*10)/500.0, std.X()[0], 1e-12)
	assert.InDelta(t, (1000-40*5)/500.0, std.Y()[0], 1e-12)

	e.Axes = RotatedAxes
	rot, err := e.ForcePlate(raw)
	require.NoError(t, err)
	assert.InDelta(t, -(1000-40*5)/500.0, rot.X()[0], 1e-12)
	assert.InDelta(t, -(1000+40*10)/500.0, rot.Y()[0], 1e-12)
}

func TestForcePlate_ZeroGuardPolicies(t *testing.T) {
	t.Parallel()

	raw := plate(10)
	fz := constant(10, 500)
	for i := 3; i < 6; i++ {
		fz[i][0] = 0
	}
	raw.Channels["Fz1"] = fz

	hold := estimator()
	a, err := hold.ForcePlate(raw)
	require.NoError(t, err)
	for i := 0; i < a.Len(); i++ {
		assert.False(t, math.IsNaN(a.X()[i]) || math.IsInf(a.X()[i], 0), "COP_x[%d]", i)
		assert.False(t, math.IsNaN(a.Y()[i]) || math.IsInf(a.Y()[i], 0), "COP_y[%d]", i)
		assert.InDelta(t, -2.0, a.X()[i], 1e-12)
	}

	legacy := estimator()
	legacy.ZeroFill = ReplaceWithOne
	b, err := legacy.ForcePlate(raw)
	require.NoError(t, err)
	// Fx1 is all zero, so the legacy policy feeds it in as 1 too.
	assert.InDelta(t, -(1000.0+40)/1, b.X()[4], 1e-9)
	assert.InDelta(t, -(1000.0+40)/500, b.X()[0], 1e-12)
	assert.NotEqual(t, a.X(), b.X())

	again, err := legacy.ForcePlate(raw)
	require.NoError(t, err)
	assert.Equal(t, b.X(), again.X())
	assert.Equal(t, b.Y(), again.Y())
}

func TestForcePlate_MissingChannel(t *testing.T) {
	t.Parallel()

	raw := plate(3)
	delete(raw.Channels, "My1")
	_, err := estimator().ForcePlate(raw)
	assert.ErrorIs(t, err, acquisition.ErrChannelNotFound)
}

func TestBalanceBoard_SymmetricLoad(t *testing.T) {
	t.Parallel()

	for _, dims := range [][2]float64{{433, 238}, {1, 1}, {1000, 50}} {
		raw := &acquisition.RawChannelSet{
			Frequency: 100,
			Channels: map[string][][]float64{
				"TopRight Kg":    constant(50, 17.5),
				"BottomRight Kg": constant(50, 17.5),
				"TopLeft Kg":     constant(50, 17.5),
				"BottomLeft Kg":  constant(50, 17.5),
			},
		}
		e := estimator()
		e.BoardWidth, e.BoardLength = dims[0], dims[1]
		cop, err := e.BalanceBoard(raw)
		require.NoError(t, err)
		for i := 0; i < cop.Len(); i++ {
			assert.Equal(t, 0.0, cop.X()[i])
			assert.Equal(t, 0.0, cop.Y()[i])
		}
	}
}

func TestBalanceBoard_Corners(t *testing.T) {
	t.Parallel()

	raw := &acquisition.RawChannelSet{
		Frequency: 100,
		Channels: map[string][][]float64{
			"TopRight Kg":    constant(1, 30),
			"BottomRight Kg": constant(1, 10),
			"TopLeft Kg":     constant(1, 10),
			"BottomLeft Kg":  constant(1, 10),
		},
	}
	cop, err := estimator().BalanceBoard(raw)
	require.NoError(t, err)
	// Load shifted toward the top-right corner.
	assert.InDelta(t, 433.0/2*20/60, cop.X()[0], 1e-12)
	assert.InDelta(t, 238.0/2*20/60, cop.Y()[0], 1e-12)
}

func TestBalanceBoard_Accelerometer(t *testing.T) {
	t.Parallel()

	raw := &acquisition.RawChannelSet{
		Frequency: 100,
		Channels: map[string][][]float64{
			"Accelerometer": {{1.5, -2, 0}, {2.5, -3, 0}},
		},
	}
	e := estimator()
	e.Source = Accelerometer
	cop, err := e.Estimate(raw, true)
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5, 2.5}, cop.X())
	assert.Equal(t, []float64{-2, -3}, cop.Y())

	e.AccelerometerUnit = "cm"
	cop, err = e.Estimate(raw, true)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{15, 25}, cop.X(), 1e-12)
	assert.InDeltaSlice(t, []float64{-20, -30}, cop.Y(), 1e-12)

	delete(raw.Channels, "Accelerometer")
	_, err = e.Estimate(raw, true)
	assert.ErrorIs(t, err, acquisition.ErrChannelNotFound)
}
