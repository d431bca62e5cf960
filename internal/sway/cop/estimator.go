package cop

import (
	"fmt"

	"github.com/banshee-data/sway.report/internal/acquisition"
	"github.com/banshee-data/sway.report/internal/sway"
	"github.com/banshee-data/sway.report/internal/units"
)

// Source selects how balance-board COP is obtained.
type Source string

const (
	// Corners computes COP from the four load cells.
	Corners Source = "corners"
	// Accelerometer reads the firmware-fused displacement channel.
	Accelerometer Source = "accelerometer"
)

// Axes selects the force-plate sign convention.
type Axes string

const (
	// StandardAxes: COP_x = -(My + dz·Fx)/Fz, COP_y = (Mx - dz·Fy)/Fz.
	StandardAxes Axes = "standard"
	// RotatedAxes is for a plate mounted a quarter turn from the
	// anatomical axes: COP_x = -(Mx - dz·Fy)/Fz, COP_y = -(My + dz·Fx)/Fz.
	RotatedAxes Axes = "rotated"
)

// Estimator converts raw channels into a COP series in millimetres.
type Estimator struct {
	Dz          float64 // force plate thickness, mm
	BoardWidth  float64 // lx, mm
	BoardLength float64 // ly, mm
	ZeroFill    ZeroFillPolicy
	Source      Source
	// AccelerometerUnit is the unit of the accelerometer COP channel;
	// empty means millimetres.
	AccelerometerUnit string
	Axes              Axes
	Labels            acquisition.Labels
}

// Estimate dispatches on the device kind.
func (e Estimator) Estimate(raw *acquisition.RawChannelSet, balanceBoard bool) (sway.COPSeries, error) {
	if balanceBoard {
		return e.BalanceBoard(raw)
	}
	return e.ForcePlate(raw)
}

// ForcePlate computes COP from the plate's force and moment channels.
func (e Estimator) ForcePlate(raw *acquisition.RawChannelSet) (sway.COPSeries, error) {
	labels := e.Labels.ForcePlate
	if len(labels) != 5 {
		return sway.COPSeries{}, fmt.Errorf("force plate needs 5 labels (Fx Fy Fz Mx My), got %d", len(labels))
	}
	ch, err := e.columns(raw, labels)
	if err != nil {
		return sway.COPSeries{}, err
	}
	fx, fy, fz, mx, my := ch[0], ch[1], ch[2], ch[3], ch[4]

	n := len(fz)
	x := make([]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		switch e.Axes {
		case RotatedAxes:
			x[i] = -(mx[i] - e.Dz*fy[i]) / fz[i]
			y[i] = -(my[i] + e.Dz*fx[i]) / fz[i]
		default:
			x[i] = -(my[i] + e.Dz*fx[i]) / fz[i]
			y[i] = (mx[i] - e.Dz*fy[i]) / fz[i]
		}
	}
	return sway.NewCOPSeries(x, y, raw.Frequency)
}

// BalanceBoard computes COP from the corner load cells, or reads it from
// the accelerometer channel when Source is Accelerometer.
func (e Estimator) BalanceBoard(raw *acquisition.RawChannelSet) (sway.COPSeries, error) {
	if e.Source == Accelerometer {
		x, err := raw.Column(e.Labels.Accelerometer, 0)
		if err != nil {
			return sway.COPSeries{}, err
		}
		y, err := raw.Column(e.Labels.Accelerometer, 1)
		if err != nil {
			return sway.COPSeries{}, err
		}
		return sway.NewCOPSeries(
			units.SliceToMillimetres(x, e.AccelerometerUnit),
			units.SliceToMillimetres(y, e.AccelerometerUnit),
			raw.Frequency)
	}

	labels := e.Labels.BoardCorners
	if len(labels) != 4 {
		return sway.COPSeries{}, fmt.Errorf("balance board needs 4 corner labels (TR BR TL BL), got %d", len(labels))
	}
	ch, err := e.columns(raw, labels)
	if err != nil {
		return sway.COPSeries{}, err
	}
	tr, br, tl, bl := ch[0], ch[1], ch[2], ch[3]

	n := len(tr)
	x := make([]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		total := tr[i] + br[i] + tl[i] + bl[i]
		x[i] = e.BoardWidth / 2 * ((tr[i] + br[i]) - (tl[i] + bl[i])) / total
		y[i] = e.BoardLength / 2 * ((tl[i] + tr[i]) - (br[i] + bl[i])) / total
	}
	return sway.NewCOPSeries(x, y, raw.Frequency)
}

// columns reads the first column of each label and applies the zero guard.
func (e Estimator) columns(raw *acquisition.RawChannelSet, labels []string) ([][]float64, error) {
	policy := e.ZeroFill
	if policy == "" {
		policy = HoldLastValue
	}
	out := make([][]float64, len(labels))
	for i, label := range labels {
		c, err := raw.Column(label, 0)
		if err != nil {
			return nil, err
		}
		out[i] = policy.Apply(c)
	}
	return out, nil
}
