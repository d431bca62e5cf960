package conditioning

import (
	"fmt"
	"math"

	"github.com/banshee-data/sway.report/internal/sway"
	"github.com/banshee-data/sway.report/internal/sway/resample"
)

// rateTolerance is the relative slack allowed between the resampled rate
// and the analysis frequency.
const rateTolerance = 1e-9

// Conditioner runs the resample, low-pass, trim and detrend sequence.
type Conditioner struct {
	Options
}

// New validates opts and returns a Conditioner.
func New(opts Options) (*Conditioner, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Conditioner{Options: opts}, nil
}

// ConditionForcePlate conditions a force-plate COP series recorded at
// cop.Frequency.
func (c *Conditioner) ConditionForcePlate(cop sway.COPSeries) (sway.COPSeries, error) {
	if cop.Len() == 0 {
		return sway.COPSeries{}, sway.ErrEmptySeries
	}
	var (
		rs  sway.COPSeries
		err error
	)
	switch c.FPMethod {
	case Polyphase:
		rs, err = c.polyphase(cop, c.FPUpsampling, c.FPDownsampling)
	default:
		rate := cop.Frequency / float64(c.FPDownsampling)
		if err = c.checkRate(rate); err != nil {
			break
		}
		rs, err = cop.Map(rate, func(x []float64) ([]float64, error) {
			return resample.Decimate(x, c.FPDownsampling)
		})
	}
	if err != nil {
		return sway.COPSeries{}, fmt.Errorf("resample: %w", err)
	}
	return c.finish(rs, true, c.TimeShift)
}

// ConditionBalanceBoard conditions a balance-board COP series. timestamps
// are the per-sample times in seconds and drive SWARII and the Fourier
// target length.
func (c *Conditioner) ConditionBalanceBoard(cop sway.COPSeries, timestamps []float64) (sway.COPSeries, error) {
	if cop.Len() == 0 {
		return sway.COPSeries{}, sway.ErrEmptySeries
	}
	var (
		rs     sway.COPSeries
		err    error
		filter = true
	)
	switch c.WBBMethod {
	case Polyphase:
		rs, err = c.polyphase(cop, c.WBBUpsampling, c.WBBDownsampling)
	case Fourier:
		if len(timestamps) == 0 {
			err = fmt.Errorf("fourier resampling needs timestamps: %w", resample.ErrEmptyInput)
			break
		}
		num := int(math.Round(timestamps[len(timestamps)-1] * c.Frequency))
		rs, err = cop.Map(c.Frequency, func(x []float64) ([]float64, error) {
			return resample.Fourier(x, num)
		})
	default:
		filter = c.FilterSWARII
		s := resample.SWARII{WindowSize: c.SWARIIWindow, DesiredFrequency: c.Frequency}
		rs, err = cop.Map(c.Frequency, func(x []float64) ([]float64, error) {
			_, v, err := s.Resample(timestamps, x)
			return v, err
		})
	}
	if err != nil {
		return sway.COPSeries{}, fmt.Errorf("resample: %w", err)
	}
	return c.finish(rs, filter, 0)
}

func (c *Conditioner) polyphase(cop sway.COPSeries, up, down int) (sway.COPSeries, error) {
	rate := cop.Frequency * float64(up) / float64(down)
	if err := c.checkRate(rate); err != nil {
		return sway.COPSeries{}, err
	}
	return cop.Map(rate, func(x []float64) ([]float64, error) {
		return resample.Polyphase(x, up, down)
	})
}

func (c *Conditioner) checkRate(rate float64) error {
	if math.Abs(rate-c.Frequency) > rateTolerance*c.Frequency {
		return fmt.Errorf("%w: %g Hz, want %g Hz", ErrRateMismatch, rate, c.Frequency)
	}
	return nil
}

// finish filters (optionally), trims with the given shift and detrends.
func (c *Conditioner) finish(cop sway.COPSeries, filter bool, shift int) (sway.COPSeries, error) {
	var err error
	fs := cop.Frequency
	if filter {
		cop, err = cop.Map(fs, func(x []float64) ([]float64, error) {
			return LowPass(x, c.FilterOrder, c.Cutoff, fs)
		})
		if err != nil {
			return sway.COPSeries{}, fmt.Errorf("filter: %w", err)
		}
	}

	cop, err = cop.Map(fs, func(x []float64) ([]float64, error) {
		// An upper threshold of 0 means the end of the series and is not
		// shifted; other thresholds move with the time shift.
		end := len(x)
		switch {
		case c.UpperThreshold > 0:
			end = c.UpperThreshold + shift
		case c.UpperThreshold < 0:
			end = len(x) + c.UpperThreshold + shift
		}
		if end <= 0 {
			return nil, fmt.Errorf("%w: window ends at %d", ErrTrimOutOfRange, end)
		}
		return Trim(x, c.LowerThreshold+shift, end)
	})
	if err != nil {
		return sway.COPSeries{}, fmt.Errorf("trim: %w", err)
	}

	cop, err = cop.Map(fs, func(x []float64) ([]float64, error) {
		return Detrend(x, c.Detrend)
	})
	if err != nil {
		return sway.COPSeries{}, fmt.Errorf("detrend: %w", err)
	}
	return cop, nil
}
