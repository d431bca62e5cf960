package conditioning

import (
	"errors"
	"fmt"
)

var (
	// ErrTrimOutOfRange is returned when the trim window does not fit the
	// series.
	ErrTrimOutOfRange = errors.New("trim window out of range")
	// ErrRateMismatch is returned when resampling does not land on the
	// analysis frequency.
	ErrRateMismatch = errors.New("resampled rate does not match analysis frequency")
)

// Method names a resampling algorithm.
type Method string

const (
	Decimate  Method = "decimate"
	Polyphase Method = "polyphase"
	Fourier   Method = "fourier"
	SWARII    Method = "swarii"
)

// DetrendMode selects what Detrend removes.
type DetrendMode string

const (
	Constant DetrendMode = "constant"
	Linear   DetrendMode = "linear"
)

// Options configures a Conditioner. Sample thresholds are counted on the
// resampled series.
type Options struct {
	Frequency float64 // analysis frequency, Hz

	FPMethod       Method // Decimate or Polyphase
	FPUpsampling   int
	FPDownsampling int

	WBBMethod       Method // SWARII, Fourier or Polyphase
	WBBUpsampling   int
	WBBDownsampling int
	SWARIIWindow    float64 // seconds
	FilterSWARII    bool

	FilterOrder int
	Cutoff      float64 // Hz

	Detrend DetrendMode

	LowerThreshold int
	UpperThreshold int
	TimeShift      int
}

// Validate rejects option sets that cannot condition any trial.
func (o Options) Validate() error {
	if !(o.Frequency > 0) {
		return fmt.Errorf("analysis frequency must be positive, got %g", o.Frequency)
	}
	switch o.FPMethod {
	case Decimate, Polyphase:
	default:
		return fmt.Errorf("unsupported force plate resampling method %q", o.FPMethod)
	}
	switch o.WBBMethod {
	case SWARII, Fourier, Polyphase:
	default:
		return fmt.Errorf("unsupported balance board resampling method %q", o.WBBMethod)
	}
	if o.FPUpsampling < 1 || o.FPDownsampling < 1 || o.WBBUpsampling < 1 || o.WBBDownsampling < 1 {
		return fmt.Errorf("resampling factors must be >= 1")
	}
	if o.WBBMethod == SWARII && !(o.SWARIIWindow > 0) {
		return fmt.Errorf("swarii window must be positive, got %g", o.SWARIIWindow)
	}
	if o.FilterOrder < 1 {
		return fmt.Errorf("filter order must be >= 1, got %d", o.FilterOrder)
	}
	if !(o.Cutoff > 0) || o.Cutoff >= o.Frequency/2 {
		return fmt.Errorf("cutoff %g Hz must lie in (0, %g)", o.Cutoff, o.Frequency/2)
	}
	switch o.Detrend {
	case Constant, Linear:
	default:
		return fmt.Errorf("unsupported detrending type %q", o.Detrend)
	}
	if o.LowerThreshold < 0 || o.LowerThreshold+o.TimeShift < 0 {
		return fmt.Errorf("trim window starts before the first sample")
	}
	return nil
}
