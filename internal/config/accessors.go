package config

import (
	"runtime"
	"time"
)

// Get* accessors return the configured value or its default. The
// defaults mirror config/sway.defaults.json.

func (c *SwayConfig) GetAcquisitionFrequency() float64 {
	if c.AcquisitionFrequency == nil {
		return 100
	}
	return *c.AcquisitionFrequency
}

func (c *SwayConfig) GetFPResamplingMethod() string {
	if c.FPResamplingMethod == nil {
		return "decimate"
	}
	return *c.FPResamplingMethod
}

func (c *SwayConfig) GetFPUpsamplingFactor() int {
	if c.FPUpsamplingFactor == nil {
		return 1
	}
	return *c.FPUpsamplingFactor
}

func (c *SwayConfig) GetFPDownsamplingFactor() int {
	if c.FPDownsamplingFactor == nil {
		return 10
	}
	return *c.FPDownsamplingFactor
}

func (c *SwayConfig) GetWBBResamplingMethod() string {
	if c.WBBResamplingMethod == nil {
		return "swarii"
	}
	return *c.WBBResamplingMethod
}

func (c *SwayConfig) GetWBBUpsamplingFactor() int {
	if c.WBBUpsamplingFactor == nil {
		return 1
	}
	return *c.WBBUpsamplingFactor
}

func (c *SwayConfig) GetWBBDownsamplingFactor() int {
	if c.WBBDownsamplingFactor == nil {
		return 1
	}
	return *c.WBBDownsamplingFactor
}

func (c *SwayConfig) GetSWARIIWindowSize() float64 {
	if c.SWARIIWindowSize == nil {
		return 0.25
	}
	return *c.SWARIIWindowSize
}

func (c *SwayConfig) GetFilterSWARIIOutput() bool {
	if c.FilterSWARIIOutput == nil {
		return false
	}
	return *c.FilterSWARIIOutput
}

func (c *SwayConfig) GetFilterOrder() int {
	if c.FilterOrder == nil {
		return 4
	}
	return *c.FilterOrder
}

func (c *SwayConfig) GetCutoffFrequency() float64 {
	if c.CutoffFrequency == nil {
		return 10
	}
	return *c.CutoffFrequency
}

func (c *SwayConfig) GetDetrendingType() string {
	if c.DetrendingType == nil {
		return "linear"
	}
	return *c.DetrendingType
}

func (c *SwayConfig) GetTimeWindowLowerThreshold() int {
	if c.TimeWindowLowerThreshold == nil {
		return 100
	}
	return *c.TimeWindowLowerThreshold
}

func (c *SwayConfig) GetTimeWindowUpperThreshold() int {
	if c.TimeWindowUpperThreshold == nil {
		return -100
	}
	return *c.TimeWindowUpperThreshold
}

func (c *SwayConfig) GetTimeShift() int {
	if c.TimeShift == nil {
		return 0
	}
	return *c.TimeShift
}

func (c *SwayConfig) GetForcePlateDz() float64 {
	if c.ForcePlateDz == nil {
		return 40
	}
	return *c.ForcePlateDz
}

func (c *SwayConfig) GetForcePlateAxes() string {
	if c.ForcePlateAxes == nil {
		return "standard"
	}
	return *c.ForcePlateAxes
}

func (c *SwayConfig) GetWBBWidth() float64 {
	if c.WBBWidth == nil {
		return 433
	}
	return *c.WBBWidth
}

func (c *SwayConfig) GetWBBLength() float64 {
	if c.WBBLength == nil {
		return 238
	}
	return *c.WBBLength
}

func (c *SwayConfig) GetWBBCOPSource() string {
	if c.WBBCOPSource == nil {
		return "corners"
	}
	return *c.WBBCOPSource
}

func (c *SwayConfig) GetWBBAccelerometerUnit() string {
	if c.WBBAccelerometerUnit == nil {
		return "mm"
	}
	return *c.WBBAccelerometerUnit
}

func (c *SwayConfig) GetZeroFillPolicy() string {
	if c.ZeroFillPolicy == nil {
		return "hold_last_value"
	}
	return *c.ZeroFillPolicy
}

func (c *SwayConfig) GetSpectralMethod() string {
	if c.SpectralMethod == nil {
		return "welch"
	}
	return *c.SpectralMethod
}

func (c *SwayConfig) GetNPerSeg() int {
	if c.NPerSeg == nil {
		return 256
	}
	return *c.NPerSeg
}

// GetNFFT returns 0 when unset, meaning "derive from the signal length".
func (c *SwayConfig) GetNFFT() int {
	if c.NFFT == nil {
		return 0
	}
	return *c.NFFT
}

func (c *SwayConfig) GetAROrder() int {
	if c.AROrder == nil {
		return 10
	}
	return *c.AROrder
}

func (c *SwayConfig) GetMultitaperTapers() int {
	if c.MultitaperTapers == nil {
		return 5
	}
	return *c.MultitaperTapers
}

func (c *SwayConfig) GetFrequencyRange() [2]float64 {
	if len(c.FrequencyRange) != 2 {
		return [2]float64{0.15, 5}
	}
	return [2]float64{c.FrequencyRange[0], c.FrequencyRange[1]}
}

func (c *SwayConfig) GetPowerFrequencyThresholds() []float64 {
	if len(c.PowerFrequencyThresholds) == 0 {
		return []float64{50, 80}
	}
	return append([]float64(nil), c.PowerFrequencyThresholds...)
}

func (c *SwayConfig) GetZ05() float64 {
	if c.Z05 == nil {
		return 1.645
	}
	return *c.Z05
}

func (c *SwayConfig) GetF05() float64 {
	if c.F05 == nil {
		return 3.0
	}
	return *c.F05
}

func (c *SwayConfig) GetForcePlateLabels() []string {
	if len(c.ForcePlateLabels) == 0 {
		return []string{"Fx1", "Fy1", "Fz1", "Mx1", "My1"}
	}
	return append([]string(nil), c.ForcePlateLabels...)
}

func (c *SwayConfig) GetWBBCornerLabels() []string {
	if len(c.WBBCornerLabels) == 0 {
		return []string{"TopRight Kg", "BottomRight Kg", "TopLeft Kg", "BottomLeft Kg"}
	}
	return append([]string(nil), c.WBBCornerLabels...)
}

func (c *SwayConfig) GetWBBAccelerometerLabel() string {
	if c.WBBAccelerometerLabel == nil {
		return "Accelerometer"
	}
	return *c.WBBAccelerometerLabel
}

func (c *SwayConfig) GetWBBTimeLabels() []string {
	if len(c.WBBTimeLabels) == 0 {
		return []string{"year", "month", "day", "hour", "minute", "second", "milisecond"}
	}
	return append([]string(nil), c.WBBTimeLabels...)
}

// GetTrialTimeout returns the per-trial deadline. Zero disables it.
func (c *SwayConfig) GetTrialTimeout() time.Duration {
	if c.TrialTimeout == nil || *c.TrialTimeout == "" {
		return 2 * time.Minute
	}
	d, err := time.ParseDuration(*c.TrialTimeout)
	if err != nil {
		return 2 * time.Minute
	}
	return d
}

// GetWorkers returns the batch pool size; 0 selects GOMAXPROCS.
func (c *SwayConfig) GetWorkers() int {
	if c.Workers == nil || *c.Workers == 0 {
		return runtime.GOMAXPROCS(0)
	}
	return *c.Workers
}

func (c *SwayConfig) GetLogLevel() string {
	if c.LogLevel == nil {
		return "info"
	}
	return *c.LogLevel
}
