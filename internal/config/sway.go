package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/banshee-data/sway.report/internal/units"
)

// DefaultConfigPath is the path to the canonical defaults file.
const DefaultConfigPath = "config/sway.defaults.json"

// SwayConfig holds every processing parameter. Fields are pointers so a
// partial file only overrides what it names; the Get* accessors supply
// the defaults for anything left unset.
type SwayConfig struct {
	// Resampling
	AcquisitionFrequency  *float64 `json:"acquisition_frequency,omitempty" yaml:"acquisition_frequency,omitempty"`
	FPResamplingMethod    *string  `json:"fp_resampling_method,omitempty" yaml:"fp_resampling_method,omitempty"`
	FPUpsamplingFactor    *int     `json:"fp_upsampling_factor,omitempty" yaml:"fp_upsampling_factor,omitempty"`
	FPDownsamplingFactor  *int     `json:"fp_downsampling_factor,omitempty" yaml:"fp_downsampling_factor,omitempty"`
	WBBResamplingMethod   *string  `json:"wbb_resampling_method,omitempty" yaml:"wbb_resampling_method,omitempty"`
	WBBUpsamplingFactor   *int     `json:"wbb_upsampling_factor,omitempty" yaml:"wbb_upsampling_factor,omitempty"`
	WBBDownsamplingFactor *int     `json:"wbb_downsampling_factor,omitempty" yaml:"wbb_downsampling_factor,omitempty"`
	SWARIIWindowSize      *float64 `json:"swarii_window_size,omitempty" yaml:"swarii_window_size,omitempty"`
	FilterSWARIIOutput    *bool    `json:"filter_swarii_output,omitempty" yaml:"filter_swarii_output,omitempty"`

	// Filtering, trimming, detrending
	FilterOrder              *int     `json:"filter_order,omitempty" yaml:"filter_order,omitempty"`
	CutoffFrequency          *float64 `json:"cutoff_frequency,omitempty" yaml:"cutoff_frequency,omitempty"`
	DetrendingType           *string  `json:"detrending_type,omitempty" yaml:"detrending_type,omitempty"`
	TimeWindowLowerThreshold *int     `json:"time_window_lower_threshold,omitempty" yaml:"time_window_lower_threshold,omitempty"`
	TimeWindowUpperThreshold *int     `json:"time_window_upper_threshold,omitempty" yaml:"time_window_upper_threshold,omitempty"`
	TimeShift                *int     `json:"time_shift,omitempty" yaml:"time_shift,omitempty"`

	// Devices
	ForcePlateDz   *float64 `json:"force_plate_dz,omitempty" yaml:"force_plate_dz,omitempty"`
	ForcePlateAxes *string  `json:"force_plate_axes,omitempty" yaml:"force_plate_axes,omitempty"`
	WBBWidth       *float64 `json:"wbb_width,omitempty" yaml:"wbb_width,omitempty"`
	WBBLength      *float64 `json:"wbb_length,omitempty" yaml:"wbb_length,omitempty"`
	WBBCOPSource   *string  `json:"wbb_cop_source,omitempty" yaml:"wbb_cop_source,omitempty"`
	// WBBAccelerometerUnit is the length unit of the accelerometer COP channel.
	WBBAccelerometerUnit *string `json:"wbb_accelerometer_unit,omitempty" yaml:"wbb_accelerometer_unit,omitempty"`
	ZeroFillPolicy       *string `json:"zero_fill_policy,omitempty" yaml:"zero_fill_policy,omitempty"`

	// Spectral estimation
	SpectralMethod           *string   `json:"spectral_method,omitempty" yaml:"spectral_method,omitempty"`
	NPerSeg                  *int      `json:"nperseg,omitempty" yaml:"nperseg,omitempty"`
	NFFT                     *int      `json:"nfft,omitempty" yaml:"nfft,omitempty"`
	AROrder                  *int      `json:"ar_order,omitempty" yaml:"ar_order,omitempty"`
	MultitaperTapers         *int      `json:"multitaper_tapers,omitempty" yaml:"multitaper_tapers,omitempty"`
	FrequencyRange           []float64 `json:"frequency_range,omitempty" yaml:"frequency_range,omitempty"`
	PowerFrequencyThresholds []float64 `json:"power_frequency_thresholds,omitempty" yaml:"power_frequency_thresholds,omitempty"`
	Z05                      *float64  `json:"z_05,omitempty" yaml:"z_05,omitempty"`
	F05                      *float64  `json:"f_05,omitempty" yaml:"f_05,omitempty"`

	// Channel labels
	ForcePlateLabels      []string `json:"force_plate_labels,omitempty" yaml:"force_plate_labels,omitempty"`
	WBBCornerLabels       []string `json:"wbb_corner_labels,omitempty" yaml:"wbb_corner_labels,omitempty"`
	WBBAccelerometerLabel *string  `json:"wbb_accelerometer_label,omitempty" yaml:"wbb_accelerometer_label,omitempty"`
	WBBTimeLabels         []string `json:"wbb_time_labels,omitempty" yaml:"wbb_time_labels,omitempty"`

	// Batch
	TrialTimeout *string `json:"trial_timeout,omitempty" yaml:"trial_timeout,omitempty"` // duration string like "2m"
	Workers      *int    `json:"workers,omitempty" yaml:"workers,omitempty"`
	LogLevel     *string `json:"log_level,omitempty" yaml:"log_level,omitempty"`
}

// EmptySwayConfig returns a SwayConfig with every field unset.
func EmptySwayConfig() *SwayConfig {
	return &SwayConfig{}
}

// LoadSwayConfig loads a SwayConfig from a .json, .yaml or .yml file of
// at most 1MB and validates it.
func LoadSwayConfig(path string) (*SwayConfig, error) {
	cleanPath := filepath.Clean(path)
	ext := filepath.Ext(cleanPath)
	switch ext {
	case ".json", ".yaml", ".yml":
	default:
		return nil, fmt.Errorf("config file must have .json, .yaml or .yml extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptySwayConfig()
	if ext == ".json" {
		err = json.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", ext, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// MustLoadDefaultConfig loads DefaultConfigPath, searching the current
// directory and its parents. Panics if the file cannot be loaded, intended
// for test setup.
func MustLoadDefaultConfig() *SwayConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,       // from internal/config/
		"../../../" + DefaultConfigPath,    // from internal/sway/pipeline/
		"../../../../" + DefaultConfigPath, // deeper packages
	}
	for _, path := range candidates {
		if cfg, err := LoadSwayConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

func oneOf(key, v string, allowed ...string) error {
	for _, a := range allowed {
		if v == a {
			return nil
		}
	}
	return fmt.Errorf("%s must be one of %v, got %q", key, allowed, v)
}

// Validate checks the values that are set. Unset fields are not checked
// since their defaults are valid.
func (c *SwayConfig) Validate() error {
	if c.AcquisitionFrequency != nil && *c.AcquisitionFrequency <= 0 {
		return fmt.Errorf("acquisition_frequency must be positive, got %g", *c.AcquisitionFrequency)
	}
	if c.FPResamplingMethod != nil {
		if err := oneOf("fp_resampling_method", *c.FPResamplingMethod, "decimate", "polyphase"); err != nil {
			return err
		}
	}
	if c.WBBResamplingMethod != nil {
		if err := oneOf("wbb_resampling_method", *c.WBBResamplingMethod, "swarii", "fourier", "polyphase"); err != nil {
			return err
		}
	}
	for key, v := range map[string]*int{
		"fp_upsampling_factor":    c.FPUpsamplingFactor,
		"fp_downsampling_factor":  c.FPDownsamplingFactor,
		"wbb_upsampling_factor":   c.WBBUpsamplingFactor,
		"wbb_downsampling_factor": c.WBBDownsamplingFactor,
		"filter_order":            c.FilterOrder,
		"nperseg":                 c.NPerSeg,
		"ar_order":                c.AROrder,
		"multitaper_tapers":       c.MultitaperTapers,
	} {
		if v != nil && *v < 1 {
			return fmt.Errorf("%s must be >= 1, got %d", key, *v)
		}
	}
	if c.SWARIIWindowSize != nil && *c.SWARIIWindowSize <= 0 {
		return fmt.Errorf("swarii_window_size must be positive, got %g", *c.SWARIIWindowSize)
	}
	if fc := c.GetCutoffFrequency(); fc <= 0 || fc >= c.GetAcquisitionFrequency()/2 {
		return fmt.Errorf("cutoff_frequency %g must lie in (0, %g)", fc, c.GetAcquisitionFrequency()/2)
	}
	if c.DetrendingType != nil {
		if err := oneOf("detrending_type", *c.DetrendingType, "linear", "constant"); err != nil {
			return err
		}
	}
	if c.TimeWindowLowerThreshold != nil && *c.TimeWindowLowerThreshold < 0 {
		return fmt.Errorf("time_window_lower_threshold must be >= 0, got %d", *c.TimeWindowLowerThreshold)
	}
	if c.GetTimeWindowLowerThreshold()+c.GetTimeShift() < 0 {
		return fmt.Errorf("time_shift %d moves the trim window before the first sample", c.GetTimeShift())
	}
	if c.ForcePlateAxes != nil {
		if err := oneOf("force_plate_axes", *c.ForcePlateAxes, "standard", "rotated"); err != nil {
			return err
		}
	}
	if c.WBBCOPSource != nil {
		if err := oneOf("wbb_cop_source", *c.WBBCOPSource, "corners", "accelerometer"); err != nil {
			return err
		}
	}
	if c.WBBAccelerometerUnit != nil && !units.IsValid(*c.WBBAccelerometerUnit) {
		return fmt.Errorf("wbb_accelerometer_unit must be one of %s, got %q", units.GetValidUnitsString(), *c.WBBAccelerometerUnit)
	}
	if c.ZeroFillPolicy != nil {
		if err := oneOf("zero_fill_policy", *c.ZeroFillPolicy, "hold_last_value", "replace_with_one"); err != nil {
			return err
		}
	}
	if c.SpectralMethod != nil {
		if err := oneOf("spectral_method", *c.SpectralMethod,
			"welch", "multitaper", "burg", "yule_walker", "covariance", "modified_covariance"); err != nil {
			return err
		}
	}
	if c.NFFT != nil && *c.NFFT < 0 {
		return fmt.Errorf("nfft must be >= 0, got %d", *c.NFFT)
	}
	if c.FrequencyRange != nil {
		r := c.FrequencyRange
		if len(r) != 2 || r[0] < 0 || (r[1] > 0 && r[1] <= r[0]) {
			return fmt.Errorf("frequency_range must be [low, high] with 0 <= low < high, got %v", r)
		}
	}
	for _, n := range c.PowerFrequencyThresholds {
		if n <= 0 || n > 100 {
			return fmt.Errorf("power_frequency_thresholds must lie in (0, 100], got %g", n)
		}
	}
	if c.ForcePlateLabels != nil && len(c.ForcePlateLabels) != 5 {
		return fmt.Errorf("force_plate_labels needs 5 entries (Fx Fy Fz Mx My), got %d", len(c.ForcePlateLabels))
	}
	if c.WBBCornerLabels != nil && len(c.WBBCornerLabels) != 4 {
		return fmt.Errorf("wbb_corner_labels needs 4 entries (TR BR TL BL), got %d", len(c.WBBCornerLabels))
	}
	if c.WBBTimeLabels != nil && len(c.WBBTimeLabels) != 7 {
		return fmt.Errorf("wbb_time_labels needs 7 entries, got %d", len(c.WBBTimeLabels))
	}
	if c.TrialTimeout != nil && *c.TrialTimeout != "" {
		if _, err := time.ParseDuration(*c.TrialTimeout); err != nil {
			return fmt.Errorf("invalid trial_timeout '%s': %w", *c.TrialTimeout, err)
		}
	}
	if c.Workers != nil && *c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", *c.Workers)
	}
	return nil
}
