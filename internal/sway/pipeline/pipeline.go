package pipeline

import (
	"context"
	"fmt"

	"github.com/banshee-data/sway.report/internal/acquisition"
	"github.com/banshee-data/sway.report/internal/config"
	"github.com/banshee-data/sway.report/internal/sway/conditioning"
	"github.com/banshee-data/sway.report/internal/sway/cop"
	"github.com/banshee-data/sway.report/internal/sway/freqfeatures"
	"github.com/banshee-data/sway.report/internal/sway/timefeatures"
)

// Pipeline processes one acquisition file at a time. A Pipeline holds no
// per-trial state and may be shared between goroutines.
type Pipeline struct {
	Reader      acquisition.Reader
	Estimator   cop.Estimator
	Conditioner *conditioning.Conditioner
	TimeEngine  timefeatures.Engine
	FreqEngine  freqfeatures.Engine
	// Sink is optional; a nil Sink skips the persist stage.
	Sink Sink
}

// Labels returns the channel labels named by cfg.
func Labels(cfg *config.SwayConfig) acquisition.Labels {
	return acquisition.Labels{
		ForcePlate:    cfg.GetForcePlateLabels(),
		BoardCorners:  cfg.GetWBBCornerLabels(),
		Accelerometer: cfg.GetWBBAccelerometerLabel(),
		Time:          cfg.GetWBBTimeLabels(),
	}
}

// ConditioningOptions maps cfg onto the conditioner's options.
func ConditioningOptions(cfg *config.SwayConfig) conditioning.Options {
	return conditioning.Options{
		Frequency:       cfg.GetAcquisitionFrequency(),
		FPMethod:        conditioning.Method(cfg.GetFPResamplingMethod()),
		FPUpsampling:    cfg.GetFPUpsamplingFactor(),
		FPDownsampling:  cfg.GetFPDownsamplingFactor(),
		WBBMethod:       conditioning.Method(cfg.GetWBBResamplingMethod()),
		WBBUpsampling:   cfg.GetWBBUpsamplingFactor(),
		WBBDownsampling: cfg.GetWBBDownsamplingFactor(),
		SWARIIWindow:    cfg.GetSWARIIWindowSize(),
		FilterSWARII:    cfg.GetFilterSWARIIOutput(),
		FilterOrder:     cfg.GetFilterOrder(),
		Cutoff:          cfg.GetCutoffFrequency(),
		Detrend:         conditioning.DetrendMode(cfg.GetDetrendingType()),
		LowerThreshold:  cfg.GetTimeWindowLowerThreshold(),
		UpperThreshold:  cfg.GetTimeWindowUpperThreshold(),
		TimeShift:       cfg.GetTimeShift(),
	}
}

// NewFromConfig assembles a Pipeline reading JSON exports from disk.
func NewFromConfig(cfg *config.SwayConfig, sink Sink) (*Pipeline, error) {
	labels := Labels(cfg)

	fill, err := cop.ParseZeroFillPolicy(cfg.GetZeroFillPolicy())
	if err != nil {
		return nil, err
	}
	estimator := cop.Estimator{
		Dz:          cfg.GetForcePlateDz(),
		BoardWidth:  cfg.GetWBBWidth(),
		BoardLength: cfg.GetWBBLength(),
		ZeroFill:    fill,
		Source:      cop.Source(cfg.GetWBBCOPSource()),
		Axes:        cop.Axes(cfg.GetForcePlateAxes()),
		Labels:      labels,

		AccelerometerUnit: cfg.GetWBBAccelerometerUnit(),
	}

	conditioner, err := conditioning.New(ConditioningOptions(cfg))
	if err != nil {
		return nil, fmt.Errorf("conditioning options: %w", err)
	}

	spectral, err := freqfeatures.NewEstimator(freqfeatures.Method(cfg.GetSpectralMethod()), freqfeatures.Params{
		NPerSeg: cfg.GetNPerSeg(),
		NFFT:    cfg.GetNFFT(),
		AROrder: cfg.GetAROrder(),
		Tapers:  cfg.GetMultitaperTapers(),
	})
	if err != nil {
		return nil, fmt.Errorf("spectral estimator: %w", err)
	}

	reader := acquisition.NewJSONReader(labels)
	reader.RequireAccelerometer = estimator.Source == cop.Accelerometer

	return &Pipeline{
		Reader:      reader,
		Estimator:   estimator,
		Conditioner: conditioner,
		TimeEngine:  timefeatures.Engine{Z05: cfg.GetZ05(), F05: cfg.GetF05()},
		FreqEngine: freqfeatures.Engine{
			Estimator:  spectral,
			Range:      cfg.GetFrequencyRange(),
			Thresholds: cfg.GetPowerFrequencyThresholds(),
		},
		Sink: sink,
	}, nil
}

// ProcessFile runs read, COP, condition, feature and persist stages for
// path. Failures come back as *StageError. Context cancellation is
// checked between stages.
func (p *Pipeline) ProcessFile(ctx context.Context, path string) (result *TrialResult, err error) {
	stage := StageRead
	fail := func(e error) error { return &StageError{Path: path, Stage: stage, Err: e} }
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, fail(fmt.Errorf("panic: %v", r))
		}
	}()
	step := func(s Stage) error {
		stage = s
		return ctx.Err()
	}

	info := ParseTrialInfo(path)
	board := info.IsBalanceBoard()
	res := &TrialResult{Path: path, Info: info}

	if err := step(StageRead); err != nil {
		return nil, fail(err)
	}
	raw, err := p.Reader.Read(path, board)
	if err != nil {
		return nil, fail(err)
	}

	if err := step(StageCOP); err != nil {
		return nil, fail(err)
	}
	if res.Raw, err = p.Estimator.Estimate(raw, board); err != nil {
		return nil, fail(err)
	}

	if err := step(StageCondition); err != nil {
		return nil, fail(err)
	}
	if board {
		res.COP, err = p.Conditioner.ConditionBalanceBoard(res.Raw, raw.Timestamps)
	} else {
		res.COP, err = p.Conditioner.ConditionForcePlate(res.Raw)
	}
	if err != nil {
		return nil, fail(err)
	}

	if err := step(StageTimeFeatures); err != nil {
		return nil, fail(err)
	}
	if res.TimeFeatures, err = p.TimeEngine.Compute(res.COP); err != nil {
		return nil, fail(err)
	}

	if err := step(StageFrequencyFeatures); err != nil {
		return nil, fail(err)
	}
	if res.FrequencyFeatures, res.Spectra, err = p.FreqEngine.Compute(res.COP); err != nil {
		return nil, fail(err)
	}

	if p.Sink != nil {
		if err := step(StagePersist); err != nil {
			return nil, fail(err)
		}
		if err := p.Sink.Persist(ctx, res); err != nil {
			return nil, fail(err)
		}
	}
	return res, nil
}
