package report

import (
	"context"
	"fmt"
	"math"
	"path/filepath"

	"github.com/banshee-data/sway.report/internal/fsutil"
	"github.com/banshee-data/sway.report/internal/sway"
	"github.com/banshee-data/sway.report/internal/sway/pipeline"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Plot dimensions.
const (
	plotWidth  = 8 * vg.Inch
	plotHeight = 6 * vg.Inch
)

// Stabilogram plots the ML against the AP displacement of a COP series.
func Stabilogram(title string, s sway.COPSeries) (*plot.Plot, error) {
	if s.Len() == 0 {
		return nil, sway.ErrEmptySeries
	}
	x, y := s.X(), s.Y()
	pts := make(plotter.XYs, 0, len(x))
	for i := range x {
		if finite(x[i]) && finite(y[i]) {
			pts = append(pts, plotter.XY{X: x[i], Y: y[i]})
		}
	}
	if len(pts) == 0 {
		return nil, fmt.Errorf("stabilogram %s: no finite samples", title)
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "ML (mm)"
	p.Y.Label.Text = "AP (mm)"

	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, fmt.Errorf("stabilogram line: %w", err)
	}
	line.Color = plotutil.Color(0)
	line.Width = vg.Points(1)
	p.Add(line, plotter.NewGrid())
	return p, nil
}

// SpectrumPlot draws one power spectral density line per direction, in
// feature order. Bins with non-positive frequency or non-finite power are
// skipped.
func SpectrumPlot(title string, spectra map[sway.Direction]sway.SpectralDensity) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Frequency (Hz)"
	p.Y.Label.Text = "Power (mm²/Hz)"
	p.Add(plotter.NewGrid())

	drawn := 0
	for i, d := range sway.Directions {
		psd, ok := spectra[d]
		if !ok {
			continue
		}
		pts := make(plotter.XYs, 0, psd.Len())
		for j, f := range psd.Frequencies {
			if f > 0 && finite(psd.Power[j]) {
				pts = append(pts, plotter.XY{X: f, Y: psd.Power[j]})
			}
		}
		if len(pts) == 0 {
			continue
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("spectrum line %s: %w", d, err)
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(string(d), line)
		drawn++
	}
	if drawn == 0 {
		return nil, fmt.Errorf("spectrum %s: no spectra to draw", title)
	}
	p.Legend.Top = true
	return p, nil
}

// SavePNG encodes p as PNG into path on fsys.
func SavePNG(fsys fsutil.FileSystem, p *plot.Plot, path string) (err error) {
	wt, err := p.WriterTo(plotWidth, plotHeight, "png")
	if err != nil {
		return fmt.Errorf("encode plot: %w", err)
	}
	if err := fsys.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create plot directory: %w", err)
	}
	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	if _, err := wt.WriteTo(f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// TrialPlotter is a pipeline.Sink that writes a stabilogram and a spectrum
// plot for every trial, mirroring the input layout below OutputRoot.
type TrialPlotter struct {
	FS         fsutil.FileSystem
	InputRoot  string
	OutputRoot string
}

// NewTrialPlotter returns a TrialPlotter on the OS filesystem.
func NewTrialPlotter(inputRoot, outputRoot string) *TrialPlotter {
	return &TrialPlotter{FS: fsutil.OSFileSystem{}, InputRoot: inputRoot, OutputRoot: outputRoot}
}

// StabilogramPath returns where the stabilogram for input is written.
func (tp *TrialPlotter) StabilogramPath(input string) string {
	return fsutil.BuildOutputPathExt(input, tp.InputRoot, tp.OutputRoot, "stabilogram", ".png")
}

// SpectrumPath returns where the spectrum plot for input is written.
func (tp *TrialPlotter) SpectrumPath(input string) string {
	return fsutil.BuildOutputPathExt(input, tp.InputRoot, tp.OutputRoot, "psd", ".png")
}

func (tp *TrialPlotter) Persist(ctx context.Context, r *pipeline.TrialResult) error {
	title := trialTitle(r.Info)

	p, err := Stabilogram(title, r.COP)
	if err != nil {
		return err
	}
	if err := SavePNG(tp.FS, p, tp.StabilogramPath(r.Path)); err != nil {
		return err
	}
	if len(r.Spectra) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	p, err = SpectrumPlot(title, r.Spectra)
	if err != nil {
		return err
	}
	return SavePNG(tp.FS, p, tp.SpectrumPath(r.Path))
}

func trialTitle(info pipeline.TrialInfo) string {
	return fmt.Sprintf("%s subject %s trial %s board %s", info.Device, info.Subject, info.Trial, info.BalanceBoard)
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
