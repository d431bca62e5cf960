package report

import (
	"fmt"
	"io"
	"math"

	"github.com/banshee-data/sway.report/internal/agreement"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// AssetsHost serves the echarts javascript. Empty uses the library default.
var AssetsHost = ""

// BlandAltmanChart plots the pairwise mean against the board minus plate
// difference for one feature, with the bias and limits of agreement as
// horizontal mark lines.
func BlandAltmanChart(fa agreement.FeatureAgreement) *charts.Scatter {
	data := make([]opts.ScatterData, 0, len(fa.BoardValues))
	for i, b := range fa.BoardValues {
		p := fa.PlateValues[i]
		data = append(data, opts.ScatterData{Value: []interface{}{(b + p) / 2, b - p}})
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "600px", Height: "400px", AssetsHost: AssetsHost}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("%s (%s)", fa.Feature, fa.Domain),
			Subtitle: fmt.Sprintf("n=%d bias=%s ICC=%s", fa.N, format(fa.BlandAltman.Bias), format(fa.ICC)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "mean", NameLocation: "middle", NameGap: 25, Scale: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "WBB - FP", Scale: opts.Bool(true)}),
	)

	series := []charts.SeriesOpts{charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 6})}
	var lines []opts.MarkLineNameYAxisItem
	for _, l := range []struct {
		name string
		v    float64
	}{
		{"bias", fa.BlandAltman.Bias},
		{"lower", fa.BlandAltman.Lower},
		{"upper", fa.BlandAltman.Upper},
	} {
		if !math.IsNaN(l.v) && !math.IsInf(l.v, 0) {
			lines = append(lines, opts.MarkLineNameYAxisItem{Name: l.name, YAxis: l.v})
		}
	}
	if len(lines) > 0 {
		series = append(series,
			charts.WithMarkLineNameYAxisItemOpts(lines...),
			charts.WithMarkLineStyleOpts(opts.MarkLineStyle{
				Symbol:    []string{"none", "none"},
				LineStyle: &opts.LineStyle{Type: "dashed"},
			}),
		)
	}
	scatter.AddSeries(fa.Feature, data, series...)
	return scatter
}

// ICCChart is a bar chart of the ICC(2,1) of every feature. Features
// without an ICC are shown as zero-height bars.
func ICCChart(results []agreement.FeatureAgreement) *charts.Bar {
	names := make([]string, len(results))
	values := make([]opts.BarData, len(results))
	for i, fa := range results {
		names[i] = fa.Feature
		v := fa.ICC
		if math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}
		values[i] = opts.BarData{Name: fa.Feature, Value: v}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "480px", AssetsHost: AssetsHost}),
		charts.WithTitleOpts(opts.Title{Title: "ICC(2,1) WBB vs FP"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{AxisLabel: &opts.AxisLabel{Rotate: 45, Interval: "0"}}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Min: 0, Max: 1}),
	)
	bar.SetXAxis(names).AddSeries("ICC", values)
	return bar
}

// WriteBlandAltmanHTML renders the ICC overview followed by one
// Bland-Altman chart per feature.
func WriteBlandAltmanHTML(w io.Writer, results []agreement.FeatureAgreement) error {
	if len(results) == 0 {
		return fmt.Errorf("no features to report")
	}
	page := components.NewPage()
	if AssetsHost != "" {
		page.SetAssetsHost(AssetsHost)
	}
	page.SetPageTitle("WBB vs FP agreement")
	page.SetLayout(components.PageFlexLayout)

	page.AddCharts(ICCChart(results))
	for _, fa := range results {
		page.AddCharts(BlandAltmanChart(fa))
	}
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render agreement report: %w", err)
	}
	return nil
}

func format(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.3g", v)
}
