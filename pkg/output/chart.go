package output

import (
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// ErrNoLayers is returned when a chart is requested for a report without layers.
var ErrNoLayers = errors.New("report has no layers to chart")

// NewChartWriter picks a chart writer from the file extension of path.
func NewChartWriter(path string) (ChartWriter, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".html", ".htm":
		return NewHTMLChart(), nil
	case ".png", ".svg":
		return NewImageChart(strings.TrimPrefix(ext, ".")), nil
	default:
		return nil, fmt.Errorf("unsupported chart extension %q (use .html, .png or .svg)", ext)
	}
}

// HTMLChart renders an interactive go-echarts page.
type HTMLChart struct {
	Width  string
	Height string
}

// NewHTMLChart returns an HTML chart writer with default dimensions.
func NewHTMLChart() *HTMLChart {
	return &HTMLChart{Width: "100%", Height: "600px"}
}

// Name returns the chart format.
func (c *HTMLChart) Name() string {
	return "html"
}

// WriteChart renders original and updated layer times as lines, and the
// pause per layer as bars.
func (c *HTMLChart) WriteChart(report *Report, w io.Writer) error {
	if len(report.Layers) == 0 {
		return ErrNoLayers
	}

	x := make([]string, len(report.Layers))
	original := make([]opts.LineData, len(report.Layers))
	updated := make([]opts.LineData, len(report.Layers))
	pauses := make([]opts.BarData, len(report.Layers))
	for i, l := range report.Layers {
		x[i] = strconv.Itoa(l.Layer)
		original[i] = opts.LineData{Value: round2(l.Original)}
		updated[i] = opts.LineData{Value: round2(l.Updated)}
		pauses[i] = opts.BarData{Value: round2(l.SecondsToAdd)}
	}

	subtitle := fmt.Sprintf("%s: %d layers, %d need a pause",
		report.Metadata.Input, report.Summary.Layers, report.Summary.LayersNeedingDwell)

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "layerdwell", Width: c.Width, Height: c.Height}),
		charts.WithTitleOpts(opts.Title{Title: "Layer times", Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Right: "10%"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Layer", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Seconds"}),
	)
	line.SetXAxis(x).
		AddSeries("Original", original).
		AddSeries("Updated", updated)

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: c.Width, Height: c.Height}),
		charts.WithTitleOpts(opts.Title{Title: "Pause per layer"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Layer", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Seconds"}),
	)
	bar.SetXAxis(x).AddSeries("Seconds to add", pauses)

	page := components.NewPage()
	page.AddCharts(line, bar)

	return page.Render(w)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
