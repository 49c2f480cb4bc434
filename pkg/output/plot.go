package output

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var (
	originalColor = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}
	updatedColor  = color.RGBA{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff}
)

// ImageChart renders a static PNG or SVG line chart with gonum/plot.
type ImageChart struct {
	Format string
	Width  vg.Length
	Height vg.Length
}

// NewImageChart returns an image chart writer for format ("png" or "svg").
func NewImageChart(format string) *ImageChart {
	return &ImageChart{Format: format, Width: 10 * vg.Inch, Height: 5 * vg.Inch}
}

// Name returns the chart format.
func (c *ImageChart) Name() string {
	return c.Format
}

// WriteChart plots original and updated layer times against layer id.
func (c *ImageChart) WriteChart(report *Report, w io.Writer) error {
	if len(report.Layers) == 0 {
		return ErrNoLayers
	}

	p := plot.New()
	p.Title.Text = "Layer times"
	if report.Metadata.Input != "" {
		p.Title.Text = fmt.Sprintf("Layer times: %s", report.Metadata.Input)
	}
	p.X.Label.Text = "Layer"
	p.Y.Label.Text = "Seconds"
	p.Add(plotter.NewGrid())

	originalPts := make(plotter.XYs, len(report.Layers))
	updatedPts := make(plotter.XYs, len(report.Layers))
	for i, l := range report.Layers {
		originalPts[i] = plotter.XY{X: float64(l.Layer), Y: l.Original}
		updatedPts[i] = plotter.XY{X: float64(l.Layer), Y: l.Updated}
	}

	for _, s := range []struct {
		name  string
		pts   plotter.XYs
		color color.Color
	}{
		{"Original", originalPts, originalColor},
		{"Updated", updatedPts, updatedColor},
	} {
		line, err := plotter.NewLine(s.pts)
		if err != nil {
			return fmt.Errorf("building %s series: %w", s.name, err)
		}
		line.Color = s.color
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(s.name, line)
	}
	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	wt, err := p.WriterTo(c.Width, c.Height, c.Format)
	if err != nil {
		return fmt.Errorf("rendering %s chart: %w", c.Format, err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("writing %s chart: %w", c.Format, err)
	}
	return nil
}
