package output

import (
	"context"
	"io"
)

// Formatter renders analysis results in a specific format.
type Formatter interface {
	// Format renders the report to the given writer.
	Format(ctx context.Context, report *Report, w io.Writer) error

	// Name returns the format name (text, json).
	Name() string
}

// ChartWriter renders the per-layer timelines of a report as a chart.
type ChartWriter interface {
	WriteChart(report *Report, w io.Writer) error

	// Name returns the chart format (html, png, svg).
	Name() string
}

// FormatOptions controls formatter behavior.
type FormatOptions struct {
	// Verbose adds statistics and the significant change log.
	Verbose bool

	// Quiet enables minimal summary-only output.
	Quiet bool
}
