package output

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// TextFormatter formats reports as human-readable text.
type TextFormatter struct {
	opts FormatOptions
}

// NewTextFormatter creates a new text formatter with the given options.
func NewTextFormatter(opts FormatOptions) *TextFormatter {
	return &TextFormatter{opts: opts}
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "text"
}

// Format renders the report as text.
func (f *TextFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	if f.opts.Quiet {
		return f.formatQuiet(report, w)
	}
	return f.formatFull(report, w)
}

func (f *TextFormatter) formatQuiet(report *Report, w io.Writer) error {
	_, err := fmt.Fprintf(w, "layerdwell: %d layers, %d need a pause, %.2fs total pause\n",
		report.Summary.Layers,
		report.Summary.LayersNeedingDwell,
		report.Summary.TotalDwell)
	return err
}

func (f *TextFormatter) formatFull(report *Report, w io.Writer) error {
	var b strings.Builder

	b.WriteString("=== layerdwell Analysis Report ===\n")
	if report.Metadata.Input != "" {
		fmt.Fprintf(&b, "Input: %s\n", report.Metadata.Input)
	}
	b.WriteString("\n")

	if len(report.Layers) == 0 {
		b.WriteString("No layers found\n\n")
	} else {
		writeTable(&b, report.Layers)
		b.WriteString("\n")
	}

	if f.opts.Verbose && len(report.Changes) > 0 {
		for _, c := range report.Changes {
			fmt.Fprintf(&b, "Significant change at layer %d: %.2f%%\n", c.Layer, c.Ratio*100)
		}
		b.WriteString("\n")
	}

	if len(report.Insertions) > 0 {
		fmt.Fprintf(&b, "Pause blocks inserted: %d\n", len(report.Insertions))
		if f.opts.Verbose {
			for _, in := range report.Insertions {
				fmt.Fprintf(&b, "  - layer %d after line %d: %.2fs (%d lines)\n",
					in.Layer, in.Line, in.Seconds, in.Lines)
			}
		}
		b.WriteString("\n")
	}

	s := report.Summary
	b.WriteString("---\n")
	fmt.Fprintf(&b, "Summary: %d layers, %d need a pause, %.2fs total pause\n",
		s.Layers, s.LayersNeedingDwell, s.TotalDwell)

	if f.opts.Verbose {
		fmt.Fprintf(&b, "Estimated time: %.2fs original, %.2fs updated\n", s.OriginalTime, s.UpdatedTime)
		fmt.Fprintf(&b, "Layer time: mean %.2fs, stddev %.2fs, min %.2fs, max %.2fs\n",
			s.MeanLayerTime, s.StdDevLayerTime, s.MinLayerTime, s.MaxLayerTime)
		fmt.Fprintf(&b, "Lines processed: %d\n", s.LinesProcessed)
		fmt.Fprintf(&b, "Duration: %s\n", report.Metadata.Duration.Round(1e6))
		fmt.Fprintf(&b, "Run ID: %s\n", report.Metadata.RunID)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// writeTable prints the fixed-width layer comparison table.
func writeTable(b *strings.Builder, rows []LayerRow) {
	fmt.Fprintf(b, "%-10s %-15s %-15s %-15s\n", "Layer", "Original Value", "Updated Value", "Seconds to Add")
	b.WriteString(strings.Repeat("-", 60) + "\n")
	for _, r := range rows {
		fmt.Fprintf(b, "%-10s %-15s %-15s %-15s\n",
			strconv.Itoa(r.Layer),
			fmt.Sprintf("%.2f", r.Original),
			fmt.Sprintf("%.2f", r.Updated),
			fmt.Sprintf("%.2f", r.SecondsToAdd))
	}
}
