package commands

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ccollicutt/layerdwell/pkg/analyzer"
	"github.com/ccollicutt/layerdwell/pkg/config"
	"github.com/ccollicutt/layerdwell/pkg/dwell"
	"github.com/ccollicutt/layerdwell/pkg/gcode"
	"github.com/ccollicutt/layerdwell/pkg/output"
)

// CleanOptions holds command-line options for the clean command.
type CleanOptions struct {
	OutputFile         string
	Retract            bool
	RetractionDistance float64
	Segment            time.Duration
	Verbose            bool

	Tuning TuningOptions
}

// NewCleanCommand creates the clean command.
func NewCleanCommand(g *GlobalOptions) *cobra.Command {
	opts := &CleanOptions{}

	cmd := &cobra.Command{
		Use:   "clean <gcode-file>",
		Short: "Insert pauses into layers that print too fast",
		Long: `Write a copy of the G-code with a pause block after the marker of
every layer that finishes faster than its smoothed target time.

Each pause block switches to relative moves, lifts and shifts the nozzle
away from the part (optionally retracting filament), dwells with G4 in
segments, then returns and restores absolute modes.

Example:
  layerdwell clean part.gcode --output-file part-cooled.gcode
  layerdwell clean part.gcode -f out.gcode --retract --retraction-distance 4`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClean(cmd, args, g, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.OutputFile, "output-file", "f", "", "Path to write the updated G-code (required)")
	cmd.Flags().BoolVar(&opts.Retract, "retract", false, "Retract filament before each pause")
	cmd.Flags().Float64Var(&opts.RetractionDistance, "retraction-distance", dwell.DefaultRetractionLength, "Retraction distance in mm")
	cmd.Flags().DurationVar(&opts.Segment, "segment", dwell.DefaultSegmentLength, "Longest single G4 pause")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Print the layer report before saving")
	opts.Tuning.addFlags(cmd)

	return cmd
}

func runClean(cmd *cobra.Command, args []string, g *GlobalOptions, opts *CleanOptions) error {
	input := args[0]
	ctx := commandContext(cmd)

	if opts.OutputFile == "" {
		return errors.New("output file path is required for clean mode (use --output-file)")
	}
	if filepath.Clean(opts.OutputFile) == filepath.Clean(input) {
		return fmt.Errorf("output file %s would overwrite the input", opts.OutputFile)
	}

	cfg, err := loadConfig(ctx, g, func(cfg *config.Config) {
		opts.Tuning.apply(cmd, cfg)
		opts.applyDwell(cmd, cfg)
	})
	if err != nil {
		return err
	}

	lines, err := readGCode(ctx, input)
	if err != nil {
		return err
	}

	a, err := analyzer.NewAnalyzer(cfg, analyzer.WithLogger(logrus.WithField("input", input)))
	if err != nil {
		return fmt.Errorf("creating analyzer: %w", err)
	}

	result, err := a.Clean(ctx, lines)
	if err != nil {
		return fmt.Errorf("clean failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if opts.Verbose {
		report := output.NewCleanReport(result, input, g.ConfigFile)
		if err := output.NewTextFormatter(output.FormatOptions{Verbose: true}).Format(ctx, report, out); err != nil {
			return fmt.Errorf("formatting output: %w", err)
		}
		fmt.Fprintln(out)
	}

	if err := gcode.WriteFile(opts.OutputFile, result.Lines); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"output":     opts.OutputFile,
		"insertions": len(result.Insertions),
		"lines":      len(result.Lines),
	}).Info("clean complete")

	fmt.Fprintf(out, "Updated G-code has been saved to %s\n", opts.OutputFile)
	fmt.Fprintf(out, "You can compare the difference in vscode with code --diff %s %s\n", input, opts.OutputFile)
	return nil
}

func (o *CleanOptions) applyDwell(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("retract") {
		cfg.Dwell.Retract = o.Retract
	}
	if cmd.Flags().Changed("retraction-distance") {
		cfg.Dwell.RetractionLength = o.RetractionDistance
	}
	if cmd.Flags().Changed("segment") {
		cfg.Dwell.SegmentLength = o.Segment
	}
}
