package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/layerdwell/pkg/config"
	"github.com/ccollicutt/layerdwell/pkg/detector"
)

// DetectOptions holds command-line options for the detect command.
type DetectOptions struct {
	Output      string
	SampleSize  int
	ShowAll     bool
	WriteConfig string
}

// NewDetectCommand creates the detect command.
func NewDetectCommand() *cobra.Command {
	opts := &DetectOptions{}

	cmd := &cobra.Command{
		Use:   "detect <gcode-file>",
		Short: "Detect the layer marker dialect of a G-code file",
		Long: `Sample a G-code file and identify which slicer layer marker it uses.

Reports the detected dialect with a ready-to-use layer_marker setting.
Optionally generates a starter config file with --write-config.

Supports:
  - Cura, ideaMaker and Creality Print (;LAYER:<n>)
  - Bambu Studio and OrcaSlicer (; layer num/total_layer_count: <n>/<total>)
  - Simplify3D (; layer <n>, Z = <z>)

Example:
  layerdwell detect part.gcode
  layerdwell detect --sample 500000 large.gcode
  layerdwell detect -w layerdwell.yaml part.gcode`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetect(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().IntVarP(&opts.SampleSize, "sample", "n", detector.DefaultSampleSize, "Number of lines to sample")
	cmd.Flags().BoolVar(&opts.ShowAll, "all", false, "Show all detected dialects, not just the best match")
	cmd.Flags().StringVarP(&opts.WriteConfig, "write-config", "w", "", "Write starter config to file (will not overwrite)")

	return cmd
}

func runDetect(cmd *cobra.Command, args []string, opts *DetectOptions) error {
	path := args[0]
	ctx := commandContext(cmd)
	out := cmd.OutOrStdout()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("gcode file not found: %s", path)
	}

	d := detector.New(detector.WithSampleSize(opts.SampleSize))

	result, err := d.DetectFromFile(ctx, path)
	if err != nil {
		return fmt.Errorf("detection failed: %w", err)
	}

	if opts.WriteConfig != "" {
		if err := writeStarterConfig(out, result, path, opts.WriteConfig); err != nil {
			return err
		}
	}

	switch opts.Output {
	case "json":
		return outputDetectJSON(out, result, path, opts)
	default:
		return outputDetectText(out, result, path, opts)
	}
}

func outputDetectText(w io.Writer, result *detector.DetectionResult, path string, opts *DetectOptions) error {
	fmt.Fprintln(w, "=== Layer Marker Detection ===")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "File: %s\n", path)
	fmt.Fprintf(w, "Lines sampled: %d", result.SampledLines)
	if result.Truncated {
		fmt.Fprint(w, " (file is longer, use --sample to read more)")
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Motion lines: %d\n", result.MotionLines)
	fmt.Fprintln(w)

	if !result.HasMatch() {
		fmt.Fprintln(w, "No layer markers detected.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Tip: Enable layer comments in your slicer, or set layer_marker to a")
		fmt.Fprintln(w, "regex with one capture group holding the layer number.")
		return nil
	}

	best := result.BestMatch()
	fmt.Fprintf(w, "Detected Dialect: %s\n", best.Format.Name)
	fmt.Fprintf(w, "Slicers: %s\n", strings.Join(best.Format.Slicers, ", "))
	fmt.Fprintf(w, "Layers: %d (ids %d..%d)\n", best.Layers(), best.FirstLayer, best.LastLayer)
	fmt.Fprintf(w, "Confidence: %.1f%% (%d markers, %d malformed)\n",
		best.Confidence()*100, best.MatchCount, best.Malformed)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Sample match:\n  %s\n", best.SampleLine)
	fmt.Fprintln(w)

	if best.Duplicates > 0 {
		fmt.Fprintf(w, "WARNING: %d marker(s) repeat an earlier layer id.\n", best.Duplicates)
		fmt.Fprintln(w, "Keep duplicate_layers: continue to merge them into one layer.")
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "--- Configuration snippet (copy to your config file) ---")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "layer_marker: '%s'\n", best.Format.PatternStr)
	fmt.Fprintln(w)

	if opts.ShowAll && len(result.Matches) > 1 {
		fmt.Fprintln(w, "--- Alternative dialects detected ---")
		for i, m := range result.Matches[1:] {
			fmt.Fprintf(w, "%d. %s (%d markers)\n", i+2, m.Format.Name, m.MatchCount)
			fmt.Fprintf(w, "   layer_marker: '%s'\n", m.Format.PatternStr)
		}
		fmt.Fprintln(w)
	}

	return nil
}

// JSONMatch represents a dialect match in JSON output.
type JSONMatch struct {
	Name       string   `json:"name"`
	Slicers    []string `json:"slicers"`
	Pattern    string   `json:"pattern"`
	Confidence float64  `json:"confidence"`
	MatchCount int      `json:"match_count"`
	Malformed  int      `json:"malformed,omitempty"`
	Duplicates int      `json:"duplicates,omitempty"`
	FirstLayer int      `json:"first_layer"`
	LastLayer  int      `json:"last_layer"`
	SampleLine string   `json:"sample_line"`
}

// JSONOutput represents the full JSON output.
type JSONOutput struct {
	File         string      `json:"file"`
	Matches      []JSONMatch `json:"matches"`
	SampledLines int         `json:"sampled_lines"`
	MotionLines  int         `json:"motion_lines"`
	Truncated    bool        `json:"truncated,omitempty"`
}

func outputDetectJSON(w io.Writer, result *detector.DetectionResult, path string, opts *DetectOptions) error {
	output := JSONOutput{
		File:         path,
		SampledLines: result.SampledLines,
		MotionLines:  result.MotionLines,
		Truncated:    result.Truncated,
		Matches:      make([]JSONMatch, 0),
	}

	matches := result.Matches
	if !opts.ShowAll && len(matches) > 1 {
		matches = matches[:1]
	}

	for _, m := range matches {
		output.Matches = append(output.Matches, JSONMatch{
			Name:       m.Format.Name,
			Slicers:    m.Format.Slicers,
			Pattern:    m.Format.PatternStr,
			Confidence: m.Confidence(),
			MatchCount: m.MatchCount,
			Malformed:  m.Malformed,
			Duplicates: m.Duplicates,
			FirstLayer: m.FirstLayer,
			LastLayer:  m.LastLayer,
			SampleLine: m.SampleLine,
		})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

// writeStarterConfig generates a starter config file with the detected dialect.
func writeStarterConfig(w io.Writer, result *detector.DetectionResult, path, configPath string) error {
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists: %s (will not overwrite)", configPath)
	}

	if !result.HasMatch() {
		return fmt.Errorf("cannot generate config: no layer markers detected")
	}

	data, err := generateStarterConfig(path, result.BestMatch())
	if err != nil {
		return err
	}

	// #nosec G306 - config file doesn't need restrictive permissions
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintf(w, "Wrote starter config to: %s\n\n", configPath)
	return nil
}

// generateStarterConfig renders the default configuration with the detected
// marker under a descriptive header.
func generateStarterConfig(path string, match *detector.FormatMatch) ([]byte, error) {
	cfg := config.DefaultConfig()
	cfg.LayerMarker = match.Format.PatternStr

	body, err := config.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("rendering config: %w", err)
	}

	header := fmt.Sprintf(`# layerdwell configuration
# Generated by: layerdwell detect %s
# Detected dialect: %s (%d layers)
#
# Webhooks are optional:
# webhooks:
#   - name: ops
#     url: https://example.com/hook
#     token: ${LAYERDWELL_TOKEN}
#     trigger: on_issues

`, path, match.Format.Name, match.Layers())

	return append([]byte(header), body...), nil
}
