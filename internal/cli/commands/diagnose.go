package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/layerdwell/pkg/config"
	"github.com/ccollicutt/layerdwell/pkg/detector"
	"github.com/ccollicutt/layerdwell/pkg/gcode"
	"github.com/ccollicutt/layerdwell/pkg/layers"
)

// DiagnoseOptions holds options for the diagnose command
type DiagnoseOptions struct {
	Verbose bool
}

// DiagnosticResult represents the result of a single diagnostic check
type DiagnosticResult struct {
	Check    string
	Status   string // "ok", "warning", "error"
	Message  string
	Details  []string
	Suggests []string
}

// NewDiagnoseCommand creates the diagnose command
func NewDiagnoseCommand(g *GlobalOptions) *cobra.Command {
	opts := &DiagnoseOptions{}

	cmd := &cobra.Command{
		Use:   "diagnose <gcode-file>",
		Short: "Diagnose why a G-code file cannot be analyzed",
		Long: `Diagnose common problems before running analyze or clean.

This command checks:
- The G-code file exists and is readable
- The configuration (--config) parses and validates
- The configured layer marker matches the file
- Every layer contains motion commands
- Webhook configuration (and connectivity with -v)

Example:
  layerdwell diagnose part.gcode
  layerdwell --config layerdwell.yaml diagnose -v part.gcode`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runDiagnose(commandContext(cmd), cmd.OutOrStdout(), args[0], g, opts)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show detailed diagnostic output")

	return cmd
}

func runDiagnose(ctx context.Context, w io.Writer, path string, g *GlobalOptions, opts *DiagnoseOptions) []DiagnosticResult {
	results := []DiagnosticResult{}
	done := func() []DiagnosticResult {
		printDiagnostics(w, results, opts)
		return results
	}

	result := checkGCodeFile(path)
	results = append(results, result)
	if result.Status == "error" {
		return done()
	}

	cfg, result := checkConfig(ctx, g.ConfigFile)
	results = append(results, result)
	if result.Status == "error" {
		return done()
	}

	lines, err := gcode.ReadFile(ctx, path)
	if err != nil {
		results = append(results, DiagnosticResult{
			Check:   "G-code Read",
			Status:  "error",
			Message: err.Error(),
		})
		return done()
	}

	result = checkMarkers(cfg, lines)
	results = append(results, result)
	if result.Status == "error" {
		return done()
	}

	results = append(results, checkLayers(cfg, lines, opts))
	results = append(results, checkWebhooks(cfg, opts)...)

	return done()
}

func checkGCodeFile(path string) DiagnosticResult {
	result := DiagnosticResult{
		Check: "G-code File",
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		result.Status = "error"
		result.Message = fmt.Sprintf("G-code file not found: %s", path)
		result.Suggests = []string{"Check the file path is correct"}
		return result
	}
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Cannot access G-code file: %v", err)
		result.Suggests = []string{"Check file permissions"}
		return result
	}
	if info.IsDir() {
		result.Status = "error"
		result.Message = "Path is a directory, not a file"
		return result
	}
	if info.Size() == 0 {
		result.Status = "error"
		result.Message = "G-code file is empty"
		result.Suggests = []string{"Re-export the file from your slicer"}
		return result
	}

	result.Status = "ok"
	result.Message = fmt.Sprintf("Found: %s (%d bytes)", path, info.Size())
	return result
}

func checkConfig(ctx context.Context, path string) (*config.Config, DiagnosticResult) {
	result := DiagnosticResult{
		Check: "Configuration",
	}

	cfg, err := config.Load(ctx, path)
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Failed to load config: %v", err)
		if strings.Contains(err.Error(), "yaml") {
			result.Suggests = []string{
				"Check YAML syntax - ensure proper indentation (use spaces, not tabs)",
			}
		}
		result.Suggests = append(result.Suggests,
			"Use 'layerdwell detect <gcode-file> --write-config layerdwell.yaml' to generate a starter config")
		return nil, result
	}

	result.Status = "ok"
	if path == "" {
		result.Message = "No --config given, using defaults"
	} else {
		result.Message = fmt.Sprintf("Loaded %s", path)
	}
	result.Details = []string{
		fmt.Sprintf("Layer marker: %s", cfg.LayerMarker),
		fmt.Sprintf("Travel speed: %g mm/min", cfg.TravelSpeed),
	}
	return cfg, result
}

func checkMarkers(cfg *config.Config, lines []string) DiagnosticResult {
	result := DiagnosticResult{
		Check: "Layer Markers",
	}

	matcher := cfg.Matcher()
	count := 0
	var malformed []string
	for i, line := range lines {
		_, ok, err := matcher.Match(line)
		if !ok {
			continue
		}
		if err != nil {
			malformed = append(malformed, fmt.Sprintf("line %d: %s", i+1, truncate(strings.TrimSpace(line), 60)))
			continue
		}
		count++
	}

	switch {
	case len(malformed) > 0:
		result.Status = "error"
		result.Message = fmt.Sprintf("%d marker(s) without an integer layer id", len(malformed))
		result.Details = malformed
		result.Suggests = []string{"Adjust layer_marker so its capture group holds only the layer number"}
	case count == 0:
		result.Status = "error"
		result.Message = fmt.Sprintf("No lines match layer_marker %s", cfg.LayerMarker)
		if best := detector.New().DetectFromLines(lines).BestMatch(); best != nil {
			result.Suggests = []string{
				fmt.Sprintf("File looks like %s; set layer_marker: '%s'", best.Format.Name, best.Format.PatternStr),
			}
		} else {
			result.Suggests = []string{"Enable layer comments in your slicer"}
		}
	default:
		result.Status = "ok"
		result.Message = fmt.Sprintf("%d marker(s) found", count)
	}
	return result
}

func checkLayers(cfg *config.Config, lines []string, opts *DiagnoseOptions) DiagnosticResult {
	result := DiagnosticResult{
		Check: "Layers",
	}

	extracted, err := layers.Extract(lines, cfg.Matcher(),
		layers.WithDuplicatePolicy(layers.DuplicatePolicy(cfg.DuplicateLayers)))
	if err != nil {
		result.Status = "error"
		result.Message = err.Error()
		if errors.Is(err, layers.ErrDuplicateLayer) {
			result.Suggests = []string{"Set duplicate_layers: continue to merge repeated markers"}
		}
		return result
	}

	var empty []string
	for _, l := range extracted {
		if len(l.Commands) == 0 {
			empty = append(empty, fmt.Sprintf("layer %d has no G0/G1 moves", l.ID))
		}
	}

	if len(empty) > 0 {
		result.Status = "warning"
		result.Message = fmt.Sprintf("%d of %d layer(s) have no moves and will estimate 0s", len(empty), len(extracted))
		result.Details = empty
		return result
	}

	result.Status = "ok"
	result.Message = fmt.Sprintf("%d layer(s), all with moves", len(extracted))
	if opts.Verbose && len(extracted) > 0 {
		result.Details = []string{
			fmt.Sprintf("First layer: %d", extracted[0].ID),
			fmt.Sprintf("Last layer: %d", extracted[len(extracted)-1].ID),
		}
	}
	return result
}

func printDiagnostics(w io.Writer, results []DiagnosticResult, opts *DiagnoseOptions) {
	fmt.Fprintln(w, "=== layerdwell Diagnostics ===")
	fmt.Fprintln(w)

	okCount := 0
	warnCount := 0
	errCount := 0

	for _, r := range results {
		var icon string
		switch r.Status {
		case "ok":
			icon = "PASS"
			okCount++
		case "warning":
			icon = "WARN"
			warnCount++
		case "error":
			icon = "FAIL"
			errCount++
		}

		fmt.Fprintf(w, "[%s] %s\n", icon, r.Check)
		fmt.Fprintf(w, "    %s\n", r.Message)

		if opts.Verbose || r.Status != "ok" {
			for _, d := range r.Details {
				fmt.Fprintf(w, "      - %s\n", d)
			}
		}

		for _, s := range r.Suggests {
			fmt.Fprintf(w, "      Hint: %s\n", s)
		}

		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "---")
	fmt.Fprintf(w, "Summary: %d passed, %d warnings, %d errors\n", okCount, warnCount, errCount)

	if errCount > 0 {
		fmt.Fprintln(w, "\nFix the errors above before running analysis.")
	} else if warnCount > 0 {
		fmt.Fprintln(w, "\nFile is usable but has warnings.")
	} else {
		fmt.Fprintln(w, "\nReady to analyze!")
	}
}

func checkWebhooks(cfg *config.Config, opts *DiagnoseOptions) []DiagnosticResult {
	results := []DiagnosticResult{}

	if len(cfg.Webhooks) == 0 {
		if opts.Verbose {
			results = append(results, DiagnosticResult{
				Check:   "Webhooks",
				Status:  "ok",
				Message: "No webhooks configured (optional)",
			})
		}
		return results
	}

	// URLs and triggers were validated when the config loaded.
	for _, wh := range cfg.Webhooks {
		name := wh.Name
		if name == "" {
			name = wh.URL
		}

		result := DiagnosticResult{
			Check:   fmt.Sprintf("Webhook: %s", name),
			Status:  "ok",
			Message: fmt.Sprintf("Trigger: %s", wh.Trigger),
		}
		if wh.Token == "" && strings.HasPrefix(wh.URL, "https://") {
			result.Details = append(result.Details, "No token configured")
		}
		if opts.Verbose {
			result.Details = append(result.Details,
				fmt.Sprintf("URL: %s", wh.URL),
				fmt.Sprintf("Timeout: %s", wh.Timeout))
		}
		results = append(results, result)

		if opts.Verbose {
			conn := checkWebhookConnectivity(wh)
			conn.Check = fmt.Sprintf("Webhook Connectivity: %s", name)
			results = append(results, conn)
		}
	}

	return results
}

func checkWebhookConnectivity(wh config.WebhookConfig) DiagnosticResult {
	result := DiagnosticResult{}

	// A HEAD request is enough to check the endpoint is reachable
	client := &http.Client{
		Timeout: 5 * time.Second,
	}

	req, err := http.NewRequest(http.MethodHead, wh.URL, nil)
	if err != nil {
		result.Status = "warning"
		result.Message = fmt.Sprintf("Cannot create request: %v", err)
		return result
	}

	if wh.Token != "" {
		req.Header.Set("Authorization", "Bearer "+wh.Token)
	}

	resp, err := client.Do(req)
	if err != nil {
		result.Status = "warning"
		result.Message = fmt.Sprintf("Cannot connect: %v", err)
		result.Suggests = []string{
			"Check if the webhook URL is correct",
			"Verify network connectivity",
		}
		return result
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 400 {
		result.Status = "ok"
		result.Message = fmt.Sprintf("Reachable (status %d)", resp.StatusCode)
	} else {
		result.Status = "warning"
		result.Message = fmt.Sprintf("Reachable but returned status %d", resp.StatusCode)
		result.Suggests = []string{
			"The endpoint may require POST method (will work during actual webhook send)",
			"Check authentication if using a token",
		}
	}

	return result
}

// truncate shortens s to at most maxLen runes.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
