package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ccollicutt/layerdwell/pkg/analyzer"
	"github.com/ccollicutt/layerdwell/pkg/config"
	"github.com/ccollicutt/layerdwell/pkg/output"
	"github.com/ccollicutt/layerdwell/pkg/webhook"
)

// AnalyzeOptions holds command-line options for the analyze command.
type AnalyzeOptions struct {
	Output  string
	Verbose bool
	Quiet   bool
	Chart   string

	Tuning TuningOptions

	// Webhook options
	WebhookURL     string
	WebhookToken   string
	WebhookTrigger string
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand(g *GlobalOptions) *cobra.Command {
	opts := &AnalyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze <gcode-file>",
		Short: "Report layers that print too fast",
		Long: `Estimate the print time of every layer and report the pause each
layer needs so that no layer is much faster than its neighbours.

The file is not modified. Use "layerdwell clean" to insert the pauses.

Exit codes:
  0 - No layer needs a pause
  1 - At least one layer needs a pause
  2 - Configuration or runtime error`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args, g, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show statistics and significant layer time changes")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Summary only, no table")
	cmd.Flags().StringVar(&opts.Chart, "chart", "", "Write a chart of layer times (.html, .png or .svg)")
	opts.Tuning.addFlags(cmd)

	// Webhook flags
	cmd.Flags().StringVar(&opts.WebhookURL, "webhook-url", "", "Webhook endpoint URL")
	cmd.Flags().StringVar(&opts.WebhookToken, "webhook-token", "", "Bearer token for webhook auth")
	cmd.Flags().StringVar(&opts.WebhookTrigger, "webhook-trigger", "on_issues", "When to fire webhook (on_issues|always|never)")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string, g *GlobalOptions, opts *AnalyzeOptions) error {
	path := args[0]
	ctx := commandContext(cmd)

	formatter, ok := output.NewFormatter(opts.Output, output.FormatOptions{
		Verbose: opts.Verbose,
		Quiet:   opts.Quiet,
	})
	if !ok {
		return fmt.Errorf("unknown output format %q (use text or json)", opts.Output)
	}

	var chart output.ChartWriter
	if opts.Chart != "" {
		var err error
		if chart, err = output.NewChartWriter(opts.Chart); err != nil {
			return err
		}
	}

	cfg, err := loadConfig(ctx, g, func(cfg *config.Config) {
		opts.Tuning.apply(cmd, cfg)
		cfg.Webhooks = collectWebhooks(cfg, opts)
	})
	if err != nil {
		return err
	}

	lines, err := readGCode(ctx, path)
	if err != nil {
		return err
	}

	a, err := analyzer.NewAnalyzer(cfg, analyzer.WithLogger(logrus.WithField("input", path)))
	if err != nil {
		return fmt.Errorf("creating analyzer: %w", err)
	}

	result, err := a.Analyze(ctx, lines)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	report := output.NewReport(result, path, g.ConfigFile)

	if err := formatter.Format(ctx, report, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	if chart != nil {
		if err := writeChart(chart, report, opts.Chart); err != nil {
			return err
		}
	}

	// Webhook failures are logged but don't fail the analysis.
	sendWebhooks(ctx, cfg, report)

	if report.HasIssues() {
		ExitCode = 1
	}

	return nil
}

func writeChart(chart output.ChartWriter, report *output.Report, path string) error {
	f, err := os.Create(path) // #nosec G304 -- user-provided output path is expected
	if err != nil {
		return fmt.Errorf("creating chart file: %w", err)
	}
	if err := chart.WriteChart(report, f); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing %s chart: %w", chart.Name(), err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing chart file: %w", err)
	}
	logrus.WithFields(logrus.Fields{"path": path, "format": chart.Name()}).Info("chart written")
	return nil
}

// sendWebhooks sends the report to every configured webhook.
func sendWebhooks(ctx context.Context, cfg *config.Config, report *output.Report) []webhook.Delivery {
	if len(cfg.Webhooks) == 0 {
		return nil
	}
	return webhook.NewClient().Dispatch(ctx, cfg.Webhooks, report)
}

// collectWebhooks merges config file webhooks with the CLI webhook so both
// are validated together.
func collectWebhooks(cfg *config.Config, opts *AnalyzeOptions) []config.WebhookConfig {
	webhooks := make([]config.WebhookConfig, 0, len(cfg.Webhooks)+1)
	webhooks = append(webhooks, cfg.Webhooks...)

	if opts.WebhookURL != "" {
		trigger := config.WebhookTrigger(opts.WebhookTrigger)
		if trigger == "" {
			trigger = config.WebhookTriggerOnIssues
		}

		webhooks = append(webhooks, config.WebhookConfig{
			Name:    "cli",
			URL:     opts.WebhookURL,
			Token:   opts.WebhookToken,
			Trigger: trigger,
			Timeout: config.DefaultWebhookTimeout,
		})
	}

	return webhooks
}
