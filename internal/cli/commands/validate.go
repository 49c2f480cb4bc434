package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/layerdwell/pkg/config"
)

// ValidateOptions holds command-line options for the validate command.
type ValidateOptions struct {
	Print bool
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(g *GlobalOptions) *cobra.Command {
	opts := &ValidateOptions{}

	cmd := &cobra.Command{
		Use:   "validate [config-file]",
		Short: "Validate a configuration file",
		Long: `Validate a layerdwell configuration file without reading any G-code.

The file is taken from the argument, or from --config when no argument
is given.

Checks:
  - YAML syntax
  - Layer marker regex validity (exactly one capture group)
  - Smoothing, travel speed and pause block ranges
  - Webhook URLs and triggers`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, args, g, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Print, "print", "p", false, "Print the effective configuration as YAML")

	return cmd
}

func runValidate(cmd *cobra.Command, args []string, g *GlobalOptions, opts *ValidateOptions) error {
	configPath := g.ConfigFile
	if len(args) == 1 {
		configPath = args[0]
	}
	if configPath == "" {
		return fmt.Errorf("no config file given (pass a path or use --config)")
	}
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Validating %s...\n", configPath)

	cfg, err := config.Load(commandContext(cmd), configPath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Fprintf(out, "\nConfiguration valid!\n")
	fmt.Fprintf(out, "  Layer marker:    %s\n", cfg.LayerMarker)
	fmt.Fprintf(out, "  Duplicates:      %s\n", cfg.DuplicateLayers)
	fmt.Fprintf(out, "  Travel speed:    %g mm/min\n", cfg.TravelSpeed)
	fmt.Fprintf(out, "  Change ratio:    %g%%\n", cfg.Smoothing.ChangeRatio*100)
	fmt.Fprintf(out, "  Max pause:       %s per layer\n", cfg.Smoothing.MaxDwellTime)
	fmt.Fprintf(out, "  Pause segment:   %s\n", cfg.Dwell.SegmentLength)
	if cfg.Dwell.Retract {
		fmt.Fprintf(out, "  Retraction:      %g mm at %g mm/s\n", cfg.Dwell.RetractionLength, cfg.Dwell.RetractionSpeed)
	} else {
		fmt.Fprintf(out, "  Retraction:      off\n")
	}
	fmt.Fprintf(out, "  Webhooks:        %d\n", len(cfg.Webhooks))

	for i, wh := range cfg.Webhooks {
		name := wh.Name
		if name == "" {
			name = wh.URL
		}
		fmt.Fprintf(out, "    %d. %s [%s]\n", i+1, name, wh.Trigger)
	}

	if opts.Print {
		data, err := config.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("rendering config: %w", err)
		}
		fmt.Fprintf(out, "\n%s", data)
	}

	return nil
}
