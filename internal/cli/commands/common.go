package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ccollicutt/layerdwell/pkg/config"
	"github.com/ccollicutt/layerdwell/pkg/gcode"
	"github.com/ccollicutt/layerdwell/pkg/layers"
	"github.com/ccollicutt/layerdwell/pkg/smoothing"
)

// ExitCode is set by commands to indicate the result
var ExitCode = 0

// GlobalOptions holds the persistent root flags.
type GlobalOptions struct {
	ConfigFile string
	LogLevel   string
}

// SetupLogging applies the --log-level flag to the standard logger.
func (g *GlobalOptions) SetupLogging() error {
	level, err := logrus.ParseLevel(g.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", g.LogLevel, err)
	}
	logrus.SetLevel(level)
	return nil
}

// TuningOptions are the pipeline flags shared by analyze and clean.
type TuningOptions struct {
	Variance float64 // percent
	MaxWait  time.Duration
	Speed    float64 // mm/min
}

func (t *TuningOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&t.Variance, "variance", smoothing.DefaultChangeRatio*100,
		"Allowable percentage drop in time between neighbouring layers")
	cmd.Flags().DurationVar(&t.MaxWait, "max-wait", config.DefaultMaxDwellTime,
		"Maximum pause added to a single layer")
	cmd.Flags().Float64Var(&t.Speed, "speed", layers.DefaultTravelSpeed,
		"Assumed XY travel speed in mm/min")
}

// apply copies explicitly set flags over the loaded configuration, so flag
// defaults never mask values from the config file.
func (t *TuningOptions) apply(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("variance") {
		cfg.Smoothing.ChangeRatio = t.Variance / 100
	}
	if cmd.Flags().Changed("max-wait") {
		cfg.Smoothing.MaxDwellTime = t.MaxWait
	}
	if cmd.Flags().Changed("speed") {
		cfg.TravelSpeed = t.Speed
	}
}

// loadConfig loads the --config file (or defaults), applies overrides and
// validates the result.
func loadConfig(ctx context.Context, g *GlobalOptions, overrides ...func(*config.Config)) (*config.Config, error) {
	cfg, err := config.Load(ctx, g.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if len(overrides) == 0 {
		return cfg, nil
	}
	for _, o := range overrides {
		o(cfg)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	return cfg, nil
}

// readGCode reads an input file after checking it exists.
func readGCode(ctx context.Context, path string) ([]string, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("gcode file not found: %s", path)
	}
	lines, err := gcode.ReadFile(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("reading gcode: %w", err)
	}
	return lines, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
