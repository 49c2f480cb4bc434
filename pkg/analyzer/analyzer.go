// Package analyzer runs the layer time pipeline: extract layers, estimate
// their durations, smooth the targets, and optionally rewrite the stream.
package analyzer

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ccollicutt/layerdwell/pkg/config"
	"github.com/ccollicutt/layerdwell/pkg/dwell"
	"github.com/ccollicutt/layerdwell/pkg/layers"
	"github.com/ccollicutt/layerdwell/pkg/rewrite"
	"github.com/ccollicutt/layerdwell/pkg/smoothing"
)

// Analyzer holds the stages built from one configuration.
type Analyzer struct {
	cfg       *config.Config
	estimator *layers.Estimator
	synth     *dwell.Synthesizer

	log *logrus.Entry
	now func() time.Time
}

// AnalyzerOption configures analyzer behavior.
type AnalyzerOption func(*Analyzer)

// WithLogger sets the logger used by every stage.
func WithLogger(log *logrus.Entry) AnalyzerOption {
	return func(a *Analyzer) {
		if log != nil {
			a.log = log
		}
	}
}

// WithClock overrides the clock used for run timestamps.
func WithClock(now func() time.Time) AnalyzerOption {
	return func(a *Analyzer) {
		if now != nil {
			a.now = now
		}
	}
}

// NewAnalyzer creates an analyzer from configuration. The configuration is
// validated if it has not been already.
func NewAnalyzer(cfg *config.Config, opts ...AnalyzerOption) (*Analyzer, error) {
	if cfg.Matcher() == nil {
		if err := config.Validate(cfg); err != nil {
			return nil, fmt.Errorf("validating config: %w", err)
		}
	}

	a := &Analyzer{
		cfg: cfg,
		log: logrus.NewEntry(logrus.StandardLogger()),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}

	est, err := layers.NewEstimator(cfg.TravelSpeed)
	if err != nil {
		return nil, fmt.Errorf("creating estimator: %w", err)
	}
	a.estimator = est

	synth, err := dwell.NewSynthesizer(cfg.DwellSettings())
	if err != nil {
		return nil, fmt.Errorf("creating pause synthesizer: %w", err)
	}
	a.synth = synth

	return a, nil
}

// Analyze estimates layer times and computes smoothed targets.
func (a *Analyzer) Analyze(ctx context.Context, lines []string) (*AnalysisResult, error) {
	result := &AnalysisResult{
		Metadata: AnalysisMetadata{
			StartTime:      a.now(),
			LinesProcessed: len(lines),
			Settings:       a.settings(),
		},
	}

	extracted, err := layers.Extract(lines, a.cfg.Matcher(),
		layers.WithDuplicatePolicy(layers.DuplicatePolicy(a.cfg.DuplicateLayers)),
		layers.WithLogger(a.log),
	)
	if err != nil {
		return nil, fmt.Errorf("extracting layers: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	actual := a.estimator.Timeline(extracted)
	target, err := smoothing.Smooth(actual, a.cfg.Smoothing.ChangeRatio, a.maxDwell())
	if err != nil {
		return nil, fmt.Errorf("smoothing layer times: %w", err)
	}

	commands := make(map[int]int, len(extracted))
	for _, l := range extracted {
		commands[l.ID] = len(l.Commands)
	}

	result.Actual = actual
	result.Target = target
	result.Changes = smoothing.Changes(actual, a.cfg.Smoothing.ChangeRatio)
	result.Layers = make([]LayerResult, len(actual))
	for i := range actual {
		lr := LayerResult{
			Layer:    actual[i].Layer,
			Commands: commands[actual[i].Layer],
			Actual:   actual[i].Seconds,
			Target:   target[i].Seconds,
		}
		if wait := min(a.maxDwell(), lr.Target-lr.Actual); dwell.Milliseconds(wait) > 0 {
			lr.Dwell = wait
		}
		result.Layers[i] = lr
	}

	result.Metadata.EndTime = a.now()
	a.log.WithFields(logrus.Fields{
		"layers":   len(result.Layers),
		"adjusted": result.LayersNeedingDwell(),
		"changes":  len(result.Changes),
	}).Info("analysis complete")

	return result, nil
}

// Clean analyzes lines and returns them with pause blocks inserted.
func (a *Analyzer) Clean(ctx context.Context, lines []string) (*CleanResult, error) {
	res, err := a.Analyze(ctx, lines)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rw, err := rewrite.Rewrite(lines, res.Actual, res.Target, a.synth, a.maxDwell(), a.cfg.Matcher())
	if err != nil {
		return nil, fmt.Errorf("rewriting stream: %w", err)
	}
	for _, in := range rw.Insertions {
		a.log.WithFields(logrus.Fields{
			"layer": in.Layer,
			"line":  in.Line,
			"dwell": in.Seconds,
		}).Debug("inserted pause block")
	}
	res.Metadata.EndTime = a.now()

	return &CleanResult{
		AnalysisResult: res,
		Lines:          rw.Lines,
		Insertions:     rw.Insertions,
	}, nil
}

func (a *Analyzer) maxDwell() float64 {
	return a.cfg.Smoothing.MaxDwellTime.Seconds()
}

func (a *Analyzer) settings() Settings {
	return Settings{
		LayerMarker:   a.cfg.LayerMarker,
		TravelSpeed:   a.cfg.TravelSpeed,
		ChangeRatio:   a.cfg.Smoothing.ChangeRatio,
		MaxDwellTime:  a.cfg.Smoothing.MaxDwellTime,
		SegmentLength: a.cfg.Dwell.SegmentLength,
		Retract:       a.cfg.Dwell.Retract,
	}
}
