package config

import (
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ccollicutt/layerdwell/pkg/dwell"
	"github.com/ccollicutt/layerdwell/pkg/gcode"
	"github.com/ccollicutt/layerdwell/pkg/layers"
	"github.com/ccollicutt/layerdwell/pkg/smoothing"
)

// Default values for configuration.
const (
	DefaultWebhookTimeout  = 10 * time.Second
	DefaultMaxDwellTime    = time.Duration(smoothing.DefaultMaxDwellTime) * time.Second
	DefaultDuplicateLayers = string(layers.DuplicateContinue)
)

// Environment variable names.
const (
	EnvTravelSpeed = "LAYERDWELL_TRAVEL_SPEED"
	EnvLayerMarker = "LAYERDWELL_LAYER_MARKER"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	d := dwell.DefaultSettings()
	return &Config{
		LayerMarker:     gcode.DefaultMarkerPattern,
		DuplicateLayers: DefaultDuplicateLayers,
		TravelSpeed:     layers.DefaultTravelSpeed,
		Smoothing: SmoothingConfig{
			ChangeRatio:  smoothing.DefaultChangeRatio,
			MaxDwellTime: DefaultMaxDwellTime,
		},
		Dwell: DwellConfig{
			SegmentLength:    d.SegmentLength,
			Retract:          d.Retract,
			RetractionLength: d.RetractionLength,
			RetractionSpeed:  d.RetractionSpeed,
			PrimeOffset:      d.PrimeOffset,
			LiftZ:            d.LiftZ,
			ShiftY:           d.ShiftY,
		},
	}
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
func (c *Config) applyEnvironmentOverrides() {
	if marker := os.Getenv(EnvLayerMarker); marker != "" {
		c.LayerMarker = marker
	}
	if raw := os.Getenv(EnvTravelSpeed); raw != "" {
		speed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			logrus.WithField("value", raw).Warnf("ignoring %s: not a number", EnvTravelSpeed)
			return
		}
		c.TravelSpeed = speed
	}
}

// DwellSettings converts the dwell section into synthesizer settings.
func (c *Config) DwellSettings() dwell.Settings {
	return dwell.Settings{
		SegmentLength:    c.Dwell.SegmentLength,
		Retract:          c.Dwell.Retract,
		RetractionLength: c.Dwell.RetractionLength,
		RetractionSpeed:  c.Dwell.RetractionSpeed,
		PrimeOffset:      c.Dwell.PrimeOffset,
		LiftZ:            c.Dwell.LiftZ,
		ShiftY:           c.Dwell.ShiftY,
	}
}
