// Package config provides configuration loading and validation for layerdwell.
package config

import (
	"time"

	"github.com/ccollicutt/layerdwell/pkg/gcode"
)

// Config is the root configuration structure loaded from YAML.
type Config struct {
	// LayerMarker is a regex with one capture group holding the layer id.
	LayerMarker string `yaml:"layer_marker"`

	// DuplicateLayers selects what happens when a marker repeats a layer id:
	// "continue" reopens the layer, "error" aborts.
	DuplicateLayers string `yaml:"duplicate_layers"`

	// TravelSpeed is the assumed constant XY speed in mm/min.
	TravelSpeed float64 `yaml:"travel_speed"`

	Smoothing SmoothingConfig `yaml:"smoothing"`
	Dwell     DwellConfig     `yaml:"dwell"`
	Webhooks  []WebhookConfig `yaml:"webhooks,omitempty"`

	// compiledMarker is populated during validation.
	compiledMarker *gcode.MarkerMatcher
}

// Matcher returns the compiled layer marker matcher.
func (c *Config) Matcher() *gcode.MarkerMatcher {
	return c.compiledMarker
}

// SmoothingConfig controls target time smoothing.
type SmoothingConfig struct {
	// ChangeRatio is the largest allowed drop between neighbouring layers,
	// as a fraction (0.2 = 20%).
	ChangeRatio float64 `yaml:"change_ratio"`

	// MaxDwellTime caps the pause added to a single layer.
	MaxDwellTime time.Duration `yaml:"max_dwell_time"`
}

// DwellConfig controls the inserted pause block.
type DwellConfig struct {
	SegmentLength    time.Duration `yaml:"segment_length"`
	Retract          bool          `yaml:"retract"`
	RetractionLength float64       `yaml:"retraction_length"`
	RetractionSpeed  float64       `yaml:"retraction_speed"` // mm/s
	PrimeOffset      float64       `yaml:"prime_offset"`
	LiftZ            float64       `yaml:"lift_z"`
	ShiftY           float64       `yaml:"shift_y"`
}

// WebhookTrigger determines when a webhook fires.
type WebhookTrigger string

const (
	// WebhookTriggerOnIssues fires only when layers need a pause (default).
	WebhookTriggerOnIssues WebhookTrigger = "on_issues"
	// WebhookTriggerAlways fires after every analysis.
	WebhookTriggerAlways WebhookTrigger = "always"
	// WebhookTriggerNever disables the webhook.
	WebhookTriggerNever WebhookTrigger = "never"
)

// WebhookConfig defines a webhook endpoint for sending analysis results.
type WebhookConfig struct {
	// Name is an optional identifier for the webhook.
	Name string `yaml:"name,omitempty"`

	// URL is the webhook endpoint (required).
	URL string `yaml:"url"`

	// Token is an optional bearer token for authentication.
	Token string `yaml:"token,omitempty"`

	// Trigger determines when the webhook fires.
	// Defaults to "on_issues" if not specified.
	Trigger WebhookTrigger `yaml:"trigger,omitempty"`

	// Timeout is the HTTP request timeout.
	// Defaults to 10s if not specified.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}
