package config

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ccollicutt/layerdwell/pkg/gcode"
	"github.com/ccollicutt/layerdwell/pkg/layers"
)

// Load reads and validates a configuration file. An empty path yields the
// defaults with environment overrides applied.
func Load(_ context.Context, path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path) // #nosec G304 -- user-provided config path is expected
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.applyEnvironmentOverrides()

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Validate checks a configuration for errors and compiles the marker pattern.
func Validate(cfg *Config) error {
	if cfg.LayerMarker == "" {
		return errors.New("layer_marker: pattern is required")
	}
	m, err := gcode.NewMarkerMatcher(cfg.LayerMarker)
	if err != nil {
		return fmt.Errorf("layer_marker: %w", err)
	}
	cfg.compiledMarker = m

	if cfg.DuplicateLayers == "" {
		cfg.DuplicateLayers = DefaultDuplicateLayers
	}
	if !layers.DuplicatePolicy(cfg.DuplicateLayers).Valid() {
		return fmt.Errorf("duplicate_layers: invalid value %q (must be continue or error)", cfg.DuplicateLayers)
	}

	if !(cfg.TravelSpeed > 0) || math.IsInf(cfg.TravelSpeed, 1) {
		return fmt.Errorf("travel_speed: must be a positive mm/min value, got %v", cfg.TravelSpeed)
	}

	if err := validateSmoothing(&cfg.Smoothing); err != nil {
		return fmt.Errorf("smoothing: %w", err)
	}

	if err := validateDwell(&cfg.Dwell); err != nil {
		return fmt.Errorf("dwell: %w", err)
	}

	// Webhooks are optional, but validate if present
	for i := range cfg.Webhooks {
		if err := validateWebhook(&cfg.Webhooks[i]); err != nil {
			name := cfg.Webhooks[i].Name
			if name == "" {
				name = cfg.Webhooks[i].URL
			}
			return fmt.Errorf("webhooks[%d] (%s): %w", i, name, err)
		}
	}

	return nil
}

func validateSmoothing(s *SmoothingConfig) error {
	if !(s.ChangeRatio > 0 && s.ChangeRatio < 1) {
		return fmt.Errorf("change_ratio must be between 0 and 1 (exclusive), got %v", s.ChangeRatio)
	}
	if s.MaxDwellTime < 0 {
		return fmt.Errorf("max_dwell_time must not be negative, got %v", s.MaxDwellTime)
	}
	return nil
}

func validateDwell(d *DwellConfig) error {
	if d.SegmentLength < time.Millisecond {
		return fmt.Errorf("segment_length must be at least 1ms, got %v", d.SegmentLength)
	}
	if d.RetractionSpeed <= 0 {
		return fmt.Errorf("retraction_speed must be positive, got %v", d.RetractionSpeed)
	}
	if d.RetractionLength < 0 {
		return fmt.Errorf("retraction_length must not be negative, got %v", d.RetractionLength)
	}
	if d.PrimeOffset < 0 || d.PrimeOffset > d.RetractionLength {
		return fmt.Errorf("prime_offset must be between 0 and retraction_length (%v), got %v",
			d.RetractionLength, d.PrimeOffset)
	}
	return nil
}

func validateWebhook(wh *WebhookConfig) error {
	if wh.URL == "" {
		return errors.New("url is required")
	}

	// Validate URL format
	u, err := url.Parse(wh.URL)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https, got %q", u.Scheme)
	}

	if u.Host == "" {
		return errors.New("url must have a host")
	}

	// Expand environment variables in token
	wh.Token = expandEnvVar(wh.Token)

	if wh.Trigger != "" {
		switch wh.Trigger {
		case WebhookTriggerOnIssues, WebhookTriggerAlways, WebhookTriggerNever:
		default:
			return fmt.Errorf("invalid trigger %q (must be on_issues, always, or never)", wh.Trigger)
		}
	} else {
		wh.Trigger = WebhookTriggerOnIssues
	}

	if wh.Timeout <= 0 {
		wh.Timeout = DefaultWebhookTimeout
	}

	return nil
}

// expandEnvVar expands environment variables in the format ${VAR} or $VAR.
func expandEnvVar(s string) string {
	if s == "" {
		return s
	}

	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		return os.Getenv(s[2 : len(s)-1])
	}

	if strings.HasPrefix(s, "$") && !strings.HasPrefix(s, "${") {
		return os.Getenv(s[1:])
	}

	return s
}

// Marshal renders the configuration as YAML.
func Marshal(cfg *Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}
