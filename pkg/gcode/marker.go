package gcode

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// DefaultMarkerPattern matches Cura-style ";LAYER:<n>" boundary markers.
const DefaultMarkerPattern = `^;LAYER:(.*)$`

// MarkerMatcher recognizes layer boundary markers and extracts the layer id.
type MarkerMatcher struct {
	pattern *regexp.Regexp
}

// NewMarkerMatcher compiles a marker pattern. The pattern must have exactly one
// capture group holding the layer id payload.
func NewMarkerMatcher(pattern string) (*MarkerMatcher, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid marker pattern: %w", err)
	}
	if re.NumSubexp() != 1 {
		return nil, errors.New("marker pattern must have exactly one capture group for the layer id")
	}
	return &MarkerMatcher{pattern: re}, nil
}

// MustMarkerMatcher is like NewMarkerMatcher but panics on error.
func MustMarkerMatcher(pattern string) *MarkerMatcher {
	m, err := NewMarkerMatcher(pattern)
	if err != nil {
		panic(err)
	}
	return m
}

// Pattern returns the source pattern.
func (m *MarkerMatcher) Pattern() string {
	return m.pattern.String()
}

// Match tests a line. ok is false for non-marker lines; err wraps
// ErrMalformedMarker when the line is a marker but the payload is not an integer.
func (m *MarkerMatcher) Match(line string) (id int, ok bool, err error) {
	sub := m.pattern.FindStringSubmatch(strings.TrimSpace(line))
	if sub == nil {
		return 0, false, nil
	}
	payload := strings.TrimSpace(sub[1])
	id, err = strconv.Atoi(payload)
	if err != nil {
		return 0, true, fmt.Errorf("%w: payload %q", ErrMalformedMarker, payload)
	}
	return id, true, nil
}
