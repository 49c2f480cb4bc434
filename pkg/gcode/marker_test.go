package gcode

import (
	"errors"
	"testing"
)

func TestNewMarkerMatcher_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
	}{
		{"bad regex", `^;LAYER:(`},
		{"no group", `^;LAYER:\d+`},
		{"two groups", `^;(LAYER):(\d+)`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewMarkerMatcher(tt.pattern); err == nil {
				t.Errorf("NewMarkerMatcher(%q) expected error", tt.pattern)
			}
		})
	}
}

func TestMarkerMatcher_Match(t *testing.T) {
	m := MustMarkerMatcher(DefaultMarkerPattern)

	tests := []struct {
		line    string
		id      int
		ok      bool
		wantErr bool
	}{
		{";LAYER:0", 0, true, false},
		{";LAYER:12\r", 12, true, false},
		{"  ;LAYER: 7 ", 7, true, false},
		{";LAYER:-2", -2, true, false},
		{";LAYER:abc", 0, true, true},
		{";LAYER:", 0, true, true},
		{";LAYER_COUNT:120", 0, false, false},
		{"G1 X10", 0, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			id, ok, err := m.Match(tt.line)
			if ok != tt.ok {
				t.Fatalf("Match(%q) ok = %v, want %v", tt.line, ok, tt.ok)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedMarker) {
					t.Errorf("Match(%q) error = %v, want ErrMalformedMarker", tt.line, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Match(%q) error = %v", tt.line, err)
			}
			if id != tt.id {
				t.Errorf("Match(%q) id = %d, want %d", tt.line, id, tt.id)
			}
		})
	}
}

func TestMarkerMatcher_CustomPattern(t *testing.T) {
	m := MustMarkerMatcher(`^; layer num/total_layer_count: (\d+)/\d+`)

	id, ok, err := m.Match("; layer num/total_layer_count: 3/120")
	if err != nil || !ok || id != 3 {
		t.Errorf("Match() = %d, %v, %v; want 3, true, nil", id, ok, err)
	}
	if m.Pattern() != `^; layer num/total_layer_count: (\d+)/\d+` {
		t.Errorf("Pattern() = %q", m.Pattern())
	}
}
