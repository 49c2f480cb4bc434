package detector

import "github.com/ccollicutt/layerdwell/pkg/gcode"

// MarkerFormat is a known slicer layer marker dialect.
type MarkerFormat struct {
	Name       string   // Human-readable name
	Slicers    []string // Slicers known to emit this dialect
	PatternStr string   // Marker pattern for config output, one capture group
	Examples   []string // Example marker lines

	matcher *gcode.MarkerMatcher
}

// Matcher returns the compiled marker matcher.
func (f *MarkerFormat) Matcher() *gcode.MarkerMatcher {
	return f.matcher
}

// DefaultFormats returns the built-in marker dialects to detect.
func DefaultFormats() []*MarkerFormat {
	formats := []*MarkerFormat{
		{
			Name:       "Cura layer comment",
			Slicers:    []string{"Cura", "ideaMaker", "Creality Print"},
			PatternStr: gcode.DefaultMarkerPattern,
			Examples:   []string{";LAYER:0", ";LAYER:-2"},
		},
		{
			Name:       "Bambu/Orca layer progress",
			Slicers:    []string{"Bambu Studio", "OrcaSlicer"},
			PatternStr: `^; layer num/total_layer_count: (\d+)/\d+$`,
			Examples:   []string{"; layer num/total_layer_count: 1/120"},
		},
		{
			Name:       "Simplify3D layer header",
			Slicers:    []string{"Simplify3D"},
			PatternStr: `^; layer (-?\d+), Z = [-+]?[\d.]+$`,
			Examples:   []string{"; layer 1, Z = 0.200"},
		},
	}

	for _, f := range formats {
		f.matcher = gcode.MustMarkerMatcher(f.PatternStr)
	}

	return formats
}
