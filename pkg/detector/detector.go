// Package detector identifies which layer marker dialect a G-code file uses.
package detector

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/ccollicutt/layerdwell/pkg/gcode"
)

// DefaultSampleSize is the number of lines read when no sample size is set.
// Markers appear once per layer, so the sample must span many layers.
const DefaultSampleSize = 200000

// DetectionResult holds the result of sampling a G-code file.
type DetectionResult struct {
	Matches      []FormatMatch // Dialects that matched, most markers first
	SampledLines int           // Number of lines sampled
	MotionLines  int           // Number of G0/G1 lines in the sample
	Truncated    bool          // True if the file was longer than the sample
}

// FormatMatch reports how one dialect matched the sample.
type FormatMatch struct {
	Format     *MarkerFormat
	MatchCount int    // Markers with an integer layer id
	Malformed  int    // Markers whose payload is not an integer
	Duplicates int    // Markers that repeat an earlier layer id
	FirstLayer int    // Lowest layer id seen
	LastLayer  int    // Highest layer id seen
	SampleLine string // First marker line that matched
}

// Confidence is the share of matched markers with a usable layer id.
func (m FormatMatch) Confidence() float64 {
	total := m.MatchCount + m.Malformed
	if total == 0 {
		return 0
	}
	return float64(m.MatchCount) / float64(total)
}

// Layers is the number of distinct layer ids seen.
func (m FormatMatch) Layers() int {
	return m.MatchCount - m.Duplicates
}

// Detector samples G-code to identify its layer marker dialect.
type Detector struct {
	formats    []*MarkerFormat
	sampleSize int
}

// Option configures the Detector.
type Option func(*Detector)

// WithSampleSize sets the number of lines to sample (default DefaultSampleSize).
func WithSampleSize(n int) Option {
	return func(d *Detector) {
		if n > 0 {
			d.sampleSize = n
		}
	}
}

// WithFormats replaces the dialects to test.
func WithFormats(formats []*MarkerFormat) Option {
	return func(d *Detector) {
		if len(formats) > 0 {
			d.formats = formats
		}
	}
}

// New creates a new Detector with default formats.
func New(opts ...Option) *Detector {
	d := &Detector{
		formats:    DefaultFormats(),
		sampleSize: DefaultSampleSize,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DetectFromFile samples a G-code file and returns detected dialects.
func (d *Detector) DetectFromFile(ctx context.Context, path string) (*DetectionResult, error) {
	lines, truncated, err := d.sampleFile(ctx, path)
	if err != nil {
		return nil, err
	}
	result := d.DetectFromLines(lines)
	result.Truncated = truncated
	return result, nil
}

// DetectFromLines analyzes a slice of G-code lines.
func (d *Detector) DetectFromLines(lines []string) *DetectionResult {
	result := &DetectionResult{SampledLines: len(lines)}

	type formatStats struct {
		match FormatMatch
		seen  map[int]bool
	}
	stats := make([]*formatStats, len(d.formats))
	for i, f := range d.formats {
		stats[i] = &formatStats{match: FormatMatch{Format: f}, seen: make(map[int]bool)}
	}

	for _, line := range lines {
		if gcode.IsMotionLine(line) {
			result.MotionLines++
			continue
		}

		for _, s := range stats {
			id, ok, err := s.match.Format.matcher.Match(line)
			if !ok {
				continue
			}
			if err != nil {
				s.match.Malformed++
				continue
			}

			m := &s.match
			if m.MatchCount == 0 {
				m.SampleLine = line
				m.FirstLayer, m.LastLayer = id, id
			}
			m.MatchCount++
			m.FirstLayer = min(m.FirstLayer, id)
			m.LastLayer = max(m.LastLayer, id)
			if s.seen[id] {
				m.Duplicates++
			}
			s.seen[id] = true
		}
	}

	for _, s := range stats {
		if s.match.MatchCount > 0 {
			result.Matches = append(result.Matches, s.match)
		}
	}

	// Most markers first; ties go to the stricter (longer) pattern.
	sort.SliceStable(result.Matches, func(i, j int) bool {
		a, b := result.Matches[i], result.Matches[j]
		if a.MatchCount != b.MatchCount {
			return a.MatchCount > b.MatchCount
		}
		return len(a.Format.PatternStr) > len(b.Format.PatternStr)
	})

	return result
}

// sampleFile reads up to sampleSize lines from a file.
func (d *Detector) sampleFile(ctx context.Context, path string) ([]string, bool, error) {
	// #nosec G304 - path is provided by user via CLI
	file, err := os.Open(path)
	if err != nil {
		return nil, false, fmt.Errorf("opening gcode file: %w", err)
	}
	defer file.Close()

	return gcode.ReadLinesLimit(ctx, file, d.sampleSize)
}

// BestMatch returns the dialect with the most markers, or nil if none found.
func (r *DetectionResult) BestMatch() *FormatMatch {
	if len(r.Matches) == 0 {
		return nil
	}
	return &r.Matches[0]
}

// HasMatch returns true if at least one dialect matched.
func (r *DetectionResult) HasMatch() bool {
	return len(r.Matches) > 0
}
