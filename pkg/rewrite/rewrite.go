// Package rewrite splices pause blocks into a G-code stream after the
// markers of layers that finish faster than their target time.
package rewrite

import (
	"fmt"
	"math"

	"github.com/ccollicutt/layerdwell/pkg/gcode"
	"github.com/ccollicutt/layerdwell/pkg/smoothing"
)

// BlockSynthesizer produces the lines inserted for a wait of the given seconds.
type BlockSynthesizer interface {
	Block(seconds float64) []string
}

// Insertion records a pause block added to the output.
type Insertion struct {
	Layer int `json:"layer"`
	// Line is the 1-based output line of the marker the block follows.
	Line int `json:"line"`
	// Seconds is the dwell requested for the layer after the cap is applied.
	Seconds float64 `json:"seconds"`
	// Lines is the number of inserted lines.
	Lines int `json:"lines"`
}

// Result is a rewritten stream.
type Result struct {
	Lines      []string
	Insertions []Insertion
}

// Rewrite copies lines and inserts a pause block after the first marker of
// each layer whose actual time is below its target. The wait is capped at
// maxDwell seconds. Layers absent from either timeline pass through unchanged.
func Rewrite(lines []string, actual, target smoothing.Timeline, synth BlockSynthesizer, maxDwell float64, matcher *gcode.MarkerMatcher) (*Result, error) {
	actualByLayer := actual.Index()
	targetByLayer := target.Index()
	seen := make(map[int]bool)

	res := &Result{Lines: make([]string, 0, len(lines))}
	for i, line := range lines {
		res.Lines = append(res.Lines, line)

		id, isMarker, err := matcher.Match(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		if !isMarker || seen[id] {
			continue
		}
		seen[id] = true

		a, okA := actualByLayer[id]
		tgt, okT := targetByLayer[id]
		if !okA || !okT || a >= tgt {
			continue
		}

		wait := math.Min(maxDwell, tgt-a)
		block := synth.Block(wait)
		if len(block) == 0 {
			continue
		}
		res.Insertions = append(res.Insertions, Insertion{
			Layer:   id,
			Line:    len(res.Lines),
			Seconds: wait,
			Lines:   len(block),
		})
		res.Lines = append(res.Lines, block...)
	}
	return res, nil
}

// TotalDwell returns the seconds of pause added across all insertions.
func (r *Result) TotalDwell() float64 {
	var sum float64
	for _, in := range r.Insertions {
		sum += in.Seconds
	}
	return sum
}
