package smoothing

import (
	"errors"
	"fmt"
	"math"
)

// Defaults used when no configuration overrides them.
const (
	DefaultChangeRatio  = 0.2
	DefaultMaxDwellTime = 1200.0 // seconds
)

var (
	// ErrInvalidRatio is returned when the change ratio is outside (0, 1).
	ErrInvalidRatio = errors.New("change ratio must be between 0 and 1 (exclusive)")

	// ErrInvalidCap is returned for a negative per-layer dwell cap.
	ErrInvalidCap = errors.New("max dwell time must not be negative")
)

// Smooth returns target durations for actual. A layer shorter than
// (1-ratio) times its neighbour is raised toward that floor, but by at most
// maxDwell seconds per pass. A forward pass compares each layer with the one
// before it, then a backward pass with the one after it. Targets are never
// below the actual durations, and the ratio may still be violated where
// maxDwell binds.
func Smooth(actual Timeline, ratio, maxDwell float64) (Timeline, error) {
	if !(ratio > 0 && ratio < 1) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRatio, ratio)
	}
	if maxDwell < 0 || math.IsNaN(maxDwell) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCap, maxDwell)
	}

	t := actual.Clone()
	n := len(t)

	for i := 1; i < n; i++ {
		t[i].Seconds = raise(t[i].Seconds, t[i-1].Seconds*(1-ratio), maxDwell)
	}
	for i := n - 2; i >= 0; i-- {
		t[i].Seconds = raise(t[i].Seconds, t[i+1].Seconds*(1-ratio), maxDwell)
	}
	return t, nil
}

func raise(current, floor, maxDwell float64) float64 {
	if current >= floor {
		return current
	}
	return math.Min(current+maxDwell, floor)
}
