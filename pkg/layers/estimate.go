package layers

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/ccollicutt/layerdwell/pkg/smoothing"
)

// DefaultTravelSpeed is the assumed constant XY speed in mm/min.
const DefaultTravelSpeed = 1500.0

// ErrInvalidSpeed is returned for a zero or negative travel speed.
var ErrInvalidSpeed = errors.New("travel speed must be positive")

// Estimator converts layer motion into an estimated duration using a constant
// travel speed. Acceleration and Z/E motion are not modelled.
type Estimator struct {
	mmPerSecond float64
}

// NewEstimator creates an Estimator for a speed in mm/min.
func NewEstimator(speedMMPerMin float64) (*Estimator, error) {
	if !(speedMMPerMin > 0) || math.IsInf(speedMMPerMin, 1) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSpeed, speedMMPerMin)
	}
	return &Estimator{mmPerSecond: speedMMPerMin / 60}, nil
}

// Duration estimates the seconds needed for a layer. The cursor starts at the
// origin for every layer; axes absent from a command keep their last value.
func (e *Estimator) Duration(layer Layer) float64 {
	var x, y, total float64
	for _, cmd := range layer.Commands {
		if !cmd.MovesXY() {
			continue
		}
		nx, ny := x, y
		if cmd.HasX {
			nx = cmd.X
		}
		if cmd.HasY {
			ny = cmd.Y
		}
		total += math.Hypot(nx-x, ny-y) / e.mmPerSecond
		x, y = nx, ny
	}
	return total
}

// Timeline estimates every layer and returns the durations in ascending layer order.
func (e *Estimator) Timeline(layers []Layer) smoothing.Timeline {
	t := make(smoothing.Timeline, 0, len(layers))
	for _, l := range layers {
		t = append(t, smoothing.LayerTime{Layer: l.ID, Seconds: e.Duration(l)})
	}
	sort.SliceStable(t, func(i, j int) bool { return t[i].Layer < t[j].Layer })
	return t
}
