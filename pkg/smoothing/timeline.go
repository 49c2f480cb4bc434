// Package smoothing computes per-layer target print times that keep layer
// durations from dropping too sharply between neighbours.
package smoothing

// LayerTime is the duration of one layer in seconds.
type LayerTime struct {
	Layer   int     `json:"layer"`
	Seconds float64 `json:"seconds"`
}

// Timeline is a sequence of layer durations in ascending layer order.
type Timeline []LayerTime

// Clone returns an independent copy.
func (t Timeline) Clone() Timeline {
	if t == nil {
		return nil
	}
	out := make(Timeline, len(t))
	copy(out, t)
	return out
}

// Lookup returns the duration of a layer.
func (t Timeline) Lookup(layer int) (float64, bool) {
	for _, lt := range t {
		if lt.Layer == layer {
			return lt.Seconds, true
		}
	}
	return 0, false
}

// Index returns a layer -> seconds map for repeated lookups.
func (t Timeline) Index() map[int]float64 {
	m := make(map[int]float64, len(t))
	for _, lt := range t {
		m[lt.Layer] = lt.Seconds
	}
	return m
}

// Seconds returns the durations in timeline order.
func (t Timeline) Seconds() []float64 {
	out := make([]float64, len(t))
	for i, lt := range t {
		out[i] = lt.Seconds
	}
	return out
}

// Total returns the sum of all durations.
func (t Timeline) Total() float64 {
	var sum float64
	for _, lt := range t {
		sum += lt.Seconds
	}
	return sum
}
