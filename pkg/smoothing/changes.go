package smoothing

import "math"

// Change is a layer whose duration differs sharply from the previous layer.
type Change struct {
	Layer    int     `json:"layer"`
	Previous float64 `json:"previous_seconds"`
	Seconds  float64 `json:"seconds"`
	// Ratio is (Seconds-Previous)/Previous; negative when the layer is faster.
	Ratio float64 `json:"ratio"`
}

// Changes lists layers whose relative change from the preceding layer exceeds
// threshold in either direction. Layers following a zero-length layer are
// skipped since no ratio exists.
func Changes(t Timeline, threshold float64) []Change {
	var out []Change
	for i := 1; i < len(t); i++ {
		prev := t[i-1].Seconds
		if prev == 0 {
			continue
		}
		ratio := (t[i].Seconds - prev) / prev
		if math.Abs(ratio) > threshold {
			out = append(out, Change{
				Layer:    t[i].Layer,
				Previous: prev,
				Seconds:  t[i].Seconds,
				Ratio:    ratio,
			})
		}
	}
	return out
}
