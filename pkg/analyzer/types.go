package analyzer

import (
	"time"

	"github.com/ccollicutt/layerdwell/pkg/rewrite"
	"github.com/ccollicutt/layerdwell/pkg/smoothing"
)

// LayerResult compares one layer's estimated and target time.
type LayerResult struct {
	Layer    int
	Commands int
	Actual   float64
	Target   float64
	// Dwell is the pause the layer would receive, after the per-layer cap.
	Dwell float64
}

// NeedsDwell reports whether the layer is below its target.
func (l LayerResult) NeedsDwell() bool {
	return l.Dwell > 0
}

// AnalysisResult contains the complete analysis output.
type AnalysisResult struct {
	// Layers has one entry per layer in ascending layer order.
	Layers []LayerResult

	// Actual and Target are the estimated and smoothed timelines.
	Actual smoothing.Timeline
	Target smoothing.Timeline

	// Changes lists sharp layer-to-layer changes in the estimated times.
	Changes []smoothing.Change

	Metadata AnalysisMetadata
}

// AnalysisMetadata provides context about the analysis run.
type AnalysisMetadata struct {
	StartTime      time.Time
	EndTime        time.Time
	LinesProcessed int
	Settings       Settings
}

// Settings records the parameters an analysis ran with.
type Settings struct {
	LayerMarker   string
	TravelSpeed   float64
	ChangeRatio   float64
	MaxDwellTime  time.Duration
	SegmentLength time.Duration
	Retract       bool
}

// LayersNeedingDwell returns the count of layers below their target.
func (r *AnalysisResult) LayersNeedingDwell() int {
	count := 0
	for _, l := range r.Layers {
		if l.NeedsDwell() {
			count++
		}
	}
	return count
}

// TotalDwell returns the seconds of pause the layers would receive.
func (r *AnalysisResult) TotalDwell() float64 {
	var sum float64
	for _, l := range r.Layers {
		sum += l.Dwell
	}
	return sum
}

// CleanResult is an analysis plus the rewritten stream.
type CleanResult struct {
	*AnalysisResult

	Lines      []string
	Insertions []rewrite.Insertion
}
