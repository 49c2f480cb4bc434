// Package output provides formatting and output generation for analysis results.
package output

import (
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/ccollicutt/layerdwell/pkg/analyzer"
	"github.com/ccollicutt/layerdwell/pkg/rewrite"
	"github.com/ccollicutt/layerdwell/pkg/smoothing"
)

// Report is the complete analysis output.
type Report struct {
	// Summary provides aggregate statistics.
	Summary Summary `json:"summary"`

	// Layers has one row per layer in ascending layer order.
	Layers []LayerRow `json:"layers"`

	// Changes lists sharp layer-to-layer changes in the estimated times.
	Changes []smoothing.Change `json:"changes"`

	// Insertions is set for clean runs.
	Insertions []rewrite.Insertion `json:"insertions,omitempty"`

	// Metadata provides context about the analysis.
	Metadata Metadata `json:"metadata"`
}

// LayerRow is one line of the comparison table.
type LayerRow struct {
	Layer    int     `json:"layer"`
	Commands int     `json:"commands"`
	Original float64 `json:"original_seconds"`
	Updated  float64 `json:"updated_seconds"`
	// SecondsToAdd is the pause the layer receives after the per-layer cap.
	SecondsToAdd float64 `json:"seconds_to_add"`
}

// Summary provides aggregate statistics.
type Summary struct {
	Layers             int     `json:"layers"`
	LayersNeedingDwell int     `json:"layers_needing_dwell"`
	TotalDwell         float64 `json:"total_dwell_seconds"`

	// Estimated print time before and after smoothing.
	OriginalTime float64 `json:"original_seconds"`
	UpdatedTime  float64 `json:"updated_seconds"`

	// Statistics over the estimated layer times.
	MeanLayerTime   float64 `json:"mean_layer_seconds"`
	StdDevLayerTime float64 `json:"stddev_layer_seconds"`
	MinLayerTime    float64 `json:"min_layer_seconds"`
	MaxLayerTime    float64 `json:"max_layer_seconds"`

	// LinesProcessed is the number of G-code lines read.
	LinesProcessed int `json:"lines_processed"`
}

// Metadata provides context about the analysis run.
type Metadata struct {
	// RunID identifies this run in webhook payloads and logs.
	RunID string `json:"run_id"`

	// Input is the analyzed G-code file.
	Input string `json:"input"`

	// ConfigFile is the path to the configuration file used, if any.
	ConfigFile string `json:"config_file,omitempty"`

	// AnalyzedAt is when the analysis was performed.
	AnalyzedAt time.Time `json:"analyzed_at"`

	// Duration is how long the analysis took.
	Duration time.Duration `json:"duration"`

	Settings Settings `json:"settings"`
}

// Settings records the parameters the analysis ran with.
type Settings struct {
	LayerMarker     string  `json:"layer_marker"`
	TravelSpeed     float64 `json:"travel_speed"`
	ChangeRatio     float64 `json:"change_ratio"`
	MaxDwellSeconds float64 `json:"max_dwell_seconds"`
	SegmentSeconds  float64 `json:"segment_seconds"`
	Retract         bool    `json:"retract"`
}

// NewReport creates a Report from analysis results.
func NewReport(result *analyzer.AnalysisResult, input, configFile string) *Report {
	s := result.Metadata.Settings
	report := &Report{
		Layers:  make([]LayerRow, len(result.Layers)),
		Changes: result.Changes,
		Metadata: Metadata{
			RunID:      uuid.NewString(),
			Input:      input,
			ConfigFile: configFile,
			AnalyzedAt: result.Metadata.EndTime,
			Duration:   result.Metadata.EndTime.Sub(result.Metadata.StartTime),
			Settings: Settings{
				LayerMarker:     s.LayerMarker,
				TravelSpeed:     s.TravelSpeed,
				ChangeRatio:     s.ChangeRatio,
				MaxDwellSeconds: s.MaxDwellTime.Seconds(),
				SegmentSeconds:  s.SegmentLength.Seconds(),
				Retract:         s.Retract,
			},
		},
		Summary: Summary{
			Layers:             len(result.Layers),
			LayersNeedingDwell: result.LayersNeedingDwell(),
			TotalDwell:         result.TotalDwell(),
			OriginalTime:       result.Actual.Total(),
			UpdatedTime:        result.Target.Total(),
			LinesProcessed:     result.Metadata.LinesProcessed,
		},
	}
	if report.Changes == nil {
		report.Changes = []smoothing.Change{}
	}

	for i, l := range result.Layers {
		report.Layers[i] = LayerRow{
			Layer:        l.Layer,
			Commands:     l.Commands,
			Original:     l.Actual,
			Updated:      l.Target,
			SecondsToAdd: l.Dwell,
		}
	}

	fillStats(&report.Summary, result.Actual.Seconds())
	return report
}

// NewCleanReport creates a Report for a clean run, including the insertions.
func NewCleanReport(result *analyzer.CleanResult, input, configFile string) *Report {
	report := NewReport(result.AnalysisResult, input, configFile)
	report.Insertions = result.Insertions
	return report
}

func fillStats(s *Summary, times []float64) {
	if len(times) == 0 {
		return
	}
	s.MinLayerTime = floats.Min(times)
	s.MaxLayerTime = floats.Max(times)
	s.MeanLayerTime = floats.Sum(times) / float64(len(times))
	if len(times) > 1 {
		s.MeanLayerTime, s.StdDevLayerTime = stat.MeanStdDev(times, nil)
	}
}

// HasIssues returns true if any layer needs a pause.
func (r *Report) HasIssues() bool {
	return r.Summary.LayersNeedingDwell > 0
}
