package detector

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDetector_DetectFromLines_Cura(t *testing.T) {
	lines := []string{
		";FLAVOR:Marlin",
		";LAYER_COUNT:3",
		";LAYER:0",
		"G0 X10 Y10",
		"G1 X20 Y10 E0.5",
		";LAYER:1",
		"G1 X20 Y20 E1.0",
		";LAYER:2",
		"G1 X10 Y20 E1.5",
	}

	d := New()
	result := d.DetectFromLines(lines)

	if !result.HasMatch() {
		t.Fatal("Expected to detect a dialect")
	}

	best := result.BestMatch()
	if best.Format.Name != "Cura layer comment" {
		t.Errorf("Expected Cura layer comment, got %s", best.Format.Name)
	}
	if best.MatchCount != 3 {
		t.Errorf("Expected 3 markers, got %d", best.MatchCount)
	}
	if best.FirstLayer != 0 || best.LastLayer != 2 {
		t.Errorf("Expected layers 0..2, got %d..%d", best.FirstLayer, best.LastLayer)
	}
	if best.SampleLine != ";LAYER:0" {
		t.Errorf("SampleLine = %q", best.SampleLine)
	}
	if best.Confidence() != 1.0 {
		t.Errorf("Expected 100%% confidence, got %.1f%%", best.Confidence()*100)
	}
	if result.MotionLines != 4 {
		t.Errorf("MotionLines = %d, want 4", result.MotionLines)
	}
}

func TestDetector_DetectFromLines_Bambu(t *testing.T) {
	lines := []string{
		"; layer num/total_layer_count: 1/3",
		"G1 X1 Y1 E.1",
		"; layer num/total_layer_count: 2/3",
		"G1 X2 Y2 E.1",
		"; layer num/total_layer_count: 3/3",
	}

	best := New().DetectFromLines(lines).BestMatch()
	if best == nil {
		t.Fatal("Expected to detect a dialect")
	}
	if best.Format.Name != "Bambu/Orca layer progress" {
		t.Errorf("Expected Bambu/Orca layer progress, got %s", best.Format.Name)
	}
	if best.Layers() != 3 {
		t.Errorf("Layers() = %d, want 3", best.Layers())
	}
}

func TestDetector_DetectFromLines_Simplify3D(t *testing.T) {
	lines := []string{
		"; layer 1, Z = 0.200",
		"G1 X10 Y10 F1800",
		"; layer 2, Z = 0.400",
		"G1 X10 Y20 F1800",
	}

	best := New().DetectFromLines(lines).BestMatch()
	if best == nil {
		t.Fatal("Expected to detect a dialect")
	}
	if best.Format.Name != "Simplify3D layer header" {
		t.Errorf("Expected Simplify3D layer header, got %s", best.Format.Name)
	}
	if best.MatchCount != 2 {
		t.Errorf("Expected 2 markers, got %d", best.MatchCount)
	}
}

func TestDetector_DetectFromLines_Malformed(t *testing.T) {
	lines := []string{
		";LAYER:0",
		";LAYER:one",
		";LAYER:2",
		";LAYER:",
	}

	best := New().DetectFromLines(lines).BestMatch()
	if best == nil {
		t.Fatal("Expected to detect a dialect")
	}
	if best.MatchCount != 2 || best.Malformed != 2 {
		t.Errorf("MatchCount/Malformed = %d/%d, want 2/2", best.MatchCount, best.Malformed)
	}
	if best.Confidence() != 0.5 {
		t.Errorf("Confidence() = %v, want 0.5", best.Confidence())
	}
}

func TestDetector_DetectFromLines_Duplicates(t *testing.T) {
	lines := []string{";LAYER:0", ";LAYER:1", ";LAYER:0", ";LAYER:1"}

	best := New().DetectFromLines(lines).BestMatch()
	if best.Duplicates != 2 {
		t.Errorf("Duplicates = %d, want 2", best.Duplicates)
	}
	if best.Layers() != 2 {
		t.Errorf("Layers() = %d, want 2", best.Layers())
	}
}

func TestDetector_DetectFromLines_NoMatch(t *testing.T) {
	lines := []string{
		"G28",
		"G1 X10 Y10",
		"; generated by a custom script",
	}

	result := New().DetectFromLines(lines)

	if result.HasMatch() {
		t.Errorf("Expected no match, got %s", result.BestMatch().Format.Name)
	}
	if result.BestMatch() != nil {
		t.Error("BestMatch() should be nil without matches")
	}
	if result.MotionLines != 1 {
		t.Errorf("MotionLines = %d, want 1", result.MotionLines)
	}
}

func TestDetector_DetectFromLines_EmptyInput(t *testing.T) {
	result := New().DetectFromLines(nil)

	if result.HasMatch() {
		t.Error("Expected no match for empty input")
	}
	if result.SampledLines != 0 {
		t.Errorf("Expected 0 sampled lines, got %d", result.SampledLines)
	}
}

func TestDetector_DetectFromLines_MixedDialects(t *testing.T) {
	// Cura markers dominate; the stray Simplify3D header loses.
	lines := []string{
		"; layer 1, Z = 0.200",
		";LAYER:0",
		";LAYER:1",
		";LAYER:2",
	}

	result := New().DetectFromLines(lines)
	if len(result.Matches) != 2 {
		t.Fatalf("Expected 2 matches, got %d", len(result.Matches))
	}
	if result.BestMatch().Format.Name != "Cura layer comment" {
		t.Errorf("Expected Cura first, got %s", result.BestMatch().Format.Name)
	}
}

func TestDetector_WithSampleSize(t *testing.T) {
	d := New(WithSampleSize(50))
	if d.sampleSize != 50 {
		t.Errorf("Expected sample size 50, got %d", d.sampleSize)
	}
}

func TestDetector_WithSampleSize_Invalid(t *testing.T) {
	d := New(WithSampleSize(-1))
	if d.sampleSize != DefaultSampleSize {
		t.Errorf("Expected default sample size %d, got %d", DefaultSampleSize, d.sampleSize)
	}
}

func TestDetector_WithFormats(t *testing.T) {
	formats := DefaultFormats()[1:2]
	result := New(WithFormats(formats)).DetectFromLines([]string{";LAYER:0"})
	if result.HasMatch() {
		t.Error("Cura marker should not match when only Bambu/Orca is tested")
	}
}

func TestDetector_DetectFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "part.gcode")

	content := ";LAYER:0\nG1 X1 Y1\n;LAYER:1\nG1 X2 Y2\n;LAYER:2\nG1 X3 Y3\n"
	if err := os.WriteFile(tmpFile, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}

	result, err := New().DetectFromFile(context.Background(), tmpFile)
	if err != nil {
		t.Fatalf("DetectFromFile failed: %v", err)
	}
	if result.Truncated {
		t.Error("Truncated should be false")
	}
	if best := result.BestMatch(); best == nil || best.MatchCount != 3 {
		t.Errorf("BestMatch() = %+v, want 3 Cura markers", best)
	}

	truncated, err := New(WithSampleSize(3)).DetectFromFile(context.Background(), tmpFile)
	if err != nil {
		t.Fatalf("DetectFromFile failed: %v", err)
	}
	if !truncated.Truncated || truncated.SampledLines != 3 {
		t.Errorf("Truncated/SampledLines = %v/%d, want true/3", truncated.Truncated, truncated.SampledLines)
	}
}

func TestDetector_DetectFromFile_LongThumbnailLine(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "thumb.gcode")
	content := "; thumbnail " + strings.Repeat("Q", 300*1024) + "\n;LAYER:0\nG1 X1\n;LAYER:1\nG1 X2\n"
	if err := os.WriteFile(tmpFile, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}

	result, err := New().DetectFromFile(context.Background(), tmpFile)
	if err != nil {
		t.Fatalf("DetectFromFile failed: %v", err)
	}
	if result.SampledLines != 5 || result.Truncated {
		t.Errorf("SampledLines/Truncated = %d/%v, want 5/false", result.SampledLines, result.Truncated)
	}
	if best := result.BestMatch(); best == nil || best.MatchCount != 2 {
		t.Errorf("BestMatch() = %+v, want 2 markers", best)
	}
}

func TestDetector_DetectFromFile_NotFound(t *testing.T) {
	_, err := New().DetectFromFile(context.Background(), "/nonexistent/file.gcode")
	if err == nil {
		t.Error("Expected error for non-existent file")
	}
}

func TestDetector_DetectFromFile_Cancelled(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "part.gcode")
	if err := os.WriteFile(tmpFile, []byte(strings.Repeat("G1 X1\n", 10)), 0644); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New().DetectFromFile(ctx, tmpFile); err == nil {
		t.Error("Expected error for cancelled context")
	}
}

func TestDefaultFormats(t *testing.T) {
	for _, f := range DefaultFormats() {
		if f.Matcher() == nil {
			t.Errorf("%s: matcher not compiled", f.Name)
		}
		if len(f.Slicers) == 0 {
			t.Errorf("%s: no slicers listed", f.Name)
		}
		for _, ex := range f.Examples {
			if _, ok, err := f.Matcher().Match(ex); !ok || err != nil {
				t.Errorf("%s: example %q did not match (ok=%v, err=%v)", f.Name, ex, ok, err)
			}
		}
	}
}
