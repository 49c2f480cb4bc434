package output

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/ccollicutt/layerdwell/pkg/rewrite"
)

func insertionFixture() rewrite.Insertion {
	return rewrite.Insertion{Layer: 2, Line: 5, Seconds: 4.8, Lines: 6}
}

func TestNewJSONFormatter(t *testing.T) {
	f := NewJSONFormatter(FormatOptions{})
	if f == nil {
		t.Fatal("NewJSONFormatter() returned nil")
	}
	if f.Name() != "json" {
		t.Errorf("Name() = %q, want %q", f.Name(), "json")
	}
}

func TestJSONFormatter_Format(t *testing.T) {
	f := NewJSONFormatter(FormatOptions{})
	report := createTestReport()

	var buf bytes.Buffer
	if err := f.Format(context.Background(), report, &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	var parsed Report
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}

	if parsed.Summary.Layers != 3 {
		t.Errorf("Layers = %d, want 3", parsed.Summary.Layers)
	}
	if len(parsed.Layers) != 3 || parsed.Layers[1].SecondsToAdd != 4.8 {
		t.Errorf("Layers = %+v", parsed.Layers)
	}
	if len(parsed.Changes) != 2 {
		t.Errorf("Changes = %d, want 2", len(parsed.Changes))
	}
	if parsed.Metadata.RunID != report.Metadata.RunID {
		t.Errorf("RunID = %q, want %q", parsed.Metadata.RunID, report.Metadata.RunID)
	}
}

func TestJSONFormatter_Format_FieldNames(t *testing.T) {
	f := NewJSONFormatter(FormatOptions{})

	var buf bytes.Buffer
	if err := f.Format(context.Background(), createTestReport(), &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(buf.Bytes(), &raw); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	for _, key := range []string{"summary", "layers", "changes", "metadata"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("missing top-level key %q", key)
		}
	}
	if _, ok := raw["insertions"]; ok {
		t.Error("insertions should be omitted for analyze reports")
	}
}

func TestJSONFormatter_Format_Quiet(t *testing.T) {
	f := NewJSONFormatter(FormatOptions{Quiet: true})

	var buf bytes.Buffer
	if err := f.Format(context.Background(), createTestReport(), &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	var parsed Summary
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if parsed.LayersNeedingDwell != 1 {
		t.Errorf("LayersNeedingDwell = %d, want 1", parsed.LayersNeedingDwell)
	}
}

func TestNewFormatter(t *testing.T) {
	tests := []struct {
		name   string
		want   string
		wantOK bool
	}{
		{"text", "text", true},
		{"", "text", true},
		{"json", "json", true},
		{"xml", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, ok := NewFormatter(tt.name, FormatOptions{})
			if ok != tt.wantOK {
				t.Fatalf("NewFormatter(%q) ok = %v, want %v", tt.name, ok, tt.wantOK)
			}
			if ok && f.Name() != tt.want {
				t.Errorf("Name() = %q, want %q", f.Name(), tt.want)
			}
		})
	}
}
