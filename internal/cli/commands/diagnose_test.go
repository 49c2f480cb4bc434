package commands

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"
)

func statusOf(results []DiagnosticResult, check string) string {
	for _, r := range results {
		if r.Check == check {
			return r.Status
		}
	}
	return ""
}

func TestRunDiagnose(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.gcode", threeLayerGCode)
	bambu := writeFile(t, dir, "bambu.gcode", bambuGCode)
	malformed := writeFile(t, dir, "bad.gcode", ";LAYER:0\nG1 X1\n;LAYER:top\nG1 X2\n")
	emptyLayer := writeFile(t, dir, "empty.gcode", ";LAYER:0\nG1 X1\n;LAYER:1\nM107\n")
	dups := writeFile(t, dir, "dups.gcode", ";LAYER:0\nG1 X1\n;LAYER:0\nG1 X2\n")
	blank := writeFile(t, dir, "blank.gcode", "")
	strict := writeFile(t, dir, "strict.yaml", "duplicate_layers: error\n")

	tests := []struct {
		name   string
		path   string
		config string
		check  string
		status string
		want   string
	}{
		{"ready", good, "", "Layers", "ok", "Ready to analyze!"},
		{"missing file", filepath.Join(dir, "nope.gcode"), "", "G-code File", "error", "G-code file not found"},
		{"empty file", blank, "", "G-code File", "error", "G-code file is empty"},
		{"directory", dir, "", "G-code File", "error", "Path is a directory"},
		{"bad config", good, filepath.Join(dir, "nope.yaml"), "Configuration", "error", "Failed to load config"},
		{"wrong dialect", bambu, "", "Layer Markers", "error", "File looks like Bambu/Orca layer progress"},
		{"malformed marker", malformed, "", "Layer Markers", "error", "line 3: ;LAYER:top"},
		{"empty layer", emptyLayer, "", "Layers", "warning", "layer 1 has no G0/G1 moves"},
		{"strict duplicates", dups, strict, "Layers", "error", "Set duplicate_layers: continue"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			results := runDiagnose(context.Background(), &out, tt.path, &GlobalOptions{ConfigFile: tt.config}, &DiagnoseOptions{})

			if got := statusOf(results, tt.check); got != tt.status {
				t.Errorf("%s status = %q, want %q", tt.check, got, tt.status)
			}
			if !strings.Contains(out.String(), tt.want) {
				t.Errorf("output missing %q\n%s", tt.want, out.String())
			}
		})
	}
}

func TestRunDiagnose_Webhooks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("expected HEAD, got %s", r.Method)
		}
		w.WriteHeader(http.StatusMethodNotAllowed)
	}))
	defer server.Close()

	dir := t.TempDir()
	path := writeFile(t, dir, "good.gcode", threeLayerGCode)
	cfg := writeFile(t, dir, "hooks.yaml", "webhooks:\n  - name: ops\n    url: "+server.URL+"\n    trigger: always\n")

	var out bytes.Buffer
	results := runDiagnose(context.Background(), &out, path, &GlobalOptions{ConfigFile: cfg}, &DiagnoseOptions{Verbose: true})

	if got := statusOf(results, "Webhook: ops"); got != "ok" {
		t.Errorf("webhook status = %q", got)
	}
	if got := statusOf(results, "Webhook Connectivity: ops"); got != "warning" {
		t.Errorf("connectivity status = %q, want warning for 405", got)
	}
	for _, want := range []string{"Trigger: always", "Reachable but returned status 405", "First layer: 0"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q\n%s", want, out.String())
		}
	}
}

func TestRunDiagnose_CommandNeverFails(t *testing.T) {
	if _, err := run(t, NewDiagnoseCommand(&GlobalOptions{}), filepath.Join(t.TempDir(), "nope.gcode")); err != nil {
		t.Errorf("diagnose returned error %v", err)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate() = %q", got)
	}
	if got := truncate(";LAYER:this-is-a-very-long-marker", 10); got != ";LAYER:..." {
		t.Errorf("truncate() = %q", got)
	}
	if got := truncate(";Température de la buse 210°C", 10); got != ";Tempér..." {
		t.Errorf("truncate() = %q", got)
	}
	for _, in := range []string{"éééééééééééé", "°°°°°°°°°°°°", ";层:一二三四五六七"} {
		got := truncate(in, 8)
		if !utf8.ValidString(got) {
			t.Errorf("truncate(%q) = %q is not valid UTF-8", in, got)
		}
		if n := utf8.RuneCountInString(got); n > 8 {
			t.Errorf("truncate(%q) has %d runes, want <= 8", in, n)
		}
	}
	if got := truncate("ééééé", 2); got != "éé" {
		t.Errorf("truncate() = %q", got)
	}
}
