package reporter

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

type recordingReporter struct {
	NullReporter
	warnings []string
}

func (r *recordingReporter) Warning(message string) {
	r.warnings = append(r.warnings, message)
}

func TestCompositeReporterFansOut(t *testing.T) {
	a := &recordingReporter{}
	b := &recordingReporter{}
	c := NewCompositeReporter(a, b)

	c.Warning("disk is slow")

	if len(a.warnings) != 1 || a.warnings[0] != "disk is slow" {
		t.Errorf("reporter a did not receive warning: %v", a.warnings)
	}
	if len(b.warnings) != 1 || b.warnings[0] != "disk is slow" {
		t.Errorf("reporter b did not receive warning: %v", b.warnings)
	}
}

func TestNullReporterDiscardsEverything(t *testing.T) {
	var r Reporter = NullReporter{}
	r.Hardware(HardwareSummary{Hostname: "host"})
	r.BuildProgress(BuildProgress{Level: 0, CompletedTasks: 1, TotalTasks: 10})
	r.Warning("ignored")
	// No assertions possible beyond "did not panic" - NullReporter has no state.
}

func TestJSONReporterEmitsOneLinePerEvent(t *testing.T) {
	var buf bytes.Buffer
	r := NewJSONReporterWithWriter(&buf)

	r.LevelStarted(LevelStartInfo{Level: 1, TotalTasks: 42})
	r.Warning("missing source slice")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 NDJSON lines, got %d: %q", len(lines), buf.String())
	}

	var first map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("failed to parse first line: %v", err)
	}
	if first["type"] != "level_started" {
		t.Errorf("expected type=level_started, got %v", first["type"])
	}
	if first["total_tasks"].(float64) != 42 {
		t.Errorf("expected total_tasks=42, got %v", first["total_tasks"])
	}

	var second map[string]interface{}
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatalf("failed to parse second line: %v", err)
	}
	if second["type"] != "warning" {
		t.Errorf("expected type=warning, got %v", second["type"])
	}
}
