package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/iksnae/vis-merge/internal"
)

func TestJSONExporter_Export(t *testing.T) {
	tests := []struct {
		name string
		snap *internal.Snapshot
	}{
		{name: "snapshot with nodes", snap: testSnapshot()},
		{name: "empty snapshot", snap: &internal.Snapshot{Stream: "empty"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			exporter := &JSONExporter{}

			if err := exporter.Export(tt.snap, &buf); err != nil {
				t.Fatalf("JSONExporter.Export() error = %v", err)
			}

			output := buf.String()
			var got internal.Snapshot
			if err := json.Unmarshal([]byte(output), &got); err != nil {
				t.Fatalf("Output is not valid JSON: %v\nOutput: %s", err, output)
			}
			if got.Stream != tt.snap.Stream || got.Content != tt.snap.Content {
				t.Errorf("decoded snapshot = %+v, want %+v", got, tt.snap)
			}
			if len(got.Nodes) != len(tt.snap.Nodes) {
				t.Errorf("decoded %d nodes, want %d", len(got.Nodes), len(tt.snap.Nodes))
			}
			if !strings.Contains(output, "\n  ") {
				t.Errorf("Output should be pretty-printed with indentation")
			}
		})
	}
}

func TestJSONExporter_NoHTMLEscaping(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONExporter{}).Export(testSnapshot(), &buf); err != nil {
		t.Fatalf("JSONExporter.Export() error = %v", err)
	}
	if !strings.Contains(buf.String(), "x < y") {
		t.Errorf("Output should keep markdown readable, got: %s", buf.String())
	}
}

func TestJSONExporter_Extension(t *testing.T) {
	exporter := &JSONExporter{}
	if got := exporter.Extension(); got != "json" {
		t.Errorf("JSONExporter.Extension() = %v, want json", got)
	}
}
