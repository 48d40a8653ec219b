package export

import (
	"io"

	"github.com/iksnae/vis-merge/internal"
	"gopkg.in/yaml.v3"
)

// YAMLExporter exports snapshots in YAML format
type YAMLExporter struct{}

// Export exports a snapshot to YAML format
func (e *YAMLExporter) Export(snap *internal.Snapshot, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer func() { _ = enc.Close() }()

	if err := enc.Encode(snap); err != nil {
		return &internal.ExportError{Format: "yaml", Err: err}
	}
	return nil
}

// Extension returns the file extension for this format
func (e *YAMLExporter) Extension() string {
	return "yaml"
}
