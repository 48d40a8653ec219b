package export

import (
	"encoding/json"
	"io"

	"github.com/iksnae/vis-merge/internal"
)

// JSONExporter exports the whole snapshot as indented JSON
type JSONExporter struct{}

// Export exports a snapshot to JSON format
func (e *JSONExporter) Export(snap *internal.Snapshot, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	// merged content is markdown; keep <, > and & readable
	enc.SetEscapeHTML(false)

	if err := enc.Encode(snap); err != nil {
		return &internal.ExportError{Format: "json", Err: err}
	}
	return nil
}

// Extension returns the file extension for this format
func (e *JSONExporter) Extension() string {
	return "json"
}
