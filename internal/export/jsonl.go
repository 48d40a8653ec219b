package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/iksnae/vis-merge/internal"
)

// JSONLExporter exports one node summary per line
type JSONLExporter struct{}

type jsonlRecord struct {
	Stream string `json:"stream"`
	internal.NodeSummary
}

// Export exports the nodes of a snapshot to JSONL format
func (e *JSONLExporter) Export(snap *internal.Snapshot, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	for _, n := range snap.Nodes {
		if err := enc.Encode(jsonlRecord{Stream: snap.Stream, NodeSummary: n}); err != nil {
			return &internal.ExportError{Format: "jsonl", Err: fmt.Errorf("failed to encode node %s: %w", n.UID, err)}
		}
	}

	return nil
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}
