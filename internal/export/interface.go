package export

import (
	"fmt"
	"io"

	"github.com/iksnae/vis-merge/internal"
)

// Exporter writes a merged snapshot in one output format
type Exporter interface {
	Export(snap *internal.Snapshot, w io.Writer) error
	Extension() string
}

// NewExporter creates a new exporter based on format
func NewExporter(format string) (Exporter, error) {
	switch format {
	case "jsonl":
		return &JSONLExporter{}, nil
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	case "yaml":
		return &YAMLExporter{}, nil
	case "json":
		return &JSONExporter{}, nil
	default:
		return nil, &internal.ExportError{
			Format: format,
			Err:    fmt.Errorf("unsupported format (supported: json, jsonl, md, yaml)"),
		}
	}
}
