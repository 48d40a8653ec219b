package export

import (
	"io"
	"strings"

	"github.com/iksnae/vis-merge/internal"
)

// MarkdownExporter writes the merged document itself
type MarkdownExporter struct{}

// Export writes the snapshot content verbatim, adding a final newline if
// the document lacks one
func (e *MarkdownExporter) Export(snap *internal.Snapshot, w io.Writer) error {
	content := snap.Content
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}

	if _, err := io.WriteString(w, content); err != nil {
		return &internal.ExportError{Format: "md", Err: err}
	}
	return nil
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
